package logging

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewRotatingFile opens a size-rotated log file. Old files are gzipped.
func NewRotatingFile(path string, maxSizeMB, maxBackups int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
}
