package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGELFHandler returns a handler that ships records to a Graylog GELF UDP input.
// Each record is sent as one JSON-encoded message.
func NewGELFHandler(address, level string) (slog.Handler, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, fmt.Errorf("failed to create GELF writer for %s: %w", address, err)
	}
	w.Facility = "auvplanner"
	return slog.NewJSONHandler(w, handlerOptions(level)), nil
}
