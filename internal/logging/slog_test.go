package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// captureStdout points the console sink at a pipe. The returned func restores
// it and yields what was written.
func captureStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := osPipe()
	require.NoError(t, err)

	orig := osStdout
	osStdout = w

	return func() string {
		w.Close()
		osStdout = orig
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()
		return buf.String()
	}
}

func TestSetup_SessionFileKeepsConsoleQuiet(t *testing.T) {
	stdout := captureStdout(t)

	var file bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "info", nil)
	m.Logger().Info("server listening", "address", ":8080")

	assert.Empty(t, stdout())
	assert.Contains(t, file.String(), "Logging initialized")
	assert.Contains(t, file.String(), "address=:8080")
}

func TestSetup_ConsoleWithoutFile(t *testing.T) {
	stdout := captureStdout(t)

	m := NewSlogManager()
	m.Setup(nil, "info", nil)
	m.Logger().Info("server listening")

	assert.Contains(t, stdout(), "server listening")
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"INFO", false, true},
		{"warn", false, false},
		{"bogus", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level, nil)
			m.Logger().Debug("cache miss")
			m.Logger().Info("estimate done")
			m.Logger().Warn("publish failed")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "cache miss"))
			assert.Equal(t, tt.wantInfo, strings.Contains(out, "estimate done"))
			assert.Contains(t, out, "publish failed")
		})
	}
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	assert.Equal(t, slog.Default(), NewSlogManager().Logger())
}

func TestSetup_OTelProviderAndFlush(t *testing.T) {
	m := NewSlogManager()
	require.NoError(t, m.Flush(context.Background()))

	provider := sdklog.NewLoggerProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	var buf bytes.Buffer
	m.Setup(&buf, "info", provider)
	m.Logger().Info("estimate done")

	assert.Contains(t, buf.String(), "estimate done")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestSetup_ExtraHandlers(t *testing.T) {
	var fileBuf, extraBuf bytes.Buffer
	extra := slog.NewJSONHandler(&extraBuf, &slog.HandlerOptions{Level: slog.LevelInfo})

	m := NewSlogManager()
	m.Setup(&fileBuf, "info", nil, extra)
	m.Logger().Info("to both")

	assert.Contains(t, fileBuf.String(), "to both")
	assert.Contains(t, extraBuf.String(), `"msg":"to both"`)
}

func TestSetup_RequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	ctx := WithRequestID(context.Background(), "abc-123")
	m.Logger().InfoContext(ctx, "estimate done")
	m.Logger().Info("no request")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3) // init line + two records
	assert.Contains(t, string(lines[1]), "request_id=abc-123")
	assert.NotContains(t, string(lines[2]), "request_id")
}
