package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}

func TestRequestAttrs(t *testing.T) {
	assert.Nil(t, RequestAttrs(context.Background()))

	attrs := RequestAttrs(WithRequestID(context.Background(), "req-2"))
	assert.Equal(t, []slog.Attr{slog.String("request_id", "req-2")}, attrs)
}

func TestContextHandler_WithAttrsKeepsProvider(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, nil)
	h := NewContextHandler(inner, RequestAttrs)

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "api")}))
	logger.InfoContext(WithRequestID(context.Background(), "req-3"), "handled")

	assert.Contains(t, buf.String(), "component=api")
	assert.Contains(t, buf.String(), "request_id=req-3")
}

func TestContextHandler_WithGroupEmpty(t *testing.T) {
	h := NewContextHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), nil)
	assert.Equal(t, h, h.WithGroup(""))
}

func TestContextHandler_NilProvider(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil), nil))
	logger.Info("plain")
	assert.Contains(t, buf.String(), "plain")
}
