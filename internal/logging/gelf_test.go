package logging

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGELFHandler_SendsRecord(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	h, err := NewGELFHandler(conn.LocalAddr().String(), "info")
	require.NoError(t, err)

	slog.New(h).Info("dive started", "depth", 40)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 8192)
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)

	// default compression is gzip
	zr, err := gzip.NewReader(bytes.NewReader(buf[:n]))
	require.NoError(t, err)
	payload, err := io.ReadAll(zr)
	require.NoError(t, err)

	assert.Contains(t, string(payload), "dive started")
}

func TestNewGELFHandler_InvalidAddress(t *testing.T) {
	_, err := NewGELFHandler("not an address", "info")
	require.Error(t, err)
}
