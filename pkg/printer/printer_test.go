package printer

import (
	"bytes"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p, err := New(Config{Type: TypeNone})
	require.NoError(t, err)
	assert.False(t, p.IsConnected())
	assert.NoError(t, p.Print([]byte("x")))

	_, err = New(Config{Type: TypeUSB})
	assert.Error(t, err)

	_, err = New(Config{Type: TypeNetwork})
	assert.Error(t, err)

	_, err = New(Config{Type: "bluetooth"})
	assert.Error(t, err)
}

func TestNetworkPrinterWritesPayload(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	got := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		got <- data
	}()

	p, err := New(Config{Type: TypeNetwork, Address: ln.Addr().String(), Timeout: time.Second})
	require.NoError(t, err)
	require.NoError(t, p.Print([]byte("hello")))

	select {
	case data := <-got:
		assert.Equal(t, []byte("hello"), data)
	case <-time.After(2 * time.Second):
		t.Fatal("printer payload not received")
	}
}

func TestItemLineKeepsTotalOnLine(t *testing.T) {
	doc := NewDocument(32)
	doc.ItemLine(2, strings.Repeat("Amoxicillin ", 5), "40.00")

	out := doc.Bytes()[2:] // skip ESC @
	line := string(bytes.TrimSuffix(out, []byte{LF}))
	assert.Len(t, line, 32)
	assert.True(t, strings.HasSuffix(line, "40.00"))
	assert.True(t, strings.HasPrefix(line, "2x Amox"))
}

func TestQRCodeEmbedsData(t *testing.T) {
	doc := NewDocument(32).QRCode("upi://pay?pa=a@b", 0)
	assert.True(t, bytes.Contains(doc.Bytes(), []byte("upi://pay?pa=a@b")))
	assert.True(t, bytes.Contains(doc.Bytes(), []byte{GS, '(', 'k', 3, 0, 49, 67, 6}))
}
