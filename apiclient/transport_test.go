package apiclient

import (
	"bufio"
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLine(t *testing.T) {
	tests := []struct {
		name    string
		command string
		arg     string
		want    string
		wantErr bool
	}{
		{name: "bare command", command: "script/status", want: "script/status"},
		{name: "argument", command: "script/start", arg: "/tmp/a b.lua", want: "script/start /tmp/a b.lua"},
		{name: "slot path", command: "pad/3/observed", want: "pad/3/observed"},
		{name: "empty command", command: "", wantErr: true},
		{name: "space in command", command: "script start", wantErr: true},
		{name: "newline in argument", command: "script/start", arg: "a\nb", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := requestLine(tt.command, tt.arg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantMsg string
		wantErr error
	}{
		{name: "success", reply: `{"state":"running"}`, want: `{"state":"running"}`},
		{name: "status with last error", reply: `{"state":"load_error","lastError":"x"}`, want: `{"state":"load_error","lastError":"x"}`},
		{name: "server error", reply: `{"error":"slot out of range: 4 not in [0,4)"}`, wantMsg: "slot out of range: 4 not in [0,4)"},
		{name: "empty", reply: "", wantErr: ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkReply("cmd", tt.reply)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				var se *ServerError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, "cmd", se.Command)
				assert.Equal(t, tt.wantMsg, se.Message)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// serveOnce answers the first connection on a fresh listener with reply and
// reports the request line it read.
func serveOnce(t *testing.T, reply string) (string, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	got := make(chan string, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		line, _ := bufio.NewReader(c).ReadString('\n')
		got <- line
		_, _ = c.Write([]byte(reply))
	}()
	return ln.Addr().String(), got
}

func TestTransportLine(t *testing.T) {
	addr, got := serveOnce(t, "{\"state\":\"running\"}\n")
	resp, err := NewTransport(addr, nil).Do(context.Background(), "script/start", "/tmp/x.lua")
	require.NoError(t, err)
	assert.Equal(t, `{"state":"running"}`, resp)
	assert.Equal(t, "script/start /tmp/x.lua\n", <-got)
}

func TestTransportServerError(t *testing.T) {
	addr, got := serveOnce(t, "{\"error\":\"no script has run\"}\n")
	_, err := NewTransport(addr, nil).Do(context.Background(), "pad/0/observed", "")
	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "no script has run", se.Message)
	assert.Equal(t, "pad/0/observed\n", <-got)
}

func TestTransportClosedWithoutReply(t *testing.T) {
	addr, _ := serveOnce(t, "")
	_, err := NewTransport(addr, nil).Do(context.Background(), "ping", "")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
