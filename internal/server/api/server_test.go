package api_test

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padscript/internal/server/api"
)

func startServer(t *testing.T, cfg api.ServerConfig, register func(r *api.Router)) *api.Server {
	t.Helper()
	srv := api.New("127.0.0.1:0", cfg, slog.New(slog.DiscardHandler))
	register(srv.Router())
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Close)
	return srv
}

func TestServerLines(t *testing.T) {
	srv := startServer(t, api.ServerConfig{}, func(r *api.Router) {
		r.Register("echo", func(req *api.Request, res *api.Response, _ *slog.Logger) error {
			res.JSON = fmt.Sprintf("%q", strings.Join(req.Args, ","))
			return nil
		})
		r.Register("empty", func(*api.Request, *api.Response, *slog.Logger) error { return nil })
	})

	c, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer c.Close()
	rd := bufio.NewReader(c)

	exchange := []struct {
		send string
		want string
	}{
		{send: "ECHO a b", want: `"a,b"`},
		{send: "  echo   x  ", want: `"x"`},
		{send: "empty", want: ""},
		{send: "missing", want: `{"error":"unknown path"}`},
	}
	for _, ex := range exchange {
		_, err := fmt.Fprintf(c, "%s\n", ex.send)
		require.NoError(t, err)
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, ex.want, strings.TrimSuffix(line, "\n"), ex.send)
	}
}

func TestServerIdleTimeout(t *testing.T) {
	srv := startServer(t, api.ServerConfig{ConnectionTimeout: 50 * time.Millisecond}, func(*api.Router) {})

	c, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer c.Close()

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = c.Read(make([]byte, 1))
	require.Error(t, err, "server closes the idle connection")
}

func TestServerCloseEndsConnections(t *testing.T) {
	srv := api.New("127.0.0.1:0", api.ServerConfig{}, slog.New(slog.DiscardHandler))
	require.NoError(t, srv.Start())

	c, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer c.Close()
	_, err = fmt.Fprintln(c, "hello")
	require.NoError(t, err)
	line, err := bufio.NewReader(c).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "{\"error\":\"unknown path\"}\n", line)

	closed := make(chan struct{})
	go func() {
		srv.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
}
