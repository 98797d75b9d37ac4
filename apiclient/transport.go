package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/Alia5/padscript/apitypes"
)

var (
	// ErrEmptyResponse is returned when the server closes the connection
	// without replying.
	ErrEmptyResponse = errors.New("empty response")
	// ErrRequest is returned for a command or argument that cannot be put
	// on one request line.
	ErrRequest = errors.New("invalid request")
)

// ServerError is a command the server answered with an error reply.
type ServerError struct {
	Command string
	Message string
}

func (e *ServerError) Error() string { return e.Command + ": " + e.Message }

// Config holds the per-request timeouts. Zero disables a timeout.
type Config struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func defaultConfig() Config {
	return Config{
		DialTimeout:  3 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Transport speaks the padscript line protocol: one connection per
// command, a request line "<command>[ <arg>]" and a single JSON reply line.
// Replies of the form {"error":"..."} come back as *ServerError.
type Transport struct {
	addr     string
	cfg      Config
	exchange func(ctx context.Context, line string) (string, error)
}

// NewTransport returns a transport for the server at addr. A nil cfg uses
// the default timeouts.
func NewTransport(addr string, cfg *Config) *Transport {
	t := &Transport{addr: addr, cfg: defaultConfig()}
	if cfg != nil {
		t.cfg = *cfg
	}
	t.exchange = t.dial
	return t
}

// NewMockTransport returns a transport that hands every request line to
// reply instead of the network.
func NewMockTransport(reply func(line string) (string, error)) *Transport {
	return &Transport{
		addr: "mock",
		cfg:  defaultConfig(),
		exchange: func(_ context.Context, line string) (string, error) {
			return reply(line)
		},
	}
}

// Do sends command with an optional argument and returns the reply line
// without its newline.
func (t *Transport) Do(ctx context.Context, command, arg string) (string, error) {
	line, err := requestLine(command, arg)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", command, err)
	}
	reply, err := t.exchange(ctx, line)
	if err != nil {
		return "", err
	}
	return checkReply(command, reply)
}

func requestLine(command, arg string) (string, error) {
	if command == "" || strings.ContainsAny(command, " \r\n") {
		return "", fmt.Errorf("%w: command %q", ErrRequest, command)
	}
	if strings.ContainsAny(arg, "\r\n") {
		return "", fmt.Errorf("%w: argument to %s spans lines", ErrRequest, command)
	}
	if arg == "" {
		return command, nil
	}
	return command + " " + arg, nil
}

func checkReply(command, reply string) (string, error) {
	if reply == "" {
		return "", fmt.Errorf("%s: %w", command, ErrEmptyResponse)
	}
	if !strings.HasPrefix(reply, `{"error":`) {
		return reply, nil
	}
	var ae apitypes.ApiError
	if err := json.Unmarshal([]byte(reply), &ae); err != nil {
		return "", fmt.Errorf("%s: decode error reply: %w", command, err)
	}
	return "", &ServerError{Command: command, Message: ae.Error}
}

func (t *Transport) dial(ctx context.Context, line string) (string, error) {
	d := net.Dialer{Timeout: t.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", t.addr, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if t.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout))
	}
	if _, err := io.WriteString(conn, line+"\n"); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	if t.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(t.cfg.ReadTimeout))
	}
	// A reply cut short by EOF is still a reply.
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && reply == "" {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", fmt.Errorf("read: %w", err)
	}
	return strings.TrimSuffix(reply, "\n"), nil
}
