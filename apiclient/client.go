package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Alia5/padscript/apitypes"
)

// Client provides a high-level interface to the padscript API, handling
// request formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr, nil)} }

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransport(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the server identity and version.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	line, err := c.transport.Do(ctx, "ping", "")
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](line)
}

// ScriptStart starts the script at path on the server. The path is
// resolved by the server. It returns once the script has loaded; a
// script that fails to load is reported as an error.
func (c *Client) ScriptStart(path string) (*apitypes.ScriptStartResponse, error) {
	return c.ScriptStartCtx(context.Background(), path)
}

func (c *Client) ScriptStartCtx(ctx context.Context, path string) (*apitypes.ScriptStartResponse, error) {
	line, err := c.transport.Do(ctx, "script/start", path)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.ScriptStartResponse](line)
}

// ScriptStop requests cancellation of the running script. The run ends
// asynchronously; poll ScriptStatus to observe the terminal state.
func (c *Client) ScriptStop() (*apitypes.ScriptStopResponse, error) {
	return c.ScriptStopCtx(context.Background())
}

func (c *Client) ScriptStopCtx(ctx context.Context) (*apitypes.ScriptStopResponse, error) {
	line, err := c.transport.Do(ctx, "script/stop", "")
	if err != nil {
		return nil, err
	}
	return parse[apitypes.ScriptStopResponse](line)
}

// ScriptStatus reports the current or last run.
func (c *Client) ScriptStatus() (*apitypes.ScriptStatusResponse, error) {
	return c.ScriptStatusCtx(context.Background())
}

func (c *Client) ScriptStatusCtx(ctx context.Context) (*apitypes.ScriptStatusResponse, error) {
	line, err := c.transport.Do(ctx, "script/status", "")
	if err != nil {
		return nil, err
	}
	return parse[apitypes.ScriptStatusResponse](line)
}

// PadObserved returns the last report delivered on GameCube port slot.
func (c *Client) PadObserved(slot int) (*apitypes.PadObservedResponse, error) {
	return c.PadObservedCtx(context.Background(), slot)
}

func (c *Client) PadObservedCtx(ctx context.Context, slot int) (*apitypes.PadObservedResponse, error) {
	line, err := c.transport.Do(ctx, fmt.Sprintf("pad/%d/observed", slot), "")
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PadObservedResponse](line)
}

// WiimoteObserved returns the last state delivered on Wiimote port slot.
func (c *Client) WiimoteObserved(slot int) (*apitypes.WiimoteObservedResponse, error) {
	return c.WiimoteObservedCtx(context.Background(), slot)
}

func (c *Client) WiimoteObservedCtx(ctx context.Context, slot int) (*apitypes.WiimoteObservedResponse, error) {
	line, err := c.transport.Do(ctx, fmt.Sprintf("wiimote/%d/observed", slot), "")
	if err != nil {
		return nil, err
	}
	return parse[apitypes.WiimoteObservedResponse](line)
}

// parse decodes a success reply. Unknown fields are an error so that a
// mismatched server version is caught early.
func parse[T any](line string) (*T, error) {
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(line)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
