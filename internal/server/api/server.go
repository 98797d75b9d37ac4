package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"
)

// Server implements a small line based TCP API for controlling script runs.
type Server struct {
	addr   string
	logger *slog.Logger
	router *Router
	config ServerConfig

	mu     sync.Mutex
	ln     net.Listener
	ctx    context.Context
	cancel context.CancelFunc
	conns  sync.WaitGroup
}

// New creates a new API server listening on addr once started.
func New(addr string, config ServerConfig, logger *slog.Logger) *Server {
	a := &Server{
		addr:   addr,
		logger: logger,
		config: config,
	}
	a.router = NewRouter()
	return a
}

// Router returns the router used by the API server so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound listen address, or the configured one before Start.
func (a *Server) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ln != nil {
		return a.ln.Addr().String()
	}
	return a.addr
}

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.ln = ln
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.mu.Unlock()
	a.logger.Info("API listening", "addr", ln.Addr().String())
	go a.serve(ln)
	return nil
}

// Close stops the API server and waits for open connections to finish
// their current command.
func (a *Server) Close() {
	a.mu.Lock()
	ln, cancel := a.ln, a.cancel
	a.mu.Unlock()
	if ln != nil {
		_ = ln.Close()
	}
	if cancel != nil {
		cancel()
	}
	a.conns.Wait()
}

func (a *Server) serve(ln net.Listener) {
	for {
		c, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		a.conns.Add(1)
		go func() {
			defer a.conns.Done()
			a.handleConn(c)
		}()
	}
}

func (a *Server) writeError(w io.Writer, msg string) {
	problem := map[string]string{"error": msg}
	problemJSON, _ := json.Marshal(problem)
	fmt.Fprintf(w, "%s\n", string(problemJSON))
}

func (a *Server) writeOK(w io.Writer, rest string) {
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(a.ctx)
	defer connCancel()
	stop := context.AfterFunc(connCtx, func() { _ = conn.SetReadDeadline(time.Now()) })
	defer stop()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	r := bufio.NewReader(conn)
	w := conn
	for {
		if a.config.ConnectionTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(a.config.ConnectionTimeout))
		}
		line, err := r.ReadString('\n')
		if err != nil {
			switch {
			case err == io.EOF, connCtx.Err() != nil:
			case errors.Is(err, os.ErrDeadlineExceeded):
				connLogger.Debug("api connection idle timeout")
			default:
				connLogger.Error("read api line", "error", err)
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		connLogger.Info("api cmd", "cmd", line)
		fields := strings.Fields(line)
		path := strings.ToLower(fields[0])
		args := fields[1:]

		h, params := a.router.Match(path)
		if h == nil {
			connLogger.Error("api unknown path", "path", path)
			a.writeError(w, "unknown path")
			continue
		}
		req := &Request{Ctx: connCtx, Params: params, Args: args}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Error("api handler error", "path", path, "error", err)
			a.writeError(w, err.Error())
			continue
		}
		connLogger.Debug("api handler success", "path", path)
		a.writeOK(w, res.JSON)
	}
}
