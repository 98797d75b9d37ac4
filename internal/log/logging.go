// Package log builds the process logger and the raw report log.
//
// Without a log file, records below error go to stdout and the rest to
// stderr, colored when the stream is a terminal. With a log file, stderr
// gets plain text and the file gets every record.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/term"
)

// LevelTrace is below debug. It also turns on the raw report log when no
// raw log file is configured.
const LevelTrace slog.Level = -8

var levelNames = map[string]slog.Level{
	"trace":   LevelTrace,
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel looks up a level by name, ignoring case. The empty name is
// info.
func ParseLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelInfo, nil
	}
	if l, ok := levelNames[strings.ToLower(name)]; ok {
		return l, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

// Setup builds the process logger and makes it the slog default. The
// returned func closes the log file, if one was opened.
func Setup(level, file string) (*slog.Logger, func() error, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if file == "" {
		h := levelSplit{
			at:   slog.LevelError,
			low:  console(os.Stdout, lvl),
			high: console(os.Stderr, lvl),
		}
		logger := slog.New(h)
		slog.SetDefault(logger)
		return logger, func() error { return nil }, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stderr, opts),
		slog.NewTextHandler(f, opts),
	))
	slog.SetDefault(logger)
	return logger, f.Close, nil
}

func console(f *os.File, level slog.Level) slog.Handler {
	if term.IsTerminal(int(f.Fd())) {
		return newColorHandler(f, level)
	}
	return slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
}

// levelSplit sends records below at to low and the rest to high.
type levelSplit struct {
	at        slog.Level
	low, high slog.Handler
}

func (s levelSplit) pick(l slog.Level) slog.Handler {
	if l < s.at {
		return s.low
	}
	return s.high
}

func (s levelSplit) Enabled(ctx context.Context, l slog.Level) bool {
	return s.pick(l).Enabled(ctx, l)
}

func (s levelSplit) Handle(ctx context.Context, r slog.Record) error {
	return s.pick(r.Level).Handle(ctx, r)
}

func (s levelSplit) WithAttrs(attrs []slog.Attr) slog.Handler {
	return levelSplit{at: s.at, low: s.low.WithAttrs(attrs), high: s.high.WithAttrs(attrs)}
}

func (s levelSplit) WithGroup(name string) slog.Handler {
	return levelSplit{at: s.at, low: s.low.WithGroup(name), high: s.high.WithGroup(name)}
}

var levelColors = []struct {
	min  slog.Level
	code string
}{
	{slog.LevelError, "31"},
	{slog.LevelWarn, "33"},
	{slog.LevelInfo, "32"},
	{slog.LevelDebug, "34"},
	{LevelTrace, "35"},
}

func levelColor(l slog.Level) string {
	for _, c := range levelColors {
		if l >= c.min {
			return c.code
		}
	}
	return "0"
}

// colorHandler writes one colored line per record. Attributes added with
// WithAttrs are formatted once, up front.
type colorHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
	group string
	attrs string
}

func newColorHandler(w io.Writer, level slog.Leveler) *colorHandler {
	return &colorHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *colorHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\033[90m%s\033[0m \033[%sm%5s\033[0m %s",
		r.Time.Format("15:04:05.000000"), levelColor(r.Level), r.Level, r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.group, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		writeAttr(&b, h.group, a)
	}
	c := *h
	c.attrs = b.String()
	return &c
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group += name + "."
	return &c
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			group += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, group, ga)
		}
		return
	}
	v := a.Value.String()
	if v == "" || strings.ContainsAny(v, " \"=\n") {
		v = strconv.Quote(v)
	}
	fmt.Fprintf(b, " \033[90m%s%s=\033[0m%s", group, a.Key, v)
}
