package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Alia5/padscript/internal/config"
	"github.com/Alia5/padscript/internal/configpaths"
	"github.com/Alia5/padscript/internal/log"

	_ "github.com/Alia5/padscript/script/engines" // Register all script engines

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"golang.org/x/term"
)

const helpStyleEnv = "PADSCRIPT_HELP_STYLE"

func main() {
	args, plain := plainHelp(os.Args[1:])
	if plain {
		_ = os.Setenv(helpStyleEnv, "plain")
	}

	var cli config.CLI
	opts := append([]kong.Option{
		kong.Name("padscript"),
		kong.Description(Description()),
		kong.UsageOnError(),
		kong.Help(printHelp),
	}, configLoaders(configFlag(args))...)
	parser := kong.Must(&cli, opts...)
	kctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)
	cli.Serve.Version = Version

	logs, err := openLogs(cli.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "padscript: logging:", err)
		os.Exit(2)
	}
	kctx.Bind(logs.logger)
	kctx.BindTo(logs.raw, (*log.RawLogger)(nil))

	err = kctx.Run()
	logs.Close()
	kctx.FatalIfErrorf(err)
}

// plainHelp rewrites the -p shorthand into -h and reports whether it was
// given.
func plainHelp(args []string) ([]string, bool) {
	out := append([]string(nil), args...)
	for i, a := range out {
		if a == "--" {
			break
		}
		if a == "-p" {
			out[i] = "-h"
			return out, true
		}
	}
	return out, false
}

// configFlag finds --config before kong parses the command line, since the
// file it names feeds the parse.
func configFlag(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("PADSCRIPT_CONFIG")
}

// configLoaders reads JSON, YAML and TOML candidates in that order. Flags
// and environment variables override any of them.
func configLoaders(userCfg string) []kong.Option {
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)
	return []kong.Option{
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	}
}

// logs is the process logger, the raw report log and the files behind them.
type logs struct {
	logger  *slog.Logger
	raw     log.RawLogger
	closers []func() error
}

func openLogs(cfg config.Log) (*logs, error) {
	logger, closeLog, err := log.Setup(cfg.Level, cfg.File)
	if err != nil {
		return nil, err
	}
	l := &logs{logger: logger, raw: log.NewRaw(nil), closers: []func() error{closeLog}}
	switch lvl, _ := log.ParseLevel(cfg.Level); {
	case cfg.RawFile != "":
		f, err := os.OpenFile(cfg.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("raw report log disabled", "file", cfg.RawFile, "error", err)
			break
		}
		l.raw = log.NewRaw(f)
		l.closers = append(l.closers, f.Close)
	case lvl <= log.LevelTrace:
		l.raw = log.NewRaw(os.Stdout)
	}
	return l, nil
}

func (l *logs) Close() {
	for _, c := range l.closers {
		_ = c()
	}
}

func printHelp(options kong.HelpOptions, kctx *kong.Context) error {
	style := strings.ToLower(os.Getenv(helpStyleEnv))
	if style == "" {
		style = detectHelpStyle()
	}
	if style == "plain" {
		return kong.DefaultHelpPrinter(options, kctx)
	}

	var help bytes.Buffer
	stdout := kctx.Stdout
	kctx.Stdout = &help
	err := kong.DefaultHelpPrinter(options, kctx)
	kctx.Stdout = stdout
	if err != nil {
		return err
	}
	_, err = io.WriteString(kctx.Stdout, sideBySide(splitLines(asciiPad), splitLines(help.String())))
	return err
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(strings.Trim(s, "\n"), "\n")
}

// sideBySide puts art in a column left of text, centered vertically on it.
func sideBySide(art, text []string) string {
	width := 0
	for _, l := range art {
		width = max(width, len([]rune(l)))
	}
	width += 2
	top := max((len(text)-len(art))/2, 0)

	var b strings.Builder
	for i := range max(len(art), len(text)) {
		var a, t string
		if j := i - top; j >= 0 && j < len(art) {
			a = art[j]
		}
		if i < len(text) {
			t = text[i]
		}
		fmt.Fprintf(&b, "%-*s%s\n", width, a, t)
	}
	return b.String()
}

func detectHelpStyle() string {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) || os.Getenv("TERM") == "dumb" {
		return "plain"
	}
	if w, _, err := term.GetSize(fd); err != nil || w < 120 {
		return "plain"
	}
	return "art"
}
