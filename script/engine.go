package script

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// ErrNoEngine is returned for a script whose extension no engine handles.
var ErrNoEngine = errors.New("no engine for script")

// Engine runs one script. Load and Run are called once each, in that order,
// on the script goroutine.
type Engine interface {
	// Load parses or compiles src. No script code runs.
	Load(name string, src []byte) error
	// Run executes the loaded script until it returns, fails, or ctx is
	// done. Cancellation is observed before every instruction, so Run
	// returns within one statement of ctx being cancelled.
	Run(ctx context.Context) error
	// Close releases the runtime.
	Close()
}

// Factory creates an engine bound to api.
type Factory func(api *API) Engine

var (
	engineRegistry   = make(map[string]Factory)
	engineRegistryMu sync.RWMutex
)

// RegisterEngine registers an engine for a file extension such as ".lua".
// This should be called from engine package init() functions. The extension
// is case-insensitive.
func RegisterEngine(ext string, f Factory) {
	engineRegistryMu.Lock()
	defer engineRegistryMu.Unlock()
	engineRegistry[normalizeExt(ext)] = f
}

// NewEngine returns an engine for path, chosen by its extension.
func NewEngine(path string, api *API) (Engine, error) {
	engineRegistryMu.RLock()
	f := engineRegistry[normalizeExt(filepath.Ext(path))]
	engineRegistryMu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: %s (have %s)", ErrNoEngine, filepath.Base(path), strings.Join(Extensions(), ", "))
	}
	return f(api), nil
}

// Extensions lists the registered extensions, sorted.
func Extensions() []string {
	engineRegistryMu.RLock()
	defer engineRegistryMu.RUnlock()
	out := make([]string, 0, len(engineRegistry))
	for ext := range engineRegistry {
		out = append(out, ext)
	}
	slices.Sort(out)
	return out
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
