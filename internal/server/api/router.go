package api

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Request is a single parsed API command line.
type Request struct {
	Ctx    context.Context
	Params map[string]string
	Args   []string
}

// Response carries the JSON body written back for a successful command.
// An empty JSON string produces an empty line.
type Response struct {
	JSON string
}

// HandlerFunc handles one API command.
type HandlerFunc func(req *Request, res *Response, logger *slog.Logger) error

type route struct {
	segments []string
	handler  HandlerFunc
}

// Router maps slash separated paths to handlers. A segment written as
// {name} matches any single segment and is passed in Request.Params.
// Matching is case-insensitive.
type Router struct {
	mu     sync.RWMutex
	routes []route
}

func NewRouter() *Router { return &Router{} }

// Register adds a handler for path. Later registrations of the same
// path replace earlier ones.
func (r *Router) Register(path string, h HandlerFunc) {
	segs := split(path)
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.routes {
		if equalSegments(r.routes[i].segments, segs) {
			r.routes[i].handler = h
			return
		}
	}
	r.routes = append(r.routes, route{segments: segs, handler: h})
}

// Match returns the handler for path and its bound parameters, or nil.
// Literal routes win over parameterized ones.
func (r *Router) Match(path string) (HandlerFunc, map[string]string) {
	segs := split(path)
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best      HandlerFunc
		bestVars  map[string]string
		bestScore = -1
	)
	for _, rt := range r.routes {
		if len(rt.segments) != len(segs) {
			continue
		}
		params := map[string]string{}
		score := 0
		ok := true
		for i, s := range rt.segments {
			if name, isParam := paramName(s); isParam {
				params[name] = segs[i]
				continue
			}
			if s != segs[i] {
				ok = false
				break
			}
			score++
		}
		if ok && score > bestScore {
			best, bestVars, bestScore = rt.handler, params, score
		}
	}
	return best, bestVars
}

func split(path string) []string {
	path = strings.Trim(strings.ToLower(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func paramName(seg string) (string, bool) {
	if len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}

func equalSegments(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
