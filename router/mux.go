// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/danielhkuo/voting-server/middleware"
	"github.com/danielhkuo/voting-server/wire"
)

// Mux dispatches on method and path. Patterns have the form
// "METHOD /path" and may end in a single {name} wildcard segment, which
// captures the rest of the path.
type Mux struct {
	exact     map[string]route
	wildcards []route
	fallback  wire.HandlerFunc
}

type route struct {
	pattern string
	method  string
	prefix  string
	param   string
	handler wire.HandlerFunc
}

func NewMux() *Mux {
	return &Mux{exact: make(map[string]route)}
}

// HandleFunc registers h for pattern. It panics on a malformed or
// duplicate pattern.
func (m *Mux) HandleFunc(pattern string, h wire.HandlerFunc) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok || method == "" || !strings.HasPrefix(path, "/") {
		panic(fmt.Sprintf("router: invalid pattern %q", pattern))
	}

	rt := route{pattern: pattern, method: method, handler: h}

	if open := strings.IndexByte(path, '{'); open >= 0 {
		if !strings.HasSuffix(path, "}") || strings.Count(path, "{") != 1 || path[open-1] != '/' {
			panic(fmt.Sprintf("router: wildcard must be the last segment in %q", pattern))
		}
		rt.prefix = path[:open]
		rt.param = path[open+1 : len(path)-1]
		for _, existing := range m.wildcards {
			if existing.method == method && existing.prefix == rt.prefix {
				panic(fmt.Sprintf("router: duplicate pattern %q", pattern))
			}
		}
		m.wildcards = append(m.wildcards, rt)
		return
	}

	key := method + " " + path
	if _, dup := m.exact[key]; dup {
		panic(fmt.Sprintf("router: duplicate pattern %q", pattern))
	}
	m.exact[key] = rt
}

// HandleFallback sets the handler for GET requests no route matched.
func (m *Mux) HandleFallback(h wire.HandlerFunc) {
	m.fallback = h
}

// ServeWire dispatches r. Only GET and POST reach the table; OPTIONS is
// expected to be answered by middleware.CORS in front of the mux.
func (m *Mux) ServeWire(w http.ResponseWriter, r *wire.Request) {
	if r.Method != "GET" && r.Method != "POST" {
		middleware.TextResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if rt, ok := m.exact[r.Method+" "+r.Path]; ok {
		r.Pattern = rt.pattern
		rt.handler(w, r)
		return
	}

	for _, rt := range m.wildcards {
		if rt.method == r.Method && strings.HasPrefix(r.Path, rt.prefix) {
			r.Pattern = rt.pattern
			r.SetPathValue(rt.param, r.Path[len(rt.prefix):])
			rt.handler(w, r)
			return
		}
	}

	if r.Method == "GET" && m.fallback != nil {
		m.fallback(w, r)
		return
	}
	if r.Method == "GET" {
		middleware.TextResponse(w, http.StatusNotFound, "File not found")
		return
	}
	middleware.TextResponse(w, http.StatusNotFound, "Endpoint not found")
}
