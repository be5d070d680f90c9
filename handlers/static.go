// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/voting-server/middleware"
	"github.com/danielhkuo/voting-server/wire"
)

// Page is a cached document, such as *static.Asset.
type Page interface {
	Bytes() ([]byte, bool)
}

type StaticHandler struct {
	page Page
}

func NewStaticHandler(page Page) *StaticHandler {
	return &StaticHandler{page: page}
}

// Serve answers GET requests no API route matched. Only / and /index.html
// exist.
func (h *StaticHandler) Serve(w http.ResponseWriter, r *wire.Request) {
	if r.Path != "/" && r.Path != "/index.html" {
		middleware.TextResponse(w, http.StatusNotFound, "File not found")
		return
	}

	var data []byte
	ok := false
	if h.page != nil {
		data, ok = h.page.Bytes()
	}
	if !ok {
		middleware.TextResponse(w, http.StatusInternalServerError, "Error loading HTML file")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *wire.Request) {
	middleware.TextResponse(w, http.StatusOK, "OK")
}
