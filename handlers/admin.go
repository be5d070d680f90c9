// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/voting-server/auth"
	"github.com/danielhkuo/voting-server/middleware"
	"github.com/danielhkuo/voting-server/wire"
)

type AdminHandler struct {
	creds auth.Credentials
}

func NewAdminHandler(creds auth.Credentials) *AdminHandler {
	return &AdminHandler{creds: creds}
}

// Login handles POST /api/admin/login
// Missing fields fail the same way as wrong ones.
func (h *AdminHandler) Login(w http.ResponseWriter, r *wire.Request) {
	username, _ := r.FormValue("username")
	password, _ := r.FormValue("password")

	if err := h.creds.Check(username, password); err != nil {
		slog.Warn("admin login failed", "remote", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	middleware.SuccessResponse(w, "Admin login successful")
}
