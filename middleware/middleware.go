// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/voting-server/models"
	"github.com/danielhkuo/voting-server/wire"
)

// WithLogging wraps a handler with request logging
func WithLogging(next wire.HandlerFunc) wire.HandlerFunc {
	return func(w http.ResponseWriter, r *wire.Request) {
		start := time.Now()

		slog.Debug("request started",
			"request_id", r.ID,
			"method", r.Method,
			"path", r.Path,
			"remote", GetClientIP(r),
		)

		next(w, r)

		slog.Info("request completed",
			"request_id", r.ID,
			"method", r.Method,
			"path", r.Path,
			"status", StatusOf(w),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// StatusOf reports the status code recorded by w, or 0 if w does not
// track it.
func StatusOf(w http.ResponseWriter) int {
	if sw, ok := w.(interface{ Status() int }); ok {
		return sw.Status()
	}
	return 0
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a {success:false,message} body
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.StatusResponse{
		Success: false,
		Message: message,
	})
}

// SuccessResponse writes a 200 {success:true,message} body
func SuccessResponse(w http.ResponseWriter, message string) {
	JSONResponse(w, http.StatusOK, models.StatusResponse{
		Success: true,
		Message: message,
	})
}

// TextResponse writes a plain-text body, used outside the JSON API
func TextResponse(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	w.Write([]byte(text))
}

// FormValues returns the url-encoded body values for keys, in order.
// ok is false if any key is missing or empty.
func FormValues(r *wire.Request, keys ...string) (values []string, ok bool) {
	values = make([]string, len(keys))
	ok = true
	for i, k := range keys {
		v, found := r.FormValue(k)
		if !found {
			ok = false
		}
		values[i] = v
	}
	return values, ok
}

// CORS allows any origin. OPTIONS requests are answered here with 204 and
// never reach next.
func CORS(next wire.Handler) wire.Handler {
	return wire.HandlerFunc(func(w http.ResponseWriter, r *wire.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if r.Method == "OPTIONS" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeWire(w, r)
	})
}

// GetClientIP extracts the client IP address
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr
func GetClientIP(r *wire.Request) string {
	// Check X-Forwarded-For (load balancers)
	if xff := r.Header("X-Forwarded-For"); xff != "" {
		// Take first IP in chain
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' || xff[i] == ' ' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP (nginx)
	if xri := r.Header("X-Real-IP"); xri != "" {
		return xri
	}

	// Strip port if present
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
