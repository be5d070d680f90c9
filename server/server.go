// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/netutil"

	"github.com/danielhkuo/voting-server/middleware"
	"github.com/danielhkuo/voting-server/wire"
)

// Observer receives connection and request lifecycle notifications.
type Observer interface {
	ConnOpened()
	ConnClosed()
	RequestDone(method, route string, status int, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ConnOpened() {}
func (nopObserver) ConnClosed() {}
func (nopObserver) RequestDone(string, string, int, time.Duration) {}

type Option func(*Server)

func WithObserver(o Observer) Option {
	return func(s *Server) { s.observer = o }
}

// WithMaxConns caps concurrent connections. Zero means unlimited.
func WithMaxConns(n int) Option {
	return func(s *Server) { s.maxConns = n }
}

// Server accepts TCP connections and answers exactly one request on each.
type Server struct {
	handler  wire.Handler
	observer Observer
	maxConns int

	wg sync.WaitGroup
}

func New(h wire.Handler, opts ...Option) *Server {
	s := &Server{handler: h, observer: nopObserver{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then waits for
// in-flight connections to finish. It returns nil on a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.maxConns > 0 {
		ln = netutil.LimitListener(ln, s.maxConns)
	}

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer s.wg.Wait()

	slog.Info("listening", "addr", ln.Addr().String(), "max_conns", s.maxConns)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				slog.Info("listener closed, draining connections")
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				slog.Warn("accept timeout", "error", err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	s.observer.ConnOpened()
	defer s.observer.ConnClosed()

	// Unblock a read stuck on an idle client once shutdown begins.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetReadDeadline(time.Now()) })
	defer stop()

	start := time.Now()
	id := uuid.NewString()
	w := wire.NewResponseWriter()

	var method, route string
	req, err := wire.ReadRequest(bufio.NewReader(conn))
	switch {
	case errors.Is(err, io.EOF):
		return
	case errors.Is(err, wire.ErrMalformedRequest):
		slog.Debug("malformed request", "request_id", id, "remote", conn.RemoteAddr().String())
		middleware.TextResponse(w, http.StatusBadRequest, "Invalid request")
	case err != nil:
		slog.Debug("read failed", "request_id", id, "error", err)
		return
	default:
		req.ID = id
		req.RemoteAddr = conn.RemoteAddr().String()
		req = req.WithContext(ctx)
		s.dispatch(w, req)
		method, route = req.Method, req.Pattern
	}

	w.Header().Set("X-Request-Id", id)
	if _, err := w.WriteTo(conn); err != nil {
		slog.Debug("write failed", "request_id", id, "error", err)
	}
	s.observer.RequestDone(method, route, w.Status(), time.Since(start))
}

// dispatch runs the handler, turning a panic into a 500 carrying the
// panic message.
func (s *Server) dispatch(w *wire.ResponseWriter, r *wire.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			msg := fmt.Sprint(rec)
			slog.Error("handler panic", "request_id", r.ID, "path", r.Path, "panic", msg)
			w.Reset()
			w.Header().Set("Access-Control-Allow-Origin", "*")
			middleware.TextResponse(w, http.StatusInternalServerError, msg)
		}
	}()
	s.handler.ServeWire(w, r)
}

// Addr formats a listen address for port.
func Addr(port int) string {
	return ":" + strconv.Itoa(port)
}
