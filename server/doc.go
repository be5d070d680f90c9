// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package server runs the TCP accept loop.

Each accepted connection gets its own goroutine, which reads one request
with wire.ReadRequest, dispatches it to a wire.Handler, writes the
buffered response and closes the connection:

	srv := server.New(router.NewRouter(st, cfg, page),
		server.WithObserver(m),
		server.WithMaxConns(cfg.MaxConns))
	err := srv.ListenAndServe(ctx, server.Addr(cfg.Port))

Malformed request lines answer 400 "Invalid request". A panic inside the
handler answers 500 with the panic message as body. Every response
carries an X-Request-Id header.

Cancelling ctx closes the listener; Serve returns once every in-flight
connection has finished.
*/
package server
