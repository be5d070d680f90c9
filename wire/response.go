// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wire

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
)

// Handler responds to a parsed request.
type Handler interface {
	ServeWire(w http.ResponseWriter, r *Request)
}

type HandlerFunc func(w http.ResponseWriter, r *Request)

func (f HandlerFunc) ServeWire(w http.ResponseWriter, r *Request) {
	f(w, r)
}

// ResponseWriter buffers a whole response so it can be written with an
// exact Content-Length once the handler returns.
type ResponseWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func NewResponseWriter() *ResponseWriter {
	return &ResponseWriter{header: make(http.Header)}
}

func (w *ResponseWriter) Header() http.Header {
	return w.header
}

// WriteHeader records the status code. Only the first call takes effect.
func (w *ResponseWriter) WriteHeader(code int) {
	if w.status != 0 {
		return
	}
	w.status = code
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

// Status returns the recorded status code, 200 if none was set.
func (w *ResponseWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Len returns the number of body bytes buffered so far.
func (w *ResponseWriter) Len() int {
	return w.body.Len()
}

// Reset discards anything written so far, headers included.
func (w *ResponseWriter) Reset() {
	w.header = make(http.Header)
	w.status = 0
	w.body.Reset()
}

// WriteTo serializes the response. Headers are written in sorted order,
// followed by Content-Length and Connection: close.
func (w *ResponseWriter) WriteTo(dst io.Writer) (int64, error) {
	bw := bufio.NewWriter(dst)
	cw := &countingWriter{w: bw}

	status := w.Status()
	fmt.Fprintf(cw, "HTTP/1.1 %d %s\r\n", status, http.StatusText(status))

	keys := make([]string, 0, len(w.header))
	for k := range w.header {
		switch k {
		case "Content-Length", "Connection":
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range w.header[k] {
			fmt.Fprintf(cw, "%s: %s\r\n", k, v)
		}
	}
	fmt.Fprintf(cw, "Content-Length: %s\r\n", strconv.Itoa(w.body.Len()))
	io.WriteString(cw, "Connection: close\r\n\r\n")
	cw.Write(w.body.Bytes())

	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, bw.Flush()
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
