// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wire

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrMalformedRequest = errors.New("malformed request line")

// Request is one parsed request. Header names are stored lower-cased.
type Request struct {
	Method   string
	Target   string
	Path     string
	RawQuery string
	Proto    string
	Headers  map[string]string
	Body     []byte

	RemoteAddr string
	ID         string // assigned by the server per connection
	Pattern    string // route pattern that matched, set by the router

	pathValues map[string]string
	ctx        context.Context
}

// NewRequest builds a request without reading from a connection.
func NewRequest(method, target string, body []byte) *Request {
	r := &Request{
		Method:  method,
		Target:  target,
		Proto:   "HTTP/1.1",
		Headers: make(map[string]string),
		Body:    body,
	}
	r.Path, r.RawQuery, _ = strings.Cut(target, "?")
	return r
}

// Context returns the request's context, context.Background if none was set.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of r carrying ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	r2 := new(Request)
	*r2 = *r
	r2.ctx = ctx
	return r2
}

// Header returns the value of the named header, case-insensitively.
func (r *Request) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// ContentLength returns the declared body length. Missing, non-numeric or
// negative values count as zero.
func (r *Request) ContentLength() int64 {
	n, err := strconv.ParseInt(r.Headers["content-length"], 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// PathValue returns the value captured by a {name} route wildcard.
func (r *Request) PathValue(name string) string {
	return r.pathValues[name]
}

func (r *Request) SetPathValue(name, value string) {
	if r.pathValues == nil {
		r.pathValues = make(map[string]string)
	}
	r.pathValues[name] = value
}

// QueryValue looks up key in the query string.
func (r *Request) QueryValue(key string) (string, bool) {
	return LookupParam(r.RawQuery, key)
}

// FormValue looks up key in a url-encoded body.
func (r *Request) FormValue(key string) (string, bool) {
	return LookupParam(string(r.Body), key)
}

type parseState int

const (
	awaitRequestLine parseState = iota
	awaitHeaders
	awaitBody
	parsed
)

// ReadRequest reads a single request from br. It returns io.EOF if the
// connection closed before sending anything. A connection that closes
// inside the headers ends the header block; one that closes inside the
// body yields the bytes that arrived.
func ReadRequest(br *bufio.Reader) (*Request, error) {
	var r *Request
	state := awaitRequestLine

	for state != parsed {
		switch state {
		case awaitRequestLine:
			line, err := readLine(br)
			if err != nil {
				if errors.Is(err, io.EOF) && line == "" {
					return nil, io.EOF
				}
				if !errors.Is(err, io.EOF) {
					return nil, fmt.Errorf("failed to read request line: %w", err)
				}
			}
			r, err = parseRequestLine(line)
			if err != nil {
				return nil, err
			}
			state = awaitHeaders

		case awaitHeaders:
			line, err := readLine(br)
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to read headers: %w", err)
			}
			if line != "" {
				addHeader(r.Headers, line)
			}
			if line == "" || err != nil {
				state = awaitBody
			}

		case awaitBody:
			if n := r.ContentLength(); n > 0 {
				var buf bytes.Buffer
				if _, err := io.CopyN(&buf, br, n); err != nil && !errors.Is(err, io.EOF) {
					return nil, fmt.Errorf("failed to read body: %w", err)
				}
				r.Body = buf.Bytes()
			}
			state = parsed
		}
	}

	return r, nil
}

func parseRequestLine(line string) (*Request, error) {
	parts := strings.Split(line, " ")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrMalformedRequest
	}
	r := NewRequest(parts[0], parts[1], nil)
	r.Proto = ""
	if len(parts) > 2 {
		r.Proto = parts[2]
	}
	return r, nil
}

// addHeader stores a "name: value" line. Lines without a name are ignored.
func addHeader(h map[string]string, line string) {
	idx := strings.IndexByte(line, ':')
	if idx <= 0 {
		return
	}
	key := strings.ToLower(strings.TrimSpace(line[:idx]))
	h[key] = strings.TrimSpace(line[idx+1:])
}

// readLine returns the next line without its trailing CRLF or LF.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, err
}
