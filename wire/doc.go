// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package wire implements the small subset of HTTP/1.1 the voting server
speaks: one request per connection, no keep-alive, no chunked bodies.

# Reading Requests

ReadRequest walks a connection through three states: request line,
headers, body. The body length comes from Content-Length only:

	req, err := wire.ReadRequest(bufio.NewReader(conn))
	if errors.Is(err, wire.ErrMalformedRequest) {
		// respond 400 "Invalid request"
	}

A connection that closes early is not an error. Missing headers end the
header block and a short body is kept as received.

# Parameters

Query strings and url-encoded bodies are scanned with LookupParam:

	voterID, ok := req.FormValue("voterId")
	sectionID, _ := req.QueryValue("sectionId")

# Writing Responses

ResponseWriter implements http.ResponseWriter, so handlers can be tested
with httptest.ResponseRecorder. The server buffers the full body and
serializes it with WriteTo:

	rw := wire.NewResponseWriter()
	handler.ServeWire(rw, req)
	rw.WriteTo(conn)

Every response carries Content-Length and Connection: close.
*/
package wire
