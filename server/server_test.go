package server_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/voting-server/router"
	"github.com/danielhkuo/voting-server/server"
	"github.com/danielhkuo/voting-server/store"
	"github.com/danielhkuo/voting-server/testutil"
	"github.com/danielhkuo/voting-server/wire"
)

type countingObserver struct {
	opened, closed, done atomic.Int32
	mu                   sync.Mutex
	statuses             []int
}

func (o *countingObserver) ConnOpened() { o.opened.Add(1) }
func (o *countingObserver) ConnClosed() { o.closed.Add(1) }
func (o *countingObserver) RequestDone(_, _ string, status int, _ time.Duration) {
	o.done.Add(1)
	o.mu.Lock()
	o.statuses = append(o.statuses, status)
	o.mu.Unlock()
}

// start runs srv on a loopback port and returns its address. The server is
// shut down when the test ends.
func start(t *testing.T, h wire.Handler, opts ...server.Option) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := server.New(h, opts...)
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errc:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})
	return ln.Addr().String()
}

// roundTrip writes raw to addr and returns the full response.
func roundTrip(t *testing.T, addr, raw string) string {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, raw)
	require.NoError(t, err)

	resp, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(resp)
}

func postRaw(path, body string) string {
	return fmt.Sprintf("POST %s HTTP/1.1\r\nHost: localhost\r\nContent-Type: application/x-www-form-urlencoded\r\nContent-Length: %d\r\n\r\n%s",
		path, len(body), body)
}

func newRouter(t *testing.T) (*store.Store, wire.Handler) {
	st, _ := testutil.SetupTestStore(t)
	return st, router.NewRouter(st, testutil.GetTestConfig(), nil)
}

func TestServe_Health(t *testing.T) {
	_, h := newRouter(t)
	obs := &countingObserver{}
	addr := start(t, h, server.WithObserver(obs))

	resp := roundTrip(t, addr, "GET /health HTTP/1.1\r\nHost: localhost\r\n\r\n")

	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n"), resp)
	assert.Contains(t, resp, "Connection: close\r\n")
	assert.Contains(t, resp, "Content-Length: 2\r\n")
	assert.Contains(t, resp, "X-Request-Id: ")
	assert.Contains(t, resp, "Access-Control-Allow-Origin: *\r\n")
	assert.True(t, strings.HasSuffix(resp, "\r\n\r\nOK"), resp)

	assert.Eventually(t, func() bool { return obs.closed.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), obs.opened.Load())
	assert.Equal(t, int32(1), obs.done.Load())
}

func TestServe_FormPost(t *testing.T) {
	st, h := newRouter(t)
	addr := start(t, h)

	resp := roundTrip(t, addr, postRaw("/api/voter/add", "voterId=V1&name=Ann+Lee&age=30&gender=F"))

	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n"), resp)
	assert.Contains(t, resp, `"message":"Voter added successfully"`)

	v, err := st.Voter("V1")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", v.Name)
}

func TestServe_ConcurrentVotesSameVoter(t *testing.T) {
	st, h := newRouter(t)
	testutil.AddTestVoter(t, st, "V1", "Ann")
	cid := testutil.AddTestCandidate(t, st, "Alice", "PartyA", 0)
	addr := start(t, h)

	const attempts = 20
	var ok, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := roundTrip(t, addr, postRaw("/api/vote", fmt.Sprintf("voterId=V1&candidateId=%d", cid)))
			switch {
			case strings.HasPrefix(resp, "HTTP/1.1 200 "):
				ok.Add(1)
			case strings.Contains(resp, "Voter has already voted"):
				rejected.Add(1)
			default:
				t.Errorf("unexpected response: %s", resp)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(attempts-1), rejected.Load())
	assert.Len(t, st.Votes(), 1)
}

func TestServe_MalformedRequest(t *testing.T) {
	_, h := newRouter(t)
	obs := &countingObserver{}
	addr := start(t, h, server.WithObserver(obs))

	resp := roundTrip(t, addr, "GARBAGE\r\n\r\n")

	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 400 Bad Request\r\n"), resp)
	assert.True(t, strings.HasSuffix(resp, "Invalid request"), resp)
}

func TestServe_EmptyConnection(t *testing.T) {
	_, h := newRouter(t)
	obs := &countingObserver{}
	addr := start(t, h, server.WithObserver(obs))

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	resp, err := io.ReadAll(conn)
	require.NoError(t, err)
	conn.Close()

	assert.Empty(t, resp)
	assert.Eventually(t, func() bool { return obs.closed.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(0), obs.done.Load())
}

func TestServe_TruncatedBody(t *testing.T) {
	_, h := newRouter(t)
	addr := start(t, h)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	// Content-Length promises more than is sent; the body is cut at close.
	_, err = io.WriteString(conn, "POST /api/voter/login HTTP/1.1\r\nContent-Length: 100\r\n\r\nvoterId=")
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	resp, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(resp), "HTTP/1.1 400 "), string(resp))
	assert.Contains(t, string(resp), "Voter ID required")
}

func TestServe_Preflight(t *testing.T) {
	_, h := newRouter(t)
	addr := start(t, h)

	resp := roundTrip(t, addr, "OPTIONS /api/vote HTTP/1.1\r\n\r\n")

	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 204 No Content\r\n"), resp)
	assert.Contains(t, resp, "Access-Control-Allow-Methods: GET, POST, OPTIONS\r\n")
	assert.Contains(t, resp, "Content-Length: 0\r\n")
}

func TestServe_Panic(t *testing.T) {
	h := wire.HandlerFunc(func(w http.ResponseWriter, r *wire.Request) {
		w.Header().Set("X-Partial", "yes")
		_, _ = w.Write([]byte("partial"))
		panic("boom")
	})
	obs := &countingObserver{}
	addr := start(t, h, server.WithObserver(obs))

	resp := roundTrip(t, addr, "GET / HTTP/1.1\r\n\r\n")

	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 500 Internal Server Error\r\n"), resp)
	assert.NotContains(t, resp, "X-Partial")
	assert.True(t, strings.HasSuffix(resp, "\r\n\r\nboom"), resp)

	// The server keeps accepting after a panic.
	resp = roundTrip(t, addr, "GET / HTTP/1.1\r\n\r\n")
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 500 "), resp)

	assert.Eventually(t, func() bool { return obs.done.Load() == 2 }, time.Second, 10*time.Millisecond)
	obs.mu.Lock()
	assert.Equal(t, []int{500, 500}, obs.statuses)
	obs.mu.Unlock()
}

func TestServe_MaxConns(t *testing.T) {
	release := make(chan struct{})
	var active, peak atomic.Int32
	h := wire.HandlerFunc(func(w http.ResponseWriter, r *wire.Request) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		active.Add(-1)
		_, _ = w.Write([]byte("done"))
	})
	addr := start(t, h, server.WithMaxConns(2))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := roundTrip(t, addr, "GET / HTTP/1.1\r\n\r\n")
			assert.True(t, strings.HasSuffix(resp, "done"), resp)
		}()
	}

	assert.Eventually(t, func() bool { return active.Load() == 2 }, time.Second, 10*time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(2), peak.Load())
}

func TestServe_ShutdownClosesIdleConnection(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := server.New(wire.HandlerFunc(func(w http.ResponseWriter, r *wire.Request) {}))
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, ln) }()

	// Connect but never send anything.
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":8080", server.Addr(8080))
}
