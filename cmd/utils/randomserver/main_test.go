package main

import (
	"bytes"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func startServer(t *testing.T, s *server) *fasthttp.Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := newServer(s)
	go func() {
		_ = srv.Serve(ln)
	}()
	t.Cleanup(func() {
		_ = ln.Close()
	})
	return &fasthttp.Client{
		Dial: func(string) (net.Conn, error) {
			return ln.Dial()
		},
	}
}

func doRequest(
	t *testing.T, c *fasthttp.Client, method, uri string, body []byte,
	headers map[string]string,
) (int, []byte, string) {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.SetBody(body)
	}
	if err := c.Do(req, resp); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode(),
		append([]byte(nil), resp.Body()...),
		string(resp.Header.Peek(receivedHeader))
}

func TestRandomSize(t *testing.T) {
	expectations := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"/random/0", 0, true},
		{"/random/2000000", 2000000, true},
		{"/random/5/", 5, true},
		{"/random/", 0, false},
		{"/random/-1", 0, false},
		{"/random/abc", 0, false},
		{"/other/5", 0, false},
	}
	for _, e := range expectations {
		n, ok := randomSize([]byte(e.in))
		if n != e.out || ok != e.ok {
			t.Errorf("%v: expected (%v, %v), but got (%v, %v)",
				e.in, e.out, e.ok, n, ok)
		}
	}
}

func TestServerSendsExactlyN(t *testing.T) {
	c := startServer(t, &server{log: zerolog.Nop()})
	for _, n := range []int{0, 1, 1024, 2000000} {
		code, body, _ := doRequest(t, c, "GET",
			"http://random.test/random/"+strconv.Itoa(n), nil, nil)
		if code != fasthttp.StatusOK {
			t.Errorf("Expected 200, but got %v", code)
		}
		if len(body) != n {
			t.Errorf("Expected %v bytes, but got %v", n, len(body))
		}
	}
}

func TestServerCountsPostBody(t *testing.T) {
	c := startServer(t, &server{log: zerolog.Nop()})
	code, body, received := doRequest(t, c, "POST",
		"http://random.test/random/1000", bytes.Repeat([]byte{'x'}, 5000), nil)
	if code != fasthttp.StatusOK {
		t.Errorf("Expected 200, but got %v", code)
	}
	if len(body) != 1000 {
		t.Errorf("Expected 1000 bytes, but got %v", len(body))
	}
	if received != "5000" {
		t.Errorf("Expected 5000 bytes received, but got %q", received)
	}
}

func TestServerRejectsUnknownPaths(t *testing.T) {
	c := startServer(t, &server{log: zerolog.Nop()})
	code, _, _ := doRequest(t, c, "GET", "http://random.test/nope", nil, nil)
	if code != fasthttp.StatusNotFound {
		t.Errorf("Expected 404, but got %v", code)
	}
	code, _, _ = doRequest(t, c, "DELETE", "http://random.test/random/1", nil, nil)
	if code != fasthttp.StatusMethodNotAllowed {
		t.Errorf("Expected 405, but got %v", code)
	}
}

func TestServerChecksMoniker(t *testing.T) {
	c := startServer(t, &server{moniker: "abc", log: zerolog.Nop()})
	code, _, _ := doRequest(t, c, "GET", "http://random.test/random/1", nil, nil)
	if code != fasthttp.StatusForbidden {
		t.Errorf("Expected 403, but got %v", code)
	}
	code, _, _ = doRequest(t, c, "GET", "http://random.test/random/1", nil,
		map[string]string{monikerHeader: "abc"})
	if code != fasthttp.StatusOK {
		t.Errorf("Expected 200, but got %v", code)
	}
}

func TestShapedReaderDeliversEverything(t *testing.T) {
	s := &server{bandwidth: 1 << 20}
	const size = 200 * 1024
	start := time.Now()
	n, err := io.Copy(io.Discard, s.shape(bytes.NewReader(make([]byte, size))))
	if err != nil {
		t.Fatal(err)
	}
	if n != size {
		t.Errorf("Expected %v, but got %v", size, n)
	}
	// 200KiB at 1MiB/s with a 64KiB burst
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Data arrived too fast: %v", elapsed)
	}
}

func TestShapeWithoutBandwidthIsIdentity(t *testing.T) {
	r := bytes.NewReader(nil)
	if (&server{}).shape(r) != io.Reader(r) {
		t.Error("Unlimited server shouldn't wrap the reader")
	}
}
