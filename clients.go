package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/codesenberg/payloadmeter/internal"

	"github.com/valyala/fasthttp"
	"golang.org/x/net/http2"
)

type clientTyp int

const (
	fhttp clientTyp = iota
	nhttp1
	nhttp2
)

func (ct clientTyp) String() string {
	switch ct {
	case fhttp:
		return "FastHTTP"
	case nhttp1:
		return "net/http v1.x"
	case nhttp2:
		return "net/http v2.0"
	}
	return "unknown client"
}

// client sends a single request. send returns as soon as the response
// status and headers arrive, the body is left for the caller to read
// and close.
type client interface {
	send(ctx context.Context, req *request) (*response, error)
}

type response struct {
	code    int
	headers []header
	body    io.ReadCloser
	timings internal.Timings
}

type clientOpts struct {
	HTTP2 bool

	connectTimeout time.Duration
	tlsConfig      *tls.Config

	counters *wireCounters
}

func makeHTTPClient(clientType clientTyp, cc *clientOpts) client {
	var cl client
	switch clientType {
	case nhttp1:
		cl = newHTTPClient(cc)
	case nhttp2:
		cc.HTTP2 = true
		cl = newHTTPClient(cc)
	case fhttp:
		fallthrough
	default:
		cl = newFastHTTPClient(cc)
	}
	return cl
}

// Do reads response bodies up to this size before returning, longer
// ones are handed out as streams.
const maxBufferedBodySize = 64 * 1024

type fasthttpClient struct {
	client *fasthttp.Client

	mu    sync.Mutex
	conns []net.Conn
}

func newFastHTTPClient(opts *clientOpts) client {
	c := new(fasthttpClient)
	dial := fasthttpDialFunc(opts.counters, opts.connectTimeout)
	c.client = &fasthttp.Client{
		StreamResponseBody:            true,
		MaxResponseBodySize:           maxBufferedBodySize,
		DisableHeaderNamesNormalizing: true,
		TLSConfig:                     opts.tlsConfig,
		Dial: func(addr string) (net.Conn, error) {
			conn, err := dial(addr)
			if err != nil {
				return nil, err
			}
			c.mu.Lock()
			c.conns = append(c.conns, conn)
			c.mu.Unlock()
			return conn, nil
		},
	}
	return client(c)
}

// abort closes every connection the client ever dialed. fasthttp has
// no notion of a context, so that's the only way to interrupt a
// request or a body read in progress.
func (c *fasthttpClient) abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, conn := range c.conns {
		_ = conn.Close()
	}
}

func (c *fasthttpClient) send(
	ctx context.Context, r *request,
) (*response, error) {
	req := fasthttp.AcquireRequest()
	req.SetRequestURI(r.url)
	req.Header.SetMethod(r.method)
	for _, h := range r.headers {
		req.Header.Set(h.key, h.value)
	}
	if r.body != nil {
		req.SetBodyStream(r.body, int(r.contentLength))
	}
	// Releasing the request closes its body stream.
	if err := ctx.Err(); err != nil {
		fasthttp.ReleaseRequest(req)
		return nil, err
	}

	resp := fasthttp.AcquireResponse()
	stop := context.AfterFunc(ctx, c.abort)
	err := c.client.Do(req, resp)
	fasthttp.ReleaseRequest(req)
	if err != nil {
		stop()
		fasthttp.ReleaseResponse(resp)
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}

	var headers []header
	resp.Header.VisitAll(func(k, v []byte) {
		headers = append(headers, header{string(k), string(v)})
	})
	body := resp.BodyStream()
	if body == nil {
		body = bytes.NewReader(resp.Body())
	}
	return &response{
		code:    resp.StatusCode(),
		headers: mergeHeaders(headers),
		body: &fasthttpBody{
			r:      body,
			resp:   resp,
			stop:   stop,
			length: int64(resp.Header.ContentLength()),
		},
	}, nil
}

type fasthttpBody struct {
	r    io.Reader
	resp *fasthttp.Response
	stop func() bool

	// length is -1 for chunked bodies and -2 for the ones delimited
	// by closing the connection.
	length int64
	read   int64
}

// Read reports a body cut short by the server as io.ErrUnexpectedEOF,
// fasthttp's stream just ends.
func (b *fasthttpBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.read += int64(n)
	if err == io.EOF && b.length >= 0 && b.read < b.length {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

func (b *fasthttpBody) Close() error {
	err := b.resp.CloseBodyStream()
	fasthttp.ReleaseResponse(b.resp)
	b.stop()
	return err
}

type httpClient struct {
	client *http.Client
}

func newHTTPClient(opts *clientOpts) client {
	c := new(httpClient)
	tr := &http.Transport{
		TLSClientConfig:    opts.tlsConfig,
		DisableCompression: true,
	}
	tr.DialContext = httpDialContextFunc(opts.counters, opts.connectTimeout)
	if opts.HTTP2 {
		_ = http2.ConfigureTransport(tr)
	} else {
		tr.TLSNextProto = make(
			map[string]func(authority string, c *tls.Conn) http.RoundTripper,
		)
	}

	c.client = &http.Client{
		Transport: tr,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return client(c)
}

func (c *httpClient) send(
	ctx context.Context, r *request,
) (*response, error) {
	tt := &traceTimings{start: time.Now()}
	ctx = httptrace.WithClientTrace(ctx, tt.clientTrace())
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, nil)
	if err != nil {
		closeBody(r.body)
		return nil, err
	}
	for _, h := range r.headers {
		req.Header[h.key] = []string{h.value}
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}
	if r.body != nil {
		req.ContentLength = r.contentLength
		req.Body = io.NopCloser(r.body)
		if rc, ok := r.body.(io.ReadCloser); ok {
			req.Body = rc
		}
		if r.contentLength == 0 {
			closeBody(r.body)
			req.Body = http.NoBody
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	return &response{
		code:    resp.StatusCode,
		headers: httpHeadersToList(resp.Header),
		body:    resp.Body,
		timings: tt.timings(),
	}, nil
}

// closeBody closes request bodies that are never handed to a transport.
func closeBody(body io.Reader) {
	if c, ok := body.(io.Closer); ok {
		_ = c.Close()
	}
}

// httpHeadersToList returns headers sorted by name, multiple values
// joined with commas.
func httpHeadersToList(h http.Header) []header {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	res := make([]header, 0, len(keys))
	for _, k := range keys {
		res = append(res, header{k, strings.Join(h[k], ",")})
	}
	return res
}

// traceTimings collects connection setup timings for a single request.
type traceTimings struct {
	mu sync.Mutex

	start                         time.Time
	dnsStart, connStart, tlsStart time.Time
	t                             internal.Timings
}

func (tt *traceTimings) clientTrace() *httptrace.ClientTrace {
	since := func(from *time.Time, to *time.Duration) {
		tt.mu.Lock()
		*to = time.Since(*from)
		tt.mu.Unlock()
	}
	mark := func(at *time.Time) {
		tt.mu.Lock()
		*at = time.Now()
		tt.mu.Unlock()
	}
	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			mark(&tt.dnsStart)
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			since(&tt.dnsStart, &tt.t.DNSLookup)
		},
		ConnectStart: func(_, _ string) {
			mark(&tt.connStart)
		},
		ConnectDone: func(_, _ string, _ error) {
			since(&tt.connStart, &tt.t.Connect)
		},
		TLSHandshakeStart: func() {
			mark(&tt.tlsStart)
		},
		TLSHandshakeDone: func(tls.ConnectionState, error) {
			since(&tt.tlsStart, &tt.t.TLSHandshake)
		},
		GotFirstResponseByte: func() {
			since(&tt.start, &tt.t.FirstByte)
		},
	}
}

func (tt *traceTimings) timings() internal.Timings {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return tt.t
}
