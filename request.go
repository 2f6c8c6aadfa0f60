package main

import (
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goware/urlx"
)

// request describes the single request a test makes. It's built once
// and never modified afterwards.
type request struct {
	method  string
	url     string
	headers []header

	body          io.Reader
	contentLength int64
}

// randomURL returns base joined with random/{n}.
func randomURL(base string, n uint64) (string, error) {
	u, err := urlx.Parse(base)
	if err != nil {
		return "", err
	}
	return u.JoinPath(randomPath, strconv.FormatUint(n, decBase)).String(), nil
}

func buildGetRequest(c config) (*request, error) {
	u, err := randomURL(c.url, c.receiveBytes)
	if err != nil {
		return nil, err
	}
	return &request{
		method:  getTest.String(),
		url:     u,
		headers: c.headers.withMoniker(c.moniker),
	}, nil
}

// buildPostRequest attaches body as a payload of exactly
// c.sendBytes bytes.
func buildPostRequest(c config, body io.Reader) (*request, error) {
	u, err := randomURL(c.url, c.receiveBytes)
	if err != nil {
		return nil, err
	}
	return &request{
		method:        postTest.String(),
		url:           u,
		headers:       c.headers.withMoniker(c.moniker),
		body:          body,
		contentLength: int64(c.sendBytes),
	}, nil
}

// uploadBody counts the bytes a client takes from an upload body.
// Clients close it once they are done writing, which may happen after
// the response has arrived.
type uploadBody struct {
	r    io.Reader
	sent atomic.Int64

	once     sync.Once
	released chan struct{}
}

func newUploadBody(r io.Reader) *uploadBody {
	return &uploadBody{
		r:        r,
		released: make(chan struct{}),
	}
}

func (u *uploadBody) Read(p []byte) (int, error) {
	n, err := u.r.Read(p)
	u.sent.Add(int64(n))
	return n, err
}

func (u *uploadBody) Close() error {
	u.once.Do(func() { close(u.released) })
	return nil
}

// bytesSent waits up to timeout for the body to be closed and returns
// the number of bytes read from it so far.
func (u *uploadBody) bytesSent(timeout time.Duration) (int64, bool) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-u.released:
		return u.sent.Load(), true
	case <-t.C:
		return u.sent.Load(), false
	}
}
