package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/codesenberg/payloadmeter/internal/payload"

	"github.com/alecthomas/kingpin"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const (
	monikerHeader  = "x-ms-ppvnet-delegated-subnet-moniker"
	receivedHeader = "X-Received-Bytes"
	randomPrefix   = "/random/"

	maxBurst = 64 * 1024
)

var serverPort = kingpin.Flag("port", "port to listen on").
	Default("13765").
	Short('p').
	String()
var bandwidth = kingpin.Flag("bandwidth",
	"limit each response to that many bytes per second, 0 means no limit").
	Default("0").
	Short('b').
	Uint64()
var moniker = kingpin.Flag("moniker",
	"reject requests without this delegated subnet moniker").
	Default("").
	Short('m').
	String()

type server struct {
	bandwidth uint64
	moniker   string
	log       zerolog.Logger
}

// randomSize extracts N from /random/N.
func randomSize(path []byte) (int64, bool) {
	p := string(path)
	if !strings.HasPrefix(p, randomPrefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSuffix(p[len(randomPrefix):], "/"), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (s *server) handle(c *fasthttp.RequestCtx) {
	n, ok := randomSize(c.Path())
	if !ok {
		c.Error("not found", fasthttp.StatusNotFound)
		return
	}
	if !c.IsGet() && !c.IsPost() {
		c.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}
	if s.moniker != "" &&
		string(c.Request.Header.Peek(monikerHeader)) != s.moniker {
		c.Error("unknown delegated subnet moniker", fasthttp.StatusForbidden)
		return
	}

	var received int64
	if c.IsPost() {
		body := c.RequestBodyStream()
		if body == nil {
			body = bytes.NewReader(c.PostBody())
		}
		var err error
		received, err = io.Copy(io.Discard, body)
		if err != nil {
			s.log.Error().Err(err).Int64("received", received).Msg("reading body")
			c.Error("reading body failed", fasthttp.StatusBadRequest)
			return
		}
	}
	s.log.Info().
		Bytes("method", c.Method()).
		Int64("received", received).
		Int64("sending", n).
		Msg("random")

	c.Response.Header.Set(receivedHeader, strconv.FormatInt(received, 10))
	c.SetContentType("application/octet-stream")
	c.SetBodyStream(s.shape(payload.NewSource(n)), int(n))
}

func (s *server) shape(r io.Reader) io.Reader {
	if s.bandwidth == 0 {
		return r
	}
	burst := maxBurst
	if s.bandwidth < maxBurst {
		burst = int(s.bandwidth)
	}
	return &shapedReader{
		r:   r,
		lim: rate.NewLimiter(rate.Limit(s.bandwidth), burst),
	}
}

// shapedReader never hands out more than the limiter's burst at once
// and waits for the limiter after every read.
type shapedReader struct {
	r   io.Reader
	lim *rate.Limiter
}

func (s *shapedReader) Read(p []byte) (int, error) {
	if b := s.lim.Burst(); len(p) > b {
		p = p[:b]
	}
	n, err := s.r.Read(p)
	if n > 0 {
		if werr := s.lim.WaitN(context.Background(), n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func newServer(s *server) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:           s.handle,
		StreamRequestBody: true,
		Name:              "randomserver",
	}
}

func main() {
	kingpin.Parse()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()
	s := &server{
		bandwidth: *bandwidth,
		moniker:   *moniker,
		log:       log,
	}
	addr := "localhost:" + *serverPort
	log.Info().Str("addr", addr).Msg("Starting HTTP server")
	if err := newServer(s).ListenAndServe(addr); err != nil {
		log.Error().Err(err).Msg("serving")
		os.Exit(1)
	}
}
