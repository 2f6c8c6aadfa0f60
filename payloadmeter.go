package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"text/template"
	"time"

	"github.com/codesenberg/payloadmeter/internal"
	"github.com/codesenberg/payloadmeter/internal/payload"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	uuid "github.com/satori/go.uuid"
)

type payloadMeter struct {
	conf     config
	client   client
	counters *wireCounters

	// Output
	out      io.Writer
	log      zerolog.Logger
	template *template.Template
}

func newPayloadMeter(c config) (*payloadMeter, error) {
	if err := c.checkArgs(); err != nil {
		return nil, err
	}
	pm := new(payloadMeter)
	pm.conf = c
	pm.counters = new(wireCounters)
	pm.out = os.Stdout
	pm.log = newLogger(os.Stderr, c.verbose)

	tlsConfig, err := generateTLSConfig(c)
	if err != nil {
		return nil, err
	}
	cc := &clientOpts{
		connectTimeout: c.connectTimeout,
		tlsConfig:      tlsConfig,
		counters:       pm.counters,
	}
	pm.client = makeHTTPClient(c.clientType, cc)

	pm.template, err = pm.prepareTemplate()
	if err != nil {
		return nil, err
	}
	return pm, nil
}

func (pm *payloadMeter) prepareTemplate() (*template.Template, error) {
	var (
		templateBytes []byte
		err           error
	)
	switch f := pm.conf.format.(type) {
	case knownFormat:
		templateBytes = f.template()
	case userDefinedTemplate:
		templateBytes, err = os.ReadFile(string(f))
		if err != nil {
			return nil, err
		}
	default:
		panic("format can't be nil at this point, this is a bug")
	}
	outputTemplate, err := template.New("output-template").
		Funcs(template.FuncMap{
			"FormatBytes": func(n int64) string {
				if n < 0 {
					n = 0
				}
				return humanize.IBytes(uint64(n))
			},
			"FormatBytesUint64": humanize.IBytes,
			"FormatBinary": func(n float64) string {
				if n < 0 {
					n = 0
				}
				return humanize.IBytes(uint64(n))
			},
			"Comma": humanize.Comma,
			"FloatsToArray": func(ps ...float64) []float64 {
				return ps
			},
			"Multiply": func(num, coeff float64) float64 {
				return num * coeff
			},
			"StringToBytes": func(s string) []byte {
				return []byte(s)
			},
			"UUIDV1": uuid.NewV1,
			"UUIDV2": uuid.NewV2,
			"UUIDV3": uuid.NewV3,
			"UUIDV4": uuid.NewV4,
			"UUIDV5": uuid.NewV5,
		}).Parse(string(templateBytes))

	if err != nil {
		return nil, err
	}
	return outputTemplate, nil
}

type statusError struct {
	code int
}

func (s *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d %s",
		s.code, http.StatusText(s.code))
}

type countMismatchError struct {
	expected uint64
	actual   int64
}

func (c *countMismatchError) Error() string {
	return fmt.Sprintf("expected %d bytes, but read %d",
		c.expected, c.actual)
}

func is2xx(code int) bool {
	return code/100 == 2
}

func (pm *payloadMeter) run(ctx context.Context) internal.TransferInfo {
	if pm.conf.printIntro {
		pm.printIntro()
	}
	var res internal.Result
	switch pm.conf.testMethod() {
	case getTest:
		res = pm.testGet(ctx)
	case postTest:
		res = pm.testPost(ctx)
	}
	return internal.TransferInfo{
		Spec:   pm.spec(),
		Result: res,
	}
}

// testGet asks the server for conf.receiveBytes bytes and reads them.
func (pm *payloadMeter) testGet(ctx context.Context) internal.Result {
	req, err := buildGetRequest(pm.conf)
	if err != nil {
		return pm.setupFailure(err)
	}
	res := pm.exchange(ctx, req)
	pm.countWireBytes(&res)
	return res
}

// testPost uploads conf.sendBytes synthetic bytes and reads the
// conf.receiveBytes bytes the server sends back.
func (pm *payloadMeter) testPost(ctx context.Context) internal.Result {
	src := payload.NewSource(int64(pm.conf.sendBytes))
	body := newUploadBody(throttle(src, pm.conf.sendRate))
	req, err := buildPostRequest(pm.conf, body)
	if err != nil {
		return pm.setupFailure(err)
	}
	res := pm.exchange(ctx, req)
	// net/http may still be writing the body after the response is in.
	sent, released := body.bytesSent(uploadReleaseTimeout)
	if !released {
		pm.log.Debug().
			Int64("sent", sent).
			Msg("client didn't release the upload body in time")
	}
	res.BytesSent = sent
	pm.countWireBytes(&res)
	return res
}

func (pm *payloadMeter) setupFailure(err error) internal.Result {
	res := internal.Result{BytesExpected: pm.conf.receiveBytes}
	pm.fail(&res, internal.IOFailure, err)
	return res
}

func (pm *payloadMeter) countWireBytes(res *internal.Result) {
	res.WireBytesRead = pm.counters.bytesRead()
	res.WireBytesWritten = pm.counters.bytesWritten()
}

// exchange sends req, then reads and counts the response body. The
// body is always closed before exchange returns.
func (pm *payloadMeter) exchange(
	ctx context.Context, req *request,
) internal.Result {
	res := internal.Result{
		Stage:         internal.Idle,
		BytesExpected: pm.conf.receiveBytes,
	}

	start := time.Now()
	res.Stage = internal.RequestSent
	resp, err := pm.client.send(ctx, req)
	if err != nil {
		pm.fail(&res, internal.IOFailure,
			fmt.Errorf("sending request: %w", err))
		return res
	}
	defer func() {
		if cerr := resp.body.Close(); cerr != nil {
			pm.log.Debug().Err(cerr).Msg("closing response body")
		}
	}()

	res.Stage = internal.HeadersReceived
	res.TimeToHeaders = time.Since(start)
	res.StatusCode = resp.code
	res.Timings = resp.timings
	for _, h := range resp.headers {
		res.Headers = append(res.Headers, internal.Header{
			Key:   h.key,
			Value: h.value,
		})
	}
	ok := is2xx(resp.code)
	// Uploads show the headers of any response, downloads only of
	// the ones worth reading.
	if pm.conf.printHeaders && (ok || req.method == postTest.String()) {
		pm.printHeaders(resp.headers)
	}
	if !ok {
		pm.fail(&res, internal.StatusFailure, &statusError{resp.code})
		return res
	}

	res.Stage = internal.BodyDraining
	m := pm.newMeter()
	n, err := m.drain(throttle(resp.body, pm.conf.receiveRate))
	res.BytesRead = n
	res.TimeTaken = m.timeTaken
	res.Throughputs = m.throughputs
	res.ChunkSizes = m.chunkSizes
	if err != nil {
		pm.fail(&res, internal.IOFailure,
			fmt.Errorf("reading response body: %w", err))
		return res
	}
	if uint64(n) != pm.conf.receiveBytes {
		pm.fail(&res, internal.MismatchFailure, &countMismatchError{
			expected: pm.conf.receiveBytes,
			actual:   n,
		})
		return res
	}
	res.Stage = internal.Completed
	return res
}

func (pm *payloadMeter) fail(
	res *internal.Result, kind internal.Failure, err error,
) {
	res.FailedAt = res.Stage
	res.Stage = internal.Failed
	res.Failure = kind
	res.Error = err.Error()
	pm.log.Debug().
		Str("stage", res.FailedAt.String()).
		Str("failure", kind.String()).
		Err(err).
		Msg("transfer failed")
}

func (pm *payloadMeter) newMeter() *meter {
	opts := meterOpts{
		bufferSize: pm.conf.bufferSize,
		reporter:   noopReporter{},
	}
	if pm.conf.printProgress {
		opts.preview = pm.out
		opts.previewSize = pm.conf.previewSize
		opts.reporter = pm.newReporter()
	}
	return newMeter(opts)
}

func (pm *payloadMeter) newReporter() progressReporter {
	if pm.conf.progressBar && pm.conf.receiveBytes > 0 && isTerminal(pm.out) {
		return newBarReporter(pm.out, pm.conf.receiveBytes)
	}
	return &lineReporter{out: pm.out, expected: pm.conf.receiveBytes}
}

func (pm *payloadMeter) printIntro() {
	u, err := randomURL(pm.conf.url, pm.conf.receiveBytes)
	if err != nil {
		u = pm.conf.url
	}
	switch pm.conf.testMethod() {
	case getTest:
		fmt.Fprintf(pm.out, "Gonna read %v bytes (%v) from %v\n",
			pm.conf.receiveBytes, humanize.IBytes(pm.conf.receiveBytes), u)
	case postTest:
		fmt.Fprintf(pm.out,
			"Gonna send %v bytes (%v) to %v and read %v bytes (%v) back\n",
			pm.conf.sendBytes, humanize.IBytes(pm.conf.sendBytes), u,
			pm.conf.receiveBytes, humanize.IBytes(pm.conf.receiveBytes))
	}
}

func (pm *payloadMeter) printHeaders(headers []header) {
	for _, h := range headers {
		fmt.Fprintf(pm.out, "%v=%v\n", h.key, h.value)
	}
}

func (pm *payloadMeter) spec() internal.Spec {
	s := internal.Spec{
		Method:  pm.conf.testMethod().String(),
		BaseURL: pm.conf.url,
		Moniker: pm.conf.moniker,

		SendBytes:    pm.conf.sendBytes,
		ReceiveBytes: pm.conf.receiveBytes,

		SendRate:    pm.conf.sendRate,
		ReceiveRate: pm.conf.receiveRate,
		BufferSize:  pm.conf.bufferSize,

		CAPath:   pm.conf.caPath,
		CertPath: pm.conf.certPath,
		KeyPath:  pm.conf.keyPath,
		Insecure: pm.conf.insecure,

		ConnectTimeout: pm.conf.connectTimeout,
		ClientType:     internal.ClientType(pm.conf.clientType),
	}
	if u, err := randomURL(pm.conf.url, pm.conf.receiveBytes); err == nil {
		s.URL = u
	}
	for _, h := range pm.conf.headers.withMoniker(pm.conf.moniker) {
		s.Headers = append(s.Headers, internal.Header{
			Key:   h.key,
			Value: h.value,
		})
	}
	return s
}

func (pm *payloadMeter) printStats(info internal.TransferInfo) {
	err := pm.template.Execute(pm.out, info)
	if err != nil {
		pm.log.Error().Err(err).Msg("printing result")
	}
}

func (pm *payloadMeter) redirectOutputTo(out io.Writer) {
	pm.out = out
}

func (pm *payloadMeter) disableOutput() {
	pm.redirectOutputTo(io.Discard)
}

func main() {
	log := newLogger(os.Stderr, false)
	cfg, err := parser.parse(os.Args)
	if err != nil {
		log.Error().Err(err).Msg("invalid arguments")
		os.Exit(exitFailure)
	}
	pm, err := newPayloadMeter(cfg)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(exitFailure)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	info := pm.run(ctx)
	stop()
	if pm.conf.printResult {
		pm.printStats(info)
	}
	if res := info.Result; !res.Success() {
		log.Error().
			Str("stage", res.FailedAt.String()).
			Str("failure", res.Failure.String()).
			Msg(res.Error)
		os.Exit(exitFailure)
	}
}
