package internal

import (
	"time"
)

// TransferInfo holds information about what was requested and what
// came out of the transfer. It is the value passed to output templates.
type TransferInfo struct {
	Spec   Spec
	Result Result
}

// Header represents HTTP header.
type Header struct {
	Key, Value string
}

// Spec contains information about the transfer performed.
type Spec struct {
	Method  string
	BaseURL string
	URL     string
	Moniker string

	Headers []Header

	SendBytes    uint64
	ReceiveBytes uint64

	SendRate    *uint64
	ReceiveRate *uint64
	BufferSize  uint64

	CAPath   string
	CertPath string
	KeyPath  string
	Insecure bool

	ConnectTimeout time.Duration
	ClientType     ClientType
}

// IsGet tells whether the server was only asked to send data.
func (s Spec) IsGet() bool {
	return s.Method == "GET"
}

// IsPost tells whether a synthetic body was uploaded.
func (s Spec) IsPost() bool {
	return s.Method == "POST"
}

// IsFastHTTP tells whether fasthttp were used as HTTP client.
func (s Spec) IsFastHTTP() bool {
	return s.ClientType == FastHTTP
}

// IsNetHTTPV1 tells whether Go's default net/http library and
// HTTP/1.x were used.
func (s Spec) IsNetHTTPV1() bool {
	return s.ClientType == NetHTTP1
}

// IsNetHTTPV2 tells whether Go's default net/http library and
// HTTP/1.x (or HTTP/2.0, if possible) were used.
func (s Spec) IsNetHTTPV2() bool {
	return s.ClientType == NetHTTP2
}

// Timings holds connection setup timings. They are only collected by
// net/http based clients, zero values mean "not measured".
type Timings struct {
	DNSLookup    time.Duration
	Connect      time.Duration
	TLSHandshake time.Duration
	FirstByte    time.Duration
}

// Result holds the outcome of the transfer.
type Result struct {
	Stage   Stage
	Failure Failure
	// FailedAt is the last stage reached before the failure.
	FailedAt Stage
	Error    string

	StatusCode int
	Headers    []Header

	BytesRead     int64
	BytesExpected uint64
	BytesSent     int64

	WireBytesRead, WireBytesWritten int64

	TimeToHeaders time.Duration
	TimeTaken     time.Duration
	Timings       Timings

	Throughputs ReadonlyFloat64Histogram
	ChunkSizes  ReadonlyUint64Histogram
}

// Success tells whether the transfer completed, i.e. the server
// responded with 2xx and sent exactly the expected number of bytes.
func (r Result) Success() bool {
	return r.Stage == Completed
}

// Throughput returns the average body throughput in bytes per second.
func (r Result) Throughput() float64 {
	if r.TimeTaken <= 0 {
		return 0
	}
	return float64(r.BytesRead) / r.TimeTaken.Seconds()
}

// ThroughputStats contains statistical information about per-chunk
// throughput samples.
type ThroughputStats struct {
	// These are in bytes per second
	Mean   float64
	Stddev float64
	Max    float64

	// This is  map[0.0 <= p <= 1.0 (percentile)](bytes per second)
	Percentiles map[float64]float64
}

// ThroughputStats performs various statistical calculations on
// throughput samples taken at chunk boundaries.
func (r Result) ThroughputStats(percentiles []float64) *ThroughputStats {
	if r.Throughputs == nil {
		return nil
	}
	a, err := newAggregates[float64](r.Throughputs.VisitAll, r.Throughputs.Count())
	if err != nil {
		return nil
	}
	mean := a.mean()
	return &ThroughputStats{
		Mean:        mean,
		Stddev:      a.stddev(mean),
		Max:         a.Max,
		Percentiles: a.percentilesMap(percentiles),
	}
}

// ChunkStats contains statistical information about the sizes of
// reads performed while draining the body.
type ChunkStats struct {
	Count  uint64
	Mean   float64
	Stddev float64
	Max    uint64

	Percentiles map[float64]uint64
}

// ChunkStats performs various statistical calculations on chunk sizes.
func (r Result) ChunkStats(percentiles []float64) *ChunkStats {
	if r.ChunkSizes == nil {
		return nil
	}
	a, err := newAggregates[uint64](r.ChunkSizes.VisitAll, r.ChunkSizes.Count())
	if err != nil {
		return nil
	}
	mean := a.mean()
	return &ChunkStats{
		Count:       a.Count,
		Mean:        mean,
		Stddev:      a.stddev(mean),
		Max:         a.Max,
		Percentiles: a.percentilesMap(percentiles),
	}
}

// Stage is a state of the transfer.
type Stage int

const (
	// Idle means nothing was sent yet.
	Idle Stage = iota
	// RequestSent means the request is on its way.
	RequestSent
	// HeadersReceived means the response status and headers arrived.
	HeadersReceived
	// BodyDraining means the response body is being read.
	BodyDraining
	// Completed is the terminal success state.
	Completed
	// Failed is the terminal failure state.
	Failed
)

var stageNames = [...]string{
	"idle", "request-sent", "headers-received", "body-draining",
	"completed", "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Failure tells why the transfer failed.
type Failure int

const (
	// NoFailure is the failure of the successful transfer.
	NoFailure Failure = iota
	// StatusFailure means non-2xx status code, the body was not read.
	StatusFailure
	// MismatchFailure means the body was read, but its length differs
	// from the expected one.
	MismatchFailure
	// IOFailure means network or I/O error while sending the request
	// or reading the body.
	IOFailure
)

var failureNames = [...]string{"", "status", "mismatch", "io"}

func (f Failure) String() string {
	if f < 0 || int(f) >= len(failureNames) {
		return "unknown"
	}
	return failureNames[f]
}

// ClientType is the type of HTTP client used
type ClientType int

const (
	// FastHTTP is fasthttp's HTTP client
	FastHTTP ClientType = iota
	// NetHTTP1 is Go's default HTTP client with forced HTTP/1.x
	NetHTTP1
	// NetHTTP2 is Go's default HTTP client with HTTP/2.0 permitted.
	NetHTTP2
)
