package main

import (
	"io"
	"time"

	fhist "github.com/codesenberg/concurrent/float64/histogram"
	uhist "github.com/codesenberg/concurrent/uint64/histogram"
)

const (
	// Reads finishing sooner than that after the start don't give a
	// meaningful throughput.
	minMeasurableElapsed = time.Millisecond

	maxConsecutiveEmptyReads = 100
)

var previewMarker = []byte("\n...\n")

type meterOpts struct {
	bufferSize  uint64
	previewSize uint64
	// preview receives the first previewSize bytes verbatim, nil
	// disables the preview.
	preview  io.Writer
	reporter progressReporter
}

// meter drains a stream in fixed-size chunks, keeping track of the
// amount of data read and the throughput at every chunk boundary.
type meter struct {
	buf         []byte
	previewSize int64
	preview     io.Writer
	reporter    progressReporter
	now         func() time.Time

	chunkSizes  *uhist.Histogram
	throughputs *fhist.Histogram
	timeTaken   time.Duration

	previewed, elided bool
}

func newMeter(opts meterOpts) *meter {
	reporter := opts.reporter
	if reporter == nil {
		reporter = noopReporter{}
	}
	preview := opts.preview
	if opts.previewSize == 0 {
		preview = nil
	}
	return &meter{
		buf:         make([]byte, opts.bufferSize),
		previewSize: int64(opts.previewSize),
		preview:     preview,
		reporter:    reporter,
		now:         time.Now,
		chunkSizes:  uhist.Default(),
		throughputs: fhist.Default(),
	}
}

// throughput is in bytes per second, ok is false when elapsed is too
// short to divide by.
func throughput(total int64, elapsed time.Duration) (float64, bool) {
	if elapsed < minMeasurableElapsed {
		return 0, false
	}
	return float64(total) / elapsed.Seconds(), true
}

// drain reads r until io.EOF and returns the number of bytes read. Any
// other error stops the drain and is returned along with the number of
// bytes read so far.
func (m *meter) drain(r io.Reader) (int64, error) {
	var (
		total int64
		empty int
		err   error
	)
	m.previewed, m.elided = false, false
	m.reporter.start()
	start := m.now()
	for {
		var n int
		n, err = r.Read(m.buf)
		if n > 0 {
			empty = 0
			before := total
			total += int64(n)
			elapsed := m.now().Sub(start)
			tp, ok := throughput(total, elapsed)
			m.chunkSizes.Increment(uint64(n))
			if ok {
				m.throughputs.Increment(tp)
			}
			m.reporter.chunk(total, elapsed, tp, ok)
			m.writePreview(m.buf[:n], before)
		} else if err == nil {
			empty++
			if empty >= maxConsecutiveEmptyReads {
				err = io.ErrNoProgress
			}
		}
		if err != nil {
			break
		}
	}
	m.timeTaken = m.now().Sub(start)
	if m.previewed && !m.elided {
		_, _ = m.preview.Write([]byte{'\n'})
	}
	m.reporter.finish(total)
	if err == io.EOF {
		err = nil
	}
	return total, err
}

// writePreview echoes the part of chunk that falls within the first
// previewSize bytes of the stream, then writes the marker once.
func (m *meter) writePreview(chunk []byte, before int64) {
	if m.preview == nil || m.elided {
		return
	}
	if room := m.previewSize - before; room > 0 {
		if int64(len(chunk)) <= room {
			_, _ = m.preview.Write(chunk)
			m.previewed = true
			return
		}
		_, _ = m.preview.Write(chunk[:room])
	}
	_, _ = m.preview.Write(previewMarker)
	m.elided = true
}
