package main

import (
	"fmt"
	"io"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/shopspring/decimal"
)

// progressReporter receives a sample every time the meter reads a
// non-empty chunk. ok is false when the elapsed time is too small for
// the throughput to make sense.
type progressReporter interface {
	start()
	chunk(total int64, elapsed time.Duration, throughput float64, ok bool)
	finish(total int64)
}

type noopReporter struct{}

func (noopReporter) start()                                    {}
func (noopReporter) chunk(int64, time.Duration, float64, bool) {}
func (noopReporter) finish(int64)                              {}

// lineReporter prints one line per chunk.
type lineReporter struct {
	out      io.Writer
	expected uint64
}

func (l *lineReporter) start() {}

func (l *lineReporter) chunk(
	total int64, elapsed time.Duration, throughput float64, ok bool,
) {
	line := fmt.Sprintf("totalBytesRead %d, %.3f sec", total, elapsed.Seconds())
	if ok {
		line += fmt.Sprintf(", %.2f MB/s", throughput/1024/1024)
	}
	if l.expected > 0 {
		line += " (" + percentOf(total, l.expected) + "%)"
	}
	fmt.Fprintln(l.out, line)
}

func (l *lineReporter) finish(total int64) {
	fmt.Fprintf(l.out, "Total bytes: %d\n\n", total)
}

// percentOf formats done/expected as a percentage with two decimal
// places. expected must be > 0.
func percentOf(done int64, expected uint64) string {
	return decimal.NewFromInt(done).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromUint64(expected), 2).
		StringFixed(2)
}

// barReporter renders a progress bar in byte units.
type barReporter struct {
	out io.Writer
	bar *pb.ProgressBar
}

func newBarReporter(out io.Writer, expected uint64) *barReporter {
	bar := pb.New64(int64(expected)).SetUnits(pb.U_BYTES)
	bar.Output = out
	bar.ShowSpeed = true
	bar.ManualUpdate = true
	return &barReporter{out: out, bar: bar}
}

func (b *barReporter) start() {
	b.bar.Start()
}

func (b *barReporter) chunk(total int64, _ time.Duration, _ float64, _ bool) {
	b.bar.Set64(total)
	b.bar.Update()
}

func (b *barReporter) finish(total int64) {
	b.bar.Set64(total)
	b.bar.Update()
	b.bar.Finish()
	fmt.Fprintf(b.out, "Total bytes: %d\n\n", total)
}
