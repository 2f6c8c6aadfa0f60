// Package payload provides a synthetic byte stream of a fixed length.
//
// Only the number of bytes produced matters to the tools using it, the
// content is pseudo-random filler.
package payload

import (
	"io"
	"math/rand"
	"time"
)

// Source is an io.Reader that yields exactly Len() pseudo-random bytes
// and then reports io.EOF on every subsequent call.
// A Source is not safe for concurrent use.
type Source struct {
	total     int64
	remaining int64
	rng       *rand.Rand
}

// NewSource creates a Source of total bytes. Negative totals are
// treated as zero.
func NewSource(total int64) *Source {
	return NewSourceWithSeed(total, time.Now().UnixNano())
}

// NewSourceWithSeed is like NewSource, but makes the content
// reproducible.
func NewSourceWithSeed(total, seed int64) *Source {
	if total < 0 {
		total = 0
	}
	return &Source{
		total:     total,
		remaining: total,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Read fills p with min(len(p), Remaining()) bytes.
func (s *Source) Read(p []byte) (int, error) {
	if s.remaining == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if int64(n) > s.remaining {
		n = int(s.remaining)
	}
	// (*rand.Rand).Read never fails
	_, _ = s.rng.Read(p[:n])
	s.remaining -= int64(n)
	return n, nil
}

// Remaining returns the number of bytes not yet read.
func (s *Source) Remaining() int64 {
	return s.remaining
}

// Len returns the total number of bytes the Source produces.
func (s *Source) Len() int64 {
	return s.total
}
