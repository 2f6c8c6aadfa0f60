package main

import (
	"io"
	"math/big"
	"time"

	"github.com/juju/ratelimit"
)

const (
	panicZeroRate         = "rate can't be zero"
	panicNegativeAdjustTo = "adjustTo can't be negative or zero"
)

// estimate finds the fill interval and quantum for a token bucket that
// admits rate tokens per second. The interval is a multiple of the
// reduced rate period and at least adjustTo, so the bucket is not
// woken up too often for high rates.
func estimate(rate uint64, adjustTo time.Duration) (time.Duration, uint64) {
	if rate == 0 {
		panic(panicZeroRate)
	}
	if adjustTo <= 0 {
		panic(panicNegativeAdjustTo)
	}
	br := new(big.Int).SetUint64(rate)
	bd := new(big.Int).SetInt64(oneSecond.Nanoseconds())
	gcd := new(big.Int).GCD(nil, nil, br, bd).Uint64()
	nr, nd := rate/gcd, uint64(oneSecond.Nanoseconds())/gcd
	adjustInt := uint64(adjustTo.Nanoseconds())
	if nd >= adjustInt {
		return time.Duration(nd), nr
	}
	coef := adjustInt / nd
	return time.Duration(coef * nd), coef * nr
}

func newByteBucket(bytesPerSecond uint64) *ratelimit.Bucket {
	fillInterval, quantum := estimate(bytesPerSecond, rateLimitInterval)
	return ratelimit.NewBucketWithQuantum(
		fillInterval, int64(quantum), int64(quantum),
	)
}

// throttle returns r limited to bytesPerSecond. Reads larger than the
// bucket's capacity are allowed and paid for afterwards, so the rate
// holds on average.
func throttle(r io.Reader, bytesPerSecond *uint64) io.Reader {
	if bytesPerSecond == nil {
		return r
	}
	return ratelimit.Reader(r, newByteBucket(*bytesPerSecond))
}
