package internal

import (
	"errors"
	"math"
	"sort"
)

var errNotEnoughValues = errors.New("not enough values")

// ReadonlyUint64Histogram is a readonly histogram with uint64 keys
type ReadonlyUint64Histogram interface {
	Get(uint64) uint64
	VisitAll(func(uint64, uint64) bool)
	Count() uint64
}

// ReadonlyFloat64Histogram is a readonly histogram with float64 keys
type ReadonlyFloat64Histogram interface {
	Get(float64) uint64
	VisitAll(func(float64, uint64) bool)
	Count() uint64
}

type key interface {
	~uint64 | ~float64
}

type keyCount[K key] struct {
	k K
	v uint64
}

// aggregates holds values calculated from a histogram in a single pass
type aggregates[K key] struct {
	Sum   float64
	Count uint64
	Max   K
	Pairs []keyCount[K]
}

func newAggregates[K key](
	visitAll func(func(K, uint64) bool), distinct uint64,
) (*aggregates[K], error) {
	a := &aggregates[K]{
		Pairs: make([]keyCount[K], 0, distinct),
	}
	visitAll(func(k K, c uint64) bool {
		f := float64(k)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return true
		}
		if k > a.Max {
			a.Max = k
		}
		a.Sum += f * float64(c)
		a.Count += c
		a.Pairs = append(a.Pairs, keyCount[K]{k, c})
		return true
	})
	if a.Count < 1 {
		return nil, errNotEnoughValues
	}
	sort.Slice(a.Pairs, func(i, j int) bool {
		return a.Pairs[i].k < a.Pairs[j].k
	})
	return a, nil
}

func (a *aggregates[K]) mean() float64 {
	return a.Sum / float64(a.Count)
}

func (a *aggregates[K]) stddev(mean float64) float64 {
	if a.Count <= 2 {
		return 0.0
	}
	sumOfSquares := 0.0
	for _, p := range a.Pairs {
		sumOfSquares += math.Pow(float64(p.k)-mean, 2) * float64(p.v)
	}
	return math.Sqrt(sumOfSquares / float64(a.Count))
}

// percentilesMap maps every requested percentile in [0, 1] to the
// smallest key whose cumulative count reaches its rank
func (a *aggregates[K]) percentilesMap(percentiles []float64) map[float64]K {
	res := make(map[float64]K, len(percentiles))
	for _, pc := range percentiles {
		if _, calculated := res[pc]; calculated {
			continue
		}
		if pc < 0 || pc > 1 {
			continue
		}
		rank := uint64(pc*float64(a.Count) + 0.5)
		total := uint64(0)
		for _, p := range a.Pairs {
			total += p.v
			if total >= rank {
				res[pc] = p.k
				break
			}
		}
	}
	return res
}
