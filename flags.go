package main

import (
	"strconv"

	"github.com/dustin/go-humanize"
)

// byteCount accepts plain integers as well as human readable sizes,
// e.g. "5000", "5KB" or "2MiB".
type byteCount struct {
	val *uint64
}

func newByteCount(target *uint64) *byteCount {
	return &byteCount{val: target}
}

func (b *byteCount) String() string {
	if b.val == nil {
		return "0"
	}
	return strconv.FormatUint(*b.val, decBase)
}

func (b *byteCount) Set(value string) error {
	res, err := humanize.ParseBytes(value)
	if err != nil {
		return err
	}
	*b.val = res
	return nil
}

type nullableByteRate struct {
	val *uint64
}

func (n *nullableByteRate) String() string {
	if n.val == nil {
		return "nil"
	}
	return strconv.FormatUint(*n.val, decBase)
}

func (n *nullableByteRate) Set(value string) error {
	res, err := humanize.ParseBytes(value)
	if err != nil {
		return err
	}
	n.val = new(uint64)
	*n.val = res
	return nil
}
