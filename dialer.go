package main

import (
	"context"
	"net"
	"sync/atomic"
	"time"
)

// wireCounters counts bytes as they cross the socket, including
// headers, framing and TLS overhead.
type wireCounters struct {
	read, written int64
}

func (w *wireCounters) bytesRead() int64 {
	return atomic.LoadInt64(&w.read)
}

func (w *wireCounters) bytesWritten() int64 {
	return atomic.LoadInt64(&w.written)
}

type countingConn struct {
	net.Conn
	counters *wireCounters
}

func (cc *countingConn) Read(b []byte) (n int, err error) {
	n, err = cc.Conn.Read(b)
	atomic.AddInt64(&cc.counters.read, int64(n))
	return
}

func (cc *countingConn) Write(b []byte) (n int, err error) {
	n, err = cc.Conn.Write(b)
	atomic.AddInt64(&cc.counters.written, int64(n))
	return
}

// A zero dialTimeout means no timeout at all.
var fasthttpDialFunc = func(
	counters *wireCounters, dialTimeout time.Duration,
) func(string) (net.Conn, error) {
	return func(address string) (net.Conn, error) {
		conn, err := net.DialTimeout("tcp", address, dialTimeout)
		if err != nil {
			return nil, err
		}
		return &countingConn{Conn: conn, counters: counters}, nil
	}
}

var httpDialContextFunc = func(
	counters *wireCounters, dialTimeout time.Duration,
) func(context.Context, string, string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: dialTimeout}
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		return &countingConn{Conn: conn, counters: counters}, nil
	}
}
