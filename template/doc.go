/*
Package template documents the way user-defined output templates are
meant to be used.

User-defined templates use Go's text/template package, so you might
want to check its documentation first.
There are a bunch of helper methods available inside a template
besides those described in aforementioned documentation, namely:
  - FormatBytes(n int64) string
    Converts bytes to KiB, MiB, GiB, etc. and appends the suffix.
  - FormatBytesUint64(n uint64) string
    Same as above, but for uint64, since type conversions are
    not available in templates.
  - FormatBinary(n float64) string
    Same as above, but for floats, e.g. throughput in bytes per second.
  - Comma(n int64) string
    Places commas after every three orders of magnitude.
  - FloatsToArray(ps ...float64) []float64
    Converts a bunch of floats into array, since, again,
    type conversions are not available in templates.
  - Multiply(num, coeff float64) float64
    Arithmetics are not available inside of templates either.
  - StringToBytes(s string) []byte
    Convenience function to convert string to []byte.
  - UUIDV1() UUID
    Generates UUID Version 1, based on timestamp and
    MAC address (RFC 4122)
  - UUIDV2(domain byte) UUID
    Generates UUID Version 2, based on timestamp, MAC address
    and POSIX UID/GID (DCE 1.1)
  - UUIDV3(ns UUID, name string) UUID
    Generates UUID Version 3, based on MD5 hashing (RFC 4122)
  - UUIDV4() UUID
    Generates UUID Version 4, based on random numbers (RFC 4122)
  - UUIDV5(ns UUID, name string) UUID
    Generates UUID Version 5, based on SHA-1 hashing (RFC 4122)

The structure that gets passed to the template is documented in
the package github.com/codesenberg/payloadmeter/internal. The structure
of interest is TransferInfo. It consists of Spec and Result fields,
the former describes the transfer requested (method, URL, headers,
byte counts, rates, client, etc.), while the latter contains its
outcome (stage reached, failure kind, status code, bytes read and sent,
time taken, per-chunk throughput, etc.).

Result also provides ThroughputStats(percentiles) and
ChunkStats(percentiles) which compute statistics over the samples
taken at every chunk boundary, and Throughput() with the average
rate in bytes per second.

Examples of templates can be found in templates.go of the main package.
*/
package template
