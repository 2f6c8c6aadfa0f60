package main

import (
	"errors"
	"time"
)

const (
	decBase = 10

	monikerHeader = "x-ms-ppvnet-delegated-subnet-moniker"
	randomPath    = "random"

	rateLimitInterval    = 10 * time.Millisecond
	oneSecond            = 1 * time.Second
	uploadReleaseTimeout = 5 * time.Second

	exitFailure = 1
)

var (
	version = "unspecified"

	emptyConf = config{}
	parser    = newKingpinParser()

	defaultURL         = "http://localhost:13765"
	defaultMoniker     = "add696cb-69f0-484e-bb76-a374195d32c7"
	defaultBufferSize  = uint64(1024 * 1024)
	defaultPreviewSize = uint64(1024)

	errUnsupportedScheme = errors.New("unsupported scheme")
	errEmptyMoniker      = errors.New(
		"delegated subnet moniker can't be empty")
	errBodyNotAllowed = errors.New(
		"GET test can't send a body, use --method=post")
	errZeroBufferSize = errors.New(
		"buffer size must be > 0")
	errNoPathToCert = errors.New(
		"no Path to TLS Client Certificate")
	errNoPathToKey = errors.New(
		"no Path to TLS Client Certificate Private Key")
	errZeroRate = errors.New(
		"rate can't be less than 1")
	errNegativeTimeout = errors.New(
		"timeout can't be negative")
	errInsecureWithCA  = errors.New("use either --insecure or --cacert")
	errNoCertsInCAFile = errors.New(
		"no PEM encoded certificates found in CA file")

	errInvalidHeaderFormat = errors.New("invalid header format")
	errEmptyPrintSpec      = errors.New(
		"empty print spec is not a valid print spec")
)
