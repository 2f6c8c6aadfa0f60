package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/goware/urlx"
)

type testMethod int

const (
	noTest testMethod = iota
	getTest
	postTest
)

func (m testMethod) String() string {
	switch m {
	case getTest:
		return "GET"
	case postTest:
		return "POST"
	}
	return "UNKNOWN"
}

func testMethodFromString(s string) testMethod {
	switch strings.ToLower(s) {
	case "get":
		return getTest
	case "post":
		return postTest
	}
	return noTest
}

type config struct {
	url, moniker, method string
	sendBytes            uint64
	receiveBytes         uint64
	headers              *headersList

	insecure                  bool
	caPath, certPath, keyPath string
	clientType                clientTyp
	connectTimeout            time.Duration
	sendRate, receiveRate     *uint64
	bufferSize, previewSize   uint64
	progressBar               bool
	configPath                string
	verbose                   bool

	printIntro    bool
	printProgress bool
	printHeaders  bool
	printResult   bool

	format format
}

type invalidTestMethodError struct {
	method string
}

func (i *invalidTestMethodError) Error() string {
	return fmt.Sprintf("unknown test method: %q (expected Get or Post)",
		i.method)
}

func (c *config) checkArgs() error {
	u, err := urlx.Parse(c.url)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errUnsupportedScheme
	}
	if c.moniker == "" {
		return errEmptyMoniker
	}
	m := c.testMethod()
	if m == noTest {
		return &invalidTestMethodError{method: c.method}
	}
	if m == getTest && c.sendBytes > 0 {
		return errBodyNotAllowed
	}
	if c.bufferSize == 0 {
		return errZeroBufferSize
	}
	if c.connectTimeout < 0 {
		return errNegativeTimeout
	}
	if err := checkRate(c.sendRate); err != nil {
		return err
	}
	if err := checkRate(c.receiveRate); err != nil {
		return err
	}
	if c.insecure && c.caPath != "" {
		return errInsecureWithCA
	}
	if c.certPath != "" && c.keyPath == "" {
		return errNoPathToKey
	}
	if c.keyPath != "" && c.certPath == "" {
		return errNoPathToCert
	}
	return nil
}

func checkRate(rate *uint64) error {
	if rate != nil && *rate < 1 {
		return errZeroRate
	}
	return nil
}

func (c *config) testMethod() testMethod {
	return testMethodFromString(c.method)
}
