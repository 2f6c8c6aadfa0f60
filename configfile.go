package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the command line flags. Values from the file only
// fill in flags absent from the command line. The test method can't
// be set from a file, it's always explicit.
type fileConfig struct {
	URL       *string  `yaml:"url"`
	Delegated *string  `yaml:"delegated"`
	Send      *string  `yaml:"send"`
	Receive   *string  `yaml:"receive"`
	Headers   []string `yaml:"headers"`

	Insecure *bool   `yaml:"insecure"`
	CACert   *string `yaml:"cacert"`
	Cert     *string `yaml:"cert"`
	Key      *string `yaml:"key"`

	Client         *string        `yaml:"client"`
	SendRate       *string        `yaml:"send-rate"`
	ReceiveRate    *string        `yaml:"receive-rate"`
	ConnectTimeout *time.Duration `yaml:"connect-timeout"`

	Buffer  *string `yaml:"buffer"`
	Preview *string `yaml:"preview"`
	Bar     *bool   `yaml:"bar"`

	Print   *string `yaml:"print"`
	NoPrint *bool   `yaml:"no-print"`
	Format  *string `yaml:"format"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fc := new(fileConfig)
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %v: %w", path, err)
	}
	return fc, nil
}

type unknownClientError struct {
	client string
}

func (u *unknownClientError) Error() string {
	return fmt.Sprintf("unknown client: %q (expected fasthttp, http1 or http2)",
		u.client)
}

func clientTypeFromString(s string) (clientTyp, error) {
	switch strings.ToLower(s) {
	case "fasthttp":
		return fhttp, nil
	case "http1":
		return nhttp1, nil
	case "http2":
		return nhttp2, nil
	}
	return fhttp, &unknownClientError{s}
}

func (fc *fileConfig) applyTo(k *kingpinParser, explicit map[string]bool) error {
	str := func(flag string, v *string, dst *string) {
		if v != nil && !explicit[flag] {
			*dst = *v
		}
	}
	flg := func(flag string, v *bool, dst *bool) {
		if v != nil && !explicit[flag] {
			*dst = *v
		}
	}
	size := func(flag string, v *string, dst *uint64) error {
		if v == nil || explicit[flag] {
			return nil
		}
		if err := newByteCount(dst).Set(*v); err != nil {
			return fmt.Errorf("%v: %w", flag, err)
		}
		return nil
	}
	rate := func(flag string, v *string, dst *nullableByteRate) error {
		if v == nil || explicit[flag] {
			return nil
		}
		if err := dst.Set(*v); err != nil {
			return fmt.Errorf("%v: %w", flag, err)
		}
		return nil
	}

	str("url", fc.URL, &k.url)
	str("delegated", fc.Delegated, &k.moniker)
	str("cacert", fc.CACert, &k.caPath)
	str("cert", fc.Cert, &k.certPath)
	str("key", fc.Key, &k.keyPath)
	str("print", fc.Print, &k.printSpec)
	str("format", fc.Format, &k.formatSpec)
	flg("insecure", fc.Insecure, &k.insecure)
	flg("bar", fc.Bar, &k.progressBar)
	flg("no-print", fc.NoPrint, &k.noPrint)
	if fc.ConnectTimeout != nil && !explicit["connect-timeout"] {
		k.connectTimeout = *fc.ConnectTimeout
	}

	for _, s := range []struct {
		flag string
		v    *string
		dst  *uint64
	}{
		{"send", fc.Send, &k.sendBytes},
		{"receive", fc.Receive, &k.receiveBytes},
		{"buffer", fc.Buffer, &k.bufferSize},
		{"preview", fc.Preview, &k.previewSize},
	} {
		if err := size(s.flag, s.v, s.dst); err != nil {
			return err
		}
	}
	if err := rate("send-rate", fc.SendRate, k.sendRate); err != nil {
		return err
	}
	if err := rate("receive-rate", fc.ReceiveRate, k.receiveRate); err != nil {
		return err
	}

	if !explicit["header"] {
		for _, h := range fc.Headers {
			if err := k.headers.Set(h); err != nil {
				return fmt.Errorf("header %q: %w", h, err)
			}
		}
	}
	if fc.Client != nil &&
		!explicit["fasthttp"] && !explicit["http1"] && !explicit["http2"] {
		ct, err := clientTypeFromString(*fc.Client)
		if err != nil {
			return err
		}
		k.clientType = ct
	}
	return nil
}
