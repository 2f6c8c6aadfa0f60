package main

import (
	"crypto/tls"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestReadClientCertNoFilePaths(t *testing.T) {
	if _, err := readClientCert("certPath", ""); err != nil {
		t.Errorf("got an error that was not expected: %v\n", err)
	}
}

func TestReadClientCertFailedTLSLoadX509KeyPair(t *testing.T) {
	tlsLoadX509KeyPair = func(certFile, keyFile string) (tls.Certificate, error) {
		return tls.Certificate{}, errors.New("failure")
	}
	defer func() { tlsLoadX509KeyPair = tls.LoadX509KeyPair }()

	if _, err := readClientCert("certPath", "keyPath"); err == nil {
		t.Errorf("expected an error from tlsLoadX509KeyPair\n")
	}
}

func TestReadClientCertSuccess(t *testing.T) {
	tlsLoadX509KeyPair = func(certFile, keyFile string) (tls.Certificate, error) {
		return tls.Certificate{}, nil
	}
	defer func() { tlsLoadX509KeyPair = tls.LoadX509KeyPair }()

	if _, err := readClientCert("certPath", "keyPath"); err != nil {
		t.Errorf("unexpected an error from readClientCert: %v\n", err)
	}
}

func TestGenerateTLSConfigError(t *testing.T) {
	tlsLoadX509KeyPair = func(certFile, keyFile string) (tls.Certificate, error) {
		return tls.Certificate{}, errors.New("failure")
	}
	defer func() { tlsLoadX509KeyPair = tls.LoadX509KeyPair }()

	if _, err := generateTLSConfig(config{certPath: "certPath", keyPath: "keyPath"}); err == nil {
		t.Errorf("expected an error from generateTLSConfig\n")
	}
}

func TestGenerateTLSConfigSuccess(t *testing.T) {
	tlsLoadX509KeyPair = func(certFile, keyFile string) (tls.Certificate, error) {
		return tls.Certificate{}, nil
	}
	defer func() { tlsLoadX509KeyPair = tls.LoadX509KeyPair }()

	if _, err := generateTLSConfig(config{certPath: "certPath", keyPath: "keyPath"}); err != nil {
		t.Errorf("unexpected an error from generateTLSConfig: %v\n", err)
	}
}

func TestCertPolicyFor(t *testing.T) {
	expectations := []struct {
		in  config
		out certPolicy
	}{
		{config{}, systemCertPolicy{}},
		{config{caPath: "ca.pem"}, caFileCertPolicy{path: "ca.pem"}},
		{config{insecure: true}, trustAllCertsPolicy{}},
	}
	for _, e := range expectations {
		if actual := certPolicyFor(e.in); actual != e.out {
			t.Errorf("Expected %v, but got %v", e.out, actual)
		}
	}
}

func TestSystemCertPolicyVerifies(t *testing.T) {
	tc, err := generateTLSConfig(config{})
	if err != nil {
		t.Fatal(err)
	}
	if tc.InsecureSkipVerify {
		t.Error("Certificates must be verified by default")
	}
}

func TestTrustAllCertsPolicy(t *testing.T) {
	tc, err := generateTLSConfig(config{insecure: true})
	if err != nil {
		t.Fatal(err)
	}
	if !tc.InsecureSkipVerify {
		t.Error("Expected verification to be disabled")
	}
}

func TestCAFileCertPolicyReadError(t *testing.T) {
	readCAFile = func(string) ([]byte, error) {
		return nil, errors.New("failure")
	}
	defer func() { readCAFile = os.ReadFile }()

	if _, err := generateTLSConfig(config{caPath: "ca.pem"}); err == nil {
		t.Errorf("expected an error from readCAFile\n")
	}
}

func TestCAFileCertPolicyNoCerts(t *testing.T) {
	readCAFile = func(string) ([]byte, error) {
		return []byte("not a certificate"), nil
	}
	defer func() { readCAFile = os.ReadFile }()

	_, err := generateTLSConfig(config{caPath: "ca.pem"})
	if err != errNoCertsInCAFile {
		t.Errorf("Expected %v, but got %v", errNoCertsInCAFile, err)
	}
}

func TestCAFileCertPolicySuccess(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	defer srv.Close()
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: srv.Certificate().Raw,
	})
	readCAFile = func(string) ([]byte, error) {
		return pemBytes, nil
	}
	defer func() { readCAFile = os.ReadFile }()

	tc, err := generateTLSConfig(config{caPath: "ca.pem"})
	if err != nil {
		t.Fatal(err)
	}
	if tc.RootCAs == nil || tc.InsecureSkipVerify {
		t.Error("Expected verification against the CA file")
	}
}
