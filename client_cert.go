package main

import (
	"crypto/tls"
	"crypto/x509"
	"os"
)

var (
	tlsLoadX509KeyPair = tls.LoadX509KeyPair
	readCAFile         = os.ReadFile
)

// readClientCert - helper function to read client certificate
// from pem formatted certPath and keyPath files
func readClientCert(certPath, keyPath string) ([]tls.Certificate, error) {
	if certPath != "" && keyPath != "" {
		// load keypair
		cert, err := tlsLoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return nil, err
		}

		return []tls.Certificate{cert}, nil
	}
	return nil, nil
}

// certPolicy decides how the server's certificate chain is verified.
type certPolicy interface {
	apply(*tls.Config) error
}

// systemCertPolicy is the standard verification against the system
// roots.
type systemCertPolicy struct{}

func (systemCertPolicy) apply(*tls.Config) error {
	return nil
}

// caFileCertPolicy verifies against the system roots plus the
// certificates from a PEM file.
type caFileCertPolicy struct {
	path string
}

func (p caFileCertPolicy) apply(tc *tls.Config) error {
	pem, err := readCAFile(p.path)
	if err != nil {
		return err
	}
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return errNoCertsInCAFile
	}
	tc.RootCAs = pool
	return nil
}

// trustAllCertsPolicy accepts any certificate chain and host name.
// The connection is encrypted, but the server is not authenticated.
// Only selected by --insecure.
type trustAllCertsPolicy struct{}

func (trustAllCertsPolicy) apply(tc *tls.Config) error {
	// Disable gas warning, because InsecureSkipVerify may be set to true
	// for the purpose of testing
	/* #nosec */
	tc.InsecureSkipVerify = true
	return nil
}

func certPolicyFor(c config) certPolicy {
	switch {
	case c.insecure:
		return trustAllCertsPolicy{}
	case c.caPath != "":
		return caFileCertPolicy{path: c.caPath}
	}
	return systemCertPolicy{}
}

// generateTLSConfig - helper function to generate a TLS configuration based on
// config
func generateTLSConfig(c config) (*tls.Config, error) {
	certs, err := readClientCert(c.certPath, c.keyPath)
	if err != nil {
		return nil, err
	}
	tlsConfig := &tls.Config{
		Certificates: certs,
	}
	if err := certPolicyFor(c).apply(tlsConfig); err != nil {
		return nil, err
	}
	return tlsConfig, nil
}
