package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

const (
	programName = "payloadmeter"
)

func defaultConfig() config {
	return config{
		url:           defaultURL,
		moniker:       defaultMoniker,
		method:        "Get",
		headers:       new(headersList),
		clientType:    fhttp,
		bufferSize:    defaultBufferSize,
		previewSize:   defaultPreviewSize,
		printIntro:    true,
		printProgress: true,
		printHeaders:  true,
		printResult:   true,
		format:        knownFormat("plain-text"),
	}
}

func TestInvalidArgsParsing(t *testing.T) {
	expectations := []struct {
		in  []string
		out string
	}{
		{
			[]string{programName},
			"required flag --method not provided",
		},
		{
			[]string{programName, "-m", "Get", "http://yahoo.com"},
			"unexpected http://yahoo.com",
		},
	}
	for _, e := range expectations {
		p := newKingpinParser()
		if _, err := p.parse(e.in); err == nil ||
			err.Error() != e.out {
			t.Error(err, e.out)
		}
	}
}

func TestUnspecifiedArgParsing(t *testing.T) {
	p := newKingpinParser()
	args := []string{programName, "-m", "Get", "--someunspecifiedflag"}
	_, err := p.parse(args)
	if err == nil {
		t.Fail()
	}
}

func TestArgsParsing(t *testing.T) {
	rate := uint64(1 << 20)
	expectations := []struct {
		in  [][]string
		out func(*config)
	}{
		{
			[][]string{{programName, "-m", "Get"}},
			func(c *config) {},
		},
		{
			[][]string{
				{
					programName,
					"-u", "https://somehost.somedomain",
					"-d", "moniker",
					"-m", "Post",
					"-s", "5000",
					"-r", "2000000",
				},
				{
					programName,
					"-uhttps://somehost.somedomain",
					"-dmoniker",
					"-mPost",
					"-s5KB",
					"-r2MB",
				},
				{
					programName,
					"--url", "https://somehost.somedomain",
					"--delegated", "moniker",
					"--method", "Post",
					"--send", "5000",
					"--receive", "2000000",
				},
				{
					programName,
					"--url=https://somehost.somedomain",
					"--delegated=moniker",
					"--method=Post",
					"--send=5000",
					"--receive=2000000",
				},
			},
			func(c *config) {
				c.url = "https://somehost.somedomain"
				c.moniker = "moniker"
				c.method = "Post"
				c.sendBytes = 5000
				c.receiveBytes = 2000000
			},
		},
		{
			[][]string{
				{programName, "-m", "Get", "--http1"},
			},
			func(c *config) {
				c.clientType = nhttp1
			},
		},
		{
			[][]string{
				{programName, "-m", "Get", "--http2"},
				{programName, "-m", "Get", "--http1", "--http2"},
			},
			func(c *config) {
				c.clientType = nhttp2
			},
		},
		{
			[][]string{
				{programName, "-m", "Get", "--http2", "--fasthttp"},
			},
			func(c *config) {},
		},
		{
			[][]string{
				{
					programName, "-m", "Get",
					"--send-rate", "1MiB", "--receive-rate=1048576",
				},
			},
			func(c *config) {
				c.sendRate = &rate
				c.receiveRate = &rate
			},
		},
		{
			[][]string{
				{
					programName, "-m", "Get",
					"--connect-timeout", "3s",
					"--buffer", "64KiB",
					"--preview", "0",
					"--bar",
					"-v",
				},
			},
			func(c *config) {
				c.connectTimeout = 3 * time.Second
				c.bufferSize = 64 * 1024
				c.previewSize = 0
				c.progressBar = true
				c.verbose = true
			},
		},
		{
			[][]string{
				{
					programName, "-m", "Get",
					"-k", "--cacert", "ca.pem",
					"--cert", "cert.pem", "--key", "key.pem",
				},
				{
					programName, "-m", "Get",
					"--insecure", "--cacert=ca.pem",
					"--cert=cert.pem", "--key=key.pem",
				},
			},
			func(c *config) {
				c.insecure = true
				c.caPath = "ca.pem"
				c.certPath = "cert.pem"
				c.keyPath = "key.pem"
			},
		},
		{
			[][]string{
				{
					programName, "-m", "Get",
					"-H", "Key1: Value1",
					"-H", "Key2: Value2",
				},
				{
					programName, "-m", "Get",
					"--header", "Key1: Value1",
					"--header=Key2: Value2",
				},
			},
			func(c *config) {
				c.headers = &headersList{
					{"Key1", "Value1"},
					{"Key2", "Value2"},
				}
			},
		},
		{
			[][]string{
				{programName, "-m", "Get", "-q"},
				{programName, "-m", "Get", "--no-print"},
				{programName, "-m", "Get", "-p", "i", "-q"},
			},
			func(c *config) {
				c.printIntro = false
				c.printProgress = false
				c.printHeaders = false
				c.printResult = false
			},
		},
		{
			[][]string{
				{programName, "-m", "Get", "-p", "i,r"},
				{programName, "-m", "Get", "--print", "intro,result"},
			},
			func(c *config) {
				c.printProgress = false
				c.printHeaders = false
			},
		},
		{
			[][]string{
				{programName, "-m", "Get", "-o", "j"},
				{programName, "-m", "Get", "--format", "json"},
			},
			func(c *config) {
				c.format = knownFormat("json")
			},
		},
		{
			[][]string{
				{programName, "-m", "Get", "-o", "path:/some/template"},
			},
			func(c *config) {
				c.format = userDefinedTemplate("/some/template")
			},
		},
	}
	for _, e := range expectations {
		expected := defaultConfig()
		e.out(&expected)
		for _, args := range e.in {
			p := newKingpinParser()
			cfg, err := p.parse(args)
			if err != nil {
				t.Error(err)
				continue
			}
			if !reflect.DeepEqual(cfg, expected) {
				t.Logf("Expected: %#v", expected)
				t.Logf("Got: %#v", cfg)
				t.Fail()
			}
		}
	}
}

func TestArgsParsingWithInvalidPrintSpec(t *testing.T) {
	invalidSpecs := [][]string{
		{programName, "-m", "Get", "--print", "empty"},
		{programName, "-m", "Get", "--print", ""},
	}
	for _, is := range invalidSpecs {
		p := newKingpinParser()
		if _, err := p.parse(is); err == nil {
			t.Errorf("%v: should fail", is)
		}
	}
}

func TestArgsParsingWithInvalidFormat(t *testing.T) {
	p := newKingpinParser()
	_, err := p.parse([]string{programName, "-m", "Get", "-o", "xml"})
	if err == nil || !strings.Contains(err.Error(), "xml") {
		t.Errorf("Expected unknown format error, but got %v", err)
	}
}

func TestArgsParsingWithInvalidSizes(t *testing.T) {
	invalid := [][]string{
		{programName, "-m", "Get", "-r", "-1"},
		{programName, "-m", "Get", "-s", "lots"},
		{programName, "-m", "Get", "--send-rate", ""},
	}
	for _, args := range invalid {
		p := newKingpinParser()
		if _, err := p.parse(args); err == nil {
			t.Errorf("%v: should fail", args)
		}
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payloadmeter.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestArgsParsingWithConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
url: https://config.host
delegated: from-config
receive: 2MB
headers:
  - "X-From: config"
client: http2
receive-rate: 1MiB
connect-timeout: 5s
bar: true
format: json
`)
	rate := uint64(1 << 20)
	p := newKingpinParser()
	cfg, err := p.parse([]string{
		programName, "-m", "Get", "-c", path, "-d", "from-flags",
	})
	if err != nil {
		t.Fatal(err)
	}
	expected := defaultConfig()
	expected.url = "https://config.host"
	expected.moniker = "from-flags"
	expected.receiveBytes = 2000000
	expected.headers = &headersList{{"X-From", "config"}}
	expected.clientType = nhttp2
	expected.receiveRate = &rate
	expected.connectTimeout = 5 * time.Second
	expected.progressBar = true
	expected.format = knownFormat("json")
	expected.configPath = path
	if !reflect.DeepEqual(cfg, expected) {
		t.Logf("Expected: %#v", expected)
		t.Logf("Got: %#v", cfg)
		t.Fail()
	}
}

func TestFlagsTakePrecedenceOverConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
receive: 100
client: http1
headers:
  - "X-From: config"
`)
	p := newKingpinParser()
	cfg, err := p.parse([]string{
		programName, "-m", "Get", "--config", path,
		"-r", "200", "--fasthttp", "-H", "X-From: flags",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.receiveBytes != 200 {
		t.Errorf("Expected 200, but got %v", cfg.receiveBytes)
	}
	if cfg.clientType != fhttp {
		t.Errorf("Expected %v, but got %v", fhttp, cfg.clientType)
	}
	expectedHeaders := &headersList{{"X-From", "flags"}}
	if !reflect.DeepEqual(cfg.headers, expectedHeaders) {
		t.Errorf("Expected %v, but got %v", expectedHeaders, cfg.headers)
	}
}

func TestInvalidConfigFiles(t *testing.T) {
	expectations := []string{
		"unknown-key: 1\n",
		"receive: lots\n",
		"client: carrier-pigeon\n",
		"headers:\n  - no colon\n",
		"url: [\n",
	}
	for _, content := range expectations {
		path := writeConfigFile(t, content)
		p := newKingpinParser()
		if _, err := p.parse([]string{programName, "-m", "Get", "-c", path}); err == nil {
			t.Errorf("%q: should fail", content)
		}
	}
}

func TestMissingConfigFile(t *testing.T) {
	p := newKingpinParser()
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := p.parse([]string{programName, "-m", "Get", "-c", missing}); err == nil {
		t.Error("Should fail on a missing config file")
	}
}

func TestEmptyConfigFile(t *testing.T) {
	path := writeConfigFile(t, "")
	p := newKingpinParser()
	cfg, err := p.parse([]string{programName, "-m", "Get", "-c", path})
	if err != nil {
		t.Fatal(err)
	}
	expected := defaultConfig()
	expected.configPath = path
	if !reflect.DeepEqual(cfg, expected) {
		t.Logf("Expected: %#v", expected)
		t.Logf("Got: %#v", cfg)
		t.Fail()
	}
}

func TestSendHelpMentionsGet(t *testing.T) {
	p := newKingpinParser().(*kingpinParser)
	f := p.app.GetFlag("send")
	if f == nil {
		t.Fatal("send flag is missing")
	}
	if help := f.Model().Help; !strings.Contains(help, "Get rejects it") {
		t.Errorf("Unexpected help: %q", help)
	}
}
