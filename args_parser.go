package main

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/alecthomas/kingpin"
)

type argsParser interface {
	parse([]string) (config, error)
}

type kingpinParser struct {
	app *kingpin.Application

	url     string
	moniker string
	method  string

	sendBytes    uint64
	receiveBytes uint64
	headers      *headersList

	insecure bool
	caPath   string
	certPath string
	keyPath  string

	clientType     clientTyp
	sendRate       *nullableByteRate
	receiveRate    *nullableByteRate
	connectTimeout time.Duration

	bufferSize  uint64
	previewSize uint64
	progressBar bool

	printSpec  string
	noPrint    bool
	formatSpec string
	configPath string
	verbose    bool
}

func newKingpinParser() argsParser {
	kparser := &kingpinParser{
		url:         defaultURL,
		moniker:     defaultMoniker,
		headers:     new(headersList),
		clientType:  fhttp,
		sendRate:    new(nullableByteRate),
		receiveRate: new(nullableByteRate),
		bufferSize:  defaultBufferSize,
		previewSize: defaultPreviewSize,
		printSpec:   defaultPrintSpec,
		formatSpec:  "plain-text",
	}

	app := kingpin.New("", "Measures throughput of a single large HTTP transfer").
		Version("payloadmeter version " + version + " " + runtime.GOOS + "/" +
			runtime.GOARCH)
	app.Flag("url", "Base URL of the server").
		Short('u').
		Default(defaultURL).
		StringVar(&kparser.url)
	app.Flag("delegated", "Delegated subnet moniker").
		Short('d').
		Default(defaultMoniker).
		StringVar(&kparser.moniker)
	app.Flag("method", "Test to run: Get or Post").
		Short('m').
		Required().
		PlaceHolder("Get|Post").
		StringVar(&kparser.method)
	app.Flag("send", "Number of bytes to send, e.g. 5000 or 2MiB (Post only, Get rejects it)").
		Short('s').
		Default("0").
		SetValue(newByteCount(&kparser.sendBytes))
	app.Flag("receive", "Number of bytes to ask the server for").
		Short('r').
		Default("0").
		SetValue(newByteCount(&kparser.receiveBytes))
	app.Flag("header", "HTTP headers to use(can be repeated)").
		PlaceHolder("\"K: V\"").
		Short('H').
		SetValue(kparser.headers)

	app.Flag("insecure",
		"Controls whether a client verifies the server's certificate"+
			" chain and host name").
		Short('k').
		BoolVar(&kparser.insecure)
	app.Flag("cacert", "Path to PEM encoded CA certificates to trust").
		Default("").
		StringVar(&kparser.caPath)
	app.Flag("cert", "Path to the client's TLS Certificate").
		Default("").
		StringVar(&kparser.certPath)
	app.Flag("key", "Path to the client's TLS Certificate Private Key").
		Default("").
		StringVar(&kparser.keyPath)

	app.Flag("fasthttp", "Use fasthttp client").
		Action(func(*kingpin.ParseContext) error {
			kparser.clientType = fhttp
			return nil
		}).
		Bool()
	app.Flag("http1", "Use net/http client with forced HTTP/1.x").
		Action(func(*kingpin.ParseContext) error {
			kparser.clientType = nhttp1
			return nil
		}).
		Bool()
	app.Flag("http2", "Use net/http client with enabled HTTP/2.0").
		Action(func(*kingpin.ParseContext) error {
			kparser.clientType = nhttp2
			return nil
		}).
		Bool()

	app.Flag("send-rate", "Upload rate limit in bytes per second").
		PlaceHolder("[<size>]").
		SetValue(kparser.sendRate)
	app.Flag("receive-rate", "Download rate limit in bytes per second").
		PlaceHolder("[<size>]").
		SetValue(kparser.receiveRate)
	app.Flag("connect-timeout", "Dial timeout, 0 means no timeout").
		Default("0s").
		DurationVar(&kparser.connectTimeout)
	app.Flag("buffer", "Size of the buffer the body is read into").
		Default(strconv.FormatUint(defaultBufferSize, decBase)).
		SetValue(newByteCount(&kparser.bufferSize))
	app.Flag("preview", "Number of leading body bytes to echo, 0 disables").
		Default(strconv.FormatUint(defaultPreviewSize, decBase)).
		SetValue(newByteCount(&kparser.previewSize))
	app.Flag("bar", "Show a progress bar instead of per-chunk lines").
		BoolVar(&kparser.progressBar)

	app.Flag("print", "Specifies what to output. Comma-separated list of values"+
		" 'intro' (short: 'i'), 'progress' (short: 'p'),"+
		" 'headers' (short: 'h'), 'result' (short: 'r').").
		PlaceHolder("<spec>").
		Short('p').
		StringVar(&kparser.printSpec)
	app.Flag("no-print", "Don't output anything").
		Short('q').
		BoolVar(&kparser.noPrint)
	app.Flag("format", "Which format to use to output the result. <spec> is"+
		" either plain-text (short: pt), json (short: j) or a path to a"+
		" text/template prefixed with 'path:'").
		PlaceHolder("<spec>").
		Short('o').
		StringVar(&kparser.formatSpec)
	app.Flag("config", "YAML file with default values for the flags").
		Short('c').
		PlaceHolder("<path>").
		StringVar(&kparser.configPath)
	app.Flag("verbose", "Log diagnostics to stderr").
		Short('v').
		BoolVar(&kparser.verbose)

	kparser.app = app
	return argsParser(kparser)
}

func (k *kingpinParser) parse(args []string) (config, error) {
	k.app.Name = args[0]
	_, err := k.app.Parse(args[1:])
	if err != nil {
		return emptyConf, err
	}
	if k.configPath != "" {
		fc, err := loadFileConfig(k.configPath)
		if err != nil {
			return emptyConf, err
		}
		if err := fc.applyTo(k, k.explicitFlags(args[1:])); err != nil {
			return emptyConf, fmt.Errorf("%v: %w", k.configPath, err)
		}
	}

	pi, pp, ph, pr := true, true, true, true
	if k.noPrint {
		pi, pp, ph, pr = false, false, false, false
	} else {
		ps, err := parsePrintSpec(k.printSpec)
		if err != nil {
			return emptyConf, err
		}
		pi, pp, ph, pr = ps.intro, ps.progress, ps.headers, ps.result
	}
	format := formatFromString(k.formatSpec)
	if format == nil {
		return emptyConf, fmt.Errorf(
			"unknown format or invalid format spec %q", k.formatSpec,
		)
	}
	return config{
		url:            k.url,
		moniker:        k.moniker,
		method:         k.method,
		sendBytes:      k.sendBytes,
		receiveBytes:   k.receiveBytes,
		headers:        k.headers,
		insecure:       k.insecure,
		caPath:         k.caPath,
		certPath:       k.certPath,
		keyPath:        k.keyPath,
		clientType:     k.clientType,
		connectTimeout: k.connectTimeout,
		sendRate:       k.sendRate.val,
		receiveRate:    k.receiveRate.val,
		bufferSize:     k.bufferSize,
		previewSize:    k.previewSize,
		progressBar:    k.progressBar,
		configPath:     k.configPath,
		verbose:        k.verbose,
		printIntro:     pi,
		printProgress:  pp,
		printHeaders:   ph,
		printResult:    pr,
		format:         format,
	}, nil
}

// explicitFlags returns the names of the flags present in args.
func (k *kingpinParser) explicitFlags(args []string) map[string]bool {
	set := make(map[string]bool)
	pc, err := k.app.ParseContext(args)
	if err != nil {
		return set
	}
	for _, el := range pc.Elements {
		if f, ok := el.Clause.(*kingpin.FlagClause); ok {
			set[f.Model().Name] = true
		}
	}
	return set
}
