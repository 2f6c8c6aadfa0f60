/*
Command line utility payloadmeter makes a single large HTTP transfer
and measures its throughput while the body streams.

A GET test asks the server for N bytes, a POST test uploads N'
synthetic bytes and asks for N bytes back. Both talk to
{url}/random/{N} and send the delegated subnet moniker header
x-ms-ppvnet-delegated-subnet-moniker. The transfer succeeds when the
server answers with a 2xx status code and exactly N bytes.

Installation:

	go install github.com/codesenberg/payloadmeter@latest

Usage:

	payloadmeter --method=METHOD [<flags>]

Flags:

	    --help                  Show context-sensitive help (also try --help-long
	                            and --help-man).
	    --version               Show application version.
	-u, --url="http://localhost:13765"
	                            Base URL of the server
	-d, --delegated="add696cb-69f0-484e-bb76-a374195d32c7"
	                            Delegated subnet moniker
	-m, --method=Get|Post       Test to run: Get or Post
	-s, --send=0                Number of bytes to send (Post only), e.g. 5000 or
	                            2MiB
	-r, --receive=0             Number of bytes to ask the server for
	-H, --header="K: V" ...     HTTP headers to use(can be repeated)
	-k, --insecure              Controls whether a client verifies the server's
	                            certificate chain and host name
	    --cacert=""             Path to PEM encoded CA certificates to trust
	    --cert=""               Path to the client's TLS Certificate
	    --key=""                Path to the client's TLS Certificate Private Key
	    --fasthttp              Use fasthttp client
	    --http1                 Use net/http client with forced HTTP/1.x
	    --http2                 Use net/http client with enabled HTTP/2.0
	    --send-rate=[<size>]    Upload rate limit in bytes per second
	    --receive-rate=[<size>] Download rate limit in bytes per second
	    --connect-timeout=0s    Dial timeout, 0 means no timeout
	    --buffer=1048576        Size of the buffer the body is read into
	    --preview=1024          Number of leading body bytes to echo, 0 disables
	    --bar                   Show a progress bar instead of per-chunk lines
	-p, --print=<spec>          Specifies what to output. Comma-separated list of
	                            values 'intro' (short: 'i'), 'progress' (short:
	                            'p'), 'headers' (short: 'h'), 'result' (short:
	                            'r').
	-q, --no-print              Don't output anything
	-o, --format=<spec>         Which format to use to output the result. <spec>
	                            is either plain-text (short: pt), json (short: j)
	                            or a path to a text/template prefixed with
	                            'path:'
	-c, --config=<path>         YAML file with default values for the flags
	-v, --verbose               Log diagnostics to stderr

Sizes accept plain numbers of bytes as well as human readable values,
e.g. 5000, 5KB or 2MiB.

The YAML file passed with --config uses flag names as keys, headers are
a list and the client is one of fasthttp, http1 or http2:

	url: https://example.com
	receive: 2MB
	headers:
	  - "Accept: application/octet-stream"
	client: http2

Flags given on the command line take precedence over the file. The
process exits with status 1 when the arguments are invalid or the
transfer fails.

For detailed documentation on user-defined templates see
documentation for package github.com/codesenberg/payloadmeter/template.
*/
package main
