package main

import "strings"

var (
	templates = map[string][]byte{
		"plain-text": []byte(plainTextTemplate),
		"json":       []byte(jsonTemplate),
	}
)

type format interface{}
type knownFormat string

func (kf knownFormat) template() []byte {
	return templates[string(kf)]
}

type filePath string
type userDefinedTemplate filePath

func formatFromString(formatSpec string) format {
	const prefix = "path:"
	if strings.HasPrefix(formatSpec, prefix) {
		return userDefinedTemplate(formatSpec[len(prefix):])
	}
	switch formatSpec {
	case "pt", "plain-text":
		return knownFormat("plain-text")
	case "j", "json":
		return knownFormat("json")
	}
	// nil represents unknown format
	return nil
}

const (
	plainTextTemplate = `
{{- with .Result -}}
{{- if .Success -}}
{{ printf "%-16v %v" "Outcome:" "completed" }}
{{- else -}}
{{ printf "%-16v %v failure at %v stage: %v" "Outcome:" .Failure .FailedAt .Error }}
{{- end }}
{{ printf "%-16v %v" "Status code:" .StatusCode }}
{{ printf "%-16v %v of %v (%v)" "Bytes read:" .BytesRead .BytesExpected (FormatBytes .BytesRead) }}
{{- if .BytesSent }}
{{ printf "%-16v %v (%v)" "Bytes sent:" .BytesSent (FormatBytes .BytesSent) }}
{{- end }}
{{ printf "%-16v %v read, %v written" "On the wire:" (FormatBytes .WireBytesRead) (FormatBytes .WireBytesWritten) }}
{{ printf "%-16v %v" "Time to headers:" .TimeToHeaders }}
{{ printf "%-16v %v" "Time taken:" .TimeTaken }}
{{ printf "%-16v %v/s" "Throughput:" (FormatBinary .Throughput) }}
{{- with .ThroughputStats (FloatsToArray 0.5 0.75 0.9 0.95 0.99) }}
{{ printf "%10v %10v %10v %10v" "Statistics" "Avg" "Stdev" "Max" }}
{{ printf "  %-10v %10v %10v %10v" "Bytes/sec" (FormatBinary .Mean) (FormatBinary .Stddev) (FormatBinary .Max) }}
	{{- range $pc, $tp := .Percentiles }}
		{{- printf "\n     %2.0f%% %10v/s" (Multiply $pc 100) (FormatBinary $tp) -}}
	{{ end -}}
{{- end }}
{{- with .ChunkStats (FloatsToArray 0.5 0.99) }}
{{ printf "  %-10v %10v %10v %10v" "Chunks" (FormatBinary .Mean) (FormatBinary .Stddev) (FormatBytesUint64 .Max) }}
{{- end }}
{{- with .Timings }}
{{- if .Connect }}
{{ printf "%-16v dns %v, connect %v, tls %v, first byte %v" "Connection:" .DNSLookup .Connect .TLSHandshake .FirstByte }}
{{- end }}
{{- end }}
{{ end -}}`
	jsonTemplate = `{"spec":{
{{- with .Spec -}}
"method":"{{ .Method }}","url":{{ .URL | printf "%q" }}
,"moniker":{{ .Moniker | printf "%q" }}

{{- with .Headers -}}
,"headers":[
{{- range $index, $header :=  . -}}
{{- if ne $index 0 -}},{{- end -}}
{"key":{{ .Key | printf "%q" }},"value":{{ .Value | printf "%q" }}}
{{- end -}}
]
{{- end -}}

,"sendBytes":{{ .SendBytes }},"receiveBytes":{{ .ReceiveBytes }}
,"bufferSize":{{ .BufferSize }}

{{- with .SendRate -}}
,"sendRate":{{ . }}
{{- end -}}
{{- with .ReceiveRate -}}
,"receiveRate":{{ . }}
{{- end -}}

{{- if .CAPath -}}
,"caPath":{{ .CAPath | printf "%q" }}
{{- end -}}
{{- if .CertPath -}}
,"certPath":{{ .CertPath | printf "%q" }}
{{- end -}}
{{- if .KeyPath -}}
,"keyPath":{{ .KeyPath | printf "%q" }}
{{- end -}}

,"insecure":{{ .Insecure }},"connectTimeoutSeconds":{{ .ConnectTimeout.Seconds }}

{{- if .IsFastHTTP -}}
,"client":"fasthttp"
{{- end -}}
{{- if .IsNetHTTPV1 -}}
,"client":"net/http.v1"
{{- end -}}
{{- if .IsNetHTTPV2 -}}
,"client":"net/http.v2"
{{- end -}}
{{- end -}}
},

{{- with .Result -}}
"result":{"stage":"{{ .Stage }}","success":{{ .Success }}

{{- if not .Success -}}
,"failure":"{{ .Failure }}","failedAt":"{{ .FailedAt }}"
,"error":{{ .Error | printf "%q" }}
{{- end -}}

,"statusCode":{{ .StatusCode -}}
,"bytesRead":{{ .BytesRead -}}
,"bytesExpected":{{ .BytesExpected -}}
,"bytesSent":{{ .BytesSent -}}
,"wireBytesRead":{{ .WireBytesRead -}}
,"wireBytesWritten":{{ .WireBytesWritten -}}
,"timeToHeadersSeconds":{{ .TimeToHeaders.Seconds -}}
,"timeTakenSeconds":{{ .TimeTaken.Seconds -}}
,"throughput":{{ .Throughput -}}

{{- with .Headers -}}
,"headers":[
{{- range $index, $header :=  . -}}
{{- if ne $index 0 -}},{{- end -}}
{"key":{{ .Key | printf "%q" }},"value":{{ .Value | printf "%q" }}}
{{- end -}}
]
{{- end -}}

{{- with .Timings -}}
,"timings":{"dnsLookupSeconds":{{ .DNSLookup.Seconds -}}
,"connectSeconds":{{ .Connect.Seconds -}}
,"tlsHandshakeSeconds":{{ .TLSHandshake.Seconds -}}
,"firstByteSeconds":{{ .FirstByte.Seconds -}}
}
{{- end -}}

{{- with .ThroughputStats (FloatsToArray 0.5 0.75 0.9 0.95 0.99) -}}
,"throughputStats":{"mean":{{ .Mean -}}
,"stddev":{{ .Stddev -}}
,"max":{{ .Max -}}
,"percentiles":{
{{- range $pc, $tp := .Percentiles }}
{{- if ne $pc 0.5 -}},{{- end -}}
{{- printf "\"%2.0f\":%f" (Multiply $pc 100) $tp -}}
{{- end -}}
}}
{{- end -}}

{{- with .ChunkStats (FloatsToArray 0.5 0.99) -}}
,"chunkStats":{"count":{{ .Count -}}
,"mean":{{ .Mean -}}
,"stddev":{{ .Stddev -}}
,"max":{{ .Max -}}
}
{{- end -}}
}}
{{- end -}}`
)
