package main

import (
	"fmt"
	"strings"
)

type printSpec struct {
	intro, progress, headers, result bool
}

var (
	defaultPrintSpec = "intro,progress,headers,result"
	noPrint          = printSpec{}
)

func parsePrintSpec(spec string) (printSpec, error) {
	ps := printSpec{}
	if spec == "" {
		return ps, errEmptyPrintSpec
	}
	for _, p := range strings.Split(spec, ",") {
		switch strings.TrimSpace(p) {
		case "i", "intro":
			ps.intro = true
		case "p", "progress":
			ps.progress = true
		case "h", "headers":
			ps.headers = true
		case "r", "result":
			ps.result = true
		default:
			return noPrint, fmt.Errorf("%q is not a valid part of print spec", p)
		}
	}
	return ps, nil
}
