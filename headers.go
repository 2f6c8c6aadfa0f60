package main

import (
	"fmt"
	"strings"
)

type header struct {
	key, value string
}

type headersList []header

func (h *headersList) String() string {
	return fmt.Sprint(*h)
}

func (h *headersList) IsCumulative() bool {
	return true
}

func (h *headersList) Set(value string) error {
	res := strings.SplitN(value, ":", 2)
	if len(res) != 2 {
		return errInvalidHeaderFormat
	}
	*h = append(*h, header{
		res[0], strings.Trim(res[1], " "),
	})
	return nil
}

// withMoniker returns the headers to send: the delegated subnet
// moniker goes first, user headers follow in the order given. A user
// header with the moniker's name replaces the moniker.
func (h *headersList) withMoniker(moniker string) []header {
	res := []header{{monikerHeader, moniker}}
	if h == nil {
		return res
	}
	for _, hdr := range *h {
		if strings.EqualFold(hdr.key, monikerHeader) {
			res[0].value = hdr.value
			continue
		}
		res = append(res, hdr)
	}
	return res
}

// mergeHeaders joins the values of repeated headers with commas,
// keeping the order in which header names first appear.
func mergeHeaders(headers []header) []header {
	res := make([]header, 0, len(headers))
	idx := make(map[string]int, len(headers))
	for _, h := range headers {
		key := strings.ToLower(h.key)
		if i, ok := idx[key]; ok {
			res[i].value += "," + h.value
			continue
		}
		idx[key] = len(res)
		res = append(res, h)
	}
	return res
}
