package engine

import (
	"net/textproto"
	"strings"
)

// ForbiddenHeaders is the fixed deny-list of transport-managed header names
// stripped from every composed header set, case-insensitively, after all
// layers are merged. These are re-computed by the transport and must never be
// ability- or caller-controlled. The list is versioned: conformance tests
// assert against it and any change is a contract change.
var ForbiddenHeaders = []string{
	"Content-Length",
	"Transfer-Encoding",
	"Host",
	"Connection",
	"Keep-Alive",
	"Upgrade",
}

// HeaderLayer is one named source of headers in the composition order.
type HeaderLayer struct {
	// Name identifies the layer for logging ("static", "dynamic", "sandbox").
	Name string

	Headers map[string]string
}

// MergeHeaderLayers merges header layers into a single set. Later layers
// overwrite same-named headers from earlier layers, compared
// case-insensitively, except Cookie: when more than one layer defines Cookie
// the values are concatenated with "; " in layer order. The forbidden-header
// deny-list is stripped last, unconditionally.
//
// The merge is pure: it only reads its inputs and is independently testable
// from any network call.
func MergeHeaderLayers(layers []HeaderLayer) map[string]string {
	merged := make(map[string]string)

	for _, layer := range layers {
		for name, value := range layer.Headers {
			canonical := textproto.CanonicalMIMEHeaderKey(name)
			if canonical == "Cookie" {
				if existing, ok := merged["Cookie"]; ok && existing != "" {
					merged["Cookie"] = existing + "; " + value
					continue
				}
			}
			merged[canonical] = value
		}
	}

	for _, forbidden := range ForbiddenHeaders {
		delete(merged, textproto.CanonicalMIMEHeaderKey(forbidden))
	}
	return merged
}

// dynamicHeaderNames reduces resolved "domain::header" tokens to a plain
// header map, dropping the domain prefix.
func dynamicHeaderNames(resolved map[string]string) map[string]string {
	headers := make(map[string]string, len(resolved))
	for token, value := range resolved {
		_, header, found := strings.Cut(token, "::")
		if !found {
			header = token
		}
		headers[header] = value
	}
	return headers
}
