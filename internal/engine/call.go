package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"
)

// maxResponseBytes caps how much of an upstream body is read into memory.
const maxResponseBytes = 10 << 20 // 10 MiB

// UpstreamResponse is the raw outcome of one permitted network call.
type UpstreamResponse struct {
	StatusCode int
	Headers    map[string]string

	// Body is the parsed value tree for structured content types, otherwise
	// the body text. Parse failure on declared-structured content degrades to
	// the raw text rather than failing the call.
	Body interface{}

	// RawText is the body as received, always populated.
	RawText string
}

// CallFn is the network-call capability handed to sandboxed ability logic.
// Headers supplied by the logic form the lowest-trust layer of the header
// composition; the composed set wins.
type CallFn = func(method, url string, headers map[string]string, body string) (map[string]interface{}, error)

// callPrimitive is the single network capability exposed inside the sandbox.
// It applies the composed header layers on top of whatever the logic supplies,
// performs the request, and records the responses it produced so the engine
// can classify the attempt afterwards.
type callPrimitive struct {
	client *http.Client

	// staticHeaders and dynamicHeaders are the pre-composed layers; the
	// in-sandbox layer arrives per call.
	staticHeaders  map[string]string
	dynamicHeaders map[string]string

	mu    sync.Mutex
	calls int
	last  *UpstreamResponse
}

func newCallPrimitive(client *http.Client, staticHeaders, dynamicHeaders map[string]string) *callPrimitive {
	if client == nil {
		client = http.DefaultClient
	}
	return &callPrimitive{
		client:         client,
		staticHeaders:  staticHeaders,
		dynamicHeaders: dynamicHeaders,
	}
}

// callCount reports how many network calls the sandbox issued.
func (p *callPrimitive) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// lastResponse returns the most recent upstream response, or nil if the logic
// never completed a call.
func (p *callPrimitive) lastResponse() *UpstreamResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// do performs the one kind of network call the sandbox may make.
func (p *callPrimitive) do(ctx context.Context, method, rawURL string, sandboxHeaders map[string]string, body string) (*UpstreamResponse, error) {
	merged := MergeHeaderLayers([]HeaderLayer{
		{Name: "static", Headers: p.staticHeaders},
		{Name: "dynamic", Headers: p.dynamicHeaders},
		{Name: "sandbox", Headers: sandboxHeaders},
	})

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for name, value := range merged {
		req.Header.Set(name, value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	upstream := &UpstreamResponse{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		RawText:    string(raw),
	}
	upstream.Body = parseBody(resp.Header.Get("Content-Type"), raw)

	p.mu.Lock()
	p.calls++
	p.last = upstream
	p.mu.Unlock()

	logging.Debug("Engine", "Upstream %s %s -> %d (%d bytes)", method, rawURL, resp.StatusCode, len(raw))
	return upstream, nil
}

// asCallFn adapts the primitive to the function type handed to interpreted
// ability logic. The returned response map exposes status, headers and the
// parsed body; never the composed header set that was sent.
func (p *callPrimitive) asCallFn(ctx context.Context) CallFn {
	return func(method, url string, headers map[string]string, body string) (map[string]interface{}, error) {
		upstream, err := p.do(ctx, method, url, headers, body)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"status":  upstream.StatusCode,
			"headers": upstream.Headers,
			"body":    upstream.Body,
			"text":    upstream.RawText,
		}, nil
	}
}

// parseBody reads the body according to the declared content type: structured
// bodies are parsed into a value tree, textual bodies are returned as text,
// anything else is returned as text best-effort.
func parseBody(contentType string, raw []byte) interface{} {
	text := string(raw)
	mediaType := strings.ToLower(contentType)
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}

	if strings.Contains(mediaType, "json") {
		var parsed interface{}
		if err := json.Unmarshal(raw, &parsed); err == nil {
			return parsed
		}
		// Declared structured but unparseable: degrade to raw text.
		return text
	}
	return text
}

func flattenHeaders(header http.Header) map[string]string {
	flat := make(map[string]string, len(header))
	for name, values := range header {
		flat[name] = strings.Join(values, ", ")
	}
	return flat
}
