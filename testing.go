package islet

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/a-h/templ"
)

// EndpointResult holds the outcome of an in-memory island request.
//
// Provides convenience methods for asserting on HTML content and status
// codes without standing up a server.
type EndpointResult struct {
	HTML       string
	StatusCode int
	Headers    http.Header
}

// IsOK returns true for a 200 response.
func (tr *EndpointResult) IsOK() bool {
	return tr.StatusCode == http.StatusOK
}

// HTMLContains checks whether the response body contains the substring.
func (tr *EndpointResult) HTMLContains(s string) bool {
	return strings.Contains(tr.HTML, s)
}

// RenderToString renders a templ component to a string.
//
// Use this to capture island placeholder markup in tests:
//
//	html, err := islet.RenderToString(rc.Island(inv))
func RenderToString(component templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := component.Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CallEndpoint performs an in-memory request against an island endpoint.
//
// The target is the full request URL including any query string; body is
// the POST body ("" for GET). This exercises the complete lifecycle:
// validation, decryption, re-render, and response writing.
//
//	result := islet.CallEndpoint(endpoint, http.MethodPost, url, body)
//	if !result.IsOK() {
//	    t.Fatalf("status %d", result.StatusCode)
//	}
func CallEndpoint(e *Endpoint, method, target, body string) *EndpointResult {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return &EndpointResult{
		HTML:       rec.Body.String(),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
	}
}
