package islet

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func TestRenderSetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	comp := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>page</p>")
		return err
	})

	if err := Render(rec, req, comp); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.String() != "<p>page</p>" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestFinishDeliversCSPHeader(t *testing.T) {
	rc := NewRenderContext(ContextConfig{
		CSPDestination: CSPHeader,
		CSP:            CSPConfig{Directives: []string{"default-src 'self'"}},
	})

	rec := httptest.NewRecorder()
	Finish(rec, rc)

	if got := rec.Header().Get(CSPHeaderName); got != "default-src 'self'" {
		t.Errorf("header = %q", got)
	}
}

func TestFinishSkipsHeaderUnderMetaDelivery(t *testing.T) {
	rc := NewRenderContext(ContextConfig{
		CSPDestination: CSPMeta,
		CSP:            CSPConfig{Directives: []string{"default-src 'self'"}},
	})

	rec := httptest.NewRecorder()
	Finish(rec, rc)

	if got := rec.Header().Get(CSPHeaderName); got != "" {
		t.Errorf("header delivered under meta destination: %q", got)
	}
}

func TestHeadEmitsMetaTagAndEntries(t *testing.T) {
	rc := NewRenderContext(ContextConfig{
		CSPDestination: CSPMeta,
		CSP:            CSPConfig{Directives: []string{"default-src 'self'"}},
	})
	rc.AddHead(`<link rel="preload" href="/a.css">`)

	html, err := RenderToString(Head(rc))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(html, `http-equiv="Content-Security-Policy"`) {
		t.Errorf("meta tag missing: %q", html)
	}
	if !strings.Contains(html, `<link rel="preload" href="/a.css">`) {
		t.Errorf("head entry missing: %q", html)
	}
}

func TestHeadOmitsMetaUnderHeaderDelivery(t *testing.T) {
	rc := NewRenderContext(ContextConfig{
		CSPDestination: CSPHeader,
		CSP:            CSPConfig{Directives: []string{"default-src 'self'"}},
	})

	html, err := RenderToString(Head(rc))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(html, "Content-Security-Policy") {
		t.Errorf("meta tag emitted under header delivery: %q", html)
	}
}
