package isletecho

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/islet"
)

func testEndpoint(t *testing.T) (*islet.Endpoint, *islet.RenderContext) {
	t.Helper()
	rc := islet.NewRenderContext(islet.ContextConfig{
		Islands: map[string]string{"components/avatar": "Avatar"},
	})
	endpoint := islet.NewEndpoint(
		func(r *http.Request) (*islet.Key, error) { return rc.Key() },
		islet.ExportRendererFunc(func(ctx context.Context, island, export string, props map[string]any, slots map[string]string) (templ.Component, error) {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				_, err := io.WriteString(w, "<div>"+island+"</div>")
				return err
			}), nil
		}),
	)
	return endpoint, rc
}

func TestMountServesIslandRequests(t *testing.T) {
	endpoint, rc := testEndpoint(t)

	e := echo.New()
	Mount(e, endpoint)

	// Build a valid GET island request through the encoder's own key.
	key, err := rc.Key()
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	enc := func(s string) string {
		out, err := key.Encrypt(s)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		return out
	}

	q := url.Values{}
	q.Set("e", enc("default"))
	q.Set("p", enc(mustPackEmptyProps(t)))
	q.Set("s", enc("{}"))

	req := httptest.NewRequest(http.MethodGet, "/_server-islands/Avatar?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "<div>Avatar</div>" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestMountRejectsOtherMethods(t *testing.T) {
	endpoint, _ := testEndpoint(t)

	e := echo.New()
	Mount(e, endpoint)

	req := httptest.NewRequest(http.MethodDelete, "/_server-islands/Avatar", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestMountGroupSharesBase(t *testing.T) {
	endpoint, _ := testEndpoint(t)

	e := echo.New()
	g := e.Group("/app")
	MountGroup(g, endpoint)

	req := httptest.NewRequest(http.MethodPut, "/app/_server-islands/Avatar", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405 from the endpoint", rec.Code)
	}
}

func mustPackEmptyProps(t *testing.T) string {
	t.Helper()
	// msgpack fixmap header for an empty map
	return "\x80"
}
