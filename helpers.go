package islet

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// Render writes a templ component to the HTTP response.
//
// Sets Content-Type to text/html and renders the component using the
// request's context. Use this for page handlers that embed islands:
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    rc := islet.NewRenderContext(cfg)
//	    islet.Render(w, r, pageTemplate(rc))
//	}
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// Head returns a templ component emitting everything the response collected
// for <head>: the extra head entries (including the island runtime script)
// and, under meta delivery, the CSP meta tag.
//
// Place it inside the page's <head> element, after all islands have been
// encoded into the body, or render the body to a buffer first.
func Head(rc *RenderContext) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if rc.CSPDestination() == CSPMeta {
			if err := CSPMetaTag(rc.CSP()).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, strings.Join(rc.ExtraHead(), ""))
		return err
	})
}

// Finish applies response-level delivery for a completed render: under
// header delivery the serialized CSP policy is written to the response
// headers. Call before the first body byte is written.
func Finish(w http.ResponseWriter, rc *RenderContext) {
	if rc.CSPDestination() == CSPHeader {
		ApplyCSPHeader(w.Header(), rc.CSP())
	}
}
