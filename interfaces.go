package islet

import (
	"context"

	"github.com/a-h/templ"
)

// ExportRenderer is implemented by the host render pipeline to re-render a
// deferred component on demand.
//
// The endpoint calls RenderExport with the island's logical name, the
// decrypted export name, and the decrypted props and slot HTML. The returned
// component is rendered as the HTML fragment the client runtime splices into
// the page.
//
// Return an error wrapping ErrIslandNotRegistered for names the pipeline
// does not know; the endpoint maps it to 404.
type ExportRenderer interface {
	RenderExport(ctx context.Context, island, export string, props map[string]any, slots map[string]string) (templ.Component, error)
}

// ExportRendererFunc adapts a function to the ExportRenderer interface.
type ExportRendererFunc func(ctx context.Context, island, export string, props map[string]any, slots map[string]string) (templ.Component, error)

// RenderExport implements ExportRenderer.
func (f ExportRendererFunc) RenderExport(ctx context.Context, island, export string, props map[string]any, slots map[string]string) (templ.Component, error) {
	return f(ctx, island, export, props, slots)
}
