package islet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pthm/islet/lib/cipher"
)

// FallbackSlot is the distinguished slot name whose HTML is rendered inline
// into the placeholder. It is the only slot content permitted to appear in
// the initial response; every other slot travels encrypted.
const FallbackSlot = "fallback"

// DefaultExport is the export name used when an Invocation leaves it empty.
const DefaultExport = "default"

// Reserved control props, stripped from the prop set before encryption.
// Only user-supplied props travel over the wire.
const (
	PropComponentPath   = "server:component-path"
	PropComponentExport = "server:component-export"
	PropDirective       = "server:component-directive"
	PropDefer           = "server:defer"
)

// Invocation is one flagged component reference: the component to defer,
// which export to render, the user props, and the rendered slot HTML.
//
// Props must already be serializable values. Slots map slot names to
// rendered HTML strings; the FallbackSlot entry is inlined, the rest are
// encrypted and re-rendered on demand.
type Invocation struct {
	ComponentPath string
	Export        string
	Props         map[string]any
	Slots         map[string]string
}

// Island returns a templ component emitting the deferred placeholder for
// one invocation: the start marker, the inline fallback HTML, and a script
// snippet that fetches the real content through the island endpoint.
//
// An unregistered component path fails that island's render with
// ErrIslandNotRegistered; the rest of the response is unaffected.
func (rc *RenderContext) Island(inv Invocation) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		markup, err := rc.encodeIsland(inv)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, markup)
		return err
	})
}

// encodeIsland builds the placeholder markup for one island.
func (rc *RenderContext) encodeIsland(inv Invocation) (string, error) {
	name, ok := rc.IslandName(inv.ComponentPath)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrIslandNotRegistered, inv.ComponentPath)
	}

	if err := rc.ensureRuntime(); err != nil {
		return "", err
	}

	payload, err := rc.encryptInvocation(inv)
	if err != nil {
		return "", err
	}

	method, islandURL, body, err := rc.selectTransport(name, payload)
	if err != nil {
		return "", err
	}

	id := rc.nextIslandID(name)
	snippet := islandSnippet(id, method, islandURL, body)

	hash, err := cipher.Digest(snippet, rc.csp.Algorithm())
	if err != nil {
		return "", err
	}
	rc.RegisterScriptHash(hash)

	var sb strings.Builder
	sb.WriteString("<!--" + islandStartMarker + "-->")
	sb.WriteString(inv.Slots[FallbackSlot])
	sb.WriteString(`<script data-island-id="` + id + `">`)
	sb.WriteString(snippet)
	sb.WriteString("</script>")
	return sb.String(), nil
}

// encryptInvocation seals the three payload fields with the response key:
// export name, packed user props, and the JSON-serialized non-fallback
// slot map. Each field is encrypted independently.
func (rc *RenderContext) encryptInvocation(inv Invocation) (*IslandRequest, error) {
	key, err := rc.Key()
	if err != nil {
		return nil, err
	}

	export := inv.Export
	if export == "" {
		export = DefaultExport
	}

	props := make(map[string]any, len(inv.Props))
	for k, v := range inv.Props {
		switch k {
		case PropComponentPath, PropComponentExport, PropDirective, PropDefer:
			continue
		}
		props[k] = v
	}
	packed, err := msgpack.Marshal(props)
	if err != nil {
		return nil, err
	}

	slots := make(map[string]string, len(inv.Slots))
	for k, v := range inv.Slots {
		if k != FallbackSlot {
			slots[k] = v
		}
	}
	slotsJSON, err := json.Marshal(slots)
	if err != nil {
		return nil, err
	}

	encExport, err := key.Encrypt(export)
	if err != nil {
		return nil, err
	}
	encProps, err := key.Encrypt(string(packed))
	if err != nil {
		return nil, err
	}
	encSlots, err := key.Encrypt(string(slotsJSON))
	if err != nil {
		return nil, err
	}

	return &IslandRequest{
		ComponentExport: encExport,
		Props:           encProps,
		Slots:           encSlots,
	}, nil
}

// selectTransport picks GET query parameters when the combined ciphertext
// length stays under the context's limit, POST with a JSON body otherwise.
func (rc *RenderContext) selectTransport(name string, payload *IslandRequest) (method, islandURL, body string, err error) {
	base := rc.IslandURL(name)
	total := len(payload.ComponentExport) + len(payload.Props) + len(payload.Slots)

	if total < rc.getPayloadLimit {
		q := url.Values{}
		q.Set("e", payload.ComponentExport)
		q.Set("p", payload.Props)
		q.Set("s", payload.Slots)
		return "GET", base + "?" + q.Encode(), "", nil
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", "", "", err
	}
	return "POST", base, string(b), nil
}

// islandSnippet builds the inline code invoking the shared runtime for one
// island. The body argument is null for GET.
func islandSnippet(id, method, islandURL, body string) string {
	bodyArg := "null"
	if body != "" {
		bodyArg = jsString(body)
	}
	call := runtimeEntryPoint + "(" +
		jsString(id) + ", " +
		jsString(method) + ", " +
		jsString(islandURL) + ", " +
		bodyArg + ");"
	return escapeInlineScript(call)
}

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
