package islet

import (
	"strings"

	"github.com/pthm/islet/lib/cipher"
)

// islandStartMarker is the comment text bounding the top of an island's
// placeholder region. The runtime replaces everything between this marker
// and the island's script tag.
const islandStartMarker = "server-island-start"

// runtimeEntryPoint is the global function each island snippet invokes.
const runtimeEntryPoint = "__isletLoad"

// runtimeSource is the shared client runtime, emitted once per response.
//
// Each island's inline snippet calls the entry point with its id, transport
// method, endpoint URL, and POST body (null for GET). On a successful fetch
// the nodes between the island's start comment and its script tag are
// replaced with the response HTML; on any failure the fallback content is
// left in place. No retry.
const runtimeSource = `window.` + runtimeEntryPoint + ` = async function (id, method, url, body) {
	var script = document.querySelector('script[data-island-id="' + id + '"]');
	if (!script) return;
	var opts = { method: method };
	if (method === 'POST') {
		opts.headers = { 'Content-Type': 'application/json' };
		opts.body = body;
	}
	var response;
	try {
		response = await fetch(url, opts);
	} catch (e) {
		return;
	}
	if (!response.ok) return;
	var html = await response.text();
	var marker = script.previousSibling;
	while (marker && !(marker.nodeType === 8 && marker.data === '` + islandStartMarker + `')) {
		marker = marker.previousSibling;
	}
	if (!marker) return;
	while (marker.nextSibling && marker.nextSibling !== script) {
		marker.nextSibling.remove();
	}
	script.insertAdjacentHTML('beforebegin', html);
	script.remove();
	marker.remove();
};`

// escapeInlineScript escapes any literal </script> sequence so inline
// emission cannot prematurely close its enclosing tag.
func escapeInlineScript(s string) string {
	return strings.ReplaceAll(s, "</script", `<\/script`)
}

// RuntimeScript returns the escaped runtime source, ready for inline
// emission inside a <script> tag.
func RuntimeScript() string {
	return escapeInlineScript(runtimeSource)
}

// ensureRuntime registers the runtime script in the metadata sink exactly
// once per response, along with its CSP script hash. Subsequent islands in
// the same response are no-ops here.
func (rc *RenderContext) ensureRuntime() error {
	if !rc.markRuntimeEmitted() {
		return nil
	}
	src := RuntimeScript()
	hash, err := cipher.Digest(src, rc.csp.Algorithm())
	if err != nil {
		return err
	}
	rc.RegisterScriptHash(hash)
	rc.AddHead("<script>" + src + "</script>")
	return nil
}
