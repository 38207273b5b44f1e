// Package islet implements the deferred-island protocol for server-rendered
// Go applications: flagged components are withheld from the initial render,
// shipped as encrypted placeholders, then fetched and spliced into the page
// through an authenticated side channel.
//
// # Core Concepts
//
// An island is a component deliberately deferred from the initial response.
// At render time the encoder replaces it with a placeholder: a start marker,
// the inline fallback slot, and a small script that fetches the real content
// from the island endpoint. The three payload fields - export name, props,
// and non-fallback slots - are encrypted with a key scoped to exactly one
// response, so island data is opaque to the client and tamper-evident on
// the way back.
//
//	rc := islet.NewRenderContext(islet.ContextConfig{
//	    Islands: map[string]string{"components/avatar": "Avatar"},
//	})
//
//	// In a page template:
//	@rc.Island(islet.Invocation{
//	    ComponentPath: "components/avatar",
//	    Props:         map[string]any{"userID": 42},
//	    Slots:         map[string]string{"fallback": "<div>loading…</div>"},
//	})
//
// # Transport
//
// The encoder sums the three ciphertext lengths: below the configured limit
// (2048 by default) the request rides as GET query parameters, keeping URLs
// within common browser and proxy limits; at or above it, the request
// becomes a POST with a JSON body. The shared client runtime is registered
// in the metadata sink once per response regardless of island count.
//
// # Endpoint
//
// Mount an Endpoint under {base}/_server-islands/ to serve island requests.
// The validator fails closed: missing fields, malformed JSON, unsupported
// methods, and - deliberately - any POST body carrying a plaintext alias of
// an encrypted field are rejected before decryption is attempted.
//
//	endpoint := islet.NewEndpoint(keyFunc, renderer)
//	mux.Handle("/_server-islands/", endpoint)
//
// # Security Model
//
// Payloads are sealed with AES-256-GCM under a fresh nonce per call. The key
// lives exactly as long as its response and is never persisted or reused
// across responses. Decryption failures are terminal for the request; there
// is no partial, best-effort, or plaintext fallback path. The same digest
// primitive that hashes inline island scripts feeds the Content-Security-
// Policy assembler, so strict CSP pages load their islands without
// 'unsafe-inline'.
//
// # Content Security Policy
//
// A DirectiveSet accumulates script/style hashes and resources over the life
// of one response, merging with set semantics in first-seen order, and
// serializes exactly once at flush time - delivered as a response header for
// dynamic pages or a <meta> tag for prerendered ones.
//
// # Design Rationale
//
// The system favors explicitness over magic:
//   - Explicit response scope (a RenderContext per response, no globals)
//   - Explicit lifecycle (key created once, discarded with the response)
//   - Explicit security (encrypted always, plaintext submissions rejected)
//   - Explicit failure (fallback persists; no retry anywhere)
package islet
