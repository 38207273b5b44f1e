package islet

import (
	"strconv"
	"strings"
	"sync"

	"github.com/pthm/islet/lib/cipher"
)

// ContextConfig configures a RenderContext.
//
// Islands maps component paths (as known to the build) to the logical island
// names that appear in endpoint URLs. Base is the application's URL base
// ("" or "/" for root). Zero values give root base, no trailing slash,
// header CSP delivery, and the default GET payload limit.
type ContextConfig struct {
	Islands         map[string]string
	Base            string
	TrailingSlash   TrailingSlash
	CSPDestination  CSPDestination
	CSP             CSPConfig
	GETPayloadLimit int
}

// RenderContext is the response-scoped state shared by every island and CSP
// insertion within one response.
//
// Create one per response and discard it when the response completes. The
// encryption key is created lazily on first use and shared by reference for
// the whole response; it is never reused across responses. The context also
// owns the metadata sink: extra head entries, registered script hashes, and
// the one-time runtime-emission flag.
//
// All methods are safe for concurrent use; independent islands within one
// response may be encoded concurrently.
type RenderContext struct {
	islands         map[string]string
	base            string
	trailingSlash   TrailingSlash
	cspDestination  CSPDestination
	csp             *DirectiveSet
	getPayloadLimit int

	keyOnce sync.Once
	key     *cipher.Key
	keyErr  error

	mu             sync.Mutex
	extraHead      []string
	scriptHashes   []string
	runtimeEmitted bool
	islandSeq      int
}

// NewRenderContext creates a response-scoped context.
func NewRenderContext(cfg ContextConfig) *RenderContext {
	limit := cfg.GETPayloadLimit
	if limit <= 0 {
		limit = DefaultGETPayloadLimit
	}
	trailing := cfg.TrailingSlash
	if trailing == "" {
		trailing = TrailingNever
	}
	dest := cfg.CSPDestination
	if dest == "" {
		dest = CSPHeader
	}
	return &RenderContext{
		islands:         cfg.Islands,
		base:            strings.TrimSuffix(cfg.Base, "/"),
		trailingSlash:   trailing,
		cspDestination:  dest,
		csp:             NewDirectiveSet(cfg.CSP),
		getPayloadLimit: limit,
	}
}

// Key returns the response's encryption key, creating it on first call.
// Every caller within the response sees the same key.
func (rc *RenderContext) Key() (*cipher.Key, error) {
	rc.keyOnce.Do(func() {
		rc.key, rc.keyErr = cipher.NewKey()
	})
	return rc.key, rc.keyErr
}

// IslandName resolves a component path to its logical island name.
func (rc *RenderContext) IslandName(componentPath string) (string, bool) {
	name, ok := rc.islands[componentPath]
	return name, ok
}

// IslandURL builds the endpoint URL for an island name, honoring the base
// path and trailing-slash policy.
func (rc *RenderContext) IslandURL(name string) string {
	url := rc.base + IslandRoutePrefix + name
	if rc.trailingSlash == TrailingAlways {
		url += "/"
	}
	return url
}

// CSP returns the response's directive set.
func (rc *RenderContext) CSP() *DirectiveSet {
	return rc.csp
}

// CSPDestination returns the configured policy delivery destination.
func (rc *RenderContext) CSPDestination() CSPDestination {
	return rc.cspDestination
}

// AddHead appends an entry to the extra head content collected for this
// response. The page pipeline flushes these into <head>.
func (rc *RenderContext) AddHead(html string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.extraHead = append(rc.extraHead, html)
}

// ExtraHead returns the collected head entries in insertion order.
func (rc *RenderContext) ExtraHead() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]string, len(rc.extraHead))
	copy(out, rc.extraHead)
	return out
}

// RegisterScriptHash records an inline script's CSP hash token and inserts
// it into the script-src directive.
func (rc *RenderContext) RegisterScriptHash(hash string) {
	rc.mu.Lock()
	rc.scriptHashes = append(rc.scriptHashes, hash)
	rc.mu.Unlock()
	rc.csp.InsertScriptHash(hash)
}

// ScriptHashes returns the registered inline script hashes.
func (rc *RenderContext) ScriptHashes() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]string, len(rc.scriptHashes))
	copy(out, rc.scriptHashes)
	return out
}

// markRuntimeEmitted flips the one-time runtime flag.
// Returns true exactly once per response.
func (rc *RenderContext) markRuntimeEmitted() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.runtimeEmitted {
		return false
	}
	rc.runtimeEmitted = true
	return true
}

// nextIslandID returns a response-unique id for an island placeholder.
func (rc *RenderContext) nextIslandID(name string) string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.islandSeq++
	return name + "-" + strconv.Itoa(rc.islandSeq)
}
