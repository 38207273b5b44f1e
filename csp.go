package islet

import (
	"context"
	"html"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/a-h/templ"
)

// CSPConfig seeds a DirectiveSet from static configuration.
//
// Hashes are cipher.Digest tokens (unquoted, e.g. "sha256-..."). Resources
// are ready-made source tokens: URLs as-is, keywords pre-quoted ('self',
// 'unsafe-inline'). Directives are free-form policy lines ("default-src
// 'self'"); lines naming a keyword that already exists merge into it.
type CSPConfig struct {
	Algorithm       Algorithm
	ScriptHashes    []string
	ScriptResources []string
	StyleHashes     []string
	StyleResources  []string
	Directives      []string
	StrictDynamic   bool
}

// DirectiveSet is a response-scoped CSP directive table.
//
// It is the one piece of shared mutable state in a response besides the
// metadata sink; insertions are serialized by an internal mutex so islands
// encoded concurrently do not lose directives. Build it incrementally and
// serialize it exactly once at flush time.
type DirectiveSet struct {
	mu        sync.Mutex
	keywords  []string            // first-seen keyword order
	tokens    map[string][]string // keyword -> ordered tokens
	seen      map[string]map[string]bool
	algorithm Algorithm
}

// NewDirectiveSet builds a directive set seeded from static configuration.
func NewDirectiveSet(cfg CSPConfig) *DirectiveSet {
	ds := &DirectiveSet{
		tokens: make(map[string][]string),
		seen:   make(map[string]map[string]bool),
	}
	ds.algorithm = cfg.Algorithm
	if ds.algorithm == "" {
		ds.algorithm = SHA256
	}

	for _, line := range cfg.Directives {
		ds.InsertDirective(line)
	}
	if cfg.StrictDynamic {
		ds.insert("script-src", "'strict-dynamic'")
	}
	for _, h := range cfg.ScriptHashes {
		ds.InsertScriptHash(h)
	}
	for _, r := range cfg.ScriptResources {
		ds.InsertScriptResource(r)
	}
	for _, h := range cfg.StyleHashes {
		ds.InsertStyleHash(h)
	}
	for _, r := range cfg.StyleResources {
		ds.InsertStyleResource(r)
	}
	return ds
}

// Algorithm returns the digest algorithm used for inline content hashes.
func (ds *DirectiveSet) Algorithm() Algorithm {
	return ds.algorithm
}

// InsertScriptHash adds a digest token to script-src.
func (ds *DirectiveSet) InsertScriptHash(hash string) {
	ds.insert("script-src", quoteHash(hash))
}

// InsertStyleHash adds a digest token to style-src.
func (ds *DirectiveSet) InsertStyleHash(hash string) {
	ds.insert("style-src", quoteHash(hash))
}

// InsertScriptResource adds a source token to script-src.
func (ds *DirectiveSet) InsertScriptResource(resource string) {
	ds.insert("script-src", resource)
}

// InsertStyleResource adds a source token to style-src.
func (ds *DirectiveSet) InsertStyleResource(resource string) {
	ds.insert("style-src", resource)
}

// InsertDirective merges a free-form directive line ("connect-src 'self'
// https://api.example.com"). If the keyword already has a line, the new
// tokens are unioned into it rather than creating a duplicate line.
func (ds *DirectiveSet) InsertDirective(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	keyword := fields[0]
	if len(fields) == 1 {
		ds.insert(keyword)
		return
	}
	ds.insert(keyword, fields[1:]...)
}

// insert unions tokens into a keyword's line, preserving first-seen order.
func (ds *DirectiveSet) insert(keyword string, toks ...string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.seen[keyword]; !ok {
		ds.seen[keyword] = make(map[string]bool)
		ds.keywords = append(ds.keywords, keyword)
	}
	for _, tok := range toks {
		if tok == "" || ds.seen[keyword][tok] {
			continue
		}
		ds.seen[keyword][tok] = true
		ds.tokens[keyword] = append(ds.tokens[keyword], tok)
	}
}

// Serialize renders the policy: directive lines joined with "; ", each line
// the keyword followed by its space-joined tokens.
func (ds *DirectiveSet) Serialize() string {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	var sb strings.Builder
	for i, keyword := range ds.keywords {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(keyword)
		for _, tok := range ds.tokens[keyword] {
			sb.WriteByte(' ')
			sb.WriteString(tok)
		}
	}
	return sb.String()
}

// quoteHash wraps a digest token in single quotes as CSP requires for hash
// sources. Tokens that arrive pre-quoted pass through.
func quoteHash(hash string) string {
	if strings.HasPrefix(hash, "'") {
		return hash
	}
	return "'" + hash + "'"
}

// ApplyCSPHeader writes the serialized policy to response headers under
// CSPHeaderName. Use for header delivery on dynamically rendered responses.
func ApplyCSPHeader(headers http.Header, ds *DirectiveSet) {
	headers.Set(CSPHeaderName, ds.Serialize())
}

// CSPMetaTag returns a templ component emitting the policy as a
// <meta http-equiv="Content-Security-Policy"> tag for prerendered pages.
func CSPMetaTag(ds *DirectiveSet) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w,
			`<meta http-equiv="Content-Security-Policy" content="`+
				html.EscapeString(ds.Serialize())+`">`)
		return err
	})
}
