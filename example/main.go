// Demo server: a page with two deferred islands, one small enough for GET
// transport and one large enough to flip to POST, plus the island endpoint
// that re-renders them on demand.
package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/pthm/islet"
)

var islands = map[string]string{
	"components/greeting": "Greeting",
	"components/feed":     "Feed",
}

// keyStore keeps each response's key around long enough for its islands to
// call back. Keys expire; nothing is persisted.
type keyStore struct {
	mu   sync.Mutex
	keys map[string]entry
}

type entry struct {
	key     *islet.Key
	expires time.Time
}

func newKeyStore() *keyStore {
	return &keyStore{keys: make(map[string]entry)}
}

func (ks *keyStore) put(key *islet.Key) string {
	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		log.Fatalf("randomness source failed: %v", err)
	}
	token := hex.EncodeToString(id)

	ks.mu.Lock()
	defer ks.mu.Unlock()
	for t, e := range ks.keys {
		if time.Now().After(e.expires) {
			delete(ks.keys, t)
		}
	}
	ks.keys[token] = entry{key: key, expires: time.Now().Add(time.Minute)}
	return token
}

func (ks *keyStore) get(token string) (*islet.Key, bool) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	e, ok := ks.keys[token]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.key, true
}

func main() {
	store := newKeyStore()

	endpoint := islet.NewEndpoint(
		func(r *http.Request) (*islet.Key, error) {
			cookie, err := r.Cookie("island-key")
			if err != nil {
				return nil, fmt.Errorf("%w: no response context", islet.ErrBadRequest)
			}
			key, ok := store.get(cookie.Value)
			if !ok {
				return nil, fmt.Errorf("%w: response context expired", islet.ErrBadRequest)
			}
			return key, nil
		},
		islet.ExportRendererFunc(renderExport),
	)
	defaultOnError := endpoint.OnError
	endpoint.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		if islet.IsCryptographicError(err) {
			log.Printf("island request failed decryption (possible tampering): %v", err)
		}
		defaultOnError(w, r, err)
	}

	mux := http.NewServeMux()
	mux.Handle(islet.IslandRoutePrefix, endpoint)
	mux.HandleFunc("/", handleIndex(store))

	addr := ":8080"
	fmt.Printf("Starting server at http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

func handleIndex(store *keyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		rc := islet.NewRenderContext(islet.ContextConfig{
			Islands: islands,
			CSP: islet.CSPConfig{
				Directives: []string{"default-src 'self'"},
			},
		})

		// Render the body first so the head reflects every island.
		var body bytes.Buffer
		if err := page(rc).Render(r.Context(), &body); err != nil {
			log.Printf("render failed: %v", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		key, err := rc.Key()
		if err != nil {
			log.Fatalf("key generation failed: %v", err)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     "island-key",
			Value:    store.put(key),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})

		islet.Finish(w, rc)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		io.WriteString(w, "<!DOCTYPE html><html><head><title>islet demo</title>")
		if err := islet.Head(rc).Render(r.Context(), w); err != nil {
			log.Printf("head render failed: %v", err)
			return
		}
		io.WriteString(w, "</head><body>")
		w.Write(body.Bytes())
		io.WriteString(w, "</body></html>")
	}
}

func page(rc *islet.RenderContext) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<h1>Deferred islands</h1>"); err != nil {
			return err
		}

		greeting := rc.Island(islet.Invocation{
			ComponentPath: "components/greeting",
			Props:         map[string]any{"name": "world"},
			Slots:         map[string]string{islet.FallbackSlot: "<p>saying hello…</p>"},
		})
		if err := greeting.Render(ctx, w); err != nil {
			return err
		}

		feed := rc.Island(islet.Invocation{
			ComponentPath: "components/feed",
			Props:         map[string]any{"page": 1},
			Slots: map[string]string{
				islet.FallbackSlot: "<p>loading feed…</p>",
				"header":           strings.Repeat("<li>pinned item</li>", 300),
			},
		})
		return feed.Render(ctx, w)
	})
}

func renderExport(ctx context.Context, island, export string, props map[string]any, slots map[string]string) (templ.Component, error) {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		switch island {
		case "Greeting":
			_, err := fmt.Fprintf(w, "<p>Hello, %v!</p>", props["name"])
			return err
		case "Feed":
			_, err := fmt.Fprintf(w, "<ul>%s<li>fresh item for page %v</li></ul>", slots["header"], props["page"])
			return err
		default:
			return fmt.Errorf("%w: %q", islet.ErrIslandNotRegistered, island)
		}
	}), nil
}
