package islet

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pthm/islet/lib/cipher"
)

// IslandRequest is the wire-level tuple carried by an island request, as
// GET query parameters (e/p/s) or a POST JSON body. All three fields are
// mandatory; empty strings are valid values, distinct from absent.
type IslandRequest struct {
	ComponentExport string `json:"encryptedComponentExport"`
	Props           string `json:"encryptedProps"`
	Slots           string `json:"encryptedSlots"`
}

// Query parameter keys for GET transport.
const (
	queryExport = "e"
	queryProps  = "p"
	querySlots  = "s"
)

// plaintextAliases are the unencrypted field names a POST body must never
// carry. Their presence is a bypass attempt and rejected outright.
var plaintextAliases = []string{"componentExport", "props", "slots"}

// ParseIslandRequest extracts the three encrypted fields from an island
// request without decrypting them.
//
// GET requires all of e, p, and s as query parameters; POST requires a JSON
// body with the three encrypted field names. A POST body carrying a
// plaintext alias (componentExport, props, slots) is rejected with a
// diagnostic naming the offending field. Any other method returns
// ErrMethodNotAllowed.
func ParseIslandRequest(r *http.Request) (*IslandRequest, error) {
	switch r.Method {
	case http.MethodGet:
		return parseGet(r)
	case http.MethodPost:
		return parsePost(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrMethodNotAllowed, r.Method)
	}
}

func parseGet(r *http.Request) (*IslandRequest, error) {
	q := r.URL.Query()
	for _, k := range []string{querySlots, queryExport, queryProps} {
		if !q.Has(k) {
			return nil, fmt.Errorf("%w: missing query parameter %q", ErrBadRequest, k)
		}
	}
	return &IslandRequest{
		ComponentExport: q.Get(queryExport),
		Props:           q.Get(queryProps),
		Slots:           q.Get(querySlots),
	}, nil
}

func parsePost(r *http.Request) (*IslandRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrBadRequest, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON body", ErrBadRequest)
	}

	for _, alias := range plaintextAliases {
		if _, present := fields[alias]; present {
			return nil, fmt.Errorf("%w: plaintext %s is not accepted", ErrBadRequest, alias)
		}
	}

	req := &IslandRequest{}
	for name, dst := range map[string]*string{
		"encryptedComponentExport": &req.ComponentExport,
		"encryptedProps":           &req.Props,
		"encryptedSlots":           &req.Slots,
	} {
		raw, present := fields[name]
		if !present {
			return nil, fmt.Errorf("%w: missing field %q", ErrBadRequest, name)
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("%w: field %q must be a string", ErrBadRequest, name)
		}
	}
	return req, nil
}

// IslandPayload is a decrypted island request, ready for re-rendering.
type IslandPayload struct {
	Export string
	Props  map[string]any
	Slots  map[string]string
}

// DecryptIslandRequest opens the three encrypted fields with the response
// key and decodes the props and slot maps. Any tampering or key mismatch
// fails closed with ErrDecryptFailed; there is no partial result.
func DecryptIslandRequest(key *cipher.Key, req *IslandRequest) (*IslandPayload, error) {
	export, err := key.Decrypt(req.ComponentExport)
	if err != nil {
		return nil, wrapCipherError(err)
	}

	packed, err := key.Decrypt(req.Props)
	if err != nil {
		return nil, wrapCipherError(err)
	}
	var props map[string]any
	if err := msgpack.Unmarshal([]byte(packed), &props); err != nil {
		return nil, fmt.Errorf("%w: props: %v", ErrInvalidFormat, err)
	}

	slotsJSON, err := key.Decrypt(req.Slots)
	if err != nil {
		return nil, wrapCipherError(err)
	}
	var slots map[string]string
	if err := json.Unmarshal([]byte(slotsJSON), &slots); err != nil {
		return nil, fmt.Errorf("%w: slots: %v", ErrInvalidFormat, err)
	}

	return &IslandPayload{Export: export, Props: props, Slots: slots}, nil
}

// KeyFunc recovers the response-scoped key for an island request.
type KeyFunc func(r *http.Request) (*cipher.Key, error)

// Endpoint serves island requests: it validates the request, decrypts the
// payload, and delegates re-rendering to the configured ExportRenderer.
// Each call is stateless; there is no cross-request coordination and no
// retry on any failure path.
type Endpoint struct {
	// Key recovers the key that encrypted this request's payload.
	Key KeyFunc

	// Renderer re-renders the named export with the decrypted props and
	// slots, returning the HTML fragment spliced in by the client runtime.
	Renderer ExportRenderer

	// OnError is called for every failed request.
	// Customize this to log decryption failures as tampering signals.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// NewEndpoint creates an island endpoint with the default error mapping:
// validation failures and cryptographic failures get 400, unsupported
// methods 405, unknown islands 404, everything else 500.
func NewEndpoint(key KeyFunc, renderer ExportRenderer) *Endpoint {
	return &Endpoint{
		Key:      key,
		Renderer: renderer,
		OnError: func(w http.ResponseWriter, r *http.Request, err error) {
			switch {
			case IsValidationError(err):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case IsCryptographicError(err):
				http.Error(w, "Bad request", http.StatusBadRequest)
			case IsConfigurationError(err):
				http.Error(w, "Not found", http.StatusNotFound)
			case IsMethodNotAllowed(err):
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			default:
				http.Error(w, "Internal error", http.StatusInternalServerError)
			}
		},
	}
}

// ServeHTTP implements http.Handler for the island route.
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := ParseIslandRequest(r)
	if err != nil {
		e.OnError(w, r, err)
		return
	}

	key, err := e.Key(r)
	if err != nil {
		e.OnError(w, r, err)
		return
	}

	payload, err := DecryptIslandRequest(key, req)
	if err != nil {
		e.OnError(w, r, err)
		return
	}

	name := IslandNameFromPath(r.URL.Path)
	component, err := e.Renderer.RenderExport(r.Context(), name, payload.Export, payload.Props, payload.Slots)
	if err != nil {
		e.OnError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		e.OnError(w, r, err)
	}
}

// IslandNameFromPath extracts the island name from an endpoint request path
// like "/base/_server-islands/Avatar/".
func IslandNameFromPath(path string) string {
	idx := strings.Index(path, IslandRoutePrefix)
	if idx < 0 {
		return strings.Trim(path, "/")
	}
	name := path[idx+len(IslandRoutePrefix):]
	return strings.TrimSuffix(name, "/")
}
