package islet

// TrailingSlash defines how island endpoint URLs are terminated.
//
// This mirrors the host application's routing policy so island fetches hit
// the same canonical URL shape as every other route.
type TrailingSlash string

const (
	// TrailingAlways appends a trailing slash to island URLs.
	TrailingAlways TrailingSlash = "always"

	// TrailingNever leaves island URLs without a trailing slash.
	// This is the default.
	TrailingNever TrailingSlash = "never"

	// TrailingIgnore accepts either form; island URLs are emitted without
	// a trailing slash.
	TrailingIgnore TrailingSlash = "ignore"
)

// CSPDestination selects where the assembled policy is delivered.
type CSPDestination string

const (
	// CSPHeader delivers the policy as a content-security-policy response
	// header. Appropriate for dynamically rendered responses.
	CSPHeader CSPDestination = "header"

	// CSPMeta delivers the policy as a <meta http-equiv> tag in the head.
	// Appropriate for statically prerendered pages, which have no headers
	// of their own.
	CSPMeta CSPDestination = "meta"
)

// CSPHeaderName is the response header used by CSPHeader delivery.
const CSPHeaderName = "content-security-policy"

// DefaultGETPayloadLimit is the combined ciphertext length below which an
// island request is encoded as GET query parameters. At or above it, the
// request becomes a POST with a JSON body. The value keeps GET URLs within
// common browser and proxy length limits; it is a heuristic, not a measured
// property of any deployment.
const DefaultGETPayloadLimit = 2048

// IslandRoutePrefix is the path segment under which island requests are
// served, appended to the configured base path.
const IslandRoutePrefix = "/_server-islands/"
