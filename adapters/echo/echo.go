// Package isletecho provides Echo framework integration for the island
// endpoint.
//
// Mount the endpoint onto an Echo instance or group:
//
//	e := echo.New()
//	isletecho.Mount(e, endpoint)
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	isletecho.MountGroup(g, endpoint)
package isletecho

import (
	"github.com/labstack/echo/v4"
	"github.com/pthm/islet"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	base string
}

// WithBase sets the URL base under which the island route is mounted.
// Defaults to the application root; the route itself is always
// {base}/_server-islands/{name}.
func WithBase(base string) Option {
	return func(o *options) {
		o.base = base
	}
}

// Mount registers the island endpoint on an Echo instance.
//
// All methods are routed to the endpoint; the endpoint itself answers 405
// for anything other than GET and POST, keeping method handling in one
// place.
func Mount(e *echo.Echo, endpoint *islet.Endpoint, opts ...Option) {
	e.Any(routePattern(opts), echo.WrapHandler(endpoint))
}

// MountGroup registers the island endpoint on an Echo group, sharing the
// group's middleware (auth, logging, etc.).
func MountGroup(g *echo.Group, endpoint *islet.Endpoint, opts ...Option) {
	g.Any(routePattern(opts), echo.WrapHandler(endpoint))
}

func routePattern(opts []Option) string {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o.base + islet.IslandRoutePrefix + "*"
}
