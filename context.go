package tsroute

import (
	"context"
	"net/http"
)

// Context carries the endpoint being called and its HTTP exchange.
// Interceptors receive it directly; handlers can recover it with FromContext.
type Context struct {
	context.Context
	controller string
	method     string
	path       string
	w          http.ResponseWriter
	r          *http.Request
}

type contextKey struct{}

// NewContext returns the call context for one endpoint invocation. Apps
// create one per request; interceptor tests can build their own.
func NewContext(parent context.Context, w http.ResponseWriter, r *http.Request, controller, method, path string) *Context {
	c := &Context{controller: controller, method: method, path: path, w: w, r: r}
	c.Context = context.WithValue(parent, contextKey{}, c)
	return c
}

// FromContext returns the call context stored in ctx.
func FromContext(ctx context.Context) (*Context, bool) {
	if c, ok := ctx.(*Context); ok {
		return c, true
	}
	c, ok := ctx.Value(contextKey{}).(*Context)
	return c, ok
}

// Controller returns the controller name.
func (c *Context) Controller() string { return c.controller }

// Method returns the endpoint method name.
func (c *Context) Method() string { return c.method }

// EndpointID returns "Controller.method".
func (c *Context) EndpointID() string { return c.controller + "." + c.method }

// Path returns the mounted URL path of the endpoint.
func (c *Context) Path() string { return c.path }

// HTTPRequest returns the underlying request.
func (c *Context) HTTPRequest() *http.Request { return c.r }

// HTTPWriter returns the underlying response writer.
func (c *Context) HTTPWriter() http.ResponseWriter { return c.w }

// SetHeader sets an HTTP response header.
// It has no effect outside a call made through an App.
func SetHeader(ctx context.Context, key, value string) {
	if c, ok := FromContext(ctx); ok {
		c.w.Header().Set(key, value)
	}
}
