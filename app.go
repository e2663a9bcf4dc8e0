// Package tsroute serves a generated route bundle in-process: the same
// paths and verb rules as the emitted route module, argument validation
// with the compiled endpoint validators, and the OpenAPI document.
package tsroute

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/broady/tsroute/tsroutegen"
	"github.com/broady/tsroute/tsroutegen/openapi"
	"github.com/broady/tsroute/tsroutegen/registry"
)

// App dispatches HTTP requests to endpoint handlers.
// Use Handler() to get an http.Handler for use with http.ListenAndServe.
type App struct {
	mu                 sync.RWMutex
	bundle             *tsroutegen.Bundle
	handlers           map[string]HandlerFunc
	fallback           HandlerFunc
	errorTransformer   ErrorTransformer
	maskInternalErrors bool
	interceptors       []UnaryInterceptor
	middlewares        []func(http.Handler) http.Handler
	logger             *slog.Logger
	maxRequestBodySize int64
}

// NewApp creates an App for the endpoints of b.
func NewApp(b *tsroutegen.Bundle) *App {
	return &App{
		bundle:             b,
		handlers:           make(map[string]HandlerFunc),
		maxRequestBodySize: 1 << 20, // 1MB default
	}
}

// Handle registers fn for the endpoint with the given "Controller.method"
// key. It panics if the bundle has no such endpoint. Registering a key
// twice replaces the handler and logs a warning.
func (a *App) Handle(key string, fn HandlerFunc) *App {
	if _, ok := a.bundle.Synthesis.Find(key); !ok {
		panic("tsroute: no endpoint " + key)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.handlers[key]; exists {
		a.getLogger().Warn("duplicate handler registration", slog.String("endpoint", key))
	}
	a.handlers[key] = fn
	return a
}

// WithFallback sets the handler for endpoints without a registered handler.
// Without a fallback they fail with not_implemented.
func (a *App) WithFallback(fn HandlerFunc) *App {
	a.fallback = fn
	return a
}

// WithErrorTransformer adds a custom error transformer.
func (a *App) WithErrorTransformer(fn ErrorTransformer) *App {
	a.errorTransformer = fn
	return a
}

// WithMaskInternalErrors replaces internal error messages with a generic one.
func (a *App) WithMaskInternalErrors() *App {
	a.maskInternalErrors = true
	return a
}

// WithUnaryInterceptor adds an interceptor around every endpoint call.
// Interceptors run in the order they were added.
func (a *App) WithUnaryInterceptor(i UnaryInterceptor) *App {
	a.interceptors = append(a.interceptors, i)
	return a
}

// WithMiddleware adds an HTTP middleware to wrap the app.
// Middleware is applied in the order added (first added is outermost).
func (a *App) WithMiddleware(mw func(http.Handler) http.Handler) *App {
	a.middlewares = append(a.middlewares, mw)
	return a
}

// WithLogger sets a custom logger for the app.
// If not set, slog.Default() will be used.
func (a *App) WithLogger(logger *slog.Logger) *App {
	a.logger = logger
	return a
}

// WithMaxRequestBodySize limits JSON request bodies. 0 means no limit.
// Default is 1MB.
func (a *App) WithMaxRequestBodySize(size int64) *App {
	a.maxRequestBodySize = size
	return a
}

func (a *App) getLogger() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return a.logger
}

// Routes returns "VERB /path" for every mounted endpoint, sorted.
func (a *App) Routes() []string {
	reg := a.bundle.Registry
	var out []string
	for _, es := range a.bundle.Synthesis.Endpoints {
		ep := es.Endpoint
		out = append(out, strings.ToUpper(string(ep.Verb))+" "+reg.EndpointPath(ep))
	}
	sort.Strings(out)
	return out
}

// Handler returns an http.Handler serving every endpoint of the bundle and
// the document at the docs path. The returned handler includes all
// configured middleware.
func (a *App) Handler() http.Handler {
	reg := a.bundle.Registry
	mux := chi.NewRouter()
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, NewError(CodeNotFound, "route not found"), a.logger)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, Errorf(CodeMethodNotAllowed, "method %s not allowed", r.Method), a.logger)
	})

	for _, es := range a.bundle.Synthesis.Endpoints {
		ep := es.Endpoint
		v, ok := a.bundle.Validators.Endpoint(ep.Key())
		if !ok {
			a.getLogger().Error("endpoint has no validator", slog.String("endpoint", ep.Key()))
			continue
		}
		result, err := a.bundle.Synthesis.Expand(es.Result, openapi.ComponentsRoot)
		if err != nil {
			a.getLogger().Error("endpoint result has no schema", slog.String("endpoint", ep.Key()), slog.Any("error", err))
		}
		h := &endpointHandler{
			app:       a,
			schema:    es,
			validator: v,
			path:      reg.EndpointPath(ep),
			noContent: es.Result == nil || (err == nil && result == nil),
		}
		if ep.Verb == registry.VerbAll {
			mux.Handle(h.path, h)
		} else {
			mux.Method(strings.ToUpper(string(ep.Verb)), h.path, h)
		}
	}
	mux.Get(registry.JoinPath(reg.RouterPath(), a.bundle.DocsPath), a.serveDocs)

	var handler http.Handler = a.recoverer(mux)
	// Apply middleware in reverse order so first added is outermost
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		handler = a.middlewares[i](handler)
	}
	return handler
}

func (a *App) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				a.getLogger().Error("PANIC recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())))
				writeError(w, NewError(CodeInternal, fmt.Sprintf("internal server error (panic): %v", rec)), a.logger)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// handlerFor returns the registered handler, the fallback, or a handler
// failing with not_implemented.
func (a *App) handlerFor(key string) HandlerFunc {
	a.mu.RLock()
	fn, ok := a.handlers[key]
	a.mu.RUnlock()
	if ok {
		return fn
	}
	if a.fallback != nil {
		return a.fallback
	}
	return func(ctx context.Context, args map[string]any) (any, error) {
		return nil, Errorf(CodeNotImplemented, "no handler for %s", key)
	}
}

func (a *App) handleError(w http.ResponseWriter, err error) {
	var svcErr *Error
	if a.errorTransformer != nil {
		svcErr = a.errorTransformer(err)
	}
	if svcErr == nil {
		svcErr = DefaultErrorTransformer(err)
	}
	if a.maskInternalErrors && svcErr.Code == CodeInternal {
		svcErr = NewError(CodeInternal, "internal server error")
	}
	writeError(w, svcErr, a.logger)
}
