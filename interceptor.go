package tsroute

import "context"

// HandlerFunc implements an endpoint. args holds the validated arguments
// keyed by parameter name. Returning a nil result from an endpoint that
// declares a return type still produces {"result": null}.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// UnaryInterceptor wraps endpoint execution.
//
//	func timing(ctx *tsroute.Context, args map[string]any, next tsroute.HandlerFunc) (any, error) {
//	    start := time.Now()
//	    res, err := next(ctx, args)
//	    log.Printf("%s took %v", ctx.EndpointID(), time.Since(start))
//	    return res, err
//	}
//
// Interceptors can inspect or replace args, short-circuit with an error,
// or wrap the result.
type UnaryInterceptor func(ctx *Context, args map[string]any, next HandlerFunc) (any, error)

// chainInterceptors combines interceptors into one handler.
// The first interceptor in the slice is the outer-most one.
func chainInterceptors(interceptors []UnaryInterceptor, handler HandlerFunc) HandlerFunc {
	chain := handler
	for i := len(interceptors) - 1; i >= 0; i-- {
		current := interceptors[i]
		next := chain
		chain = func(ctx context.Context, args map[string]any) (any, error) {
			c, ok := ctx.(*Context)
			if !ok {
				// An interceptor derived a new context; keep it for the rest of the chain.
				orig, found := FromContext(ctx)
				if !found {
					return nil, NewError(CodeInternal, "interceptor called outside an endpoint context")
				}
				c = &Context{Context: ctx, controller: orig.controller, method: orig.method, path: orig.path, w: orig.w, r: orig.r}
			}
			return current(c, args, next)
		}
	}
	return chain
}
