package serve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/broady/tsroute"
	"github.com/broady/tsroute/cmd/tsroute/internal/project"
	"github.com/broady/tsroute/middleware"
	"github.com/broady/tsroute/tsroutegen"
)

type Cmd struct {
	Addr      string `help:"Listen address (overrides serve.addr)." short:"a"`
	Input     string `help:"Declaration manifest (overrides input)." short:"i"`
	RateLimit int    `help:"Requests per minute per client IP; 0 disables limiting." name:"rate-limit" default:"0"`
	NoCORS    bool   `help:"Do not answer cross-origin requests." name:"no-cors"`
}

func (c *Cmd) Run(env *project.Env) error {
	cfg, err := env.LoadConfig()
	if err != nil {
		return err
	}
	if c.Input != "" {
		cfg.Input = c.Input
	}
	if c.Addr != "" {
		cfg.Serve.Addr = c.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b, err := env.Build(ctx, cfg)
	if err != nil {
		return err
	}
	app := c.App(b, env.Logger)
	for _, route := range app.Routes() {
		env.Printf("  %s", route)
	}

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	env.Printf("tsroute serving %s on %s", b.Document.Info.Title, cfg.Serve.Addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// App returns an App serving every endpoint of b with the Echo fallback.
func (c *Cmd) App(b *tsroutegen.Bundle, logger *slog.Logger) *tsroute.App {
	app := tsroute.NewApp(b).
		WithLogger(logger).
		WithFallback(Echo).
		WithUnaryInterceptor(requestID).
		WithUnaryInterceptor(middleware.LoggingInterceptor(logger))
	if !c.NoCORS {
		app.WithMiddleware(middleware.CORS(nil))
	}
	if c.RateLimit > 0 {
		app.WithMiddleware(middleware.RateLimit(c.RateLimit, time.Minute))
	}
	return app
}

// EchoResult is returned by Echo.
type EchoResult struct {
	Endpoint string         `json:"endpoint"`
	Args     map[string]any `json:"args"`
}

// Echo answers every call with the endpoint name and its validated
// arguments, so clients can be tested against the contract before the
// controllers exist.
func Echo(ctx context.Context, args map[string]any) (any, error) {
	c, ok := tsroute.FromContext(ctx)
	if !ok {
		return nil, tsroute.NewError(tsroute.CodeInternal, "echo called outside an endpoint")
	}
	return EchoResult{Endpoint: c.EndpointID(), Args: args}, nil
}

// requestID tags each call with an X-Request-Id response header, reusing
// the client's id when it sent one.
func requestID(ctx *tsroute.Context, args map[string]any, next tsroute.HandlerFunc) (any, error) {
	id := ctx.HTTPRequest().Header.Get("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	tsroute.SetHeader(ctx, "X-Request-Id", id)
	return next(ctx, args)
}
