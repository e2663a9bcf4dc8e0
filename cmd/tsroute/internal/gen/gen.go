package gen

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"

	"github.com/broady/tsroute/cmd/tsroute/internal/project"
	"github.com/broady/tsroute/internal/config"
	"github.com/broady/tsroute/internal/watch"
	"github.com/broady/tsroute/tsroutegen"
	"github.com/broady/tsroute/tsroutegen/sink"
)

type Cmd struct {
	Out           string `arg:"" optional:"" help:"Output directory for generated files (overrides outDir)."`
	Input         string `help:"Declaration manifest (overrides input)." short:"i"`
	Watch         bool   `help:"Watch the manifest and regenerate on change." short:"w"`
	CheckDocument bool   `help:"Validate the OpenAPI document and report problems as warnings." name:"check-document"`
}

func (c *Cmd) Run(env *project.Env) error {
	cfg, err := env.LoadConfig()
	if err != nil {
		return err
	}
	c.apply(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := c.generate(ctx, env, cfg); err != nil {
		if !c.Watch {
			return err
		}
		env.Logger.Error("generation failed", "error", err)
	}
	if !c.Watch {
		return nil
	}

	files := []string{cfg.Input}
	if _, err := os.Stat(env.ConfigPath); err == nil {
		files = append(files, env.ConfigPath)
	}
	env.Printf("watching %s", cfg.Input)
	err = watch.Run(ctx, watch.Options{Files: files, Logger: env.Logger}, func(ctx context.Context) error {
		// Re-read the configuration so edits to it apply too.
		next, err := env.LoadConfig()
		if err != nil {
			return err
		}
		c.apply(next)
		return c.generate(ctx, env, next)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Cmd) apply(cfg *config.Config) {
	if c.Out != "" {
		cfg.OutDir = c.Out
	}
	if c.Input != "" {
		cfg.Input = c.Input
	}
	if c.CheckDocument {
		cfg.CheckDocument = true
	}
}

func (c *Cmd) generate(ctx context.Context, env *project.Env, cfg *config.Config) error {
	m, err := env.Manifest(cfg)
	if err != nil {
		return err
	}
	res, err := tsroutegen.Generate(ctx, m, sink.NewFilesystemSink(cfg.OutDir), env.Generator(cfg))
	if err != nil {
		return err
	}
	for _, f := range res.Files {
		env.Printf("✓ %s/%s (%s)", cfg.OutDir, f.Path, humanize.Bytes(uint64(f.Size)))
	}
	if n := len(res.Warnings); n > 0 {
		env.Printf("⚠ %d warnings", n)
	}
	return nil
}
