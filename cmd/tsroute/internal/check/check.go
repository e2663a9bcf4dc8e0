package check

import (
	"context"
	"fmt"

	"github.com/broady/tsroute/cmd/tsroute/internal/project"
)

type Cmd struct {
	Input  string `help:"Declaration manifest (overrides input)." short:"i"`
	Strict bool   `help:"Fail when any warning is reported."`
}

func (c *Cmd) Run(env *project.Env) error {
	cfg, err := env.LoadConfig()
	if err != nil {
		return err
	}
	if c.Input != "" {
		cfg.Input = c.Input
	}
	cfg.CheckDocument = true

	b, err := env.Build(context.Background(), cfg)
	if err != nil {
		return err
	}

	reg := b.Registry
	env.Printf("✓ %d controllers, %d endpoints, %d types (%d referenced)",
		len(reg.Controllers()), len(b.Synthesis.Endpoints), len(reg.Types()), len(reg.Relevant()))

	warnings := b.Warnings()
	if len(warnings) == 0 {
		env.Printf("✓ No warnings")
		return nil
	}
	for _, w := range warnings {
		loc := ""
		if w.Source != nil && w.Source.File != "" {
			loc = fmt.Sprintf("%s:%d: ", w.Source.File, w.Source.Line)
		}
		env.Printf("⚠ %s%s: %s", loc, w.Code, w.Message)
	}
	if c.Strict {
		return fmt.Errorf("%d warnings", len(warnings))
	}
	return nil
}
