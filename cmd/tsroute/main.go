package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/broady/tsroute/cmd/tsroute/internal/check"
	"github.com/broady/tsroute/cmd/tsroute/internal/gen"
	"github.com/broady/tsroute/cmd/tsroute/internal/project"
	"github.com/broady/tsroute/cmd/tsroute/internal/serve"
)

type CLI struct {
	project.Globals

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate validators, the OpenAPI document and route wiring."`
	Check   check.Cmd  `cmd:"" help:"Analyze the manifest and report warnings without writing files."`
	Serve   serve.Cmd  `cmd:"" help:"Serve the endpoints with validation and an echo fallback."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run(env *project.Env) error {
	env.Printf("%s", Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("tsroute"),
		kong.Description("Generate validators, OpenAPI documents and routes from decorated controllers."),
		kong.UsageOnError(),
	)

	logger, err := project.NewLogger(os.Stderr, cli.LogLevel)
	ctx.FatalIfErrorf(err)
	logger = logger.With("run", uuid.NewString())
	logger.Debug("starting", "command", ctx.Command(), "version", Version())

	err = ctx.Run(&project.Env{
		ConfigPath: cli.Config,
		Logger:     logger,
		Stdout:     os.Stdout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "tsroute:", err)
		os.Exit(1)
	}
}
