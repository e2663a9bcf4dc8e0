// Package project loads what every tsroute command starts from: the
// configuration file, environment overrides and the declaration manifest.
package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/broady/tsroute/internal/analysis"
	"github.com/broady/tsroute/internal/config"
	"github.com/broady/tsroute/tsroutegen"
)

// Globals are the flags shared by all commands.
type Globals struct {
	Config   string `help:"Project configuration file (YAML or JSON)." short:"c" default:"tsroute.yaml"`
	LogLevel string `help:"Minimum log level." enum:"debug,info,warn,error" default:"info" name:"log-level"`
}

// Env is passed to every command's Run method.
type Env struct {
	ConfigPath string
	Logger     *slog.Logger
	Stdout     io.Writer
}

// NewLogger returns a text logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// LoadConfig loads the configuration file. A missing file at the default
// path falls back to defaults and environment overrides.
func (e *Env) LoadConfig() (*config.Config, error) {
	path := e.ConfigPath
	if path == config.DefaultPath {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			e.logger().Debug("no config file, using defaults", "path", path)
			path = ""
		}
	}
	return config.Load(path)
}

// Generator returns the generator settings for cfg, logging through e.
func (e *Env) Generator(cfg *config.Config) *tsroutegen.Config {
	gc := cfg.Generator()
	gc.Logger = e.logger()
	return &gc
}

// Manifest loads the declaration manifest named by cfg.
func (e *Env) Manifest(cfg *config.Config) (*analysis.Manifest, error) {
	m, err := analysis.Load(cfg.Input)
	if err != nil {
		return nil, err
	}
	e.logger().Debug("loaded manifest", "path", cfg.Input, "files", len(m.Files))
	return m, nil
}

// Build loads the manifest and runs the pipeline in memory.
func (e *Env) Build(ctx context.Context, cfg *config.Config) (*tsroutegen.Bundle, error) {
	m, err := e.Manifest(cfg)
	if err != nil {
		return nil, err
	}
	return tsroutegen.Build(ctx, m, e.Generator(cfg))
}

// Printf writes a line of user-facing output.
func (e *Env) Printf(format string, args ...any) {
	w := e.Stdout
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
