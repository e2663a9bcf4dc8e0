// Package config loads the project configuration: a tsroute.yaml file
// (YAML or JSON) overridden by TSROUTE_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	env "github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/broady/tsroute/tsroutegen"
	"github.com/broady/tsroute/tsroutegen/openapi"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "tsroute.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TSROUTE_"

// Files names the generated artifacts.
type Files struct {
	Validators string `yaml:"validators" env:"VALIDATORS"`
	Document   string `yaml:"document" env:"DOCUMENT"`
	Routes     string `yaml:"routes" env:"ROUTES"`
}

// Server is an OpenAPI server entry.
type Server struct {
	URL         string `yaml:"url" env:"URL" validate:"required,url"`
	Description string `yaml:"description" env:"DESCRIPTION"`
}

// Serve configures the development server.
type Serve struct {
	Addr string `yaml:"addr" env:"ADDR" validate:"required"`
}

// Config holds the project configuration.
type Config struct {
	Project     string `yaml:"project" env:"PROJECT"`
	Title       string `yaml:"title" env:"TITLE"`
	Version     string `yaml:"version" env:"VERSION"`
	Description string `yaml:"description" env:"DESCRIPTION"`

	// Input is the declaration manifest written by the source analyzer.
	Input string `yaml:"input" env:"INPUT" validate:"required"`

	OutDir string `yaml:"outDir" env:"OUT_DIR" validate:"required"`
	Files  Files  `yaml:"files" envPrefix:"FILES_"`

	DocsPath        string `yaml:"docsPath" env:"DOCS_PATH" validate:"omitempty,excludesall=?#"`
	ResponsesModule string `yaml:"responsesModule" env:"RESPONSES_MODULE"`
	FrameworkModule string `yaml:"frameworkModule" env:"FRAMEWORK_MODULE"`

	// Servers can be set from the environment as TSROUTE_SERVERS_0_URL, ...
	Servers       []Server `yaml:"servers" envPrefix:"SERVERS_" validate:"dive"`
	CheckDocument bool     `yaml:"checkDocument" env:"CHECK_DOCUMENT"`

	Serve Serve `yaml:"serve" envPrefix:"SERVE_"`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		Input:  "tsroute.manifest.json",
		OutDir: "gen",
		Serve:  Serve{Addr: ":8080"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	return load(path, nil)
}

// load is Load with an explicit environment; nil means the process environment.
func load(path string, environ map[string]string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate checks required fields and value formats.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Generator converts the configuration into generator settings.
func (c *Config) Generator() tsroutegen.Config {
	cfg := tsroutegen.Config{
		OutDir:          c.OutDir,
		Project:         c.Project,
		Title:           c.Title,
		Version:         c.Version,
		Description:     c.Description,
		DocsPath:        c.DocsPath,
		ResponsesModule: c.ResponsesModule,
		FrameworkModule: c.FrameworkModule,
		CheckDocument:   c.CheckDocument,
		Files: tsroutegen.Files{
			Validators: c.Files.Validators,
			Document:   c.Files.Document,
			Routes:     c.Files.Routes,
		},
	}
	for _, s := range c.Servers {
		cfg.Servers = append(cfg.Servers, openapi.Server{URL: s.URL, Description: s.Description})
	}
	return cfg
}
