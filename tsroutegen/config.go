package tsroutegen

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/broady/tsroute/tsroutegen/openapi"
)

// Default artifact file names.
const (
	DefaultValidatorsFile = "validators.js"
	DefaultDocumentFile   = "openapi.json"
	DefaultRoutesFile     = "routes.js"
)

// Files names the generated artifacts, relative to OutDir.
type Files struct {
	Validators string
	Document   string
	Routes     string
}

// Config holds the configuration for one generation run.
type Config struct {
	// OutDir is the directory where generated files will be written.
	// Controller modules are required relative to it.
	OutDir string

	// Project names the API. It is used for the document title when
	// Title is empty.
	Project string

	// Title, Version and Description make up the document preamble.
	Title       string
	Version     string
	Description string
	Servers     []openapi.Server

	// Files overrides the artifact file names.
	Files Files

	// DocsPath is where the OpenAPI document is served, under the router prefix.
	// Default: "docs"
	DocsPath string

	// ResponsesModule exports success(res, result) and failure(res, err).
	// Default: "./responses"
	ResponsesModule string

	// FrameworkModule provides Router() to the route module.
	// Default: "express"
	FrameworkModule string

	// ValidatorModule is the JSON Schema compiler required by validators.js.
	// Default: "ajv"
	ValidatorModule string

	// Header is emitted as a leading comment in every JavaScript artifact.
	Header string

	// CheckDocument loads the emitted document with kin-openapi and reports
	// compliance problems as warnings.
	CheckDocument bool

	// Logger receives warnings and progress. Default: slog.Default()
	Logger *slog.Logger
}

// applyConfigDefaults returns a copy of cfg with defaults filled in.
// A nil cfg yields the defaults.
func applyConfigDefaults(cfg *Config) *Config {
	var result Config
	if cfg != nil {
		result = *cfg
	}

	if result.Files.Validators == "" {
		result.Files.Validators = DefaultValidatorsFile
	}
	if result.Files.Document == "" {
		result.Files.Document = DefaultDocumentFile
	}
	if result.Files.Routes == "" {
		result.Files.Routes = DefaultRoutesFile
	}
	if result.Title == "" {
		result.Title = projectTitle(result.Project)
	}
	if result.Version == "" {
		result.Version = "1.0.0"
	}
	if result.DocsPath == "" {
		result.DocsPath = "docs"
	}
	if result.Header == "" {
		result.Header = "Code generated by tsroute. DO NOT EDIT."
	}
	if result.Logger == nil {
		result.Logger = slog.Default()
	}
	return &result
}

// projectTitle turns a project name like "widget-shop" into "Widget Shop".
func projectTitle(project string) string {
	words := strings.FieldsFunc(project, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	if len(words) == 0 {
		return "API"
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}
