package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "tsroute.yaml", `
project: widget-shop
version: 2.1.0
input: analysis/manifest.yaml
outDir: server/gen
files:
  routes: routes.generated.js
docsPath: openapi
checkDocument: true
servers:
  - url: https://api.example.com
    description: production
serve:
  addr: 127.0.0.1:9000
`)
	cfg, err := load(path, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "widget-shop", cfg.Project)
	assert.Equal(t, "2.1.0", cfg.Version)
	assert.Equal(t, "analysis/manifest.yaml", cfg.Input)
	assert.Equal(t, "server/gen", cfg.OutDir)
	assert.Equal(t, "routes.generated.js", cfg.Files.Routes)
	assert.Equal(t, "", cfg.Files.Document)
	assert.True(t, cfg.CheckDocument)
	assert.Equal(t, []Server{{URL: "https://api.example.com", Description: "production"}}, cfg.Servers)
	assert.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)

	gen := cfg.Generator()
	assert.Equal(t, "server/gen", gen.OutDir)
	assert.Equal(t, "routes.generated.js", gen.Files.Routes)
	require.Len(t, gen.Servers, 1)
	assert.Equal(t, "https://api.example.com", gen.Servers[0].URL)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "tsroute.json", `{"project": "widgets", "outDir": "out"}`)
	cfg, err := load(path, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "widgets", cfg.Project)
	assert.Equal(t, "out", cfg.OutDir)
	assert.Equal(t, "tsroute.manifest.json", cfg.Input)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "tsroute.yaml", "project: from-file\noutDir: file-out\n")
	cfg, err := load(path, map[string]string{
		"TSROUTE_PROJECT":        "from-env",
		"TSROUTE_FILES_DOCUMENT": "api.json",
		"TSROUTE_SERVE_ADDR":     ":7000",
		"TSROUTE_CHECK_DOCUMENT": "true",
		"TSROUTE_SERVERS_0_URL":  "http://localhost:8080",
	})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Project)
	assert.Equal(t, "file-out", cfg.OutDir, "unset variables keep file values")
	assert.Equal(t, "api.json", cfg.Files.Document)
	assert.Equal(t, ":7000", cfg.Serve.Addr)
	assert.True(t, cfg.CheckDocument)
	assert.Equal(t, []Server{{URL: "http://localhost:8080"}}, cfg.Servers)
}

func TestLoad_ProcessEnv(t *testing.T) {
	t.Setenv("TSROUTE_OUT_DIR", "env-out")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-out", cfg.OutDir)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		environ map[string]string
		wantErr string
	}{
		{"unknown key", "outdir: x\n", nil, "field outdir not found"},
		{"bad yaml", "project: [\n", nil, "parse config"},
		{"empty input", "input: \"\"\n", nil, "Input: failed required"},
		{"bad server url", "servers:\n  - url: not a url\n", nil, "Servers[0].URL: failed url"},
		{"docs path with query", "docsPath: docs?x=1\n", nil, "DocsPath: failed excludesall"},
		{"bad env bool", "", map[string]string{"TSROUTE_CHECK_DOCUMENT": "maybe"}, "environment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "tsroute.yaml", tt.file)
			environ := tt.environ
			if environ == nil {
				environ = map[string]string{}
			}
			_, err := load(path, environ)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
