// Package routes emits the route-wiring module: one router per controller,
// one handler per endpoint, all mounted under the router prefix next to a
// documentation endpoint serving the OpenAPI document.
package routes

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/broady/tsroute/tsroutegen/jsast"
	"github.com/broady/tsroute/tsroutegen/registry"
)

// Options configures the emitted module.
type Options struct {
	// Header is emitted as a leading comment.
	Header string

	// OutDir is the directory the module is written to. Controller modules
	// are required relative to it.
	OutDir string

	// FrameworkModule provides Router(). Defaults to "express".
	FrameworkModule string

	// ResponsesModule exports success(res, result) and failure(res, err).
	// Defaults to "./responses".
	ResponsesModule string

	// DocumentModule is the emitted OpenAPI document. Defaults to "./openapi.json".
	DocumentModule string

	// DocsPath is mounted under the router prefix. Defaults to "docs".
	DocsPath string
}

func (o *Options) applyDefaults() {
	if o.FrameworkModule == "" {
		o.FrameworkModule = "express"
	}
	if o.ResponsesModule == "" {
		o.ResponsesModule = "./responses"
	}
	if o.DocumentModule == "" {
		o.DocumentModule = "./openapi.json"
	}
	if o.DocsPath == "" {
		o.DocsPath = "docs"
	}
}

// Emit renders the route module for every controller in reg.
func Emit(reg *registry.Registry, opts Options) ([]byte, error) {
	opts.applyDefaults()

	var body []jsast.Stmt
	if opts.Header != "" {
		body = append(body, jsast.Comment(opts.Header))
	}
	body = append(body,
		jsast.Directive("use strict"),
		jsast.Blank{},
		jsast.Const{Name: "framework", Value: require(opts.FrameworkModule)},
		jsast.Const{Name: "responses", Value: require(opts.ResponsesModule)},
		jsast.Const{Name: "openapi", Value: require(opts.DocumentModule)},
		jsast.Blank{},
	)

	names := scope{"framework": true, "responses": true, "openapi": true, "app": true}
	var mount []jsast.Stmt
	for i, c := range reg.Controllers() {
		stmts, err := controller(reg, c, opts, names)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			mount = append(mount, jsast.Blank{})
		}
		mount = append(mount, stmts...)
	}
	if len(mount) > 0 {
		mount = append(mount, jsast.Blank{})
	}
	mount = append(mount, jsast.ExprStmt{X: jsast.CallOf(jsast.Dot("app", "get"),
		jsast.String(registry.JoinPath(reg.RouterPath(), opts.DocsPath)),
		&jsast.Arrow{
			Params: []string{"req", "res"},
			Result: jsast.CallOf(jsast.Dot("res", "json"), jsast.Ident("openapi")),
		},
	)})

	body = append(body, jsast.Assign{
		Target: jsast.Dot("module", "exports"),
		Value:  &jsast.Arrow{Params: []string{"app"}, Body: mount},
	})

	out, err := jsast.Render(&jsast.Program{Body: body})
	if err != nil {
		return nil, fmt.Errorf("render route module: %w", err)
	}
	return out, nil
}

func controller(reg *registry.Registry, c *registry.Controller, opts Options, names scope) ([]jsast.Stmt, error) {
	mod, err := modulePath(opts.OutDir, c.File)
	if err != nil {
		return nil, fmt.Errorf("controller %s: %w", c.Name, err)
	}
	class := names.declare(c.Name + "Controller")
	router := names.declare(lowerFirst(c.Name) + "Router")

	stmts := []jsast.Stmt{
		jsast.Comment(c.Name),
		jsast.Const{Name: class, Value: jsast.Member{X: require(mod), Name: c.Name}},
		jsast.Const{Name: router, Value: jsast.CallOf(jsast.Dot("framework", "Router"))},
	}
	for _, ep := range c.Endpoints {
		stmts = append(stmts, handler(router, class, ep))
	}
	stmts = append(stmts, jsast.ExprStmt{X: jsast.CallOf(jsast.Dot("app", "use"),
		jsast.String(reg.ControllerPath(c)),
		jsast.Ident(router),
	)})
	return stmts, nil
}

// handler registers one endpoint: construct the controller, await the
// method with the query or body as its only argument, forward the outcome.
func handler(router, class string, ep *registry.Endpoint) jsast.Stmt {
	arg := jsast.Dot("req", string(ep.Verb.Location()))
	return jsast.ExprStmt{X: jsast.CallOf(jsast.Dot(router, string(ep.Verb)),
		jsast.String(registry.JoinPath(ep.Path)),
		&jsast.Arrow{
			Async:  true,
			Params: []string{"req", "res"},
			Body: []jsast.Stmt{jsast.Try{
				Body: []jsast.Stmt{
					jsast.Const{Name: "controller", Value: jsast.New{Ctor: jsast.Ident(class)}},
					jsast.Const{Name: "result", Value: jsast.Await{X: jsast.CallOf(jsast.Dot("controller", ep.Method), arg)}},
					jsast.ExprStmt{X: jsast.CallOf(jsast.Dot("responses", "success"), jsast.Ident("res"), jsast.Ident("result"))},
				},
				Param: "err",
				Catch: []jsast.Stmt{
					jsast.ExprStmt{X: jsast.CallOf(jsast.Dot("responses", "failure"), jsast.Ident("res"), jsast.Ident("err"))},
				},
			}},
		},
	)}
}

func require(mod string) jsast.Expr {
	return jsast.CallOf(jsast.Ident("require"), jsast.String(mod))
}

// modulePath returns the require path of file relative to dir, without extension.
func modulePath(dir, file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("no declaring file")
	}
	if dir == "" {
		dir = "."
	}
	rel, err := filepath.Rel(dir, file)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel, nil
}

// scope tracks the identifiers declared in one JavaScript scope.
type scope map[string]bool

// declare reserves name, appending the smallest numeric suffix that makes
// it unique when it is already taken.
func (s scope) declare(name string) string {
	unique := name
	for i := 2; s[unique]; i++ {
		unique = name + strconv.Itoa(i)
	}
	s[unique] = true
	return unique
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
