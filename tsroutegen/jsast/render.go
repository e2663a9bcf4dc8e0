package jsast

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

var identRE = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "export": true, "extends": true, "finally": true, "for": true,
	"function": true, "if": true, "import": true, "in": true, "instanceof": true,
	"new": true, "return": true, "super": true, "switch": true, "this": true,
	"throw": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "let": true, "static": true,
	"enum": true, "await": true, "null": true, "true": true, "false": true,
}

// IsIdentifier reports whether s can be used as a binding name.
func IsIdentifier(s string) bool {
	return identRE.MatchString(s) && !reserved[s]
}

// Render renders prog as JavaScript source.
func Render(prog *Program) ([]byte, error) {
	p := &printer{}
	for i, s := range prog.Body {
		if i > 0 {
			p.newline()
		}
		s.render(p)
	}
	p.buf.WriteByte('\n')
	if p.err != nil {
		return nil, p.err
	}
	return p.buf.Bytes(), nil
}

type printer struct {
	buf         bytes.Buffer
	depth       int
	lineStarted bool
	err         error
}

func (p *printer) write(s string) {
	if !p.lineStarted {
		p.buf.WriteString(strings.Repeat("  ", p.depth))
		p.lineStarted = true
	}
	p.buf.WriteString(s)
}

func (p *printer) newline() {
	p.buf.WriteByte('\n')
	p.lineStarted = false
}

func (p *printer) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf(format, args...)
	}
}

func (p *printer) ident(name string) {
	if !IsIdentifier(name) {
		p.fail("jsast: invalid identifier %q", name)
	}
	p.write(name)
}

func (p *printer) block(stmts []Stmt) {
	if len(stmts) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.depth++
	for _, s := range stmts {
		p.newline()
		s.render(p)
	}
	p.depth--
	p.newline()
	p.write("}")
}

func (p *printer) list(exprs []Expr) {
	for i, e := range exprs {
		if i > 0 {
			p.write(", ")
		}
		e.render(p)
	}
}

func (p *printer) multiline(s string) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			p.newline()
		}
		p.write(line)
	}
}

func (e Ident) render(p *printer) { p.ident(string(e)) }

func (e String) render(p *printer) {
	data, err := json.Marshal(string(e))
	if err != nil {
		p.fail("jsast: string literal: %w", err)
		return
	}
	p.write(string(data))
}

func (e JSON) render(p *printer) {
	data, err := json.Marshal(e.Value, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		p.fail("jsast: json literal: %w", err)
		return
	}
	p.multiline(string(data))
}

func (e Member) render(p *printer) {
	e.X.render(p)
	if !identRE.MatchString(e.Name) {
		p.write("[")
		String(e.Name).render(p)
		p.write("]")
		return
	}
	p.write(".")
	p.write(e.Name)
}

func (e Index) render(p *printer) {
	e.X.render(p)
	p.write("[")
	e.Index.render(p)
	p.write("]")
}

func (e Call) render(p *printer) {
	e.Fn.render(p)
	p.write("(")
	p.list(e.Args)
	p.write(")")
}

func (e New) render(p *printer) {
	p.write("new ")
	e.Ctor.render(p)
	p.write("(")
	p.list(e.Args)
	p.write(")")
}

func (e Await) render(p *printer) {
	p.write("await ")
	e.X.render(p)
}

func (e *Arrow) render(p *printer) {
	if e.Async {
		p.write("async ")
	}
	p.write("(")
	for i, name := range e.Params {
		if i > 0 {
			p.write(", ")
		}
		p.ident(name)
	}
	p.write(") => ")
	if e.Result != nil {
		if _, ok := e.Result.(*Object); ok {
			p.write("(")
			e.Result.render(p)
			p.write(")")
			return
		}
		e.Result.render(p)
		return
	}
	p.block(e.Body)
}

func (e *Object) render(p *printer) {
	if len(e.Props) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.depth++
	for _, prop := range e.Props {
		p.newline()
		if identRE.MatchString(prop.Key) {
			p.write(prop.Key)
		} else {
			String(prop.Key).render(p)
		}
		p.write(": ")
		prop.Value.render(p)
		p.write(",")
	}
	p.depth--
	p.newline()
	p.write("}")
}

func (e Array) render(p *printer) {
	p.write("[")
	p.list(e.Elems)
	p.write("]")
}

func (s Directive) render(p *printer) {
	String(s).render(p)
	p.write(";")
}

func (s Comment) render(p *printer) {
	for i, line := range strings.Split(string(s), "\n") {
		if i > 0 {
			p.newline()
		}
		p.write(strings.TrimRight("// "+line, " "))
	}
}

func (Blank) render(*printer) {}

func (s Const) render(p *printer) {
	p.write("const ")
	p.ident(s.Name)
	p.write(" = ")
	s.Value.render(p)
	p.write(";")
}

func (s Assign) render(p *printer) {
	s.Target.render(p)
	p.write(" = ")
	s.Value.render(p)
	p.write(";")
}

func (s ExprStmt) render(p *printer) {
	s.X.render(p)
	p.write(";")
}

func (s Return) render(p *printer) {
	if s.X == nil {
		p.write("return;")
		return
	}
	p.write("return ")
	s.X.render(p)
	p.write(";")
}

func (s Try) render(p *printer) {
	p.write("try ")
	p.block(s.Body)
	p.write(" catch (")
	p.ident(s.Param)
	p.write(") ")
	p.block(s.Catch)
}
