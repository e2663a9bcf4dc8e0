// Package jsast is a small JavaScript statement and expression tree used to
// emit generated modules. Trees are rendered once; identifiers and literals
// are checked while rendering so emitted code is well formed by construction.
package jsast

// Node is implemented by every expression and statement.
type Node interface {
	render(p *printer)
}

// Expr is a JavaScript expression.
type Expr interface {
	Node
	expr()
}

// Stmt is a JavaScript statement.
type Stmt interface {
	Node
	stmt()
}

type (
	// Ident is an identifier reference.
	Ident string

	// String is a string literal.
	String string

	// JSON is any JSON-encodable Go value rendered as a literal.
	JSON struct {
		Value any
	}

	// Member is X.Name.
	Member struct {
		X    Expr
		Name string
	}

	// Index is X[Index].
	Index struct {
		X     Expr
		Index Expr
	}

	// Call is Fn(Args...).
	Call struct {
		Fn   Expr
		Args []Expr
	}

	// New is new Ctor(Args...).
	New struct {
		Ctor Expr
		Args []Expr
	}

	// Await is await X.
	Await struct {
		X Expr
	}

	// Arrow is an arrow function. Either Body or Result is set; Result
	// renders a concise body.
	Arrow struct {
		Async  bool
		Params []string
		Body   []Stmt
		Result Expr
	}

	// Object is an object literal. Keys that are not identifiers are quoted.
	Object struct {
		Props []Prop
	}

	// Array is an array literal.
	Array struct {
		Elems []Expr
	}
)

// Prop is one property of an object literal.
type Prop struct {
	Key   string
	Value Expr
}

func (Ident) expr()   {}
func (String) expr()  {}
func (JSON) expr()    {}
func (Member) expr()  {}
func (Index) expr()   {}
func (Call) expr()    {}
func (New) expr()     {}
func (Await) expr()   {}
func (*Arrow) expr()  {}
func (*Object) expr() {}
func (Array) expr()   {}

type (
	// Directive is a prologue directive such as "use strict".
	Directive string

	// Comment is a line comment; embedded newlines produce one line each.
	Comment string

	// Blank is an empty line.
	Blank struct{}

	// Const is const Name = Value.
	Const struct {
		Name  string
		Value Expr
	}

	// Assign is Target = Value.
	Assign struct {
		Target Expr
		Value  Expr
	}

	// ExprStmt is an expression statement.
	ExprStmt struct {
		X Expr
	}

	// Return is return X; X may be nil.
	Return struct {
		X Expr
	}

	// Try is try { Body } catch (Param) { Catch }.
	Try struct {
		Body  []Stmt
		Param string
		Catch []Stmt
	}
)

func (Directive) stmt() {}
func (Comment) stmt()   {}
func (Blank) stmt()     {}
func (Const) stmt()     {}
func (Assign) stmt()    {}
func (ExprStmt) stmt()  {}
func (Return) stmt()    {}
func (Try) stmt()       {}

// Program is a complete module.
type Program struct {
	Body []Stmt
}

// Dot builds a member chain: Dot("module", "exports") is module.exports.
func Dot(root string, names ...string) Expr {
	var x Expr = Ident(root)
	for _, n := range names {
		x = Member{X: x, Name: n}
	}
	return x
}

// CallOf is a shorthand for Call{Fn: fn, Args: args}.
func CallOf(fn Expr, args ...Expr) Call {
	return Call{Fn: fn, Args: args}
}
