package ir

import "testing"

func TestNodeKinds(t *testing.T) {
	tests := []struct {
		node TypeNode
		want NodeKind
	}{
		{String(), KindPrimitive},
		{ArrayOf(Number()), KindArray},
		{Ref("Widget"), KindReference},
		{UnionOf(String(), Null()), KindUnion},
		{Lit("a"), KindLiteral},
	}
	for _, tt := range tests {
		if got := tt.node.Kind(); got != tt.want {
			t.Errorf("%s.Kind() = %v, want %v", Describe(tt.node), got, tt.want)
		}
	}
}

func TestParseKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want Keyword
		ok   bool
	}{
		{"string", KeywordString, true},
		{"function", KeywordFunction, true},
		{"unknown", KeywordAny, true},
		{"void", KeywordUndefined, true},
		{"bigint", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseKeyword(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseKeyword(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLiteralTypeOf(t *testing.T) {
	tests := []struct {
		value  any
		typ    string
		format string
		ok     bool
	}{
		{"red", "string", "red", true},
		{float64(3), "number", "3", true},
		{1.5, "number", "1.5", true},
		{7, "number", "7", true},
		{true, "boolean", "true", true},
		{nil, "", "", false},
	}
	for _, tt := range tests {
		l := Lit(tt.value)
		typ, ok := l.TypeOf()
		if typ != tt.typ || ok != tt.ok {
			t.Errorf("Lit(%v).TypeOf() = %q, %v, want %q, %v", tt.value, typ, ok, tt.typ, tt.ok)
		}
		if got := l.Format(); got != tt.format {
			t.Errorf("Lit(%v).Format() = %q, want %q", tt.value, got, tt.format)
		}
	}
}

func TestWithDoc(t *testing.T) {
	orig := Ref("Widget")
	doc := Documentation{Summary: "The widget."}
	got := WithDoc(orig, doc)
	if got.Doc().Summary != "The widget." {
		t.Errorf("WithDoc().Doc().Summary = %q, want %q", got.Doc().Summary, "The widget.")
	}
	if !orig.Doc().IsZero() {
		t.Error("WithDoc modified the original node")
	}
	if got.(*Reference).Name != "Widget" {
		t.Errorf("WithDoc().Name = %q, want Widget", got.(*Reference).Name)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		node TypeNode
		want string
	}{
		{Ref("Promise", ArrayOf(Ref("Widget"))), "Promise<Widget[]>"},
		{ArrayOf(UnionOf(String(), Number())), "(string | number)[]"},
		{Lit("on"), `"on"`},
		{Lit(nil), "<unresolved literal>"},
		{Ref("Map", String(), Boolean()), "Map<string, boolean>"},
	}
	for _, tt := range tests {
		if got := Describe(tt.node); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}

func TestDocumentationText(t *testing.T) {
	d := Documentation{Summary: "Short.", Body: "Short.\n\nLonger body."}
	if got := d.Text(); got != "Short.\n\nLonger body." {
		t.Errorf("Text() = %q", got)
	}
	d = Documentation{Summary: " Only summary "}
	if got := d.Text(); got != "Only summary" {
		t.Errorf("Text() = %q, want %q", got, "Only summary")
	}
}

func TestDecoratorArgIsLiteral(t *testing.T) {
	for kind, want := range map[ArgKind]bool{
		ArgString:     true,
		ArgNumber:     true,
		ArgIdentifier: true,
		ArgExpression: false,
	} {
		if got := (DecoratorArg{Kind: kind}).IsLiteral(); got != want {
			t.Errorf("DecoratorArg{%v}.IsLiteral() = %v, want %v", kind, got, want)
		}
	}
}
