package synth

import (
	"strconv"
	"strings"

	"github.com/broady/tsroute/tsroutegen/ir"
	"github.com/broady/tsroute/tsroutegen/schema"
)

// applyTags applies minimum, maximum and type tags to every typed leaf of f.
// Fragments without a type (bare $ref, oneOf of refs) are left alone.
// A malformed tag is reported and skipped; the remaining tags still apply.
func (t *Translator) applyTags(f *schema.Fragment, tags []ir.DocTag, opts Options) {
	if len(tags) == 0 {
		return
	}
	leaves := typedLeaves(f, nil)
	if len(leaves) == 0 {
		return
	}
	for _, tag := range tags {
		switch tag.Name {
		case "minimum", "maximum":
			v, err := strconv.ParseFloat(strings.TrimSpace(tag.Value), 64)
			if err != nil {
				t.malformed(tag, opts, "expected a number")
				continue
			}
			for _, l := range leaves {
				if tag.Name == "minimum" {
					l.Minimum = schema.Float(v)
				} else {
					l.Maximum = schema.Float(v)
				}
			}
		case "type":
			name := typeTagName(tag)
			if name == "" {
				t.malformed(tag, opts, "expected a type name")
				continue
			}
			for _, l := range leaves {
				l.Type = name
			}
		}
	}
}

func typedLeaves(f *schema.Fragment, out []*schema.Fragment) []*schema.Fragment {
	if f.Type != "" {
		return append(out, f)
	}
	for _, o := range f.OneOf {
		out = typedLeaves(o, out)
	}
	return out
}

// typeTagName returns the type name of a @type tag: the braced expression if
// present, otherwise the first word of the value.
func typeTagName(tag ir.DocTag) string {
	if name := strings.TrimSpace(tag.TypeExpr); name != "" {
		return name
	}
	fields := strings.Fields(tag.Value)
	if len(fields) == 0 {
		return ""
	}
	name := strings.TrimSuffix(strings.TrimPrefix(fields[0], "{"), "}")
	if name == "" || strings.ContainsAny(name, "{}|<>") {
		return ""
	}
	return name
}

func (t *Translator) malformed(tag ir.DocTag, opts Options, why string) {
	if opts.quiet {
		return
	}
	w := ir.Errorf(ir.CodeMalformedDocTag, opts.Owner, "@%s %q: %s", tag.Name, tag.Value, why).Warning()
	t.reg.Warn(w)
}
