package analysis

import (
	"strings"

	"github.com/broady/tsroute/tsroutegen/ir"
)

// ParseDoc splits a documentation comment into prose and block tags.
//
// The comment may be given with or without its delimiters:
//
//	/**
//	 * Lists widgets.
//	 *
//	 * @minimum 1
//	 * @type {integer}
//	 */
//
// Lines up to the first tag form the body; its first paragraph is the
// summary. A tag runs until the next tag, continuation lines joined with a
// space. @deprecated sets Documentation.Deprecated instead of producing a tag.
func ParseDoc(comment string) (ir.Documentation, []ir.DocTag) {
	var (
		doc   ir.Documentation
		prose []string
		tags  []ir.DocTag
		cur   *ir.DocTag
	)
	flush := func() {
		if cur == nil {
			return
		}
		if cur.Name == "deprecated" {
			msg := cur.Value
			doc.Deprecated = &msg
		} else {
			tags = append(tags, *cur)
		}
		cur = nil
	}

	for _, line := range commentLines(comment) {
		if strings.HasPrefix(line, "@") {
			flush()
			t := parseTag(line)
			cur = &t
			continue
		}
		if cur != nil {
			if line != "" {
				cur.Value = strings.TrimSpace(cur.Value + " " + line)
			}
			continue
		}
		prose = append(prose, line)
	}
	flush()

	doc.Body = strings.TrimSpace(strings.Join(collapseBlank(prose), "\n"))
	if doc.Body != "" {
		para, _, _ := strings.Cut(doc.Body, "\n\n")
		doc.Summary = strings.Join(strings.Fields(para), " ")
	}
	return doc, tags
}

// commentLines strips comment delimiters and leading asterisks.
func commentLines(comment string) []string {
	s := strings.TrimSpace(comment)
	s = strings.TrimPrefix(s, "/**")
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "*") {
			line = strings.TrimSpace(line[1:])
		}
		lines = append(lines, line)
	}
	return lines
}

func collapseBlank(lines []string) []string {
	var out []string
	for i, l := range lines {
		if l == "" && i > 0 && lines[i-1] == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// parseTag parses "@name {Type} value". An unterminated brace is kept in
// the value so the consumer can report it.
func parseTag(line string) ir.DocTag {
	name, rest, _ := strings.Cut(strings.TrimPrefix(line, "@"), " ")
	tag := ir.DocTag{Name: strings.TrimSpace(name)}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "{") {
		if end := strings.IndexByte(rest, '}'); end > 0 {
			tag.TypeExpr = strings.TrimSpace(rest[1:end])
			rest = strings.TrimSpace(rest[end+1:])
		}
	}
	tag.Value = rest
	return tag
}
