// Package dsl parses bilingual manuscript files:
//
//	doc HeartSutra v1 {
//	  meta    { title: "…" keywords: ["a", "b"] }
//	  fonts   { zh: "zh.ttf" en: "en.ttf" }
//	  options { page A4 landscape margin 20mm 15mm; zh-size: 13pt }
//	  section { zh: "…" en: `…` }
//	}
//
// Strings are either double-quoted with Go escapes or backquoted and kept verbatim.
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "RawString", Pattern: "`[^`]*`"},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][,:;{}]`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root of a manuscript.
type Document struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"Newline* 'doc' @Ident"`
	Version string         `parser:"@Ident"`
	Blocks  []*Block       `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Block is one top-level block. Exactly one field is set.
type Block struct {
	Meta    *Fields       `parser:"  'meta' @@"`
	Fonts   *Fields       `parser:"| 'fonts' @@"`
	Options *OptionsBlock `parser:"| 'options' @@"`
	Section *Fields       `parser:"| 'section' @@"`
}

// Kind returns the block keyword.
func (b *Block) Kind() string {
	switch {
	case b == nil:
		return "unknown"
	case b.Meta != nil:
		return "meta"
	case b.Fonts != nil:
		return "fonts"
	case b.Options != nil:
		return "options"
	case b.Section != nil:
		return "section"
	default:
		return "unknown"
	}
}

// Fields is a braced list of key: value assignments.
type Fields struct {
	Pos         lexer.Position `parser:"" json:"-"`
	Assignments []*Assignment  `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Get returns the last value assigned to key.
func (f *Fields) Get(key string) (*Value, bool) {
	if f == nil {
		return nil, false
	}
	var out *Value
	for _, a := range f.Assignments {
		if a.Key == key {
			out = a.Value
		}
	}
	return out, out != nil
}

// OptionsBlock holds option assignments and page commands in source order.
type OptionsBlock struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Items []*OptionItem  `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// OptionItem is either a page command or an assignment.
type OptionItem struct {
	Page   *PageCommand `parser:"  @@"`
	Assign *Assignment  `parser:"| @@"`
}

// PageCommand is `page <preset> [landscape] [margin <len>{1,4}]`.
type PageCommand struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Args []string       `parser:"'page' @( Ident | Number )+"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Value is a string, a number with optional unit, a bare word, or an array.
type Value struct {
	String *StringLiteral `parser:"  @(String | RawString)"`
	Number *string        `parser:"| @Number"`
	Word   *string        `parser:"| @Ident"`
	Array  *ArrayValue    `parser:"| @@"`
}

// Text returns the scalar form of v; arrays yield "".
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Word != nil:
		return *v.Word
	default:
		return ""
	}
}

// Strings flattens v into non-empty strings. A scalar yields at most one element.
func (v *Value) Strings() []string {
	if v == nil {
		return nil
	}
	if v.Array == nil {
		if s := v.Text(); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(v.Array.Values))
	for _, item := range v.Array.Values {
		if s := item.Text(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ArrayValue captures `[ ... ]`, items separated by commas or newlines.
type ArrayValue struct {
	Values []*Value `parser:"'[' ( ',' | Newline )* ( @@ ( ',' | Newline )* )* ']'"`
}

// StringLiteral unquotes on capture. Backquoted strings are kept verbatim.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a manuscript from r.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses a manuscript held in a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
