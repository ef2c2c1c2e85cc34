package provider

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// TypeRef is a parsed type reference such as "SmartEnum<Color, string>".
type TypeRef struct {
	Parts []string   `parser:"@Ident ( \".\" @Ident )*"`
	Args  []*TypeRef `parser:"( \"<\" @@ ( \",\" @@ )* \">\" )?"`
}

// Name returns the dotted name without type arguments.
func (r *TypeRef) Name() string {
	return strings.Join(r.Parts, ".")
}

// String formats the reference back to source form.
func (r *TypeRef) String() string {
	var b strings.Builder
	b.WriteString(r.Name())
	if len(r.Args) > 0 {
		b.WriteByte('<')
		for i, a := range r.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	return b.String()
}

var typeRefLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `@?[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[.,<>]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

var typeRefParser = participle.MustBuild[TypeRef](
	participle.Lexer(typeRefLexer),
	participle.Elide("Whitespace"),
	participle.Map(func(tok lexer.Token) (lexer.Token, error) {
		tok.Value = strings.TrimPrefix(tok.Value, "@")
		return tok, nil
	}, "Ident"),
	participle.UseLookahead(2),
)

// ParseTypeRef parses a written type reference.
func ParseTypeRef(s string) (*TypeRef, error) {
	ref, err := typeRefParser.ParseString("", strings.TrimPrefix(strings.TrimSpace(s), "global::"))
	if err != nil {
		return nil, fmt.Errorf("parse type reference %q: %w", s, err)
	}
	return ref, nil
}
