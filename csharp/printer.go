package csharp

import (
	"bytes"
	"strings"
)

// PrintOptions control the layout of printed source.
type PrintOptions struct {
	// IndentSize is the number of spaces per nesting level.
	IndentSize int

	// LineEnding is "lf" or "crlf".
	LineEnding string
}

// Print renders a compilation unit. Output is deterministic: one member per
// line, braces on their own lines, a blank line between type members.
func Print(unit *CompilationUnit, opts PrintOptions) []byte {
	p := newPrinter(opts)
	for _, h := range unit.Header {
		p.line(h)
	}
	for _, u := range unit.Usings {
		p.line("using " + u + ";")
	}
	if len(unit.Usings) > 0 && unit.Member != nil {
		p.blank()
	}
	if unit.Member != nil {
		unit.Member.print(p)
	}
	return p.buf.Bytes()
}

type printer struct {
	buf     bytes.Buffer
	indent  string
	newline string
	depth   int
}

func newPrinter(opts PrintOptions) *printer {
	size := opts.IndentSize
	if size <= 0 {
		size = 4
	}
	newline := "\n"
	if opts.LineEnding == "crlf" {
		newline = "\r\n"
	}
	return &printer{indent: strings.Repeat(" ", size), newline: newline}
}

func (p *printer) line(s string) {
	for i := 0; i < p.depth; i++ {
		p.buf.WriteString(p.indent)
	}
	p.buf.WriteString(s)
	p.buf.WriteString(p.newline)
}

func (p *printer) blank() {
	p.buf.WriteString(p.newline)
}

func (p *printer) open() {
	p.line("{")
	p.depth++
}

func (p *printer) close() {
	p.depth--
	p.line("}")
}

func modifiers(mods []string) string {
	if len(mods) == 0 {
		return ""
	}
	return strings.Join(mods, " ") + " "
}

func (n *NamespaceDeclaration) print(p *printer) {
	p.line("namespace " + n.Name)
	p.open()
	printMembers(p, n.Members)
	p.close()
}

func (t *TypeDeclaration) print(p *printer) {
	var b strings.Builder
	b.WriteString(modifiers(t.Modifiers))
	b.WriteString(t.Keyword)
	b.WriteByte(' ')
	b.WriteString(t.Name)
	if len(t.TypeParameters) > 0 {
		b.WriteString("<" + strings.Join(t.TypeParameters, ", ") + ">")
	}
	if len(t.BaseList) > 0 {
		b.WriteString(" : " + strings.Join(t.BaseList, ", "))
	}
	p.line(b.String())
	p.open()
	printMembers(p, t.Members)
	p.close()
}

func printMembers(p *printer, members []Declaration) {
	for i, m := range members {
		if i > 0 {
			p.blank()
		}
		m.print(p)
	}
}

func (f *FieldDeclaration) print(p *printer) {
	p.line(modifiers(f.Modifiers) + f.Type + " " + f.Name + ";")
}

func (c *ConstructorDeclaration) print(p *printer) {
	params := make([]string, len(c.Parameters))
	for i, param := range c.Parameters {
		params[i] = param.Type + " " + param.Name
	}
	sig := modifiers(c.Modifiers) + c.Name + "(" + strings.Join(params, ", ") + ")"
	if c.BaseArguments != nil {
		sig += " : base(" + strings.Join(c.BaseArguments, ", ") + ")"
	}
	p.line(sig)
	p.open()
	for _, s := range c.Body {
		s.print(p)
	}
	p.close()
}

func (m *MethodDeclaration) print(p *printer) {
	p.line(modifiers(m.Modifiers) + m.ReturnType + " " + m.Name + "() => " + m.Expression + ";")
}

func (a *AssignmentStatement) print(p *printer) {
	p.line(a.Target + " = " + a.Value + ";")
}
