// Package smartgentest provides helpers for building compilations in tests.
package smartgentest

import (
	"strings"
	"testing"

	"github.com/broady/smartgen/ir"
	"github.com/broady/smartgen/provider"
)

// Compile decodes YAML snapshot documents and builds them into one
// compilation, failing the test on any error.
//
// Example:
//
//	comp := smartgentest.Compile(t, `
//	compilation: App
//	references: [smartenum]
//	files:
//	  - path: Color.cs
//	    usings: [Ardalis.SmartEnum]
//	    types:
//	      - {name: Color, modifiers: [public, partial], attributes: [SmartEnum]}
//	`)
func Compile(tb testing.TB, docs ...string) *ir.Compilation {
	tb.Helper()
	var decoded []*provider.Document
	for _, data := range docs {
		doc, err := provider.Decode("snapshot.yaml", []byte(data))
		if err != nil {
			tb.Fatalf("decode snapshot: %v", err)
		}
		decoded = append(decoded, doc)
	}
	comp, err := provider.Build(decoded...)
	if err != nil {
		tb.Fatalf("build compilation: %v", err)
	}
	return comp
}

// Declaration returns the first declaration node whose qualified name is
// name ("Ns.Outer.Inner").
func Declaration(tb testing.TB, comp *ir.Compilation, name string) *ir.DeclarationSyntax {
	tb.Helper()
	for _, tree := range comp.Trees {
		for _, decl := range tree.Declarations {
			if decl.QualifiedName() == name {
				return decl
			}
		}
	}
	tb.Fatalf("no declaration named %q", name)
	return nil
}

// Type returns the type registered under the metadata name.
func Type(tb testing.TB, comp *ir.Compilation, metadataName string) *ir.NamedType {
	tb.Helper()
	t := comp.TypeByMetadataName(metadataName)
	if t == nil {
		tb.Fatalf("no type named %q", metadataName)
	}
	return t
}

// Enum renders a snapshot with one smart enum declaration in the global
// namespace. Extra lines are appended to the type entry as-is and must be
// indented by eight spaces.
func Enum(name string, members []string, extra ...string) string {
	var b strings.Builder
	b.WriteString("compilation: App\nreferences: [smartenum]\nfiles:\n  - path: " + name + ".cs\n")
	b.WriteString("    usings: [Ardalis.SmartEnum]\n    types:\n")
	b.WriteString("      - name: " + name + "\n")
	b.WriteString("        modifiers: [public, partial]\n")
	b.WriteString("        attributes: [SmartEnum]\n")
	for _, line := range extra {
		b.WriteString(line + "\n")
	}
	if len(members) > 0 {
		b.WriteString("        members:\n")
		for _, m := range members {
			b.WriteString("          - {name: " + m + ", type: " + name + ", modifiers: [public, static, readonly], attributes: [EnumMember]}\n")
		}
	}
	return b.String()
}
