package smartgen

import (
	"strings"

	"github.com/broady/smartgen/analysis"
	"github.com/broady/smartgen/ir"
)

// The projections below are the plain data each stage reads. Two inputs
// with equal projections produce equal stage results, so their fingerprints
// decide whether a memoized result can be reused.

type syntaxKey struct {
	Kind           int
	Identifier     string
	Modifiers      []string
	AttributeLists [][]string
	TypeParameters []string
}

func declarationSyntaxKey(d *ir.DeclarationSyntax) syntaxKey {
	k := syntaxKey{
		Kind:           int(d.Kind),
		Identifier:     d.Identifier,
		TypeParameters: d.TypeParameters,
	}
	for _, m := range d.Modifiers {
		k.Modifiers = append(k.Modifiers, string(m))
	}
	for _, list := range d.AttributeLists {
		names := make([]string, len(list.Attributes))
		for i, a := range list.Attributes {
			names[i] = a.Name
		}
		k.AttributeLists = append(k.AttributeLists, names)
	}
	return k
}

type markerKey struct {
	Syntax     syntaxKey
	Namespace  string
	Outer      string
	Usings     []string
	Candidates [][]typeEntry
	Marker     string
}

type typeEntry struct {
	Name  string
	Kind  int
	Bases []string
}

// attributeIndex groups the types of a compilation by simple name. Each
// entry carries the base-class chain that decides whether it is an
// attribute class.
type attributeIndex map[string][]typeEntry

func newAttributeIndex(comp *ir.Compilation) attributeIndex {
	idx := make(attributeIndex)
	for _, t := range comp.Types() {
		e := typeEntry{Name: t.FullMetadataName(), Kind: int(t.Kind)}
		for cur := t.AsType().BaseType(); cur != nil; cur = cur.BaseType() {
			e.Bases = append(e.Bases, cur.String())
		}
		idx[t.Name] = append(idx[t.Name], e)
	}
	return idx
}

// candidates returns every type an attribute written as name can bind to,
// in any scope.
func (idx attributeIndex) candidates(name string) []typeEntry {
	name = strings.TrimPrefix(name, "global::")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	out := append([]typeEntry(nil), idx[name]...)
	return append(out, idx[name+"Attribute"]...)
}

func (idx attributeIndex) markerCandidates(d *ir.DeclarationSyntax) [][]typeEntry {
	var out [][]typeEntry
	for _, list := range d.AttributeLists {
		for _, a := range list.Attributes {
			out = append(out, idx.candidates(a.Name))
		}
	}
	return out
}

type memberKey struct {
	Name       string
	Kind       int
	Type       string
	IsStatic   bool
	IsConst    bool
	Attributes []string
}

type paramKey struct {
	Type       string
	IsOptional bool
}

type ctorKey struct {
	IsStatic   bool
	Parameters []paramKey
}

type symbolKey struct {
	Name      string
	Namespace string
	Shell     analysis.TypeShell
	Enclosing []analysis.TypeShell
	Inherited []string
	Ctors     []ctorKey
	Members   []memberKey
	Ids       []string
}

// symbolShape projects everything [analysis.BuildContext] reads from sym.
func symbolShape(sym *ir.NamedType, ids *analysis.Identities) symbolKey {
	k := symbolKey{
		Name:      sym.Name,
		Namespace: sym.Namespace,
		Shell:     analysis.Shell(sym),
		Ids:       ids.Key(),
	}
	for _, outer := range sym.ContainingTypes() {
		k.Enclosing = append(k.Enclosing, analysis.Shell(outer))
	}
	for _, t := range analysis.InheritedTypes(sym, ids.Object) {
		k.Inherited = append(k.Inherited, t.String())
	}
	for _, c := range sym.Constructors {
		ck := ctorKey{IsStatic: c.IsStatic}
		for _, p := range c.Parameters {
			ck.Parameters = append(ck.Parameters, paramKey{Type: p.Type.String(), IsOptional: p.IsOptional})
		}
		k.Ctors = append(k.Ctors, ck)
	}
	for _, m := range sym.Members {
		mk := memberKey{
			Name:     m.Name,
			Kind:     int(m.Kind),
			Type:     m.Type.String(),
			IsStatic: m.IsStatic,
			IsConst:  m.IsConst,
		}
		for _, a := range m.Attributes {
			if a.Class != nil {
				mk.Attributes = append(mk.Attributes, a.Class.DisplayName())
			}
		}
		k.Members = append(k.Members, mk)
	}
	return k
}
