package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Compilation is the set of types and syntax trees of one build.
type Compilation struct {
	// Name is the assembly name.
	Name string

	// Trees are the source files, in input order.
	Trees []*SyntaxTree

	types      []*NamedType
	byMetadata map[string]*NamedType
	byPath     map[string]*NamedType
}

// NewCompilation creates an empty compilation.
func NewCompilation(name string) *Compilation {
	return &Compilation{
		Name:       name,
		byMetadata: make(map[string]*NamedType),
		byPath:     make(map[string]*NamedType),
	}
}

// AddType registers a named type. Nested types must be registered after
// their containing type. Registering two types with the same metadata name
// is an error.
func (c *Compilation) AddType(t *NamedType) error {
	name := t.FullMetadataName()
	if _, exists := c.byMetadata[name]; exists {
		return fmt.Errorf("duplicate type %q", name)
	}
	if t.Special == SpecialNone {
		if s, ok := SpecialTypeByMetadataName(name); ok {
			t.Special = s
		}
	}
	c.types = append(c.types, t)
	c.byMetadata[name] = t
	c.byPath[t.lookupPath()] = t
	return nil
}

// AddTree appends a syntax tree.
func (c *Compilation) AddTree(tree *SyntaxTree) {
	c.Trees = append(c.Trees, tree)
}

// Types returns every registered type in registration order.
func (c *Compilation) Types() []*NamedType {
	return c.types
}

// TypeByMetadataName returns the type registered under name
// ("Ns.Outer+Inner`1"), or nil.
func (c *Compilation) TypeByMetadataName(name string) *NamedType {
	return c.byMetadata[name]
}

// SpecialType returns the core library type for s, or nil when the
// compilation does not reference it.
func (c *Compilation) SpecialType(s SpecialType) *NamedType {
	name := s.MetadataName()
	if name == "" {
		return nil
	}
	return c.byMetadata[name]
}

// Scope is the context a written name is bound in.
type Scope struct {
	// Namespace is the namespace the name appears in.
	Namespace string

	// Type is the innermost type whose nested types are visible, nil at
	// namespace level.
	Type *NamedType

	// Usings are the namespaces imported by the file.
	Usings []string
}

// LookupType binds a written, possibly dotted, name with the given arity.
// Candidates are tried from the innermost scope outward: nested types of
// the enclosing types, then each enclosing namespace, then the usings. The
// first match wins. It returns nil when nothing matches.
func (c *Compilation) LookupType(scope Scope, name string, arity int) *NamedType {
	name = strings.TrimPrefix(name, "global::")
	if name == "" {
		return nil
	}
	rel := name
	if arity > 0 {
		rel += "`" + strconv.Itoa(arity)
	}
	for t := scope.Type; t != nil; t = t.ContainingType {
		if found := c.byPath[t.lookupPath()+"."+rel]; found != nil {
			return found
		}
	}
	ns := scope.Namespace
	for {
		key := rel
		if ns != "" {
			key = ns + "." + rel
		}
		if found := c.byPath[key]; found != nil {
			return found
		}
		if ns == "" {
			break
		}
		if i := strings.LastIndexByte(ns, '.'); i >= 0 {
			ns = ns[:i]
		} else {
			ns = ""
		}
	}
	for _, u := range scope.Usings {
		if found := c.byPath[u+"."+rel]; found != nil {
			return found
		}
	}
	return nil
}

// DerivesFrom reports whether t is base or inherits from it through its
// base-class chain.
func DerivesFrom(t, base *NamedType) bool {
	for cur := t.AsType(); cur != nil; cur = cur.BaseType() {
		if cur.Def == base {
			return true
		}
	}
	return false
}

// SemanticModel answers symbol questions about the nodes of one tree.
type SemanticModel struct {
	comp *Compilation
	tree *SyntaxTree
}

// SemanticModel returns the semantic model for tree.
func (c *Compilation) SemanticModel(tree *SyntaxTree) *SemanticModel {
	return &SemanticModel{comp: c, tree: tree}
}

// Compilation returns the compilation the model belongs to.
func (m *SemanticModel) Compilation() *Compilation { return m.comp }

// DeclaredSymbol returns the type declared by decl.
func (m *SemanticModel) DeclaredSymbol(decl *DeclarationSyntax) *NamedType {
	if decl == nil {
		return nil
	}
	return decl.Symbol
}

// AttributeClass binds an attribute usage on decl to its attribute class.
// It returns nil when the name does not bind to a class deriving from
// System.Attribute.
func (m *SemanticModel) AttributeClass(decl *DeclarationSyntax, attr *AttributeSyntax) *NamedType {
	scope := Scope{Namespace: decl.Namespace}
	if decl.Symbol != nil {
		scope.Type = decl.Symbol.ContainingType
	}
	if m.tree != nil {
		scope.Usings = m.tree.Usings
	}
	return m.comp.BindAttribute(scope, attr.Name)
}

// BindAttribute binds an attribute name, trying the "Attribute" suffixed
// form first as the language does.
func (c *Compilation) BindAttribute(scope Scope, name string) *NamedType {
	candidates := []string{name + "Attribute", name}
	if strings.HasSuffix(name, "Attribute") {
		candidates = []string{name, name + "Attribute"}
	}
	attribute := c.TypeByMetadataName("System.Attribute")
	for _, candidate := range candidates {
		t := c.LookupType(scope, candidate, 0)
		if t == nil || t.Kind != KindClass {
			continue
		}
		if attribute != nil && !DerivesFrom(t, attribute) {
			continue
		}
		return t
	}
	return nil
}
