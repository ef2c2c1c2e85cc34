package ir

import "strings"

// SyntaxKind identifies the kind of a type declaration node.
type SyntaxKind int

const (
	ClassDeclaration SyntaxKind = iota
	StructDeclaration
	InterfaceDeclaration
	RecordDeclaration
	RecordStructDeclaration
	EnumDeclaration
)

// String returns the string representation of the syntax kind.
func (k SyntaxKind) String() string {
	switch k {
	case ClassDeclaration:
		return "ClassDeclaration"
	case StructDeclaration:
		return "StructDeclaration"
	case InterfaceDeclaration:
		return "InterfaceDeclaration"
	case RecordDeclaration:
		return "RecordDeclaration"
	case RecordStructDeclaration:
		return "RecordStructDeclaration"
	case EnumDeclaration:
		return "EnumDeclaration"
	default:
		return "Unknown"
	}
}

// Modifier is a declaration modifier keyword.
type Modifier string

const (
	ModPublic    Modifier = "public"
	ModPrivate   Modifier = "private"
	ModProtected Modifier = "protected"
	ModInternal  Modifier = "internal"
	ModStatic    Modifier = "static"
	ModAbstract  Modifier = "abstract"
	ModSealed    Modifier = "sealed"
	ModPartial   Modifier = "partial"
	ModReadOnly  Modifier = "readonly"
	ModConst     Modifier = "const"
)

// SyntaxTree is one source file of a compilation.
type SyntaxTree struct {
	// Path is the file path as given by the front-end.
	Path string

	// Usings are the namespaces imported by using directives.
	Usings []string

	// Declarations lists every type declaration in the file, nested ones
	// included, in source order (outer before inner).
	Declarations []*DeclarationSyntax
}

// AttributeSyntax is one attribute usage as written, e.g. "SmartEnum" or
// "Ardalis.SmartEnum.SmartEnumAttribute".
type AttributeSyntax struct {
	Name string
}

// AttributeList is a bracketed group of attribute usages.
type AttributeList struct {
	Attributes []*AttributeSyntax
}

// DeclarationSyntax is a type declaration node.
type DeclarationSyntax struct {
	// ID identifies the node within its compilation, stable across passes for
	// an unchanged file layout. Assigned by the front-end.
	ID string

	Kind           SyntaxKind
	Identifier     string
	Modifiers      []Modifier
	AttributeLists []*AttributeList
	TypeParameters []string

	// Namespace is the namespace the declaration appears in.
	Namespace string

	// Parent is the enclosing type declaration, nil at namespace level.
	Parent *DeclarationSyntax

	// Tree is the file containing the node.
	Tree *SyntaxTree

	// Symbol is the type this node declares. Front-ends always set it; the
	// semantic model is the supported way to reach it.
	Symbol *NamedType
}

// HasModifier reports whether the node carries modifier m.
func (d *DeclarationSyntax) HasModifier(m Modifier) bool {
	for _, have := range d.Modifiers {
		if have == m {
			return true
		}
	}
	return false
}

// Attributes returns the attribute usages of every list, in order.
func (d *DeclarationSyntax) Attributes() []*AttributeSyntax {
	var out []*AttributeSyntax
	for _, list := range d.AttributeLists {
		out = append(out, list.Attributes...)
	}
	return out
}

// QualifiedName returns the dotted name of the node including its enclosing
// declarations and namespace.
func (d *DeclarationSyntax) QualifiedName() string {
	parts := []string{d.Identifier}
	for p := d.Parent; p != nil; p = p.Parent {
		parts = append(parts, p.Identifier)
	}
	if d.Namespace != "" {
		parts = append(parts, d.Namespace)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}
