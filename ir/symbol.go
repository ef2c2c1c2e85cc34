package ir

import (
	"strconv"
	"strings"
)

// NamedType is a class, struct, interface or enum declared in source or
// referenced from metadata.
type NamedType struct {
	// Name is the simple name without arity, e.g. "SmartEnum".
	Name string

	// Namespace is the dotted containing namespace. Empty for the global namespace.
	Namespace string

	// ContainingType is the enclosing type for nested types, nil otherwise.
	ContainingType *NamedType

	Kind          TypeKind
	IsRecord      bool
	Accessibility Accessibility
	IsAbstract    bool
	IsSealed      bool
	IsStatic      bool
	IsReadOnly    bool

	// TypeParameters are the names of the declared type parameters, in order.
	TypeParameters []string

	// Special is set for the built-in types of the core library.
	Special SpecialType

	// BaseType is the declared base class, nil for interfaces, Object and
	// types whose base was not written (the front-end fills in Object).
	BaseType *Type

	// Interfaces are the directly declared interfaces.
	Interfaces []*Type

	// Members are the declared fields, properties and methods, in declaration order.
	Members []*Member

	// Constructors are the declared instance and static constructors.
	Constructors []*Method

	// Attributes are the bound attribute usages on the type.
	Attributes []*AttributeData

	// NestedTypes are the types declared directly inside this one.
	NestedTypes []*NamedType

	// Declarations are the syntax nodes declaring this type. Metadata types
	// have none; partial types may have several.
	Declarations []*DeclarationSyntax
}

// Arity returns the number of type parameters.
func (t *NamedType) Arity() int { return len(t.TypeParameters) }

// IsGeneric reports whether the type declares type parameters.
func (t *NamedType) IsGeneric() bool { return len(t.TypeParameters) > 0 }

// IsGlobalNamespace reports whether the type lives in the global namespace.
func (t *NamedType) IsGlobalNamespace() bool { return t.Namespace == "" }

// MetadataName returns the simple name with its arity suffix ("SmartEnum`2").
func (t *NamedType) MetadataName() string {
	if t.Arity() == 0 {
		return t.Name
	}
	return t.Name + "`" + strconv.Itoa(t.Arity())
}

// FullMetadataName returns the name used to look the type up in a
// compilation: namespace, then containing types joined by '+'.
func (t *NamedType) FullMetadataName() string {
	var b strings.Builder
	if t.ContainingType != nil {
		b.WriteString(t.ContainingType.FullMetadataName())
		b.WriteByte('+')
	} else if t.Namespace != "" {
		b.WriteString(t.Namespace)
		b.WriteByte('.')
	}
	b.WriteString(t.MetadataName())
	return b.String()
}

// DisplayName returns the fully qualified name as written in source, with
// type parameters for generic definitions: "Ns.Outer.Inner", "Ns.List<T>".
func (t *NamedType) DisplayName() string {
	var b strings.Builder
	if t.ContainingType != nil {
		b.WriteString(t.ContainingType.DisplayName())
		b.WriteByte('.')
	} else if t.Namespace != "" {
		b.WriteString(t.Namespace)
		b.WriteByte('.')
	}
	b.WriteString(t.Name)
	if t.IsGeneric() {
		b.WriteByte('<')
		b.WriteString(strings.Join(t.TypeParameters, ", "))
		b.WriteByte('>')
	}
	return b.String()
}

// lookupPath is the dotted path used for name binding; each segment carries
// its arity suffix so that SmartEnum`1 and SmartEnum`2 stay distinct.
func (t *NamedType) lookupPath() string {
	switch {
	case t.ContainingType != nil:
		return t.ContainingType.lookupPath() + "." + t.MetadataName()
	case t.Namespace != "":
		return t.Namespace + "." + t.MetadataName()
	default:
		return t.MetadataName()
	}
}

// ContainingTypes returns the enclosing types, innermost first.
func (t *NamedType) ContainingTypes() []*NamedType {
	var chain []*NamedType
	for c := t.ContainingType; c != nil; c = c.ContainingType {
		chain = append(chain, c)
	}
	return chain
}

// AsType returns the type as a reference; generic definitions are
// parameterized by their own type parameters.
func (t *NamedType) AsType() *Type {
	ref := &Type{Def: t}
	for _, p := range t.TypeParameters {
		ref.Args = append(ref.Args, &Type{Param: p})
	}
	return ref
}

// AllInterfaces returns every interface the type implements, directly or
// through its base types and other interfaces, with type arguments
// substituted. Each interface appears once.
func (t *NamedType) AllInterfaces() []*Type {
	var all []*Type
	var visit func(*Type)
	visit = func(iface *Type) {
		for _, seen := range all {
			if Identical(seen, iface) {
				return
			}
		}
		all = append(all, iface)
		for _, next := range iface.Interfaces() {
			visit(next)
		}
	}
	for cur := t.AsType(); cur != nil; cur = cur.BaseType() {
		for _, iface := range cur.Interfaces() {
			visit(iface)
		}
	}
	return all
}

// Member returns the declared member with the given name, or nil.
func (t *NamedType) Member(name string) *Member {
	for _, m := range t.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// MemberKind identifies the category of a member.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberProperty
	MemberMethod
	MemberEvent
)

// String returns the string representation of the member kind.
func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "Field"
	case MemberProperty:
		return "Property"
	case MemberMethod:
		return "Method"
	case MemberEvent:
		return "Event"
	default:
		return "Unknown"
	}
}

// Member is a field, property, method or event declared by a type.
type Member struct {
	Name          string
	Kind          MemberKind
	Type          *Type // field/property type, method return type
	Accessibility Accessibility
	IsStatic      bool
	IsConst       bool
	IsReadOnly    bool
	Attributes    []*AttributeData
}

// Method is a constructor declared by a type.
type Method struct {
	Accessibility Accessibility
	IsStatic      bool
	Parameters    []*Parameter
}

// Parameter is a constructor parameter.
type Parameter struct {
	Name       string
	Type       *Type
	IsOptional bool
}

// AttributeData is an attribute usage bound to its attribute class.
type AttributeData struct {
	// Class is the attribute class the usage binds to, nil when binding failed.
	Class *NamedType

	// Syntax is the usage as written.
	Syntax *AttributeSyntax
}
