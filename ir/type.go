package ir

import "strings"

// Type is a reference to a type: a named type with type arguments, a type
// parameter, or a name that could not be bound.
type Type struct {
	// Def is the referenced definition. Nil for type parameters and
	// unresolved references.
	Def *NamedType

	// Args are the type arguments, one per type parameter of Def.
	Args []*Type

	// Param is the type parameter name when the reference is a type parameter.
	Param string

	// Unresolved holds the written name when binding failed.
	Unresolved string
}

// IsTypeParameter reports whether t refers to a type parameter.
func (t *Type) IsTypeParameter() bool { return t != nil && t.Def == nil && t.Param != "" }

// IsResolved reports whether t refers to a named type.
func (t *Type) IsResolved() bool { return t != nil && t.Def != nil }

// OriginalDefinition returns the generic definition t was constructed from.
func (t *Type) OriginalDefinition() *NamedType {
	if t == nil {
		return nil
	}
	return t.Def
}

// SpecialType returns the special type of the referenced definition.
func (t *Type) SpecialType() SpecialType {
	if t == nil || t.Def == nil {
		return SpecialNone
	}
	return t.Def.Special
}

// TypeArgument returns the i-th type argument, or nil when out of range.
func (t *Type) TypeArgument(i int) *Type {
	if t == nil || i < 0 || i >= len(t.Args) {
		return nil
	}
	return t.Args[i]
}

// BaseType returns the base class of t with t's type arguments substituted.
func (t *Type) BaseType() *Type {
	if t == nil || t.Def == nil || t.Def.BaseType == nil {
		return nil
	}
	return t.Def.BaseType.Substitute(t.Def.TypeParameters, t.Args)
}

// Interfaces returns the directly declared interfaces of t with t's type
// arguments substituted.
func (t *Type) Interfaces() []*Type {
	if t == nil || t.Def == nil {
		return nil
	}
	out := make([]*Type, 0, len(t.Def.Interfaces))
	for _, iface := range t.Def.Interfaces {
		out = append(out, iface.Substitute(t.Def.TypeParameters, t.Args))
	}
	return out
}

// Substitute replaces references to params with the matching args.
func (t *Type) Substitute(params []string, args []*Type) *Type {
	if t == nil {
		return nil
	}
	if t.IsTypeParameter() {
		for i, p := range params {
			if p == t.Param && i < len(args) {
				return args[i]
			}
		}
		return t
	}
	if len(t.Args) == 0 {
		return t
	}
	out := &Type{Def: t.Def, Unresolved: t.Unresolved}
	for _, a := range t.Args {
		out.Args = append(out.Args, a.Substitute(params, args))
	}
	return out
}

// Identical reports whether a and b denote the same type.
func Identical(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Def == nil || b.Def == nil {
		// Unresolved references are never identical to anything.
		return a.Def == nil && b.Def == nil && a.Param != "" && a.Param == b.Param
	}
	if a.Def != b.Def || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !Identical(a.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}

// String returns the fully qualified display form, e.g.
// "Ardalis.SmartEnum.SmartEnum<Shop.Color, System.String>".
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch {
	case t.IsTypeParameter():
		return t.Param
	case t.Def == nil:
		return "?" + t.Unresolved
	}
	var b strings.Builder
	if c := t.Def.ContainingType; c != nil {
		b.WriteString(c.DisplayName())
		b.WriteByte('.')
	} else if t.Def.Namespace != "" {
		b.WriteString(t.Def.Namespace)
		b.WriteByte('.')
	}
	b.WriteString(t.Def.Name)
	if len(t.Args) > 0 {
		b.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	return b.String()
}
