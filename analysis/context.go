package analysis

import "github.com/broady/smartgen/ir"

// BaseKind says which enumeration base a type inherits from.
type BaseKind int

const (
	BaseNone BaseKind = iota
	BasePlain
	BaseFlag
)

// String returns the string representation of the base kind.
func (k BaseKind) String() string {
	switch k {
	case BasePlain:
		return "Plain"
	case BaseFlag:
		return "Flag"
	default:
		return "None"
	}
}

// BaseMatch is the result of matching a type's ancestors against the
// enumeration bases. Value is the base's value type argument and is nil for
// BaseNone.
type BaseMatch struct {
	Kind  BaseKind
	Value *ir.Type
}

// TypeShell is the part of a type declaration that is re-declared around
// generated members: everything but the body.
type TypeShell struct {
	Name           string
	Kind           ir.TypeKind
	IsRecord       bool
	Accessibility  ir.Accessibility
	IsSealed       bool
	IsReadOnly     bool
	IsStatic       bool
	TypeParameters []string
}

// ValueType identifies the value type of an enumeration.
type ValueType struct {
	Special ir.SpecialType

	// Name is the display name, used in warnings.
	Name string
}

// BaseRef names the enumeration base used when a base clause is generated.
type BaseRef struct {
	Namespace string
	Name      string
}

// GenerationContext is everything the synthesizer needs to know about one
// smart enum. It holds no symbols and is never modified once built.
type GenerationContext struct {
	Name string

	// Namespace is empty for the global namespace.
	Namespace string

	Declaration TypeShell

	// EnclosingTypes are the containing types, innermost first.
	EnclosingTypes []TypeShell

	// Members are the instance names in declaration order.
	Members []string

	InheritsFromBase         bool
	IsFlagStyle              bool
	ValueType                ValueType
	HasCompatibleConstructor bool
	Base                     BaseRef
}

// QualifiedName returns the dotted name of the enum including its
// namespace and enclosing types.
func (c *GenerationContext) QualifiedName() string {
	name := c.Name
	for _, outer := range c.EnclosingTypes {
		name = outer.Name + "." + name
	}
	if c.Namespace != "" {
		name = c.Namespace + "." + name
	}
	return name
}

// BuildContext derives the generation context of sym.
func BuildContext(sym *ir.NamedType, ids *Identities) *GenerationContext {
	match := MatchBase(sym, ids)
	value := match.Value
	if value == nil {
		value = ids.Int32.AsType()
	}

	ctx := &GenerationContext{
		Name:                     sym.Name,
		Namespace:                sym.Namespace,
		Declaration:              Shell(sym),
		Members:                  QualifyingMembers(sym, ids),
		InheritsFromBase:         match.Kind != BaseNone,
		IsFlagStyle:              match.Kind == BaseFlag,
		ValueType:                ValueType{Special: value.SpecialType(), Name: value.String()},
		HasCompatibleConstructor: HasCompatibleConstructor(sym, ids, value),
		Base:                     BaseRef{Namespace: ids.EnumBase.Namespace, Name: ids.EnumBase.Name},
	}
	for _, outer := range sym.ContainingTypes() {
		ctx.EnclosingTypes = append(ctx.EnclosingTypes, Shell(outer))
	}
	return ctx
}

// Shell captures the declaration shell of t.
func Shell(t *ir.NamedType) TypeShell {
	return TypeShell{
		Name:           t.Name,
		Kind:           t.Kind,
		IsRecord:       t.IsRecord,
		Accessibility:  t.Accessibility,
		IsSealed:       t.IsSealed,
		IsReadOnly:     t.IsReadOnly,
		IsStatic:       t.IsStatic,
		TypeParameters: t.TypeParameters,
	}
}

// InheritedTypes returns every interface sym implements followed by its
// base classes from the nearest outward, stopping before object.
func InheritedTypes(sym *ir.NamedType, object *ir.NamedType) []*ir.Type {
	inherited := sym.AllInterfaces()
	for base := sym.AsType().BaseType(); base != nil; base = base.BaseType() {
		if base.OriginalDefinition() == object {
			break
		}
		inherited = append(inherited, base)
	}
	return inherited
}

// MatchBase finds the first inherited type constructed from the flag or
// plain enumeration base.
func MatchBase(sym *ir.NamedType, ids *Identities) BaseMatch {
	for _, t := range InheritedTypes(sym, ids.Object) {
		switch t.OriginalDefinition() {
		case ids.FlagEnumBase:
			return BaseMatch{Kind: BaseFlag, Value: t.TypeArgument(1)}
		case ids.EnumBase:
			return BaseMatch{Kind: BasePlain, Value: t.TypeArgument(1)}
		}
	}
	return BaseMatch{Kind: BaseNone}
}

// HasCompatibleConstructor reports whether sym declares an instance
// constructor taking (string name, value valueType) followed only by
// optional parameters. Several compatible constructors are not an error.
func HasCompatibleConstructor(sym *ir.NamedType, ids *Identities, value *ir.Type) bool {
	str := ids.String.AsType()
	for _, ctor := range sym.Constructors {
		params := ctor.Parameters
		if ctor.IsStatic || len(params) < 2 {
			continue
		}
		if !ir.Identical(params[0].Type, str) || !ir.Identical(params[1].Type, value) {
			continue
		}
		if !trailingOptional(params[2:]) {
			continue
		}
		return true
	}
	return false
}

func trailingOptional(params []*ir.Parameter) bool {
	for _, p := range params {
		if !p.IsOptional {
			return false
		}
	}
	return true
}

// QualifyingMembers returns, in declaration order, the names of sym's
// members that carry the member marker and are either non-const static
// fields or static properties of exactly sym's own type.
func QualifyingMembers(sym *ir.NamedType, ids *Identities) []string {
	self := sym.AsType()
	var names []string
	for _, m := range sym.Members {
		if !hasAttribute(m.Attributes, ids.MemberMarker) {
			continue
		}
		if !m.IsStatic || !ir.Identical(m.Type, self) {
			continue
		}
		switch {
		case m.Kind == ir.MemberField && !m.IsConst:
			names = append(names, m.Name)
		case m.Kind == ir.MemberProperty:
			names = append(names, m.Name)
		}
	}
	return names
}
