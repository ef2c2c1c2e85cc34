package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/broady/smartgen/ir"
)

// ErrMissingIdentity is returned by [ResolveIdentities] when a well-known
// type is not part of the compilation. The pass then generates nothing.
var ErrMissingIdentity = errors.New("well-known type not found")

// Names are the metadata names of the well-known types the generator
// targets.
type Names struct {
	// TypeMarker marks a class as a smart enum.
	TypeMarker string

	// MemberMarker marks a static field or property as an instance.
	MemberMarker string

	// EnumBase is the plain enumeration base, e.g. "Ardalis.SmartEnum.SmartEnum`2".
	EnumBase string

	// FlagEnumBase is the flag-style enumeration base.
	FlagEnumBase string
}

// DefaultNames returns the names used by the Ardalis.SmartEnum library.
func DefaultNames() Names {
	return Names{
		TypeMarker:   "Ardalis.SmartEnum.SmartEnumAttribute",
		MemberMarker: "Ardalis.SmartEnum.EnumMemberAttribute",
		EnumBase:     "Ardalis.SmartEnum.SmartEnum`2",
		FlagEnumBase: "Ardalis.SmartEnum.SmartFlagEnum`2",
	}
}

// Identities is the set of well-known types of one compilation. It is
// resolved once per pass, before any declaration is examined, and is only
// read afterwards.
type Identities struct {
	Names Names

	Object *ir.NamedType
	String *ir.NamedType
	Int32  *ir.NamedType

	TypeMarker   *ir.NamedType
	MemberMarker *ir.NamedType
	EnumBase     *ir.NamedType
	FlagEnumBase *ir.NamedType
}

// ResolveIdentities looks up every well-known type in comp. The returned
// error wraps [ErrMissingIdentity] and names each type that is missing.
func ResolveIdentities(comp *ir.Compilation, names Names) (*Identities, error) {
	ids := &Identities{
		Names:        names,
		Object:       comp.SpecialType(ir.SpecialObject),
		String:       comp.SpecialType(ir.SpecialString),
		Int32:        comp.SpecialType(ir.SpecialInt32),
		TypeMarker:   comp.TypeByMetadataName(names.TypeMarker),
		MemberMarker: comp.TypeByMetadataName(names.MemberMarker),
		EnumBase:     comp.TypeByMetadataName(names.EnumBase),
		FlagEnumBase: comp.TypeByMetadataName(names.FlagEnumBase),
	}

	var missing []string
	check := func(t *ir.NamedType, name string) {
		if t == nil {
			missing = append(missing, name)
		}
	}
	check(ids.Object, ir.SpecialObject.MetadataName())
	check(ids.String, ir.SpecialString.MetadataName())
	check(ids.Int32, ir.SpecialInt32.MetadataName())
	check(ids.TypeMarker, names.TypeMarker)
	check(ids.MemberMarker, names.MemberMarker)
	check(ids.EnumBase, names.EnumBase)
	check(ids.FlagEnumBase, names.FlagEnumBase)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingIdentity, strings.Join(missing, ", "))
	}
	return ids, nil
}

// Key returns a plain projection of the identities, stable across passes
// for an unchanged set of referenced types.
func (ids *Identities) Key() []string {
	key := []string{
		ids.Names.TypeMarker,
		ids.Names.MemberMarker,
		ids.Names.EnumBase,
		ids.Names.FlagEnumBase,
	}
	for _, t := range []*ir.NamedType{ids.Object, ids.String, ids.Int32, ids.TypeMarker, ids.MemberMarker, ids.EnumBase, ids.FlagEnumBase} {
		key = append(key, t.DisplayName())
	}
	return key
}
