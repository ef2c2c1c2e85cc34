// Package ir defines the read-only compilation model the generator consumes:
// named type symbols, constructed type references, members, constructors,
// attribute data, and the declaration syntax nodes they were declared by.
//
// The model is produced by a front-end (see package provider) and is never
// mutated by the generator. Symbols are borrowed views valid for one
// generation pass; nothing in this package is retained across passes.
package ir

// SpecialType identifies the built-in types of the core library.
type SpecialType int

const (
	SpecialNone SpecialType = iota
	SpecialObject
	SpecialBoolean
	SpecialChar
	SpecialSByte
	SpecialByte
	SpecialInt16
	SpecialUInt16
	SpecialInt32
	SpecialUInt32
	SpecialInt64
	SpecialUInt64
	SpecialDecimal
	SpecialSingle
	SpecialDouble
	SpecialString
)

var specialTypeInfo = [...]struct {
	metadataName string
	keyword      string
}{
	SpecialNone:    {"", ""},
	SpecialObject:  {"System.Object", "object"},
	SpecialBoolean: {"System.Boolean", "bool"},
	SpecialChar:    {"System.Char", "char"},
	SpecialSByte:   {"System.SByte", "sbyte"},
	SpecialByte:    {"System.Byte", "byte"},
	SpecialInt16:   {"System.Int16", "short"},
	SpecialUInt16:  {"System.UInt16", "ushort"},
	SpecialInt32:   {"System.Int32", "int"},
	SpecialUInt32:  {"System.UInt32", "uint"},
	SpecialInt64:   {"System.Int64", "long"},
	SpecialUInt64:  {"System.UInt64", "ulong"},
	SpecialDecimal: {"System.Decimal", "decimal"},
	SpecialSingle:  {"System.Single", "float"},
	SpecialDouble:  {"System.Double", "double"},
	SpecialString:  {"System.String", "string"},
}

// String returns the fully qualified metadata name of the special type.
func (s SpecialType) String() string {
	if s < 0 || int(s) >= len(specialTypeInfo) || s == SpecialNone {
		return "None"
	}
	return specialTypeInfo[s].metadataName
}

// MetadataName returns the name the type is registered under in a
// compilation, e.g. "System.Int32". It is empty for SpecialNone.
func (s SpecialType) MetadataName() string {
	if s <= SpecialNone || int(s) >= len(specialTypeInfo) {
		return ""
	}
	return specialTypeInfo[s].metadataName
}

// Keyword returns the language keyword aliasing the type ("int", "string").
func (s SpecialType) Keyword() string {
	if s <= SpecialNone || int(s) >= len(specialTypeInfo) {
		return ""
	}
	return specialTypeInfo[s].keyword
}

// SpecialTypeByKeyword maps a keyword alias to its special type.
func SpecialTypeByKeyword(keyword string) (SpecialType, bool) {
	for i, info := range specialTypeInfo {
		if i != int(SpecialNone) && info.keyword == keyword {
			return SpecialType(i), true
		}
	}
	return SpecialNone, false
}

// SpecialTypeByMetadataName maps "System.Int32" style names to special types.
func SpecialTypeByMetadataName(name string) (SpecialType, bool) {
	for i, info := range specialTypeInfo {
		if i != int(SpecialNone) && info.metadataName == name {
			return SpecialType(i), true
		}
	}
	return SpecialNone, false
}

// TypeKind identifies the category of a named type.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindStruct
	KindInterface
	KindEnum
)

// String returns the string representation of the type kind.
func (k TypeKind) String() string {
	switch k {
	case KindClass:
		return "Class"
	case KindStruct:
		return "Struct"
	case KindInterface:
		return "Interface"
	case KindEnum:
		return "Enum"
	default:
		return "Unknown"
	}
}

// Accessibility is the declared accessibility of a type or member.
type Accessibility int

const (
	NotApplicable Accessibility = iota
	Private
	ProtectedAndInternal // private protected
	Protected
	Internal
	ProtectedOrInternal // protected internal
	Public
)

// String returns the string representation of the accessibility.
func (a Accessibility) String() string {
	switch a {
	case Private:
		return "Private"
	case ProtectedAndInternal:
		return "ProtectedAndInternal"
	case Protected:
		return "Protected"
	case Internal:
		return "Internal"
	case ProtectedOrInternal:
		return "ProtectedOrInternal"
	case Public:
		return "Public"
	default:
		return "NotApplicable"
	}
}

// Warning represents a non-fatal issue encountered during generation.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// TypeName is the type that triggered the warning, if applicable.
	TypeName string
}
