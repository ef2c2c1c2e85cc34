// Package provider builds the compilation model from snapshot documents.
//
// A snapshot is a declarative description of a compilation: its source
// files with their using directives, namespaces and (nested) type
// declarations, plus the names of referenced library assemblies. The
// provider binds every written type name the way the host compiler would and
// hands the generator a fully resolved [ir.Compilation].
//
// Example document:
//
//	compilation: Shop
//	references: [smartenum]
//	files:
//	  - path: Colors.cs
//	    usings: [Ardalis.SmartEnum]
//	    namespace: Shop.Catalog
//	    types:
//	      - name: Color
//	        modifiers: [public, partial]
//	        attributes: [SmartEnum]
//	        members:
//	          - {name: Red, type: Color, modifiers: [public, static, readonly], attributes: [EnumMember]}
package provider

// Document is one snapshot file.
type Document struct {
	// Compilation is the assembly name.
	Compilation string `yaml:"compilation" json:"compilation" validate:"required"`

	// References names embedded reference assemblies to load ("smartenum").
	// The core library is always loaded.
	References []string `yaml:"references" json:"references" validate:"dive,required"`

	// Files are the source files of the compilation.
	Files []File `yaml:"files" json:"files" validate:"dive"`

	// Metadata marks the document as a reference assembly: its types are
	// visible to binding but have no syntax trees.
	Metadata bool `yaml:"metadata" json:"metadata"`
}

// File is one source file.
type File struct {
	Path      string     `yaml:"path" json:"path" validate:"required"`
	Usings    []string   `yaml:"usings" json:"usings" validate:"dive,required"`
	Namespace string     `yaml:"namespace" json:"namespace"`
	Types     []TypeDecl `yaml:"types" json:"types" validate:"dive"`
}

// TypeDecl is a type declaration.
type TypeDecl struct {
	Name string `yaml:"name" json:"name" validate:"required"`

	// Kind is one of class (default), struct, interface, record, record-struct, enum.
	Kind string `yaml:"kind" json:"kind" validate:"omitempty,oneof=class struct interface record record-struct enum"`

	Modifiers      []string `yaml:"modifiers" json:"modifiers" validate:"dive,oneof=public private protected internal static abstract sealed partial readonly"`
	TypeParameters []string `yaml:"typeParameters" json:"typeParameters" validate:"dive,required"`

	// Attributes are attribute lists; a list may hold several
	// comma-separated usages ("Serializable, SmartEnum").
	Attributes []string `yaml:"attributes" json:"attributes" validate:"dive,required"`

	// Base is the base class reference, if written.
	Base string `yaml:"base" json:"base"`

	Interfaces   []string     `yaml:"interfaces" json:"interfaces" validate:"dive,required"`
	Members      []MemberDecl `yaml:"members" json:"members" validate:"dive"`
	Constructors []CtorDecl   `yaml:"constructors" json:"constructors" validate:"dive"`
	Types        []TypeDecl   `yaml:"types" json:"types" validate:"dive"`
}

// MemberDecl is a field, property or method declaration.
type MemberDecl struct {
	Name string `yaml:"name" json:"name" validate:"required"`

	// Kind is one of field (default), property, method, event.
	Kind string `yaml:"kind" json:"kind" validate:"omitempty,oneof=field property method event"`

	Type       string   `yaml:"type" json:"type" validate:"required"`
	Modifiers  []string `yaml:"modifiers" json:"modifiers" validate:"dive,oneof=public private protected internal static readonly const"`
	Attributes []string `yaml:"attributes" json:"attributes" validate:"dive,required"`
}

// CtorDecl is a constructor declaration.
type CtorDecl struct {
	Modifiers  []string    `yaml:"modifiers" json:"modifiers" validate:"dive,oneof=public private protected internal static"`
	Parameters []ParamDecl `yaml:"parameters" json:"parameters" validate:"dive"`
}

// ParamDecl is a constructor parameter. A parameter with a default value is
// optional.
type ParamDecl struct {
	Name     string `yaml:"name" json:"name" validate:"required"`
	Type     string `yaml:"type" json:"type" validate:"required"`
	Default  string `yaml:"default" json:"default"`
	Optional bool   `yaml:"optional" json:"optional"`
}
