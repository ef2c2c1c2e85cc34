package csharp

import "strings"

// The syntax model covers only what generated fragments contain. Names are
// stored ready to print: escaping happens when the tree is built.

// CompilationUnit is one generated file.
type CompilationUnit struct {
	// Header lines are printed first, verbatim.
	Header []string

	Usings []string
	Member Declaration
}

// Declaration is a namespace, type or type member.
type Declaration interface {
	print(p *printer)
}

// NamespaceDeclaration is a block-scoped namespace.
type NamespaceDeclaration struct {
	Name    string
	Members []Declaration
}

// TypeDeclaration is a class, struct or record declaration.
type TypeDeclaration struct {
	Modifiers []string

	// Keyword is "class", "struct", "record" or "record struct".
	Keyword string

	Name           string
	TypeParameters []string
	BaseList       []string
	Members        []Declaration
}

// FieldDeclaration declares a field without initializer.
type FieldDeclaration struct {
	Modifiers []string
	Type      string
	Name      string
}

// Parameter is a constructor parameter.
type Parameter struct {
	Type string
	Name string
}

// ConstructorDeclaration is an instance or static constructor.
type ConstructorDeclaration struct {
	Modifiers  []string
	Name       string
	Parameters []Parameter

	// BaseArguments, when non-nil, adds a ": base(...)" initializer.
	BaseArguments []string

	Body []Statement
}

// MethodDeclaration is an expression-bodied method without parameters.
type MethodDeclaration struct {
	Modifiers  []string
	ReturnType string
	Name       string
	Expression string
}

// Statement is a statement inside a block.
type Statement interface {
	print(p *printer)
}

// AssignmentStatement is "Target = Value;".
type AssignmentStatement struct {
	Target string
	Value  string
}

// Generic returns "name<args>".
func Generic(name string, args ...string) string {
	return name + "<" + strings.Join(args, ", ") + ">"
}

// NameOf returns a nameof expression for identifier.
func NameOf(identifier string) string {
	return "nameof(" + identifier + ")"
}

// New returns an object creation expression.
func New(typ string, args ...string) string {
	return "new " + typ + "(" + strings.Join(args, ", ") + ")"
}

// ImplicitArray returns an implicitly typed array creation expression.
func ImplicitArray(elements ...string) string {
	if len(elements) == 0 {
		return "new[] { }"
	}
	return "new[] { " + strings.Join(elements, ", ") + " }"
}
