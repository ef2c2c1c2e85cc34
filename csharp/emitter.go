// Package csharp synthesizes the C# source of smart enum fragments.
package csharp

import (
	"fmt"

	"github.com/broady/smartgen/analysis"
	"github.com/broady/smartgen/ir"
)

// Warning codes reported for declarations that produce no fragment.
const (
	WarnNoMembers            = "no_members"
	WarnUnsupportedValueType = "unsupported_value_type"
	WarnFlagOverflow         = "flag_overflow"
	WarnInvalidIdentifier    = "invalid_identifier"
)

// AutoGeneratedHeader marks a file as generated for host analyzers.
const AutoGeneratedHeader = "// <auto-generated/>"

// Options configure the emitter.
type Options struct {
	// HintSuffix is appended to every hint name.
	HintSuffix string

	// EmitHeader prints AutoGeneratedHeader as the first line.
	EmitHeader bool

	// AccessorName is the generated "all instances" method.
	AccessorName string

	// BackingFieldName is the private field holding all instances.
	BackingFieldName string

	Print PrintOptions
}

// DefaultOptions returns the options matching the Ardalis.SmartEnum
// generator.
func DefaultOptions() Options {
	return Options{
		HintSuffix:       DefaultHintSuffix,
		EmitHeader:       true,
		AccessorName:     "GetAllMembers",
		BackingFieldName: "_allMembers",
		Print:            PrintOptions{IndentSize: 4, LineEnding: "lf"},
	}
}

// Fragment is one generated source file.
type Fragment struct {
	HintName string
	Source   []byte
}

// Emitter turns generation contexts into fragments.
type Emitter struct {
	opts Options
}

// NewEmitter returns an emitter; zero option fields take their defaults.
func NewEmitter(opts Options) *Emitter {
	def := DefaultOptions()
	if opts.HintSuffix == "" {
		opts.HintSuffix = def.HintSuffix
	}
	if opts.AccessorName == "" {
		opts.AccessorName = def.AccessorName
	}
	if opts.BackingFieldName == "" {
		opts.BackingFieldName = def.BackingFieldName
	}
	return &Emitter{opts: opts}
}

// Emit synthesizes the fragment for ctx. When the declaration cannot be
// generated it returns a nil fragment and a warning saying why.
func (e *Emitter) Emit(ctx *analysis.GenerationContext) (*Fragment, *ir.Warning) {
	typeName := ctx.QualifiedName()
	if len(ctx.Members) == 0 {
		return nil, &ir.Warning{
			Code:     WarnNoMembers,
			Message:  "no static field or property of the enum's own type is marked as a member",
			TypeName: typeName,
		}
	}
	special := ctx.ValueType.Special
	if !SupportsValueType(special) {
		return nil, &ir.Warning{
			Code:     WarnUnsupportedValueType,
			Message:  fmt.Sprintf("value type %s has no literal form", ctx.ValueType.Name),
			TypeName: typeName,
		}
	}
	if ctx.IsFlagStyle && special != ir.SpecialString && !FlagsFit(special, len(ctx.Members)) {
		return nil, &ir.Warning{
			Code:     WarnFlagOverflow,
			Message:  fmt.Sprintf("%d flag members do not fit in %s", len(ctx.Members), special.Keyword()),
			TypeName: typeName,
		}
	}
	for _, name := range append([]string{ctx.Name}, ctx.Members...) {
		if !isIdentifier(name) {
			return nil, &ir.Warning{
				Code:     WarnInvalidIdentifier,
				Message:  fmt.Sprintf("%q is not a valid identifier", name),
				TypeName: typeName,
			}
		}
	}

	unit := &CompilationUnit{Usings: []string{"System.Collections.Generic"}}
	if e.opts.EmitHeader {
		unit.Header = []string{AutoGeneratedHeader}
	}

	var decl Declaration = e.enumDeclaration(ctx, unit)
	// Innermost first, so the outermost enclosing type ends up outside.
	for _, outer := range ctx.EnclosingTypes {
		shell := shellDeclaration(outer)
		shell.Members = []Declaration{decl}
		decl = shell
	}
	if ctx.Namespace != "" {
		decl = &NamespaceDeclaration{Name: escapeQualified(ctx.Namespace), Members: []Declaration{decl}}
	}
	unit.Member = decl

	return &Fragment{
		HintName: HintName(ctx, e.opts.HintSuffix),
		Source:   Print(unit, e.opts.Print),
	}, nil
}

func (e *Emitter) enumDeclaration(ctx *analysis.GenerationContext, unit *CompilationUnit) *TypeDeclaration {
	self := escapeIdentifier(ctx.Name)
	collection := Generic("IReadOnlyCollection", self)
	backing := escapeIdentifier(e.opts.BackingFieldName)

	decl := shellDeclaration(ctx.Declaration)
	if !ctx.InheritsFromBase {
		if ctx.Base.Namespace != "" {
			unit.Usings = append(unit.Usings, ctx.Base.Namespace)
		}
		decl.BaseList = []string{Generic(ctx.Base.Name, self)}
	}

	text := ctx.ValueType.Special == ir.SpecialString
	static := &ConstructorDeclaration{Modifiers: []string{"static"}, Name: self}
	members := make([]string, len(ctx.Members))
	for i, m := range ctx.Members {
		member := escapeIdentifier(m)
		members[i] = member
		static.Body = append(static.Body, &AssignmentStatement{
			Target: member,
			Value:  New(self, NameOf(member), Value(member, i, text, ctx.IsFlagStyle)),
		})
	}
	static.Body = append(static.Body, &AssignmentStatement{Target: backing, Value: ImplicitArray(members...)})

	decl.Members = []Declaration{
		&FieldDeclaration{Modifiers: []string{"private", "static", "readonly"}, Type: collection, Name: backing},
		static,
	}
	if !ctx.HasCompatibleConstructor {
		decl.Members = append(decl.Members, &ConstructorDeclaration{
			Modifiers: []string{"private"},
			Name:      self,
			Parameters: []Parameter{
				{Type: "string", Name: "name"},
				{Type: ctx.ValueType.Special.Keyword(), Name: "value"},
			},
			BaseArguments: []string{"name", "value"},
		})
	}
	decl.Members = append(decl.Members, &MethodDeclaration{
		Modifiers:  []string{"public", "static"},
		ReturnType: collection,
		Name:       escapeIdentifier(e.opts.AccessorName),
		Expression: backing,
	})
	return decl
}

// shellDeclaration re-declares a type with its modifiers and no members.
func shellDeclaration(s analysis.TypeShell) *TypeDeclaration {
	decl := &TypeDeclaration{
		Modifiers:      accessibilityModifiers(s.Accessibility),
		Keyword:        typeKeyword(s),
		Name:           escapeIdentifier(s.Name),
		TypeParameters: s.TypeParameters,
	}
	switch {
	case s.Kind == ir.KindClass && s.IsStatic:
		decl.Modifiers = append(decl.Modifiers, "static")
	case s.Kind == ir.KindClass && s.IsSealed:
		decl.Modifiers = append(decl.Modifiers, "sealed")
	case s.Kind == ir.KindStruct && s.IsReadOnly:
		decl.Modifiers = append(decl.Modifiers, "readonly")
	}
	decl.Modifiers = append(decl.Modifiers, "partial")
	return decl
}

func typeKeyword(s analysis.TypeShell) string {
	switch {
	case s.IsRecord && s.Kind == ir.KindStruct:
		return "record struct"
	case s.IsRecord:
		return "record"
	case s.Kind == ir.KindStruct:
		return "struct"
	case s.Kind == ir.KindInterface:
		return "interface"
	default:
		return "class"
	}
}

func accessibilityModifiers(a ir.Accessibility) []string {
	switch a {
	case ir.Private:
		return []string{"private"}
	case ir.Protected:
		return []string{"protected"}
	case ir.Internal:
		return []string{"internal"}
	case ir.Public:
		return []string{"public"}
	case ir.ProtectedAndInternal:
		return []string{"private", "protected"}
	case ir.ProtectedOrInternal:
		return []string{"protected", "internal"}
	default:
		return nil
	}
}
