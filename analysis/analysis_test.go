package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/smartgen/internal/smartgentest"
	"github.com/broady/smartgen/ir"
)

func TestIsCandidate(t *testing.T) {
	attrs := []*ir.AttributeList{{Attributes: []*ir.AttributeSyntax{{Name: "SmartEnum"}}}}
	partial := []ir.Modifier{ir.ModPublic, ir.ModPartial}

	tests := []struct {
		name string
		decl *ir.DeclarationSyntax
		want bool
	}{
		{"partial class with attribute", &ir.DeclarationSyntax{Kind: ir.ClassDeclaration, Modifiers: partial, AttributeLists: attrs}, true},
		{"partial record", &ir.DeclarationSyntax{Kind: ir.RecordDeclaration, Modifiers: partial, AttributeLists: attrs}, true},
		{"sealed partial class", &ir.DeclarationSyntax{Kind: ir.ClassDeclaration, Modifiers: []ir.Modifier{ir.ModSealed, ir.ModPartial}, AttributeLists: attrs}, true},
		{"not partial", &ir.DeclarationSyntax{Kind: ir.ClassDeclaration, Modifiers: []ir.Modifier{ir.ModPublic}, AttributeLists: attrs}, false},
		{"abstract", &ir.DeclarationSyntax{Kind: ir.ClassDeclaration, Modifiers: []ir.Modifier{ir.ModAbstract, ir.ModPartial}, AttributeLists: attrs}, false},
		{"generic", &ir.DeclarationSyntax{Kind: ir.ClassDeclaration, Modifiers: partial, AttributeLists: attrs, TypeParameters: []string{"T"}}, false},
		{"no attribute lists", &ir.DeclarationSyntax{Kind: ir.ClassDeclaration, Modifiers: partial}, false},
		{"struct", &ir.DeclarationSyntax{Kind: ir.StructDeclaration, Modifiers: partial, AttributeLists: attrs}, false},
		{"record struct", &ir.DeclarationSyntax{Kind: ir.RecordStructDeclaration, Modifiers: partial, AttributeLists: attrs}, false},
		{"interface", &ir.DeclarationSyntax{Kind: ir.InterfaceDeclaration, Modifiers: partial, AttributeLists: attrs}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCandidate(tt.decl))
		})
	}
}

const markerSnapshot = `
compilation: App
references: [smartenum]
files:
  - path: Enums.cs
    usings: [Ardalis.SmartEnum]
    namespace: Shop
    types:
      - {name: Short, modifiers: [partial], attributes: [SmartEnum]}
      - {name: Long, modifiers: [partial], attributes: [SmartEnumAttribute]}
      - {name: Qualified, modifiers: [partial], attributes: [Ardalis.SmartEnum.SmartEnum]}
      - {name: Unbound, modifiers: [partial], attributes: ["Missing, SmartEnum"]}
      - {name: Other, modifiers: [partial], attributes: [EnumMember]}
      - {name: Unknown, modifiers: [partial], attributes: [Missing]}
  - path: NoUsing.cs
    namespace: Shop
    types:
      - {name: NotImported, modifiers: [partial], attributes: [SmartEnum]}
`

func TestHasMarker(t *testing.T) {
	comp := smartgentest.Compile(t, markerSnapshot)
	marker := DefaultNames().TypeMarker

	tests := []struct {
		decl string
		want bool
	}{
		{"Shop.Short", true},
		{"Shop.Long", true},
		{"Shop.Qualified", true},
		{"Shop.Unbound", true},
		{"Shop.Other", false},
		{"Shop.Unknown", false},
		{"Shop.NotImported", false},
	}
	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			decl := smartgentest.Declaration(t, comp, tt.decl)
			model := comp.SemanticModel(decl.Tree)
			assert.Equal(t, tt.want, HasMarker(context.Background(), model, decl, marker))
		})
	}
}

func TestHasMarker_Cancelled(t *testing.T) {
	comp := smartgentest.Compile(t, markerSnapshot)
	decl := smartgentest.Declaration(t, comp, "Shop.Short")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, HasMarker(ctx, comp.SemanticModel(decl.Tree), decl, DefaultNames().TypeMarker))
}

func TestHasMarker_NilDeclarationPanics(t *testing.T) {
	comp := smartgentest.Compile(t, markerSnapshot)
	assert.Panics(t, func() {
		HasMarker(context.Background(), comp.SemanticModel(nil), nil, DefaultNames().TypeMarker)
	})
}

func TestResolveIdentities(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		comp := smartgentest.Compile(t, "compilation: App\nreferences: [smartenum]\n")
		ids, err := ResolveIdentities(comp, DefaultNames())
		require.NoError(t, err)
		assert.Equal(t, "Ardalis.SmartEnum.SmartEnum<TEnum, TValue>", ids.EnumBase.DisplayName())
		assert.Equal(t, "Ardalis.SmartEnum.SmartFlagEnum<TEnum, TValue>", ids.FlagEnumBase.DisplayName())
		assert.Equal(t, ir.SpecialInt32, ids.Int32.Special)
		assert.Len(t, ids.Key(), 11)
	})

	t.Run("library not referenced", func(t *testing.T) {
		comp := smartgentest.Compile(t, "compilation: App\n")
		_, err := ResolveIdentities(comp, DefaultNames())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingIdentity))
		assert.Contains(t, err.Error(), "Ardalis.SmartEnum.SmartEnumAttribute")
		assert.NotContains(t, err.Error(), "System.Int32")
	})

	t.Run("core library types missing", func(t *testing.T) {
		_, err := ResolveIdentities(ir.NewCompilation("empty"), DefaultNames())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "System.Object, System.String, System.Int32")
	})
}

func buildContext(t *testing.T, snapshot, metadataName string) *GenerationContext {
	t.Helper()
	comp := smartgentest.Compile(t, snapshot)
	ids, err := ResolveIdentities(comp, DefaultNames())
	require.NoError(t, err)
	return BuildContext(smartgentest.Type(t, comp, metadataName), ids)
}

func TestBuildContext_Base(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		inherits  bool
		flag      bool
		valueType ir.SpecialType
	}{
		{"no base", "", false, false, ir.SpecialInt32},
		{"plain one argument", "SmartEnum<Color>", true, false, ir.SpecialInt32},
		{"plain with value type", "SmartEnum<Color, string>", true, false, ir.SpecialString},
		{"plain float", "SmartEnum<Color, float>", true, false, ir.SpecialSingle},
		{"flag one argument", "SmartFlagEnum<Color>", true, true, ir.SpecialInt32},
		{"flag with value type", "SmartFlagEnum<Color, long>", true, true, ir.SpecialInt64},
		{"unsupported value type", "SmartEnum<Color, System.Guid>", true, false, ir.SpecialNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var extra []string
			if tt.base != "" {
				extra = append(extra, `        base: "`+tt.base+`"`)
			}
			ctx := buildContext(t, smartgentest.Enum("Color", []string{"Red"}, extra...), "Color")
			assert.Equal(t, tt.inherits, ctx.InheritsFromBase)
			assert.Equal(t, tt.flag, ctx.IsFlagStyle)
			assert.Equal(t, tt.valueType, ctx.ValueType.Special)
			assert.Equal(t, BaseRef{Namespace: "Ardalis.SmartEnum", Name: "SmartEnum"}, ctx.Base)
		})
	}
}

func TestBuildContext_BaseThroughIntermediateClass(t *testing.T) {
	ctx := buildContext(t, `
compilation: App
references: [smartenum]
files:
  - path: Color.cs
    usings: [Ardalis.SmartEnum]
    types:
      - name: Tinted
        modifiers: [public, abstract]
        typeParameters: [TSelf]
        base: "SmartFlagEnum<TSelf, ushort>"
      - name: Color
        modifiers: [public, partial]
        attributes: [SmartEnum]
        base: "Tinted<Color>"
`, "Color")
	assert.True(t, ctx.InheritsFromBase)
	assert.True(t, ctx.IsFlagStyle)
	assert.Equal(t, ir.SpecialUInt16, ctx.ValueType.Special)
	assert.Equal(t, "System.UInt16", ctx.ValueType.Name)
}

func TestBuildContext_Constructors(t *testing.T) {
	param := func(name, typ string) string {
		return "              - {name: " + name + ", type: " + typ + "}"
	}
	tests := []struct {
		name  string
		base  string
		ctors []string
		want  bool
	}{
		{"none", "", nil, false},
		{"exact", "", []string{"          - parameters:", param("name", "string"), param("value", "int")}, true},
		{"optional third", "", []string{"          - parameters:", param("name", "string"), param("value", "int"), "              - {name: extra, type: bool, default: \"false\"}"}, true},
		{"required third", "", []string{"          - parameters:", param("name", "string"), param("value", "int"), param("extra", "bool")}, false},
		{"wrong value type", "", []string{"          - parameters:", param("name", "string"), param("value", "long")}, false},
		{"matches declared value type", "SmartEnum<Color, long>", []string{"          - parameters:", param("name", "string"), param("value", "long")}, true},
		{"swapped", "", []string{"          - parameters:", param("value", "int"), param("name", "string")}, false},
		{"single parameter", "", []string{"          - parameters:", param("name", "string")}, false},
		{"static", "", []string{"          - modifiers: [static]", "            parameters:", param("name", "string"), param("value", "int")}, false},
		{"two compatible", "", []string{
			"          - parameters:", param("name", "string"), param("value", "int"),
			"          - parameters:", param("name", "string"), param("value", "int"), "              - {name: extra, type: int, optional: true}",
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var extra []string
			if tt.base != "" {
				extra = append(extra, `        base: "`+tt.base+`"`)
			}
			if len(tt.ctors) > 0 {
				extra = append(extra, "        constructors:")
				extra = append(extra, tt.ctors...)
			}
			ctx := buildContext(t, smartgentest.Enum("Color", []string{"Red"}, extra...), "Color")
			assert.Equal(t, tt.want, ctx.HasCompatibleConstructor)
		})
	}
}

func TestBuildContext_Members(t *testing.T) {
	ctx := buildContext(t, `
compilation: App
references: [smartenum]
files:
  - path: Color.cs
    usings: [Ardalis.SmartEnum]
    types:
      - name: Other
        modifiers: [public]
      - name: Color
        modifiers: [public, partial]
        attributes: [SmartEnum]
        members:
          - {name: Red, type: Color, modifiers: [public, static, readonly], attributes: [EnumMember]}
          - {name: Green, type: Color, kind: property, modifiers: [public, static], attributes: [EnumMember]}
          - {name: Unmarked, type: Color, modifiers: [public, static]}
          - {name: Instance, type: Color, modifiers: [public], attributes: [EnumMember]}
          - {name: Const, type: Color, modifiers: [public, const], attributes: [EnumMember]}
          - {name: Foreign, type: Other, modifiers: [public, static], attributes: [EnumMember]}
          - {name: Broken, type: Missing, modifiers: [public, static], attributes: [EnumMember]}
          - {name: Method, type: Color, kind: method, modifiers: [public, static], attributes: [EnumMember]}
          - {name: Blue, type: Color, modifiers: [public, static], attributes: ["Ardalis.SmartEnum.EnumMemberAttribute"]}
`, "Color")
	assert.Equal(t, []string{"Red", "Green", "Blue"}, ctx.Members)
}

func TestBuildContext_EnclosingTypes(t *testing.T) {
	ctx := buildContext(t, `
compilation: App
references: [smartenum]
files:
  - path: Nested.cs
    usings: [Ardalis.SmartEnum]
    namespace: Some.Name.Space
    types:
      - name: A
        modifiers: [public, static, partial]
        types:
          - name: B
            kind: struct
            modifiers: [internal, readonly, partial]
            typeParameters: [T]
            types:
              - name: TestEnum
                modifiers: [public, sealed, partial]
                attributes: [SmartEnum]
                members:
                  - {name: One, type: TestEnum, modifiers: [public, static, readonly], attributes: [EnumMember]}
`, "Some.Name.Space.A+B`1+TestEnum")

	want := &GenerationContext{
		Name:      "TestEnum",
		Namespace: "Some.Name.Space",
		Declaration: TypeShell{
			Name:          "TestEnum",
			Kind:          ir.KindClass,
			Accessibility: ir.Public,
			IsSealed:      true,
		},
		EnclosingTypes: []TypeShell{
			{Name: "B", Kind: ir.KindStruct, Accessibility: ir.Internal, IsReadOnly: true, TypeParameters: []string{"T"}},
			{Name: "A", Kind: ir.KindClass, Accessibility: ir.Public, IsStatic: true, IsSealed: true},
		},
		Members:   []string{"One"},
		ValueType: ValueType{Special: ir.SpecialInt32, Name: "System.Int32"},
		Base:      BaseRef{Namespace: "Ardalis.SmartEnum", Name: "SmartEnum"},
	}
	if diff := cmp.Diff(want, ctx); diff != "" {
		t.Errorf("BuildContext() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Some.Name.Space.A.B.TestEnum", ctx.QualifiedName())
}

func TestInheritedTypes(t *testing.T) {
	comp := smartgentest.Compile(t, smartgentest.Enum("Color", nil, `        base: "SmartEnum<Color>"`))
	ids, err := ResolveIdentities(comp, DefaultNames())
	require.NoError(t, err)

	var got []string
	for _, typ := range InheritedTypes(smartgentest.Type(t, comp, "Color"), ids.Object) {
		got = append(got, typ.String())
	}
	want := []string{
		"Ardalis.SmartEnum.ISmartEnum",
		"System.IEquatable<Ardalis.SmartEnum.SmartEnum<Color, System.Int32>>",
		"System.IComparable<Ardalis.SmartEnum.SmartEnum<Color, System.Int32>>",
		"Ardalis.SmartEnum.SmartEnum<Color>",
		"Ardalis.SmartEnum.SmartEnum<Color, System.Int32>",
	}
	assert.Equal(t, want, got)
}
