package csharp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/smartgen/analysis"
	"github.com/broady/smartgen/ir"
)

func newContext(name string, members ...string) *analysis.GenerationContext {
	return &analysis.GenerationContext{
		Name:        name,
		Declaration: analysis.TypeShell{Name: name, Kind: ir.KindClass, Accessibility: ir.Public},
		Members:     members,
		ValueType:   analysis.ValueType{Special: ir.SpecialInt32, Name: "System.Int32"},
		Base:        analysis.BaseRef{Namespace: "Ardalis.SmartEnum", Name: "SmartEnum"},
	}
}

func emit(t *testing.T, ctx *analysis.GenerationContext) *Fragment {
	t.Helper()
	frag, warn := NewEmitter(DefaultOptions()).Emit(ctx)
	require.Nil(t, warn)
	require.NotNil(t, frag)
	return frag
}

func TestEmit_TopLevelWithoutBase(t *testing.T) {
	frag := emit(t, newContext("TestEnum", "One", "Two", "Three", "Four"))

	want := `// <auto-generated/>
using System.Collections.Generic;
using Ardalis.SmartEnum;

public partial class TestEnum : SmartEnum<TestEnum>
{
    private static readonly IReadOnlyCollection<TestEnum> _allMembers;

    static TestEnum()
    {
        One = new TestEnum(nameof(One), 0);
        Two = new TestEnum(nameof(Two), 1);
        Three = new TestEnum(nameof(Three), 2);
        Four = new TestEnum(nameof(Four), 3);
        _allMembers = new[] { One, Two, Three, Four };
    }

    private TestEnum(string name, int value) : base(name, value)
    {
    }

    public static IReadOnlyCollection<TestEnum> GetAllMembers() => _allMembers;
}
`
	assert.Equal(t, "TestEnum.SmartEnum.g.cs", frag.HintName)
	if diff := cmp.Diff(want, string(frag.Source)); diff != "" {
		t.Errorf("Emit() mismatch (-want +got):\n%s", diff)
	}
}

func TestEmit_NestedInNamespace(t *testing.T) {
	ctx := newContext("TestEnum", "One", "Two", "Three")
	ctx.Namespace = "Some.Name.Space"
	ctx.Declaration.IsSealed = true
	ctx.InheritsFromBase = true
	ctx.HasCompatibleConstructor = true
	ctx.EnclosingTypes = []analysis.TypeShell{
		{Name: "B", Kind: ir.KindStruct, Accessibility: ir.ProtectedOrInternal, IsReadOnly: true, TypeParameters: []string{"T"}},
		{Name: "A", Kind: ir.KindClass, Accessibility: ir.Internal, IsStatic: true, IsSealed: true},
	}
	frag := emit(t, ctx)

	want := `// <auto-generated/>
using System.Collections.Generic;

namespace Some.Name.Space
{
    internal static partial class A
    {
        protected internal readonly partial struct B<T>
        {
            public sealed partial class TestEnum
            {
                private static readonly IReadOnlyCollection<TestEnum> _allMembers;

                static TestEnum()
                {
                    One = new TestEnum(nameof(One), 0);
                    Two = new TestEnum(nameof(Two), 1);
                    Three = new TestEnum(nameof(Three), 2);
                    _allMembers = new[] { One, Two, Three };
                }

                public static IReadOnlyCollection<TestEnum> GetAllMembers() => _allMembers;
            }
        }
    }
}
`
	assert.Equal(t, "Some.Name.Space.A_B_TestEnum.SmartEnum.g.cs", frag.HintName)
	if diff := cmp.Diff(want, string(frag.Source)); diff != "" {
		t.Errorf("Emit() mismatch (-want +got):\n%s", diff)
	}
}

var assignment = regexp.MustCompile(`(\w+) = new \w+\(nameof\((\w+)\), (.+)\);`)

// values extracts member name and value expression of every instance
// assignment in source order.
func values(t *testing.T, src []byte) (names, vals []string) {
	t.Helper()
	for _, m := range assignment.FindAllStringSubmatch(string(src), -1) {
		require.Equal(t, m[1], m[2], "name argument must be the member itself")
		names = append(names, m[1])
		vals = append(vals, m[3])
	}
	return names, vals
}

func TestEmit_Numbering(t *testing.T) {
	members := []string{"A", "B", "C", "D", "F", "G", "H"}

	t.Run("plain is sequential", func(t *testing.T) {
		for n := 1; n <= len(members); n++ {
			_, vals := values(t, emit(t, newContext("E", members[:n]...)).Source)
			require.Len(t, vals, n)
			for i, v := range vals {
				assert.Equal(t, strconv.Itoa(i), v)
			}
		}
	})

	t.Run("flag is zero then single bits", func(t *testing.T) {
		ctx := newContext("E", members[:5]...)
		ctx.InheritsFromBase, ctx.IsFlagStyle = true, true
		_, vals := values(t, emit(t, ctx).Source)
		assert.Equal(t, []string{"0", "1", "2", "4", "8"}, vals)

		seen := map[uint64]bool{}
		for _, v := range vals[1:] {
			n, err := strconv.ParseUint(v, 10, 64)
			require.NoError(t, err)
			assert.Equal(t, uint64(0), n&(n-1), "%d is a single bit", n)
			assert.False(t, seen[n])
			seen[n] = true
		}
	})

	t.Run("text uses member names", func(t *testing.T) {
		ctx := newContext("E", members[:3]...)
		ctx.InheritsFromBase = true
		ctx.ValueType = analysis.ValueType{Special: ir.SpecialString, Name: "System.String"}
		names, vals := values(t, emit(t, ctx).Source)
		for i := range names {
			assert.Equal(t, "nameof("+names[i]+")", vals[i])
		}
	})

	t.Run("text flag still uses member names", func(t *testing.T) {
		ctx := newContext("E", members...)
		ctx.InheritsFromBase, ctx.IsFlagStyle = true, true
		ctx.ValueType = analysis.ValueType{Special: ir.SpecialString, Name: "System.String"}
		_, vals := values(t, emit(t, ctx).Source)
		assert.Equal(t, "nameof(H)", vals[6])
	})
}

func TestEmit_AllMembersInDeclarationOrder(t *testing.T) {
	members := []string{"Zeta", "Alpha", "Mid"}
	src := string(emit(t, newContext("E", members...)).Source)
	assert.Contains(t, src, "_allMembers = new[] { Zeta, Alpha, Mid };")
	names, _ := values(t, []byte(src))
	assert.Equal(t, members, names)
}

func TestEmit_ConstructorTypes(t *testing.T) {
	tests := []struct {
		special ir.SpecialType
		keyword string
	}{
		{ir.SpecialString, "string"},
		{ir.SpecialByte, "byte"},
		{ir.SpecialSByte, "sbyte"},
		{ir.SpecialInt16, "short"},
		{ir.SpecialUInt16, "ushort"},
		{ir.SpecialInt32, "int"},
		{ir.SpecialUInt32, "uint"},
		{ir.SpecialInt64, "long"},
		{ir.SpecialUInt64, "ulong"},
		{ir.SpecialDecimal, "decimal"},
		{ir.SpecialDouble, "double"},
		{ir.SpecialSingle, "float"},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			ctx := newContext("E", "One")
			ctx.InheritsFromBase = true
			ctx.ValueType = analysis.ValueType{Special: tt.special, Name: tt.special.String()}
			src := string(emit(t, ctx).Source)
			assert.Contains(t, src, "private E(string name, "+tt.keyword+" value) : base(name, value)")
		})
	}
}

func TestEmit_Warnings(t *testing.T) {
	flagCtx := func(special ir.SpecialType, n int) *analysis.GenerationContext {
		members := make([]string, n)
		for i := range members {
			members[i] = fmt.Sprintf("M%d", i)
		}
		ctx := newContext("E", members...)
		ctx.InheritsFromBase, ctx.IsFlagStyle = true, true
		ctx.ValueType = analysis.ValueType{Special: special, Name: special.String()}
		return ctx
	}

	tests := []struct {
		name string
		ctx  *analysis.GenerationContext
		code string
	}{
		{"no members", newContext("E"), WarnNoMembers},
		{"guid value type", func() *analysis.GenerationContext {
			ctx := newContext("E", "One")
			ctx.ValueType = analysis.ValueType{Special: ir.SpecialNone, Name: "System.Guid"}
			return ctx
		}(), WarnUnsupportedValueType},
		{"bool value type", func() *analysis.GenerationContext {
			ctx := newContext("E", "One")
			ctx.ValueType = analysis.ValueType{Special: ir.SpecialBoolean, Name: "System.Boolean"}
			return ctx
		}(), WarnUnsupportedValueType},
		{"sbyte flags overflow", flagCtx(ir.SpecialSByte, 9), WarnFlagOverflow},
		{"byte flags overflow", flagCtx(ir.SpecialByte, 10), WarnFlagOverflow},
		{"int flags overflow", flagCtx(ir.SpecialInt32, 33), WarnFlagOverflow},
		{"invalid member name", newContext("E", "One", "not valid"), WarnInvalidIdentifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, warn := NewEmitter(DefaultOptions()).Emit(tt.ctx)
			assert.Nil(t, frag)
			require.NotNil(t, warn)
			assert.Equal(t, tt.code, warn.Code)
			assert.Equal(t, "E", warn.TypeName)
		})
	}

	t.Run("flags at the limit fit", func(t *testing.T) {
		for special, n := range map[ir.SpecialType]int{
			ir.SpecialSByte:  8,
			ir.SpecialByte:   9,
			ir.SpecialInt32:  32,
			ir.SpecialUInt64: 65,
		} {
			frag, warn := NewEmitter(DefaultOptions()).Emit(flagCtx(special, n))
			require.Nil(t, warn, special.String())
			_, vals := values(t, frag.Source)
			assert.Len(t, vals, n)
		}
		frag := emit(t, flagCtx(ir.SpecialUInt64, 65))
		assert.Contains(t, string(frag.Source), "9223372036854775808")
	})
}

func TestEmit_KeywordEscaping(t *testing.T) {
	ctx := newContext("event", "class", "Plain")
	ctx.Namespace = "My.namespace"
	frag := emit(t, ctx)
	src := string(frag.Source)

	assert.Equal(t, "My.namespace.event.SmartEnum.g.cs", frag.HintName)

	assert.Contains(t, src, "namespace My.@namespace")
	assert.Contains(t, src, "public partial class @event : SmartEnum<@event>")
	assert.Contains(t, src, "@class = new @event(nameof(@class), 0);")
	assert.Contains(t, src, "_allMembers = new[] { @class, Plain };")
}

func TestEmit_Options(t *testing.T) {
	opts := Options{
		HintSuffix:       ".g.cs",
		AccessorName:     "List",
		BackingFieldName: "_all",
		Print:            PrintOptions{IndentSize: 2, LineEnding: "crlf"},
	}
	frag, warn := NewEmitter(opts).Emit(newContext("E", "One"))
	require.Nil(t, warn)
	src := string(frag.Source)

	assert.Equal(t, "E.g.cs", frag.HintName)
	assert.False(t, strings.HasPrefix(src, AutoGeneratedHeader))
	assert.Contains(t, src, "\r\n  private static readonly IReadOnlyCollection<E> _all;\r\n")
	assert.Contains(t, src, "public static IReadOnlyCollection<E> List() => _all;")
	assert.NotContains(t, strings.ReplaceAll(src, "\r\n", ""), "\n")
}

func TestEmit_Idempotent(t *testing.T) {
	ctx := newContext("E", "One", "Two")
	ctx.Namespace = "N"
	first := emit(t, ctx)
	second := emit(t, ctx)
	assert.Equal(t, first, second)
}

func TestHintName_CollisionFree(t *testing.T) {
	shell := func(name string) analysis.TypeShell { return analysis.TypeShell{Name: name} }
	contexts := []*analysis.GenerationContext{
		{Name: "Color"},
		{Name: "Color", Namespace: "A"},
		{Name: "Color", Namespace: "B"},
		{Name: "Color", Namespace: "A.B"},
		{Name: "Color", EnclosingTypes: []analysis.TypeShell{shell("A")}},
		{Name: "Color", Namespace: "A", EnclosingTypes: []analysis.TypeShell{shell("B")}},
		{Name: "Color", EnclosingTypes: []analysis.TypeShell{shell("B"), shell("A")}},
		{Name: "Color", EnclosingTypes: []analysis.TypeShell{shell("A"), shell("B")}},
	}
	seen := map[string]int{}
	for i, ctx := range contexts {
		name := HintName(ctx, DefaultHintSuffix)
		if j, dup := seen[name]; dup {
			t.Errorf("contexts %d and %d share hint name %q", j, i, name)
		}
		seen[name] = i
	}
	assert.Equal(t, "A_B_Color.SmartEnum.g.cs", HintName(contexts[6], DefaultHintSuffix))
}

func TestEscapeIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"class", "@class"},
		{"event", "@event"},
		{"string", "@string"},
		{"var", "var"},
		{"record", "record"},
		{"Color", "Color"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapeIdentifier(tt.input); got != tt.want {
				t.Errorf("escapeIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
	assert.Equal(t, "Some.@event.Name", escapeQualified("Some.event.Name"))
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"1abc", false},
		{"my-field", false},
		{"my field", false},
		{"_field", true},
		{"Field123", true},
		{"Größe", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, isIdentifier(tt.input))
		})
	}
}
