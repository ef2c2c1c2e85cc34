package csharp

import (
	"strings"

	"github.com/broady/smartgen/analysis"
)

// DefaultHintSuffix identifies smart enum fragments.
const DefaultHintSuffix = ".SmartEnum.g.cs"

// HintName returns the unique output name of the fragment generated for
// ctx: the namespace and a dot, each enclosing type outermost first followed
// by an underscore, the type name and suffix.
//
//	Some.Name.Space.A_B_TestEnum.SmartEnum.g.cs
func HintName(ctx *analysis.GenerationContext, suffix string) string {
	var b strings.Builder
	if ctx.Namespace != "" {
		b.WriteString(ctx.Namespace)
		b.WriteByte('.')
	}
	for i := len(ctx.EnclosingTypes) - 1; i >= 0; i-- {
		b.WriteString(ctx.EnclosingTypes[i].Name)
		b.WriteByte('_')
	}
	b.WriteString(ctx.Name)
	b.WriteString(suffix)
	return b.String()
}
