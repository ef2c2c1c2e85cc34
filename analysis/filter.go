// Package analysis decides which type declarations become smart enums and
// derives the generation context for each of them.
//
// The work happens in three steps of increasing cost:
//
//  1. [IsCandidate] looks only at syntax.
//  2. [HasMarker] binds the attribute usages of a candidate.
//  3. [BuildContext] inspects the declared symbol's inheritance chain,
//     constructors and members against the pass's [Identities].
//
// Nothing here retains a symbol past the call that received it: the
// [GenerationContext] is plain data.
package analysis

import "github.com/broady/smartgen/ir"

// IsCandidate reports whether decl can possibly be a smart enum: a partial,
// non-abstract, non-generic class (or record class) with at least one
// attribute list. It performs no semantic lookups.
func IsCandidate(decl *ir.DeclarationSyntax) bool {
	if decl == nil {
		return false
	}
	if decl.Kind != ir.ClassDeclaration && decl.Kind != ir.RecordDeclaration {
		return false
	}
	return len(decl.AttributeLists) > 0 &&
		decl.HasModifier(ir.ModPartial) &&
		!decl.HasModifier(ir.ModAbstract) &&
		len(decl.TypeParameters) == 0
}
