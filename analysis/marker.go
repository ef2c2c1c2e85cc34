package analysis

import (
	"context"

	"github.com/broady/smartgen/ir"
)

// HasMarker reports whether one of decl's attribute usages binds to the
// attribute class whose fully qualified name is marker. Usages that do not
// bind are skipped. The scan stops and reports false once ctx is done.
//
// It panics if decl is nil.
func HasMarker(ctx context.Context, model *ir.SemanticModel, decl *ir.DeclarationSyntax, marker string) bool {
	if decl == nil {
		panic("analysis: HasMarker called with nil declaration")
	}
	for _, attr := range decl.Attributes() {
		if ctx.Err() != nil {
			return false
		}
		class := model.AttributeClass(decl, attr)
		if class == nil {
			continue
		}
		if class.DisplayName() == marker {
			return true
		}
	}
	return false
}

// hasAttribute reports whether attrs contains a usage bound to class.
func hasAttribute(attrs []*ir.AttributeData, class *ir.NamedType) bool {
	if class == nil {
		return false
	}
	for _, a := range attrs {
		if a.Class == class {
			return true
		}
	}
	return false
}
