package provider

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/broady/smartgen/ir"
)

// Build assembles documents into a compilation. The core library and every
// reference assembly named by a source document are loaded first; metadata
// documents passed explicitly are loaded as references too.
func Build(docs ...*Document) (*ir.Compilation, error) {
	name := ""
	refs := map[string]bool{CoreLibrary: true}
	var sources, metadata []*Document
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if doc.Metadata {
			metadata = append(metadata, doc)
			continue
		}
		if name != "" && doc.Compilation != name {
			return nil, fmt.Errorf("snapshots disagree on compilation name: %q and %q", name, doc.Compilation)
		}
		name = doc.Compilation
		sources = append(sources, doc)
		for _, r := range doc.References {
			refs[r] = true
		}
	}

	refNames := make([]string, 0, len(refs))
	for r := range refs {
		refNames = append(refNames, r)
	}
	sort.Strings(refNames)
	var loaded []*Document
	for _, r := range refNames {
		doc, err := Reference(r)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, doc)
	}
	loaded = append(loaded, metadata...)

	b := &builder{
		comp: ir.NewCompilation(name),
		ids:  make(map[string]int),
	}
	for _, doc := range append(loaded, sources...) {
		for i := range doc.Files {
			if err := b.declareFile(doc, &doc.Files[i]); err != nil {
				return nil, err
			}
		}
	}
	// Base types first: attribute binding walks base chains.
	for _, p := range b.pending {
		if err := b.bindBases(p); err != nil {
			return nil, err
		}
	}
	if err := checkInheritanceCycles(b.pending); err != nil {
		return nil, err
	}
	for _, p := range b.pending {
		if err := b.bindMembers(p); err != nil {
			return nil, err
		}
	}
	return b.comp, nil
}

type builder struct {
	comp    *ir.Compilation
	pending []*pendingDecl
	ids     map[string]int
}

// pendingDecl is one declaration (one partial part) waiting for its type
// references to be bound once every type is known.
type pendingDecl struct {
	sym  *ir.NamedType
	decl *TypeDecl
	file *File
}

func (b *builder) declareFile(doc *Document, f *File) error {
	var tree *ir.SyntaxTree
	if !doc.Metadata {
		tree = &ir.SyntaxTree{Path: f.Path, Usings: f.Usings}
		b.comp.AddTree(tree)
	}
	for i := range f.Types {
		if err := b.declareType(doc, f, tree, &f.Types[i], nil, nil); err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
	}
	return nil
}

func (b *builder) declareType(doc *Document, f *File, tree *ir.SyntaxTree, td *TypeDecl, outer *ir.NamedType, outerSyntax *ir.DeclarationSyntax) error {
	kind, syntaxKind, isRecord := typeKind(td.Kind)
	sym := &ir.NamedType{
		Name:           td.Name,
		Namespace:      f.Namespace,
		ContainingType: outer,
		Kind:           kind,
		IsRecord:       isRecord,
		TypeParameters: td.TypeParameters,
	}
	applyTypeModifiers(sym, td.Modifiers)

	partial := hasString(td.Modifiers, string(ir.ModPartial))
	if existing := b.comp.TypeByMetadataName(sym.FullMetadataName()); existing != nil {
		if doc.Metadata || !partial || len(existing.Declarations) == 0 || !existing.Declarations[0].HasModifier(ir.ModPartial) {
			return fmt.Errorf("duplicate type %s", sym.DisplayName())
		}
		mergeModifiers(existing, sym, hasAccessModifier(td.Modifiers))
		sym = existing
	} else if err := b.comp.AddType(sym); err != nil {
		return err
	} else if outer != nil {
		outer.NestedTypes = append(outer.NestedTypes, sym)
	}

	var syntax *ir.DeclarationSyntax
	if tree != nil {
		syntax = &ir.DeclarationSyntax{
			Kind:           syntaxKind,
			Identifier:     td.Name,
			TypeParameters: td.TypeParameters,
			Namespace:      f.Namespace,
			Parent:         outerSyntax,
			Tree:           tree,
			Symbol:         sym,
		}
		for _, m := range td.Modifiers {
			syntax.Modifiers = append(syntax.Modifiers, ir.Modifier(m))
		}
		for _, list := range td.Attributes {
			al := &ir.AttributeList{}
			for _, name := range strings.Split(list, ",") {
				if name = strings.TrimSpace(name); name != "" {
					al.Attributes = append(al.Attributes, &ir.AttributeSyntax{Name: name})
				}
			}
			syntax.AttributeLists = append(syntax.AttributeLists, al)
		}
		syntax.ID = b.nextID(tree.Path + ":" + syntax.QualifiedName())
		tree.Declarations = append(tree.Declarations, syntax)
		sym.Declarations = append(sym.Declarations, syntax)
	}

	b.pending = append(b.pending, &pendingDecl{sym: sym, decl: td, file: f})

	for i := range td.Types {
		if err := b.declareType(doc, f, tree, &td.Types[i], sym, syntax); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) nextID(base string) string {
	n := b.ids[base]
	b.ids[base] = n + 1
	if n == 0 {
		return base
	}
	return base + "#" + strconv.Itoa(n)
}

func (b *builder) bindBases(p *pendingDecl) error {
	sym, td := p.sym, p.decl
	outerScope := ir.Scope{Namespace: p.file.Namespace, Type: sym.ContainingType, Usings: p.file.Usings}
	params := typeParamsInScope(sym)

	if td.Base != "" {
		base, err := b.bindTypeString(outerScope, params, td.Base)
		if err != nil {
			return fmt.Errorf("%s: type %s: base: %w", p.file.Path, sym.DisplayName(), err)
		}
		if base.Def != nil && base.Def.Kind == ir.KindInterface {
			sym.Interfaces = append(sym.Interfaces, base)
		} else {
			sym.BaseType = base
		}
	}
	for _, s := range td.Interfaces {
		iface, err := b.bindTypeString(outerScope, params, s)
		if err != nil {
			return fmt.Errorf("%s: type %s: interface: %w", p.file.Path, sym.DisplayName(), err)
		}
		sym.Interfaces = append(sym.Interfaces, iface)
	}
	if sym.BaseType == nil {
		sym.BaseType = b.implicitBase(sym)
	}
	return nil
}

// checkInheritanceCycles rejects a type that is its own base class or
// interface, directly or through other types. Base chains are walked without
// a visited set everywhere else.
func checkInheritanceCycles(pending []*pendingDecl) error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*ir.NamedType]int)
	var visit func(t *ir.NamedType) *ir.NamedType
	visit = func(t *ir.NamedType) *ir.NamedType {
		switch state[t] {
		case visiting:
			return t
		case done:
			return nil
		}
		state[t] = visiting
		for _, next := range directBases(t) {
			if cyclic := visit(next); cyclic != nil {
				return cyclic
			}
		}
		state[t] = done
		return nil
	}
	for _, p := range pending {
		if cyclic := visit(p.sym); cyclic != nil {
			return fmt.Errorf("%s: circular base dependency involving %s", p.file.Path, cyclic.DisplayName())
		}
	}
	return nil
}

func directBases(t *ir.NamedType) []*ir.NamedType {
	var out []*ir.NamedType
	if t.BaseType != nil && t.BaseType.Def != nil {
		out = append(out, t.BaseType.Def)
	}
	for _, iface := range t.Interfaces {
		if iface.Def != nil {
			out = append(out, iface.Def)
		}
	}
	return out
}

func (b *builder) bindMembers(p *pendingDecl) error {
	sym, td := p.sym, p.decl
	outerScope := ir.Scope{Namespace: p.file.Namespace, Type: sym.ContainingType, Usings: p.file.Usings}
	innerScope := outerScope
	innerScope.Type = sym
	params := typeParamsInScope(sym)

	for _, attr := range td.Attributes {
		for _, name := range strings.Split(attr, ",") {
			if name = strings.TrimSpace(name); name != "" {
				sym.Attributes = append(sym.Attributes, b.bindAttribute(outerScope, name))
			}
		}
	}

	for i := range td.Members {
		md := &td.Members[i]
		typ, err := b.bindTypeString(innerScope, params, md.Type)
		if err != nil {
			return fmt.Errorf("%s: member %s.%s: %w", p.file.Path, sym.Name, md.Name, err)
		}
		m := &ir.Member{
			Name:          md.Name,
			Kind:          memberKind(md.Kind),
			Type:          typ,
			Accessibility: accessibility(md.Modifiers, ir.Private),
			IsConst:       hasString(md.Modifiers, string(ir.ModConst)),
			IsReadOnly:    hasString(md.Modifiers, string(ir.ModReadOnly)),
		}
		m.IsStatic = m.IsConst || hasString(md.Modifiers, string(ir.ModStatic))
		for _, attr := range md.Attributes {
			for _, name := range strings.Split(attr, ",") {
				if name = strings.TrimSpace(name); name != "" {
					m.Attributes = append(m.Attributes, b.bindAttribute(innerScope, name))
				}
			}
		}
		sym.Members = append(sym.Members, m)
	}

	for i := range td.Constructors {
		cd := &td.Constructors[i]
		ctor := &ir.Method{
			Accessibility: accessibility(cd.Modifiers, ir.Private),
			IsStatic:      hasString(cd.Modifiers, string(ir.ModStatic)),
		}
		for _, pd := range cd.Parameters {
			typ, err := b.bindTypeString(innerScope, params, pd.Type)
			if err != nil {
				return fmt.Errorf("%s: constructor of %s: parameter %s: %w", p.file.Path, sym.Name, pd.Name, err)
			}
			ctor.Parameters = append(ctor.Parameters, &ir.Parameter{
				Name:       pd.Name,
				Type:       typ,
				IsOptional: pd.Optional || pd.Default != "",
			})
		}
		sym.Constructors = append(sym.Constructors, ctor)
	}
	return nil
}

func (b *builder) bindAttribute(scope ir.Scope, name string) *ir.AttributeData {
	return &ir.AttributeData{
		Class:  b.comp.BindAttribute(scope, name),
		Syntax: &ir.AttributeSyntax{Name: name},
	}
}

func (b *builder) bindTypeString(scope ir.Scope, params []string, s string) (*ir.Type, error) {
	ref, err := ParseTypeRef(s)
	if err != nil {
		return nil, err
	}
	return b.bindTypeRef(scope, params, ref), nil
}

// bindTypeRef binds a parsed reference. Names that do not bind produce an
// unresolved type rather than an error, as the host compiler would produce
// an error type and keep going.
func (b *builder) bindTypeRef(scope ir.Scope, params []string, ref *TypeRef) *ir.Type {
	name := ref.Name()
	if len(ref.Parts) == 1 && len(ref.Args) == 0 {
		for _, p := range params {
			if p == name {
				return &ir.Type{Param: name}
			}
		}
		if s, ok := ir.SpecialTypeByKeyword(name); ok {
			if def := b.comp.SpecialType(s); def != nil {
				return def.AsType()
			}
			return &ir.Type{Unresolved: name}
		}
	}
	def := b.comp.LookupType(scope, name, len(ref.Args))
	if def == nil {
		return &ir.Type{Unresolved: ref.String()}
	}
	t := &ir.Type{Def: def}
	for _, a := range ref.Args {
		t.Args = append(t.Args, b.bindTypeRef(scope, params, a))
	}
	return t
}

func (b *builder) implicitBase(sym *ir.NamedType) *ir.Type {
	var name string
	switch {
	case sym.Kind == ir.KindInterface:
		return nil
	case sym.Kind == ir.KindStruct:
		name = "System.ValueType"
	case sym.Kind == ir.KindEnum:
		name = "System.Enum"
	case sym.FullMetadataName() == "System.Object":
		return nil
	default:
		name = "System.Object"
	}
	if t := b.comp.TypeByMetadataName(name); t != nil {
		return t.AsType()
	}
	return nil
}

func typeParamsInScope(sym *ir.NamedType) []string {
	var params []string
	for t := sym; t != nil; t = t.ContainingType {
		params = append(params, t.TypeParameters...)
	}
	return params
}

func typeKind(kind string) (ir.TypeKind, ir.SyntaxKind, bool) {
	switch kind {
	case "struct":
		return ir.KindStruct, ir.StructDeclaration, false
	case "interface":
		return ir.KindInterface, ir.InterfaceDeclaration, false
	case "record":
		return ir.KindClass, ir.RecordDeclaration, true
	case "record-struct":
		return ir.KindStruct, ir.RecordStructDeclaration, true
	case "enum":
		return ir.KindEnum, ir.EnumDeclaration, false
	default:
		return ir.KindClass, ir.ClassDeclaration, false
	}
}

func memberKind(kind string) ir.MemberKind {
	switch kind {
	case "property":
		return ir.MemberProperty
	case "method":
		return ir.MemberMethod
	case "event":
		return ir.MemberEvent
	default:
		return ir.MemberField
	}
}

func applyTypeModifiers(sym *ir.NamedType, mods []string) {
	def := ir.Internal
	if sym.ContainingType != nil {
		def = ir.Private
	}
	sym.Accessibility = accessibility(mods, def)
	sym.IsAbstract = hasString(mods, string(ir.ModAbstract))
	sym.IsSealed = hasString(mods, string(ir.ModSealed))
	sym.IsStatic = hasString(mods, string(ir.ModStatic))
	sym.IsReadOnly = hasString(mods, string(ir.ModReadOnly))
	if sym.IsStatic {
		// Static classes are abstract and sealed at the metadata level.
		sym.IsAbstract, sym.IsSealed = true, true
	}
}

// mergeModifiers folds the modifiers of another partial part into sym. Only
// a part that writes an access modifier changes the accessibility.
func mergeModifiers(sym, part *ir.NamedType, explicitAccess bool) {
	if explicitAccess {
		sym.Accessibility = part.Accessibility
	}
	sym.IsAbstract = sym.IsAbstract || part.IsAbstract
	sym.IsSealed = sym.IsSealed || part.IsSealed
	sym.IsStatic = sym.IsStatic || part.IsStatic
	sym.IsReadOnly = sym.IsReadOnly || part.IsReadOnly
}

func hasAccessModifier(mods []string) bool {
	for _, m := range []ir.Modifier{ir.ModPublic, ir.ModPrivate, ir.ModProtected, ir.ModInternal} {
		if hasString(mods, string(m)) {
			return true
		}
	}
	return false
}

func accessibility(mods []string, def ir.Accessibility) ir.Accessibility {
	public := hasString(mods, string(ir.ModPublic))
	private := hasString(mods, string(ir.ModPrivate))
	protected := hasString(mods, string(ir.ModProtected))
	internal := hasString(mods, string(ir.ModInternal))
	switch {
	case public:
		return ir.Public
	case private && protected:
		return ir.ProtectedAndInternal
	case protected && internal:
		return ir.ProtectedOrInternal
	case protected:
		return ir.Protected
	case internal:
		return ir.Internal
	case private:
		return ir.Private
	default:
		return def
	}
}

func hasString(list []string, s string) bool {
	for _, have := range list {
		if have == s {
			return true
		}
	}
	return false
}
