package annotations

import (
	"strings"

	"github.com/samber/lo"
	"github.com/toyz/proxygen/internal/models"
)

var accessModifiers = map[string]bool{
	"public": true, "private": true, "protected": true, "internal": true, "file": true,
}

var parameterModifiers = map[string]bool{
	"ref": true, "out": true, "in": true, "params": true, "readonly": true,
}

// Builder assembles parsed C# files into a generation snapshot. Files are processed in
// the order they were added, which fixes the order of targets and bindings.
type Builder struct {
	marker   string // qualified marker attribute name
	implicit []string
	units    []unit
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithImplicitUsings imports namespaces into every file, as the ImplicitUsings project
// setting does. They take part in lookup like global using directives.
func WithImplicitUsings(namespaces ...string) BuilderOption {
	return func(b *Builder) {
		b.implicit = append(b.implicit, namespaces...)
	}
}

type unit struct {
	path string
	file *File
}

// NewBuilder creates a builder recognizing the marker attribute name declared in
// markerNamespace. The Attribute suffix of markerName is optional.
func NewBuilder(markerNamespace, markerName string, opts ...BuilderOption) *Builder {
	name := strings.TrimSuffix(markerName, "Attribute")
	if name == "" {
		name = "Proxy"
	}
	if markerNamespace == "" {
		markerNamespace = "ProxyGen"
	}
	b := &Builder{marker: markerNamespace + "." + name + "Attribute"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// MarkerName returns the qualified name of the marker attribute the builder recognizes
func (b *Builder) MarkerName() string {
	return b.marker
}

// Add queues a parsed file
func (b *Builder) Add(path string, file *File) {
	if file == nil {
		return
	}
	b.units = append(b.units, unit{path: path, file: file})
}

// Build resolves every queued file into a snapshot. Marker attributes become
// bindings, and markers that cannot produce one are recorded as skipped.
func (b *Builder) Build() *models.Snapshot {
	declared := make(map[string]bool)
	root := &scope{
		usings:  lo.Uniq(append([]string(nil), b.implicit...)),
		aliases: make(map[string]*TypeRef),
	}
	for _, u := range b.units {
		declare(u.file.Entries, "", declared, root)
	}

	st := &buildState{
		snapshot: models.NewSnapshot(),
		resolver: newTypeResolver(declared, b.marker),
		marker:   b.marker,
		targets:  make(map[string]*models.TargetType),
		bound:    make(map[string]bool),
	}
	for _, u := range b.units {
		st.entries(u.path, u.file.Entries, root.child())
	}
	for _, c := range BuiltinContracts() {
		st.snapshot.AddContract(c)
	}
	return st.snapshot
}

// declare records the qualified name of every type declared in entries and collects
// global using directives into root.
func declare(entries []*Entry, container string, declared map[string]bool, root *scope) {
	for _, e := range entries {
		switch {
		case e.Using != nil && e.Using.Global:
			root.addUsing(e.Using)
		case e.Namespace != nil:
			declare(e.Namespace.Entries, joinName(container, strings.Join(e.Namespace.Name, ".")), declared, root)
		case e.Member != nil:
			declareMember(e.Member, container, declared)
		}
	}
}

func declareMember(m *Member, container string, declared map[string]bool) {
	switch {
	case m.Body.Type != nil:
		qualified := joinName(container, m.Body.Type.Name)
		declared[qualified] = true
		for _, nested := range m.Body.Type.Members {
			declareMember(nested, qualified, declared)
		}
	case m.Body.Enum != nil:
		declared[joinName(container, m.Body.Enum.Name)] = true
	case m.Body.Delegate != nil:
		declared[joinName(container, m.Body.Delegate.Name)] = true
	}
}

type buildState struct {
	snapshot *models.Snapshot
	resolver *typeResolver
	marker   string
	targets  map[string]*models.TargetType
	bound    map[string]bool // targets that already received a binding
}

func (st *buildState) entries(path string, entries []*Entry, sc *scope) {
	for _, e := range entries {
		if e.Using != nil && !e.Using.Global {
			sc.addUsing(e.Using)
		}
	}
	for _, e := range entries {
		switch {
		case e.Namespace != nil:
			st.entries(path, e.Namespace.Entries, sc.enterNamespace(strings.Join(e.Namespace.Name, ".")))
		case e.Member != nil && e.Member.Body.Type != nil:
			st.typeDecl(path, e.Member, sc, false)
		}
	}
}

func (st *buildState) typeDecl(path string, m *Member, sc *scope, nested bool) {
	t := m.Body.Type
	container := sc.namespace
	if len(sc.types) > 0 {
		container = sc.types[len(sc.types)-1]
	}
	qualified := joinName(container, t.Name)
	inner := sc.enterType(qualified)
	markers := st.markerAttributes(m.Attributes, sc)

	switch {
	case t.Kind == "interface":
		st.contract(path, m, qualified, inner)
		st.reject(markers, qualified, path, "interfaces cannot be proxy targets")
	case nested:
		st.reject(markers, qualified, path, "nested types cannot be proxy targets")
	case len(t.TypeParams) > 0:
		st.reject(markers, qualified, path, "generic types cannot be proxy targets")
	default:
		target := st.target(path, m, sc.namespace, inner)
		for _, attr := range markers {
			st.bind(target, attr, path, sc)
		}
	}

	for _, child := range t.Members {
		if child.Body.Type != nil {
			st.typeDecl(path, child, inner, true)
		}
	}
}

// contract registers an interface declaration, merging partial declarations
func (st *buildState) contract(path string, m *Member, qualified string, sc *scope) {
	t := m.Body.Type
	name := qualified
	if len(t.TypeParams) > 0 {
		params := lo.Map(t.TypeParams, func(p *TypeParam, _ int) string { return p.Name })
		name += "<" + strings.Join(params, ", ") + ">"
	}
	ancestors := lo.Map(t.Bases, func(b *BaseType, _ int) string { return st.resolver.render(b.Type, sc) })
	members := st.members(t.Members, sc, true)

	if existing, ok := st.snapshot.Lookup(name); ok {
		existing.Members = append(existing.Members, members...)
		existing.Ancestors = lo.Uniq(append(existing.Ancestors, ancestors...))
		return
	}
	st.snapshot.AddContract(&models.Contract{
		Name:      name,
		Members:   members,
		Ancestors: ancestors,
		Source:    path,
		Line:      m.Pos.Line,
	})
}

// target registers a namespace-level class, struct or record, merging partial
// declarations into one target.
func (st *buildState) target(path string, m *Member, namespace string, sc *scope) *models.TargetType {
	t := m.Body.Type
	qualified := joinName(namespace, t.Name)
	members := st.members(t.Members, sc, false)

	if existing, ok := st.targets[qualified]; ok {
		existing.Members = append(existing.Members, members...)
		return existing
	}

	kind := t.Kind
	if t.RecordKind != "" {
		kind += " " + t.RecordKind
	}
	target := &models.TargetType{
		Name:       t.Name,
		Namespace:  namespace,
		Visibility: strings.Join(lo.Filter(m.Modifiers, func(mod string, _ int) bool { return accessModifiers[mod] }), " "),
		Kind:       kind,
		Members:    members,
		Source:     path,
		Line:       m.Pos.Line,
	}
	st.targets[qualified] = target
	st.snapshot.Targets = append(st.snapshot.Targets, target)
	return target
}

func (st *buildState) reject(markers []*Attribute, qualified, path, detail string) {
	for _, attr := range markers {
		st.skip(qualified, models.SkipUnsupportedTarget, detail, path, attr.Pos.Line)
	}
}

func (st *buildState) skip(target string, reason models.SkipReason, detail, path string, line int) {
	st.snapshot.Skipped = append(st.snapshot.Skipped, models.SkippedBinding{
		Target: target,
		Reason: reason,
		Detail: detail,
		Source: path,
		Line:   line,
	})
}

// bind turns one marker attribute into a binding. Only the first well-formed marker
// of a target binds, later ones are reported as duplicates.
func (st *buildState) bind(target *models.TargetType, attr *Attribute, path string, sc *scope) {
	qualified := target.QualifiedName()
	args, verr := parseMarkerArguments(attr, path)
	if verr != nil {
		st.skip(qualified, verr.reason, verr.err.Describe(), path, attr.Pos.Line)
		return
	}
	if st.bound[qualified] {
		st.skip(qualified, models.SkipDuplicateBinding, "target already has a proxy binding", path, attr.Pos.Line)
		return
	}
	st.bound[qualified] = true
	target.Source = path
	target.Line = attr.Pos.Line

	st.snapshot.Bindings = append(st.snapshot.Bindings, models.Binding{
		Target:   target,
		Contract: st.resolver.render(args.contract, sc),
		Accessor: args.accessor,
		Origin:   models.OriginAttribute,
	})
}

// markerAttributes returns the attributes of sections that name the marker
func (st *buildState) markerAttributes(sections []*AttributeSection, sc *scope) []*Attribute {
	var found []*Attribute
	for _, section := range sections {
		if section.Target != "" && section.Target != "type" {
			continue
		}
		for _, attr := range section.Attributes {
			if st.isMarker(attr, sc) {
				found = append(found, attr)
			}
		}
	}
	return found
}

// isMarker reports whether attr resolves to the marker attribute, trying the name as
// written and with the Attribute suffix appended.
func (st *buildState) isMarker(attr *Attribute, sc *scope) bool {
	name := attr.Name
	if name == nil || len(name.Tuple) > 0 || len(name.Suffix) > 0 {
		return false
	}
	if lo.SomeBy(name.Parts, func(p *TypePart) bool { return p.Generic }) {
		return false
	}

	names := lo.Map(name.Parts, func(p *TypePart, _ int) string { return p.Name })
	candidates := [][]string{names}
	if last := names[len(names)-1]; !strings.HasSuffix(last, "Attribute") {
		withSuffix := append(append([]string(nil), names[:len(names)-1]...), last+"Attribute")
		candidates = append(candidates, withSuffix)
	}

	for _, candidate := range candidates {
		prefix, alias := st.resolver.qualify(candidate, sc, name.Global)
		full := joinName(prefix, strings.Join(candidate, "."))
		if alias != nil {
			full = joinName(dottedName(alias), strings.Join(candidate[1:], "."))
		}
		if full == st.marker {
			return true
		}
	}
	return false
}

// members converts declarations of a type body. Contract members exclude static
// members, which an instance accessor cannot forward.
func (st *buildState) members(decls []*Member, sc *scope, contract bool) []models.Member {
	var out []models.Member
	for _, m := range decls {
		if contract && lo.Contains(m.Modifiers, "static") {
			continue
		}
		out = append(out, st.member(m, sc)...)
	}
	return out
}

func (st *buildState) member(m *Member, sc *scope) []models.Member {
	body := m.Body
	switch {
	case body.Typed != nil:
		return st.typedMember(body.Typed, sc)
	case body.Constructor != nil:
		return []models.Member{&models.Method{
			Name:       body.Constructor.Name,
			ReturnType: "void",
			Kind:       models.MethodKindConstructor,
			Parameters: st.parameters(body.Constructor.Params.Params, sc),
		}}
	case body.Finalizer != nil:
		return []models.Member{&models.Method{
			Name:       "~" + body.Finalizer.Name,
			ReturnType: "void",
			Kind:       models.MethodKindFinalizer,
		}}
	case body.Conversion != nil:
		target := st.resolver.render(body.Conversion.Type, sc)
		return []models.Member{&models.Method{
			Name:       body.Conversion.Direction + " operator " + target,
			ReturnType: target,
			Kind:       models.MethodKindConversion,
			Parameters: st.parameters(body.Conversion.Params.Params, sc),
		}}
	case body.Event != nil:
		eventType := st.resolver.render(body.Event.Type, sc)
		return lo.Map(body.Event.Names, func(n *MemberName, _ int) models.Member {
			return &models.Method{Name: memberName(n), ReturnType: eventType, Kind: models.MethodKindEvent}
		})
	default:
		return nil
	}
}

func (st *buildState) typedMember(t *TypedMember, sc *scope) []models.Member {
	typ := st.resolver.render(t.Type, sc)

	if t.Operator != nil {
		return []models.Member{&models.Method{
			Name:       "operator " + strings.Join(t.Operator.Symbol, ""),
			ReturnType: typ,
			Kind:       models.MethodKindOperator,
			Parameters: st.parameters(t.Operator.Params.Params, sc),
		}}
	}

	name := memberName(t.Name)
	switch tail := t.Tail; {
	case tail.Method != nil:
		last := t.Name.Parts[len(t.Name.Parts)-1]
		return []models.Member{&models.Method{
			Name:       name,
			ReturnType: typ,
			Kind:       models.MethodKindOrdinary,
			Parameters: st.parameters(tail.Method.Params.Params, sc),
			Generic:    last.Generic,
		}}
	case tail.Property != nil:
		getter, setter, init := accessorShape(tail.Property)
		return []models.Member{&models.Property{Name: name, Type: typ, HasGetter: getter, HasSetter: setter, HasInit: init}}
	case tail.Indexer != nil:
		return []models.Member{&models.Method{
			Name:       name,
			ReturnType: typ,
			Kind:       models.MethodKindIndexer,
			Parameters: st.parameters(tail.Indexer.Params, sc),
		}}
	default:
		return nil
	}
}

func (st *buildState) parameters(params []*Param, sc *scope) []models.Parameter {
	return lo.Map(params, func(p *Param, _ int) models.Parameter {
		mods := lo.Filter(p.Modifiers, func(mod string, _ int) bool { return parameterModifiers[mod] })
		return models.Parameter{
			Type:     st.resolver.render(p.Type, sc),
			Name:     p.Name,
			Modifier: strings.Join(mods, " "),
		}
	})
}

// accessorShape reports which accessors a property declares. An expression body is a
// getter.
func accessorShape(p *PropertyTail) (getter, setter, init bool) {
	if p.Arrow {
		return true, false, false
	}
	for _, a := range p.Accessors {
		switch a.Kind {
		case "get":
			getter = true
		case "set":
			setter = true
		case "init":
			init = true
		}
	}
	return getter, setter, init
}

// memberName joins an explicit interface qualifier and the member name, dropping type
// arguments.
func memberName(n *MemberName) string {
	if n == nil {
		return ""
	}
	return strings.Join(lo.Map(n.Parts, func(p *TypePart, _ int) string { return p.Name }), ".")
}
