package annotations

import (
	"strings"

	"github.com/samber/lo"
)

// scope is the name lookup context of a declaration
type scope struct {
	namespace string              // enclosing namespace, empty for the global namespace
	types     []string            // enclosing type names, innermost last
	usings    []string            // imported namespaces
	aliases   map[string]*TypeRef // using aliases
}

// child returns a copy of the scope that new usings can be added to
func (s *scope) child() *scope {
	aliases := make(map[string]*TypeRef, len(s.aliases))
	for k, v := range s.aliases {
		aliases[k] = v
	}
	return &scope{
		namespace: s.namespace,
		types:     append([]string(nil), s.types...),
		usings:    append([]string(nil), s.usings...),
		aliases:   aliases,
	}
}

// enterNamespace returns the scope inside the namespace name
func (s *scope) enterNamespace(name string) *scope {
	c := s.child()
	c.namespace = joinName(s.namespace, name)
	return c
}

// enterType returns the scope inside the type with the given qualified name
func (s *scope) enterType(qualified string) *scope {
	c := s.child()
	c.types = append(c.types, qualified)
	return c
}

// addUsing records a using directive in the scope
func (s *scope) addUsing(u *Using) {
	if u.Static || u.Target == nil {
		return
	}
	if u.Alias != "" {
		s.aliases[u.Alias] = u.Target
		return
	}
	s.usings = append(s.usings, dottedName(u.Target))
}

// namespaceChain returns the enclosing namespace and each of its parents, innermost
// first, ending with the global namespace.
func (s *scope) namespaceChain() []string {
	chain := []string{}
	ns := s.namespace
	for ns != "" {
		chain = append(chain, ns)
		idx := strings.LastIndex(ns, ".")
		if idx < 0 {
			break
		}
		ns = ns[:idx]
	}
	return append(chain, "")
}

// typeResolver renders type references as qualified display strings
type typeResolver struct {
	known map[string]bool
}

func newTypeResolver(declared map[string]bool, extra ...string) *typeResolver {
	known := make(map[string]bool, len(declared)+len(wellKnownTypes)+len(extra))
	for name := range wellKnownTypes {
		known[name] = true
	}
	for name := range declared {
		known[name] = true
	}
	for _, name := range extra {
		known[name] = true
	}
	return &typeResolver{known: known}
}

// render returns the display form of t: declared and well-known types are fully
// qualified, framework names collapse to their keyword, and Nullable<T> becomes T?.
// Names that cannot be resolved are kept as written.
func (r *typeResolver) render(t *TypeRef, sc *scope) string {
	if t == nil {
		return ""
	}
	suffix := strings.Join(t.Suffix, "")

	if len(t.Tuple) > 0 {
		elements := lo.Map(t.Tuple, func(e *TupleElement, _ int) string {
			if e.Name != "" {
				return r.render(e.Type, sc) + " " + e.Name
			}
			return r.render(e.Type, sc)
		})
		return "(" + strings.Join(elements, ", ") + ")" + suffix
	}

	names := lo.Map(t.Parts, func(p *TypePart, _ int) string { return p.Name })
	generic := lo.SomeBy(t.Parts, func(p *TypePart) bool { return p.Generic })
	if len(names) == 1 && !generic && !t.Global && keywordTypes[names[0]] {
		return names[0] + suffix
	}

	prefix, alias := r.qualify(names, sc, t.Global)
	segments := lo.Map(t.Parts, func(p *TypePart, _ int) string {
		return p.Name + r.renderArgs(p, sc)
	})
	if alias != nil {
		segments[0] = r.render(alias, &scope{})
	}
	text := strings.Join(segments, ".")
	if prefix != "" {
		text = prefix + "." + text
	}

	qualified := joinName(prefix, strings.Join(names, "."))
	if alias == nil && !generic {
		if keyword, ok := keywordAliases[qualified]; ok {
			return keyword + suffix
		}
	}
	last := t.Parts[len(t.Parts)-1]
	if alias == nil && qualified == "System.Nullable" && len(last.Args) == 1 {
		return r.render(last.Args[0], sc) + "?" + suffix
	}
	return text + suffix
}

func (r *typeResolver) renderArgs(p *TypePart, sc *scope) string {
	if !p.Generic {
		return ""
	}
	args := lo.Map(p.Args, func(a *TypeRef, _ int) string { return r.render(a, sc) })
	return "<" + strings.Join(args, ", ") + ">"
}

// qualify finds the declaration a dotted name refers to. It returns either the
// qualifier to prepend or the alias target replacing the first segment. Lookup order
// follows C#: enclosing types, then enclosing namespaces innermost first, then using
// aliases, then imported namespaces.
func (r *typeResolver) qualify(names []string, sc *scope, global bool) (string, *TypeRef) {
	dotted := strings.Join(names, ".")
	if global || sc == nil {
		return "", nil
	}

	for i := len(sc.types) - 1; i >= 0; i-- {
		if r.known[sc.types[i]+"."+dotted] {
			return sc.types[i], nil
		}
	}
	for _, ns := range sc.namespaceChain() {
		if r.known[joinName(ns, dotted)] {
			return ns, nil
		}
	}
	if alias, ok := sc.aliases[names[0]]; ok {
		return "", alias
	}
	for _, u := range sc.usings {
		if r.known[u+"."+dotted] {
			return u, nil
		}
	}
	return "", nil
}

// dottedName returns the type name without type arguments or suffixes
func dottedName(t *TypeRef) string {
	return strings.Join(lo.Map(t.Parts, func(p *TypePart, _ int) string { return p.Name }), ".")
}

func joinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}
