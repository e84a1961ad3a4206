package models

import "strings"

// MethodKind classifies a method declaration. Only ordinary methods take part in forwarding.
type MethodKind int

const (
	MethodKindOrdinary MethodKind = iota
	MethodKindConstructor
	MethodKindOperator
	MethodKindConversion
	MethodKindFinalizer
	MethodKindIndexer
	MethodKindEvent
)

// String returns the string representation of the method kind
func (k MethodKind) String() string {
	switch k {
	case MethodKindOrdinary:
		return "ordinary"
	case MethodKindConstructor:
		return "constructor"
	case MethodKindOperator:
		return "operator"
	case MethodKindConversion:
		return "conversion"
	case MethodKindFinalizer:
		return "finalizer"
	case MethodKindIndexer:
		return "indexer"
	case MethodKindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// ParseMethodKind converts a string to a MethodKind. Unknown values map to ordinary.
func ParseMethodKind(s string) MethodKind {
	switch s {
	case "constructor":
		return MethodKindConstructor
	case "operator":
		return MethodKindOperator
	case "conversion":
		return MethodKindConversion
	case "finalizer":
		return MethodKindFinalizer
	case "indexer":
		return MethodKindIndexer
	case "event":
		return MethodKindEvent
	default:
		return MethodKindOrdinary
	}
}

// Parameter represents a single method parameter
type Parameter struct {
	Type     string // display form of the parameter type
	Name     string // parameter name as declared
	Modifier string // "", "ref", "out", "in" or "params"
}

// Signature returns the identity-relevant part of the parameter: modifier and type
func (p Parameter) Signature() string {
	if p.Modifier == "" || p.Modifier == "params" {
		return p.Type
	}
	return p.Modifier + " " + p.Type
}

// MemberKind distinguishes the two member shapes
type MemberKind int

const (
	PropertyMember MemberKind = iota
	MethodMember
)

// Identity is the comparable key members are deduplicated and excluded by
type Identity struct {
	Kind      MemberKind
	Name      string
	Type      string
	Signature string
}

// Member is either a *Property or a *Method
type Member interface {
	MemberName() string
	Identity() Identity
	member()
}

// Property represents a property declaration
type Property struct {
	Name      string
	Type      string
	HasGetter bool
	HasSetter bool
	HasInit   bool // init accessor; never set together with HasSetter
}

func (p *Property) MemberName() string { return p.Name }

// Identity ignores accessor shape: name and type only
func (p *Property) Identity() Identity {
	return Identity{Kind: PropertyMember, Name: p.Name, Type: p.Type}
}

func (*Property) member() {}

// Method represents a method declaration
type Method struct {
	Name       string
	ReturnType string
	Kind       MethodKind
	Parameters []Parameter
	Generic    bool // declares its own type parameters
}

func (m *Method) MemberName() string { return m.Name }

func (m *Method) Identity() Identity {
	sigs := make([]string, len(m.Parameters))
	for i, p := range m.Parameters {
		sigs[i] = p.Signature()
	}
	return Identity{
		Kind:      MethodMember,
		Name:      m.Name,
		Type:      m.ReturnType,
		Signature: strings.Join(sigs, ","),
	}
}

func (*Method) member() {}

// IsForwardable reports whether the member can take part in an effective member set
func IsForwardable(m Member) bool {
	switch v := m.(type) {
	case *Property:
		return v.HasGetter || v.HasSetter || v.HasInit
	case *Method:
		return v.Kind == MethodKindOrdinary && !v.Generic
	default:
		return false
	}
}
