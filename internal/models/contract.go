package models

// Contract is a named interface-like set of members, possibly extending other contracts
type Contract struct {
	Name      string   // fully qualified name
	Members   []Member // own members in declaration order
	Ancestors []string // directly extended contracts, qualified, in declared order
	Source    string   // file the contract was declared in, empty for built-ins
	Line      int
}

// TargetType is the type receiving generated forwarding members
type TargetType struct {
	Name       string   // short name
	Namespace  string   // empty for the global namespace
	Visibility string   // public, internal, ...; empty when undeclared
	Kind       string   // class, struct or record
	Members    []Member // self-declared members, used only for exclusion
	Source     string
	Line       int
}

// QualifiedName returns the namespace-qualified name of the target
func (t *TargetType) QualifiedName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// BindingOrigin records where a binding came from
type BindingOrigin int

const (
	OriginAttribute BindingOrigin = iota
	OriginConfig
	OriginModel
)

// String returns the string representation of the binding origin
func (o BindingOrigin) String() string {
	switch o {
	case OriginAttribute:
		return "attribute"
	case OriginConfig:
		return "config"
	case OriginModel:
		return "model"
	default:
		return "unknown"
	}
}

// Binding associates a target type with a contract and an accessor expression
type Binding struct {
	Target   *TargetType
	Contract string // qualified contract reference
	Accessor string
	Origin   BindingOrigin
}

// Snapshot is the immutable input of one generation pass
type Snapshot struct {
	Contracts map[string]*Contract
	Targets   []*TargetType
	Bindings  []Binding
	Skipped   []SkippedBinding // bindings the front end already rejected
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{Contracts: make(map[string]*Contract)}
}

// Lookup resolves a contract by qualified name
func (s *Snapshot) Lookup(ref string) (*Contract, bool) {
	if s == nil || s.Contracts == nil {
		return nil, false
	}
	c, ok := s.Contracts[ref]
	return c, ok
}

// AddContract registers a contract, keeping the first declaration of a name
func (s *Snapshot) AddContract(c *Contract) bool {
	if _, exists := s.Contracts[c.Name]; exists {
		return false
	}
	s.Contracts[c.Name] = c
	return true
}

// FindTarget returns the target with the given qualified name
func (s *Snapshot) FindTarget(qualified string) (*TargetType, bool) {
	for _, t := range s.Targets {
		if t.QualifiedName() == qualified {
			return t, true
		}
	}
	return nil, false
}
