// Package modelfile reads and writes the explicit YAML form of a generation snapshot.
// A model file lets any host describe contracts, targets and bindings directly instead
// of having them extracted from C# sources.
package modelfile

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/samber/lo"
	"github.com/toyz/proxygen/internal/errors"
	"github.com/toyz/proxygen/internal/models"
	"gopkg.in/yaml.v3"
)

// Document is the top-level YAML document
type Document struct {
	Contracts []ContractDoc `yaml:"contracts"`
	Targets   []TargetDoc   `yaml:"targets,omitempty"`
	Bindings  []BindingDoc  `yaml:"bindings,omitempty"`
}

// ContractDoc describes one contract
type ContractDoc struct {
	Name      string      `yaml:"name"`
	Ancestors []string    `yaml:"ancestors,omitempty"`
	Members   []MemberDoc `yaml:"members,omitempty"`
}

// TargetDoc describes one target type
type TargetDoc struct {
	Name       string      `yaml:"name"`
	Namespace  string      `yaml:"namespace,omitempty"`
	Visibility string      `yaml:"visibility,omitempty"`
	Kind       string      `yaml:"kind,omitempty"` // class, struct, record; defaults to class
	Source     string      `yaml:"source,omitempty"`
	Members    []MemberDoc `yaml:"members,omitempty"`
}

// MemberDoc describes a property (Property set) or a method (Method set)
type MemberDoc struct {
	Property   string         `yaml:"property,omitempty"`
	Type       string         `yaml:"type,omitempty"`
	Get        bool           `yaml:"get,omitempty"`
	Set        bool           `yaml:"set,omitempty"`
	Init       bool           `yaml:"init,omitempty"`
	Method     string         `yaml:"method,omitempty"`
	Returns    string         `yaml:"returns,omitempty"`
	Kind       string         `yaml:"kind,omitempty"` // method kind, defaults to ordinary
	Generic    bool           `yaml:"generic,omitempty"`
	Parameters []ParameterDoc `yaml:"parameters,omitempty"`
}

// ParameterDoc describes a method parameter
type ParameterDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Modifier string `yaml:"modifier,omitempty"`
}

// BindingDoc binds a target, by qualified name, to a contract and accessor
type BindingDoc struct {
	Target   string `yaml:"target"`
	Contract string `yaml:"contract"`
	Accessor string `yaml:"accessor"`
}

// Load reads a model file
func Load(path string) (*models.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("open", path, err)
	}
	defer f.Close()
	return decode(f, path)
}

// Decode reads a model document from r. Unknown keys are rejected.
func Decode(r io.Reader) (*models.Snapshot, error) {
	return decode(r, "")
}

func decode(r io.Reader, source string) (*models.Snapshot, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.WrapParseError(modelName(source), err)
	}
	return doc.Snapshot(source)
}

func modelName(source string) string {
	if source == "" {
		return "model"
	}
	return source
}

// Snapshot converts the document. Bindings naming an undeclared target are recorded as
// skipped. source is used as the location of contracts and targets that do not name
// their own.
func (d *Document) Snapshot(source string) (*models.Snapshot, error) {
	snapshot := models.NewSnapshot()
	problems := errors.NewMultipleErrors()

	for i, c := range d.Contracts {
		if c.Name == "" {
			problems.Add(invalid(source, fmt.Sprintf("contracts[%d]: name is required", i)))
			continue
		}
		members, err := convertMembers(c.Members)
		if err != nil {
			problems.Add(invalid(source, fmt.Sprintf("contract %s: %v", c.Name, err)))
			continue
		}
		if !snapshot.AddContract(&models.Contract{
			Name:      c.Name,
			Members:   members,
			Ancestors: c.Ancestors,
			Source:    source,
		}) {
			problems.Add(invalid(source, fmt.Sprintf("contract %s is declared twice", c.Name)))
		}
	}

	for i, t := range d.Targets {
		if t.Name == "" {
			problems.Add(invalid(source, fmt.Sprintf("targets[%d]: name is required", i)))
			continue
		}
		members, err := convertMembers(t.Members)
		if err != nil {
			problems.Add(invalid(source, fmt.Sprintf("target %s: %v", t.Name, err)))
			continue
		}
		target := &models.TargetType{
			Name:       t.Name,
			Namespace:  t.Namespace,
			Visibility: t.Visibility,
			Kind:       lo.Ternary(t.Kind == "", "class", t.Kind),
			Members:    members,
			Source:     lo.Ternary(t.Source == "", source, t.Source),
		}
		if _, exists := snapshot.FindTarget(target.QualifiedName()); exists {
			problems.Add(invalid(source, fmt.Sprintf("target %s is declared twice", target.QualifiedName())))
			continue
		}
		snapshot.Targets = append(snapshot.Targets, target)
	}

	for _, b := range d.Bindings {
		target, ok := snapshot.FindTarget(b.Target)
		if !ok {
			snapshot.Skipped = append(snapshot.Skipped, models.SkippedBinding{
				Target: b.Target,
				Reason: models.SkipUnsupportedTarget,
				Detail: "target is not declared in the model",
				Source: source,
			})
			continue
		}
		snapshot.Bindings = append(snapshot.Bindings, models.Binding{
			Target:   target,
			Contract: b.Contract,
			Accessor: b.Accessor,
			Origin:   models.OriginModel,
		})
	}

	if err := problems.ErrOrNil(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func invalid(source, message string) *errors.BaseError {
	return errors.New(errors.ValidationErrorCode, message).
		WithLocation(errors.SourceLocation{File: source})
}

func convertMembers(docs []MemberDoc) ([]models.Member, error) {
	members := make([]models.Member, 0, len(docs))
	for i, m := range docs {
		switch {
		case m.Property != "" && m.Method != "":
			return nil, fmt.Errorf("members[%d]: property and method are mutually exclusive", i)
		case m.Property != "":
			members = append(members, &models.Property{
				Name:      m.Property,
				Type:      m.Type,
				HasGetter: m.Get,
				HasSetter: m.Set,
				HasInit:   m.Init && !m.Set,
			})
		case m.Method != "":
			members = append(members, &models.Method{
				Name:       m.Method,
				ReturnType: lo.Ternary(m.Returns == "", "void", m.Returns),
				Kind:       models.ParseMethodKind(m.Kind),
				Generic:    m.Generic,
				Parameters: lo.Map(m.Parameters, func(p ParameterDoc, _ int) models.Parameter {
					return models.Parameter{Type: p.Type, Name: p.Name, Modifier: p.Modifier}
				}),
			})
		default:
			return nil, fmt.Errorf("members[%d]: either property or method is required", i)
		}
	}
	return members, nil
}

// FromSnapshot converts a snapshot into its document form. Contracts are sorted by name.
func FromSnapshot(snapshot *models.Snapshot) *Document {
	doc := &Document{}
	if snapshot == nil {
		return doc
	}

	names := lo.Keys(snapshot.Contracts)
	sort.Strings(names)
	for _, name := range names {
		c := snapshot.Contracts[name]
		doc.Contracts = append(doc.Contracts, ContractDoc{
			Name:      c.Name,
			Ancestors: c.Ancestors,
			Members:   memberDocs(c.Members),
		})
	}
	for _, t := range snapshot.Targets {
		doc.Targets = append(doc.Targets, TargetDoc{
			Name:       t.Name,
			Namespace:  t.Namespace,
			Visibility: t.Visibility,
			Kind:       t.Kind,
			Source:     t.Source,
			Members:    memberDocs(t.Members),
		})
	}
	for _, b := range snapshot.Bindings {
		doc.Bindings = append(doc.Bindings, BindingDoc{
			Target:   b.Target.QualifiedName(),
			Contract: b.Contract,
			Accessor: b.Accessor,
		})
	}
	return doc
}

func memberDocs(members []models.Member) []MemberDoc {
	return lo.Map(members, func(m models.Member, _ int) MemberDoc {
		switch v := m.(type) {
		case *models.Property:
			return MemberDoc{Property: v.Name, Type: v.Type, Get: v.HasGetter, Set: v.HasSetter, Init: v.HasInit}
		case *models.Method:
			doc := MemberDoc{Method: v.Name, Returns: v.ReturnType, Generic: v.Generic}
			if v.Kind != models.MethodKindOrdinary {
				doc.Kind = v.Kind.String()
			}
			doc.Parameters = lo.Map(v.Parameters, func(p models.Parameter, _ int) ParameterDoc {
				return ParameterDoc{Name: p.Name, Type: p.Type, Modifier: p.Modifier}
			})
			return doc
		default:
			return MemberDoc{}
		}
	})
}

// dumpDocument is the -dump-model output: the model plus the effective member set of
// each binding.
type dumpDocument struct {
	Document  `yaml:",inline"`
	Effective []effectiveDoc `yaml:"effective,omitempty"`
}

type effectiveDoc struct {
	Target   string      `yaml:"target"`
	Contract string      `yaml:"contract"`
	Members  []MemberDoc `yaml:"members"`
}

// Dump writes snapshot as YAML. resolved maps a qualified target name to the effective
// member set of its binding and may be nil.
func Dump(w io.Writer, snapshot *models.Snapshot, resolved map[string][]models.Member) error {
	out := dumpDocument{Document: *FromSnapshot(snapshot)}
	for _, b := range out.Bindings {
		members, ok := resolved[b.Target]
		if !ok {
			continue
		}
		out.Effective = append(out.Effective, effectiveDoc{
			Target:   b.Target,
			Contract: b.Contract,
			Members:  memberDocs(members),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return errors.WrapGenerateError("model dump", err)
	}
	return enc.Close()
}
