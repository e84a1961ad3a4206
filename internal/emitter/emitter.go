// Package emitter renders forwarding declarations for the members a target type does
// not implement itself.
package emitter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/toyz/proxygen/internal/models"
	"github.com/toyz/proxygen/internal/templates"
)

const indent = "    "

// Emitter renders forwarding artifacts. It holds no per-pass state and is safe for
// concurrent use.
type Emitter struct {
	opts   Options
	header string
}

// New creates an emitter with the given options
func New(opts Options) *Emitter {
	header, err := templates.GenerateHeader(ToolName)
	if err != nil {
		header = "// <auto-generated/>\n"
	}
	return &Emitter{opts: opts.withDefaults(), header: header}
}

// Options returns the effective options
func (e *Emitter) Options() Options {
	return e.opts
}

// ArtifactName returns the deterministic artifact name for a target
func (e *Emitter) ArtifactName(target *models.TargetType) string {
	return target.Name + "." + e.opts.Extension
}

// Emit renders the forwarding artifact for target. effective is the resolver output for
// the contract named contractName. Members the target already declares are skipped.
// The boolean is false when the accessor is empty, in which case nothing is produced.
func (e *Emitter) Emit(target *models.TargetType, contractName string, effective []models.Member, accessor string) (models.Artifact, bool) {
	accessor = strings.TrimSpace(accessor)
	if target == nil || accessor == "" {
		return models.Artifact{}, false
	}

	pending := Pending(effective, target.Members)
	properties, methods := splitMembers(pending)

	var sb strings.Builder
	sb.WriteString(e.header)
	sb.WriteString("\n")
	if target.Namespace != "" {
		sb.WriteString(fmt.Sprintf("namespace %s;\n\n", target.Namespace))
	}

	if e.opts.GeneratedCode {
		sb.WriteString(fmt.Sprintf("[System.CodeDom.Compiler.GeneratedCode(\"%s\",\"%s\")]\n",
			ToolName, NormalizeVersion(e.opts.ToolVersion)))
	}
	sb.WriteString(typeDeclaration(target, contractName))
	sb.WriteString("{\n")

	for _, p := range properties {
		sb.WriteString(forwardProperty(p, accessor))
	}
	for _, m := range methods {
		sb.WriteString(forwardMethod(m, accessor))
	}

	sb.WriteString("}\n")

	return models.Artifact{
		Name:    e.ArtifactName(target),
		Dir:     sourceDir(target.Source),
		Content: sb.String(),
		Target:  target.QualifiedName(),
	}, true
}

// Bootstrap renders the marker attribute declaration emitted once per pass
func (e *Emitter) Bootstrap() (models.Artifact, error) {
	body, err := templates.GenerateMarkerAttribute(e.opts.MarkerNamespace, e.opts.MarkerName)
	if err != nil {
		return models.Artifact{}, err
	}
	return models.Artifact{
		Name:    e.opts.MarkerName + "Attribute." + e.opts.Extension,
		Content: e.header + "\n" + body,
	}, nil
}

// Pending returns the members of effective that have no identity match in existing,
// preserving order.
func Pending(effective, existing []models.Member) []models.Member {
	declared := lo.KeyBy(existing, func(m models.Member) models.Identity {
		return m.Identity()
	})
	return lo.Reject(effective, func(m models.Member, _ int) bool {
		_, implemented := declared[m.Identity()]
		return implemented
	})
}

func splitMembers(members []models.Member) ([]*models.Property, []*models.Method) {
	var properties []*models.Property
	var methods []*models.Method
	for _, m := range members {
		switch v := m.(type) {
		case *models.Property:
			properties = append(properties, v)
		case *models.Method:
			methods = append(methods, v)
		}
	}
	return properties, methods
}

func typeDeclaration(target *models.TargetType, contractName string) string {
	kind := target.Kind
	if kind == "" {
		kind = "class"
	}
	var sb strings.Builder
	if target.Visibility != "" {
		sb.WriteString(target.Visibility)
		sb.WriteString(" ")
	}
	sb.WriteString(fmt.Sprintf("partial %s %s", kind, target.Name))
	if contractName != "" {
		sb.WriteString(" : " + contractName)
	}
	sb.WriteString("\n")
	return sb.String()
}

func forwardProperty(p *models.Property, accessor string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%spublic %s %s\n", indent, p.Type, p.Name))
	sb.WriteString(indent + "{\n")
	if p.HasGetter {
		sb.WriteString(fmt.Sprintf("%s%sget => %s.%s;\n", indent, indent, accessor, p.Name))
	}
	switch {
	case p.HasSetter:
		sb.WriteString(fmt.Sprintf("%s%sset => %s.%s = value;\n", indent, indent, accessor, p.Name))
	case p.HasInit:
		sb.WriteString(fmt.Sprintf("%s%sinit => %s.%s = value;\n", indent, indent, accessor, p.Name))
	}
	sb.WriteString(indent + "}\n")
	return sb.String()
}

func forwardMethod(m *models.Method, accessor string) string {
	async := IsAsyncReturn(m.ReturnType)

	parameters := strings.Join(lo.Map(m.Parameters, func(p models.Parameter, _ int) string {
		if p.Modifier != "" {
			return fmt.Sprintf("%s %s %s", p.Modifier, p.Type, p.Name)
		}
		return fmt.Sprintf("%s %s", p.Type, p.Name)
	}), ", ")
	arguments := strings.Join(lo.Map(m.Parameters, func(p models.Parameter, _ int) string {
		switch p.Modifier {
		case "ref", "out", "in":
			return p.Modifier + " " + p.Name
		default:
			return p.Name
		}
	}), ", ")

	var sb strings.Builder
	if async {
		sb.WriteString(fmt.Sprintf("%spublic async %s %s(%s) =>\n", indent, m.ReturnType, m.Name, parameters))
		sb.WriteString(fmt.Sprintf("%s%sawait %s.%s(%s).ConfigureAwait(false);\n", indent, indent, accessor, m.Name, arguments))
	} else {
		sb.WriteString(fmt.Sprintf("%spublic %s %s(%s) =>\n", indent, m.ReturnType, m.Name, parameters))
		sb.WriteString(fmt.Sprintf("%s%s%s.%s(%s);\n", indent, indent, accessor, m.Name, arguments))
	}
	return sb.String()
}

func sourceDir(source string) string {
	if source == "" {
		return ""
	}
	return filepath.Dir(source)
}
