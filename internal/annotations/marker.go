package annotations

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/toyz/proxygen/internal/models"
)

// Constructor parameter names of the marker attribute, usable as named arguments
const (
	ContractParameter = "proxyType"
	AccessorParameter = "proxyAccessor"
)

var markerParameters = []string{ContractParameter, AccessorParameter}

type markerArgs struct {
	contract *TypeRef
	accessor string
}

type markerError struct {
	reason models.SkipReason
	err    *ValidationError
}

// parseMarkerArguments validates the two constructor arguments of a marker: a typeof
// expression naming the contract, and a string literal or nameof expression naming
// the accessor. Arguments may be positional or named.
func parseMarkerArguments(attr *Attribute, path string) (markerArgs, *markerError) {
	loc := SourceLocation{File: path, Line: attr.Pos.Line, Column: attr.Pos.Column}
	fail := func(reason models.SkipReason, param, expected, actual string) (markerArgs, *markerError) {
		return markerArgs{}, &markerError{
			reason: reason,
			err: &ValidationError{
				Parameter: param,
				Expected:  expected,
				Actual:    actual,
				Loc:       loc,
				Hint:      "Use [Proxy(typeof(IContract), \"_accessor\")]",
			},
		}
	}

	if len(attr.Arguments) == 0 {
		return fail(models.SkipMissingContract, ContractParameter, "typeof(T)", "no arguments")
	}
	if len(attr.Arguments) > 2 {
		return fail(models.SkipMalformedArguments, ContractParameter, "2 arguments", fmt.Sprintf("%d arguments", len(attr.Arguments)))
	}

	var slots [2]*AttributeArg
	next := 0
	for _, arg := range attr.Arguments {
		switch arg.Assign {
		case "=":
			return fail(models.SkipMalformedArguments, arg.Name, "a constructor argument", "property assignment")
		case ":":
			idx := lo.IndexOf(markerParameters, arg.Name)
			if idx < 0 {
				return fail(models.SkipMalformedArguments, arg.Name, "proxyType or proxyAccessor", "unknown argument name")
			}
			if slots[idx] != nil {
				return fail(models.SkipMalformedArguments, arg.Name, "a single value", "duplicate argument")
			}
			slots[idx] = arg
		default:
			for next < len(slots) && slots[next] != nil {
				next++
			}
			if next == len(slots) {
				return fail(models.SkipMalformedArguments, "", "2 arguments", "extra positional argument")
			}
			slots[next] = arg
		}
	}

	contractArg, accessorArg := slots[0], slots[1]
	if contractArg == nil {
		return fail(models.SkipMissingContract, ContractParameter, "typeof(T)", "nothing")
	}
	if contractArg.Value.TypeOf == nil || len(contractArg.Rest) > 0 {
		actual := argText(contractArg)
		if actual == "null" {
			return fail(models.SkipMissingContract, ContractParameter, "typeof(T)", actual)
		}
		return fail(models.SkipMalformedArguments, ContractParameter, "typeof(T)", actual)
	}
	if accessorArg == nil {
		return fail(models.SkipMalformedArguments, AccessorParameter, "a string literal or nameof(...)", "nothing")
	}

	accessor, ok := accessorValue(accessorArg)
	if !ok {
		return fail(models.SkipMalformedArguments, AccessorParameter, "a string literal or nameof(...)", argText(accessorArg))
	}
	return markerArgs{contract: contractArg.Value.TypeOf, accessor: accessor}, nil
}

func accessorValue(arg *AttributeArg) (string, bool) {
	if len(arg.Rest) > 0 {
		return "", false
	}
	switch v := arg.Value; {
	case v.String != nil:
		return unquoteString(*v.String)
	case v.NameOf != nil && len(v.NameOf.Parts) > 0:
		return v.NameOf.Parts[len(v.NameOf.Parts)-1].Name, true
	default:
		return "", false
	}
}

// unquoteString decodes a regular, verbatim or raw C# string literal. Interpolated
// literals with holes are not constants and are rejected.
func unquoteString(lit string) (string, bool) {
	interpolated := false
	verbatim := false
	for len(lit) > 0 && (lit[0] == '$' || lit[0] == '@') {
		if lit[0] == '$' {
			interpolated = true
		} else {
			verbatim = true
		}
		lit = lit[1:]
	}

	var value string
	switch {
	case strings.HasPrefix(lit, `"""`) && strings.HasSuffix(lit, `"""`) && len(lit) >= 6:
		value = strings.TrimSpace(lit[3 : len(lit)-3])
	case len(lit) >= 2 && lit[0] == '"' && lit[len(lit)-1] == '"':
		inner := lit[1 : len(lit)-1]
		if verbatim {
			value = strings.ReplaceAll(inner, `""`, `"`)
		} else if unquoted, err := strconv.Unquote(lit); err == nil {
			value = unquoted
		} else {
			value = inner
		}
	default:
		return "", false
	}

	if interpolated {
		if strings.Contains(strings.ReplaceAll(value, "{{", ""), "{") {
			return "", false
		}
		value = strings.ReplaceAll(strings.ReplaceAll(value, "{{", "{"), "}}", "}")
	}
	return value, true
}

// argText reconstructs an argument for diagnostics
func argText(arg *AttributeArg) string {
	var sb strings.Builder
	switch v := arg.Value; {
	case v.TypeOf != nil:
		sb.WriteString("typeof(" + dottedName(v.TypeOf) + ")")
	case v.NameOf != nil:
		sb.WriteString("nameof(" + dottedName(v.NameOf) + ")")
	case v.String != nil:
		sb.WriteString(*v.String)
	case v.Token != nil:
		sb.WriteString(argTokenText(v.Token))
	}
	for _, tok := range arg.Rest {
		sb.WriteString(argTokenText(tok))
	}
	return sb.String()
}

func argTokenText(tok *ArgToken) string {
	if tok.Group != nil {
		return groupText(tok.Group)
	}
	return tok.Token
}

func groupText(g *ArgGroup) string {
	var sb strings.Builder
	sb.WriteString("(")
	for _, tok := range g.Tokens {
		if tok.Group != nil {
			sb.WriteString(groupText(tok.Group))
		} else {
			sb.WriteString(tok.Token)
		}
	}
	sb.WriteString(")")
	return sb.String()
}
