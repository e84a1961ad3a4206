// Package templates holds the fixed text fragments of generated C# files.
package templates

import (
	"bytes"
	"fmt"
	"text/template"
)

// HeaderData feeds the file-header template
type HeaderData struct {
	Tool string
}

// MarkerData feeds the proxy-attribute template
type MarkerData struct {
	Namespace string
	Name      string // attribute name without the Attribute suffix
}

var defaultRegistry = NewTemplateRegistry()

// executeTemplate parses and executes a template with the given data
func executeTemplate(name, templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

// Render executes a registered template by name
func Render(name string, data interface{}) (string, error) {
	templateStr, ok := defaultRegistry.Get(name)
	if !ok {
		return "", fmt.Errorf("template %s is not registered", name)
	}
	return executeTemplate(name, templateStr, data)
}

// GenerateHeader renders the generated-file header
func GenerateHeader(tool string) (string, error) {
	return Render("file-header", HeaderData{Tool: tool})
}

// GenerateMarkerAttribute renders the marker attribute declaration
func GenerateMarkerAttribute(namespace, name string) (string, error) {
	return Render("proxy-attribute", MarkerData{Namespace: namespace, Name: name})
}
