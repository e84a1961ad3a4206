package templates

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerHeaderTemplates()
	registry.registerMarkerTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// registerHeaderTemplates registers the header every generated file starts with
func (tr *TemplateRegistry) registerHeaderTemplates() {
	tr.templates["file-header"] = `// <auto-generated/>
// Code generated by {{.Tool}}. DO NOT EDIT.
`
}

// registerMarkerTemplates registers the marker attribute declaration emitted once per pass
func (tr *TemplateRegistry) registerMarkerTemplates() {
	tr.templates["proxy-attribute"] = `using System;

namespace {{.Namespace}};

[AttributeUsage(AttributeTargets.Class | AttributeTargets.Struct)]
internal class {{.Name}}Attribute : Attribute
{
    public {{.Name}}Attribute(Type proxyType, string proxyAccessor)
    {
        ProxyType = proxyType;
        ProxyAccessor = proxyAccessor;
    }

    public Type ProxyType { get; }
    public string ProxyAccessor { get; }
}
`
}
