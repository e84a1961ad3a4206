package emitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/proxygen/internal/models"
)

const header = "// <auto-generated/>\n// Code generated by proxygen. DO NOT EDIT.\n\n"

func proxyTarget(members ...models.Member) *models.TargetType {
	return &models.TargetType{
		Name:       "MyInterfaceProxy",
		Namespace:  "Test",
		Visibility: "public",
		Kind:       "class",
		Members:    members,
		Source:     "src/MyInterfaceProxy.cs",
	}
}

func emit(t *testing.T, target *models.TargetType, members ...models.Member) string {
	t.Helper()
	artifact, ok := New(DefaultOptions()).Emit(target, "Test.IMyInterface", members, "_inner")
	require.True(t, ok)
	return artifact.Content
}

func TestEmit_VoidMethodNoParameters(t *testing.T) {
	out := emit(t, proxyTarget(), &models.Method{Name: "MyMethod", ReturnType: "void"})

	expected := header + `namespace Test;

public partial class MyInterfaceProxy : Test.IMyInterface
{
    public void MyMethod() =>
        _inner.MyMethod();
}
`
	assert.Equal(t, expected, out)
}

func TestEmit_TypedTaskIsAwaited(t *testing.T) {
	out := emit(t, proxyTarget(), &models.Method{Name: "MyMethod", ReturnType: "System.Threading.Tasks.Task<string>"})

	assert.Contains(t, out, "    public async System.Threading.Tasks.Task<string> MyMethod() =>\n"+
		"        await _inner.MyMethod().ConfigureAwait(false);\n")
}

func TestEmit_ReadOnlyProperty(t *testing.T) {
	out := emit(t, proxyTarget(), &models.Property{Name: "MyProp", Type: "string", HasGetter: true})

	assert.Contains(t, out, "    public string MyProp\n    {\n        get => _inner.MyProp;\n    }\n")
	assert.NotContains(t, out, "set =>")
}

func TestEmit_WriteOnlyProperty(t *testing.T) {
	out := emit(t, proxyTarget(), &models.Property{Name: "MyProp", Type: "string", HasSetter: true})

	assert.Contains(t, out, "        set => _inner.MyProp = value;\n")
	assert.NotContains(t, out, "get =>")
}

func TestEmit_ReadWriteProperty(t *testing.T) {
	out := emit(t, proxyTarget(), &models.Property{Name: "MyProp", Type: "string", HasGetter: true, HasSetter: true})

	assert.Contains(t, out, "        get => _inner.MyProp;\n        set => _inner.MyProp = value;\n")
}

func TestEmit_InitOnlyProperty(t *testing.T) {
	out := emit(t, proxyTarget(), &models.Property{Name: "MyProp", Type: "string", HasGetter: true, HasInit: true})

	assert.Contains(t, out, "        get => _inner.MyProp;\n        init => _inner.MyProp = value;\n")
	assert.NotContains(t, out, "set =>")
}

func TestEmit_PropertiesBeforeMethods(t *testing.T) {
	out := emit(t, proxyTarget(),
		&models.Method{Name: "First", ReturnType: "void"},
		&models.Property{Name: "Second", Type: "int", HasGetter: true},
		&models.Method{Name: "Third", ReturnType: "void"},
		&models.Property{Name: "Fourth", Type: "int", HasGetter: true},
	)

	order := []string{"int Second", "int Fourth", "void First()", "void Third()"}
	last := -1
	for _, fragment := range order {
		idx := strings.Index(out, fragment)
		require.GreaterOrEqual(t, idx, 0, "missing %q", fragment)
		assert.Greater(t, idx, last, "%q out of order", fragment)
		last = idx
	}
}

func TestEmit_ParametersReuseContractNames(t *testing.T) {
	out := emit(t, proxyTarget(), &models.Method{
		Name:       "MyMethod",
		ReturnType: "string",
		Parameters: []models.Parameter{
			{Type: "object", Name: "param1"},
			{Type: "int", Name: "param2"},
			{Type: "string", Name: "param3"},
		},
	})

	assert.Contains(t, out, "    public string MyMethod(object param1, int param2, string param3) =>\n"+
		"        _inner.MyMethod(param1, param2, param3);\n")
}

func TestEmit_RefKindsForwarded(t *testing.T) {
	out := emit(t, proxyTarget(), &models.Method{
		Name:       "TryGet",
		ReturnType: "bool",
		Parameters: []models.Parameter{
			{Type: "string", Name: "key", Modifier: "in"},
			{Type: "int", Name: "value", Modifier: "out"},
			{Type: "int", Name: "counter", Modifier: "ref"},
			{Type: "object[]", Name: "rest", Modifier: "params"},
		},
	})

	assert.Contains(t, out, "public bool TryGet(in string key, out int value, ref int counter, params object[] rest) =>")
	assert.Contains(t, out, "_inner.TryGet(in key, out value, ref counter, rest);")
}

func TestEmit_SkipsImplementedMembers(t *testing.T) {
	target := proxyTarget(
		&models.Method{Name: "MyMethod1", ReturnType: "int", Parameters: []models.Parameter{{Type: "int", Name: "x"}}},
		&models.Property{Name: "MyProp1", Type: "int", HasGetter: true},
	)
	out := emit(t, target,
		&models.Method{Name: "MyMethod1", ReturnType: "int", Parameters: []models.Parameter{{Type: "int", Name: "a"}}},
		&models.Method{Name: "MyMethod2", ReturnType: "int", Parameters: []models.Parameter{{Type: "int", Name: "b"}}},
		&models.Property{Name: "MyProp1", Type: "int", HasGetter: true, HasSetter: true},
		&models.Property{Name: "MyProp2", Type: "int", HasGetter: true, HasSetter: true},
	)

	assert.NotContains(t, out, "MyMethod1")
	assert.NotContains(t, out, "MyProp1")
	assert.Equal(t, 1, strings.Count(out, "public int MyMethod2(int b) =>"))
	assert.Equal(t, 1, strings.Count(out, "public int MyProp2"))
}

func TestEmit_OverloadWithDifferentSignatureStillForwarded(t *testing.T) {
	target := proxyTarget(&models.Method{Name: "Get", ReturnType: "string", Parameters: []models.Parameter{{Type: "int", Name: "id"}}})
	out := emit(t, target,
		&models.Method{Name: "Get", ReturnType: "string", Parameters: []models.Parameter{{Type: "string", Name: "key"}}},
	)

	assert.Contains(t, out, "public string Get(string key) =>")
}

func TestEmit_EmptyAccessorSkips(t *testing.T) {
	e := New(DefaultOptions())

	_, ok := e.Emit(proxyTarget(), "Test.IMyInterface", nil, "")
	assert.False(t, ok)

	_, ok = e.Emit(proxyTarget(), "Test.IMyInterface", nil, "   ")
	assert.False(t, ok)

	_, ok = e.Emit(nil, "Test.IMyInterface", nil, "_inner")
	assert.False(t, ok)
}

func TestEmit_UnnamedContractOmitsBaseList(t *testing.T) {
	artifact, ok := New(DefaultOptions()).Emit(proxyTarget(), "", nil, "_inner")
	require.True(t, ok)
	assert.Contains(t, artifact.Content, "public partial class MyInterfaceProxy\n{\n")
}

func TestEmit_ArtifactMetadata(t *testing.T) {
	artifact, ok := New(DefaultOptions()).Emit(proxyTarget(), "Test.IMyInterface", nil, "_inner")
	require.True(t, ok)

	assert.Equal(t, "MyInterfaceProxy.g.cs", artifact.Name)
	assert.Equal(t, "src", artifact.Dir)
	assert.Equal(t, "Test.MyInterfaceProxy", artifact.Target)
}

func TestEmit_CustomExtension(t *testing.T) {
	opts := DefaultOptions()
	opts.Extension = ".cs"
	artifact, ok := New(opts).Emit(proxyTarget(), "Test.IMyInterface", nil, "_inner")
	require.True(t, ok)
	assert.Equal(t, "MyInterfaceProxy.cs", artifact.Name)
}

func TestEmit_WrappingDeclaration(t *testing.T) {
	target := &models.TargetType{Name: "Wrapper", Kind: "struct", Visibility: "internal"}
	artifact, ok := New(DefaultOptions()).Emit(target, "IThing", nil, "_thing")
	require.True(t, ok)

	assert.Equal(t, header+"internal partial struct Wrapper : IThing\n{\n}\n", artifact.Content)
	assert.Equal(t, "", artifact.Dir)
}

func TestEmit_GeneratedCodeAttribute(t *testing.T) {
	opts := DefaultOptions()
	opts.GeneratedCode = true
	opts.ToolVersion = "v1.4"
	artifact, ok := New(opts).Emit(proxyTarget(), "Test.IMyInterface", nil, "_inner")
	require.True(t, ok)

	assert.Contains(t, artifact.Content,
		"[System.CodeDom.Compiler.GeneratedCode(\"proxygen\",\"1.4.0\")]\npublic partial class MyInterfaceProxy")
}

func TestEmit_Deterministic(t *testing.T) {
	members := []models.Member{
		&models.Property{Name: "A", Type: "string", HasGetter: true},
		&models.Method{Name: "B", ReturnType: "System.Threading.Tasks.ValueTask"},
		&models.Method{Name: "C", ReturnType: "int", Parameters: []models.Parameter{{Type: "int", Name: "x"}}},
	}
	e := New(DefaultOptions())

	first, ok := e.Emit(proxyTarget(), "Test.IMyInterface", members, "_inner")
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, _ := e.Emit(proxyTarget(), "Test.IMyInterface", members, "_inner")
		assert.Equal(t, first, again)
	}
}

func TestBootstrap(t *testing.T) {
	artifact, err := New(DefaultOptions()).Bootstrap()
	require.NoError(t, err)

	assert.Equal(t, "ProxyAttribute.g.cs", artifact.Name)
	assert.True(t, strings.HasPrefix(artifact.Content, header+"using System;\n"))
	assert.Contains(t, artifact.Content, "namespace ProxyGen;")
	assert.Empty(t, artifact.Target)
}

func TestBootstrap_CustomMarker(t *testing.T) {
	opts := DefaultOptions()
	opts.MarkerNamespace = "Acme.Generators"
	opts.MarkerName = "ForwardToAttribute"
	artifact, err := New(opts).Bootstrap()
	require.NoError(t, err)

	assert.Equal(t, "ForwardToAttribute.g.cs", artifact.Name)
	assert.Contains(t, artifact.Content, "namespace Acme.Generators;")
	assert.Contains(t, artifact.Content, "internal class ForwardToAttribute : Attribute")
}

func TestPending(t *testing.T) {
	effective := []models.Member{
		&models.Property{Name: "P", Type: "int", HasGetter: true, HasSetter: true},
		&models.Method{Name: "M", ReturnType: "void"},
	}
	existing := []models.Member{
		&models.Property{Name: "P", Type: "int", HasSetter: true},
	}

	pending := Pending(effective, existing)
	require.Len(t, pending, 1)
	assert.Equal(t, "M", pending[0].MemberName())

	// same name, different type is not a match
	existing = []models.Member{&models.Property{Name: "P", Type: "long", HasGetter: true}}
	assert.Len(t, Pending(effective, existing), 2)
}
