package annotations

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/proxygen/internal/models"
)

func build(t *testing.T, sources ...string) *models.Snapshot {
	t.Helper()
	return buildWith(t, NewBuilder("ProxyGen", "Proxy"), sources...)
}

func buildWith(t *testing.T, b *Builder, sources ...string) *models.Snapshot {
	t.Helper()
	parser := NewParser()
	for i, src := range sources {
		path := fmt.Sprintf("src/File%d.cs", i)
		file, err := parser.ParseString(path, src)
		require.NoError(t, err)
		b.Add(path, file)
	}
	return b.Build()
}

func TestBuildSimpleBinding(t *testing.T) {
	snapshot := build(t, `
namespace Test;

public interface IMyInterface
{
    void MyMethod();
}

[ProxyGen.Proxy(typeof(IMyInterface), "_inner")]
public partial class MyInterfaceProxy : IMyInterface
{
    private IMyInterface _inner;
    public MyInterfaceProxy(IMyInterface inner)
    {
        _inner = inner;
    }
}
`)

	contract, ok := snapshot.Lookup("Test.IMyInterface")
	require.True(t, ok)
	require.Len(t, contract.Members, 1)
	method := contract.Members[0].(*models.Method)
	assert.Equal(t, "MyMethod", method.Name)
	assert.Equal(t, "void", method.ReturnType)
	assert.Empty(t, method.Parameters)
	assert.Equal(t, "src/File0.cs", contract.Source)

	require.Len(t, snapshot.Targets, 1)
	target := snapshot.Targets[0]
	assert.Equal(t, "Test.MyInterfaceProxy", target.QualifiedName())
	assert.Equal(t, "public", target.Visibility)
	assert.Equal(t, "class", target.Kind)
	require.Len(t, target.Members, 1)
	assert.Equal(t, models.MethodKindConstructor, target.Members[0].(*models.Method).Kind)

	require.Len(t, snapshot.Bindings, 1)
	binding := snapshot.Bindings[0]
	assert.Same(t, target, binding.Target)
	assert.Equal(t, "Test.IMyInterface", binding.Contract)
	assert.Equal(t, "_inner", binding.Accessor)
	assert.Equal(t, models.OriginAttribute, binding.Origin)
	assert.Equal(t, 9, target.Line)
	assert.Empty(t, snapshot.Skipped)
}

func TestBuildInheritedFrameworkContract(t *testing.T) {
	snapshot := build(t, `
namespace Test;

public interface IBaseInterface : System.IDisposable
{
    string MyBaseProp { get; set; }
}

public interface IMyInterface : IBaseInterface
{
    string MyProp { get; set; }
}
`)

	base, ok := snapshot.Lookup("Test.IBaseInterface")
	require.True(t, ok)
	assert.Equal(t, []string{"System.IDisposable"}, base.Ancestors)

	derived, ok := snapshot.Lookup("Test.IMyInterface")
	require.True(t, ok)
	assert.Equal(t, []string{"Test.IBaseInterface"}, derived.Ancestors)

	disposable, ok := snapshot.Lookup("System.IDisposable")
	require.True(t, ok)
	assert.Equal(t, "Dispose", disposable.Members[0].MemberName())
}

func TestBuildTypeNormalization(t *testing.T) {
	snapshot := build(t, `
using System;
using System.Collections.Generic;
using System.Threading.Tasks;

namespace Test
{
    public class Foo { }

    public interface IThing
    {
        String A();
        System.Int32 B();
        Task<string> C();
        Nullable<int> D();
        List<Foo> E();
        Unknown.Type F();
        global::System.Threading.Tasks.ValueTask G();
        IDictionary<string, Foo[]> H();
        (int Count, Foo Item) I();
    }
}
`)

	contract, ok := snapshot.Lookup("Test.IThing")
	require.True(t, ok)

	returns := make([]string, 0, len(contract.Members))
	for _, m := range contract.Members {
		returns = append(returns, m.(*models.Method).ReturnType)
	}
	assert.Equal(t, []string{
		"string",
		"int",
		"System.Threading.Tasks.Task<string>",
		"int?",
		"System.Collections.Generic.List<Test.Foo>",
		"Unknown.Type",
		"System.Threading.Tasks.ValueTask",
		"System.Collections.Generic.IDictionary<string, Test.Foo[]>",
		"(int Count, Test.Foo Item)",
	}, returns)
}

func TestBuildWithoutImportKeepsShortName(t *testing.T) {
	snapshot := build(t, `
namespace Test;
public interface IThing { Task Run(); }
`)

	contract, _ := snapshot.Lookup("Test.IThing")
	assert.Equal(t, "Task", contract.Members[0].(*models.Method).ReturnType)
}

func TestBuildParametersAndMemberKinds(t *testing.T) {
	snapshot := build(t, `
namespace Test;

public interface IStore
{
    bool TryGet(in string key, out int value, ref int counter, params object[] rest);
    T Get<T>(string key);
    int this[int index] { get; }
    event System.EventHandler Changed;
    static abstract IStore Create();
    string Name => "store";
    string Label { get; init; }
}
`)

	contract, ok := snapshot.Lookup("Test.IStore")
	require.True(t, ok)
	require.Len(t, contract.Members, 6)

	tryGet := contract.Members[0].(*models.Method)
	assert.Equal(t, []models.Parameter{
		{Type: "string", Name: "key", Modifier: "in"},
		{Type: "int", Name: "value", Modifier: "out"},
		{Type: "int", Name: "counter", Modifier: "ref"},
		{Type: "object[]", Name: "rest", Modifier: "params"},
	}, tryGet.Parameters)

	assert.True(t, contract.Members[1].(*models.Method).Generic)
	assert.Equal(t, models.MethodKindIndexer, contract.Members[2].(*models.Method).Kind)
	assert.Equal(t, models.MethodKindEvent, contract.Members[3].(*models.Method).Kind)

	name := contract.Members[4].(*models.Property)
	assert.True(t, name.HasGetter)
	assert.False(t, name.HasSetter)

	label := contract.Members[5].(*models.Property)
	assert.True(t, label.HasGetter)
	assert.False(t, label.HasSetter)
	assert.True(t, label.HasInit)
}

func TestBuildMarkerForms(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		bound bool
	}{
		{
			name:  "qualified",
			src:   `namespace Test; [ProxyGen.Proxy(typeof(I), "_i")] class P { } interface I { }`,
			bound: true,
		},
		{
			name:  "qualified with suffix",
			src:   `namespace Test; [ProxyGen.ProxyAttribute(typeof(I), "_i")] class P { } interface I { }`,
			bound: true,
		},
		{
			name:  "global alias",
			src:   `namespace Test; [global::ProxyGen.Proxy(typeof(I), "_i")] class P { } interface I { }`,
			bound: true,
		},
		{
			name:  "short name with using",
			src:   `using ProxyGen; namespace Test; [Proxy(typeof(I), "_i")] class P { } interface I { }`,
			bound: true,
		},
		{
			name:  "short name inside marker namespace",
			src:   `namespace ProxyGen.Proxies { [Proxy(typeof(I), "_i")] class P { } interface I { } }`,
			bound: true,
		},
		{
			name:  "using alias",
			src:   `using Forward = ProxyGen.ProxyAttribute; namespace Test; [Forward(typeof(I), "_i")] class P { } interface I { }`,
			bound: true,
		},
		{
			name:  "short name without using",
			src:   `namespace Test; [Proxy(typeof(I), "_i")] class P { } interface I { }`,
			bound: false,
		},
		{
			name:  "other namespace",
			src:   `namespace Test; [Other.Proxy(typeof(I), "_i")] class P { } interface I { }`,
			bound: false,
		},
		{
			name:  "attribute target other than type",
			src:   `namespace Test; [return: ProxyGen.Proxy(typeof(I), "_i")] class P { } interface I { }`,
			bound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := build(t, tt.src)
			if tt.bound {
				require.Len(t, snapshot.Bindings, 1)
				assert.Equal(t, "_i", snapshot.Bindings[0].Accessor)
				assert.Contains(t, snapshot.Bindings[0].Contract, ".I")
			} else {
				assert.Empty(t, snapshot.Bindings)
			}
			assert.Empty(t, snapshot.Skipped)
		})
	}
}

func TestBuildMarkerArguments(t *testing.T) {
	tests := []struct {
		name     string
		args     string
		accessor string
		reason   *models.SkipReason
	}{
		{name: "positional", args: `typeof(I), "_inner"`, accessor: "_inner"},
		{name: "nameof accessor", args: `typeof(I), nameof(_inner)`, accessor: "_inner"},
		{name: "nameof qualified", args: `typeof(I), nameof(this.Inner)`, accessor: "Inner"},
		{name: "named reversed", args: `proxyAccessor: "_x", proxyType: typeof(I)`, accessor: "_x"},
		{name: "verbatim string", args: `typeof(I), @"_v"`, accessor: "_v"},
		{name: "empty accessor still binds", args: `typeof(I), ""`, accessor: ""},
		{name: "no arguments", args: ``, reason: reasonPtr(models.SkipMissingContract)},
		{name: "null contract", args: `null, "_x"`, reason: reasonPtr(models.SkipMissingContract)},
		{name: "only contract", args: `typeof(I)`, reason: reasonPtr(models.SkipMalformedArguments)},
		{name: "string contract", args: `"I", "_x"`, reason: reasonPtr(models.SkipMalformedArguments)},
		{name: "numeric accessor", args: `typeof(I), 42`, reason: reasonPtr(models.SkipMalformedArguments)},
		{name: "concatenated accessor", args: `typeof(I), "_a" + "b"`, reason: reasonPtr(models.SkipMalformedArguments)},
		{name: "interpolated accessor", args: `typeof(I), $"{Name}"`, reason: reasonPtr(models.SkipMalformedArguments)},
		{name: "three arguments", args: `typeof(I), "_x", 1`, reason: reasonPtr(models.SkipMalformedArguments)},
		{name: "property assignment", args: `typeof(I), "_x", ProxyType = null`, reason: reasonPtr(models.SkipMalformedArguments)},
		{name: "unknown name", args: `typeof(I), target: "_x"`, reason: reasonPtr(models.SkipMalformedArguments)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := fmt.Sprintf(`namespace Test; interface I { } [ProxyGen.Proxy(%s)] class P { }`, tt.args)
			snapshot := build(t, src)

			if tt.reason == nil {
				require.Len(t, snapshot.Bindings, 1)
				assert.Equal(t, tt.accessor, snapshot.Bindings[0].Accessor)
				assert.Equal(t, "Test.I", snapshot.Bindings[0].Contract)
				assert.Empty(t, snapshot.Skipped)
				return
			}
			assert.Empty(t, snapshot.Bindings)
			require.Len(t, snapshot.Skipped, 1)
			assert.Equal(t, *tt.reason, snapshot.Skipped[0].Reason)
			assert.Equal(t, "Test.P", snapshot.Skipped[0].Target)
			assert.NotEmpty(t, snapshot.Skipped[0].Detail)
		})
	}
}

func reasonPtr(r models.SkipReason) *models.SkipReason { return &r }

func TestBuildFirstWellFormedMarkerWins(t *testing.T) {
	snapshot := build(t, `
namespace Test;
interface IA { }
interface IB { }

[ProxyGen.Proxy(typeof(IA))]
[ProxyGen.Proxy(typeof(IA), "_a")]
[ProxyGen.Proxy(typeof(IB), "_b")]
class P { }
`)

	require.Len(t, snapshot.Bindings, 1)
	assert.Equal(t, "Test.IA", snapshot.Bindings[0].Contract)
	require.Len(t, snapshot.Skipped, 2)
	assert.Equal(t, models.SkipMalformedArguments, snapshot.Skipped[0].Reason)
	assert.Equal(t, models.SkipDuplicateBinding, snapshot.Skipped[1].Reason)
	assert.Equal(t, 8, snapshot.Skipped[1].Line)
}

func TestBuildUnsupportedTargets(t *testing.T) {
	snapshot := build(t, `
namespace Test;
interface I { }

public class Outer
{
    [ProxyGen.Proxy(typeof(I), "_i")]
    public partial class Inner { }
}

[ProxyGen.Proxy(typeof(I), "_i")]
public partial class Generic<T> { }

[ProxyGen.Proxy(typeof(I), "_i")]
public partial interface IAnnotated { }
`)

	assert.Empty(t, snapshot.Bindings)
	require.Len(t, snapshot.Skipped, 3)
	for _, s := range snapshot.Skipped {
		assert.Equal(t, models.SkipUnsupportedTarget, s.Reason)
	}
	assert.Equal(t, "Test.Outer.Inner", snapshot.Skipped[0].Target)
	assert.Equal(t, "Test.Generic", snapshot.Skipped[1].Target)
	assert.Equal(t, "Test.IAnnotated", snapshot.Skipped[2].Target)

	_, ok := snapshot.FindTarget("Test.Outer")
	assert.True(t, ok)
	_, ok = snapshot.FindTarget("Test.Generic")
	assert.False(t, ok)
}

func TestBuildMergesPartialDeclarations(t *testing.T) {
	snapshot := build(t,
		`
namespace Test;
public partial interface IThing { void A(); }
internal partial class Proxy
{
    public void A() { }
}
`,
		`
using System;
namespace Test;
public partial interface IThing : IDisposable { void B(); }

[ProxyGen.Proxy(typeof(IThing), "_inner")]
internal partial class Proxy
{
    public void B() { }
}
`)

	contract, ok := snapshot.Lookup("Test.IThing")
	require.True(t, ok)
	assert.Len(t, contract.Members, 2)
	assert.Equal(t, []string{"System.IDisposable"}, contract.Ancestors)

	require.Len(t, snapshot.Targets, 1)
	target := snapshot.Targets[0]
	assert.Len(t, target.Members, 2)
	assert.Equal(t, "internal", target.Visibility)
	assert.Equal(t, "src/File1.cs", target.Source)
}

func TestBuildGlobalUsingsApplyToAllFiles(t *testing.T) {
	snapshot := build(t,
		`global using System.Threading.Tasks;`,
		`namespace Test; interface IThing { Task Run(); }`,
	)

	contract, ok := snapshot.Lookup("Test.IThing")
	require.True(t, ok)
	assert.Equal(t, "System.Threading.Tasks.Task", contract.Members[0].(*models.Method).ReturnType)
}

func TestBuildImplicitUsings(t *testing.T) {
	b := NewBuilder("ProxyGen", "Proxy", WithImplicitUsings(DefaultImplicitUsings()...))
	snapshot := buildWith(t, b,
		`using System.Threading.Tasks;
namespace Test;
public interface IThing : IDisposable { Task<string> Get(); }`,
		`namespace Test;
[ProxyGen.Proxy(typeof(IThing), "_inner")]
public partial class ThingProxy { public Task<string> Get() { return null; } }`,
	)

	contract, ok := snapshot.Lookup("Test.IThing")
	require.True(t, ok)
	assert.Equal(t, []string{"System.IDisposable"}, contract.Ancestors)

	target, ok := snapshot.FindTarget("Test.ThingProxy")
	require.True(t, ok)
	require.Len(t, target.Members, 1)
	assert.Equal(t, contract.Members[0].Identity(), target.Members[0].Identity())
}

func TestBuildTargetKinds(t *testing.T) {
	snapshot := build(t, `
namespace Test;
interface I { }
[ProxyGen.Proxy(typeof(I), "_i")] public sealed partial record struct A { }
[ProxyGen.Proxy(typeof(I), "_i")] partial struct B { }
[ProxyGen.Proxy(typeof(I), "_i")] protected internal partial class C { }
`)

	require.Len(t, snapshot.Targets, 3)
	assert.Equal(t, "record struct", snapshot.Targets[0].Kind)
	assert.Equal(t, "public", snapshot.Targets[0].Visibility)
	assert.Equal(t, "struct", snapshot.Targets[1].Kind)
	assert.Equal(t, "", snapshot.Targets[1].Visibility)
	assert.Equal(t, "protected internal", snapshot.Targets[2].Visibility)
}

func TestBuildGlobalNamespace(t *testing.T) {
	snapshot := build(t, `
interface IThing { void Run(); }
[ProxyGen.Proxy(typeof(IThing), "_inner")]
class Proxy { }
`)

	require.Len(t, snapshot.Bindings, 1)
	assert.Equal(t, "IThing", snapshot.Bindings[0].Contract)
	assert.Equal(t, "", snapshot.Bindings[0].Target.Namespace)
}

func TestBuildCustomMarker(t *testing.T) {
	b := NewBuilder("Acme.Generators", "ForwardToAttribute")
	assert.Equal(t, "Acme.Generators.ForwardToAttribute", b.MarkerName())

	snapshot := buildWith(t, b, `
using Acme.Generators;
namespace Test;
interface I { }
[ForwardTo(typeof(I), "_i")] class A { }
[ProxyGen.Proxy(typeof(I), "_i")] class B { }
`)

	require.Len(t, snapshot.Bindings, 1)
	assert.Equal(t, "A", snapshot.Bindings[0].Target.Name)
}

func TestBuildExplicitImplementationKeepsQualifiedName(t *testing.T) {
	snapshot := build(t, `
namespace Test;
interface I { int M(int a); }
[ProxyGen.Proxy(typeof(I), "_i")]
partial class P
{
    int I.M(int a) => 1;
}
`)

	target := snapshot.Targets[0]
	require.Len(t, target.Members, 1)
	assert.Equal(t, "I.M", target.Members[0].MemberName())
}

func TestUnquoteString(t *testing.T) {
	tests := []struct {
		lit   string
		value string
		ok    bool
	}{
		{`"_inner"`, "_inner", true},
		{`"a\"b"`, `a"b`, true},
		{`@"a""b"`, `a"b`, true},
		{`$"plain"`, "plain", true},
		{`$"{hole}"`, "", false},
		{`$"{{escaped}}"`, "{escaped}", true},
		{`"""raw"""`, "raw", true},
		{`_inner`, "", false},
	}

	for _, tt := range tests {
		value, ok := unquoteString(tt.lit)
		assert.Equal(t, tt.ok, ok, tt.lit)
		assert.Equal(t, tt.value, value, tt.lit)
	}
}
