package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *File {
	t.Helper()
	file, err := NewParser().ParseString("test.cs", src)
	require.NoError(t, err)
	return file
}

func firstType(t *testing.T, entries []*Entry) *TypeDecl {
	t.Helper()
	for _, e := range entries {
		if e.Member != nil && e.Member.Body.Type != nil {
			return e.Member.Body.Type
		}
		if e.Namespace != nil {
			if td := firstType(t, e.Namespace.Entries); td != nil {
				return td
			}
		}
	}
	return nil
}

func TestParseFileScopedNamespace(t *testing.T) {
	file := parse(t, `
using System;
using System.Threading.Tasks;

namespace Test.Inner;

public interface IMyInterface
{
    void MyMethod();
}
`)

	require.Len(t, file.Entries, 3)
	assert.Equal(t, "System", dottedName(file.Entries[0].Using.Target))
	ns := file.Entries[2].Namespace
	require.NotNil(t, ns)
	assert.True(t, ns.FileScoped)
	assert.Equal(t, []string{"Test", "Inner"}, ns.Name)

	td := firstType(t, file.Entries)
	require.NotNil(t, td)
	assert.Equal(t, "interface", td.Kind)
	assert.Equal(t, "IMyInterface", td.Name)
	require.Len(t, td.Members, 1)
	method := td.Members[0].Body.Typed
	require.NotNil(t, method)
	assert.Equal(t, "MyMethod", memberName(method.Name))
	assert.NotNil(t, method.Tail.Method)
}

func TestParseBlockNamespaces(t *testing.T) {
	file := parse(t, `
namespace Outer
{
    using Inner;

    namespace Nested
    {
        class A {}
    }

    struct B {};
}
`)

	require.Len(t, file.Entries, 1)
	outer := file.Entries[0].Namespace
	require.NotNil(t, outer)
	assert.False(t, outer.FileScoped)
	require.Len(t, outer.Entries, 3)
	assert.NotNil(t, outer.Entries[0].Using)
	assert.Equal(t, []string{"Nested"}, outer.Entries[1].Namespace.Name)
	assert.Equal(t, "struct", outer.Entries[2].Member.Body.Type.Kind)
}

func TestParseUsingForms(t *testing.T) {
	file := parse(t, `
global using System.Threading;
using static System.Math;
using Repo = Acme.Data.IRepository<int>;
`)

	require.Len(t, file.Entries, 3)
	assert.True(t, file.Entries[0].Using.Global)
	assert.True(t, file.Entries[1].Using.Static)
	assert.Equal(t, "Repo", file.Entries[2].Using.Alias)
	assert.True(t, file.Entries[2].Using.Target.Parts[2].Generic)
}

func TestParseMarkerAttribute(t *testing.T) {
	file := parse(t, `
[assembly: System.Runtime.CompilerServices.InternalsVisibleTo("Tests")]

[ProxyGen.Proxy(typeof(IMyInterface), "_inner")]
[Obsolete]
public partial class MyInterfaceProxy : IMyInterface
{
}
`)

	require.Len(t, file.Entries, 2)
	assert.Equal(t, "assembly", file.Entries[0].Global.Target)

	member := file.Entries[1].Member
	require.Len(t, member.Attributes, 2)
	attr := member.Attributes[0].Attributes[0]
	assert.Equal(t, "ProxyGen.Proxy", dottedName(attr.Name))
	require.Len(t, attr.Arguments, 2)
	require.NotNil(t, attr.Arguments[0].Value.TypeOf)
	assert.Equal(t, "IMyInterface", dottedName(attr.Arguments[0].Value.TypeOf))
	require.NotNil(t, attr.Arguments[1].Value.String)
	assert.Equal(t, `"_inner"`, *attr.Arguments[1].Value.String)
	assert.Equal(t, []string{"public", "partial"}, member.Modifiers)
	assert.Equal(t, 4, attr.Pos.Line)
}

func TestParseNamedAttributeArguments(t *testing.T) {
	file := parse(t, `
[Proxy(proxyAccessor: nameof(_inner), proxyType: typeof(global::Test.IThing))]
class P {}
`)

	args := file.Entries[0].Member.Attributes[0].Attributes[0].Arguments
	require.Len(t, args, 2)
	assert.Equal(t, "proxyAccessor", args[0].Name)
	assert.Equal(t, ":", args[0].Assign)
	assert.Equal(t, "_inner", dottedName(args[0].Value.NameOf))
	assert.Equal(t, "proxyType", args[1].Name)
	assert.True(t, args[1].Value.TypeOf.Global)
}

func TestParseMemberShapes(t *testing.T) {
	file := parse(t, `
public class Everything<T> : Base<T>, IThing where T : class, new()
{
    private readonly IThing _inner = Create(1, 2);
    public const int Max = 10, Min = 0;
    public event EventHandler Changed;
    public event EventHandler Custom { add { } remove { } }

    public Everything(IThing inner) : base(inner) { _inner = inner; }
    static Everything() { }
    ~Everything() { }

    public string Name { get; private set; } = "x";
    public int Count => _items.Count;
    public int this[int index] { get => _items[index]; set { _items[index] = value; } }

    public async Task<(int a, string b)> RunAsync(ref int x, out string y, in long z, params object[] rest) { y = ""; return (1, "b"); }
    public U Convert<U>(T value) where U : struct => default;
    void IThing.Explicit() { }

    public static Everything<T> operator +(Everything<T> a, Everything<T> b) => a;
    public static bool operator <(Everything<T> a, Everything<T> b) => true;
    public static bool operator >(Everything<T> a, Everything<T> b) => false;
    public static implicit operator string(Everything<T> e) => e.Name;

    private enum Mode { A, B }
    public delegate void Handler<in TArg>(TArg arg);
    private class Nested { }
}
`)

	td := firstType(t, file.Entries)
	require.NotNil(t, td)
	require.Len(t, td.TypeParams, 1)
	require.Len(t, td.Bases, 2)
	require.Len(t, td.Constraints, 1)
	assert.True(t, td.Constraints[0].Items[1].New)

	var methods, properties, indexers, fields, operators, conversions, ctors, finalizers, events, nested int
	for _, m := range td.Members {
		b := m.Body
		switch {
		case b.Typed != nil && b.Typed.Operator != nil:
			operators++
		case b.Typed != nil && b.Typed.Tail.Method != nil:
			methods++
		case b.Typed != nil && b.Typed.Tail.Property != nil:
			properties++
		case b.Typed != nil && b.Typed.Tail.Indexer != nil:
			indexers++
		case b.Typed != nil && b.Typed.Tail.Field != nil:
			fields++
		case b.Conversion != nil:
			conversions++
		case b.Constructor != nil:
			ctors++
		case b.Finalizer != nil:
			finalizers++
		case b.Event != nil:
			events++
		case b.Type != nil, b.Enum != nil, b.Delegate != nil:
			nested++
		}
	}

	assert.Equal(t, 3, methods)
	assert.Equal(t, 2, properties)
	assert.Equal(t, 1, indexers)
	assert.Equal(t, 2, fields)
	assert.Equal(t, 3, operators)
	assert.Equal(t, 1, conversions)
	assert.Equal(t, 2, ctors)
	assert.Equal(t, 1, finalizers)
	assert.Equal(t, 2, events)
	assert.Equal(t, 3, nested)
}

func TestParseParameterModifiers(t *testing.T) {
	file := parse(t, `
interface I
{
    bool TryGet(in string key, out int value, ref int counter, params object[] rest, int? optional = null, CancellationToken ct = default);
}
`)

	method := firstType(t, file.Entries).Members[0].Body.Typed.Tail.Method
	require.Len(t, method.Params.Params, 6)
	assert.Equal(t, []string{"in"}, method.Params.Params[0].Modifiers)
	assert.Equal(t, []string{"out"}, method.Params.Params[1].Modifiers)
	assert.Equal(t, []string{"ref"}, method.Params.Params[2].Modifiers)
	assert.Equal(t, []string{"params"}, method.Params.Params[3].Modifiers)
	assert.Equal(t, []string{"[", "]"}, method.Params.Params[3].Type.Suffix)
	assert.Equal(t, []string{"?"}, method.Params.Params[4].Type.Suffix)
	assert.NotEmpty(t, method.Params.Params[5].Default)
}

func TestParsePropertyAccessors(t *testing.T) {
	file := parse(t, `
interface I
{
    string ReadOnly { get; }
    string WriteOnly { set; }
    string Both { get; set; }
    string InitOnly { get; init; }
}
`)

	members := firstType(t, file.Entries).Members
	require.Len(t, members, 4)

	shapes := [][2]bool{}
	for _, m := range members {
		g, s, _ := accessorShape(m.Body.Typed.Tail.Property)
		shapes = append(shapes, [2]bool{g, s})
	}
	assert.Equal(t, [][2]bool{{true, false}, {false, true}, {true, true}, {true, true}}, shapes)
}

func TestParseSkipsBodiesAndTrivia(t *testing.T) {
	file := parse(t, `
// leading comment with { unbalanced brace
#nullable enable
/* block comment } */
public class Worker
{
    /// <summary>Doc comment</summary>
    public void Run()
    {
        var text = "braces { in strings";
        var verbatim = @"quoted ""}"" text";
        var raw = """
            { raw }
            """;
        char c = '{';
        Action a = () => { if (text.Length > 0) { Console.WriteLine($"{text}"); } };
#if DEBUG
        Console.WriteLine(c);
#endif
    }
}
`)

	td := firstType(t, file.Entries)
	require.NotNil(t, td)
	require.Len(t, td.Members, 1)
	assert.NotNil(t, td.Members[0].Body.Typed.Tail.Method.Body.Block)
}

func TestParseTypeReferences(t *testing.T) {
	file := parse(t, `
interface I
{
    System.Collections.Generic.Dictionary<string, List<int[]>> A();
    (int count, string name) B();
    global::System.Threading.Tasks.Task<int?> C();
    int[,] D();
}
`)

	members := firstType(t, file.Entries).Members
	require.Len(t, members, 4)

	a := members[0].Body.Typed.Type
	assert.Len(t, a.Parts, 4)
	assert.Len(t, a.Parts[3].Args, 2)

	b := members[1].Body.Typed.Type
	require.Len(t, b.Tuple, 2)
	assert.Equal(t, "count", b.Tuple[0].Name)

	c := members[2].Body.Typed.Type
	assert.True(t, c.Global)

	d := members[3].Body.Typed.Type
	assert.Equal(t, []string{"[", ",", "]"}, d.Suffix)
}

func TestParseRecords(t *testing.T) {
	file := parse(t, `
public record Person(string Name, int Age);
public record struct Point { public int X { get; init; } }
public sealed record class Wrapper : Base(1) { }
`)

	require.Len(t, file.Entries, 3)
	person := file.Entries[0].Member.Body.Type
	assert.Equal(t, "record", person.Kind)
	assert.True(t, person.Bodiless)
	assert.Len(t, person.Primary.Params, 2)

	point := file.Entries[1].Member.Body.Type
	assert.Equal(t, "struct", point.RecordKind)

	wrapper := file.Entries[2].Member.Body.Type
	assert.Equal(t, "class", wrapper.RecordKind)
	assert.NotNil(t, wrapper.Bases[0].Arguments)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := NewParser().ParseString("broken.cs", `
public class Broken
{
    public void Run() {
}
`)

	require.Error(t, err)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, "broken.cs", syntaxErr.Loc.File)
	assert.Greater(t, syntaxErr.Loc.Line, 0)
	assert.Equal(t, SyntaxErrorCode, syntaxErr.Code())
	assert.Contains(t, err.Error(), "broken.cs:")
}

func TestParseFileUsesSharedParser(t *testing.T) {
	file, err := ParseFile("shared.cs", []byte("namespace A; interface I { }"))
	require.NoError(t, err)
	assert.NotNil(t, firstType(t, file.Entries))
}
