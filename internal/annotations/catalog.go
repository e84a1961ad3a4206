package annotations

import "github.com/toyz/proxygen/internal/models"

// keywordAliases maps framework type names to the C# keywords they are displayed as
var keywordAliases = map[string]string{
	"System.Boolean": "bool",
	"System.Byte":    "byte",
	"System.SByte":   "sbyte",
	"System.Char":    "char",
	"System.Decimal": "decimal",
	"System.Double":  "double",
	"System.Single":  "float",
	"System.Int16":   "short",
	"System.UInt16":  "ushort",
	"System.Int32":   "int",
	"System.UInt32":  "uint",
	"System.Int64":   "long",
	"System.UInt64":  "ulong",
	"System.Object":  "object",
	"System.String":  "string",
	"System.Void":    "void",
}

// keywordTypes are the predefined type keywords, which are never qualified
var keywordTypes = map[string]bool{
	"bool": true, "byte": true, "sbyte": true, "char": true, "decimal": true,
	"double": true, "float": true, "short": true, "ushort": true, "int": true,
	"uint": true, "long": true, "ulong": true, "object": true, "string": true,
	"void": true, "nint": true, "nuint": true, "dynamic": true, "var": true,
}

// wellKnownNamespaces lists the framework types qualified when their namespace is
// imported, keyed by namespace.
var wellKnownNamespaces = map[string][]string{
	"System": {
		"Action", "Attribute", "Boolean", "Byte", "Char", "DateOnly", "DateTime",
		"DateTimeOffset", "Decimal", "Double", "Enum", "EventArgs", "EventHandler",
		"Exception", "Func", "Guid", "IAsyncDisposable", "IComparable", "IDisposable",
		"IEquatable", "IServiceProvider", "Int16", "Int32", "Int64", "Lazy", "Memory",
		"Nullable", "Object", "ReadOnlyMemory", "ReadOnlySpan", "SByte", "Single", "Span",
		"String", "TimeOnly", "TimeSpan", "Tuple", "Type", "UInt16", "UInt32", "UInt64",
		"Uri", "ValueTuple", "Void",
	},
	"System.Threading":       {"CancellationToken", "CancellationTokenSource"},
	"System.Threading.Tasks": {"Task", "ValueTask"},
	"System.Collections.Generic": {
		"Dictionary", "HashSet", "IAsyncEnumerable", "IAsyncEnumerator", "ICollection",
		"IComparer", "IDictionary", "IEnumerable", "IEnumerator", "IEqualityComparer",
		"IList", "IReadOnlyCollection", "IReadOnlyDictionary", "IReadOnlyList",
		"IReadOnlySet", "ISet", "KeyValuePair", "List", "Queue", "Stack",
	},
	"System.IO":       {"Stream", "TextReader", "TextWriter"},
	"System.Linq":     {"IGrouping", "ILookup", "IOrderedEnumerable", "IQueryable"},
	"System.Net.Http": {"HttpClient", "HttpContent", "HttpRequestMessage", "HttpResponseMessage"},
}

// DefaultImplicitUsings returns the namespaces an SDK-style project imports into every
// file when ImplicitUsings is enabled.
func DefaultImplicitUsings() []string {
	return []string{
		"System",
		"System.Collections.Generic",
		"System.IO",
		"System.Linq",
		"System.Net.Http",
		"System.Threading",
		"System.Threading.Tasks",
	}
}

var wellKnownTypes = func() map[string]bool {
	known := make(map[string]bool)
	for ns, names := range wellKnownNamespaces {
		for _, name := range names {
			known[ns+"."+name] = true
		}
	}
	return known
}()

// BuiltinContracts returns the framework contracts user contracts commonly extend.
// Their members match what compiler metadata would report.
func BuiltinContracts() []*models.Contract {
	return []*models.Contract{
		{
			Name: "System.IDisposable",
			Members: []models.Member{
				&models.Method{Name: "Dispose", ReturnType: "void"},
			},
		},
		{
			Name: "System.IAsyncDisposable",
			Members: []models.Member{
				&models.Method{Name: "DisposeAsync", ReturnType: "System.Threading.Tasks.ValueTask"},
			},
		},
	}
}
