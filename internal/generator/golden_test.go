package generator

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/proxygen/internal/annotations"
	"github.com/toyz/proxygen/internal/emitter"
	"golang.org/x/tools/txtar"
)

// TestGolden runs every archive in testdata. Archive members ending in .g.cs are the
// expected artifacts, other .cs members are inputs, and an optional "skipped" member
// lists the expected skip diagnostics one per line. An "implicit_usings" member lists
// namespaces imported into every file, one per line.
func TestGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/*.txtar")
	require.NoError(t, err)
	require.NotEmpty(t, files, "no testdata")

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			require.NoError(t, err)

			var opts []annotations.BuilderOption
			for _, f := range ar.Files {
				if f.Name == "implicit_usings" {
					opts = append(opts, annotations.WithImplicitUsings(strings.Fields(string(f.Data))...))
				}
			}

			parser := annotations.NewParser()
			builder := annotations.NewBuilder(emitter.DefaultMarkerNamespace, emitter.DefaultMarkerName, opts...)
			want := make(map[string]string)
			wantSkipped := ""

			for _, f := range ar.Files {
				switch {
				case f.Name == "implicit_usings":
				case f.Name == "skipped":
					wantSkipped = string(f.Data)
				case strings.HasSuffix(f.Name, ".g.cs"):
					want[f.Name] = string(f.Data)
				case strings.HasSuffix(f.Name, ".cs"):
					parsed, err := parser.ParseFile(f.Name, f.Data)
					require.NoError(t, err, f.Name)
					builder.Add(f.Name, parsed)
				}
			}

			result, err := New(nil, WithBootstrap(false)).Run(context.Background(), builder.Build())
			require.NoError(t, err)

			got := make(map[string]string)
			for _, a := range result.All() {
				got[artifactPath(a)] = a.Content
			}
			assert.Equal(t, want, got)

			var skipped strings.Builder
			for _, s := range result.Skipped {
				skipped.WriteString(s.String())
				skipped.WriteString("\n")
			}
			assert.Equal(t, wantSkipped, skipped.String())
		})
	}
}
