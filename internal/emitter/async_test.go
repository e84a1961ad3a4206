package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAsyncReturn(t *testing.T) {
	tests := []struct {
		returnType string
		expected   bool
	}{
		{"System.Threading.Tasks.Task", true},
		{"System.Threading.Tasks.ValueTask", true},
		{"System.Threading.Tasks.Task<string>", true},
		{"System.Threading.Tasks.ValueTask<string>", true},
		{"Task", true},
		{"ValueTask<int>", true},
		{"global::System.Threading.Tasks.Task", true},
		{"System.Threading.Tasks.Task<System.Collections.Generic.Dictionary<string, int>>", true},
		{"System.Threading.Tasks.Task<(int a, int b)>", true},
		{"System.Threading.Tasks.Task?", true},
		{"System.Threading.Tasks.Task<void>", false},
		{"System.Threading.Tasks.Task<>", false},
		{"System.Threading.Tasks.Task<int, string>", false},
		{"System.Threading.Tasks.TaskCompletionSource<int>", false},
		{"MyApp.Task", false},
		{"void", false},
		{"string", false},
		{"int", false},
		{"System.Collections.Generic.IEnumerable<System.Threading.Tasks.Task>", false},
	}

	for _, tt := range tests {
		t.Run(tt.returnType, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAsyncReturn(tt.returnType))
		})
	}
}

func TestNormalizeVersion(t *testing.T) {
	tests := map[string]string{
		"":            "0.0.0",
		"dev":         "0.0.0",
		"1.2.3":       "1.2.3",
		"v1.2.3":      "1.2.3",
		"v1.2":        "1.2.0",
		"1":           "1.0.0",
		"v1.2.3-rc.1": "1.2.3-rc.1",
	}
	for input, expected := range tests {
		assert.Equal(t, expected, NormalizeVersion(input), "input %q", input)
	}
}
