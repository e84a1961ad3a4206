package emitter

import "strings"

const tasksNamespace = "System.Threading.Tasks."

// IsAsyncReturn reports whether a return type is one of the awaitable task shapes:
// Task, ValueTask, Task<T> or ValueTask<T>, bare or namespace-qualified.
func IsAsyncReturn(returnType string) bool {
	t := strings.TrimSpace(returnType)
	t = strings.TrimPrefix(t, "global::")
	t = strings.TrimSuffix(t, "?")
	t = strings.TrimPrefix(t, tasksNamespace)

	switch t {
	case "Task", "ValueTask":
		return true
	}

	for _, generic := range []string{"Task<", "ValueTask<"} {
		if !strings.HasPrefix(t, generic) || !strings.HasSuffix(t, ">") {
			continue
		}
		payload := strings.TrimSpace(t[len(generic) : len(t)-1])
		return payload != "" && payload != "void" && singleTypeArgument(payload)
	}
	return false
}

// singleTypeArgument reports whether s holds exactly one type argument, ignoring
// commas nested inside generic or tuple brackets.
func singleTypeArgument(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
			if depth < 0 {
				return false
			}
		case ',':
			if depth == 0 {
				return false
			}
		}
	}
	return depth == 0
}
