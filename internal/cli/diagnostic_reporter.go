package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/toyz/proxygen/internal/annotations"
	"github.com/toyz/proxygen/internal/errors"
	"github.com/toyz/proxygen/internal/models"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose   bool
	out       io.Writer
	useColors bool
}

// NewDiagnosticReporter creates a reporter writing to out
func NewDiagnosticReporter(out io.Writer, verbose, useColors bool) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: out, useColors: useColors}
}

func (r *DiagnosticReporter) paint(attrs []color.Attribute, s string) string {
	if !r.useColors {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// ReportWarning prints a one-line warning
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	fmt.Fprintf(r.out, "%s%s\n", r.paint([]color.Attribute{color.FgYellow, color.Bold}, "! "), message)
	if r.verbose {
		for _, s := range suggestions {
			if s != "" {
				fmt.Fprintf(r.out, "  hint: %s\n", s)
			}
		}
	}
}

// ReportSkip reports a binding that produced no artifact
func (r *DiagnosticReporter) ReportSkip(s models.SkippedBinding) {
	err := errors.SkipError(s)
	r.ReportWarning(s.String(), err.Suggestions()...)
}

// ReportParseFailure reports a source file that could not be parsed. The pass goes on
// without it.
func (r *DiagnosticReporter) ReportParseFailure(path string, err error) {
	var syntax *annotations.SyntaxError
	if stderrors.As(err, &syntax) {
		r.ReportWarning(fmt.Sprintf("%s: skipped unparsable file: %s", syntax.Loc, syntax.Msg), syntax.Hint)
		return
	}
	r.ReportWarning(fmt.Sprintf("%s: skipped unreadable file: %v", path, err))
}

// ReportError provides comprehensive error reporting with user-friendly output
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(r.out, "\n%s\n", r.paint([]color.Attribute{color.FgRed, color.Bold}, "ERROR: Code Generation Failed"))
	fmt.Fprintf(r.out, "=============================\n\n")

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) {
		for i, e := range multi.Errors {
			if len(multi.Errors) > 1 {
				fmt.Fprintf(r.out, "[%d/%d]\n", i+1, len(multi.Errors))
			}
			r.reportOne(e)
		}
		return
	}

	var pgErr errors.ProxyGenError
	if stderrors.As(err, &pgErr) {
		r.reportOne(pgErr)
		return
	}
	r.reportBasicError(err)
}

func (r *DiagnosticReporter) reportOne(err errors.ProxyGenError) {
	r.printErrorHeader(err.ErrorCode())

	fmt.Fprintf(r.out, "Message: %s\n\n", messageOf(err))

	if r.verbose && err.Unwrap() != nil {
		fmt.Fprintf(r.out, "Underlying cause: %s\n\n", err.Unwrap().Error())
	}

	if loc := err.Location(); !loc.IsEmpty() {
		if loc.Line > 0 {
			fmt.Fprintf(r.out, "Location: %s\n\n", loc)
		} else {
			fmt.Fprintf(r.out, "File: %s\n\n", loc.File)
		}
	}

	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}

	if r.verbose {
		r.printErrorChain(err.Unwrap())
	}
}

// messageOf returns the message without the location prefix Error() adds
func messageOf(err errors.ProxyGenError) string {
	if base, ok := err.(*errors.BaseError); ok {
		return base.Message
	}
	return err.Error()
}

// reportBasicError reports a plain error without rich context
func (r *DiagnosticReporter) reportBasicError(err error) {
	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
	if !r.verbose {
		fmt.Fprintf(r.out, "Run with -verbose for more detailed output\n")
	}
}

func (r *DiagnosticReporter) printErrorHeader(code errors.ErrorCode) {
	var title string
	switch code {
	case errors.SyntaxErrorCode:
		title = "Syntax Error"
	case errors.ValidationErrorCode:
		title = "Validation Error"
	case errors.GenerationErrorCode:
		title = "Code Generation Error"
	case errors.TemplateErrorCode:
		title = "Template Error"
	case errors.FileSystemErrorCode:
		title = "File System Error"
	case errors.ConfigurationErrorCode:
		title = "Configuration Error"
	default:
		title = "Unknown Error"
	}

	fmt.Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))
}

// printContext prints context entries sorted by key
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, k := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(k), context[k])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")

	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}

	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) printErrorChain(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(r.out, "Error Chain:\n")
	for level := 1; err != nil; level++ {
		fmt.Fprintf(r.out, "   %d. %s\n", level, err.Error())
		err = stderrors.Unwrap(err)
	}
	fmt.Fprintf(r.out, "\n")
}
