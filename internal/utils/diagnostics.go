package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// DiagnosticLevel represents the level of diagnostic output
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// DiagnosticSystem provides structured, user-friendly output
type DiagnosticSystem struct {
	mu        sync.Mutex
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
	indent    int
	progress  string
}

// NewDiagnosticSystem creates a new diagnostic system
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: shouldUseColors(),
		showTime:  level >= DiagnosticVerbose,
		output:    color.Output,
		errorOut:  color.Error,
	}
}

// NewQuietDiagnostics creates a diagnostic system that only shows errors
func NewQuietDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticError)
}

// NewVerboseDiagnostics creates a diagnostic system with full output
func NewVerboseDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticVerbose)
}

// LevelFor maps the -quiet and -verbose flags to a level. quiet wins.
func LevelFor(quiet, verbose bool) DiagnosticLevel {
	switch {
	case quiet:
		return DiagnosticError
	case verbose:
		return DiagnosticVerbose
	default:
		return DiagnosticInfo
	}
}

// SetOutput redirects regular and error output and disables colors and timestamps,
// which keeps captured output stable.
func (d *DiagnosticSystem) SetOutput(out, errOut io.Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.output = out
	d.errorOut = errOut
	d.useColors = false
	d.showTime = false
}

// Level returns the configured level
func (d *DiagnosticSystem) Level() DiagnosticLevel {
	return d.level
}

// Writers returns the regular and error writers
func (d *DiagnosticSystem) Writers() (io.Writer, io.Writer) {
	return d.output, d.errorOut
}

// ColorsEnabled reports whether output is colored
func (d *DiagnosticSystem) ColorsEnabled() bool {
	return d.useColors
}

var levelColors = map[string]*color.Color{
	"ERROR":   color.New(color.FgRed),
	"WARN":    color.New(color.FgYellow),
	"INFO":    color.New(color.FgBlue),
	"SUCCESS": color.New(color.FgGreen),
	"VERBOSE": color.New(color.FgHiBlack),
	"DEBUG":   color.New(color.FgMagenta),
}

// Error outputs error messages (always shown unless silent)
func (d *DiagnosticSystem) Error(format string, args ...interface{}) {
	if d.level >= DiagnosticError {
		d.writeMessage(d.errorOut, "ERROR", format, args...)
	}
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...interface{}) {
	if d.level >= DiagnosticWarn {
		d.writeMessage(d.errorOut, "WARN", format, args...)
	}
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "INFO", format, args...)
	}
}

// Success outputs success messages with emphasis
func (d *DiagnosticSystem) Success(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "SUCCESS", format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...interface{}) {
	if d.level >= DiagnosticVerbose {
		d.writeMessage(d.output, "VERBOSE", format, args...)
	}
}

// Debug outputs debug messages (highest verbosity)
func (d *DiagnosticSystem) Debug(format string, args ...interface{}) {
	if d.level >= DiagnosticDebug {
		d.writeMessage(d.output, "DEBUG", format, args...)
	}
}

// StartProgress remembers the running step; it is printed once the step ends
func (d *DiagnosticSystem) StartProgress(step string) {
	d.mu.Lock()
	d.progress = step
	d.mu.Unlock()
	d.Verbose("%s...", step)
}

// EndProgress reports the outcome of the step started last. detail is appended when set.
func (d *DiagnosticSystem) EndProgress(ok bool, detail string) {
	d.mu.Lock()
	step := d.progress
	d.progress = ""
	d.mu.Unlock()
	if step == "" || d.level < DiagnosticInfo {
		return
	}

	mark, c := "✓", color.New(color.FgGreen)
	if !ok {
		mark, c = "✗", color.New(color.FgRed)
	}
	if detail != "" {
		step += " (" + detail + ")"
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.output, "%s%s %s\n", d.getIndent(), d.paint(c, mark), step)
}

// Section creates a prominent section header
func (d *DiagnosticSystem) Section(title string) {
	if d.level >= DiagnosticInfo {
		d.mu.Lock()
		defer d.mu.Unlock()
		fmt.Fprintf(d.output, "%s\n", d.paint(color.New(color.FgCyan, color.Bold), title))
	}
}

// Subsection creates a subsection header
func (d *DiagnosticSystem) Subsection(title string) {
	if d.level >= DiagnosticInfo {
		d.mu.Lock()
		defer d.mu.Unlock()
		fmt.Fprintf(d.output, "\n%s:\n", d.paint(color.New(color.FgBlue), title))
	}
}

// List outputs a bulleted list item
func (d *DiagnosticSystem) List(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.mu.Lock()
		defer d.mu.Unlock()
		fmt.Fprintf(d.output, "%s- %s\n", d.getIndent(), fmt.Sprintf(format, args...))
	}
}

// Indent increases the indentation level
func (d *DiagnosticSystem) Indent() {
	d.mu.Lock()
	d.indent++
	d.mu.Unlock()
}

// Unindent decreases the indentation level
func (d *DiagnosticSystem) Unindent() {
	d.mu.Lock()
	if d.indent > 0 {
		d.indent--
	}
	d.mu.Unlock()
}

// Summary outputs a final summary with statistics, keys in sorted order
func (d *DiagnosticSystem) Summary(title string, stats map[string]interface{}) {
	if d.level < DiagnosticInfo {
		return
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.output, "\n%s\n", d.paint(color.New(color.FgGreen, color.Bold), title))
	for _, k := range keys {
		fmt.Fprintf(d.output, "   %s: %v\n", k, stats[k])
	}
	fmt.Fprintln(d.output)
}

// writeMessage is the internal message writing function
func (d *DiagnosticSystem) writeMessage(writer io.Writer, level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	d.mu.Lock()
	defer d.mu.Unlock()

	var output strings.Builder
	output.WriteString(d.getIndent())
	if d.showTime {
		output.WriteString(time.Now().Format("15:04:05 "))
	}
	output.WriteString(d.paint(levelColors[level], "["+level+"]"))
	output.WriteString(" ")
	output.WriteString(message)
	output.WriteString("\n")

	fmt.Fprint(writer, output.String())
}

func (d *DiagnosticSystem) paint(c *color.Color, s string) string {
	if !d.useColors || c == nil {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

// getIndent returns the current indentation string
func (d *DiagnosticSystem) getIndent() string {
	return strings.Repeat("  ", d.indent)
}

// shouldUseColors determines if colors should be used
func shouldUseColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return !color.NoColor
}
