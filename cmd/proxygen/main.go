package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/toyz/proxygen/internal/cli"
	"github.com/toyz/proxygen/internal/utils"
)

// Version is stamped into GeneratedCode attributes. Release builds set it with -ldflags.
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("proxygen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configFlag  = fs.String("config", "", "Config file (defaults to proxygen.yaml or proxygen.yml in the working directory)")
		cleanFlag   = fs.Bool("clean", false, "Delete generated files from the input directories and the output directory")
		dumpFlag    = fs.Bool("dump-model", false, "Print the merged model and the effective members of every binding as YAML")
		versionFlag = fs.Bool("version", false, "Print the version and exit")
		helpFlag    = fs.Bool("help", false, "Show help information")
	)
	fs.String("model", "", "YAML model file merged into the scanned declarations")
	fs.String("out", "", "Write every artifact to this directory instead of next to its target")
	fs.String("ext", "g.cs", "Extension of generated files")
	fs.String("marker-namespace", "ProxyGen", "Namespace of the marker attribute")
	fs.String("marker-name", "Proxy", "Name of the marker attribute, without the Attribute suffix")
	fs.Bool("generated-code", false, "Annotate generated members with [GeneratedCode]")
	fs.Bool("no-bootstrap", false, "Do not emit the marker attribute declaration")
	fs.Bool("strict", false, "Fail when a binding is skipped or a source file cannot be parsed")
	fs.Bool("verbose", false, "Enable verbose output and detailed error reporting")
	fs.Bool("quiet", false, "Only show errors")
	fs.Bool("watch", false, "Regenerate whenever a source file changes")
	fs.Duration("debounce", cli.DefaultDebounce, "How long watch mode waits for further changes")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: proxygen [options] [inputs...]\n\n")
		fmt.Fprintf(stderr, "ProxyGen Forwarding Code Generator\n")
		fmt.Fprintf(stderr, "Scans C# sources for [Proxy] attributes and generates partial types that forward\n")
		fmt.Fprintf(stderr, "every contract member the type does not implement itself.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nInputs:\n")
		fmt.Fprintf(stderr, "  ./...              Scan the current directory and all subdirectories (default)\n")
		fmt.Fprintf(stderr, "  ./src/...          Scan src and all its subdirectories\n")
		fmt.Fprintf(stderr, "  ./src/Services     Scan only the files directly in the directory\n")
		fmt.Fprintf(stderr, "  src/**/*Proxy.cs   Scan the files matching a glob pattern\n")
		fmt.Fprintf(stderr, "\nEnvironment:\n")
		fmt.Fprintf(stderr, "  %sEXTENSION, %sSTRICT, %sMARKER_NAMESPACE, ... override the config file\n",
			cli.EnvPrefix, cli.EnvPrefix, cli.EnvPrefix)
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  proxygen                                # Generate for everything below the working directory\n")
		fmt.Fprintf(stderr, "  proxygen -out Generated ./src/...       # Collect the artifacts in one directory\n")
		fmt.Fprintf(stderr, "  proxygen -model contracts.yaml ./...    # Add contracts declared outside the sources\n")
		fmt.Fprintf(stderr, "  proxygen -watch ./src/...               # Regenerate on every change\n")
		fmt.Fprintf(stderr, "  proxygen -dump-model > model.yaml       # Inspect what would be generated\n")
		fmt.Fprintf(stderr, "  proxygen -clean ./...                   # Delete the generated files\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *helpFlag {
		fs.Usage()
		return 0
	}
	if *versionFlag {
		fmt.Fprintf(stdout, "proxygen %s\n", Version)
		return 0
	}

	cfg, err := cli.LoadConfig(cli.LoadOptions{
		ConfigFile: *configFlag,
		Dir:        ".",
		Overrides:  cli.FlagOverrides(fs),
	})
	if err != nil {
		verbose := lookupBool(fs, "verbose")
		cli.NewDiagnosticReporter(stderr, verbose, false).ReportError(err)
		return 1
	}

	// The model dump owns stdout.
	level := cfg.DiagnosticLevel()
	if *dumpFlag {
		level = utils.DiagnosticError
	}
	diagnostics := newDiagnostics(level, stdout, stderr)

	switch {
	case *cleanFlag:
		return clean(cfg, diagnostics)
	case *dumpFlag:
		generator := cli.NewGenerator(cfg, diagnostics, Version)
		if err := generator.DumpModel(stdout); err != nil {
			generator.Reporter().ReportError(err)
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	diagnostics.Section("ProxyGen Code Generator")
	if cfg.Verbose {
		diagnostics.Subsection("Configuration")
		if cfg.ConfigFile != "" {
			diagnostics.List("Config file: %s", cfg.ConfigFile)
		}
		diagnostics.List("Inputs: %s", strings.Join(cfg.Inputs, ", "))
		diagnostics.List("Marker: %s.%sAttribute", cfg.Marker.Namespace, cfg.Marker.Name)
		diagnostics.List("Extension: .%s", strings.TrimPrefix(cfg.Extension, "."))
		if cfg.Out != "" {
			diagnostics.List("Output directory: %s", cfg.Out)
		}
		if cfg.Model != "" {
			diagnostics.List("Model file: %s", cfg.Model)
		}
	}

	generator := cli.NewGenerator(cfg, diagnostics, Version)
	generate := func(ctx context.Context) error {
		if err := generator.Run(ctx); err != nil {
			return err
		}
		printSummary(cfg, diagnostics, generator)
		return nil
	}

	if err := generate(ctx); err != nil {
		generator.Reporter().ReportError(err)
		if !cfg.Watch.Enabled {
			return 1
		}
	}

	if cfg.Watch.Enabled {
		watcher := cli.NewWatcher(cfg.Inputs, cfg.Extension, cfg.Watch.Debounce, diagnostics, generate)
		if err := watcher.Watch(ctx); err != nil {
			generator.Reporter().ReportError(err)
			return 1
		}
	}
	return 0
}

func clean(cfg *cli.Config, diagnostics *utils.DiagnosticSystem) int {
	inputs := cfg.Inputs
	if cfg.Out != "" {
		inputs = append(append([]string(nil), inputs...), cfg.Out)
	}

	diagnostics.StartProgress("Cleaning generated files")
	removed, err := cli.NewCleaner(cfg.Extension).CleanGeneratedFiles(inputs)
	if err != nil {
		diagnostics.EndProgress(false, "")
		diagnostics.Error("Clean operation failed: %v", err)
		return 1
	}
	diagnostics.EndProgress(true, "")

	for _, path := range removed {
		diagnostics.Verbose("Removed %s", path)
	}
	diagnostics.Success("Removed %d generated file(s)", len(removed))
	return 0
}

func printSummary(cfg *cli.Config, diagnostics *utils.DiagnosticSystem, generator *cli.Generator) {
	summary := generator.GetSummary()
	diagnostics.Summary("Generation Complete!", map[string]interface{}{
		"Files scanned":       summary.FilesScanned,
		"Contracts found":     summary.Contracts,
		"Targets found":       summary.Targets,
		"Bindings":            summary.Bindings,
		"Artifacts written":   len(summary.GeneratedFiles),
		"Artifacts unchanged": len(summary.UnchangedFiles),
		"Artifacts removed":   len(summary.PrunedFiles),
		"Bindings skipped":    len(summary.Skipped),
	})

	if cfg.Verbose && len(summary.GeneratedFiles) > 0 {
		diagnostics.Subsection("Generated Files")
		for _, file := range summary.GeneratedFiles {
			diagnostics.List("%s", file)
		}
	}
}

// newDiagnostics writes to the process streams in color, or plainly to anything else
func newDiagnostics(level utils.DiagnosticLevel, stdout, stderr io.Writer) *utils.DiagnosticSystem {
	diagnostics := utils.NewDiagnosticSystem(level)
	if stdout != io.Writer(os.Stdout) || stderr != io.Writer(os.Stderr) {
		diagnostics.SetOutput(stdout, stderr)
	}
	return diagnostics
}

func lookupBool(fs *flag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	getter, ok := f.Value.(flag.Getter)
	if !ok {
		return false
	}
	v, _ := getter.Get().(bool)
	return v
}
