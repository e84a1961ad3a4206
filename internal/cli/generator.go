package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/toyz/proxygen/internal/annotations"
	"github.com/toyz/proxygen/internal/emitter"
	"github.com/toyz/proxygen/internal/errors"
	"github.com/toyz/proxygen/internal/generator"
	"github.com/toyz/proxygen/internal/modelfile"
	"github.com/toyz/proxygen/internal/models"
	"github.com/toyz/proxygen/internal/resolver"
	"github.com/toyz/proxygen/internal/utils"
)

// Generator coordinates one generation run: scan, parse, merge the explicit model and
// configured bindings, run the pass and write the artifacts. A Generator keeps its parse
// cache between runs, which watch mode relies on.
type Generator struct {
	config      *Config
	version     string
	scanner     *DirectoryScanner
	cleaner     *Cleaner
	reader      *utils.FileReader
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
	summary     models.GenerationSummary
}

// NewGenerator creates a generator for cfg. version is stamped into GeneratedCode
// attributes when they are enabled.
func NewGenerator(cfg *Config, diagnostics *utils.DiagnosticSystem, version string) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(cfg.DiagnosticLevel())
	}
	_, errOut := diagnostics.Writers()
	return &Generator{
		config:      cfg,
		version:     version,
		scanner:     NewDirectoryScanner(cfg.Extension, cfg.Exclude),
		cleaner:     NewCleaner(cfg.Extension),
		reader:      utils.NewFileReader(),
		reporter:    NewDiagnosticReporter(errOut, cfg.Verbose, diagnostics.ColorsEnabled()),
		diagnostics: diagnostics,
	}
}

// Reporter returns the reporter used for warnings and errors
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() models.GenerationSummary {
	return g.summary
}

// Run executes a complete generation run. Skipped bindings are reported as warnings;
// in strict mode they, and unparsable files, make Run fail. Artifacts of earlier runs
// that the pass no longer produces are removed, unless a source could not be parsed.
func (g *Generator) Run(ctx context.Context) error {
	start := time.Now()
	g.summary = models.GenerationSummary{}
	g.diagnostics.Verbose("Starting generation at %s", start.Format("15:04:05"))

	snapshot, parseFailures, err := g.snapshot()
	if err != nil {
		return err
	}

	g.diagnostics.StartProgress("Generating forwarding members")
	gen := generator.New(
		emitter.New(g.config.EmitterOptions(g.version)),
		generator.WithBootstrap(g.config.Bootstrap),
		generator.WithBootstrapDir(g.bootstrapDir()),
		generator.WithOutputDir(g.config.Out),
	)
	result, err := gen.Run(ctx, snapshot)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return err
	}
	g.diagnostics.EndProgress(true, fmt.Sprintf("%d artifacts", len(result.All())))

	if err := g.write(result.All()); err != nil {
		return err
	}
	if parseFailures == 0 {
		if err := g.prune(result.All()); err != nil {
			return err
		}
	} else {
		g.diagnostics.Verbose("Keeping existing artifacts, %d source file(s) could not be parsed", parseFailures)
	}

	g.summary.Skipped = result.Skipped
	for _, s := range result.Skipped {
		g.reporter.ReportSkip(s)
	}

	g.diagnostics.Debug("Generation took %s", time.Since(start).Round(time.Millisecond))

	if g.config.Strict {
		problems := errors.NewMultipleErrors()
		for _, s := range result.Skipped {
			problems.Add(errors.SkipError(s))
		}
		if parseFailures > 0 {
			problems.Add(errors.Newf(errors.SyntaxErrorCode, "%d source file(s) could not be parsed", parseFailures).
				WithSuggestion("Fix the syntax errors reported above, or exclude the files"))
		}
		return problems.ErrOrNil()
	}
	return nil
}

// DumpModel writes the merged model and the effective member set of every binding
func (g *Generator) DumpModel(w io.Writer) error {
	snapshot, _, err := g.snapshot()
	if err != nil {
		return err
	}

	resolved := make(map[string][]models.Member)
	for _, b := range snapshot.Bindings {
		if b.Target == nil {
			continue
		}
		if members, ok := resolver.ResolveRef(snapshot, b.Contract); ok {
			resolved[b.Target.QualifiedName()] = members
		}
	}
	return modelfile.Dump(w, snapshot, resolved)
}

// snapshot builds the pass input. It returns the number of files that could not be
// parsed; those are reported and left out.
func (g *Generator) snapshot() (*models.Snapshot, int, error) {
	g.diagnostics.StartProgress("Scanning sources")
	files, err := g.scanner.ScanSources(g.config.Inputs)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return nil, 0, err
	}
	g.diagnostics.EndProgress(true, fmt.Sprintf("%d files", len(files)))
	g.summary.FilesScanned = len(files)
	g.reader.Retain(files)

	builder := annotations.NewBuilder(g.config.Marker.Namespace, g.config.Marker.Name,
		annotations.WithImplicitUsings(g.config.ImplicitUsings...))
	failures := 0
	for _, path := range files {
		g.diagnostics.Debug("Parsing %s", path)
		parsed, err := g.reader.ParseSourceFile(path)
		if err != nil {
			failures++
			g.reporter.ReportParseFailure(path, err)
			continue
		}
		builder.Add(path, parsed)
	}
	snapshot := builder.Build()

	if g.config.Model != "" {
		model, err := modelfile.Load(g.config.Model)
		if err != nil {
			return nil, failures, err
		}
		g.mergeModel(snapshot, model)
	}
	g.applyConfigBindings(snapshot)

	g.summary.Contracts = len(snapshot.Contracts)
	g.summary.Targets = len(snapshot.Targets)
	g.summary.Bindings = len(snapshot.Bindings)
	g.diagnostics.Verbose("Found %d contracts, %d targets and %d bindings",
		g.summary.Contracts, g.summary.Targets, g.summary.Bindings)

	return snapshot, failures, nil
}

// mergeModel adds the model's declarations to the scanned ones. Scanned contracts and
// targets win over model declarations with the same name.
func (g *Generator) mergeModel(snapshot, model *models.Snapshot) {
	for name, c := range model.Contracts {
		if !snapshot.AddContract(c) {
			g.diagnostics.Verbose("Contract %s from %s is already declared in the sources", name, g.config.Model)
		}
	}

	replaced := make(map[*models.TargetType]*models.TargetType)
	for _, t := range model.Targets {
		if existing, ok := snapshot.FindTarget(t.QualifiedName()); ok {
			g.diagnostics.Verbose("Target %s from %s is already declared in the sources", t.QualifiedName(), g.config.Model)
			replaced[t] = existing
			continue
		}
		snapshot.Targets = append(snapshot.Targets, t)
	}

	for _, b := range model.Bindings {
		if existing, ok := replaced[b.Target]; ok {
			b.Target = existing
		}
		snapshot.Bindings = append(snapshot.Bindings, b)
	}
	snapshot.Skipped = append(snapshot.Skipped, model.Skipped...)
}

// applyConfigBindings adds the bindings from the configuration. A configured binding
// replaces any other binding of the same target.
func (g *Generator) applyConfigBindings(snapshot *models.Snapshot) {
	for _, bc := range g.config.Bindings {
		target, ok := snapshot.FindTarget(bc.Target)
		if !ok {
			snapshot.Skipped = append(snapshot.Skipped, models.SkippedBinding{
				Target: bc.Target,
				Reason: models.SkipUnsupportedTarget,
				Detail: "configured target is not declared in any scanned source",
				Source: g.config.source(),
			})
			continue
		}

		kept := snapshot.Bindings[:0]
		for _, b := range snapshot.Bindings {
			if b.Target != target {
				kept = append(kept, b)
			}
		}
		snapshot.Bindings = append(kept, models.Binding{
			Target:   target,
			Contract: bc.Contract,
			Accessor: bc.Accessor,
			Origin:   models.OriginConfig,
		})
	}
}

// bootstrapDir is the output directory, or the root of the first input
func (g *Generator) bootstrapDir() string {
	if g.config.Out != "" {
		return g.config.Out
	}
	if len(g.config.Inputs) == 0 {
		return "."
	}
	root, _ := RootOf(g.config.Inputs[0])
	if filepath.Ext(root) == utils.SourceExtension {
		return filepath.Dir(root)
	}
	return root
}

func (g *Generator) write(artifacts []models.Artifact) error {
	g.diagnostics.StartProgress("Writing artifacts")
	for _, a := range artifacts {
		path := filepath.Join(a.Dir, a.Name)
		wrote, err := utils.WriteFileIfChanged(path, []byte(a.Content))
		if err != nil {
			g.diagnostics.EndProgress(false, "")
			return errors.WrapFileSystemError("write", path, err)
		}
		if wrote {
			g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, path)
			g.diagnostics.Verbose("Wrote %s", path)
		} else {
			g.summary.UnchangedFiles = append(g.summary.UnchangedFiles, path)
		}
	}
	g.diagnostics.EndProgress(true, fmt.Sprintf("%d written, %d unchanged",
		len(g.summary.GeneratedFiles), len(g.summary.UnchangedFiles)))
	return nil
}

// prune removes stale artifacts left behind by bindings that no longer exist
func (g *Generator) prune(artifacts []models.Artifact) error {
	keep := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		keep = append(keep, filepath.Join(a.Dir, a.Name))
	}

	removed, err := g.cleaner.Prune(g.config.Inputs, g.config.Out, keep)
	g.summary.PrunedFiles = removed
	for _, path := range removed {
		g.diagnostics.Verbose("Removed stale %s", path)
	}
	return err
}
