// Package generator runs one generation pass: it emits the bootstrap declaration and
// turns every binding of a snapshot into a forwarding artifact.
package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/toyz/proxygen/internal/emitter"
	"github.com/toyz/proxygen/internal/errors"
	"github.com/toyz/proxygen/internal/models"
	"github.com/toyz/proxygen/internal/resolver"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one pass
type Result struct {
	Bootstrap *models.Artifact // nil when bootstrap emission is disabled
	Artifacts []models.Artifact
	Skipped   []models.SkippedBinding
}

// All returns the bootstrap artifact followed by the forwarding artifacts
func (r *Result) All() []models.Artifact {
	all := make([]models.Artifact, 0, len(r.Artifacts)+1)
	if r.Bootstrap != nil {
		all = append(all, *r.Bootstrap)
	}
	return append(all, r.Artifacts...)
}

// Generator processes snapshots. It holds no per-pass state, so one generator can run
// any number of passes.
type Generator struct {
	emitter      *emitter.Emitter
	bootstrap    bool
	bootstrapDir string
	outputDir    string
	concurrency  int
}

// Option configures a Generator
type Option func(*Generator)

// WithBootstrap controls whether the marker attribute declaration is emitted
func WithBootstrap(enabled bool) Option {
	return func(g *Generator) { g.bootstrap = enabled }
}

// WithBootstrapDir sets the directory the bootstrap artifact belongs in
func WithBootstrapDir(dir string) Option {
	return func(g *Generator) { g.bootstrapDir = dir }
}

// WithOutputDir places every forwarding artifact in dir instead of next to the source
// file of its target.
func WithOutputDir(dir string) Option {
	return func(g *Generator) { g.outputDir = dir }
}

// WithConcurrency limits how many bindings are processed at once
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// New creates a generator emitting through em
func New(em *emitter.Emitter, opts ...Option) *Generator {
	if em == nil {
		em = emitter.New(emitter.DefaultOptions())
	}
	g := &Generator{
		emitter:     em,
		bootstrap:   true,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// outcome is the result of processing one binding
type outcome struct {
	artifact *models.Artifact
	skip     *models.SkippedBinding
}

// Run executes one pass over snapshot. Bindings are processed in parallel and results
// are collected in binding order, so the output does not depend on scheduling. Only
// cancellation and template failures return an error. A binding that cannot produce
// an artifact is reported in Result.Skipped.
func (g *Generator) Run(ctx context.Context, snapshot *models.Snapshot) (*Result, error) {
	if snapshot == nil {
		snapshot = models.NewSnapshot()
	}
	result := &Result{
		Artifacts: make([]models.Artifact, 0, len(snapshot.Bindings)),
		Skipped:   append([]models.SkippedBinding(nil), snapshot.Skipped...),
	}

	if g.bootstrap {
		artifact, err := g.emitter.Bootstrap()
		if err != nil {
			return nil, errors.WrapTemplateError("proxy-attribute", "render", err)
		}
		artifact.Dir = g.bootstrapDir
		result.Bootstrap = &artifact
	}

	outcomes := make([]outcome, len(snapshot.Bindings))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	for i, binding := range snapshot.Bindings {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			outcomes[i] = g.process(snapshot, binding)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	written := make(map[string]string)
	if result.Bootstrap != nil {
		written[artifactPath(*result.Bootstrap)] = "bootstrap"
	}
	for i, o := range outcomes {
		if o.skip != nil {
			result.Skipped = append(result.Skipped, *o.skip)
			continue
		}
		path := artifactPath(*o.artifact)
		if owner, taken := written[path]; taken {
			binding := snapshot.Bindings[i]
			result.Skipped = append(result.Skipped, skipped(binding, models.SkipDuplicateBinding,
				fmt.Sprintf("artifact %s is already generated for %s", path, owner)))
			continue
		}
		written[path] = o.artifact.Target
		result.Artifacts = append(result.Artifacts, *o.artifact)
	}
	return result, nil
}

// process resolves and emits a single binding
func (g *Generator) process(snapshot *models.Snapshot, binding models.Binding) outcome {
	if binding.Target == nil {
		return outcome{skip: &models.SkippedBinding{
			Reason: models.SkipUnsupportedTarget,
			Detail: "binding has no target type",
		}}
	}

	effective, ok := resolver.ResolveRef(snapshot, binding.Contract)
	if !ok {
		s := skipped(binding, models.SkipUnresolvedContract, fmt.Sprintf("contract '%s' not found", binding.Contract))
		return outcome{skip: &s}
	}

	artifact, ok := g.emitter.Emit(binding.Target, binding.Contract, effective, binding.Accessor)
	if !ok {
		s := skipped(binding, models.SkipEmptyAccessor, "accessor is empty")
		return outcome{skip: &s}
	}
	if g.outputDir != "" {
		artifact.Dir = g.outputDir
	}
	return outcome{artifact: &artifact}
}

func skipped(binding models.Binding, reason models.SkipReason, detail string) models.SkippedBinding {
	s := models.SkippedBinding{Reason: reason, Detail: detail}
	if binding.Target != nil {
		s.Target = binding.Target.QualifiedName()
		s.Source = binding.Target.Source
		s.Line = binding.Target.Line
	}
	return s
}

func artifactPath(a models.Artifact) string {
	return filepath.ToSlash(filepath.Join(a.Dir, a.Name))
}
