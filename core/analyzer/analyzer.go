// Package analyzer derives quality, security, architecture and trend signals
// from the key files of one repository.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
	"golang.org/x/sync/errgroup"
)

// Phases reported in skip records.
const (
	PhaseRead            = "read"
	PhaseQuality         = "quality"
	PhaseMaintainability = "maintainability"
	PhaseSecurity        = "security"
	PhaseArchitecture    = "architecture"
	PhaseDependencies    = "dependencies"
)

// Analyzer runs the analysis phases over a RepositoryAnalysis.
// It keeps no state between calls.
type Analyzer struct {
	reader      contract.FileReader
	history     contract.HistoryClient
	cache       contract.MetricsCache
	workers     int
	trendMonths int
	onSkip      func(schema.SkipRecord)
	now         func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWorkers bounds the number of files analyzed concurrently.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithHistoryClient enables trend analysis.
func WithHistoryClient(client contract.HistoryClient) Option {
	return func(a *Analyzer) { a.history = client }
}

// WithTrendMonths sets the trend window.
func WithTrendMonths(months int) Option {
	return func(a *Analyzer) {
		if months > 0 {
			a.trendMonths = months
		}
	}
}

// WithMetricsCache caches per-file quality results by content.
func WithMetricsCache(cache contract.MetricsCache) Option {
	return func(a *Analyzer) { a.cache = cache }
}

// WithSkipHook replaces the default skip logger.
func WithSkipHook(hook func(schema.SkipRecord)) Option {
	return func(a *Analyzer) {
		if hook != nil {
			a.onSkip = hook
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates an Analyzer reading files through reader.
func New(reader contract.FileReader, opts ...Option) *Analyzer {
	a := &Analyzer{
		reader:      reader,
		workers:     runtime.GOMAXPROCS(0),
		trendMonths: DefaultTrendMonths,
		onSkip:      logSkip,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func logSkip(rec schema.SkipRecord) {
	contract.LogWarn(fmt.Sprintf("Skipped %s during %s analysis", rec.File, rec.Phase), errors.New(rec.Reason))
}

// fileOutcome is everything learned from one key file.
type fileOutcome struct {
	quality *fileQuality
	vulns   []schema.SecurityVulnerability
	idioms  idiomCounts
	skips   []schema.SkipRecord
}

// guard runs fn and turns a panic into a skip record for the phase.
func guard(file, phase string, skips *[]schema.SkipRecord, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			*skips = append(*skips, schema.SkipRecord{File: file, Phase: phase, Reason: fmt.Sprintf("panic: %v", r)})
		}
	}()
	fn()
}

func (a *Analyzer) analyzeFile(ctx context.Context, root string, kf schema.KeyFile) fileOutcome {
	var out fileOutcome
	path := kf.Path
	if !filepath.IsAbs(path) && root != "" {
		path = filepath.Join(root, path)
	}
	content, err := a.reader.ReadFile(ctx, path)
	if err != nil {
		out.skips = append(out.skips, schema.SkipRecord{File: kf.Path, Phase: PhaseRead, Reason: err.Error()})
		return out
	}

	sf := newSourceFile(kf.Path, content, FamilyFor(kf.Language, kf.Path))
	guard(kf.Path, PhaseQuality, &out.skips, func() {
		q := a.cachedQuality(sf)
		out.quality = &q
		if !q.ValidMI {
			out.skips = append(out.skips, schema.SkipRecord{
				File:   kf.Path,
				Phase:  PhaseMaintainability,
				Reason: "maintainability index undefined for files without code lines",
			})
		}
	})
	guard(kf.Path, PhaseSecurity, &out.skips, func() {
		out.vulns = scanSecurity(sf)
	})
	guard(kf.Path, PhaseArchitecture, &out.skips, func() {
		out.idioms = scanIdioms(sf)
	})
	return out
}

// AnalyzeRepository runs every phase and returns a fresh result. It overwrites
// analysis.CodeAnalysis with the complexity summary and detected patterns.
// Per-file failures are recorded in Skipped and never abort the run.
func (a *Analyzer) AnalyzeRepository(ctx context.Context, analysis *schema.RepositoryAnalysis) *schema.AdvancedAnalysisResult {
	if analysis == nil {
		analysis = &schema.RepositoryAnalysis{}
	}
	keyFiles := analysis.Structure.KeyFiles

	outcomes := make([]fileOutcome, len(keyFiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, kf := range keyFiles {
		g.Go(func() error {
			outcomes[i] = a.analyzeFile(gctx, analysis.Path, kf)
			return nil
		})
	}
	_ = g.Wait()

	var (
		files  []fileQuality
		debt   []schema.TechnicalDebt
		vulns  []schema.SecurityVulnerability
		idioms idiomCounts
		skips  []schema.SkipRecord
	)
	for _, o := range outcomes {
		if o.quality != nil {
			files = append(files, *o.quality)
			debt = append(debt, o.quality.Debt...)
		}
		vulns = append(vulns, o.vulns...)
		idioms.add(o.idioms)
		skips = append(skips, o.skips...)
	}

	// Manifests are only consulted for repositories with something to analyze
	if len(keyFiles) > 0 {
		depVulns, depSkips := a.scanDependencies(ctx, analysis.Path)
		vulns = append(vulns, depVulns...)
		skips = append(skips, depSkips...)
	}

	metrics := make([]schema.FileQualityMetrics, 0, len(files))
	for _, f := range files {
		metrics = append(metrics, f.Metrics)
	}
	if debt == nil {
		debt = []schema.TechnicalDebt{}
	}
	if vulns == nil {
		vulns = []schema.SecurityVulnerability{}
	}

	result := &schema.AdvancedAnalysisResult{
		CodeQuality: schema.CodeQuality{
			OverallScore:  qualityScore(files, debt),
			FileMetrics:   metrics,
			TechnicalDebt: debt,
		},
		Security: schema.SecurityReport{
			Vulnerabilities: vulns,
			SecurityScore:   securityScore(vulns),
			Recommendations: securityRecommendations(analysis.Frameworks, vulns),
		},
		Architecture: analyzeArchitecture(analysis, idioms),
		Trends:       a.analyzeTrends(ctx, analysis.Path),
		Skipped:      skips,
	}

	analysis.CodeAnalysis.Complexity = complexitySummary(files, debt)
	analysis.CodeAnalysis.Patterns = result.Architecture.Patterns

	for _, s := range skips {
		a.onSkip(s)
	}
	return result
}
