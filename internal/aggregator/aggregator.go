// Package aggregator runs every job source for a set of skills and merges the
// results into one deduplicated list of postings.
package aggregator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/filtering"
	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/logger"
)

// Options configures the post-filters applied to every source batch.
type Options struct {
	ExcludedCompanies []string
	ExcludeFile       string
}

// SourceReport summarizes one source within a search.
type SourceReport struct {
	Name  string
	Found int
	Kept  int
	// Err is a *jobs.SourceError when the source failed, possibly after returning some postings.
	Err error
}

// Result is the outcome of a search. Sources that failed are reported, never returned as errors.
type Result struct {
	Skills []string
	// FallbackTerm is set when no usable skill was found and the generic term was searched.
	FallbackTerm bool
	Postings     []jobs.Posting
	Sources      []SourceReport
}

// Failed reports whether every source failed.
func (r *Result) Failed() bool {
	if len(r.Sources) == 0 {
		return false
	}
	for _, s := range r.Sources {
		if s.Err == nil {
			return false
		}
	}
	return true
}

// Aggregator queries sources sequentially in their registered order.
type Aggregator struct {
	sources []jobs.Source
	opts    Options
	logger  *zap.Logger
}

func New(logger *zap.Logger, sources []jobs.Source, opts Options) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{sources: sources, opts: opts, logger: logger}
}

// Search cleans the skills, queries every source and returns the merged postings.
// A URL seen earlier in the run is dropped, so the first source to report it wins.
func (a *Aggregator) Search(ctx context.Context, skills []string) *Result {
	terms, fallback := jobs.CleanSkills(skills)
	result := &Result{Skills: terms, FallbackTerm: fallback}

	a.logger.Info("searching job sources",
		zap.Strings("skills", terms),
		zap.Bool("fallback_term", fallback),
		zap.Int("sources", len(a.sources)),
	)

	steps := filtering.Default(a.opts.ExcludedCompanies, a.opts.ExcludeFile)

	for _, source := range a.sources {
		if ctx.Err() != nil {
			result.Sources = append(result.Sources, SourceReport{
				Name: source.Name(),
				Err:  &jobs.SourceError{Source: source.Name(), Err: ctx.Err()},
			})
			continue
		}

		log := logger.WithSource(a.logger, source.Name())
		report := SourceReport{Name: source.Name()}

		found, err := source.Search(ctx, terms)
		report.Found = len(found)
		if err != nil {
			report.Err = &jobs.SourceError{Source: source.Name(), Err: err}
			log.Warn("source failed", zap.Error(err), zap.Int("partial", len(found)))
		}

		kept := a.filter(ctx, steps, found)
		report.Kept = len(kept)
		result.Postings = append(result.Postings, kept...)
		result.Sources = append(result.Sources, report)

		log.Info("source done", zap.Int("found", report.Found), zap.Int("kept", report.Kept))
	}

	a.logger.Info("search finished", zap.Int("postings", len(result.Postings)))
	a.logger.Debug("filter steps", zap.Any("steps", filtering.Describe(steps)))

	return result
}

// filter runs the post-filters. A failing step is disabled for the rest of the
// search and the batch is filtered again without it.
func (a *Aggregator) filter(ctx context.Context, steps []filtering.Filter, postings []jobs.Posting) []jobs.Posting {
	for {
		kept, err := filtering.Run(ctx, a.logger, steps, postings)
		if err == nil {
			return kept
		}

		var stepErr *filtering.StepError
		if !errors.As(err, &stepErr) {
			a.logger.Warn("filtering failed; keeping batch unfiltered", zap.Error(err))
			return postings
		}

		a.logger.Warn("filter step disabled", zap.String("name", stepErr.Name), zap.Error(stepErr.Err))
		filtering.DisableByName(steps, stepErr.Name, stepErr.Err.Error())
	}
}
