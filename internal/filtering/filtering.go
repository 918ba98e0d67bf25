// Package filtering narrows aggregated postings down through a sequence of steps.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/jobs"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, postings []jobs.Posting) ([]jobs.Posting, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// StepError reports which step failed.
type StepError struct {
	Name string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Name, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Default returns the standard discovery pipeline. The seen_url step keeps state,
// so one pipeline must be used for one discovery run only.
func Default(excludedCompanies []string, excludeFile string) []Filter {
	return []Filter{
		NewHTTPScheme(),
		NewExcludedCompanies(excludedCompanies),
		NewExcludeFile(excludeFile),
		NewSeenURL(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the postings that survived.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, postings []jobs.Posting) ([]jobs.Posting, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, postings)
		if err != nil {
			return nil, &StepError{Name: step.Name(), Err: err}
		}

		if info.Dropped > 0 {
			logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		postings = next
	}

	return postings, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns the postings for which ok reports true along with the step summary.
func keep(postings []jobs.Posting, ok func(p *jobs.Posting) bool) ([]jobs.Posting, Step) {
	initial := len(postings)
	kept := postings[:0:0]
	for i := range postings {
		if ok(&postings[i]) {
			kept = append(kept, postings[i])
		}
	}
	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}

// toggle carries the enable state shared by all steps.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }
