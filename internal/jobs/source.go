package jobs

import (
	"context"
	"fmt"
	"time"
)

// Source is a single external provider of job postings.
type Source interface {
	Name() string
	// Search may return partial postings together with an error.
	Search(ctx context.Context, skills []string) ([]Posting, error)
}

// SourceError wraps the failure of one source. It never leaves the aggregator.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Options tunes the default source set.
type Options struct {
	// Location is the LinkedIn location filter.
	Location string
	// PageDelay separates LinkedIn result pages.
	PageDelay time.Duration
	// QueryDelay separates DuckDuckGo queries.
	QueryDelay time.Duration
}

// DefaultSources returns the eight sources in their fixed processing order.
func DefaultSources(client *Client, opts Options) []Source {
	linkedin := NewLinkedIn(client)
	if opts.Location != "" {
		linkedin.Location = opts.Location
	}
	if opts.PageDelay > 0 {
		linkedin.PageDelay = opts.PageDelay
	}

	ddg := NewDuckDuckGo(client)
	if opts.QueryDelay > 0 {
		ddg.QueryDelay = opts.QueryDelay
	}

	return []Source{
		linkedin,
		NewIndeed(client),
		NewArbeitnow(client),
		NewRemotive(client),
		NewHimalayas(client),
		NewFindWork(client),
		ddg,
		NewBing(client),
	}
}
