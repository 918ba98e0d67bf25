package filtering

import (
	"context"
	"strings"

	"github.com/spigell/job-matcher/internal/jobs"
)

type httpSchemeFilter struct {
	toggle
}

// NewHTTPScheme creates a filter that drops postings without an http(s) URL.
func NewHTTPScheme() Filter {
	return &httpSchemeFilter{}
}

func (f *httpSchemeFilter) Name() string { return "http_scheme" }

func (f *httpSchemeFilter) Apply(_ context.Context, postings []jobs.Posting) ([]jobs.Posting, Step, error) {
	kept, step := keep(postings, func(p *jobs.Posting) bool {
		return strings.HasPrefix(p.URL, "http://") || strings.HasPrefix(p.URL, "https://")
	})
	return kept, step, nil
}
