package filtering

import (
	"context"
	"strings"

	"github.com/spigell/job-matcher/internal/jobs"
)

type excludedCompaniesFilter struct {
	toggle
	companies map[string]struct{}
	names     []string
}

// NewExcludedCompanies creates a filter that removes postings by companies configured in the config.
// Names are compared case-insensitively.
func NewExcludedCompanies(companies []string) Filter {
	f := &excludedCompaniesFilter{companies: make(map[string]struct{}, len(companies))}
	for _, c := range companies {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		f.companies[strings.ToLower(c)] = struct{}{}
		f.names = append(f.names, c)
	}
	return f
}

func (f *excludedCompaniesFilter) Name() string { return "excluded_companies" }

func (f *excludedCompaniesFilter) Apply(_ context.Context, postings []jobs.Posting) ([]jobs.Posting, Step, error) {
	if len(f.companies) == 0 {
		return postings, Step{Initial: len(postings), Left: len(postings)}, nil
	}

	kept, step := keep(postings, func(p *jobs.Posting) bool {
		_, excluded := f.companies[strings.ToLower(strings.TrimSpace(p.Company))]
		return !excluded
	})
	return kept, step, nil
}

func (f *excludedCompaniesFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["companies"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
