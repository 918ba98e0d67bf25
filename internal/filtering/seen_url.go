package filtering

import (
	"context"
	"strconv"

	"github.com/spigell/job-matcher/internal/jobs"
)

type seenURLFilter struct {
	toggle
	seen map[string]struct{}
}

// NewSeenURL creates a filter that drops postings whose URL was already seen.
// The first occurrence wins, also across subsequent Apply calls.
func NewSeenURL() Filter {
	return &seenURLFilter{seen: make(map[string]struct{})}
}

func (f *seenURLFilter) Name() string { return "seen_url" }

func (f *seenURLFilter) Apply(_ context.Context, postings []jobs.Posting) ([]jobs.Posting, Step, error) {
	kept, step := keep(postings, func(p *jobs.Posting) bool {
		if _, ok := f.seen[p.URL]; ok {
			return false
		}
		f.seen[p.URL] = struct{}{}
		return true
	})
	return kept, step, nil
}

func (f *seenURLFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"seen": strconv.Itoa(len(f.seen))},
	}
}
