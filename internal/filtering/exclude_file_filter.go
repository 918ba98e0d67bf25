package filtering

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spigell/job-matcher/internal/jobs"
)

type excludeFileFilter struct {
	toggle
	path string

	once sync.Once
	urls map[string]struct{}
	err  error
}

// NewExcludeFile creates a filter that removes postings listed in an exclude file.
// The file holds one URL per line; blank lines and lines starting with # are ignored.
// An empty path drops nothing.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{path: strings.TrimSpace(path)}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Apply(_ context.Context, postings []jobs.Posting) ([]jobs.Posting, Step, error) {
	if f.path == "" {
		return postings, Step{Initial: len(postings), Left: len(postings)}, nil
	}

	f.once.Do(func() { f.urls, f.err = readURLs(f.path) })
	if f.err != nil {
		return postings, Step{}, fmt.Errorf("getting excluded postings from file: %w", f.err)
	}

	kept, step := keep(postings, func(p *jobs.Posting) bool {
		_, excluded := f.urls[p.URL]
		return !excluded
	})
	return kept, step, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

func readURLs(path string) (map[string]struct{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	urls := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls[line] = struct{}{}
	}

	return urls, scanner.Err()
}
