package matching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/ai"
	"github.com/spigell/job-matcher/internal/fetcher"
	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
)

var errNotFound = errors.New("not found")

type memoryRepo struct {
	mu       sync.Mutex
	profiles map[int64]*profile.Record
	postings map[int64]*jobs.Posting
	matches  map[[2]int64]*Match
	nextID   int64
	cached   map[int64]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		profiles: map[int64]*profile.Record{},
		postings: map[int64]*jobs.Posting{},
		matches:  map[[2]int64]*Match{},
		cached:   map[int64]int{},
	}
}

func (r *memoryRepo) GetProfile(_ context.Context, id int64) (*profile.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.profiles[id]
	if !ok {
		return nil, errNotFound
	}
	return rec, nil
}

func (r *memoryRepo) LatestProfile(_ context.Context, ownerID int64) (*profile.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *profile.Record
	for _, rec := range r.profiles {
		if rec.OwnerID == ownerID && (latest == nil || rec.ID > latest.ID) {
			latest = rec
		}
	}
	return latest, nil
}

func (r *memoryRepo) GetPosting(_ context.Context, id int64) (*jobs.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.postings[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepo) UnscoredPostings(_ context.Context, ownerID, profileID int64) ([]jobs.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []jobs.Posting
	for id := int64(1); id <= int64(len(r.postings)); id++ {
		p, ok := r.postings[id]
		if !ok || p.OwnerID != ownerID {
			continue
		}
		if _, scored := r.matches[[2]int64{profileID, id}]; scored {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryRepo) CachePostingText(_ context.Context, postingID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached[postingID]++
	if p := r.postings[postingID]; p != nil && p.FullText == "" {
		p.FullText = text
	}
	return nil
}

func (r *memoryRepo) UpsertMatch(_ context.Context, m *Match) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{m.ProfileID, m.PostingID}
	existing, ok := r.matches[key]
	if !ok {
		r.nextID++
		existing = &Match{ID: r.nextID, ProfileID: m.ProfileID, PostingID: m.PostingID}
		r.matches[key] = existing
	}
	existing.Assessment = m.Assessment
	existing.UpdatedAt = time.Now()
	cp := *existing
	return &cp, nil
}

type stubScorer struct {
	mu    sync.Mutex
	texts []string
	fail  map[string]error
	score func(text string) *Assessment
}

func (s *stubScorer) Score(_ context.Context, _ *profile.Profile, text string) (*Assessment, error) {
	s.mu.Lock()
	s.texts = append(s.texts, text)
	s.mu.Unlock()

	if err := s.fail[text]; err != nil {
		return nil, err
	}
	if s.score != nil {
		return s.score(text), nil
	}
	return NewAssessment(SubScores{Technical: intPtr(80), Experience: intPtr(60), Education: intPtr(100), Language: intPtr(100), Certificate: intPtr(40)}), nil
}

type stubFetcher struct {
	pages map[string]string
	calls atomic.Int32
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls.Add(1)
	if text, ok := f.pages[url]; ok {
		return text, nil
	}
	return "", &fetcher.FetchError{URL: url, Err: errors.New("bad status: 404 Not Found")}
}

func seed(repo *memoryRepo, ownerID int64, postings ...jobs.Posting) {
	repo.profiles[1] = &profile.Record{ID: 1, OwnerID: ownerID, Filename: "cv.docx", Profile: &profile.Profile{Skills: []string{"Go"}}}
	for i, p := range postings {
		p.ID = int64(i + 1)
		if p.OwnerID == 0 {
			p.OwnerID = ownerID
		}
		repo.postings[p.ID] = &p
	}
}

func TestScorePostingFetchesAndCachesText(t *testing.T) {
	repo := newMemoryRepo()
	seed(repo, 7, jobs.Posting{Title: "Go Developer", Company: "Acme", URL: "https://jobs.example/1"})
	fetch := &stubFetcher{pages: map[string]string{"https://jobs.example/1": "full posting text"}}
	scorer := &stubScorer{}

	svc := NewService(repo, scorer, fetch, 0, zap.NewNop())

	match, err := svc.ScorePosting(context.Background(), 7, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 76, match.Score())
	assert.Equal(t, []string{"full posting text"}, scorer.texts)

	_, err = svc.ScorePosting(context.Background(), 7, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, fetch.calls.Load(), "cached text must not be fetched again")
	assert.Equal(t, 1, repo.cached[1])
}

func TestScorePostingFallsBackToListingText(t *testing.T) {
	repo := newMemoryRepo()
	seed(repo, 7, jobs.Posting{Title: "Go Developer", Company: "Acme", Summary: "Remote", URL: "https://jobs.example/gone"})
	scorer := &stubScorer{}

	svc := NewService(repo, scorer, &stubFetcher{}, 0, nil)

	_, err := svc.ScorePosting(context.Background(), 7, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go Developer Acme Remote"}, scorer.texts)
	assert.Equal(t, "Go Developer Acme Remote", repo.postings[1].FullText)
}

func TestScorePostingIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	seed(repo, 7, jobs.Posting{Title: "Go Developer", URL: "https://jobs.example/1", FullText: "cached"})

	svc := NewService(repo, &stubScorer{}, &stubFetcher{}, 0, nil)

	first, err := svc.ScorePosting(context.Background(), 7, 1, 1)
	require.NoError(t, err)
	second, err := svc.ScorePosting(context.Background(), 7, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.matches, 1)
}

func TestScorePostingAuthorization(t *testing.T) {
	repo := newMemoryRepo()
	seed(repo, 7,
		jobs.Posting{Title: "Go Developer", URL: "https://jobs.example/1"},
		jobs.Posting{Title: "Go Developer", URL: "https://jobs.example/2", OwnerID: 8},
	)
	svc := NewService(repo, &stubScorer{}, &stubFetcher{}, 0, nil)

	var authErr *AuthorizationError

	_, err := svc.ScorePosting(context.Background(), 8, 1, 2)
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "profile", authErr.Kind)

	_, err = svc.ScorePosting(context.Background(), 7, 1, 2)
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "posting", authErr.Kind)

	assert.Empty(t, repo.matches)
}

func TestScorePostingStoresNothingOnScoringError(t *testing.T) {
	repo := newMemoryRepo()
	seed(repo, 7, jobs.Posting{Title: "Go Developer", URL: "https://jobs.example/1", FullText: "cached"})
	scorer := &stubScorer{fail: map[string]error{"cached": &ai.ScoringError{Model: "m", Err: errors.New("quota")}}}

	_, err := NewService(repo, scorer, &stubFetcher{}, 0, nil).ScorePosting(context.Background(), 7, 1, 1)

	var scoringErr *ai.ScoringError
	require.ErrorAs(t, err, &scoringErr)
	assert.Empty(t, repo.matches)
}

// blockingScorer holds every call until want calls are in flight.
type blockingScorer struct {
	want     int32
	inFlight atomic.Int32
	release  chan struct{}
	once     sync.Once
	fail     string
}

func (s *blockingScorer) Score(ctx context.Context, _ *profile.Profile, text string) (*Assessment, error) {
	if s.inFlight.Add(1) == s.want {
		s.once.Do(func() { close(s.release) })
	}

	select {
	case <-s.release:
	case <-time.After(2 * time.Second):
		return nil, errors.New("scorers did not run concurrently")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if text == s.fail {
		return nil, &ai.ScoringError{Model: "gemini-2.0-flash", Err: context.DeadlineExceeded}
	}
	return NewAssessment(SubScores{}), nil
}

func TestScoreAllRunsConcurrentlyAndCollectsFailures(t *testing.T) {
	repo := newMemoryRepo()
	seed(repo, 7,
		jobs.Posting{Title: "A", URL: "https://jobs.example/1", FullText: "text a"},
		jobs.Posting{Title: "B", URL: "https://jobs.example/2", FullText: "text b"},
		jobs.Posting{Title: "C", URL: "https://jobs.example/3", FullText: "text c"},
	)
	scorer := &blockingScorer{want: 3, release: make(chan struct{}), fail: "text b"}

	summary, err := NewService(repo, scorer, &stubFetcher{}, 5, zap.NewNop()).ScoreAll(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, "2 postings scored", summary.Message)
	assert.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Results, 3)

	byID := map[int64]ItemResult{}
	for _, r := range summary.Results {
		byID[r.PostingID] = r
	}
	assert.False(t, byID[2].Success)
	assert.Contains(t, byID[2].Error, "deadline exceeded")
	assert.True(t, byID[1].Success)
	assert.Equal(t, 50, *byID[3].Score)
	assert.Equal(t, "C", byID[3].Title)

	assert.Len(t, repo.matches, 2)
}

func TestScoreAllRespectsWorkerLimit(t *testing.T) {
	repo := newMemoryRepo()
	var postings []jobs.Posting
	for i := 0; i < 12; i++ {
		postings = append(postings, jobs.Posting{Title: fmt.Sprint(i), URL: fmt.Sprintf("https://jobs.example/%d", i), FullText: "text"})
	}
	seed(repo, 7, postings...)

	var current, peak atomic.Int32
	scorer := &stubScorer{score: func(string) *Assessment {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		current.Add(-1)
		return NewAssessment(SubScores{})
	}}

	summary, err := NewService(repo, scorer, &stubFetcher{}, 5, nil).ScoreAll(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 12, summary.Succeeded)
	assert.LessOrEqual(t, peak.Load(), int32(5))
}

func TestScoreAllNothingToScore(t *testing.T) {
	repo := newMemoryRepo()
	seed(repo, 7, jobs.Posting{Title: "Go", URL: "https://jobs.example/1", FullText: "text"})
	svc := NewService(repo, &stubScorer{}, &stubFetcher{}, 5, nil)

	_, err := svc.ScoreAll(context.Background(), 7)
	require.NoError(t, err)

	summary, err := svc.ScoreAll(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, allScoredMessage, summary.Message)
	assert.Zero(t, summary.Total)
	assert.Zero(t, summary.Succeeded)
	assert.Empty(t, summary.Results)
}

func TestScoreAllWithoutProfile(t *testing.T) {
	_, err := NewService(newMemoryRepo(), &stubScorer{}, &stubFetcher{}, 5, nil).ScoreAll(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNoProfile)
}
