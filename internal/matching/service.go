package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-matcher/internal/fetcher"
	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/profile"
)

// DefaultWorkers bounds the number of postings scored at once.
const DefaultWorkers = 5

const allScoredMessage = "all postings are already scored"

// Repository is the storage the service needs. LatestProfile returns nil, nil
// when the owner has no profile.
type Repository interface {
	GetProfile(ctx context.Context, id int64) (*profile.Record, error)
	LatestProfile(ctx context.Context, ownerID int64) (*profile.Record, error)
	GetPosting(ctx context.Context, id int64) (*jobs.Posting, error)
	UnscoredPostings(ctx context.Context, ownerID, profileID int64) ([]jobs.Posting, error)
	CachePostingText(ctx context.Context, postingID int64, text string) error
	UpsertMatch(ctx context.Context, m *Match) (*Match, error)
}

// FitScorer rates posting text against a profile.
type FitScorer interface {
	Score(ctx context.Context, p *profile.Profile, postingText string) (*Assessment, error)
}

// Fetcher returns the visible text of a posting page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ItemResult is the outcome of scoring one posting within a batch.
type ItemResult struct {
	PostingID int64  `json:"posting_id"`
	Success   bool   `json:"success"`
	Score     *int   `json:"score,omitempty"`
	Title     string `json:"title,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchSummary reports a batch run. Results are in completion order.
type BatchSummary struct {
	RunID     string       `json:"run_id"`
	ProfileID int64        `json:"profile_id,omitempty"`
	Message   string       `json:"message"`
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Results   []ItemResult `json:"results"`
}

type Service struct {
	repo    Repository
	scorer  FitScorer
	fetcher Fetcher
	workers int
	logger  *zap.Logger
}

func NewService(repo Repository, scorer FitScorer, fetcher Fetcher, workers int, logger *zap.Logger) *Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repo:    repo,
		scorer:  scorer,
		fetcher: fetcher,
		workers: workers,
		logger:  logger,
	}
}

// ScorePosting scores one posting against one profile, both owned by ownerID,
// and stores the result. Nothing is stored when scoring fails.
func (s *Service) ScorePosting(ctx context.Context, ownerID, profileID, postingID int64) (*Match, error) {
	rec, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if rec.OwnerID != ownerID {
		return nil, &AuthorizationError{Kind: "profile", ID: profileID, OwnerID: ownerID}
	}

	match, _, err := s.score(ctx, ownerID, rec, postingID)
	return match, err
}

// ScoreAll scores every posting of ownerID that has no match for the owner's most
// recent profile. Items run concurrently, at most workers at a time. A failed item
// is reported in the summary and never stops the others.
func (s *Service) ScoreAll(ctx context.Context, ownerID int64) (*BatchSummary, error) {
	rec, err := s.repo.LatestProfile(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get latest profile: %w", err)
	}
	if rec == nil {
		return nil, ErrNoProfile
	}

	postings, err := s.repo.UnscoredPostings(ctx, ownerID, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("list unscored postings: %w", err)
	}

	summary := &BatchSummary{
		RunID:     uuid.NewString(),
		ProfileID: rec.ID,
		Results:   []ItemResult{},
	}
	log := s.logger.With(zap.String("run_id", summary.RunID), zap.Int64(logger.FieldProfile, rec.ID))

	if len(postings) == 0 {
		summary.Message = allScoredMessage
		log.Info(allScoredMessage)
		return summary, nil
	}

	log.Info("batch scoring started", zap.Int("postings", len(postings)), zap.Int("workers", s.workers))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.workers)

	for _, posting := range postings {
		g.Go(func() error {
			result := s.scoreItem(ctx, ownerID, rec, posting.ID)

			mu.Lock()
			summary.Results = append(summary.Results, result)
			if result.Success {
				summary.Succeeded++
			}
			mu.Unlock()

			// Failures live in the result so siblings keep running.
			return nil
		})
	}
	_ = g.Wait()

	summary.Total = len(summary.Results)
	summary.Message = fmt.Sprintf("%d postings scored", summary.Succeeded)

	log.Info("batch scoring finished", zap.Int("total", summary.Total), zap.Int("succeeded", summary.Succeeded))

	return summary, nil
}

func (s *Service) scoreItem(ctx context.Context, ownerID int64, rec *profile.Record, postingID int64) ItemResult {
	match, posting, err := s.score(ctx, ownerID, rec, postingID)
	if err != nil {
		s.logger.Warn("scoring failed", append(logger.PairFields(rec.ID, postingID), zap.Error(err))...)
		return ItemResult{PostingID: postingID, Error: err.Error()}
	}

	score := match.Score()
	return ItemResult{PostingID: postingID, Success: true, Score: &score, Title: posting.Title}
}

func (s *Service) score(ctx context.Context, ownerID int64, rec *profile.Record, postingID int64) (*Match, *jobs.Posting, error) {
	log := s.logger.With(logger.PairFields(rec.ID, postingID)...)

	posting, err := s.repo.GetPosting(ctx, postingID)
	if err != nil {
		return nil, nil, fmt.Errorf("get posting: %w", err)
	}
	if posting.OwnerID != ownerID {
		return nil, nil, &AuthorizationError{Kind: "posting", ID: postingID, OwnerID: ownerID}
	}

	text, err := s.postingText(ctx, log, posting)
	if err != nil {
		return nil, nil, err
	}

	assessment, err := s.scorer.Score(ctx, rec.Profile, text)
	if err != nil {
		return nil, nil, err
	}

	match, err := s.repo.UpsertMatch(ctx, &Match{
		ProfileID:  rec.ID,
		PostingID:  posting.ID,
		Assessment: assessment,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("save match: %w", err)
	}

	log.Info("posting scored", zap.Int("score", match.Score()), zap.String("title", posting.Title))

	return match, posting, nil
}

// postingText returns the cached page text, fetching and caching it on first use.
// An unreachable page falls back to the listing's own fields.
func (s *Service) postingText(ctx context.Context, log *zap.Logger, posting *jobs.Posting) (string, error) {
	if strings.TrimSpace(posting.FullText) != "" {
		return posting.FullText, nil
	}

	text, err := s.fetcher.Fetch(ctx, posting.URL)
	if err != nil {
		var fetchErr *fetcher.FetchError
		if !errors.As(err, &fetchErr) {
			return "", fmt.Errorf("fetch posting: %w", err)
		}
		log.Info("using listing text", zap.Error(err))
		text = posting.FallbackText()
	}

	if err := s.repo.CachePostingText(ctx, posting.ID, text); err != nil {
		return "", fmt.Errorf("cache posting text: %w", err)
	}
	posting.FullText = text

	return text, nil
}
