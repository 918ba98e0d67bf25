package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/matching"
	"github.com/spigell/job-matcher/internal/profile"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(v int) *int { return &v }

func seedOwner(t *testing.T, s *Store, email string) (int64, *profile.Record, []jobs.Posting) {
	t.Helper()
	ctx := context.Background()

	owner, err := s.EnsureUser(ctx, email)
	require.NoError(t, err)

	rec, created, err := s.SaveProfile(ctx, owner, "cv.docx", &profile.Profile{Names: []string{"Ayşe"}, Skills: []string{"Go"}})
	require.NoError(t, err)
	require.True(t, created)

	n, err := s.SavePostings(ctx, owner, []jobs.Posting{
		{Title: "Go Developer", Company: "Acme", URL: "https://jobs.example/" + email + "/1", Source: "LinkedIn"},
		{Title: "Go Engineer", Company: "Beta", URL: "https://jobs.example/" + email + "/2", Source: "Indeed"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	postings, err := s.ListPostings(ctx, owner, 0)
	require.NoError(t, err)

	return owner, rec, postings
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureUser(ctx, "Ayse@Example.com")
	require.NoError(t, err)
	second, err := s.EnsureUser(ctx, " ayse@example.com ")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	_, err = s.EnsureUser(ctx, "")
	assert.Error(t, err)
}

func TestSaveProfileReportsDuplicateFilename(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	owner, rec, _ := seedOwner(t, s, "a@example.com")

	again, created, err := s.SaveProfile(ctx, owner, "cv.docx", &profile.Profile{Names: []string{"Someone else"}})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.ID, again.ID)
	assert.Equal(t, "Ayşe", again.DisplayName())

	newer, created, err := s.SaveProfile(ctx, owner, "cv-2025.docx", &profile.Profile{Names: []string{"Ayşe Y."}})
	require.NoError(t, err)
	assert.True(t, created)

	latest, err := s.LatestProfile(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)

	list, err := s.ListProfiles(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestLatestProfileNone(t *testing.T) {
	s := openTestStore(t)
	owner, err := s.EnsureUser(context.Background(), "none@example.com")
	require.NoError(t, err)

	rec, err := s.LatestProfile(context.Background(), owner)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSavePostingsKeepsFirstDiscoverer(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, _, postings := seedOwner(t, s, "a@example.com")

	other, err := s.EnsureUser(ctx, "b@example.com")
	require.NoError(t, err)

	n, err := s.SavePostings(ctx, other, []jobs.Posting{
		{Title: "Go Developer", URL: postings[0].URL},
		{Title: "Rust Developer", URL: "https://jobs.example/new"},
		{Title: "Rust Developer", URL: "https://jobs.example/new"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetPosting(ctx, postings[0].ID)
	require.NoError(t, err)
	assert.Equal(t, postings[0].OwnerID, got.OwnerID)

	limited, err := s.ListPostings(ctx, other, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestCachePostingTextIsWriteOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, _, postings := seedOwner(t, s, "a@example.com")
	id := postings[0].ID

	require.NoError(t, s.CachePostingText(ctx, id, "first text"))
	require.NoError(t, s.CachePostingText(ctx, id, "second text"))

	got, err := s.GetPosting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "first text", got.FullText)
}

func TestUpsertMatchKeepsOneRowPerPair(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, rec, postings := seedOwner(t, s, "a@example.com")

	first, err := s.UpsertMatch(ctx, &matching.Match{
		ProfileID: rec.ID,
		PostingID: postings[0].ID,
		Assessment: matching.NewAssessment(matching.SubScores{
			Technical: intPtr(80), Experience: intPtr(60), Education: intPtr(100), Language: intPtr(100), Certificate: intPtr(40),
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, 76, first.Score())

	second, err := s.UpsertMatch(ctx, &matching.Match{
		ProfileID:  rec.ID,
		PostingID:  postings[0].ID,
		Assessment: &matching.Assessment{SubScores: matching.SubScores{Technical: intPtr(100)}, FitReason: "rescored"},
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 70, second.Score())
	assert.Equal(t, "rescored", second.Assessment.FitReason)
	assert.Equal(t, postings[0].Title, second.Title)

	matches, err := s.ListMatches(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestUnscoredPostings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	owner, rec, postings := seedOwner(t, s, "a@example.com")

	_, err := s.UpsertMatch(ctx, &matching.Match{ProfileID: rec.ID, PostingID: postings[0].ID, Assessment: matching.NewAssessment(matching.SubScores{})})
	require.NoError(t, err)

	unscored, err := s.UnscoredPostings(ctx, owner, rec.ID)
	require.NoError(t, err)
	require.Len(t, unscored, 1)
	assert.Equal(t, postings[1].ID, unscored[0].ID)
}

func TestDeletesCascadeToMatches(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	owner, rec, postings := seedOwner(t, s, "a@example.com")

	for _, p := range postings {
		_, err := s.UpsertMatch(ctx, &matching.Match{ProfileID: rec.ID, PostingID: p.ID, Assessment: matching.NewAssessment(matching.SubScores{})})
		require.NoError(t, err)
	}

	require.NoError(t, s.DeletePosting(ctx, owner, postings[0].ID))
	matches, err := s.ListMatches(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	require.NoError(t, s.DeleteProfile(ctx, owner, rec.ID))
	_, err = s.GetMatch(ctx, rec.ID, postings[1].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM matches`).Scan(&count))
	assert.Zero(t, count)
}

func TestDeleteScopedToOwner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, rec, postings := seedOwner(t, s, "a@example.com")

	other, err := s.EnsureUser(ctx, "b@example.com")
	require.NoError(t, err)

	err = s.DeletePosting(ctx, other, postings[0].ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.DeleteProfile(ctx, other, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetProfile(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPosting(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
