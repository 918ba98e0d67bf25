package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/job-matcher/internal/matching"
)

const matchColumns = `m.id, m.profile_id, m.posting_id, m.technical, m.experience, m.education, m.language, m.certificate, m.analysis, m.updated_at, p.title, p.company, p.source_url`

// UpsertMatch writes the assessment for the (profile, posting) pair, replacing
// any earlier one.
func (s *Store) UpsertMatch(ctx context.Context, m *matching.Match) (*matching.Match, error) {
	if m.Assessment == nil {
		return nil, fmt.Errorf("match has no assessment")
	}

	analysis, err := json.Marshal(m.Assessment)
	if err != nil {
		return nil, fmt.Errorf("marshal assessment: %w", err)
	}

	sub := m.Assessment.SubScores
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matches (profile_id, posting_id, score, technical, experience, education, language, certificate, analysis, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(profile_id, posting_id) DO UPDATE SET
			score = excluded.score,
			technical = excluded.technical,
			experience = excluded.experience,
			education = excluded.education,
			language = excluded.language,
			certificate = excluded.certificate,
			analysis = excluded.analysis,
			updated_at = excluded.updated_at`,
		m.ProfileID, m.PostingID, m.Assessment.Score,
		sub.Technical, sub.Experience, sub.Education, sub.Language, sub.Certificate,
		string(analysis), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("upsert match: %w", err)
	}

	return s.GetMatch(ctx, m.ProfileID, m.PostingID)
}

func (s *Store) GetMatch(ctx context.Context, profileID, postingID int64) (*matching.Match, error) {
	m, err := scanMatch(s.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches m JOIN postings p ON p.id = m.posting_id
		 WHERE m.profile_id = ? AND m.posting_id = ?`, profileID, postingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match for profile %d and posting %d: %w", profileID, postingID, ErrNotFound)
	}
	return m, err
}

// ListMatches returns the matches of a profile, best score first.
func (s *Store) ListMatches(ctx context.Context, profileID int64) ([]*matching.Match, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches m JOIN postings p ON p.id = m.posting_id
		 WHERE m.profile_id = ? ORDER BY m.score DESC, m.id`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []*matching.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func scanMatch(row scanner) (*matching.Match, error) {
	var (
		m        matching.Match
		sub      [5]sql.NullInt64
		analysis string
	)
	err := row.Scan(&m.ID, &m.ProfileID, &m.PostingID,
		&sub[0], &sub[1], &sub[2], &sub[3], &sub[4],
		&analysis, &m.UpdatedAt, &m.Title, &m.Company, &m.URL)
	if err != nil {
		return nil, err
	}

	m.Assessment = &matching.Assessment{}
	if err := json.Unmarshal([]byte(analysis), m.Assessment); err != nil {
		return nil, fmt.Errorf("decode match %d: %w", m.ID, err)
	}

	// The columns are authoritative and the composite is always recomputed from them.
	scores := matching.SubScores{
		Technical:   nullInt(sub[0]),
		Experience:  nullInt(sub[1]),
		Education:   nullInt(sub[2]),
		Language:    nullInt(sub[3]),
		Certificate: nullInt(sub[4]),
	}
	m.Assessment.SubScores = scores.Resolved()
	m.Assessment.Score = matching.Composite(scores)

	return &m, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
