package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/job-matcher/internal/jobs"
)

const postingColumns = `id, owner_id, title, company, source_url, source_site, summary, full_text, discovered_at`

// SavePostings inserts postings for the owner in one transaction. A URL that is
// already stored is skipped, whoever discovered it. It returns the number inserted.
func (s *Store) SavePostings(ctx context.Context, ownerID int64, postings []jobs.Posting) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO postings (owner_id, title, company, source_url, source_site, summary, discovered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	created := 0
	for _, p := range postings {
		res, err := stmt.ExecContext(ctx, ownerID, p.Title, p.Company, p.URL, p.Source, p.Summary, now)
		if err != nil {
			return 0, fmt.Errorf("insert posting %s: %w", p.URL, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return created, nil
}

func (s *Store) GetPosting(ctx context.Context, id int64) (*jobs.Posting, error) {
	p, err := scanPosting(s.db.QueryRowContext(ctx, `SELECT `+postingColumns+` FROM postings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("posting", id)
	}
	return p, err
}

// ListPostings returns up to limit of the owner's postings, newest first.
// A non-positive limit returns all of them.
func (s *Store) ListPostings(ctx context.Context, ownerID int64, limit int) ([]jobs.Posting, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryPostings(ctx,
		`SELECT `+postingColumns+` FROM postings WHERE owner_id = ? ORDER BY discovered_at DESC, id DESC LIMIT ?`,
		ownerID, limit)
}

// UnscoredPostings returns the owner's postings without a match for profileID.
func (s *Store) UnscoredPostings(ctx context.Context, ownerID, profileID int64) ([]jobs.Posting, error) {
	return s.queryPostings(ctx,
		`SELECT `+postingColumns+` FROM postings p
		 WHERE p.owner_id = ?
		   AND NOT EXISTS (SELECT 1 FROM matches m WHERE m.posting_id = p.id AND m.profile_id = ?)
		 ORDER BY p.id`,
		ownerID, profileID)
}

// CachePostingText stores the fetched page text. Text already cached is kept.
func (s *Store) CachePostingText(ctx context.Context, postingID int64, text string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE postings SET full_text = ? WHERE id = ? AND (full_text IS NULL OR full_text = '')`,
		text, postingID)
	return err
}

// DeletePosting removes an owner's posting together with its matches.
func (s *Store) DeletePosting(ctx context.Context, ownerID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM postings WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete posting: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("posting", id)
	}
	return nil
}

func (s *Store) queryPostings(ctx context.Context, query string, args ...any) ([]jobs.Posting, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postings := []jobs.Posting{}
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, *p)
	}
	return postings, rows.Err()
}

func scanPosting(row scanner) (*jobs.Posting, error) {
	var (
		p        jobs.Posting
		fullText sql.NullString
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Company, &p.URL, &p.Source, &p.Summary, &fullText, &p.DiscoveredAt)
	if err != nil {
		return nil, err
	}
	p.FullText = fullText.String
	return &p, nil
}
