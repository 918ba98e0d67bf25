package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/job-matcher/internal/profile"
)

const profileColumns = `id, owner_id, filename, data, created_at`

// SaveProfile stores p for the owner under filename. When the owner already has a
// profile with that filename it is returned untouched and created is false.
func (s *Store) SaveProfile(ctx context.Context, ownerID int64, filename string, p *profile.Profile) (*profile.Record, bool, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, false, fmt.Errorf("marshal profile: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (owner_id, filename, data, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner_id, filename) DO NOTHING`,
		ownerID, filename, string(data), time.Now().UTC())
	if err != nil {
		return nil, false, fmt.Errorf("insert profile: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	rec, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE owner_id = ? AND filename = ?`, ownerID, filename))
	if err != nil {
		return nil, false, err
	}

	return rec, affected > 0, nil
}

func (s *Store) GetProfile(ctx context.Context, id int64) (*profile.Record, error) {
	rec, err := scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("profile", id)
	}
	return rec, err
}

// LatestProfile returns the owner's most recently uploaded profile, or nil when there is none.
func (s *Store) LatestProfile(ctx context.Context, ownerID int64) (*profile.Record, error) {
	rec, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE owner_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// ListProfiles returns the owner's profiles, newest first.
func (s *Store) ListProfiles(ctx context.Context, ownerID int64) ([]*profile.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*profile.Record{}
	for rows.Next() {
		rec, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteProfile removes an owner's profile together with its matches.
func (s *Store) DeleteProfile(ctx context.Context, ownerID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("profile", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*profile.Record, error) {
	var (
		rec  profile.Record
		data string
	)
	if err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Filename, &data, &rec.CreatedAt); err != nil {
		return nil, err
	}

	rec.Profile = &profile.Profile{}
	if err := json.Unmarshal([]byte(data), rec.Profile); err != nil {
		return nil, fmt.Errorf("decode profile %d: %w", rec.ID, err)
	}

	return &rec, nil
}
