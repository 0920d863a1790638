package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hbnb_web/internal/domain"
)

// maxSnapshots bounds what the fallback listing reads back.
const maxSnapshots = 500

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valPrice(f float64) any {
	if f <= 0 {
		return nil
	}
	return f
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// UpsertPlaces stores the mapped place as JSON plus a few columns for ad-hoc queries.
func (r *Repo) UpsertPlaces(ctx context.Context, ps []domain.Place) error {
	if len(ps) == 0 {
		return nil
	}
	values := make([]string, 0, len(ps))
	args := make([]any, 0, len(ps)*6) // 6 params per row
	for _, p := range ps {
		if p.ID == "" {
			continue
		}
		raw, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal place %s: %w", p.ID, err)
		}
		values = append(values, "(?,?,?,?,?,?)")
		args = append(args,
			p.ID,
			valStr(p.Title),
			valStr(p.City),
			valStr(p.Country),
			valPrice(p.PricePerNight),
			string(raw),
		)
	}
	if len(values) == 0 {
		return nil
	}
	sqlStr := upsertSnapshotPrefix + strings.Join(values, ",") + upsertSnapshotOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) ListPlaces(ctx context.Context) ([]domain.Place, error) {
	rows, err := r.db.QueryContext(ctx, listSnapshotsSQL, maxSnapshots)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Place
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var p domain.Place
		if err := json.Unmarshal(raw, &p); err != nil {
			continue // unreadable row; skip it rather than fail the page
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetPlace(ctx context.Context, id string) (domain.Place, error) {
	var raw []byte
	if err := r.db.QueryRowContext(ctx, getSnapshotSQL, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Place{}, domain.ErrNotFound
		}
		return domain.Place{}, err
	}
	var p domain.Place
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Place{}, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return p, nil
}

func (r *Repo) AddFavorite(ctx context.Context, owner, placeID string) error {
	_, err := r.db.ExecContext(ctx, addFavoriteSQL, owner, placeID)
	return err
}

func (r *Repo) RemoveFavorite(ctx context.Context, owner, placeID string) error {
	_, err := r.db.ExecContext(ctx, removeFavoriteSQL, owner, placeID)
	return err
}

func (r *Repo) ListFavorites(ctx context.Context, owner string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listFavoritesSQL, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
