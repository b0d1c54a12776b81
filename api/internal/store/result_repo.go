// Package store persists gold solutions (JSON files) and grading results
// (Postgres cache keyed by image hash).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"grader-bot/api/internal/grading"
)

var ErrNotFound = sql.ErrNoRows

// ResultRepo caches grading runs so re-sent photos of the same work do not
// trigger OCR and grading again.
type ResultRepo struct{ DB *sql.DB }

func NewResultRepo(db *sql.DB) *ResultRepo { return &ResultRepo{DB: db} }

type ResultRow struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	ChatID       int64
	MediaGroupID string
	ImageHash    string
	Solution     string
	Engine       string
	Model        string
	Result       grading.Result
	Percentage   float64
}

// FindByHash returns the freshest cached result for (image_hash, solution).
// maxAge > 0 rejects stale rows; 0 means any age.
func (r *ResultRepo) FindByHash(ctx context.Context, imageHash, solution string, maxAge time.Duration) (*ResultRow, error) {
	const q = `
select id, created_at,
       coalesce(chat_id,0) as chat_id,
       coalesce(media_group_id,'') as media_group_id,
       image_hash, solution, engine, model,
       result_json,
       coalesce(percentage,0) as percentage
from grading_results
where image_hash = $1 and solution = $2
order by created_at desc
limit 1`
	row := r.DB.QueryRowContext(ctx, q, imageHash, solution)

	var (
		id           uuid.UUID
		ts           time.Time
		chatID       int64
		mediaGroupID string
		imgHash      string
		solName      string
		engine       string
		model        string
		js           []byte
		percentage   float64
	)
	if err := row.Scan(&id, &ts, &chatID, &mediaGroupID, &imgHash, &solName,
		&engine, &model, &js, &percentage); err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return nil, ErrNotFound
	}
	var res grading.Result
	if err := json.Unmarshal(js, &res); err != nil {
		// broken JSON counts as a miss
		return nil, ErrNotFound
	}
	return &ResultRow{
		ID:           id,
		CreatedAt:    ts,
		ChatID:       chatID,
		MediaGroupID: mediaGroupID,
		ImageHash:    imgHash,
		Solution:     solName,
		Engine:       engine,
		Model:        model,
		Result:       res,
		Percentage:   percentage,
	}, nil
}

// Upsert stores a grading run; an existing (image_hash, solution) row is
// replaced.
func (r *ResultRepo) Upsert(
	ctx context.Context,
	chatID int64,
	mediaGroupID, imageHash, solution, engine, model string,
	res *grading.Result,
) error {
	js, err := json.Marshal(res)
	if err != nil {
		return err
	}
	const q = `
insert into grading_results (
  id, chat_id, media_group_id, image_hash, solution, engine, model,
  result_json, percentage
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
on conflict (image_hash, solution) do update
set chat_id = excluded.chat_id,
    media_group_id = excluded.media_group_id,
    engine = excluded.engine,
    model = excluded.model,
    result_json = excluded.result_json,
    percentage = excluded.percentage,
    created_at = now()`
	_, err = r.DB.ExecContext(ctx, q,
		uuid.New(), chatID, mediaGroupID, imageHash, solution, engine, model,
		js, res.Summary.Percentage,
	)
	return err
}

// PurgeOlderThan trims old cache rows.
func (r *ResultRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from grading_results where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
