package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roster-backend/internal/platform/apperr"
	"roster-backend/internal/platform/db"
)

// Store は attendances テーブルへのアクセス。
// 状態遷移はすべて条件付き書き込み1文で行い、読んでから書く形にはしない。
type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

// InsertOpen: open_key の UNIQUE 制約で「同日の未退勤は1件まで」を書き込み時点で判定する
func (s *Store) InsertOpen(ctx context.Context, iv Interval, key string) error {
	const q = `
	INSERT INTO attendances (id, trainer_id, clock_in_time, clock_out_time, open_key)
	VALUES (?, ?, ?, NULL, ?)`

	_, err := s.db.ExecContext(ctx, q, iv.ID, iv.TrainerID, iv.ClockIn.UTC(), key)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return apperr.ErrConflict("already clocked in")
		}
		if db.IsForeignKeyViolation(err) {
			return apperr.ErrInvalid("unknown trainer")
		}
		return err
	}
	return nil
}

// CloseOpen: clock_out_time IS NULL を条件に退勤時刻をセットする（CAS）。
// 返り値の件数（0 or 1）だけで成否を判断する。
func (s *Store) CloseOpen(ctx context.Context, trainerID, key string, at time.Time) (int64, error) {
	const q = `
	UPDATE attendances
	SET clock_out_time = ?, open_key = NULL
	WHERE trainer_id = ?
	AND open_key = ?
	AND clock_out_time IS NULL`

	res, err := s.db.ExecContext(ctx, q, at.UTC(), trainerID, key)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FindOpen: [start, end] に出勤した未退勤区間（最新1件）。無ければ nil。
func (s *Store) FindOpen(ctx context.Context, trainerID string, start, end time.Time) (*Interval, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT id, trainer_id, clock_in_time, clock_out_time
	FROM attendances
	WHERE trainer_id = ?
	AND clock_out_time IS NULL
	AND clock_in_time BETWEEN ? AND ?
	ORDER BY clock_in_time DESC
	LIMIT 1`, trainerID, start.UTC(), end.UTC())

	var r intervalRow
	if err := row.Scan(&r.ID, &r.TrainerID, &r.ClockIn, &r.ClockOut); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	iv := r.toModel()
	return &iv, nil
}

// ListByTrainer: 新しい順
func (s *Store) ListByTrainer(ctx context.Context, trainerID string) ([]Interval, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, trainer_id, clock_in_time, clock_out_time
	FROM attendances
	WHERE trainer_id = ?
	ORDER BY clock_in_time DESC, id DESC`, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Interval, 0, 32)
	for rows.Next() {
		var r intervalRow
		if err := rows.Scan(&r.ID, &r.TrainerID, &r.ClockIn, &r.ClockOut); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}
