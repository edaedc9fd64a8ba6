package shifts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roster-backend/internal/platform/apperr"
	"roster-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

func (s *Store) Insert(ctx context.Context, m *Shift) error {
	const q = `
	INSERT INTO shifts (id, trainer_id, start_time, end_time, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, q,
		m.ID,
		m.TrainerID,
		m.Start.UTC(),
		m.End.UTC(),
		string(m.Status),
		m.CreatedAt.UTC(),
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.ErrInvalid("unknown trainer_id")
		}
		return err
	}
	return nil
}

// ListPending: trainer_name → trainer_id → start_time の順
func (s *Store) ListPending(ctx context.Context) ([]pendingRow, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT s.id, t.id, t.name, s.start_time, s.end_time, s.status
	FROM shifts AS s
	JOIN trainers AS t ON s.trainer_id = t.id
	WHERE s.status = 'pending'
	ORDER BY t.name ASC, t.id ASC, s.start_time ASC, s.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pendingRow
	for rows.Next() {
		var r pendingRow
		var status string
		if err := rows.Scan(&r.ShiftID, &r.TrainerID, &r.TrainerName, &r.Start, &r.End, &status); err != nil {
			return nil, err
		}
		r.Status = Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Decide: status = 'pending' の行だけを更新する（CAS）。
// 0件なら「存在しない or 処理済み」。
func (s *Store) Decide(ctx context.Context, id string, to Status, by string, at time.Time) (int64, error) {
	const q = `
	UPDATE shifts
	SET status = ?, decided_by = ?, decided_at = ?
	WHERE id = ?
	AND status = 'pending'`

	res, err := s.db.ExecContext(ctx, q, string(to), by, at.UTC(), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) GetByID(ctx context.Context, id string) (*Shift, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT id, trainer_id, start_time, end_time, status, decided_by, decided_at, created_at
	FROM shifts
	WHERE id = ?`, id)

	m, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListByTrainer: 開始時刻の昇順
func (s *Store) ListByTrainer(ctx context.Context, trainerID string) ([]Shift, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, trainer_id, start_time, end_time, status, decided_by, decided_at, created_at
	FROM shifts
	WHERE trainer_id = ?
	ORDER BY start_time ASC, id ASC`, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Shift, 0, 16)
	for rows.Next() {
		m, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShift(sc scanner) (*Shift, error) {
	var (
		m      Shift
		status string
	)
	if err := sc.Scan(&m.ID, &m.TrainerID, &m.Start, &m.End, &status, &m.DecidedBy, &m.DecidedAt, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Status = Status(status)
	m.Start = m.Start.UTC()
	m.End = m.End.UTC()
	return &m, nil
}
