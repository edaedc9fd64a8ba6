package reporting

import (
	"bytes"
	"context"
	"strings"
	"time"

	"roster-backend/internal/platform/db"
)

// Store は参照専用。状態遷移は attendance / shifts 側だけが持つ。
type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

// window が nil なら全期間
type window struct {
	start time.Time
	end   time.Time
}

// ListAttendances: clock_in_time が [start, end] に入る区間を新しい順で
func (s *Store) ListAttendances(ctx context.Context, w *window) ([]AttendanceRow, error) {
	var (
		buf  bytes.Buffer
		args []any
	)
	buf.WriteString(`
	SELECT a.id, t.id, t.name, a.clock_in_time, a.clock_out_time
	FROM attendances AS a
	JOIN trainers AS t ON a.trainer_id = t.id
	`)
	if w != nil {
		buf.WriteString(" WHERE a.clock_in_time BETWEEN ? AND ?")
		args = append(args, w.start.UTC(), w.end.UTC())
	}
	buf.WriteString(" ORDER BY a.clock_in_time DESC, a.id DESC")

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AttendanceRow, 0, 64)
	for rows.Next() {
		var r AttendanceRow
		if err := rows.Scan(&r.ID, &r.TrainerID, &r.TrainerName, &r.ClockInTime, &r.ClockOutTime); err != nil {
			return nil, err
		}
		r.ClockInTime = r.ClockInTime.UTC()
		if r.ClockOutTime != nil {
			co := r.ClockOutTime.UTC()
			r.ClockOutTime = &co
			sec := int64(co.Sub(r.ClockInTime) / time.Second)
			r.DurationSeconds = &sec
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListShifts: start_time が [start, end] に入る申請（status 指定時は絞り込み）
func (s *Store) ListShifts(ctx context.Context, w *window, status string) ([]ShiftRow, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)
	buf.WriteString(`
	SELECT s.id, t.id, t.name, s.start_time, s.end_time, s.status, s.decided_by, s.decided_at
	FROM shifts AS s
	JOIN trainers AS t ON s.trainer_id = t.id
	`)
	if w != nil {
		wheres = append(wheres, "s.start_time BETWEEN ? AND ?")
		args = append(args, w.start.UTC(), w.end.UTC())
	}
	if status != "" {
		wheres = append(wheres, "s.status = ?")
		args = append(args, status)
	}
	if len(wheres) > 0 {
		buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	buf.WriteString(" ORDER BY s.start_time DESC, s.id DESC")

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ShiftRow, 0, 64)
	for rows.Next() {
		var r ShiftRow
		if err := rows.Scan(&r.ID, &r.TrainerID, &r.TrainerName, &r.StartTime, &r.EndTime, &r.Status, &r.DecidedBy, &r.DecidedAt); err != nil {
			return nil, err
		}
		r.StartTime, r.EndTime = r.StartTime.UTC(), r.EndTime.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
