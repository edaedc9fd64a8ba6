package reporting

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"roster-backend/internal/platform/apperr"
	"roster-backend/internal/platform/auth"
	"roster-backend/internal/platform/db"
	"roster-backend/internal/platform/timeutil"
)

type Service struct {
	db    *sql.DB
	loc   *time.Location
	clock timeutil.Clock
}

func NewService(conn *sql.DB, loc *time.Location) *Service {
	return &Service{db: conn, loc: loc, clock: timeutil.RealClock{}}
}

// GET /admin/attendances?from&to
// from/to を両方省略した場合は全期間。
func (s *Service) RangeHistory(ctx context.Context, who auth.Identity, q RangeQuery) ([]AttendanceRow, error) {
	if err := who.RequireAdmin(); err != nil {
		return nil, err
	}
	w, err := s.window(q)
	if err != nil {
		return nil, err
	}

	var out []AttendanceRow
	err = db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		rows, err := NewStore(tx).ListAttendances(ctx, w)
		out = rows
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GET /admin/shifts/history?from&to&status
func (s *Service) ShiftHistory(ctx context.Context, who auth.Identity, q RangeQuery) ([]ShiftRow, error) {
	if err := who.RequireAdmin(); err != nil {
		return nil, err
	}
	w, err := s.window(q)
	if err != nil {
		return nil, err
	}
	status := strings.TrimSpace(strings.ToLower(q.Status))
	switch status {
	case "", "pending", "confirmed", "rejected":
	default:
		return nil, apperr.ErrInvalid("status must be pending, confirmed or rejected")
	}

	var out []ShiftRow
	err = db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		rows, err := NewStore(tx).ListShifts(ctx, w, status)
		out = rows
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GET /admin/attendances/export?from&to&format
func (s *Service) ExportAttendances(ctx context.Context, who auth.Identity, q RangeQuery) (Export, error) {
	format := strings.ToLower(strings.TrimSpace(q.Format))
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatCSV {
		return Export{}, apperr.ErrInvalid("format must be xlsx or csv")
	}

	rows, err := s.RangeHistory(ctx, who, q)
	if err != nil {
		return Export{}, err
	}

	name := "attendances_" + s.clock.Now().In(s.loc).Format("20060102_150405")
	switch format {
	case FormatCSV:
		body, err := renderCSV(rows, s.loc)
		if err != nil {
			return Export{}, err
		}
		return Export{Filename: name + ".csv", ContentType: "text/csv; charset=Shift_JIS", Body: body}, nil
	default:
		body, err := renderXLSX(rows, s.loc)
		if err != nil {
			return Export{}, err
		}
		return Export{
			Filename:    name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	}
}

// window は from/to を勤務タイムゾーンの日単位の閉区間に変換する
func (s *Service) window(q RangeQuery) (*window, error) {
	from, to := strings.TrimSpace(q.From), strings.TrimSpace(q.To)
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, apperr.ErrInvalid("from and to must be given together")
	}

	now := s.clock.Now()
	f, err := timeutil.ParseDate(from, now, s.loc)
	if err != nil {
		return nil, apperr.ErrInvalid("from must be YYYY-MM-DD or 'today'")
	}
	t, err := timeutil.ParseDate(to, now, s.loc)
	if err != nil {
		return nil, apperr.ErrInvalid("to must be YYYY-MM-DD or 'today'")
	}
	if t.Before(f) {
		return nil, apperr.ErrInvalid("to must be >= from")
	}

	start, end := timeutil.RangeWindow(f, t, s.loc)
	return &window{start: start, end: end}, nil
}
