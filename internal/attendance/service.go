package attendance

import (
	"context"
	"database/sql"
	"time"

	"roster-backend/internal/platform/apperr"
	"roster-backend/internal/platform/auth"
	"roster-backend/internal/platform/ids"
	"roster-backend/internal/platform/timeutil"
)

// Service は打刻の状態機械（CLOCKED_OUT → CLOCKED_IN → CLOCKED_OUT）。
// 「打刻中」の判定範囲は勤務タイムゾーンでの当日に限る。
type Service struct {
	store *Store
	loc   *time.Location
	clock timeutil.Clock
	id    ids.IDGen
}

type Option func(*Service)

func WithClock(c timeutil.Clock) Option { return func(s *Service) { s.clock = c } }
func WithIDGen(g ids.IDGen) Option      { return func(s *Service) { s.id = g } }

func NewService(conn *sql.DB, loc *time.Location, opts ...Option) *Service {
	s := &Service{
		store: NewStore(conn),
		loc:   loc,
		clock: timeutil.RealClock{},
		id:    ids.NewULIDGen(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// POST /attendance
func (s *Service) Act(ctx context.Context, who auth.Identity, action Action) (ActionResponse, bool, error) {
	switch action {
	case ActionClockIn:
		iv, err := s.ClockIn(ctx, who)
		if err != nil {
			return ActionResponse{}, false, err
		}
		return ActionResponse{Message: "clocked in", AttendanceID: iv.ID, At: &iv.ClockIn}, true, nil
	case ActionClockOut:
		at, err := s.ClockOut(ctx, who)
		if err != nil {
			return ActionResponse{}, false, err
		}
		return ActionResponse{Message: "clocked out", At: &at}, false, nil
	default:
		return ActionResponse{}, false, apperr.ErrInvalid("action must be clock_in or clock_out")
	}
}

// ClockIn は当日の未退勤区間が無い場合に限り新しい区間を作る。
// 存在チェックと挿入は open_key の UNIQUE 制約による1文で行う。
func (s *Service) ClockIn(ctx context.Context, who auth.Identity) (Interval, error) {
	if err := who.RequireAuthenticated(); err != nil {
		return Interval{}, err
	}

	idStr, err := s.id.New()
	if err != nil {
		return Interval{}, err
	}
	now := timeutil.Storage(s.clock.Now())

	iv := Interval{
		ID:        idStr,
		TrainerID: who.TrainerID,
		ClockIn:   now,
	}
	if err := s.store.InsertOpen(ctx, iv, openKey(who.TrainerID, timeutil.DayKey(now, s.loc))); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// ClockOut は当日の未退勤区間を閉じる。無ければ NotFound。
func (s *Service) ClockOut(ctx context.Context, who auth.Identity) (time.Time, error) {
	if err := who.RequireAuthenticated(); err != nil {
		return time.Time{}, err
	}

	now := timeutil.Storage(s.clock.Now())
	n, err := s.store.CloseOpen(ctx, who.TrainerID, openKey(who.TrainerID, timeutil.DayKey(now, s.loc)), now)
	if err != nil {
		return time.Time{}, err
	}
	if n == 0 {
		return time.Time{}, apperr.ErrNotFound("no open attendance to clock out")
	}
	return now, nil
}

// GET /attendance/status
func (s *Service) Status(ctx context.Context, who auth.Identity) (StatusResponse, error) {
	if err := who.RequireAuthenticated(); err != nil {
		return StatusResponse{}, err
	}

	start, end := timeutil.DayWindow(s.clock.Now(), s.loc)
	iv, err := s.store.FindOpen(ctx, who.TrainerID, start, end)
	if err != nil {
		return StatusResponse{}, err
	}
	if iv == nil {
		return StatusResponse{Status: StateClockedOut}, nil
	}
	since := iv.ClockIn
	return StatusResponse{Status: StateClockedIn, ClockInTime: &since}, nil
}

// GET /attendance/history
func (s *Service) History(ctx context.Context, who auth.Identity) ([]IntervalResponse, error) {
	if err := who.RequireAuthenticated(); err != nil {
		return nil, err
	}

	rows, err := s.store.ListByTrainer(ctx, who.TrainerID)
	if err != nil {
		return nil, err
	}
	out := make([]IntervalResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		out = append(out, rows[i].toDTO())
	}
	return out, nil
}
