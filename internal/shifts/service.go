package shifts

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"roster-backend/internal/platform/apperr"
	"roster-backend/internal/platform/auth"
	"roster-backend/internal/platform/ids"
	"roster-backend/internal/platform/timeutil"
)

// Service はシフト申請の状態機械（pending → confirmed | rejected、どちらも終端）
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

// POST /shifts
func (s *Service) Submit(ctx context.Context, who auth.Identity, in SubmitRequest) (ShiftResponse, error) {
	if err := who.RequireAuthenticated(); err != nil {
		return ShiftResponse{}, err
	}

	trainerID := strings.TrimSpace(in.TrainerID)
	if trainerID == "" || strings.TrimSpace(in.StartTime) == "" || strings.TrimSpace(in.EndTime) == "" {
		return ShiftResponse{}, apperr.ErrInvalid("trainer_id, start_time and end_time are required")
	}
	// 本人分のみ。管理者は代理申請できる。
	if trainerID != who.TrainerID && !who.IsAdmin() {
		return ShiftResponse{}, apperr.ErrForbidden("cannot submit shifts for another trainer")
	}

	start, err := timeutil.ParseInstant(in.StartTime, s.loc)
	if err != nil {
		return ShiftResponse{}, apperr.ErrInvalid("start_time must be RFC3339 or YYYY-MM-DD HH:MM:SS")
	}
	end, err := timeutil.ParseInstant(in.EndTime, s.loc)
	if err != nil {
		return ShiftResponse{}, apperr.ErrInvalid("end_time must be RFC3339 or YYYY-MM-DD HH:MM:SS")
	}
	start, end = timeutil.Storage(start), timeutil.Storage(end)
	if !start.Before(end) {
		return ShiftResponse{}, apperr.ErrInvalid("start_time must be before end_time")
	}
	if !timeutil.SameDay(start, end, s.loc) {
		return ShiftResponse{}, apperr.ErrInvalid("a shift must start and end on the same day")
	}

	idStr, err := s.id.New()
	if err != nil {
		return ShiftResponse{}, err
	}

	m := &Shift{
		ID:        idStr,
		TrainerID: trainerID,
		Start:     start,
		End:       end,
		Status:    StatusPending,
		CreatedAt: timeutil.Storage(s.clock.Now()),
	}
	if err := s.store.Insert(ctx, m); err != nil {
		return ShiftResponse{}, err
	}
	return m.toDTO(), nil
}

// GET /shifts（自分の申請一覧）
func (s *Service) ListMine(ctx context.Context, who auth.Identity) ([]ShiftResponse, error) {
	if err := who.RequireAuthenticated(); err != nil {
		return nil, err
	}
	rows, err := s.store.ListByTrainer(ctx, who.TrainerID)
	if err != nil {
		return nil, err
	}
	out := make([]ShiftResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDTO())
	}
	return out, nil
}

// GET /admin/shifts
func (s *Service) ListPending(ctx context.Context, who auth.Identity) ([]TrainerGroup, error) {
	if err := who.RequireAdmin(); err != nil {
		return nil, err
	}
	rows, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return groupByTrainer(rows), nil
}

// PATCH /admin/shifts/:id
// 同時に判断された場合、条件付き UPDATE に勝った1件だけが成功し、残りは NotFound。
func (s *Service) Decide(ctx context.Context, who auth.Identity, shiftID string, to Status) (DecideResponse, error) {
	if err := who.RequireAdmin(); err != nil {
		return DecideResponse{}, err
	}
	if !ids.Valid(shiftID) {
		return DecideResponse{}, apperr.ErrInvalid("invalid shift id")
	}
	if !to.IsDecision() {
		return DecideResponse{}, apperr.ErrInvalid("status must be confirmed or rejected")
	}

	n, err := s.store.Decide(ctx, shiftID, to, who.TrainerID, timeutil.Storage(s.clock.Now()))
	if err != nil {
		return DecideResponse{}, err
	}
	if n == 0 {
		return DecideResponse{}, apperr.ErrNotFound("shift not found or already decided")
	}
	return DecideResponse{
		Message: fmt.Sprintf("shift status updated to %s", to),
		ID:      shiftID,
		Status:  to,
	}, nil
}

// Get は単一取得（判断結果の再確認用）
func (s *Service) Get(ctx context.Context, who auth.Identity, shiftID string) (ShiftResponse, error) {
	if err := who.RequireAuthenticated(); err != nil {
		return ShiftResponse{}, err
	}
	if !ids.Valid(shiftID) {
		return ShiftResponse{}, apperr.ErrInvalid("invalid shift id")
	}
	m, err := s.store.GetByID(ctx, shiftID)
	if err != nil {
		return ShiftResponse{}, err
	}
	if m == nil || (m.TrainerID != who.TrainerID && !who.IsAdmin()) {
		return ShiftResponse{}, apperr.ErrNotFound("shift not found")
	}
	return m.toDTO(), nil
}
