package attendance

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster-backend/internal/platform/apperr"
	"roster-backend/internal/platform/auth"
	"roster-backend/internal/platform/db/dbtest"
	"roster-backend/internal/platform/timeutil"
)

var (
	tokyo, _ = time.LoadLocation("Asia/Tokyo")
	sato     = auth.Identity{TrainerID: "t-sato", Role: auth.RoleTrainer}
)

func at(day, hour, min int) time.Time {
	return time.Date(2024, 6, day, hour, min, 0, 0, tokyo)
}

func newTestService(t *testing.T) (*Service, *timeutil.FixedClock, *sql.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	dbtest.SeedTrainer(t, conn, sato.TrainerID, "Sato", "trainer")
	clock := &timeutil.FixedClock{T: at(1, 9, 0)}
	return NewService(conn, tokyo, WithClock(clock)), clock, conn
}

func countOpen(t *testing.T, conn *sql.DB, trainerID string) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(
		`SELECT COUNT(*) FROM attendances WHERE trainer_id = ? AND clock_out_time IS NULL`, trainerID,
	).Scan(&n))
	return n
}

func TestClockInOutScenario(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	iv, err := svc.ClockIn(ctx, sato)
	require.NoError(t, err)
	assert.NotEmpty(t, iv.ID)

	st, err := svc.Status(ctx, sato)
	require.NoError(t, err)
	assert.Equal(t, StateClockedIn, st.Status)
	require.NotNil(t, st.ClockInTime)
	assert.True(t, st.ClockInTime.Equal(at(1, 9, 0)))

	clock.T = at(1, 9, 5)
	_, err = svc.ClockIn(ctx, sato)
	assert.True(t, apperr.Is(err, apperr.CodeConflict), "second clock-in: %v", err)

	clock.T = at(1, 17, 0)
	out, err := svc.ClockOut(ctx, sato)
	require.NoError(t, err)
	assert.True(t, out.Equal(at(1, 17, 0)))

	_, err = svc.ClockOut(ctx, sato)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound), "second clock-out: %v", err)

	st, err = svc.Status(ctx, sato)
	require.NoError(t, err)
	assert.Equal(t, StatusResponse{Status: StateClockedOut}, st)
}

func TestClockInAgainAfterClockOutSameDay(t *testing.T) {
	svc, clock, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, sato)
	require.NoError(t, err)
	clock.T = at(1, 12, 0)
	_, err = svc.ClockOut(ctx, sato)
	require.NoError(t, err)

	clock.T = at(1, 13, 0)
	_, err = svc.ClockIn(ctx, sato)
	require.NoError(t, err)
	assert.Equal(t, 1, countOpen(t, conn, sato.TrainerID))
}

func TestConcurrentClockInLeavesOneOpenInterval(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ClockIn(ctx, sato)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case apperr.Is(err, apperr.CodeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, countOpen(t, conn, sato.TrainerID))
}

func TestConcurrentClockOutSucceedsOnce(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, sato)
	require.NoError(t, err)
	clock.T = at(1, 17, 0)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ClockOut(ctx, sato)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, notFound int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.Is(err, apperr.CodeNotFound):
			notFound++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, notFound)
}

func TestClockOutWithoutClockIn(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ClockOut(context.Background(), sato)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

// 日をまたいで退勤し忘れた区間は翌日の判定に現れない
func TestOpenIntervalIsScopedToCurrentDay(t *testing.T) {
	svc, clock, conn := newTestService(t)
	ctx := context.Background()

	first, err := svc.ClockIn(ctx, sato)
	require.NoError(t, err)

	clock.T = at(2, 8, 0)
	st, err := svc.Status(ctx, sato)
	require.NoError(t, err)
	assert.Equal(t, StateClockedOut, st.Status)

	_, err = svc.ClockOut(ctx, sato)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	second, err := svc.ClockIn(ctx, sato)
	require.NoError(t, err)
	assert.Equal(t, 2, countOpen(t, conn, sato.TrainerID))

	clock.T = at(2, 18, 0)
	_, err = svc.ClockOut(ctx, sato)
	require.NoError(t, err)

	hist, err := svc.History(ctx, sato)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, second.ID, hist[0].ID)
	assert.False(t, hist[0].InProgress)
	assert.Equal(t, first.ID, hist[1].ID)
	assert.True(t, hist[1].InProgress)
	assert.Nil(t, hist[1].ClockOutTime)
}

// 勤務タイムゾーンの日付で判定する（UTCでは同じ日でも東京では別の日）
func TestDayBoundaryFollowsOperatingTimezone(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	clock.T = at(1, 23, 59)
	_, err := svc.ClockIn(ctx, sato)
	require.NoError(t, err)

	clock.T = at(2, 0, 1)
	_, err = svc.ClockIn(ctx, sato)
	require.NoError(t, err, "a new local day starts a fresh state")
}

func TestHistoryNewestFirstWithDuration(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	for _, d := range []int{1, 2, 3} {
		clock.T = at(d, 9, 0)
		_, err := svc.ClockIn(ctx, sato)
		require.NoError(t, err)
		clock.T = at(d, 17, 30)
		_, err = svc.ClockOut(ctx, sato)
		require.NoError(t, err)
	}

	hist, err := svc.History(ctx, sato)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	for i, want := range []int{3, 2, 1} {
		assert.True(t, hist[i].ClockInTime.Equal(at(want, 9, 0)))
		require.NotNil(t, hist[i].DurationSeconds)
		assert.Equal(t, int64(8*3600+30*60), *hist[i].DurationSeconds)
	}
}

func TestStatusIsPureRead(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.ClockIn(ctx, sato)
	require.NoError(t, err)

	a, err := svc.Status(ctx, sato)
	require.NoError(t, err)
	b, err := svc.Status(ctx, sato)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestActRejectsUnknownAction(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, _, err := svc.Act(context.Background(), sato, Action("break"))
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}

func TestRequiresIdentity(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ClockIn(context.Background(), auth.Identity{})
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
}
