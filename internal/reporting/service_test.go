package reporting

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"roster-backend/internal/platform/apperr"
	"roster-backend/internal/platform/auth"
	"roster-backend/internal/platform/db/dbtest"
	"roster-backend/internal/platform/timeutil"
)

var (
	tokyo, _ = time.LoadLocation("Asia/Tokyo")
	admin    = auth.Identity{TrainerID: "a-1", Role: auth.RoleAdmin}
	trainer  = auth.Identity{TrainerID: "t-1", Role: auth.RoleTrainer}
)

type fixture struct {
	svc  *Service
	conn *sql.DB
	n    int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	dbtest.SeedTrainer(t, conn, admin.TrainerID, "管理者", "admin")
	dbtest.SeedTrainer(t, conn, trainer.TrainerID, "佐藤", "trainer")
	svc := NewService(conn, tokyo)
	svc.clock = &timeutil.FixedClock{T: time.Date(2024, 6, 10, 12, 0, 0, 0, tokyo)}
	return &fixture{svc: svc, conn: conn}
}

// addInterval は 26 文字の連番 ID で勤怠を直接登録する
func (f *fixture) addInterval(t *testing.T, in time.Time, out *time.Time) string {
	t.Helper()
	f.n++
	id := "01J00000000000000000000" + string(rune('A'+f.n/26)) + string(rune('A'+f.n%26)) + "0"
	var outArg any
	if out != nil {
		outArg = out.UTC()
	}
	_, err := f.conn.Exec(`INSERT INTO attendances (id, trainer_id, clock_in_time, clock_out_time) VALUES (?, ?, ?, ?)`,
		id, trainer.TrainerID, in.UTC(), outArg)
	require.NoError(t, err)
	return id
}

func ptr(t time.Time) *time.Time { return &t }

func TestRangeHistorySingleDayBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addInterval(t, time.Date(2024, 6, 4, 23, 59, 59, 999_000_000, tokyo), nil)
	first := f.addInterval(t, time.Date(2024, 6, 5, 0, 0, 0, 0, tokyo), ptr(time.Date(2024, 6, 5, 8, 0, 0, 0, tokyo)))
	last := f.addInterval(t, time.Date(2024, 6, 5, 23, 59, 59, 999_000_000, tokyo), nil)
	f.addInterval(t, time.Date(2024, 6, 6, 0, 0, 0, 0, tokyo), nil)

	rows, err := f.svc.RangeHistory(ctx, admin, RangeQuery{From: "2024-06-05", To: "2024-06-05"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, last, rows[0].ID)
	assert.Equal(t, first, rows[1].ID)
	assert.Equal(t, "佐藤", rows[1].TrainerName)
	require.NotNil(t, rows[1].DurationSeconds)
	assert.Equal(t, int64(8*3600), *rows[1].DurationSeconds)
	assert.Nil(t, rows[0].ClockOutTime)
}

func TestRangeHistoryWithoutBoundsReturnsAll(t *testing.T) {
	f := newFixture(t)
	f.addInterval(t, time.Date(2024, 1, 1, 9, 0, 0, 0, tokyo), nil)
	f.addInterval(t, time.Date(2024, 6, 1, 9, 0, 0, 0, tokyo), nil)

	rows, err := f.svc.RangeHistory(context.Background(), admin, RangeQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.True(t, rows[0].ClockInTime.After(rows[1].ClockInTime))
}

func TestRangeHistoryToday(t *testing.T) {
	f := newFixture(t)
	today := f.addInterval(t, time.Date(2024, 6, 10, 9, 0, 0, 0, tokyo), nil)
	f.addInterval(t, time.Date(2024, 6, 9, 9, 0, 0, 0, tokyo), nil)

	rows, err := f.svc.RangeHistory(context.Background(), admin, RangeQuery{From: "today", To: "today"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, today, rows[0].ID)
}

func TestRangeHistoryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for name, q := range map[string]RangeQuery{
		"only from": {From: "2024-06-01"},
		"only to":   {To: "2024-06-01"},
		"bad from":  {From: "06/01/2024", To: "2024-06-01"},
		"reversed":  {From: "2024-06-02", To: "2024-06-01"},
	} {
		_, err := f.svc.RangeHistory(ctx, admin, q)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument), name)
	}

	_, err := f.svc.RangeHistory(ctx, trainer, RangeQuery{})
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestShiftHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	insert := func(id string, start time.Time, status string) {
		_, err := f.conn.Exec(`INSERT INTO shifts (id, trainer_id, start_time, end_time, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id, trainer.TrainerID, start.UTC(), start.Add(2*time.Hour).UTC(), status, start.UTC())
		require.NoError(t, err)
	}
	insert("01J0000000000000000000000A", time.Date(2024, 6, 1, 10, 0, 0, 0, tokyo), "confirmed")
	insert("01J0000000000000000000000B", time.Date(2024, 6, 2, 10, 0, 0, 0, tokyo), "pending")
	insert("01J0000000000000000000000C", time.Date(2024, 6, 3, 10, 0, 0, 0, tokyo), "rejected")

	rows, err := f.svc.ShiftHistory(ctx, admin, RangeQuery{From: "2024-06-01", To: "2024-06-02"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "01J0000000000000000000000B", rows[0].ID)

	rows, err = f.svc.ShiftHistory(ctx, admin, RangeQuery{Status: "rejected"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "01J0000000000000000000000C", rows[0].ID)

	_, err = f.svc.ShiftHistory(ctx, admin, RangeQuery{Status: "cancelled"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t)
	f.addInterval(t, time.Date(2024, 6, 5, 9, 0, 0, 0, tokyo), ptr(time.Date(2024, 6, 5, 17, 30, 0, 0, tokyo)))

	out, err := f.svc.ExportAttendances(context.Background(), admin, RangeQuery{From: "2024-06-05", To: "2024-06-05"})
	require.NoError(t, err)
	assert.Equal(t, "attendances_20240610_120000.xlsx", out.Filename)

	book, err := excelize.OpenReader(bytes.NewReader(out.Body))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "佐藤", rows[1][2])
	assert.Equal(t, "2024-06-05 09:00:00", rows[1][3])
	assert.Equal(t, "510", rows[1][5])
}

func TestExportCSVIsShiftJIS(t *testing.T) {
	f := newFixture(t)
	f.addInterval(t, time.Date(2024, 6, 5, 9, 0, 0, 0, tokyo), nil)

	out, err := f.svc.ExportAttendances(context.Background(), admin, RangeQuery{Format: "csv"})
	require.NoError(t, err)
	assert.Contains(t, out.ContentType, "Shift_JIS")

	r := csv.NewReader(transform.NewReader(bytes.NewReader(out.Body), japanese.ShiftJIS.NewDecoder()))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeaders, records[0])
	assert.Equal(t, "佐藤", records[1][2])
	assert.Equal(t, "", records[1][4])
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ExportAttendances(context.Background(), admin, RangeQuery{Format: "pdf"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}
