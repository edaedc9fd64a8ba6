package reporting

import "time"

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

type RangeQuery struct {
	From   string `form:"from"`   // YYYY-MM-DD or "today"
	To     string `form:"to"`     // YYYY-MM-DD or "today"
	Status string `form:"status"` // shifts のみ
	Format string `form:"format"` // export のみ: xlsx | csv
}

type AttendanceRow struct {
	ID              string     `json:"id"`
	TrainerID       string     `json:"trainer_id"`
	TrainerName     string     `json:"trainer_name"`
	ClockInTime     time.Time  `json:"clock_in_time"`
	ClockOutTime    *time.Time `json:"clock_out_time"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
}

type ShiftRow struct {
	ID          string     `json:"id"`
	TrainerID   string     `json:"trainer_id"`
	TrainerName string     `json:"trainer_name"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Status      string     `json:"status"`
	DecidedBy   *string    `json:"decided_by,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

// Export はダウンロード用の生成結果
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}
