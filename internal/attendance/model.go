package attendance

import "time"

type Action string

const (
	ActionClockIn  Action = "clock_in"
	ActionClockOut Action = "clock_out"
)

type State string

const (
	StateClockedIn  State = "clocked_in"
	StateClockedOut State = "clocked_out"
)

// Interval は出勤〜退勤の1区間。ClockOut が nil の間は「打刻中」。
type Interval struct {
	ID        string
	TrainerID string
	ClockIn   time.Time
	ClockOut  *time.Time
}

// Duration は保存せず毎回算出する。打刻中は ok=false。
func (iv Interval) Duration() (d time.Duration, ok bool) {
	if iv.ClockOut == nil {
		return 0, false
	}
	return iv.ClockOut.Sub(iv.ClockIn), true
}

// DB行に対応（スキャン用）
type intervalRow struct {
	ID        string
	TrainerID string
	ClockIn   time.Time
	ClockOut  *time.Time
}

func (r intervalRow) toModel() Interval {
	iv := Interval{
		ID:        r.ID,
		TrainerID: r.TrainerID,
		ClockIn:   r.ClockIn.UTC(),
	}
	if r.ClockOut != nil {
		out := r.ClockOut.UTC()
		iv.ClockOut = &out
	}
	return iv
}

func (iv Interval) toDTO() IntervalResponse {
	res := IntervalResponse{
		ID:           iv.ID,
		ClockInTime:  iv.ClockIn,
		ClockOutTime: iv.ClockOut,
		InProgress:   iv.ClockOut == nil,
	}
	if d, ok := iv.Duration(); ok {
		sec := int64(d / time.Second)
		res.DurationSeconds = &sec
	}
	return res
}

// openKey は未退勤区間の一意キー（"<trainer_id>|<YYYY-MM-DD>"）
func openKey(trainerID, day string) string {
	return trainerID + "|" + day
}
