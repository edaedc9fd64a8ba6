package attendance

import "time"

type ActionRequest struct {
	Action Action `json:"action" binding:"required"`
}

type ActionResponse struct {
	Message      string     `json:"message"`
	AttendanceID string     `json:"attendanceId,omitempty"`
	At           *time.Time `json:"at,omitempty"`
}

type StatusResponse struct {
	Status      State      `json:"status"`
	ClockInTime *time.Time `json:"clockInTime,omitempty"`
}

type IntervalResponse struct {
	ID              string     `json:"id"`
	ClockInTime     time.Time  `json:"clock_in_time"`
	ClockOutTime    *time.Time `json:"clock_out_time"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
	InProgress      bool       `json:"in_progress"`
}
