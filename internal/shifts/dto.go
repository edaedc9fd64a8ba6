package shifts

import "time"

// シフト申請リクエスト。時刻は RFC3339 か "YYYY-MM-DD HH:MM:SS"（勤務タイムゾーン）
type SubmitRequest struct {
	TrainerID string `json:"trainer_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type SubmitResponse struct {
	Message string        `json:"message"`
	Shift   ShiftResponse `json:"shift"`
}

type ShiftResponse struct {
	ID        string    `json:"id"`
	TrainerID string    `json:"trainer_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    Status    `json:"status"`
}

type TrainerGroup struct {
	TrainerID   string         `json:"trainer_id"`
	TrainerName string         `json:"trainer_name"`
	Shifts      []ShiftInGroup `json:"shifts"`
}

type ShiftInGroup struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    Status    `json:"status"`
}

type DecideRequest struct {
	Status Status `json:"status" binding:"required"`
}

type DecideResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Status  Status `json:"status"`
}

type shiftURI struct {
	ID string `uri:"id" binding:"required,ulid"`
}
