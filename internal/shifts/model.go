package shifts

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// IsDecision: pending からの遷移先として許されるか（どちらも終端）
func (s Status) IsDecision() bool { return s == StatusConfirmed || s == StatusRejected }

func (s Status) Valid() bool { return s == StatusPending || s.IsDecision() }

// Shift は shifts テーブルの1行を表す
type Shift struct {
	ID        string
	TrainerID string
	Start     time.Time
	End       time.Time
	Status    Status
	DecidedBy *string
	DecidedAt *time.Time
	CreatedAt time.Time
}

// pendingRow: trainers と JOIN した申請中シフト（trainer_name, start_time 順）
type pendingRow struct {
	ShiftID     string
	TrainerID   string
	TrainerName string
	Start       time.Time
	End         time.Time
	Status      Status
}

func (s Shift) toDTO() ShiftResponse {
	return ShiftResponse{
		ID:        s.ID,
		TrainerID: s.TrainerID,
		StartTime: s.Start.UTC(),
		EndTime:   s.End.UTC(),
		Status:    s.Status,
	}
}

// groupByTrainer は並び順を保ったままトレーナー単位にまとめる。
// 入力はトレーナー順に整列済みであること（同一トレーナーの行は連続する）。
func groupByTrainer(rows []pendingRow) []TrainerGroup {
	out := make([]TrainerGroup, 0)
	index := make(map[string]int, len(rows))
	for _, r := range rows {
		i, ok := index[r.TrainerID]
		if !ok {
			out = append(out, TrainerGroup{
				TrainerID:   r.TrainerID,
				TrainerName: r.TrainerName,
				Shifts:      make([]ShiftInGroup, 0, 4),
			})
			i = len(out) - 1
			index[r.TrainerID] = i
		}
		out[i].Shifts = append(out[i].Shifts, ShiftInGroup{
			ID:        r.ShiftID,
			StartTime: r.Start.UTC(),
			EndTime:   r.End.UTC(),
			Status:    r.Status,
		})
	}
	return out
}
