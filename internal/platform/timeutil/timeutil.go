// Package timeutil は日境界の計算を一箇所にまとめる。
// 打刻・シフト申請・レポートはすべて DayWindow を通して「その日」を決める。
package timeutil

import (
	"errors"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	// 旧クライアント（MySQL形式のローカル時刻）
	localLayout        = "2006-01-02 15:04:05"
	localLayoutMinutes = "2006-01-02 15:04"
)

var ErrBadFormat = errors.New("unrecognized time format")

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock はテスト用
type FixedClock struct{ T time.Time }

func (f *FixedClock) Now() time.Time { return f.T }

// DayWindow は t が属する loc 上の暦日を [00:00:00.000, 23:59:59.999] で返す（両端含む）
func DayWindow(t time.Time, loc *time.Location) (start, end time.Time) {
	lt := t.In(loc)
	start = time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	end = time.Date(lt.Year(), lt.Month(), lt.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}

// RangeWindow は from 日の開始から to 日の終了まで
func RangeWindow(from, to time.Time, loc *time.Location) (start, end time.Time) {
	start, _ = DayWindow(from, loc)
	_, end = DayWindow(to, loc)
	return start, end
}

// DayKey: loc 上の "YYYY-MM-DD"
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayKey(a, loc) == DayKey(b, loc)
}

// ParseDate は "YYYY-MM-DD" または "today" を loc の日付として解釈する
func ParseDate(s string, now time.Time, loc *time.Location) (time.Time, error) {
	v := strings.TrimSpace(strings.ToLower(s))
	if v == "today" {
		start, _ := DayWindow(now, loc)
		return start, nil
	}
	return time.ParseInLocation(DateLayout, v, loc)
}

// ParseInstant は RFC3339 か、タイムゾーン無しのローカル時刻（loc で解釈）を受け付ける
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, ErrBadFormat
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	for _, layout := range []string{localLayout, localLayoutMinutes, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadFormat
}

// Storage は永続化用の正規形（UTC・ミリ秒精度）
func Storage(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
