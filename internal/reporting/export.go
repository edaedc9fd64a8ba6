package reporting

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const (
	sheetName       = "勤怠"
	exportTimestamp = "2006-01-02 15:04:05"
)

var exportHeaders = []string{"ID", "トレーナーID", "トレーナー", "出勤", "退勤", "勤務時間(分)"}

// exportRecord は1行分のセル値（時刻は勤務タイムゾーン表記、打刻中は退勤・勤務時間が空）
func exportRecord(r AttendanceRow, loc *time.Location) []string {
	out, minutes := "", ""
	if r.ClockOutTime != nil {
		out = r.ClockOutTime.In(loc).Format(exportTimestamp)
	}
	if r.DurationSeconds != nil {
		minutes = fmt.Sprintf("%d", *r.DurationSeconds/60)
	}
	return []string{
		r.ID,
		r.TrainerID,
		r.TrainerName,
		r.ClockInTime.In(loc).Format(exportTimestamp),
		out,
		minutes,
	}
}

func renderXLSX(rows []AttendanceRow, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}

	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, r := range rows {
		rec := exportRecord(r, loc)
		vals := make([]any, len(rec))
		for j, v := range rec {
			vals[j] = v
		}
		// 勤務時間は数値セルにする
		if r.DurationSeconds != nil {
			vals[len(vals)-1] = *r.DurationSeconds / 60
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &vals); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(sheetName, "A", "A", 30); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "D", "E", 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderCSV は Excel でそのまま開けるよう Shift_JIS(cp932) で出力する
func renderCSV(rows []AttendanceRow, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	// SJIS で表せない文字は置換文字にする
	tw := transform.NewWriter(&buf, encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()))
	w := csv.NewWriter(tw)
	w.UseCRLF = true

	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(exportRecord(r, loc)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
