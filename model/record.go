// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"math"
	"time"
)

// DailyRecord は1日分のランニング距離を表すモデルです。
type DailyRecord struct {
	Date          time.Time `json:"date"`           // UTCの0時に正規化された日付
	DistanceMiles float64   `json:"distance_miles"` // 走行距離（マイル）
}

// NewDailyRecord はDailyRecordの新しいインスタンスを作成します。
func NewDailyRecord(date time.Time, miles float64) (*DailyRecord, error) {
	rec := &DailyRecord{
		Date:          TruncateToDay(date),
		DistanceMiles: miles,
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Key はレコードの日付キー（YYYY-MM-DD）を返します。
func (r *DailyRecord) Key() string {
	return r.Date.Format(DateLayout)
}

// Validate はレコードのデータバリデーションを行います。
func (r *DailyRecord) Validate() error {
	// 日付の検証
	if r.Date.IsZero() {
		return NewDataError("", "date is required")
	}

	// 距離の検証（負の値やNaNは受け付けない）
	if math.IsNaN(r.DistanceMiles) || math.IsInf(r.DistanceMiles, 0) {
		return NewDataError(r.Key(), "distance_miles is not a finite number")
	}
	if r.DistanceMiles < 0 {
		return NewDataError(r.Key(), "distance_miles must not be negative")
	}

	return nil
}
