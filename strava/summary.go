package strava

import (
	"fmt"
	"strings"
)

// MilesPerMeter はメートルからマイルへの換算係数です。
const MilesPerMeter = 0.000621371

// ActivityType は同期対象のアクティビティ種別です。
type ActivityType string

const (
	Run            ActivityType = "Run"
	WeightTraining ActivityType = "WeightTraining"
)

// SupportedActivityTypes は同期できる種別の一覧です。
var SupportedActivityTypes = []ActivityType{Run, WeightTraining}

// ParseActivityType は文字列を検証してActivityTypeに変換します。
func ParseActivityType(s string) (ActivityType, error) {
	for _, t := range SupportedActivityTypes {
		if string(t) == s {
			return t, nil
		}
	}
	names := make([]string, len(SupportedActivityTypes))
	for i, t := range SupportedActivityTypes {
		names[i] = string(t)
	}
	return "", fmt.Errorf("unsupported activity type %q (supported: %s)", s, strings.Join(names, ", "))
}

// FileName は種別ごとの保存ファイル名を返します。
func (t ActivityType) FileName() string {
	return strings.ToLower(string(t)) + "_activities.json"
}

// DailySummary は日付 (YYYY-MM-DD) ごとの集計値です。
type DailySummary map[string]map[string]float64

// Summarize は指定種別のアクティビティを日別に集計します。同じ日の値は合算します。
func Summarize(activities []Activity, activityType ActivityType) (DailySummary, error) {
	if _, err := ParseActivityType(string(activityType)); err != nil {
		return nil, err
	}

	summary := DailySummary{}
	for i := range activities {
		a := &activities[i]
		if a.Type != string(activityType) {
			continue
		}

		var entry map[string]float64
		switch activityType {
		case Run:
			entry = map[string]float64{"distance_miles": a.Distance * MilesPerMeter}
		case WeightTraining:
			entry = map[string]float64{"elapsed_time": float64(a.ElapsedTime)}
		}

		day := a.Day()
		existing, ok := summary[day]
		if !ok {
			summary[day] = entry
			continue
		}
		for k, v := range entry {
			existing[k] += v
		}
	}
	return summary, nil
}
