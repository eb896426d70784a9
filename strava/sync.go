package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stsysd/milecal/model"
)

// RawFileName は全アクティビティの生データを保存するファイル名です。
const RawFileName = "all_activities.json"

// ActivityLister はアクティビティ一覧を取得します。*Clientが実装します。
type ActivityLister interface {
	ListActivities(ctx context.Context, after, before time.Time) ([]Activity, error)
}

// SyncOptions は同期の条件です。
type SyncOptions struct {
	ActivityType ActivityType
	Start        time.Time // ゼロ値なら制限なし
	End          time.Time // ゼロ値なら制限なし
	Incremental  bool
}

// SyncResult は同期の結果です。
type SyncResult struct {
	Path    string
	Fetched int
	Added   int
	Total   int
}

// Syncer はStravaのアクティビティをデータディレクトリに保存します。
type Syncer struct {
	lister  ActivityLister
	dataDir string
	now     func() time.Time
}

// NewSyncer はSyncerを生成します。
func NewSyncer(lister ActivityLister, dataDir string) *Syncer {
	return &Syncer{lister: lister, dataDir: dataDir, now: time.Now}
}

// Sync は指定種別のアクティビティを取得し、日別集計ファイルを更新します。
func (s *Syncer) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	if _, err := ParseActivityType(string(opts.ActivityType)); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dataDir, opts.ActivityType.FileName())
	existing := DailySummary{}
	if opts.Incremental {
		existing = loadSummary(path)
		log.Info().Str("path", path).Int("entries", len(existing)).Msg("Loaded existing data")
	}

	after, before := opts.Start, opts.End
	if opts.Incremental {
		after = s.incrementalAfter(existing, opts.Start)
		log.Info().Str("after", after.Format(model.DateLayout)).Msg("Fetching activities incrementally")
	}

	activities, err := s.lister.ListActivities(ctx, after, before)
	if err != nil {
		return nil, err
	}
	result := &SyncResult{Path: path, Fetched: len(activities), Total: len(existing)}
	if len(activities) == 0 {
		log.Info().Msg("No new activities found")
		return result, nil
	}

	fresh, err := Summarize(activities, opts.ActivityType)
	if err != nil {
		return nil, err
	}

	merged := fresh
	if opts.Incremental {
		merged = existing
		for day, entry := range fresh {
			if _, ok := merged[day]; ok {
				log.Warn().Str("date", day).Msg("Duplicate entry, skipping")
				continue
			}
			merged[day] = entry
		}
	}

	if err := writeSummary(path, merged); err != nil {
		return nil, err
	}
	result.Added = len(fresh)
	result.Total = len(merged)
	log.Info().Str("type", string(opts.ActivityType)).Int("entries", len(fresh)).Str("path", path).Msg("Updated activity data")
	return result, nil
}

// incrementalAfter は既存データの最新日の翌日を返します。
// データが空の場合はstart、それもなければ1年前です。
func (s *Syncer) incrementalAfter(existing DailySummary, start time.Time) time.Time {
	var latest string
	for day := range existing {
		if day > latest {
			latest = day
		}
	}
	if latest != "" {
		if t, err := model.ParseDate(latest); err == nil {
			return t.AddDate(0, 0, 1)
		}
	}
	if !start.IsZero() {
		return start
	}
	return s.now().AddDate(0, 0, -365)
}

// DumpRaw は全アクティビティの生データをall_activities.jsonに保存します。
func (s *Syncer) DumpRaw(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	path := filepath.Join(s.dataDir, RawFileName)

	var existing []Activity
	if opts.Incremental {
		existing = loadRaw(path)
	}

	after, before := opts.Start, opts.End
	if latest := latestStart(existing); !latest.IsZero() {
		after = latest
	}

	activities, err := s.lister.ListActivities(ctx, after, before)
	if err != nil {
		return nil, err
	}
	result := &SyncResult{Path: path, Fetched: len(activities), Total: len(existing)}
	if len(activities) == 0 {
		log.Info().Msg("No new activities found")
		return result, nil
	}

	all := append(existing, activities...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].StartDate > all[j].StartDate
	})

	data, err := json.MarshalIndent(all, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode activities: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return nil, err
	}

	result.Added = len(activities)
	result.Total = len(all)
	log.Info().Int("total", len(all)).Str("path", path).Msg("Saved raw activities")
	return result, nil
}

func latestStart(activities []Activity) time.Time {
	var latest time.Time
	for i := range activities {
		t, err := time.Parse(time.RFC3339, activities[i].StartDate)
		if err == nil && t.After(latest) {
			latest = t
		}
	}
	return latest
}

// 読めないファイルは空として扱う
func loadSummary(path string) DailySummary {
	summary := DailySummary{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to read existing data")
		}
		return summary
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Existing data is not valid JSON, starting over")
		return DailySummary{}
	}
	return summary
}

func loadRaw(path string) []Activity {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var activities []Activity
	if err := json.Unmarshal(data, &activities); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Existing raw data is not valid JSON, starting over")
		return nil
	}
	return activities
}

// writeSummary は新しい日付が先頭になるよう4スペースインデントで書き出します。
func writeSummary(path string, summary DailySummary) error {
	days := make([]string, 0, len(summary))
	for day := range summary {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, day := range days {
		if i > 0 {
			buf.WriteString(",")
		}
		key, _ := json.Marshal(day)
		value, err := json.MarshalIndent(summary[day], "    ", "    ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", day, err)
		}
		buf.WriteString("\n    ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
	}
	if len(days) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
