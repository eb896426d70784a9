package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// APIBaseURL はStrava API v3のベースURLです。
const APIBaseURL = "https://www.strava.com/api/v3"

const (
	defaultPageSize      = 100
	defaultPagePause     = 500 * time.Millisecond
	defaultRateLimitWait = 15 * time.Minute
)

// Activity はStravaのアクティビティです。
// 受信したJSONをそのまま保持し、書き出し時も全フィールドを出力します。
type Activity struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Distance       float64 `json:"distance"`
	ElapsedTime    int64   `json:"elapsed_time"`
	StartDate      string  `json:"start_date"`
	StartDateLocal string  `json:"start_date_local"`

	raw json.RawMessage
}

type activityFields Activity

// UnmarshalJSON は既知のフィールドを読みつつ元のJSONを保存します。
func (a *Activity) UnmarshalJSON(b []byte) error {
	var f activityFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*a = Activity(f)
	a.raw = append(json.RawMessage(nil), b...)
	return nil
}

// MarshalJSON は受信したJSONをそのまま返します。
func (a Activity) MarshalJSON() ([]byte, error) {
	if a.raw != nil {
		return a.raw, nil
	}
	return json.Marshal(activityFields(a))
}

// Day は現地時刻での開始日 (YYYY-MM-DD) を返します。
func (a *Activity) Day() string {
	if len(a.StartDateLocal) < 10 {
		return a.StartDateLocal
	}
	return a.StartDateLocal[:10]
}

// Client はStrava APIクライアントです。
type Client struct {
	HTTP          *http.Client
	BaseURL       string
	PageSize      int
	PagePause     time.Duration
	RateLimitWait time.Duration
}

// NewClient は認証済みのHTTPクライアントからClientを生成します。
func NewClient(httpClient *http.Client) *Client {
	return &Client{
		HTTP:          httpClient,
		BaseURL:       APIBaseURL,
		PageSize:      defaultPageSize,
		PagePause:     defaultPagePause,
		RateLimitWait: defaultRateLimitWait,
	}
}

// ListActivities は期間内の全アクティビティを取得します。
// after/beforeがゼロ値の場合はその方向に制限しません。
// 空のページが返るまでページングし、429の場合は待機して同じページを再取得します。
func (c *Client) ListActivities(ctx context.Context, after, before time.Time) ([]Activity, error) {
	var all []Activity
	for page := 1; ; {
		activities, limited, err := c.fetchPage(ctx, page, after, before)
		if err != nil {
			return nil, err
		}
		if limited {
			log.Warn().Dur("wait", c.RateLimitWait).Int("page", page).Msg("Rate limited by Strava, waiting")
			if err := sleep(ctx, c.RateLimitWait); err != nil {
				return nil, err
			}
			continue
		}
		if len(activities) == 0 {
			break
		}

		log.Info().Int("page", page).Int("count", len(activities)).Msg("Fetched activities")
		all = append(all, activities...)
		page++

		if err := sleep(ctx, c.PagePause); err != nil {
			return nil, err
		}
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, page int, after, before time.Time) ([]Activity, bool, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(c.PageSize))
	q.Set("page", strconv.Itoa(page))
	if !after.IsZero() {
		q.Set("after", strconv.FormatInt(after.Unix(), 10))
	}
	if !before.IsZero() {
		q.Set("before", strconv.FormatInt(before.Unix(), 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/athlete/activities?"+q.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, false, fmt.Errorf("strava returned %s: %s", resp.Status, body)
	}

	var activities []Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, false, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, false, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
