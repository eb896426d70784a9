package strava

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/stsysd/milecal/model"
)

func activity(t *testing.T, js string) Activity {
	t.Helper()
	var a Activity
	if err := json.Unmarshal([]byte(js), &a); err != nil {
		t.Fatalf("Failed to decode activity: %v", err)
	}
	return a
}

type fakeLister struct {
	activities []Activity
	after      time.Time
	before     time.Time
	calls      int
}

func (f *fakeLister) ListActivities(ctx context.Context, after, before time.Time) ([]Activity, error) {
	f.calls++
	f.after, f.before = after, before
	return f.activities, nil
}

func TestSummarize(t *testing.T) {
	activities := []Activity{
		activity(t, `{"id": 1, "type": "Run", "distance": 5000, "start_date_local": "2024-03-01T07:00:00Z"}`),
		activity(t, `{"id": 2, "type": "Run", "distance": 3000, "start_date_local": "2024-03-01T18:30:00Z"}`),
		activity(t, `{"id": 3, "type": "WeightTraining", "elapsed_time": 1800, "start_date_local": "2024-03-02T07:00:00Z"}`),
		activity(t, `{"id": 4, "type": "Ride", "distance": 20000, "start_date_local": "2024-03-03T07:00:00Z"}`),
	}

	tests := []struct {
		name    string
		typ     ActivityType
		want    DailySummary
		wantErr bool
	}{
		{
			name: "ランは同じ日を合算",
			typ:  Run,
			want: DailySummary{"2024-03-01": {"distance_miles": 8000 * MilesPerMeter}},
		},
		{
			name: "ウェイトトレーニングは経過時間",
			typ:  WeightTraining,
			want: DailySummary{"2024-03-02": {"elapsed_time": 1800}},
		},
		{
			name:    "未対応の種別",
			typ:     ActivityType("Ride"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Summarize(activities, tt.typ)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Summarize failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d days, got %v", len(tt.want), got)
			}
			for day, entry := range tt.want {
				for k, v := range entry {
					if diff := got[day][k] - v; diff > 1e-9 || diff < -1e-9 {
						t.Errorf("%s %s = %v, want %v", day, k, got[day][k], v)
					}
				}
			}
		})
	}
}

func TestActivity_RoundTripKeepsUnknownFields(t *testing.T) {
	a := activity(t, `{"id": 9, "type": "Run", "kudos_count": 3, "start_date": "2024-01-01T12:00:00Z"}`)

	out, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), "kudos_count") {
		t.Errorf("Expected raw fields to be kept, got %s", out)
	}
}

func TestListActivities_PagingAndRateLimit(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		if r.URL.Path != "/athlete/activities" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("per_page") != "100" || r.URL.Query().Get("after") != "1704067200" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		// 2回目のリクエストだけレート制限
		if n == 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`[{"id": 1, "type": "Run"}, {"id": 2, "type": "Run"}]`))
		case "2":
			w.Write([]byte(`[{"id": 3, "type": "Run"}]`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	c.BaseURL = srv.URL
	c.PagePause = 0
	c.RateLimitWait = time.Millisecond

	got, err := c.ListActivities(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Expected 3 activities, got %d", len(got))
	}
	if requests.Load() != 4 {
		t.Errorf("Expected 4 requests (including the retried page), got %d", requests.Load())
	}
}

func TestListActivities_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" && r.Header.Get("X-Limit") == "" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	c.BaseURL = srv.URL

	t.Run("レート制限中のキャンセル", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if _, err := c.ListActivities(ctx, time.Time{}, time.Time{}); err == nil {
			t.Error("Expected context error while waiting on rate limit")
		}
	})

	t.Run("2xx以外はエラー", func(t *testing.T) {
		c.HTTP = &http.Client{Transport: headerTransport{}}
		_, err := c.ListActivities(context.Background(), time.Time{}, time.Time{})
		if err == nil || !strings.Contains(err.Error(), "401") {
			t.Errorf("Expected 401 error, got %v", err)
		}
	})
}

type headerTransport struct{}

func (headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-Limit", "off")
	return http.DefaultTransport.RoundTrip(r)
}

func TestNewHTTPClient_PersistsRotatedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			if err := r.ParseForm(); err != nil {
				t.Errorf("ParseForm failed: %v", err)
			}
			if r.PostForm.Get("client_id") != "id" || r.PostForm.Get("refresh_token") != "old" {
				t.Errorf("Unexpected token request %v", r.PostForm)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token": "access", "token_type": "Bearer", "refresh_token": "new", "expires_in": 21600}`))
		case "/api":
			if r.Header.Get("Authorization") != "Bearer access" {
				t.Errorf("Unexpected Authorization header %q", r.Header.Get("Authorization"))
			}
		}
	}))
	defer srv.Close()

	var persisted []string
	client := NewHTTPClient(context.Background(),
		Credentials{ClientID: "id", ClientSecret: "secret", RefreshToken: "old"},
		srv.URL+"/oauth/token",
		func(tok string) error {
			persisted = append(persisted, tok)
			return nil
		})

	for i := 0; i < 2; i++ {
		resp, err := client.Get(srv.URL + "/api")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
	}

	if len(persisted) != 1 || persisted[0] != "new" {
		t.Errorf("Expected rotated token persisted once, got %v", persisted)
	}
}

func TestEnvFilePersister(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("STRAVA_CLIENT_ID=123\nSTRAVA_REFRESH_TOKEN=old\n"), 0600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Setenv(RefreshTokenKey, "old")

	if err := EnvFilePersister(path)("new"); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if env[RefreshTokenKey] != "new" || env["STRAVA_CLIENT_ID"] != "123" {
		t.Errorf("Unexpected env file contents %v", env)
	}
	if os.Getenv(RefreshTokenKey) != "new" {
		t.Error("Expected process environment to be updated")
	}
}

func TestSync_WritesNewestFirst(t *testing.T) {
	dir := t.TempDir()
	lister := &fakeLister{activities: []Activity{
		activity(t, `{"type": "Run", "distance": 1609.344, "start_date_local": "2024-01-01T07:00:00Z"}`),
		activity(t, `{"type": "Run", "distance": 3218.688, "start_date_local": "2024-01-03T07:00:00Z"}`),
	}}

	res, err := NewSyncer(lister, dir).Sync(context.Background(), SyncOptions{ActivityType: Run})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if res.Path != filepath.Join(dir, "run_activities.json") || res.Total != 2 {
		t.Errorf("Unexpected result %+v", res)
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	text := string(data)
	if strings.Index(text, "2024-01-03") > strings.Index(text, "2024-01-01") {
		t.Errorf("Expected newest date first:\n%s", text)
	}
	if !strings.Contains(text, "\n    \"2024-01-03\": {\n        \"distance_miles\": ") {
		t.Errorf("Expected 4-space indentation:\n%s", text)
	}

	// 書き出したファイルはそのまま描画の入力になる
	ds, err := model.ParseDataset(res.Path, strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseDataset failed: %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("Expected 2 records, got %d", ds.Len())
	}
}

func TestSync_Incremental(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run_activities.json")
	if err := os.WriteFile(path, []byte(`{"2024-02-10": {"distance_miles": 4.0}}`), 0644); err != nil {
		t.Fatalf("Failed to seed data: %v", err)
	}
	lister := &fakeLister{activities: []Activity{
		activity(t, `{"type": "Run", "distance": 1000, "start_date_local": "2024-02-10T20:00:00Z"}`),
		activity(t, `{"type": "Run", "distance": 2000, "start_date_local": "2024-02-12T07:00:00Z"}`),
	}}

	res, err := NewSyncer(lister, dir).Sync(context.Background(), SyncOptions{ActivityType: Run, Incremental: true})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if want := time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC); !lister.after.Equal(want) {
		t.Errorf("Expected fetch after %v, got %v", want, lister.after)
	}
	if res.Total != 2 {
		t.Errorf("Expected 2 entries, got %d", res.Total)
	}

	data, _ := os.ReadFile(path)
	var got DailySummary
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	// 既存の日付は上書きしない
	if got["2024-02-10"]["distance_miles"] != 4.0 {
		t.Errorf("Expected existing entry kept, got %v", got["2024-02-10"])
	}
}

func TestSync_IncrementalEmptyDefaultsToOneYear(t *testing.T) {
	lister := &fakeLister{}
	s := NewSyncer(lister, t.TempDir())
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	res, err := s.Sync(context.Background(), SyncOptions{ActivityType: WeightTraining, Incremental: true})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if !lister.after.Equal(now.AddDate(0, 0, -365)) {
		t.Errorf("Expected one year ago, got %v", lister.after)
	}
	if _, err := os.Stat(res.Path); !os.IsNotExist(err) {
		t.Error("Expected no file when nothing was fetched")
	}
}

func TestSync_UnsupportedType(t *testing.T) {
	lister := &fakeLister{}
	if _, err := NewSyncer(lister, t.TempDir()).Sync(context.Background(), SyncOptions{ActivityType: "Swim"}); err == nil {
		t.Error("Expected error for unsupported type")
	}
	if lister.calls != 0 {
		t.Error("Expected no API calls for unsupported type")
	}
}

func TestDumpRaw(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, RawFileName)
	if err := os.WriteFile(path, []byte(`[{"id": 1, "start_date": "2024-01-05T10:00:00Z", "gear_id": "g1"}]`), 0644); err != nil {
		t.Fatalf("Failed to seed data: %v", err)
	}
	lister := &fakeLister{activities: []Activity{
		activity(t, `{"id": 2, "start_date": "2024-01-07T10:00:00Z"}`),
		activity(t, `{"id": 3, "start_date": "2024-01-06T10:00:00Z"}`),
	}}

	res, err := NewSyncer(lister, dir).DumpRaw(context.Background(), SyncOptions{Incremental: true})
	if err != nil {
		t.Fatalf("DumpRaw failed: %v", err)
	}
	if want := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC); !lister.after.Equal(want) {
		t.Errorf("Expected fetch after newest start date, got %v", lister.after)
	}
	if res.Total != 3 {
		t.Errorf("Expected 3 activities, got %d", res.Total)
	}

	data, _ := os.ReadFile(path)
	var got []Activity
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	var ids []string
	for _, a := range got {
		ids = append(ids, strconv.FormatInt(a.ID, 10))
	}
	if strings.Join(ids, ",") != "2,3,1" {
		t.Errorf("Expected newest first, got %v", ids)
	}
	if !strings.Contains(string(data), "gear_id") {
		t.Error("Expected raw fields of existing activities to be kept")
	}
}
