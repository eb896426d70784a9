// Package source fetches the running log from a local file or an HTTP URL.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/stsysd/milecal/model"
)

// Loader loads datasets. Concurrent loads of the same location share one fetch.
type Loader struct {
	client *http.Client
	group  singleflight.Group
}

// NewLoader creates a loader whose HTTP requests time out after timeout.
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{client: &http.Client{Timeout: timeout}}
}

// Load fetches and parses the dataset at location.
//
// Retrieval failures and JSON syntax errors are *model.FetchError; a document of the
// wrong shape is *model.DataError.
func (l *Loader) Load(ctx context.Context, location string) (*model.Dataset, error) {
	v, err, shared := l.group.Do(location, func() (interface{}, error) {
		return l.load(ctx, location)
	})
	if err != nil {
		return nil, err
	}
	ds := v.(*model.Dataset)
	log.Debug().
		Str("location", location).
		Int("records", ds.Len()).
		Bool("shared", shared).
		Msg("Loaded running data")
	return ds, nil
}

func (l *Loader) load(ctx context.Context, location string) (*model.Dataset, error) {
	body, err := l.open(ctx, location)
	if err != nil {
		return nil, model.NewFetchError(location, err)
	}
	defer body.Close()

	return model.ParseDataset(location, body)
}

func (l *Loader) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !IsURL(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("failed to open data file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// IsURL reports whether location is fetched over HTTP rather than read from disk.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
