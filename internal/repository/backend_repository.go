package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"BoltWatch.dashboard/internal/models"
)

const (
	boltPath = "/api/bolt"
	diffPath = "/api/diff"

	// FloorHeader carries the floor on every backend request.
	FloorHeader = "floor"
)

// BackendRepository reads floor data from the bolt backend over HTTP.
type BackendRepository struct {
	client *resty.Client
	log    zerolog.Logger
}

// NewBackendRepository creates a BackendRepository for baseURL. A zero
// timeout leaves requests bounded only by their context.
func NewBackendRepository(baseURL string, timeout time.Duration, log zerolog.Logger) *BackendRepository {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &BackendRepository{client: client, log: log}
}

// FetchReadings calls GET /api/bolt for the floor.
func (r *BackendRepository) FetchReadings(ctx context.Context, floor int) ([]models.Reading, error) {
	var readings []models.Reading
	if err := r.get(ctx, boltPath, floor, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

// FetchDiffs calls GET /api/diff for the floor.
func (r *BackendRepository) FetchDiffs(ctx context.Context, floor int) ([]models.DiffRecord, error) {
	var diffs []models.DiffRecord
	if err := r.get(ctx, diffPath, floor, &diffs); err != nil {
		return nil, err
	}
	return diffs, nil
}

func (r *BackendRepository) get(ctx context.Context, path string, floor int, out any) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader(FloorHeader, strconv.Itoa(floor)).
		Get(path)
	if err != nil {
		return fmt.Errorf("GET %s (floor %d): %w", path, floor, err)
	}
	r.log.Debug().
		Str("path", path).
		Int("floor", floor).
		Int("status", resp.StatusCode()).
		Dur("took", resp.Time()).
		Msg("backend response")
	if resp.IsError() {
		return fmt.Errorf("GET %s (floor %d): %w: %s", path, floor, ErrUnexpectedStatus, resp.Status())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decoding %s response (floor %d): %w", path, floor, err)
	}
	return nil
}
