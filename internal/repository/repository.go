package repository

import (
	"context"
	"errors"

	"BoltWatch.dashboard/internal/models"
)

// ErrUnexpectedStatus is wrapped when the backend answers with a non-2xx code.
var ErrUnexpectedStatus = errors.New("unexpected status from backend")

// Repository is where floor data comes from.
type Repository interface {
	FetchReadings(ctx context.Context, floor int) ([]models.Reading, error)
	FetchDiffs(ctx context.Context, floor int) ([]models.DiffRecord, error)
}
