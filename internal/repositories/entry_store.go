package repositories

import (
	"context"
	"time"

	"cane-backend/internal/models"
)

// EntryStore is the keyed collection of cane delivery entries.
//
// Implementations must report missing ids with a NOT_FOUND AppError and
// writes against a finalized entry with an INVALID_TRANSITION AppError.
// SetStatus is a compare-and-set on status = pending.
type EntryStore interface {
	// Create assigns the id, sets status pending and stores the registration snapshot
	Create(ctx context.Context, entry *models.Entry) error
	// AttachArrival replaces the arrival snapshot without touching status
	AttachArrival(ctx context.Context, id string, arrival models.ArrivalDetails, at time.Time) (*models.Entry, error)
	SetStatus(ctx context.Context, id string, decision models.Decision) (*models.Entry, error)
	Get(ctx context.Context, id string) (*models.Entry, error)
	List(ctx context.Context, filter models.EntryFilter) ([]*models.Entry, error)
	Stats(ctx context.Context, filter models.EntryFilter) (*models.EntryStats, error)

	AppendEvent(ctx context.Context, event *models.EntryEvent) error
	ListEvents(ctx context.Context, entryID string) ([]*models.EntryEvent, error)
}

const defaultListLimit = 100
const maxListLimit = 500

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
