package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cane-backend/internal/models"
	"cane-backend/internal/timeutil"
	"cane-backend/pkg/utils"

	"github.com/google/uuid"
)

// MemoryEntryStore keeps entries in process memory. Every value handed in or
// out is copied, so callers never share snapshots with the store.
type MemoryEntryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	events  map[string][]*models.EntryEvent
	seq     int64
	eventID int64
}

type memoryEntry struct {
	entry *models.Entry
	seq   int64
}

// NewMemoryEntryStore creates an empty in-memory entry store
func NewMemoryEntryStore() *MemoryEntryStore {
	return &MemoryEntryStore{
		entries: make(map[string]*memoryEntry),
		events:  make(map[string][]*models.EntryEvent),
	}
}

func (s *MemoryEntryStore) Create(ctx context.Context, entry *models.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := timeutil.Now()
	entry.ID = uuid.NewString()
	entry.Status = models.StatusPending
	entry.Arrival = nil
	entry.ArrivalAttachedAt = nil
	entry.DecidedAt = nil
	entry.DecidedBy = ""
	entry.DecisionRemarks = ""
	entry.CreatedAt = now
	entry.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.entries[entry.ID] = &memoryEntry{entry: entry.Clone(), seq: s.seq}
	return nil
}

func (s *MemoryEntryStore) AttachArrival(ctx context.Context, id string, arrival models.ArrivalDetails, at time.Time) (*models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.entries[id]
	if !ok {
		return nil, utils.NotFoundError("entry", id)
	}
	if stored.entry.Status.IsTerminal() {
		return nil, utils.InvalidTransitionError(id, string(stored.entry.Status), "arrival update")
	}

	a := arrival
	stored.entry.Arrival = &a
	stored.entry.ArrivalAttachedAt = &at
	stored.entry.UpdatedAt = at
	return stored.entry.Clone(), nil
}

func (s *MemoryEntryStore) SetStatus(ctx context.Context, id string, decision models.Decision) (*models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.entries[id]
	if !ok {
		return nil, utils.NotFoundError("entry", id)
	}
	if !stored.entry.Status.CanTransitionTo(decision.Status) {
		return nil, utils.InvalidTransitionError(id, string(stored.entry.Status), string(decision.Status))
	}

	decidedAt := decision.DecidedAt
	stored.entry.Status = decision.Status
	stored.entry.DecidedBy = decision.DecidedBy
	stored.entry.DecisionRemarks = decision.Remarks
	stored.entry.DecidedAt = &decidedAt
	stored.entry.UpdatedAt = decidedAt
	return stored.entry.Clone(), nil
}

func (s *MemoryEntryStore) Get(ctx context.Context, id string) (*models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.entries[id]
	if !ok {
		return nil, utils.NotFoundError("entry", id)
	}
	return stored.entry.Clone(), nil
}

func (s *MemoryEntryStore) List(ctx context.Context, filter models.EntryFilter) ([]*models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]*memoryEntry, 0, len(s.entries))
	for _, stored := range s.entries {
		if matchesFilter(stored.entry, filter) {
			matched = append(matched, stored)
		}
	}
	s.mu.RUnlock()

	// newest first, insertion order breaks ties
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].seq > matched[j].seq
	})

	limit := normalizeLimit(filter.Limit)
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	result := make([]*models.Entry, 0, limit)
	for i := offset; i < len(matched) && len(result) < limit; i++ {
		result = append(result, matched[i].entry.Clone())
	}
	return result, nil
}

func (s *MemoryEntryStore) Stats(ctx context.Context, filter models.EntryFilter) (*models.EntryStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter.Status = ""
	stats := &models.EntryStats{}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, stored := range s.entries {
		if !matchesFilter(stored.entry, filter) {
			continue
		}
		stats.Total++
		switch stored.entry.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusApproved:
			stats.Approved++
		case models.StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func (s *MemoryEntryStore) AppendEvent(ctx context.Context, event *models.EntryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[event.EntryID]; !ok {
		return utils.NotFoundError("entry", event.EntryID)
	}
	s.eventID++
	event.ID = s.eventID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = timeutil.Now()
	}
	e := *event
	s.events[event.EntryID] = append(s.events[event.EntryID], &e)
	return nil
}

// ListEvents returns the history oldest first
func (s *MemoryEntryStore) ListEvents(ctx context.Context, entryID string) ([]*models.EntryEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.entries[entryID]; !ok {
		return nil, utils.NotFoundError("entry", entryID)
	}
	events := make([]*models.EntryEvent, 0, len(s.events[entryID]))
	for _, ev := range s.events[entryID] {
		e := *ev
		events = append(events, &e)
	}
	return events, nil
}

func matchesFilter(e *models.Entry, f models.EntryFilter) bool {
	if f.MillID != "" && e.MillID != f.MillID {
		return false
	}
	if f.LoadingPointID != "" && e.LoadingPointID != f.LoadingPointID {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.VehicleNumber != "" && !strings.EqualFold(e.VehicleNumber, f.VehicleNumber) {
		return false
	}
	if f.DeviceID != "" && e.DeviceID != f.DeviceID {
		return false
	}
	return true
}
