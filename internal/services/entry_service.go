package services

import (
	"context"

	"cane-backend/internal/auth"
	"cane-backend/internal/cache"
	"cane-backend/internal/metrics"
	"cane-backend/internal/models"
	"cane-backend/internal/repositories"
	"cane-backend/internal/timeutil"
	"cane-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

// EventPublisher pushes entry events to live dashboards
type EventPublisher interface {
	Publish(ev *models.EntryEvent)
}

// workflow holds what every stage needs: the store, the read cache and the
// live feed. Cache and Publisher may be nil.
type workflow struct {
	Store     repositories.EntryStore
	Cache     *cache.Cache
	Publisher EventPublisher
}

// record appends the audit event and publishes it. The transition has
// already been stored, so failures here are only logged.
func (w *workflow) record(ctx context.Context, entry *models.Entry, eventType, actor, notes string) {
	metrics.EntryTransitions.WithLabelValues(eventType).Inc()

	ev := &models.EntryEvent{
		EntryID:   entry.ID,
		EventType: eventType,
		Status:    entry.Status,
		MillID:    entry.MillID,
		Notes:     notes,
		ActorID:   actor,
		CreatedAt: timeutil.Now(),
	}
	if err := w.Store.AppendEvent(ctx, ev); err != nil {
		utils.GetLogger().WithError(err).WithFields(logrus.Fields{
			"entry_id": entry.ID,
			"event":    eventType,
		}).Warn("failed to record entry event")
	}
	if w.Publisher != nil {
		w.Publisher.Publish(ev)
	}
}

func rejected(stage string, err error) error {
	code := utils.CodeOf(err)
	if code == "" {
		code = utils.ErrCodeInternal
	}
	metrics.EntryRejections.WithLabelValues(stage, code).Inc()
	return err
}

// checkMillAccess keeps non-admin users to entries of their own mill
func checkMillAccess(session auth.Session, entry *models.Entry) error {
	if session.Role.IsAdmin() || session.MillID == "" || entry.MillID == "" {
		return nil
	}
	if session.MillID != entry.MillID {
		return utils.NewAppError(utils.ErrCodeForbidden, "entry belongs to another mill", entry.ID)
	}
	return nil
}

// cacheable reports whether entry may be cached. Only finalized entries are:
// they never change again, so a read racing a write cannot store a stale copy.
func cacheable(entry *models.Entry) bool {
	return entry.Status.IsTerminal()
}

// EntryService serves the read side of the workflow
type EntryService struct {
	workflow
}

// NewEntryService creates the read side service
func NewEntryService(store repositories.EntryStore, c *cache.Cache) *EntryService {
	return &EntryService{workflow{Store: store, Cache: c}}
}

// Get returns one entry. Repeated calls without writes in between return equal values.
func (s *EntryService) Get(ctx context.Context, session auth.Session, id string) (*models.Entry, error) {
	entry := &models.Entry{}
	if !s.Cache.GetJSON(ctx, cache.EntryKey(id), entry) {
		var err error
		entry, err = s.Store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if cacheable(entry) {
			s.Cache.SetJSON(ctx, cache.EntryKey(id), entry)
		}
	}

	if err := checkMillAccess(session, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns entries newest first, restricted to the caller's mill unless admin
func (s *EntryService) List(ctx context.Context, session auth.Session, filter models.EntryFilter) ([]*models.Entry, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, utils.ValidationError(map[string]string{"status": "must be pending, approved or rejected"})
	}
	filter.MillID = session.ScopeMill(filter.MillID)
	filter.VehicleNumber = normalizeIdentifier(filter.VehicleNumber)
	return s.Store.List(ctx, filter)
}

// Stats returns the dashboard counters for the caller's scope
func (s *EntryService) Stats(ctx context.Context, session auth.Session, filter models.EntryFilter) (*models.EntryStats, error) {
	filter.MillID = session.ScopeMill(filter.MillID)
	return s.Store.Stats(ctx, filter)
}

// Events returns the audit trail of an entry, oldest first
func (s *EntryService) Events(ctx context.Context, session auth.Session, id string) ([]*models.EntryEvent, error) {
	if _, err := s.Get(ctx, session, id); err != nil {
		return nil, err
	}
	return s.Store.ListEvents(ctx, id)
}
