package services

import (
	"context"
	"strings"

	"cane-backend/internal/auth"
	"cane-backend/internal/cache"
	"cane-backend/internal/models"
	"cane-backend/internal/repositories"
	"cane-backend/internal/timeutil"
	"cane-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

// ApprovalService applies reviewer decisions: pending -> approved | rejected
type ApprovalService struct {
	workflow
}

// NewApprovalService creates the approval stage
func NewApprovalService(store repositories.EntryStore, c *cache.Cache, pub EventPublisher) *ApprovalService {
	return &ApprovalService{workflow{Store: store, Cache: c, Publisher: pub}}
}

// Decide finalizes entry id. A second decision on the same entry fails with
// INVALID_TRANSITION; concurrent reviewers cannot both succeed.
func (s *ApprovalService) Decide(ctx context.Context, session auth.Session, id string, req models.StatusRequest) (*models.Entry, error) {
	if err := session.Require(auth.CapApproveEntries); err != nil {
		return nil, rejected("approval", err)
	}

	target := models.EntryStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))
	if !target.IsTerminal() {
		return nil, rejected("approval", utils.ValidationError(map[string]string{
			"status": "must be approved or rejected",
		}))
	}

	current, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, rejected("approval", err)
	}
	if err := checkMillAccess(session, current); err != nil {
		return nil, rejected("approval", err)
	}

	entry, err := s.Store.SetStatus(ctx, id, models.Decision{
		Status:    target,
		DecidedBy: session.UserID,
		Remarks:   strings.TrimSpace(req.Remarks),
		DecidedAt: timeutil.Now(),
	})
	if err != nil {
		return nil, rejected("approval", err)
	}
	s.Cache.InvalidateEntry(ctx, id)

	utils.GetLogger().WithFields(logrus.Fields{
		"entry_id": id,
		"status":   entry.Status,
		"user_id":  session.UserID,
	}).Info("entry decided")

	eventType := models.EventTypeApproved
	if entry.Status == models.StatusRejected {
		eventType = models.EventTypeRejected
	}
	s.record(ctx, entry, eventType, session.UserID, entry.DecisionRemarks)
	return entry, nil
}
