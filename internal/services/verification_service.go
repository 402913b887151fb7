package services

import (
	"context"

	"cane-backend/internal/auth"
	"cane-backend/internal/cache"
	"cane-backend/internal/metrics"
	"cane-backend/internal/models"
	"cane-backend/internal/repositories"
)

// FieldPair puts one registration value next to its arrival counterpart.
// Match is set only where both sides hold the same kind of value.
type FieldPair struct {
	Label        string `json:"label"`
	Registration string `json:"registration"`
	Arrival      string `json:"arrival"`
	Match        *bool  `json:"match,omitempty"`
}

// Comparison is the side-by-side view reviewers decide on. Mismatches is
// advisory; it never blocks a decision.
type Comparison struct {
	EntryID      string                     `json:"entryId"`
	Status       models.EntryStatus         `json:"status"`
	MillID       string                     `json:"millId,omitempty"`
	Registration models.RegistrationDetails `json:"registrationDetails"`
	Arrival      *models.ArrivalDetails     `json:"arrivalDetails"`
	Fields       []FieldPair                `json:"fields"`
	Mismatches   int                        `json:"mismatches"`
}

// VerificationService builds the side-by-side comparison reviewers decide on
type VerificationService struct {
	Store repositories.EntryStore
	Cache *cache.Cache
}

// NewVerificationService creates a new verification service
func NewVerificationService(store repositories.EntryStore, c *cache.Cache) *VerificationService {
	return &VerificationService{Store: store, Cache: c}
}

// Compare builds the comparison for entry id without modifying it
func (s *VerificationService) Compare(ctx context.Context, session auth.Session, id string) (*Comparison, error) {
	cmp := &Comparison{}
	if s.Cache.GetJSON(ctx, cache.ComparisonKey(id), cmp) {
		if err := checkMillAccess(session, &models.Entry{ID: cmp.EntryID, MillID: cmp.MillID}); err != nil {
			return nil, err
		}
		return cmp, nil
	}

	entry, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkMillAccess(session, entry); err != nil {
		return nil, err
	}

	cmp = Compare(entry)
	metrics.ComparisonMismatches.Observe(float64(cmp.Mismatches))
	if cacheable(entry) {
		s.Cache.SetJSON(ctx, cache.ComparisonKey(id), cmp)
	}
	return cmp, nil
}

// Compare pairs the registration and arrival snapshots of e. Without an
// arrival the arrival column is empty and nothing is flagged.
func Compare(e *models.Entry) *Comparison {
	reg := e.Registration
	var arr models.ArrivalDetails
	if e.Arrival != nil {
		arr = *e.Arrival
	}

	cmp := &Comparison{
		EntryID:      e.ID,
		Status:       e.Status,
		MillID:       e.MillID,
		Registration: reg,
		Arrival:      e.Arrival,
	}

	add := func(label, r, a string, comparable bool) {
		pair := FieldPair{Label: label, Registration: r, Arrival: a}
		if comparable && e.Arrival != nil {
			ok := comparableKey(r) == comparableKey(a)
			pair.Match = &ok
			if !ok {
				cmp.Mismatches++
			}
		}
		cmp.Fields = append(cmp.Fields, pair)
	}

	add("Vehicle Number", reg.VehicleNumber, arr.VehicleNumber, true)
	add("Registration Number", reg.RegistrationNumber, arr.RegistrationNumber, true)
	add("Permit Number / Arrival Time", reg.PermitNumber, arr.ArrivalTime, false)
	add("Vehicle Type / Arrival Location", reg.VehicleType, arr.ArrivalLocation, false)
	add("Driver Name", reg.DriverName, "", false)
	add("Vehicle Location", reg.VehicleLocation, "", false)
	add("Location", reg.Location, arr.Location, false)
	add("Vehicle Picture", reg.VehiclePicture, arr.VehiclePicture, false)
	add("Permit Picture", reg.PermitPicture, arr.PermitPicture, false)
	add("Driver Picture", reg.DriverPicture, arr.DriverPicture, false)

	return cmp
}
