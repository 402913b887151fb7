package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"cane-backend/internal/auth"
	"cane-backend/internal/models"
	"cane-backend/internal/repositories"
	"cane-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.EntryEvent
}

func (p *recordingPublisher) Publish(ev *models.EntryEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.EventType)
	}
	return out
}

type testWorkflow struct {
	store        *repositories.MemoryEntryStore
	pub          *recordingPublisher
	registration *RegistrationService
	arrival      *ArrivalService
	verification *VerificationService
	approval     *ApprovalService
	entries      *EntryService
}

func newTestWorkflow(enforceMatch bool) *testWorkflow {
	store := repositories.NewMemoryEntryStore()
	pub := &recordingPublisher{}
	return &testWorkflow{
		store:        store,
		pub:          pub,
		registration: NewRegistrationService(store, nil, pub, nil),
		arrival:      NewArrivalService(store, nil, pub, enforceMatch),
		verification: NewVerificationService(store, nil),
		approval:     NewApprovalService(store, nil, pub),
		entries:      NewEntryService(store, nil),
	}
}

var (
	adminSession       = auth.Session{UserID: "admin-1", Role: auth.RoleSuperAdmin}
	reviewerSession    = auth.Session{UserID: "lp-1", Role: auth.RoleLoadingPoint, MillID: "mill-1"}
	transporterSession = auth.Session{UserID: "tr-1", Role: auth.RoleTransporter, MillID: "mill-1"}
	otherMillSession   = auth.Session{UserID: "tr-2", Role: auth.RoleTransporter, MillID: "mill-2"}
)

func registrationRequest() *models.RegistrationRequest {
	return &models.RegistrationRequest{
		VehicleNumber:      "MH-01-AB-1234",
		RegistrationNumber: "REG-2024-001",
		PermitNumber:       "PRM-88",
		VehicleType:        "Truck",
		DriverName:         "Rashid",
		Location:           "Village Kot Adu",
		VehicleLocation:    "Plot 7",
	}
}

func arrivalRequest() *models.ArrivalRequest {
	return &models.ArrivalRequest{
		VehicleNumber:      "MH-01-AB-1234",
		RegistrationNumber: "REG-2024-001",
		ArrivalTime:        "10:30 AM",
		ArrivalLocation:    "Mill Gate 2",
		Location:           "Mill Yard",
	}
}

func TestWorkflow_RegisterArriveApprove(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkflow(true)

	entry, err := w.registration.Submit(ctx, transporterSession, registrationRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, entry.Status)
	assert.Equal(t, "mill-1", entry.MillID, "mill taken from the session")
	assert.Nil(t, entry.Arrival)

	entry, err = w.arrival.Submit(ctx, transporterSession, entry.ID, arrivalRequest())
	require.NoError(t, err)
	require.NotNil(t, entry.Arrival)
	assert.Equal(t, "10:30 AM", entry.Arrival.ArrivalTime)
	assert.Equal(t, models.StatusPending, entry.Status)

	cmp, err := w.verification.Compare(ctx, reviewerSession, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cmp.Mismatches)

	entry, err = w.approval.Decide(ctx, reviewerSession, entry.ID, models.StatusRequest{Status: "approved", Remarks: " ok "})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, entry.Status)
	assert.Equal(t, "ok", entry.DecisionRemarks)
	assert.Equal(t, "lp-1", entry.DecidedBy)

	_, err = w.approval.Decide(ctx, reviewerSession, entry.ID, models.StatusRequest{Status: "approved"})
	assert.True(t, utils.IsInvalidTransition(err))
	_, err = w.approval.Decide(ctx, reviewerSession, entry.ID, models.StatusRequest{Status: "rejected"})
	assert.True(t, utils.IsInvalidTransition(err))

	_, err = w.arrival.Submit(ctx, transporterSession, entry.ID, arrivalRequest())
	assert.True(t, utils.IsInvalidTransition(err))

	assert.Equal(t, []string{
		models.EventTypeRegistered,
		models.EventTypeArrivalAttached,
		models.EventTypeApproved,
	}, w.pub.types())

	events, err := w.entries.Events(ctx, adminSession, entry.ID)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestRegistration_NormalizesIdentifiers(t *testing.T) {
	w := newTestWorkflow(true)
	req := registrationRequest()
	req.VehicleNumber = "  mh-01-ab-1234 "
	req.RegistrationNumber = "reg-2024-001"

	entry, err := w.registration.Submit(context.Background(), transporterSession, req)
	require.NoError(t, err)
	assert.Equal(t, "MH-01-AB-1234", entry.VehicleNumber)
	assert.Equal(t, "REG-2024-001", entry.Registration.RegistrationNumber)
}

func TestRegistration_MillPinnedToSession(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkflow(true)

	req := registrationRequest()
	req.MillID = "mill-2"
	_, err := w.registration.Submit(ctx, transporterSession, req)
	assert.Equal(t, utils.ErrCodeForbidden, utils.CodeOf(err))

	all, err := w.entries.List(ctx, adminSession, models.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, all, "nothing stored for a refused mill")

	req = registrationRequest()
	req.MillID = "mill-1"
	entry, err := w.registration.Submit(ctx, transporterSession, req)
	require.NoError(t, err)
	assert.Equal(t, "mill-1", entry.MillID)

	own, err := w.entries.Get(ctx, transporterSession, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, own.ID)

	entry, err = w.registration.Submit(ctx, otherMillSession, registrationRequest())
	require.NoError(t, err)
	assert.Equal(t, "mill-2", entry.MillID, "defaults to the session mill")

	req = registrationRequest()
	req.MillID = "mill-9"
	entry, err = w.registration.Submit(ctx, adminSession, req)
	require.NoError(t, err)
	assert.Equal(t, "mill-9", entry.MillID, "admins may file for any mill")
}

func TestRegistration_LengthLimits(t *testing.T) {
	w := newTestWorkflow(true)
	req := registrationRequest()
	req.VehicleNumber = strings.Repeat("A", 41)
	req.DriverName = strings.Repeat("b", 201)

	_, err := w.registration.Submit(context.Background(), transporterSession, req)
	require.True(t, utils.IsValidation(err))
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "must be at most 40 characters", appErr.Fields["vehicleNumber"])
	assert.Equal(t, "must be at most 200 characters", appErr.Fields["driverName"])

	req = registrationRequest()
	req.VehicleNumber = strings.Repeat("A", 40)
	_, err = w.registration.Submit(context.Background(), transporterSession, req)
	assert.NoError(t, err)
}

func TestRegistration_Validation(t *testing.T) {
	w := newTestWorkflow(true)

	_, err := w.registration.Submit(context.Background(), transporterSession, &models.RegistrationRequest{VehicleNumber: "  "})
	require.True(t, utils.IsValidation(err))

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	for _, field := range []string{"vehicleNumber", "registrationNumber", "permitNumber", "vehicleType", "driverName", "location"} {
		assert.Contains(t, appErr.Fields, field)
	}

	req := registrationRequest()
	lat := 30.1
	req.Latitude = &lat
	_, err = w.registration.Submit(context.Background(), transporterSession, req)
	require.True(t, utils.IsValidation(err))
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "latitude")

	req = registrationRequest()
	req.VehiclePicture = "not a url"
	_, err = w.registration.Submit(context.Background(), transporterSession, req)
	assert.True(t, utils.IsValidation(err))

	entries, err := w.store.List(context.Background(), models.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing stored on validation failure")
}

func TestRegistration_RequiresCapability(t *testing.T) {
	w := newTestWorkflow(true)
	_, err := w.registration.Submit(context.Background(), reviewerSession, registrationRequest())
	assert.Equal(t, utils.ErrCodeForbidden, utils.CodeOf(err))
}

func TestArrival_UnknownEntry(t *testing.T) {
	w := newTestWorkflow(true)
	_, err := w.arrival.Submit(context.Background(), transporterSession, "nonexistent-id", arrivalRequest())
	assert.True(t, utils.IsNotFound(err))
}

func TestArrival_EnforcedMatch(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkflow(true)
	entry, err := w.registration.Submit(ctx, transporterSession, registrationRequest())
	require.NoError(t, err)

	req := arrivalRequest()
	req.VehicleNumber = "MH-02-XY-9999"
	_, err = w.arrival.Submit(ctx, transporterSession, entry.ID, req)
	require.True(t, utils.IsValidation(err))

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "vehicleNumber")
	assert.NotContains(t, appErr.Fields, "registrationNumber")

	// spacing and case differences still match
	req = arrivalRequest()
	req.VehicleNumber = "mh 01 ab 1234"
	_, err = w.arrival.Submit(ctx, transporterSession, entry.ID, req)
	assert.NoError(t, err)
}

func TestArrival_StoresSubmittedValues(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkflow(true)
	entry, err := w.registration.Submit(ctx, transporterSession, registrationRequest())
	require.NoError(t, err)

	req := arrivalRequest()
	req.VehicleNumber = " mh-01-ab-1234 "
	req.RegistrationNumber = "reg-2024-001"
	entry, err = w.arrival.Submit(ctx, transporterSession, entry.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "mh-01-ab-1234", entry.Arrival.VehicleNumber)
	assert.Equal(t, "reg-2024-001", entry.Arrival.RegistrationNumber)

	cmp, err := w.verification.Compare(ctx, adminSession, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cmp.Mismatches)
}

func TestArrival_MismatchAllowedWhenNotEnforced(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkflow(false)
	entry, err := w.registration.Submit(ctx, transporterSession, registrationRequest())
	require.NoError(t, err)

	req := arrivalRequest()
	req.VehicleNumber = "MH-02-XY-9999"
	_, err = w.arrival.Submit(ctx, transporterSession, entry.ID, req)
	require.NoError(t, err)

	cmp, err := w.verification.Compare(ctx, adminSession, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp.Mismatches)
	require.NotNil(t, cmp.Fields[0].Match)
	assert.False(t, *cmp.Fields[0].Match)
	require.NotNil(t, cmp.Fields[1].Match)
	assert.True(t, *cmp.Fields[1].Match)

	// mismatches are advisory
	entry, err = w.approval.Decide(ctx, adminSession, entry.ID, models.StatusRequest{Status: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, entry.Status)
	assert.Contains(t, w.pub.types(), models.EventTypeRejected)
}

func TestArrival_OtherMillForbidden(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkflow(true)
	entry, err := w.registration.Submit(ctx, transporterSession, registrationRequest())
	require.NoError(t, err)

	_, err = w.arrival.Submit(ctx, otherMillSession, entry.ID, arrivalRequest())
	assert.Equal(t, utils.ErrCodeForbidden, utils.CodeOf(err))

	_, err = w.entries.Get(ctx, otherMillSession, entry.ID)
	assert.Equal(t, utils.ErrCodeForbidden, utils.CodeOf(err))

	list, err := w.entries.List(ctx, otherMillSession, models.EntryFilter{MillID: "mill-1"})
	require.NoError(t, err)
	assert.Empty(t, list, "listing pinned to the caller's mill")
}

func TestApproval_TargetMustBeTerminal(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkflow(true)
	entry, err := w.registration.Submit(ctx, transporterSession, registrationRequest())
	require.NoError(t, err)

	for _, status := range []models.EntryStatus{"pending", "done", ""} {
		_, err = w.approval.Decide(ctx, adminSession, entry.ID, models.StatusRequest{Status: status})
		assert.True(t, utils.IsValidation(err), "status %q", status)
	}

	entry, err = w.approval.Decide(ctx, adminSession, entry.ID, models.StatusRequest{Status: " Approved "})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, entry.Status)
}

func TestApproval_UnknownEntryAndCapability(t *testing.T) {
	w := newTestWorkflow(true)
	_, err := w.approval.Decide(context.Background(), adminSession, "nonexistent-id", models.StatusRequest{Status: "approved"})
	assert.True(t, utils.IsNotFound(err))

	_, err = w.approval.Decide(context.Background(), transporterSession, "any", models.StatusRequest{Status: "approved"})
	assert.Equal(t, utils.ErrCodeForbidden, utils.CodeOf(err))
}

func TestApproval_ConcurrentReviewers(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkflow(true)
	entry, err := w.registration.Submit(ctx, transporterSession, registrationRequest())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := models.EntryStatus("approved")
			if i%2 == 0 {
				status = "rejected"
			}
			_, err := w.approval.Decide(ctx, adminSession, entry.ID, models.StatusRequest{Status: status})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.True(t, utils.IsInvalidTransition(err))
		}
	}
	assert.Equal(t, 1, ok)
}

func TestEntryService_ListValidatesStatus(t *testing.T) {
	w := newTestWorkflow(true)
	_, err := w.entries.List(context.Background(), adminSession, models.EntryFilter{Status: "archived"})
	assert.True(t, utils.IsValidation(err))
}

func TestEntryService_GetIsStable(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkflow(true)
	entry, err := w.registration.Submit(ctx, transporterSession, registrationRequest())
	require.NoError(t, err)

	first, err := w.entries.Get(ctx, adminSession, entry.ID)
	require.NoError(t, err)
	second, err := w.entries.Get(ctx, adminSession, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCacheable(t *testing.T) {
	assert.False(t, cacheable(&models.Entry{Status: models.StatusPending}))
	assert.True(t, cacheable(&models.Entry{Status: models.StatusApproved}))
	assert.True(t, cacheable(&models.Entry{Status: models.StatusRejected}))
}
