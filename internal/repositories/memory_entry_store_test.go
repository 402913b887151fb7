package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"cane-backend/internal/models"
	"cane-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(vehicle, millID string) *models.Entry {
	return &models.Entry{
		VehicleNumber:      vehicle,
		RegistrationNumber: "REG-2024-001",
		PermitNumber:       "P-77",
		VehicleType:        "Truck",
		DriverName:         "Imran",
		MillID:             millID,
		Registration: models.RegistrationDetails{
			VehicleNumber:      vehicle,
			RegistrationNumber: "REG-2024-001",
			PermitNumber:       "P-77",
			VehicleType:        "Truck",
			DriverName:         "Imran",
			Location:           "Field 4",
		},
	}
}

func decision(status models.EntryStatus) models.Decision {
	return models.Decision{Status: status, DecidedBy: "reviewer", DecidedAt: time.Now()}
}

func TestMemoryEntryStore_CreateAssignsPending(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEntryStore()

	e := newEntry("MH-01-AB-1234", "mill-1")
	e.Status = models.StatusApproved
	require.NoError(t, store.Create(ctx, e))

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, models.StatusPending, e.Status)
	assert.Nil(t, e.Arrival)

	got, err := store.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestMemoryEntryStore_IDsAreUnique(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEntryStore()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		e := newEntry("MH-01-AB-1234", "")
		require.NoError(t, store.Create(ctx, e))
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestMemoryEntryStore_MissingIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEntryStore()

	_, err := store.Get(ctx, "nonexistent-id")
	assert.True(t, utils.IsNotFound(err))

	_, err = store.SetStatus(ctx, "nonexistent-id", decision(models.StatusApproved))
	assert.True(t, utils.IsNotFound(err))

	_, err = store.AttachArrival(ctx, "nonexistent-id", models.ArrivalDetails{}, time.Now())
	assert.True(t, utils.IsNotFound(err))

	_, err = store.ListEvents(ctx, "nonexistent-id")
	assert.True(t, utils.IsNotFound(err))
}

func TestMemoryEntryStore_AttachArrivalReplacesAndKeepsStatus(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEntryStore()
	e := newEntry("MH-01-AB-1234", "")
	require.NoError(t, store.Create(ctx, e))

	_, err := store.AttachArrival(ctx, e.ID, models.ArrivalDetails{VehicleNumber: "MH-01-AB-1234", ArrivalTime: "09:00 AM"}, time.Now())
	require.NoError(t, err)
	got, err := store.AttachArrival(ctx, e.ID, models.ArrivalDetails{VehicleNumber: "MH-01-AB-1234", ArrivalTime: "10:30 AM"}, time.Now())
	require.NoError(t, err)

	require.NotNil(t, got.Arrival)
	assert.Equal(t, "10:30 AM", got.Arrival.ArrivalTime)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, e.Registration, got.Registration)
}

func TestMemoryEntryStore_StatusIsFinal(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEntryStore()
	e := newEntry("MH-01-AB-1234", "")
	require.NoError(t, store.Create(ctx, e))

	got, err := store.SetStatus(ctx, e.ID, decision(models.StatusApproved))
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	require.NotNil(t, got.DecidedAt)

	_, err = store.SetStatus(ctx, e.ID, decision(models.StatusRejected))
	assert.True(t, utils.IsInvalidTransition(err))

	_, err = store.SetStatus(ctx, e.ID, decision(models.StatusApproved))
	assert.True(t, utils.IsInvalidTransition(err))

	_, err = store.AttachArrival(ctx, e.ID, models.ArrivalDetails{}, time.Now())
	assert.True(t, utils.IsInvalidTransition(err))

	final, err := store.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, final.Status)
}

func TestMemoryEntryStore_PendingIsNotATarget(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEntryStore()
	e := newEntry("MH-01-AB-1234", "")
	require.NoError(t, store.Create(ctx, e))

	_, err := store.SetStatus(ctx, e.ID, decision(models.StatusPending))
	assert.True(t, utils.IsInvalidTransition(err))
}

func TestMemoryEntryStore_ConcurrentDecisionsOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEntryStore()
	e := newEntry("MH-01-AB-1234", "")
	require.NoError(t, store.Create(ctx, e))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		status := models.StatusApproved
		if i%2 == 1 {
			status = models.StatusRejected
		}
		wg.Add(1)
		go func(s models.EntryStatus) {
			defer wg.Done()
			if _, err := store.SetStatus(ctx, e.ID, decision(s)); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(status)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestMemoryEntryStore_ReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEntryStore()
	e := newEntry("MH-01-AB-1234", "")
	require.NoError(t, store.Create(ctx, e))

	e.VehicleNumber = "CHANGED"
	got, err := store.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "MH-01-AB-1234", got.VehicleNumber)

	got.Registration.DriverName = "someone else"
	again, err := store.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Imran", again.Registration.DriverName)
}

func TestMemoryEntryStore_ListAndStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEntryStore()

	var ids []string
	for i, mill := range []string{"mill-1", "mill-1", "mill-2"} {
		e := newEntry("MH-01-AB-000"+string(rune('1'+i)), mill)
		require.NoError(t, store.Create(ctx, e))
		ids = append(ids, e.ID)
	}
	_, err := store.SetStatus(ctx, ids[0], decision(models.StatusApproved))
	require.NoError(t, err)
	_, err = store.SetStatus(ctx, ids[2], decision(models.StatusRejected))
	require.NoError(t, err)

	all, err := store.List(ctx, models.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest first")
	assert.Equal(t, ids[0], all[2].ID)

	mill1, err := store.List(ctx, models.EntryFilter{MillID: "mill-1"})
	require.NoError(t, err)
	assert.Len(t, mill1, 2)

	pending, err := store.List(ctx, models.EntryFilter{Status: models.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ids[1], pending[0].ID)

	page, err := store.List(ctx, models.EntryFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)

	stats, err := store.Stats(ctx, models.EntryFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, models.EntryStats{Total: 3, Pending: 1, Approved: 1, Rejected: 1}, *stats)

	stats, err = store.Stats(ctx, models.EntryFilter{MillID: "mill-2"})
	require.NoError(t, err)
	assert.Equal(t, models.EntryStats{Total: 1, Rejected: 1}, *stats)
}

func TestMemoryEntryStore_ListByDevice(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEntryStore()

	for _, device := range []string{"dev-a", "dev-b", "dev-a"} {
		e := newEntry("MH-01-AB-1234", "mill-1")
		e.DeviceID = device
		require.NoError(t, store.Create(ctx, e))
	}

	fromA, err := store.List(ctx, models.EntryFilter{MillID: "mill-1", DeviceID: "dev-a"})
	require.NoError(t, err)
	require.Len(t, fromA, 2)
	for _, e := range fromA {
		assert.Equal(t, "dev-a", e.DeviceID)
	}

	none, err := store.List(ctx, models.EntryFilter{MillID: "mill-2", DeviceID: "dev-a"})
	require.NoError(t, err)
	assert.Empty(t, none)

	stats, err := store.Stats(ctx, models.EntryFilter{DeviceID: "dev-b"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}

func TestMemoryEntryStore_Events(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEntryStore()
	e := newEntry("MH-01-AB-1234", "")
	require.NoError(t, store.Create(ctx, e))

	require.NoError(t, store.AppendEvent(ctx, &models.EntryEvent{EntryID: e.ID, EventType: models.EventTypeRegistered}))
	require.NoError(t, store.AppendEvent(ctx, &models.EntryEvent{EntryID: e.ID, EventType: models.EventTypeApproved}))

	events, err := store.ListEvents(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventTypeRegistered, events[0].EventType)
	assert.Equal(t, models.EventTypeApproved, events[1].EventType)
	assert.Less(t, events[0].ID, events[1].ID)
	assert.False(t, events[0].CreatedAt.IsZero())

	err = store.AppendEvent(ctx, &models.EntryEvent{EntryID: "nonexistent-id"})
	assert.True(t, utils.IsNotFound(err))
}

func TestMemoryEntryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryEntryStore()
	err := store.Create(ctx, newEntry("MH-01-AB-1234", ""))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryUserStore_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore()

	u := &models.User{Name: "A", Email: "a@mill.pk", Role: "admin", IsActive: true}
	require.NoError(t, store.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	err := store.Create(ctx, &models.User{Name: "B", Email: "A@mill.pk", Role: "user"})
	assert.Equal(t, utils.ErrCodeConflict, utils.CodeOf(err))

	got, err := store.GetByEmail(ctx, "A@MILL.PK")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, store.Delete(ctx, u.ID))
	_, err = store.Get(ctx, u.ID)
	assert.True(t, utils.IsNotFound(err))
}
