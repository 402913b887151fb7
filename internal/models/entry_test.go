package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryStatusMachine(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusApproved))
	assert.True(t, StatusPending.CanTransitionTo(StatusRejected))
	assert.False(t, StatusPending.CanTransitionTo(StatusPending))
	assert.False(t, StatusApproved.CanTransitionTo(StatusRejected))
	assert.False(t, StatusRejected.CanTransitionTo(StatusApproved))
	assert.False(t, EntryStatus("archived").IsValid())
}

func TestEntryCloneIsDeep(t *testing.T) {
	lat := 30.47
	e := &Entry{
		ID:           "e1",
		Registration: RegistrationDetails{Latitude: &lat},
		Arrival:      &ArrivalDetails{ArrivalTime: "10:30 AM"},
	}

	c := e.Clone()
	*c.Registration.Latitude = 0
	c.Arrival.ArrivalTime = "changed"

	assert.Equal(t, 30.47, *e.Registration.Latitude)
	assert.Equal(t, "10:30 AM", e.Arrival.ArrivalTime)
	assert.True(t, c.HasArrival())
	assert.Nil(t, (*Entry)(nil).Clone())
}
