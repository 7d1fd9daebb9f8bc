package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCompleted))

	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusCancelled, StatusConfirmed))
	assert.False(t, CanTransition(StatusCompleted, StatusCancelled))
}

func TestSourcesFor(t *testing.T) {
	assert.ElementsMatch(t, []Status{StatusPending, StatusConfirmed}, SourcesFor(StatusCancelled))
	assert.ElementsMatch(t, []Status{StatusPending}, SourcesFor(StatusConfirmed))
	assert.Empty(t, SourcesFor(StatusPending))
}

func TestCreateReservationRequest_Validate(t *testing.T) {
	valid := CreateReservationRequest{
		ProductID:       uuid.NewString(),
		ReservationDate: time.Now().Add(24 * time.Hour),
		Participants:    2,
	}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.ProductID = ""
	assert.Error(t, missing.Validate())

	zero := valid
	zero.Participants = 0
	assert.Error(t, zero.Validate())

	badID := valid
	badID.ProductID = "abc"
	assert.Error(t, badID.Validate())
}
