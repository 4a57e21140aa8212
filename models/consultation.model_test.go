package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCompleted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to),
			"transition %s -> %s", tc.from, tc.to)
	}
}

func TestCanTransitionSameStatusIsNoOp(t *testing.T) {
	for _, s := range []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		assert.True(t, CanTransition(s, s), "setting %s again should be allowed", s)
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusCancelled))
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidStatus(""))
}

func TestValidConsultationType(t *testing.T) {
	assert.True(t, ValidConsultationType(TypeVideo))
	assert.True(t, ValidConsultationType(TypeChat))
	assert.True(t, ValidConsultationType(TypeInPerson))
	assert.True(t, ValidConsultationType(TypeEmergency))
	assert.False(t, ValidConsultationType("Phone Consultation"))
}

func TestValidSenderType(t *testing.T) {
	assert.True(t, ValidSenderType(SenderDoctor))
	assert.True(t, ValidSenderType(SenderPatient))
	assert.False(t, ValidSenderType("admin"))
}
