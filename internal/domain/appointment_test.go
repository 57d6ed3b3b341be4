package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{name: "scheduled to confirmed", from: StatusScheduled, to: StatusConfirmed, allowed: true},
		{name: "scheduled to cancelled by patient", from: StatusScheduled, to: StatusCancelledByPatient, allowed: true},
		{name: "scheduled to rescheduled", from: StatusScheduled, to: StatusRescheduled, allowed: true},
		{name: "scheduled skips confirmation", from: StatusScheduled, to: StatusCheckedIn, allowed: false},
		{name: "confirmed to checked in", from: StatusConfirmed, to: StatusCheckedIn, allowed: true},
		{name: "confirmed to no show", from: StatusConfirmed, to: StatusNoShow, allowed: true},
		{name: "checked in to in queue", from: StatusCheckedIn, to: StatusInQueue, allowed: true},
		{name: "checked in cannot reschedule", from: StatusCheckedIn, to: StatusRescheduled, allowed: false},
		{name: "in queue to in progress", from: StatusInQueue, to: StatusInProgress, allowed: true},
		{name: "in queue cannot cancel", from: StatusInQueue, to: StatusCancelledByPatient, allowed: false},
		{name: "in progress to completed", from: StatusInProgress, to: StatusCompleted, allowed: true},
		{name: "completed is terminal", from: StatusCompleted, to: StatusScheduled, allowed: false},
		{name: "cancelled is terminal", from: StatusCancelledByPatient, to: StatusConfirmed, allowed: false},
		{name: "no show is terminal", from: StatusNoShow, to: StatusScheduled, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAppointmentStatus_IsTerminal(t *testing.T) {
	for _, s := range TerminalStatuses {
		assert.True(t, s.IsTerminal(), "status %s", s)
	}
	for _, s := range ActiveStatuses {
		assert.False(t, s.IsTerminal(), "status %s", s)
	}
}

func TestAppointmentStatus_IsActive(t *testing.T) {
	for _, s := range ActiveStatuses {
		assert.True(t, s.IsActive(), "status %s", s)
	}
	for _, s := range TerminalStatuses {
		assert.False(t, s.IsActive(), "status %s", s)
	}
}

func TestAppointment_CanBeCancelled(t *testing.T) {
	cancellable := []AppointmentStatus{StatusScheduled, StatusConfirmed, StatusCheckedIn}
	for _, s := range cancellable {
		apt := &Appointment{Status: s}
		assert.True(t, apt.CanBeCancelled(), "status %s", s)
	}

	notCancellable := []AppointmentStatus{
		StatusInQueue, StatusInProgress, StatusCompleted,
		StatusCancelledByPatient, StatusCancelledByHospital, StatusNoShow, StatusRescheduled,
	}
	for _, s := range notCancellable {
		apt := &Appointment{Status: s}
		assert.False(t, apt.CanBeCancelled(), "status %s", s)
	}
}

func TestAppointment_CanBeRescheduled(t *testing.T) {
	assert.True(t, (&Appointment{Status: StatusScheduled}).CanBeRescheduled())
	assert.True(t, (&Appointment{Status: StatusConfirmed}).CanBeRescheduled())
	assert.False(t, (&Appointment{Status: StatusCheckedIn}).CanBeRescheduled())
	assert.False(t, (&Appointment{Status: StatusCompleted}).CanBeRescheduled())
}

func TestAppointment_IsGuest(t *testing.T) {
	assert.True(t, (&Appointment{PatientID: 0}).IsGuest())
	assert.False(t, (&Appointment{PatientID: 42}).IsGuest())
}
