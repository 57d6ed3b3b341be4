package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueueStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    QueueStatus
		to      QueueStatus
		allowed bool
	}{
		{name: "waiting to called", from: QueueStatusWaiting, to: QueueStatusCalled, allowed: true},
		{name: "waiting cannot skip call", from: QueueStatusWaiting, to: QueueStatusInConsultation, allowed: false},
		{name: "called to in consultation", from: QueueStatusCalled, to: QueueStatusInConsultation, allowed: true},
		{name: "called back to waiting on skip", from: QueueStatusCalled, to: QueueStatusWaiting, allowed: true},
		{name: "called to no show", from: QueueStatusCalled, to: QueueStatusNoShow, allowed: true},
		{name: "in consultation to completed", from: QueueStatusInConsultation, to: QueueStatusCompleted, allowed: true},
		{name: "in consultation cannot go back", from: QueueStatusInConsultation, to: QueueStatusWaiting, allowed: false},
		{name: "completed is terminal", from: QueueStatusCompleted, to: QueueStatusWaiting, allowed: false},
		{name: "no show is terminal", from: QueueStatusNoShow, to: QueueStatusWaiting, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestQueueStatus_IsTerminal(t *testing.T) {
	assert.True(t, QueueStatusCompleted.IsTerminal())
	assert.True(t, QueueStatusNoShow.IsTerminal())
	assert.False(t, QueueStatusWaiting.IsTerminal())
	assert.False(t, QueueStatusCalled.IsTerminal())
	assert.False(t, QueueStatusInConsultation.IsTerminal())
}

func TestQueueEntry_ConsultationMinutes(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(23 * time.Minute)

	entry := &QueueEntry{ConsultationStartTime: &start, ConsultationEndTime: &end}
	assert.Equal(t, 23, entry.ConsultationMinutes())

	assert.Equal(t, 0, (&QueueEntry{ConsultationStartTime: &start}).ConsultationMinutes())
	assert.Equal(t, 0, (&QueueEntry{}).ConsultationMinutes())
}
