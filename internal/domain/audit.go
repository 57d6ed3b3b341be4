package domain

import "time"

// Audit actions
const (
	AuditActionCreate           = "CREATE"
	AuditActionStatusTransition = "STATUS_TRANSITION"
	AuditActionCancel           = "CANCEL"
	AuditActionReschedule       = "RESCHEDULE"
)

// Audit entity types
const (
	AuditEntityAppointment = "APPOINTMENT"
	AuditEntityQueueEntry  = "QUEUE_ENTRY"
	AuditEntityScheduleRule = "SCHEDULE_RULE"
)

// AuditRecord is one immutable entry in the audit trail. Every booking,
// cancellation and status transition produces one.
type AuditRecord struct {
	ID          int64
	HospitalID  int64
	EntityType  string
	EntityID    int64
	Action      string
	Description string
	Actor       string // user id or "system"
	OldStatus   *string
	NewStatus   *string
	CreatedAt   time.Time
}
