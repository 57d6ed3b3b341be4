package domain

import "time"

// QueueStatus represents the status of a live queue entry
type QueueStatus string

const (
	QueueStatusWaiting        QueueStatus = "waiting"
	QueueStatusCalled         QueueStatus = "called"
	QueueStatusInConsultation QueueStatus = "in_consultation"
	QueueStatusCompleted      QueueStatus = "completed"
	QueueStatusNoShow         QueueStatus = "no_show"
)

// queueTransitions is the queue entry transition table.
// A skip is the called->waiting edge: the entry re-enters at the back of the
// queue, the skip itself is kept in SkipCount and the audit trail.
var queueTransitions = map[QueueStatus][]QueueStatus{
	QueueStatusWaiting:        {QueueStatusCalled},
	QueueStatusCalled:         {QueueStatusInConsultation, QueueStatusWaiting, QueueStatusNoShow},
	QueueStatusInConsultation: {QueueStatusCompleted},
}

// CanTransitionTo returns true if the queue lifecycle allows moving from s to target
func (s QueueStatus) CanTransitionTo(target QueueStatus) bool {
	for _, allowed := range queueTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the entry has left the live queue for good
func (s QueueStatus) IsTerminal() bool {
	return s == QueueStatusCompleted || s == QueueStatusNoShow
}

// QueueEntry represents one checked-in patient in a doctor's daily queue
type QueueEntry struct {
	ID            int64
	HospitalID    int64
	DoctorID      int64
	AppointmentID int64
	PatientID     int64
	PatientName   string
	QueueDate     time.Time

	TokenNumber  int
	TokenDisplay string // e.g. "OPD-012"

	// Position is the dense 1..N rank among waiting entries for the same
	// (doctor, date), ordered by (priority desc, check-in time asc)
	Position int
	Status   QueueStatus
	Priority int // higher = served sooner (VIP, elderly, emergency)

	CheckInTime           time.Time
	CalledTime            *time.Time
	ConsultationStartTime *time.Time
	ConsultationEndTime   *time.Time

	EstimatedWaitMinutes int
	ActualWaitMinutes    *int

	SkipCount int

	// Version is the optimistic concurrency token (see Appointment.Version)
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsWaiting returns true if the entry still occupies a position in the live queue
func (e *QueueEntry) IsWaiting() bool {
	return e.Status == QueueStatusWaiting
}

// ConsultationMinutes returns the consultation duration in minutes, or 0 if not finished
func (e *QueueEntry) ConsultationMinutes() int {
	if e.ConsultationStartTime == nil || e.ConsultationEndTime == nil {
		return 0
	}
	return int(e.ConsultationEndTime.Sub(*e.ConsultationStartTime).Minutes())
}
