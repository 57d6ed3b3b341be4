package domain

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled          AppointmentStatus = "scheduled"
	StatusConfirmed          AppointmentStatus = "confirmed"
	StatusCheckedIn          AppointmentStatus = "checked_in"
	StatusInQueue            AppointmentStatus = "in_queue"
	StatusInProgress         AppointmentStatus = "in_progress"
	StatusCompleted          AppointmentStatus = "completed"
	StatusCancelledByPatient AppointmentStatus = "cancelled_by_patient"
	StatusCancelledByHospital AppointmentStatus = "cancelled_by_hospital"
	StatusNoShow             AppointmentStatus = "no_show"
	StatusRescheduled        AppointmentStatus = "rescheduled"
)

// allowedTransitions is the appointment lifecycle transition table.
// Terminal states (completed, cancelled_*, no_show, rescheduled) have no outgoing edges.
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled: {
		StatusConfirmed,
		StatusCancelledByPatient,
		StatusCancelledByHospital,
		StatusRescheduled,
	},
	StatusConfirmed: {
		StatusCheckedIn,
		StatusCancelledByPatient,
		StatusCancelledByHospital,
		StatusRescheduled,
		StatusNoShow,
	},
	StatusCheckedIn: {
		StatusInQueue,
		StatusCancelledByPatient,
		StatusCancelledByHospital,
	},
	StatusInQueue: {
		StatusInProgress,
		StatusNoShow,
	},
	StatusInProgress: {
		StatusCompleted,
	},
}

// CanTransitionTo returns true if the lifecycle allows moving from s to target
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsCancelled returns true for both cancellation statuses
func (s AppointmentStatus) IsCancelled() bool {
	return s == StatusCancelledByPatient || s == StatusCancelledByHospital
}

// IsActive returns true if the appointment still holds its slot claim
func (s AppointmentStatus) IsActive() bool {
	return s == StatusScheduled || s == StatusConfirmed || s == StatusCheckedIn ||
		s == StatusInQueue || s == StatusInProgress
}

// IsTerminal returns true if no further transitions are possible
func (s AppointmentStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Appointment represents a patient appointment claiming one slot of a doctor's day
type Appointment struct {
	ID                int64
	AppointmentNumber string // "APT<year><6-digit seq>", globally unique
	HospitalID        int64
	DoctorID          int64
	DoctorName        string
	PatientID         int64 // 0 = unauthenticated guest
	PatientName       string
	PatientMobile     string
	Date              time.Time
	SlotStart         types.TimeString
	SlotEnd           types.TimeString
	Status            AppointmentStatus
	TokenNumber       int
	Teleconsultation  bool

	ConsultationFee float64
	BookingSource   string

	ChiefComplaint *string
	BookingNotes   *string

	RescheduleCount       int
	PreviousAppointmentID *int64

	CancelledAt        *time.Time
	CancelledBy        *string
	CancellationReason *string

	// Version is the optimistic concurrency token: every mutation must pass the
	// last-seen value and fails with a stale-write error on mismatch
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment still holds its slot claim
func (a *Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// CanBeCancelled returns true if cancellation is permitted in the current status
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusScheduled || a.Status == StatusConfirmed || a.Status == StatusCheckedIn
}

// CanBeRescheduled returns true if the status permits moving to a new slot
// (the reschedule count cap is checked separately against policy)
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status == StatusScheduled || a.Status == StatusConfirmed
}

// IsGuest returns true for guest bookings without a registered patient identity
func (a *Appointment) IsGuest() bool {
	return a.PatientID == 0
}

// AppointmentFilter фильтр для выборки записей на приём
type AppointmentFilter struct {
	HospitalID *int64
	DoctorID   *int64
	PatientID  *int64
	Date       *time.Time
	Status     *AppointmentStatus
	ActiveOnly bool // только записи, удерживающие слот
}
