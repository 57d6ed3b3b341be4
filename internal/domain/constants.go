package domain

// Default policy values
const (
	DefaultSlotDurationMinutes        = 15
	DefaultMaxReschedules             = 3
	DefaultAvgConsultationMinutes     = 15
	DefaultTokenDisplayPrefix         = "OPD"
	DefaultOtpTTLSeconds              = 300 // 5 минут
	DefaultGuestAccessTokenTTLMinutes = 1440
)

// Business validation constants
const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 120
	MaxNotesLength         = 500
	OtpCodeLength          = 6
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Booking sources
const (
	SourceOnline      = "ONLINE"
	SourceOnlineGuest = "ONLINE_GUEST"
	SourceCounter     = "COUNTER"
	SourcePhone       = "PHONE"
	SourceWalkIn      = "WALK_IN"
)

// AppointmentNumberPrefix префикс человекочитаемого номера записи ("APT2026000042")
const AppointmentNumberPrefix = "APT"

// ActiveStatuses статусы записей, удерживающих слот
// Используются при подсчёте занятости слотов
var ActiveStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusCheckedIn,
	StatusInQueue,
	StatusInProgress,
}

// TerminalStatuses конечные статусы жизненного цикла записи
var TerminalStatuses = []AppointmentStatus{
	StatusCompleted,
	StatusCancelledByPatient,
	StatusCancelledByHospital,
	StatusNoShow,
	StatusRescheduled,
}
