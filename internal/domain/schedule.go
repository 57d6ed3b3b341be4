package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

var (
	// ErrInvalidScheduleRule возвращается при нарушении инвариантов правила расписания
	ErrInvalidScheduleRule = errors.New("domain: invalid schedule rule")
)

// ScheduleRule describes one recurring (or date-specific) availability window
// of a doctor. Rules are never hard-deleted: historical bookings must remain
// resolvable against the rule that produced them, so rules are versioned by
// effective date range and deactivated instead of being mutated destructively.
type ScheduleRule struct {
	ID         int64
	HospitalID int64
	DoctorID   int64

	// DayOfWeek applies to recurring rules; SpecificDate overrides it for one-off sessions
	DayOfWeek    time.Weekday
	SpecificDate *time.Time
	Recurring    bool

	StartTime types.TimeString
	EndTime   types.TimeString

	BreakStart *types.TimeString
	BreakEnd   *types.TimeString

	SlotDurationMinutes int
	MaxAppointments     int

	EffectiveFrom  *time.Time
	EffectiveUntil *time.Time

	Teleconsultation bool
	RoomNumber       *string

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет инварианты правила расписания
func (r *ScheduleRule) Validate() error {
	if r.DoctorID <= 0 {
		return fmt.Errorf("%w: doctorID must be positive", ErrInvalidScheduleRule)
	}
	if err := r.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: start time: %v", ErrInvalidScheduleRule, err)
	}
	if err := r.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: end time: %v", ErrInvalidScheduleRule, err)
	}
	if !r.StartTime.IsBefore(r.EndTime) {
		return fmt.Errorf("%w: start time must be before end time", ErrInvalidScheduleRule)
	}

	spanMinutes, err := r.EndTime.MinutesSince(r.StartTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScheduleRule, err)
	}
	if r.SlotDurationMinutes <= 0 {
		return fmt.Errorf("%w: slot duration must be positive", ErrInvalidScheduleRule)
	}
	if r.SlotDurationMinutes > spanMinutes {
		return fmt.Errorf("%w: slot duration exceeds working window", ErrInvalidScheduleRule)
	}
	if r.MaxAppointments <= 0 {
		return fmt.Errorf("%w: max appointments must be positive", ErrInvalidScheduleRule)
	}

	// Перерыв либо отсутствует целиком, либо строго внутри рабочего окна
	if (r.BreakStart == nil) != (r.BreakEnd == nil) {
		return fmt.Errorf("%w: break start and break end must be set together", ErrInvalidScheduleRule)
	}
	if r.BreakStart != nil {
		if err := r.BreakStart.Validate(); err != nil {
			return fmt.Errorf("%w: break start: %v", ErrInvalidScheduleRule, err)
		}
		if err := r.BreakEnd.Validate(); err != nil {
			return fmt.Errorf("%w: break end: %v", ErrInvalidScheduleRule, err)
		}
		if !r.BreakStart.IsBefore(*r.BreakEnd) {
			return fmt.Errorf("%w: break start must be before break end", ErrInvalidScheduleRule)
		}
		if r.BreakStart.IsBefore(r.StartTime) || r.BreakEnd.IsAfter(r.EndTime) {
			return fmt.Errorf("%w: break must lie inside the working window", ErrInvalidScheduleRule)
		}
	}

	if r.EffectiveFrom != nil && r.EffectiveUntil != nil && r.EffectiveUntil.Before(*r.EffectiveFrom) {
		return fmt.Errorf("%w: effectiveUntil is before effectiveFrom", ErrInvalidScheduleRule)
	}

	if !r.Recurring && r.SpecificDate == nil {
		return fmt.Errorf("%w: non-recurring rule requires a specific date", ErrInvalidScheduleRule)
	}

	return nil
}

// AppliesTo returns true if the rule is effective on the given calendar date
func (r *ScheduleRule) AppliesTo(date time.Time) bool {
	if !r.Active {
		return false
	}

	day := truncateToDay(date)

	if r.EffectiveFrom != nil && day.Before(truncateToDay(*r.EffectiveFrom)) {
		return false
	}
	if r.EffectiveUntil != nil && day.After(truncateToDay(*r.EffectiveUntil)) {
		return false
	}

	if r.SpecificDate != nil {
		return truncateToDay(*r.SpecificDate).Equal(day)
	}

	return r.Recurring && r.DayOfWeek == date.Weekday()
}

// OverlapsWith returns true if both rules can match the same doctor's date with
// intersecting time windows. Used to reject conflicting rules at creation time.
func (r *ScheduleRule) OverlapsWith(other *ScheduleRule) bool {
	if r.DoctorID != other.DoctorID {
		return false
	}
	if !r.canShareDate(other) {
		return false
	}
	// Полуинтервалы [start, end) пересекаются при строгих неравенствах
	return r.StartTime.IsBefore(other.EndTime) && other.StartTime.IsBefore(r.EndTime)
}

// canShareDate returns true if there exists at least one calendar date both rules apply to
func (r *ScheduleRule) canShareDate(other *ScheduleRule) bool {
	if !effectiveRangesIntersect(r, other) {
		return false
	}

	switch {
	case r.SpecificDate != nil && other.SpecificDate != nil:
		return truncateToDay(*r.SpecificDate).Equal(truncateToDay(*other.SpecificDate))
	case r.SpecificDate != nil:
		return other.Recurring && other.DayOfWeek == r.SpecificDate.Weekday()
	case other.SpecificDate != nil:
		return r.Recurring && r.DayOfWeek == other.SpecificDate.Weekday()
	default:
		return r.Recurring && other.Recurring && r.DayOfWeek == other.DayOfWeek
	}
}

func effectiveRangesIntersect(a, b *ScheduleRule) bool {
	if a.EffectiveFrom != nil && b.EffectiveUntil != nil &&
		truncateToDay(*b.EffectiveUntil).Before(truncateToDay(*a.EffectiveFrom)) {
		return false
	}
	if b.EffectiveFrom != nil && a.EffectiveUntil != nil &&
		truncateToDay(*a.EffectiveUntil).Before(truncateToDay(*b.EffectiveFrom)) {
		return false
	}
	return true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
