package reschedule_appointment

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// findCoveringRule находит правило расписания, порождающее слот с данным началом
// на данную дату, и возвращает его вместе с концом слота
func findCoveringRule(rules []*domain.ScheduleRule, date time.Time, slotStart types.TimeString) (*domain.ScheduleRule, types.TimeString, bool) {
	for _, rule := range rules {
		if !rule.AppliesTo(date) {
			continue
		}
		if rule.Validate() != nil {
			continue
		}

		generated := 0
		current := rule.StartTime
		for current.IsBefore(rule.EndTime) {
			slotEnd, err := current.AddMinutes(rule.SlotDurationMinutes)
			if err != nil || slotEnd.IsAfter(rule.EndTime) {
				break
			}

			inBreak := rule.BreakStart != nil &&
				current.IsBefore(*rule.BreakEnd) && rule.BreakStart.IsBefore(slotEnd)

			if !inBreak {
				if current == slotStart {
					return rule, slotEnd, true
				}
				generated++
				if generated >= rule.MaxAppointments {
					break
				}
			}

			current = slotEnd
		}
	}

	return nil, types.TimeString(""), false
}

// countRuleAppointments считает активные записи внутри окна правила
func countRuleAppointments(rule *domain.ScheduleRule, appointments []*domain.Appointment) int {
	count := 0
	for _, apt := range appointments {
		if !apt.IsActive() {
			continue
		}
		if !apt.SlotStart.IsBefore(rule.StartTime) && apt.SlotStart.IsBefore(rule.EndTime) {
			count++
		}
	}
	return count
}
