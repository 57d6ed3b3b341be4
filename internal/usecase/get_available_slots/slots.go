package get_available_slots

import (
	"sort"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// expandRuleSlots раскрывает одно правило расписания в список слотов.
// Слоты идут с шагом slotDuration от начала до конца рабочего окна,
// слоты с пересечением перерыва пропускаются, общее число слотов
// ограничено maxAppointments правила.
func expandRuleSlots(rule *domain.ScheduleRule) ([]Slot, error) {
	slots := make([]Slot, 0)

	current := rule.StartTime
	for current.IsBefore(rule.EndTime) {
		slotEnd, err := current.AddMinutes(rule.SlotDurationMinutes)
		if err != nil {
			return nil, err
		}
		if slotEnd.IsAfter(rule.EndTime) {
			break
		}

		if !overlapsBreak(current, slotEnd, rule) {
			slots = append(slots, Slot{
				StartTime:        current,
				EndTime:          slotEnd,
				DurationMinutes:  rule.SlotDurationMinutes,
				Teleconsultation: rule.Teleconsultation,
				Available:        true,
			})
			if len(slots) >= rule.MaxAppointments {
				break
			}
		}

		current = slotEnd
	}

	return slots, nil
}

// overlapsBreak проверяет пересечение слота [start, end) с перерывом правила.
// Граничные случаи (слот заканчивается ровно на начале перерыва или
// начинается ровно на его конце) пересечением не считаются.
func overlapsBreak(start, end types.TimeString, rule *domain.ScheduleRule) bool {
	if rule.BreakStart == nil || rule.BreakEnd == nil {
		return false
	}
	return start.IsBefore(*rule.BreakEnd) && rule.BreakStart.IsBefore(end)
}

// mergeSlots объединяет слоты нескольких правил одного дня и сортирует по началу.
// При совпадении начала слотов из разных правил остаётся первый (правила
// с пересечением окон отбрасываются ещё при создании, так что дубликаты
// возможны только у последовательных окон с общей границей).
func mergeSlots(slotLists ...[]Slot) []Slot {
	merged := make([]Slot, 0)
	seen := make(map[types.TimeString]bool)

	for _, list := range slotLists {
		for _, slot := range list {
			if seen[slot.StartTime] {
				continue
			}
			seen[slot.StartTime] = true
			merged = append(merged, slot)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].StartTime.IsBefore(merged[j].StartTime)
	})

	return merged
}

// markOccupied помечает занятые слоты по активным записям на приём.
// Слот занят, если активная запись стартует ровно в его начале.
func markOccupied(slots []Slot, appointments []*domain.Appointment) []Slot {
	occupied := make(map[types.TimeString]bool)
	for _, apt := range appointments {
		if apt.IsActive() {
			occupied[apt.SlotStart] = true
		}
	}

	for i := range slots {
		if occupied[slots[i].StartTime] {
			slots[i].Available = false
		}
	}

	return slots
}
