package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
	"github.com/m04kA/HMS-AppointmentService/pkg/ptr"
)

func validRule() *ScheduleRule {
	return &ScheduleRule{
		HospitalID:          1,
		DoctorID:            7,
		DayOfWeek:           time.Monday,
		Recurring:           true,
		StartTime:           "09:00",
		EndTime:             "13:00",
		SlotDurationMinutes: 15,
		MaxAppointments:     16,
		Active:              true,
	}
}

func TestScheduleRule_Validate(t *testing.T) {
	t.Run("valid recurring rule", func(t *testing.T) {
		require.NoError(t, validRule().Validate())
	})

	t.Run("valid rule with break", func(t *testing.T) {
		rule := validRule()
		rule.BreakStart = ptr.Ptr(types.TimeString("11:00"))
		rule.BreakEnd = ptr.Ptr(types.TimeString("11:30"))
		require.NoError(t, rule.Validate())
	})

	tests := []struct {
		name   string
		mutate func(r *ScheduleRule)
	}{
		{name: "zero doctor id", mutate: func(r *ScheduleRule) { r.DoctorID = 0 }},
		{name: "start after end", mutate: func(r *ScheduleRule) { r.StartTime, r.EndTime = "13:00", "09:00" }},
		{name: "start equals end", mutate: func(r *ScheduleRule) { r.EndTime = r.StartTime }},
		{name: "bad start format", mutate: func(r *ScheduleRule) { r.StartTime = "9am" }},
		{name: "zero slot duration", mutate: func(r *ScheduleRule) { r.SlotDurationMinutes = 0 }},
		{name: "slot longer than window", mutate: func(r *ScheduleRule) { r.SlotDurationMinutes = 600 }},
		{name: "zero max appointments", mutate: func(r *ScheduleRule) { r.MaxAppointments = 0 }},
		{name: "break start without end", mutate: func(r *ScheduleRule) {
			r.BreakStart = ptr.Ptr(types.TimeString("11:00"))
		}},
		{name: "break outside window", mutate: func(r *ScheduleRule) {
			r.BreakStart = ptr.Ptr(types.TimeString("08:00"))
			r.BreakEnd = ptr.Ptr(types.TimeString("08:30"))
		}},
		{name: "inverted break", mutate: func(r *ScheduleRule) {
			r.BreakStart = ptr.Ptr(types.TimeString("11:30"))
			r.BreakEnd = ptr.Ptr(types.TimeString("11:00"))
		}},
		{name: "inverted effective range", mutate: func(r *ScheduleRule) {
			r.EffectiveFrom = ptr.Ptr(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
			r.EffectiveUntil = ptr.Ptr(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
		}},
		{name: "one-off without date", mutate: func(r *ScheduleRule) { r.Recurring = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := validRule()
			tt.mutate(rule)
			assert.ErrorIs(t, rule.Validate(), ErrInvalidScheduleRule)
		})
	}
}

func TestScheduleRule_AppliesTo(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	t.Run("recurring matches weekday", func(t *testing.T) {
		rule := validRule()
		assert.True(t, rule.AppliesTo(monday))
		assert.False(t, rule.AppliesTo(tuesday))
	})

	t.Run("inactive rule never applies", func(t *testing.T) {
		rule := validRule()
		rule.Active = false
		assert.False(t, rule.AppliesTo(monday))
	})

	t.Run("specific date overrides weekday", func(t *testing.T) {
		rule := validRule()
		rule.Recurring = false
		rule.SpecificDate = &tuesday
		assert.True(t, rule.AppliesTo(tuesday))
		assert.False(t, rule.AppliesTo(monday))
	})

	t.Run("effective range bounds", func(t *testing.T) {
		rule := validRule()
		rule.EffectiveFrom = ptr.Ptr(monday.AddDate(0, 0, 7))
		assert.False(t, rule.AppliesTo(monday))
		assert.True(t, rule.AppliesTo(monday.AddDate(0, 0, 7)))

		rule = validRule()
		rule.EffectiveUntil = &monday
		assert.True(t, rule.AppliesTo(monday))
		assert.False(t, rule.AppliesTo(monday.AddDate(0, 0, 7)))
	})
}

func TestScheduleRule_OverlapsWith(t *testing.T) {
	t.Run("same weekday intersecting windows", func(t *testing.T) {
		a := validRule()
		b := validRule()
		b.StartTime, b.EndTime = "12:00", "16:00"
		assert.True(t, a.OverlapsWith(b))
		assert.True(t, b.OverlapsWith(a))
	})

	t.Run("adjacent windows do not overlap", func(t *testing.T) {
		a := validRule()
		b := validRule()
		b.StartTime, b.EndTime = "13:00", "17:00"
		assert.False(t, a.OverlapsWith(b))
	})

	t.Run("different weekdays never overlap", func(t *testing.T) {
		a := validRule()
		b := validRule()
		b.DayOfWeek = time.Tuesday
		assert.False(t, a.OverlapsWith(b))
	})

	t.Run("different doctors never overlap", func(t *testing.T) {
		a := validRule()
		b := validRule()
		b.DoctorID = 8
		assert.False(t, a.OverlapsWith(b))
	})

	t.Run("one-off on matching weekday overlaps recurring", func(t *testing.T) {
		a := validRule()
		b := validRule()
		b.Recurring = false
		monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		b.SpecificDate = &monday
		b.StartTime, b.EndTime = "10:00", "12:00"
		assert.True(t, a.OverlapsWith(b))
	})

	t.Run("disjoint effective ranges do not overlap", func(t *testing.T) {
		a := validRule()
		a.EffectiveUntil = ptr.Ptr(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
		b := validRule()
		b.EffectiveFrom = ptr.Ptr(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
		assert.False(t, a.OverlapsWith(b))
	})
}
