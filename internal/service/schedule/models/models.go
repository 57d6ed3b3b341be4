package models

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// Request модели

// CreateRuleRequest запрос на создание правила расписания
type CreateRuleRequest struct {
	DoctorID int64 `json:"doctorId"`

	DayOfWeek    *int    `json:"dayOfWeek,omitempty"`    // 0=Sunday .. 6=Saturday
	SpecificDate *string `json:"specificDate,omitempty"` // "2026-09-14"

	StartTime string `json:"startTime"` // "09:00"
	EndTime   string `json:"endTime"`   // "13:00"

	BreakStart *string `json:"breakStart,omitempty"`
	BreakEnd   *string `json:"breakEnd,omitempty"`

	SlotDurationMinutes int `json:"slotDurationMinutes"`
	MaxAppointments     int `json:"maxAppointments"`

	EffectiveFrom  *string `json:"effectiveFrom,omitempty"`
	EffectiveUntil *string `json:"effectiveUntil,omitempty"`

	Teleconsultation bool    `json:"teleconsultation,omitempty"`
	RoomNumber       *string `json:"roomNumber,omitempty"`
}

// ToDomainRule конвертирует request в domain модель
func (r *CreateRuleRequest) ToDomainRule(hospitalID int64) (*domain.ScheduleRule, error) {
	rule := &domain.ScheduleRule{
		HospitalID:          hospitalID,
		DoctorID:            r.DoctorID,
		StartTime:           types.TimeString(r.StartTime),
		EndTime:             types.TimeString(r.EndTime),
		SlotDurationMinutes: r.SlotDurationMinutes,
		MaxAppointments:     r.MaxAppointments,
		Teleconsultation:    r.Teleconsultation,
		RoomNumber:          r.RoomNumber,
		Active:              true,
	}

	if r.BreakStart != nil {
		bs := types.TimeString(*r.BreakStart)
		rule.BreakStart = &bs
	}
	if r.BreakEnd != nil {
		be := types.TimeString(*r.BreakEnd)
		rule.BreakEnd = &be
	}

	if r.SpecificDate != nil {
		date, err := time.Parse(domain.DateFormat, *r.SpecificDate)
		if err != nil {
			return nil, err
		}
		rule.SpecificDate = &date
		rule.DayOfWeek = date.Weekday()
	} else if r.DayOfWeek != nil {
		rule.Recurring = true
		rule.DayOfWeek = time.Weekday(*r.DayOfWeek % 7)
	}

	if r.EffectiveFrom != nil {
		from, err := time.Parse(domain.DateFormat, *r.EffectiveFrom)
		if err != nil {
			return nil, err
		}
		rule.EffectiveFrom = &from
	}
	if r.EffectiveUntil != nil {
		until, err := time.Parse(domain.DateFormat, *r.EffectiveUntil)
		if err != nil {
			return nil, err
		}
		rule.EffectiveUntil = &until
	}

	return rule, nil
}

// Response модели

// RuleResponse ответ с данными правила расписания
type RuleResponse struct {
	ID         int64 `json:"id"`
	HospitalID int64 `json:"hospitalId"`
	DoctorID   int64 `json:"doctorId"`

	DayOfWeek    int     `json:"dayOfWeek"`
	SpecificDate *string `json:"specificDate,omitempty"`
	Recurring    bool    `json:"recurring"`

	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	BreakStart *string `json:"breakStart,omitempty"`
	BreakEnd   *string `json:"breakEnd,omitempty"`

	SlotDurationMinutes int `json:"slotDurationMinutes"`
	MaxAppointments     int `json:"maxAppointments"`

	EffectiveFrom  *string `json:"effectiveFrom,omitempty"`
	EffectiveUntil *string `json:"effectiveUntil,omitempty"`

	Teleconsultation bool    `json:"teleconsultation"`
	RoomNumber       *string `json:"roomNumber,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RuleListResponse ответ со списком правил расписания
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
}

// Методы конвертации

// FromDomainRule конвертирует domain модель в DTO
func FromDomainRule(r *domain.ScheduleRule) *RuleResponse {
	if r == nil {
		return nil
	}

	resp := &RuleResponse{
		ID:                  r.ID,
		HospitalID:          r.HospitalID,
		DoctorID:            r.DoctorID,
		DayOfWeek:           int(r.DayOfWeek),
		Recurring:           r.Recurring,
		StartTime:           r.StartTime.String(),
		EndTime:             r.EndTime.String(),
		SlotDurationMinutes: r.SlotDurationMinutes,
		MaxAppointments:     r.MaxAppointments,
		Teleconsultation:    r.Teleconsultation,
		RoomNumber:          r.RoomNumber,
		Active:              r.Active,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}

	if r.SpecificDate != nil {
		date := r.SpecificDate.Format(domain.DateFormat)
		resp.SpecificDate = &date
	}
	if r.BreakStart != nil {
		bs := r.BreakStart.String()
		resp.BreakStart = &bs
	}
	if r.BreakEnd != nil {
		be := r.BreakEnd.String()
		resp.BreakEnd = &be
	}
	if r.EffectiveFrom != nil {
		from := r.EffectiveFrom.Format(domain.DateFormat)
		resp.EffectiveFrom = &from
	}
	if r.EffectiveUntil != nil {
		until := r.EffectiveUntil.Format(domain.DateFormat)
		resp.EffectiveUntil = &until
	}

	return resp
}

// FromDomainRuleList конвертирует список domain моделей в DTO
func FromDomainRuleList(rules []*domain.ScheduleRule) *RuleListResponse {
	if rules == nil {
		return &RuleListResponse{Rules: []RuleResponse{}}
	}

	resp := &RuleListResponse{
		Rules: make([]RuleResponse, len(rules)),
	}
	for i, rule := range rules {
		if ruleResp := FromDomainRule(rule); ruleResp != nil {
			resp.Rules[i] = *ruleResp
		}
	}
	return resp
}
