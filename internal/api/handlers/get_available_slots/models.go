package get_available_slots

import (
	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	getSlots "github.com/m04kA/HMS-AppointmentService/internal/usecase/get_available_slots"
)

// SlotResponse HTTP модель одного слота
type SlotResponse struct {
	StartTime        string `json:"startTime"` // "10:00"
	EndTime          string `json:"endTime"`   // "10:15"
	DurationMinutes  int    `json:"durationMinutes"`
	Teleconsultation bool   `json:"teleconsultation"`
	Available        bool   `json:"available"`
}

// SlotsResponse HTTP модель ответа со слотами врача
type SlotsResponse struct {
	DoctorID   int64          `json:"doctorId"`
	DoctorName string         `json:"doctorName"`
	Date       string         `json:"date"`
	OnLeave    bool           `json:"onLeave"`
	Slots      []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getSlots.Response) *SlotsResponse {
	out := &SlotsResponse{
		DoctorID:   resp.DoctorID,
		DoctorName: resp.DoctorName,
		Date:       resp.Date.Format(domain.DateFormat),
		OnLeave:    resp.OnLeave,
		Slots:      make([]SlotResponse, len(resp.Slots)),
	}
	for i, slot := range resp.Slots {
		out.Slots[i] = SlotResponse{
			StartTime:        slot.StartTime.String(),
			EndTime:          slot.EndTime.String(),
			DurationMinutes:  slot.DurationMinutes,
			Teleconsultation: slot.Teleconsultation,
			Available:        slot.Available,
		}
	}
	return out
}
