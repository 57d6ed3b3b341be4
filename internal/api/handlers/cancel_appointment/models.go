package cancel_appointment

import "github.com/m04kA/HMS-AppointmentService/internal/service/appointments/models"

// CancelAppointmentRequest HTTP request model
type CancelAppointmentRequest struct {
	CancellationReason string `json:"cancellationReason"`
	// Staff выставляется персоналом больницы: отмена идёт от имени больницы
	Staff bool `json:"staff,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CancelAppointmentRequest) ToServiceRequest(userID int64) *models.CancelAppointmentRequest {
	actorPatientID := userID
	if r.Staff {
		actorPatientID = 0
	}
	return &models.CancelAppointmentRequest{
		ActorPatientID:     actorPatientID,
		CancellationReason: r.CancellationReason,
	}
}
