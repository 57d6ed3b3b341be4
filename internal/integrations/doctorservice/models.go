package doctorservice

// Doctor модель врача из DoctorService
type Doctor struct {
	ID                  int64   `json:"id"`
	HospitalID          int64   `json:"hospital_id"`
	Name                string  `json:"name"`
	Specialization      string  `json:"specialization"`
	ConsultationFee     float64 `json:"consultation_fee"`
	TeleconsultationFee float64 `json:"teleconsultation_fee"`
	Active              bool    `json:"active"`
}

// LeaveStatus ответ DoctorService о статусе отпуска врача на дату
type LeaveStatus struct {
	DoctorID int64  `json:"doctor_id"`
	Date     string `json:"date"`
	OnLeave  bool   `json:"on_leave"`
}
