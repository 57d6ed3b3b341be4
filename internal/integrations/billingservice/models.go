package billingservice

// ConsultationCharge запрос на выставление счёта за консультацию
type ConsultationCharge struct {
	AppointmentID     int64   `json:"appointment_id"`
	AppointmentNumber string  `json:"appointment_number"`
	HospitalID        int64   `json:"hospital_id"`
	DoctorID          int64   `json:"doctor_id"`
	PatientID         int64   `json:"patient_id"`
	PatientMobile     string  `json:"patient_mobile"`
	Amount            float64 `json:"amount"`
	Teleconsultation  bool    `json:"teleconsultation"`
}
