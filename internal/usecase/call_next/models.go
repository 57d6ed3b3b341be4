package call_next

import "time"

// Request запрос на вызов следующего пациента из очереди врача
type Request struct {
	DoctorID int64
	Date     time.Time
}

// Response ответ с вызванным пациентом
type Response struct {
	EntryID       int64
	AppointmentID int64
	PatientName   string
	TokenNumber   int
	TokenDisplay  string
	Status        string
	CalledTime    time.Time
	SkipCount     int
}
