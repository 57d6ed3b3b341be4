package check_in

import "time"

// Policy политики очереди из конфигурации сервиса
type Policy struct {
	HospitalID         int64
	TokenDisplayPrefix string
}

// Request запрос на чек-ин пациента в живую очередь
type Request struct {
	AppointmentID int64
	// Priority приоритет обслуживания (VIP, пожилые, экстренные); 0 = обычный
	Priority int
}

// Response ответ с созданной записью очереди
type Response struct {
	EntryID              int64
	AppointmentID        int64
	DoctorID             int64
	PatientName          string
	TokenNumber          int
	TokenDisplay         string
	Position             int
	Status               string
	Priority             int
	CheckInTime          time.Time
	EstimatedWaitMinutes int
}
