package update_queue_entry

import "time"

// Action действие над записью очереди
type Action string

const (
	// ActionStart пациент зашёл в кабинет, консультация началась
	ActionStart Action = "start"
	// ActionComplete консультация завершена
	ActionComplete Action = "complete"
	// ActionSkip пациент не подошёл на вызов, возвращается в хвост очереди
	ActionSkip Action = "skip"
	// ActionNoShow пациент не явился, запись закрывается
	ActionNoShow Action = "no_show"
)

// Request запрос на изменение состояния записи очереди
type Request struct {
	EntryID int64
	Action  Action
	// ExpectedVersion опциональная ожидаемая версия записи; при несовпадении
	// с текущей возвращается ErrStaleWrite
	ExpectedVersion *int64
}

// Response ответ с обновлённой записью очереди
type Response struct {
	EntryID              int64
	AppointmentID        int64
	TokenDisplay         string
	Status               string
	Position             int
	SkipCount            int
	ActualWaitMinutes    int
	ConsultationStart    *time.Time
	ConsultationEnd      *time.Time
	EstimatedWaitMinutes int
	Version              int64
}
