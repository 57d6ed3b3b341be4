package send_otp

import "time"

// Policy политика OTP из конфигурации сервиса
type Policy struct {
	TTL    time.Duration
	Region string // регион по умолчанию для валидации номеров, например "IN"
	// DevMode не отправляет SMS, а возвращает код в ответе
	DevMode bool
}

// Request запрос на отправку OTP кода
type Request struct {
	Mobile string
}

// Response ответ с идентификатором OTP сессии
type Response struct {
	SessionID string
	Mobile    string // номер в нормализованном E.164 формате
	ExpiresAt time.Time

	// DevCode заполняется только в dev-режиме
	DevCode string
}
