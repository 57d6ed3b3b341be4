package sessionstore

import "errors"

var (
	// ErrSessionNotFound возвращается, когда OTP сессия не найдена
	ErrSessionNotFound = errors.New("sessionstore: session not found")

	// ErrSessionExpired возвращается, когда срок жизни OTP сессии истёк
	ErrSessionExpired = errors.New("sessionstore: session expired")

	// ErrNotVerified возвращается при попытке использовать неподтверждённую сессию
	ErrNotVerified = errors.New("sessionstore: session not verified")

	// ErrMobileMismatch возвращается, когда номер телефона не совпадает с сессией
	ErrMobileMismatch = errors.New("sessionstore: mobile number mismatch")

	// ErrTokenNotFound возвращается, когда гостевой токен доступа не найден или истёк
	ErrTokenNotFound = errors.New("sessionstore: access token not found")

	// ErrStorage возвращается при ошибке нижележащего хранилища
	ErrStorage = errors.New("sessionstore: storage error")
)
