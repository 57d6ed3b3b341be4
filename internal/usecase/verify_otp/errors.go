package verify_otp

import "errors"

var (
	// ErrOtpExpired возвращается, когда сессия истекла, не найдена или исчерпаны попытки
	ErrOtpExpired = errors.New("verify_otp: otp session expired")

	// ErrOtpMismatch возвращается при неверном коде или несовпадении номера
	ErrOtpMismatch = errors.New("verify_otp: otp code mismatch")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("verify_otp: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("verify_otp: internal error")
)
