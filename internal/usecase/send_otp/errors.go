package send_otp

import "errors"

var (
	// ErrInvalidMobile возвращается при некорректном номере телефона
	ErrInvalidMobile = errors.New("send_otp: invalid mobile number")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("send_otp: internal error")
)
