package verify_otp

import (
	"context"

	verifyOtp "github.com/m04kA/HMS-AppointmentService/internal/usecase/verify_otp"
)

type VerifyOtpUseCase interface {
	Execute(ctx context.Context, req *verifyOtp.Request) (*verifyOtp.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
