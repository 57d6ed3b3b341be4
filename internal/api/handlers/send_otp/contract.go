package send_otp

import (
	"context"

	sendOtp "github.com/m04kA/HMS-AppointmentService/internal/usecase/send_otp"
)

type SendOtpUseCase interface {
	Execute(ctx context.Context, req *sendOtp.Request) (*sendOtp.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
