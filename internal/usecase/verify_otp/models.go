package verify_otp

// MaxAttempts максимум неудачных попыток ввода кода на одну сессию
const MaxAttempts = 5

// Request запрос на проверку OTP кода
type Request struct {
	SessionID string
	Mobile    string
	Code      string
}

// Response ответ об успешной верификации
type Response struct {
	SessionID string
	Verified  bool
}
