package verify_otp

// VerifyOtpRequest HTTP request model
type VerifyOtpRequest struct {
	SessionID string `json:"sessionId"`
	Mobile    string `json:"mobile"`
	Code      string `json:"code"`
}

// VerifyOtpResponse HTTP response model
type VerifyOtpResponse struct {
	SessionID string `json:"sessionId"`
	Verified  bool   `json:"verified"`
}
