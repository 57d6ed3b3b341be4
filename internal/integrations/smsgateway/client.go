package smsgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент SMS шлюза
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

type smsRequest struct {
	Mobile  string `json:"mobile"`
	Message string `json:"message"`
}

// NewClient создает новый экземпляр клиента SMS шлюза
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// SendOtp отправляет OTP код на номер телефона
func (c *Client) SendOtp(ctx context.Context, mobile, code string) error {
	message := fmt.Sprintf("Your OPD booking verification code is %s. Valid for 5 minutes.", code)
	return c.send(ctx, mobile, message)
}

// SendBookingConfirmation отправляет подтверждение записи с номером талона
func (c *Client) SendBookingConfirmation(ctx context.Context, mobile, appointmentNumber, tokenDisplay string) error {
	message := fmt.Sprintf("Your appointment %s is booked. Queue token: %s.", appointmentNumber, tokenDisplay)
	return c.send(ctx, mobile, message)
}

func (c *Client) send(ctx context.Context, mobile, message string) error {
	url := fmt.Sprintf("%s/internal/sms/send", c.baseURL)

	payload, err := json.Marshal(smsRequest{Mobile: mobile, Message: message})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	return nil
}
