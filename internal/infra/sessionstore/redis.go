package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpKeyPrefix   = "otp:session:"
	tokenKeyPrefix = "guest:token:"
)

// RedisStore хранилище сессий в Redis. TTL делегирован самому Redis,
// поэтому просроченные сессии выглядят как отсутствующие и различить
// "не было" и "истекла" здесь нельзя; вызывающая сторона трактует
// ErrSessionNotFound для гостевого потока как истёкшую сессию.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore создает хранилище сессий поверх Redis клиента
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// PutOtp сохраняет новую OTP сессию с TTL до ExpiresAt
func (s *RedisStore) PutOtp(ctx context.Context, session *OtpSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: PutOtp - marshal session: %v", ErrStorage, err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	if err := s.client.Set(ctx, otpKeyPrefix+session.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: PutOtp - set key: %v", ErrStorage, err)
	}

	return nil
}

// GetOtp возвращает сессию по ID
func (s *RedisStore) GetOtp(ctx context.Context, sessionID string) (*OtpSession, error) {
	payload, err := s.client.Get(ctx, otpKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOtp - get key: %v", ErrStorage, err)
	}

	var session OtpSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("%w: GetOtp - unmarshal session: %v", ErrStorage, err)
	}

	if session.IsExpired(time.Now()) {
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// UpdateOtp перезаписывает сессию, сохраняя оставшийся TTL
func (s *RedisStore) UpdateOtp(ctx context.Context, session *OtpSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: UpdateOtp - marshal session: %v", ErrStorage, err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	ok, err := s.client.SetXX(ctx, otpKeyPrefix+session.ID, payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: UpdateOtp - set key: %v", ErrStorage, err)
	}
	if !ok {
		return ErrSessionNotFound
	}

	return nil
}

// ConsumeVerified снимает сессию одной командой GETDEL и валидирует её уже
// после удаления: две конкурирующие брони не могут пройти по одной сессии.
// Неподтверждённая или привязанная к другому номеру сессия возвращается
// на место с остатком TTL.
func (s *RedisStore) ConsumeVerified(ctx context.Context, sessionID, mobile string) (*OtpSession, error) {
	payload, err := s.client.GetDel(ctx, otpKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: ConsumeVerified - getdel key: %v", ErrStorage, err)
	}

	var session OtpSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("%w: ConsumeVerified - unmarshal session: %v", ErrStorage, err)
	}

	if session.IsExpired(time.Now()) {
		return nil, ErrSessionExpired
	}
	if !session.Verified {
		s.putBack(ctx, &session, payload)
		return nil, ErrNotVerified
	}
	if session.Mobile != mobile {
		s.putBack(ctx, &session, payload)
		return nil, ErrMobileMismatch
	}

	return &session, nil
}

// putBack возвращает снятую GETDEL сессию после неуспешной валидации
func (s *RedisStore) putBack(ctx context.Context, session *OtpSession, payload []byte) {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return
	}
	s.client.SetNX(ctx, otpKeyPrefix+session.ID, payload, ttl)
}

// PutAccessToken сохраняет гостевой токен доступа
func (s *RedisStore) PutAccessToken(ctx context.Context, token string, appointmentID int64, ttl time.Duration) error {
	err := s.client.Set(ctx, tokenKeyPrefix+token, strconv.FormatInt(appointmentID, 10), ttl).Err()
	if err != nil {
		return fmt.Errorf("%w: PutAccessToken - set key: %v", ErrStorage, err)
	}

	return nil
}

// GetAccessToken возвращает ID записи по гостевому токену
func (s *RedisStore) GetAccessToken(ctx context.Context, token string) (int64, error) {
	raw, err := s.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err == redis.Nil {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: GetAccessToken - get key: %v", ErrStorage, err)
	}

	appointmentID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: GetAccessToken - parse appointment id: %v", ErrStorage, err)
	}

	return appointmentID, nil
}
