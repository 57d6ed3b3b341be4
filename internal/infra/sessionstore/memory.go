package sessionstore

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = time.Minute

// MemoryStore потокобезопасное in-memory хранилище сессий.
// Подходит для dev окружения и одного инстанса сервиса; при рестарте
// все сессии теряются.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*OtpSession
	tokens   map[string]accessToken

	stopCh chan struct{}
}

type accessToken struct {
	appointmentID int64
	expiresAt     time.Time
}

// NewMemoryStore создает in-memory хранилище и запускает фоновую очистку
// просроченных сессий
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*OtpSession),
		tokens:   make(map[string]accessToken),
		stopCh:   make(chan struct{}),
	}

	go s.sweep()

	return s
}

// Close останавливает фоновую очистку
func (s *MemoryStore) Close() {
	close(s.stopCh)
}

// PutOtp сохраняет новую OTP сессию
func (s *MemoryStore) PutOtp(_ context.Context, session *OtpSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.ID] = &copied

	return nil
}

// GetOtp возвращает сессию по ID
func (s *MemoryStore) GetOtp(_ context.Context, sessionID string) (*OtpSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired(time.Now()) {
		delete(s.sessions, sessionID)
		return nil, ErrSessionExpired
	}

	copied := *session
	return &copied, nil
}

// UpdateOtp перезаписывает сессию
func (s *MemoryStore) UpdateOtp(_ context.Context, session *OtpSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}

	copied := *session
	s.sessions[session.ID] = &copied

	return nil
}

// ConsumeVerified атомарно проверяет и удаляет подтверждённую сессию
func (s *MemoryStore) ConsumeVerified(_ context.Context, sessionID, mobile string) (*OtpSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired(time.Now()) {
		delete(s.sessions, sessionID)
		return nil, ErrSessionExpired
	}
	if !session.Verified {
		return nil, ErrNotVerified
	}
	if session.Mobile != mobile {
		return nil, ErrMobileMismatch
	}

	delete(s.sessions, sessionID)

	copied := *session
	return &copied, nil
}

// PutAccessToken сохраняет гостевой токен доступа
func (s *MemoryStore) PutAccessToken(_ context.Context, token string, appointmentID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = accessToken{
		appointmentID: appointmentID,
		expiresAt:     time.Now().Add(ttl),
	}

	return nil
}

// GetAccessToken возвращает ID записи по гостевому токену
func (s *MemoryStore) GetAccessToken(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.tokens[token]
	if !ok {
		return 0, ErrTokenNotFound
	}
	if time.Now().After(at.expiresAt) {
		delete(s.tokens, token)
		return 0, ErrTokenNotFound
	}

	return at.appointmentID, nil
}

// sweep периодически удаляет просроченные сессии и токены
func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, session := range s.sessions {
				if session.IsExpired(now) {
					delete(s.sessions, id)
				}
			}
			for token, at := range s.tokens {
				if now.After(at.expiresAt) {
					delete(s.tokens, token)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}
