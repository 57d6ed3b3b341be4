package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	t.Cleanup(s.Close)
	return s
}

func testSession(ttl time.Duration) *OtpSession {
	return &OtpSession{
		ID:        "sess-1",
		Mobile:    "+919876543210",
		Code:      "123456",
		ExpiresAt: time.Now().Add(ttl),
	}
}

func TestMemoryStore_PutGetOtp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutOtp(ctx, testSession(time.Minute)))

	got, err := s.GetOtp(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", got.Mobile)
	assert.Equal(t, "123456", got.Code)
	assert.False(t, got.Verified)

	_, err = s.GetOtp(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_GetOtp_Expired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutOtp(ctx, testSession(-time.Second)))

	_, err := s.GetOtp(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionExpired)

	// Просроченная сессия удаляется при первом чтении
	_, err = s.GetOtp(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_UpdateOtp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := testSession(time.Minute)
	require.NoError(t, s.PutOtp(ctx, session))

	session.Verified = true
	session.Attempts = 2
	require.NoError(t, s.UpdateOtp(ctx, session))

	got, err := s.GetOtp(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Equal(t, 2, got.Attempts)

	assert.ErrorIs(t, s.UpdateOtp(ctx, &OtpSession{ID: "missing"}), ErrSessionNotFound)
}

func TestMemoryStore_ConsumeVerified(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes exactly once", func(t *testing.T) {
		s := newTestStore(t)
		session := testSession(time.Minute)
		session.Verified = true
		require.NoError(t, s.PutOtp(ctx, session))

		consumed, err := s.ConsumeVerified(ctx, "sess-1", "+919876543210")
		require.NoError(t, err)
		assert.Equal(t, "+919876543210", consumed.Mobile)
		assert.True(t, consumed.Verified)

		_, err = s.ConsumeVerified(ctx, "sess-1", "+919876543210")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("consumed session can be put back", func(t *testing.T) {
		s := newTestStore(t)
		session := testSession(time.Minute)
		session.Verified = true
		require.NoError(t, s.PutOtp(ctx, session))

		consumed, err := s.ConsumeVerified(ctx, "sess-1", "+919876543210")
		require.NoError(t, err)

		// Бронирование сорвалось, сессия возвращается на место
		require.NoError(t, s.PutOtp(ctx, consumed))

		restored, err := s.ConsumeVerified(ctx, "sess-1", "+919876543210")
		require.NoError(t, err)
		assert.True(t, restored.Verified)
	})

	t.Run("rejects unverified session", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.PutOtp(ctx, testSession(time.Minute)))

		_, err := s.ConsumeVerified(ctx, "sess-1", "+919876543210")
		assert.ErrorIs(t, err, ErrNotVerified)
	})

	t.Run("rejects mobile mismatch and keeps session", func(t *testing.T) {
		s := newTestStore(t)
		session := testSession(time.Minute)
		session.Verified = true
		require.NoError(t, s.PutOtp(ctx, session))

		_, err := s.ConsumeVerified(ctx, "sess-1", "+911111111111")
		assert.ErrorIs(t, err, ErrMobileMismatch)

		// Сессия не сгорела, правильный номер всё ещё проходит
		_, err = s.ConsumeVerified(ctx, "sess-1", "+919876543210")
		require.NoError(t, err)
	})

	t.Run("rejects expired session", func(t *testing.T) {
		s := newTestStore(t)
		session := testSession(-time.Second)
		session.Verified = true
		require.NoError(t, s.PutOtp(ctx, session))

		_, err := s.ConsumeVerified(ctx, "sess-1", "+919876543210")
		assert.ErrorIs(t, err, ErrSessionExpired)
	})
}

func TestMemoryStore_AccessTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutAccessToken(ctx, "token-abc", 77, time.Minute))

	id, err := s.GetAccessToken(ctx, "token-abc")
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)

	_, err = s.GetAccessToken(ctx, "unknown")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, s.PutAccessToken(ctx, "token-old", 78, -time.Second))
	_, err = s.GetAccessToken(ctx, "token-old")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMemoryStore_PutOtp_CopiesSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := testSession(time.Minute)
	require.NoError(t, s.PutOtp(ctx, session))

	// Мутации снаружи не должны протекать в хранилище
	session.Verified = true

	got, err := s.GetOtp(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, got.Verified)
}
