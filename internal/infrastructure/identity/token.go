package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

// TokenManager выпускает и проверяет access-токены. В subject записывается идентификатор участника.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue выпускает access-токен для участника.
func (m *TokenManager) Issue(principal uuid.UUID) (string, time.Time, error) {
	if principal == uuid.Nil {
		return "", time.Time{}, apperror.ErrUnauthenticated
	}
	now := m.now()
	exp := now.Add(m.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   principal.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("identity: не удалось подписать токен: %w", err)
	}
	return token, exp, nil
}

// ParseAccess возвращает участника из подписанного токена.
func (m *TokenManager) ParseAccess(token string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, apperror.Wrap(err, apperror.ErrCodeUnauthenticated, "срок действия токена истёк")
		}
		return uuid.Nil, apperror.Wrap(err, apperror.ErrCodeUnauthenticated, "недействительный токен")
	}
	if !parsed.Valid {
		return uuid.Nil, apperror.ErrUnauthenticated
	}

	principal, err := uuid.Parse(claims.Subject)
	if err != nil || principal == uuid.Nil {
		return uuid.Nil, apperror.New(apperror.ErrCodeUnauthenticated, "некорректный subject токена")
	}
	return principal, nil
}
