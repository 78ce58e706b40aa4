package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/resplan/resplan-backend/internal/config"
)

type InvalidTokenError struct {
	reason string
}

func (e *InvalidTokenError) Error() string {
	return "invalid token: " + e.reason
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManger() *Manager {
	return &Manager{
		secret: []byte(config.Secret()),
		ttl:    config.JwtTTL(),
	}
}

// CreateToken issues a signed token for the given calendar principal.
func (m *Manager) CreateToken(principal string) (string, error) {
	claims := &jwt.RegisteredClaims{
		Subject:   principal,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

func (m *Manager) GetPrincipalFromToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &InvalidTokenError{reason: fmt.Sprintf("unexpected signing method %v", t.Header["alg"])}
		}
		return m.secret, nil
	})
	if err != nil {
		return "", &InvalidTokenError{reason: err.Error()}
	}

	if !parsed.Valid {
		return "", &InvalidTokenError{reason: "token not valid"}
	}

	if claims.Subject == "" {
		return "", &InvalidTokenError{reason: "no subject"}
	}

	return claims.Subject, nil
}
