// Package jwtauth emite y verifica tokens JWT HS256 con claims de
// usuario (sub), correo y rol. Implementa los puertos de internal/ports/auth.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vet-clinic-api/internal/ports/auth"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingSecret = errors.New("jwt secret is required")
)

type appClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Manager firma y verifica tokens con un secreto compartido de proceso.
// Es seguro para uso concurrente: todo el estado es de solo lectura.
type Manager struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

func NewManager(secret, issuer string, expiry time.Duration) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	if expiry <= 0 {
		expiry = 30 * time.Minute
	}
	return &Manager{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}, nil
}

// Issue genera un token firmado HMAC-SHA256 con sub, email, role,
// iss, iat y exp.
func (m *Manager) Issue(claims auth.Claims) (string, error) {
	if strings.TrimSpace(claims.UserID) == "" {
		return "", errors.New("user id is required to issue a token")
	}

	now := m.now()
	c := appClaims{
		Email: claims.Email,
		Role:  string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify valida firma, issuer, algoritmo y expiración, y devuelve los claims.
func (m *Manager) Verify(_ context.Context, tokenString string) (auth.Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	var c appClaims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	if err != nil || !token.Valid {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, err := c.GetSubject()
	if err != nil || sub == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return auth.Claims{
		UserID: sub,
		Email:  c.Email,
		Role:   auth.Role(c.Role),
	}, nil
}
