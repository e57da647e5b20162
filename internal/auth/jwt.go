// Package auth issues and validates the tokens that bind a client to its
// editing session.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// hkdfInfo scopes the derived key to session tokens.
const hkdfInfo = "fairshare session token v1"

// SessionTokens handles session token generation and validation.
type SessionTokens struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// Claims represents the custom JWT claims for an editing session.
type Claims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// NewSessionTokens creates a token manager. The signing key is derived from
// secret with HKDF-SHA256. An empty secret selects a random key, so tokens
// stop validating when the process exits.
func NewSessionTokens(secret string, tokenDuration time.Duration) (*SessionTokens, error) {
	ikm := []byte(secret)
	if secret == "" {
		ikm = make([]byte, 32)
		if _, err := rand.Read(ikm); err != nil {
			return nil, fmt.Errorf("failed to generate secret: %w", err)
		}
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	return &SessionTokens{
		secretKey:     key,
		tokenDuration: tokenDuration,
	}, nil
}

// Generate creates a new token for the given session.
func (m *SessionTokens) Generate(sessionID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses and validates a token, returning the claims if valid.
func (m *SessionTokens) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
