package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the user id plus the registered time claims.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens. Tokens carry the signing
// key id in the kid header so older keys can keep verifying after rotation.
type TokenManager struct {
	activeKeyID string
	keys        map[string][]byte
	ttl         time.Duration
	now         func() time.Time
}

// NewTokenManager signs with secret under keyID; previous maps retired key ids
// to secrets that are still accepted for verification.
func NewTokenManager(keyID, secret string, previous map[string]string, ttl time.Duration) (*TokenManager, error) {
	if keyID == "" || secret == "" {
		return nil, errors.New("token signing key is not configured")
	}
	keys := map[string][]byte{keyID: []byte(secret)}
	for kid, s := range previous {
		if kid == keyID {
			continue
		}
		keys[kid] = []byte(s)
	}
	return &TokenManager{
		activeKeyID: keyID,
		keys:        keys,
		ttl:         ttl,
		now:         time.Now,
	}, nil
}

// Issue returns a signed token for userID that expires after the configured TTL.
func (m *TokenManager) Issue(userID string) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	token.Header["kid"] = m.activeKeyID

	tokenString, err := token.SignedString(m.keys[m.activeKeyID])
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString and returns its claims.
// Failures are always *AuthorizationError.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, &AuthorizationError{Kind: Missing}
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &AuthorizationError{Kind: Expired, Err: err}
		}
		return nil, &AuthorizationError{Kind: Invalid, Err: err}
	}
	if !token.Valid || claims.ExpiresAt == nil || claims.UserID == "" {
		return nil, &AuthorizationError{Kind: Invalid, Err: errors.New("incomplete claims")}
	}
	return claims, nil
}

func (m *TokenManager) keyFunc(t *jwt.Token) (interface{}, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		kid = m.activeKeyID
	}
	key, ok := m.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return key, nil
}
