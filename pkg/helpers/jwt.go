package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every decode failure: bad signature, wrong
// algorithm, expired, or structurally malformed. Callers get no finer
// distinction.
var ErrInvalidToken = errors.New("invalid token")

// TokenCodec issues and decodes HS256-signed session tokens.
// The secret is process-wide configuration; there is no rotation.
type TokenCodec struct {
	Secret []byte
	TTL    time.Duration
}

var defaultCodec *TokenCodec

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	c := &TokenCodec{Secret: []byte(secret), TTL: ttl}
	defaultCodec = c
	return c
}

// DefaultTokenCodec returns the last constructed TokenCodec (used for auto-wiring routes)
func DefaultTokenCodec() *TokenCodec { return defaultCodec }

type Claims struct {
	jwt.RegisteredClaims
}

// Issue signs a token for the given subject expiring at now+ttl.
// A non-positive ttl falls back to the codec default.
func (c *TokenCodec) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = c.TTL
	}
	exp := time.Now().Add(ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(c.Secret)
	return s, exp, err
}

// Decode verifies signature, signing method, and expiry before returning
// claims. An unverified payload is never returned.
func (c *TokenCodec) Decode(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.Secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
