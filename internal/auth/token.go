package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long an issued session token stays valid.
const SessionTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carry the user summary embedded in every session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int    `json:"uid"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// TokenService issues and verifies HMAC-SHA256 signed session tokens.
// Tokens are stateless: nothing is kept server-side, expiry is the only
// way a session ends.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	// ability to inject the clock (for unit testing expiry)
	TimeFunc func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{
		secret:   secret,
		ttl:      ttl,
		TimeFunc: time.Now,
	}
}

func (ts *TokenService) Issue(user UserRecord) (string, error) {
	now := ts.TimeFunc()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	})

	return token.SignedString(ts.secret)
}

// Verify returns the claims of a valid token. Any anomaly - bad signature,
// malformed structure, wrong signing method, expiry - comes back uniformly
// as ErrInvalidToken, no partial recovery is attempted.
func (ts *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return ts.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return ts.TimeFunc() }),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
