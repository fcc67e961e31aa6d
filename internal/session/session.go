package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the explicit per-login context handed to the sync core. Components
// never re-derive identity from ambient storage; they receive a Session.
type Session struct {
	UserID      string
	UserType    string
	Email       string
	AccessToken string
}

type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// GenerateAccessToken signs a session token. Used by the stub backend's login
// endpoint; the production backend issues its own.
func GenerateAccessToken(secret string, expiry time.Duration, userID, email, userType string) (string, error) {
	claims := Claims{
		UserID:   userID,
		Email:    email,
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "hrpulse",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAccessToken validates tokenString and returns its claims.
func ParseAccessToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// FromToken builds a Session from a signed access token.
func FromToken(secret, tokenString string) (*Session, error) {
	claims, err := ParseAccessToken(secret, tokenString)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:      claims.UserID,
		UserType:    claims.UserType,
		Email:       claims.Email,
		AccessToken: tokenString,
	}, nil
}
