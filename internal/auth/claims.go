package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fekuna/omnipos-backoffice/internal/model"
)

// Claims is the signed claim set a session token carries.
type Claims struct {
	EstablishmentID string     `json:"etablissement_id"`
	Role            model.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) UserContext() UserContext {
	return UserContext{
		UserID:          c.Subject,
		EstablishmentID: c.EstablishmentID,
		Role:            c.Role,
	}
}

// SignClaims issues an HS256 token for u valid for ttl.
func SignClaims(secret []byte, u UserContext, ttl time.Duration) (string, error) {
	if err := u.Validate(); err != nil {
		return "", err
	}
	now := time.Now()
	claims := &Claims{
		EstablishmentID: u.EstablishmentID,
		Role:            u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseClaims verifies tokenString and returns its claims. Tokens signed with
// anything other than HMAC are rejected.
func ParseClaims(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if err := claims.UserContext().Validate(); err != nil {
		return nil, err
	}
	return claims, nil
}
