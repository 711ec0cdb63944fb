package util

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type MyJwtClaims struct {
	UserId      int64   `json:"userId"`
	Username    string  `json:"username"`
	RoleIds     []int64 `json:"roleIds"`
	GeneratedAt int64   `json:"generatedAt"`
	ExpiresAt   int64   `json:"expiresAt"`
	jwt.RegisteredClaims
}

var ErrMissingUserId = errors.New("token has no userId")

// VerifyToken checks the HMAC signature and expiry of an access token.
func VerifyToken(tokenString string, secret string) (*jwt.Token, *MyJwtClaims, error) {
	if secret == "" {
		return nil, nil, errors.New("access token secret is not configured")
	}
	claims := MyJwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signature method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, nil, err
	}
	if claims.UserId <= 0 {
		return nil, nil, ErrMissingUserId
	}

	return token, &claims, nil
}

func CreateAccessToken(claims MyJwtClaims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
