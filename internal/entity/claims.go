package entity

import "github.com/golang-jwt/jwt/v5"

type Claims struct {
	jwt.RegisteredClaims

	ID      uint64 `json:"id"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	TokenID string `json:"token_id"`
}
