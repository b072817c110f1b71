package model

import "github.com/golang-jwt/jwt/v5"

const RoleAdmin = "admin"

// AccessClaims are the claims carried by an access token issued by the auth service.
type AccessClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c AccessClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
