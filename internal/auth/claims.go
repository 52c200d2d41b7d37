package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the only supported token claims shape for this service. The
// control plane is single-tenant (one device, one engine); Operator just
// identifies who is driving it.
type Claims struct {
	jwt.RegisteredClaims

	Operator string `json:"operator"`
}
