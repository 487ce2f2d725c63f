package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the shape of the session token minted by the external
// auth provider. The core only ever reads the account reference out of it.
type SessionClaims struct {
	AccountRef string `json:"accountRef"`
	jwt.RegisteredClaims
}
