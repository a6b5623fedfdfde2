package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of identity-provider token claims the gateway uses.
type Claims struct {
	UserID string
	Name   string
	Email  string
}

// TokenVerifier validates ID tokens minted by the identity provider.
// Tokens are HS256 JWTs carrying sub/name/email claims.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier creates a verifier for the given shared secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses and validates an ID token, returning its claims. Expired,
// tampered, or otherwise invalid tokens yield an error.
func (v *TokenVerifier) Verify(idToken string) (*Claims, error) {
	token, err := jwt.Parse(idToken, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid id token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("id token missing subject")
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)

	return &Claims{UserID: sub, Name: name, Email: email}, nil
}
