package utils

import (
	"fmt"

	"fundigo/config"

	"github.com/golang-jwt/jwt"
)

// ActorClaims are the claims this engine needs from tokens minted by the
// external auth collaborator.
type ActorClaims struct {
	ActorID string `json:"sub"`
	Role    string `json:"role"` // "customer" or "provider"
	jwt.StandardClaims
}

// ExtractActorFromToken validates the token signature and returns the actor
// id and role embedded in it.
func ExtractActorFromToken(tokenString string) (string, string, error) {
	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid || claims.ActorID == "" {
		return "", "", fmt.Errorf("invalid token")
	}
	return claims.ActorID, claims.Role, nil
}
