package idp

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/weedscan-auth/internal/config"
)

// SessionClaims is the payload of a provider-issued session token.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// customTokenTTL bounds the lifetime of a minted custom token; it only has
// to survive the immediate exchange call.
const customTokenTTL = 5 * time.Minute

// TokenKit verifies provider session tokens and mints RS256 custom tokens.
// The provider's admin update path does not return fresh session tokens, so
// after upgrading a user we sign an assertion for their id and trade it for
// ordinary session/refresh tokens.
type TokenKit struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

func NewTokenKit(cfg *config.Config) (*TokenKit, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &TokenKit{privateKey: privKey, publicKey: pubKey}, nil
}

// NewTokenKitFromKeys builds a TokenKit from in-memory keys. Used by tests.
func NewTokenKitFromKeys(priv *rsa.PrivateKey) *TokenKit {
	return &TokenKit{privateKey: priv, publicKey: &priv.PublicKey}
}

// SignCustomToken mints a short-lived RS256 assertion for the given user id.
func (k *TokenKit) SignCustomToken(userID string) (string, error) {
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{"identitytoolkit"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(customTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(k.privateKey)
}

// VerifySessionToken validates a session token and returns its claims.
// Expired, malformed and forged tokens are all rejected.
func (k *TokenKit) VerifySessionToken(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return k.publicKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}
