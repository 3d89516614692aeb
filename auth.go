package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenTTL = 30 * 24 * time.Hour

// sessionClaims binds a device token to exactly one profile.
type sessionClaims struct {
	ProfileID string `json:"profileId"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue mints a signed session token for a profile. Issued once at setup
// completion; the client presents it on every request.
func (t *TokenIssuer) Issue(profileID string, now time.Time) (string, error) {
	claims := sessionClaims{
		ProfileID: profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses a token and returns the profile id it is bound to.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.ProfileID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.ProfileID, nil
}

// profileIDFromRequest extracts the authenticated profile id from the
// Authorization header.
func profileIDFromRequest(issuer *TokenIssuer, r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	const scheme = "Bearer "
	if !strings.HasPrefix(header, scheme) {
		return "", errors.New("authorization header is not a bearer token")
	}
	tokenString := strings.TrimSpace(header[len(scheme):])
	if tokenString == "" {
		return "", errors.New("empty bearer token")
	}
	return issuer.Verify(tokenString)
}
