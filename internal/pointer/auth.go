package pointer

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "fingertip-catch"

var errUnauthorized = errors.New("pointer: unauthorized")

// IssueToken signs a feed token for the named tracker.
func IssueToken(secret []byte, tracker string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": tracker,
		"iss": tokenIssuer,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parseToken returns the tracker name carried by tok.
func parseToken(secret []byte, tok string) (string, error) {
	if tok == "" {
		return "", errUnauthorized
	}
	t, err := jwt.Parse(tok, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil || !t.Valid {
		return "", errUnauthorized
	}
	sub, err := t.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errUnauthorized
	}
	return sub, nil
}

// requestToken reads a bearer token from the header or the token query param.
// Browsers cannot set headers on websocket upgrades, hence the fallback.
func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
