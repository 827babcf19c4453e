package auth

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const SessionCookieName = "session"

type sessionClaims struct {
	Authenticated bool `json:"authenticated"`
	jwt.RegisteredClaims
}

// IssueToken produces a signed session token asserting a completed login,
// expiring ttlHours from now.
func IssueToken(secret string, ttlHours int) (string, error) {
	return issueTokenAt(secret, ttlHours, time.Now())
}

func issueTokenAt(secret string, ttlHours int, now time.Time) (string, error) {
	claims := sessionClaims{
		Authenticated: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlHours) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken reports whether tokenString is a currently valid session token.
// A tampered, expired, or malformed token is just "not authenticated"; callers
// never learn which, and no error escapes.
func VerifyToken(tokenString, secret string) bool {
	return verifyTokenAt(tokenString, secret, time.Now())
}

func verifyTokenAt(tokenString, secret string, now time.Time) bool {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !token.Valid {
		return false
	}
	return claims.Authenticated
}

// SetSessionCookie hands the token to the client: httpOnly so page scripts
// cannot read it, SameSite=Lax, scoped to the whole application, lifetime
// matching the token's own expiry.
func SetSessionCookie(c *fiber.Ctx, token string, ttlHours int, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Lax",
		Expires:  time.Now().Add(time.Duration(ttlHours) * time.Hour),
		Path:     "/",
	})
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Lax",
		Expires:  time.Now().Add(-1 * time.Hour),
		Path:     "/",
	})
}
