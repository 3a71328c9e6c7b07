// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication for the patient and
// clinic apps. Tokens are HS256 JWTs carrying the user identity in the
// standard "sub" claim; the verified identity is stashed in the Gin context
// under "userID", where the logger, rate limiter, and idempotency
// middleware already look for it.
//
// Demo mode: when no secret is configured, verification is disabled and the
// X-User-ID header is trusted instead. This keeps local development and the
// demo frontend working without an identity provider.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthOptions configures the Auth middleware.
type AuthOptions struct {
	// Secret is the HS256 signing key. Empty disables verification (demo mode).
	Secret string
	// Required aborts with 401 when no identity can be established. When
	// false, anonymous requests proceed with the demo fallback identity.
	Required bool
}

// Auth returns a Gin middleware that establishes the request identity.
//
// Behavior:
//   - With a configured secret: a valid "Authorization: Bearer <jwt>" sets
//     userID from the token subject; an invalid or expired token yields 401.
//   - Demo mode (empty secret): the X-User-ID header is trusted verbatim.
//   - Without any identity: 401 when Required, otherwise the request
//     proceeds and downstream fallbacks apply.
func Auth(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.Secret == "" {
			if uid := strings.TrimSpace(c.GetHeader("X-User-ID")); uid != "" {
				c.Set("userID", uid)
			} else if opts.Required {
				unauthorized(c, "identity required")
				return
			}
			c.Next()
			return
		}

		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			if opts.Required {
				unauthorized(c, "missing bearer token")
				return
			}
			c.Next()
			return
		}

		sub, err := VerifyToken(raw, opts.Secret)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		c.Set("userID", sub)
		c.Next()
	}
}

// IssueToken mints an HS256 JWT for the given subject with the given
// lifetime. Used by the demo login flow and by tests.
func IssueToken(subject, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyToken parses and validates an HS256 JWT and returns its subject.
func VerifyToken(raw, secret string) (string, error) {
	tok, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	claims, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
