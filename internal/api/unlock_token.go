package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var errInvalidUnlockToken = errors.New("invalid unlock token")

type unlockClaims struct {
	Purpose string `json:"purpose"`
	// UnlockedAt is the issue time in Unix milliseconds; iat only has
	// second precision.
	UnlockedAt int64 `json:"unlockedAt"`
	jwt.RegisteredClaims
}

func (handler *Handler) buildUnlockToken(now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(handler.unlockTTL)
	claims := unlockClaims{
		Purpose:    unlockTokenPurpose,
		UnlockedAt: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(handler.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (handler *Handler) parseUnlockToken(raw string) (*unlockClaims, error) {
	claims := &unlockClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return handler.secretKey, nil
	}, jwt.WithTimeFunc(handler.now))
	if err != nil || !token.Valid {
		return nil, errInvalidUnlockToken
	}
	if claims.Purpose != unlockTokenPurpose {
		return nil, errInvalidUnlockToken
	}
	return claims, nil
}

// issuedBeforeLock reports whether a lock (or PIN change) happened after the
// token was handed out.
func (claims *unlockClaims) issuedBeforeLock(lastLockedAt *time.Time) bool {
	return lastLockedAt != nil && claims.UnlockedAt < lastLockedAt.UnixMilli()
}

func (handler *Handler) setUnlockCookie(c *fiber.Ctx) error {
	token, expiresAt, err := handler.buildUnlockToken(handler.now())
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     unlockCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  expiresAt,
	})
	return nil
}

func (handler *Handler) clearUnlockCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     unlockCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Unix(0, 0),
	})
}

// PinGate rejects data requests without a valid unlock cookie while the PIN
// gate is enabled. Cookies issued before the last lock are void. The lock
// screen's own routes stay open.
func (handler *Handler) PinGate(c *fiber.Ctx) error {
	if isUngatedPath(c.Path()) {
		return c.Next()
	}

	status, err := handler.deps.Security.Status(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if !status.PinEnabled {
		return c.Next()
	}

	raw := strings.TrimSpace(c.Cookies(unlockCookieName))
	if raw == "" {
		return apiError(c, fiber.StatusUnauthorized, "locked")
	}
	claims, err := handler.parseUnlockToken(raw)
	if err != nil || claims.issuedBeforeLock(status.LastLockedAt) {
		handler.clearUnlockCookie(c)
		return apiError(c, fiber.StatusUnauthorized, "locked")
	}
	return c.Next()
}

func isUngatedPath(path string) bool {
	path = strings.TrimRight(path, "/")
	switch path {
	case "/api/security/status", "/api/security/unlock", "/api/i18n":
		return true
	}
	return strings.HasPrefix(path, "/api/i18n/")
}
