package stub

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid or expired token")

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// mintToken signs a session token for the given user.
func mintToken(userID int64, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "storefront-stub",
			Audience:  jwt.ClaimStrings{"storefront-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// parseToken validates a session token and returns the user ID it names.
func parseToken(tokenString, secret string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithIssuer("storefront-stub"), jwt.WithAudience("storefront-api"))
	if err != nil {
		return 0, errInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return 0, errInvalidToken
	}
	return claims.UserID, nil
}
