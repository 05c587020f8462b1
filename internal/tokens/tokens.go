package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fga-eps-mds/capju-session-go/internal/models"
)

// Claims is the payload of a session token: the full user snapshot under the
// `id` claim plus the registered expiration/issue instants.
type Claims struct {
	User models.User `json:"id"`
	jwt.RegisteredClaims
}

// ErrMalformed is returned for any token that cannot be decoded. Callers map
// it to "no session" rather than propagating it.
var ErrMalformed = errors.New("malformed session token")

// Generate creates a signed HS256 session token embedding the user snapshot.
func Generate(secret string, u *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		User: *u,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.CPF,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// Verify parses the token with full signature verification. Only the server
// holds the signing secret.
func Verify(secret, raw string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, ErrMalformed
	}
	return &claims, nil
}

// Decode performs payload-only parsing, no signature verification. The client
// does not hold the signing secret; it only needs the embedded claims to drive
// the expiration and session-status checks.
func Decode(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMalformed
	}
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return nil, ErrMalformed
	}
	return &claims, nil
}

// ExpiresAtTime returns the expiration instant, or the zero time when the
// claim is absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
