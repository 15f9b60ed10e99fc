package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for tokens that are not three-part JWTs.
var ErrNotJWT = errors.New("token is not a JWT")

// Claims are the unverified claims of a bearer token.
type Claims struct {
	Subject  string
	Issuer   string
	Audience []string
	// IssuedAt and ExpiresAt are zero when the claim is absent.
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Roles is read from "roles" or "authorities", as an array or a comma list.
	Roles []string
}

// Inspect decodes token without checking its signature. A leading "Bearer " is ignored.
func Inspect(token string) (Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if strings.Count(token, ".") != 2 {
		return Claims{}, ErrNotJWT
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, errors.Join(ErrNotJWT, err)
	}

	var c Claims
	c.Subject, _ = mc.GetSubject()
	c.Issuer, _ = mc.GetIssuer()
	if aud, err := mc.GetAudience(); err == nil {
		c.Audience = []string(aud)
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	c.Roles = stringList(mc["roles"])
	if len(c.Roles) == 0 {
		c.Roles = stringList(mc["authorities"])
	}
	return c, nil
}

// Expired reports whether the token carries an exp claim at or before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// TTL returns the time left until expiry, or 0 when there is no exp claim or it passed.
func (c Claims) TTL(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() || !now.Before(c.ExpiresAt) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

func stringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			switch x := item.(type) {
			case string:
				if x != "" {
					out = append(out, x)
				}
			case map[string]any:
				// Spring style {"authority": "ROLE_X"}.
				if s, ok := x["authority"].(string); ok && s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
