package jwt

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, claims gjwt.MapClaims) string {
	t.Helper()
	tok, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("not-the-backend-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestInspectReadsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := sign(t, gjwt.MapClaims{
		"sub":   "admin",
		"iss":   "rbac-admin",
		"aud":   "console",
		"iat":   time.Now().Unix(),
		"exp":   exp.Unix(),
		"roles": []string{"ROLE_ADMIN", "ROLE_USER"},
	})

	c, err := Inspect("Bearer " + token)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if c.Subject != "admin" || c.Issuer != "rbac-admin" {
		t.Fatalf("unexpected claims %+v", c)
	}
	if len(c.Audience) != 1 || c.Audience[0] != "console" {
		t.Fatalf("unexpected audience %v", c.Audience)
	}
	if !c.ExpiresAt.Equal(exp) {
		t.Fatalf("expected exp %v, got %v", exp, c.ExpiresAt)
	}
	if len(c.Roles) != 2 || c.Roles[0] != "ROLE_ADMIN" {
		t.Fatalf("unexpected roles %v", c.Roles)
	}
	if c.Expired(time.Now()) {
		t.Fatal("token should not be expired yet")
	}
	if c.TTL(time.Now()) <= 0 {
		t.Fatal("expected positive ttl")
	}
}

func TestInspectAuthoritiesForms(t *testing.T) {
	c, err := Inspect(sign(t, gjwt.MapClaims{"sub": "u", "authorities": "ROLE_A, ROLE_B"}))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if len(c.Roles) != 2 || c.Roles[1] != "ROLE_B" {
		t.Fatalf("unexpected roles %v", c.Roles)
	}

	c, err = Inspect(sign(t, gjwt.MapClaims{"authorities": []map[string]string{{"authority": "ROLE_C"}}}))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if len(c.Roles) != 1 || c.Roles[0] != "ROLE_C" {
		t.Fatalf("unexpected roles %v", c.Roles)
	}
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	past, err := Inspect(sign(t, gjwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !past.Expired(now) || past.TTL(now) != 0 {
		t.Fatal("expected expired token")
	}

	noExp, err := Inspect(sign(t, gjwt.MapClaims{"sub": "x"}))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if noExp.Expired(now) {
		t.Fatal("token without exp never expires client-side")
	}
}

func TestInspectRejectsOpaqueTokens(t *testing.T) {
	for _, tok := range []string{"", "opaque-token", "Bearer abc", "a.b.c"} {
		if _, err := Inspect(tok); !errors.Is(err, ErrNotJWT) {
			t.Fatalf("%q: expected ErrNotJWT, got %v", tok, err)
		}
	}
}
