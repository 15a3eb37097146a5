package auth

import (
	"testing"
	"time"

	"github.com/rbos-labs/rbos-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "rbos-test", ExpirationMinutes: 5}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Subject: "user-a", DisplayName: "A"})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	key := claims.IdentityKey()
	if key == nil || *key != "user-a" {
		t.Fatalf("unexpected identity key: %v", key)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Subject: "user-a"})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected signature rejection")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{Subject: "user-a"})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expiry rejection")
	}
}

func TestMintRequiresSubject(t *testing.T) {
	t.Parallel()

	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestIdentityKeyNilForAnonymous(t *testing.T) {
	t.Parallel()

	var claims *AccessTokenClaims
	if claims.IdentityKey() != nil {
		t.Fatal("nil claims should have nil identity key")
	}
	if (&AccessTokenClaims{}).IdentityKey() != nil {
		t.Fatal("empty subject should have nil identity key")
	}
}
