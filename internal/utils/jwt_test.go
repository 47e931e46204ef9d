package utils

import (
	"testing"
	"time"

	"github.com/openboard-io/openboard/backend/internal/config"
)

func testCodec() *TokenCodec {
	return NewTokenCodec(&config.JWTConfig{
		Secret:               "test-secret-key-for-testing",
		AccessTTLMinutes:     30,
		RefreshTTLDays:       7,
		SecretPostTTLMinutes: 30,
	})
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	codec := testCodec()

	token, err := codec.Encode(Claims{
		Subject:  "USER_AB12CD34",
		Username: "alice",
		Extra:    map[string]string{"scope": "board"},
	}, TokenTypeAccess, time.Hour)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, ok := codec.Decode(token)
	if !ok {
		t.Fatal("Decode() failed on freshly encoded token")
	}

	if decoded.Subject != "USER_AB12CD34" {
		t.Errorf("Subject = %q, expected %q", decoded.Subject, "USER_AB12CD34")
	}
	if decoded.Username != "alice" {
		t.Errorf("Username = %q, expected %q", decoded.Username, "alice")
	}
	if decoded.Type != TokenTypeAccess {
		t.Errorf("Type = %q, expected %q", decoded.Type, TokenTypeAccess)
	}
	if decoded.Extra["scope"] != "board" {
		t.Errorf("Extra[scope] = %q, expected %q", decoded.Extra["scope"], "board")
	}
}

func TestDecode_Expired(t *testing.T) {
	codec := testCodec()

	token, _ := codec.Encode(Claims{Subject: "USER_AB12CD34"}, TokenTypeAccess, -time.Minute)

	if _, ok := codec.Decode(token); ok {
		t.Error("Decode() should fail for an expired token")
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	codec := testCodec()
	other := NewTokenCodec(&config.JWTConfig{
		Secret:           "a-different-secret",
		AccessTTLMinutes: 30,
		RefreshTTLDays:   7,
	})

	token, _ := codec.NewAccessToken("USER_AB12CD34", "alice")

	if _, ok := other.Decode(token); ok {
		t.Error("Decode() should fail when signature does not match the secret")
	}
}

func TestDecode_Malformed(t *testing.T) {
	codec := testCodec()

	malformed := []string{
		"",
		"not-a-jwt",
		"a.b",
		"a.b.c",
		"eyJhbGciOiJIUzI1NiJ9.e30.invalid",
	}

	for _, token := range malformed {
		if _, ok := codec.Decode(token); ok {
			t.Errorf("Decode(%q) should fail", token)
		}
	}
}

func TestTokenTypes(t *testing.T) {
	codec := testCodec()

	access, _ := codec.NewAccessToken("USER_AB12CD34", "alice")
	refresh, _ := codec.NewRefreshToken("USER_AB12CD34")

	decodedAccess, ok := codec.Decode(access)
	if !ok || decodedAccess.Type != TokenTypeAccess {
		t.Errorf("access token type = %q, expected %q", decodedAccess.Type, TokenTypeAccess)
	}
	if decodedAccess.Username != "alice" {
		t.Errorf("access token should carry the username, got %q", decodedAccess.Username)
	}

	decodedRefresh, ok := codec.Decode(refresh)
	if !ok || decodedRefresh.Type != TokenTypeRefresh {
		t.Errorf("refresh token type = %q, expected %q", decodedRefresh.Type, TokenTypeRefresh)
	}
	if decodedRefresh.Username != "" {
		t.Errorf("refresh token should not carry a username, got %q", decodedRefresh.Username)
	}
}

func TestVerifySecretPostToken(t *testing.T) {
	codec := testCodec()

	token, err := codec.NewSecretPostToken(42, "USER_AB12CD34")
	if err != nil {
		t.Fatalf("NewSecretPostToken() error = %v", err)
	}

	tests := []struct {
		name     string
		token    string
		postID   uint
		userID   string
		expected bool
	}{
		{"matching post and user", token, 42, "USER_AB12CD34", true},
		{"different post", token, 43, "USER_AB12CD34", false},
		{"different user", token, 42, "USER_FF00FF00", false},
		{"garbage token", "garbage", 42, "USER_AB12CD34", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := codec.VerifySecretPostToken(tt.token, tt.postID, tt.userID)
			if result != tt.expected {
				t.Errorf("VerifySecretPostToken() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestVerifySecretPostToken_RejectsOtherTypes(t *testing.T) {
	codec := testCodec()

	access, _ := codec.NewAccessToken("USER_AB12CD34", "alice")

	if codec.VerifySecretPostToken(access, 42, "USER_AB12CD34") {
		t.Error("an access token must not pass as a secret-post capability")
	}
}

func TestVerifySecretPostToken_Expired(t *testing.T) {
	codec := testCodec()

	token, _ := codec.Encode(Claims{
		Subject: "USER_AB12CD34",
		Extra:   map[string]string{"post_id": "42"},
	}, TokenTypeSecretPost, -time.Minute)

	if codec.VerifySecretPostToken(token, 42, "USER_AB12CD34") {
		t.Error("an expired capability token must not verify")
	}
}
