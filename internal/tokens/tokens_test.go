package tokens

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/fga-eps-mds/capju-session-go/internal/models"
)

func sampleUser() *models.User {
	return &models.User{
		CPF:       "12345678901",
		FullName:  "Ana Souza",
		Email:     "ana@example.com",
		IDRole:    2,
		SessionID: "sess-1",
		Role: models.Role{
			IDRole:         2,
			Name:           "Estagiário",
			AllowedActions: []string{"see-process", "edit-process"},
		},
	}
}

func TestGenerateAndVerify(t *testing.T) {
	secret := "test-secret-32-bytes-should-be-long-enough"
	raw, err := Generate(secret, sampleUser(), 2*time.Minute)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	claims, err := Verify(secret, raw)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.User.CPF != "12345678901" {
		t.Fatalf("unexpected cpf claim: %q", claims.User.CPF)
	}
	if claims.User.SessionID != "sess-1" {
		t.Fatalf("unexpected sessionId claim: %q", claims.User.SessionID)
	}
	if claims.Subject != claims.User.CPF {
		t.Fatalf("subject should mirror cpf, got %q", claims.Subject)
	}
}

func TestVerify_WrongSecretFails(t *testing.T) {
	raw, err := Generate("secret-one-32-bytes-xxxxxxxxxxxxxxxx", sampleUser(), 2*time.Minute)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := Verify("different-secret-xxxxxxxxxxxxxxxx", raw); err == nil {
		t.Fatalf("expected verification to fail with wrong secret")
	}
}

func TestVerify_Expired(t *testing.T) {
	secret := "expiry-test-secret-32-bytes-xxxxxxx"
	raw, err := Generate(secret, sampleUser(), -time.Minute)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := Verify(secret, raw); err == nil {
		t.Fatalf("expected verification to fail for expired token")
	}
}

func TestDecode_PayloadOnly(t *testing.T) {
	// Decode must work without the secret
	raw, err := Generate("some-unrelated-secret-32-bytes-xxxx", sampleUser(), time.Hour)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	claims, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if claims.User.Email != "ana@example.com" {
		t.Fatalf("unexpected email: %q", claims.User.Email)
	}
	if len(claims.User.Role.AllowedActions) != 2 {
		t.Fatalf("allowedActions not carried: %v", claims.User.Role.AllowedActions)
	}
	if claims.ExpiresAtTime().IsZero() {
		t.Fatalf("expected a non-zero expiration")
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{"", "not.a.jwt", "gibberish"} {
		if _, err := Decode(raw); err == nil {
			t.Fatalf("expected decode to fail for %q", raw)
		}
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	secret := "tamper-test-secret-32-bytes-xxxxxxx"
	raw, err := Generate(secret, sampleUser(), 5*time.Minute)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token parts")
	}
	payload, _ := base64.RawURLEncoding.DecodeString(parts[1])
	tamperedPayload := strings.Replace(string(payload), "12345678901", "99999999999", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(tamperedPayload))
	if _, err := Verify(secret, strings.Join(parts, ".")); err == nil {
		t.Fatalf("expected signature verification to fail for tampered token")
	}
}
