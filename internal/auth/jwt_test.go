package auth

import (
	"strings"
	"testing"
	"time"
)

func TestIssueParseRoundTrip(t *testing.T) {
	sess, err := Issue("operator-7", RoleUser, "ai-attendance", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected a signed token")
	}
	if sess.Subject != "operator-7" {
		t.Errorf("expected subject operator-7, got %s", sess.Subject)
	}

	claims, err := Parse(sess.Token, "secret", "ai-attendance")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "operator-7" {
		t.Errorf("expected subject operator-7, got %s", claims.Subject)
	}
	if claims.Role != RoleUser {
		t.Errorf("expected role %s, got %s", RoleUser, claims.Role)
	}
}

func TestParseWrongKey(t *testing.T) {
	sess, err := Issue("operator-7", RoleUser, "ai-attendance", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(sess.Token, "other-secret", "ai-attendance"); err == nil {
		t.Fatal("expected error for wrong signing key")
	}
}

func TestParseIssuerMismatch(t *testing.T) {
	sess, err := Issue("operator-7", RoleUser, "other-issuer", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(sess.Token, "secret", "ai-attendance"); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestParseExpired(t *testing.T) {
	sess, err := Issue("operator-7", RoleUser, "ai-attendance", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(sess.Token, "secret", "ai-attendance"); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestBootstrapAnonymous(t *testing.T) {
	sess, err := Bootstrap("", "ai-attendance", "secret", time.Hour)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !strings.HasPrefix(sess.Subject, "anon-") {
		t.Errorf("expected anonymous subject, got %s", sess.Subject)
	}
	if sess.Role != RoleAnonymous {
		t.Errorf("expected role %s, got %s", RoleAnonymous, sess.Role)
	}

	claims, err := Parse(sess.Token, "secret", "ai-attendance")
	if err != nil {
		t.Fatalf("parse bootstrapped token: %v", err)
	}
	if claims.Subject != sess.Subject {
		t.Errorf("token subject %s does not match session %s", claims.Subject, sess.Subject)
	}
}

func TestBootstrapExchangesSuppliedToken(t *testing.T) {
	pre, err := Issue("badge-42", RoleUser, "ai-attendance", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue pre-supplied: %v", err)
	}

	sess, err := Bootstrap(pre.Token, "ai-attendance", "secret", time.Hour)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if sess.Subject != "badge-42" {
		t.Errorf("expected subject badge-42, got %s", sess.Subject)
	}
	if sess.Role != RoleUser {
		t.Errorf("expected role %s, got %s", RoleUser, sess.Role)
	}
}

func TestBootstrapRejectsBadToken(t *testing.T) {
	if _, err := Bootstrap("not-a-jwt", "ai-attendance", "secret", time.Hour); err == nil {
		t.Fatal("expected rejection of malformed token")
	}
}
