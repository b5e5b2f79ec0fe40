package identity

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssueVerify(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	iss, err := New(testSecret, "launchpad", WithClock(fixedClock(now)), WithTTL(time.Hour))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tok, err := iss.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok.Owner == "" || !tok.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("token = %+v", tok)
	}

	owner, err := iss.Verify(tok.Value)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if owner != tok.Owner {
		t.Errorf("owner = %q, want %q", owner, tok.Owner)
	}

	again, err := iss.IssueFor(owner)
	if err != nil {
		t.Fatalf("IssueFor: %v", err)
	}
	if again.Owner != owner || again.Value == tok.Value {
		t.Errorf("reissue = %+v", again)
	}
}

func TestVerifyRejects(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	iss, _ := New(testSecret, "launchpad", WithClock(fixedClock(now)), WithTTL(time.Hour))
	tok, _ := iss.Issue()

	later, _ := New(testSecret, "launchpad", WithClock(fixedClock(now.Add(2*time.Hour))))
	otherKey, _ := New(strings.Repeat("x", 32), "launchpad", WithClock(fixedClock(now)))
	otherIssuer, _ := New(testSecret, "someone-else", WithClock(fixedClock(now)))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    "launchpad",
		Subject:   tok.Owner,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := []struct {
		name  string
		iss   *Issuer
		token string
	}{
		{"empty", iss, ""},
		{"garbage", iss, "not.a.token"},
		{"expired", later, tok.Value},
		{"wrong key", otherKey, tok.Value},
		{"wrong issuer", otherIssuer, tok.Value},
		{"alg none", iss, none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.iss.Verify(tt.token)
			if !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("err = %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestVerifyRejectsNonUUIDSubject(t *testing.T) {
	iss, _ := New(testSecret, "launchpad")
	tok, err := iss.IssueFor("not-a-uuid")
	if err != nil {
		t.Fatalf("IssueFor: %v", err)
	}
	if _, err := iss.Verify(tok.Value); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewRejectsShortSecret(t *testing.T) {
	if _, err := New("short", "launchpad"); err == nil {
		t.Fatal("expected error")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := BearerToken(tt.header); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
