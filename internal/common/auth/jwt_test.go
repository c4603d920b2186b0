package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("server-side-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestIntrospect(t *testing.T) {
	now := time.Now()
	in := &Claims{
		Name:               "Ravi",
		Phone:              "9876543210",
		ServiceCenterName:  "Speedy Motors",
		SubscriptionActive: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	// 客户端不知道签名密钥，只解负载
	claims, err := Introspect(signTestToken(t, in))
	if err != nil {
		t.Fatalf("Introspect: %v", err)
	}
	if claims.Name != "Ravi" || claims.ServiceCenterName != "Speedy Motors" {
		t.Fatalf("claims mismatch: %#v", claims)
	}
	if claims.Expired(now) {
		t.Fatalf("token should not be expired yet")
	}
	if !claims.Expired(now.Add(2 * time.Hour)) {
		t.Fatalf("token should be expired after exp")
	}
}

func TestIntrospectRejectsGarbage(t *testing.T) {
	if _, err := Introspect(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
	if _, err := Introspect("not-a-jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestAuthorizedGate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	sub := &Claims{SubscriptionActive: true}
	if !sub.Authorized(now) {
		t.Fatalf("active subscription should pass the gate")
	}

	trial := &Claims{TrialActive: true, TrialEndsAt: now.Add(24 * time.Hour).Unix()}
	if !trial.Authorized(now) {
		t.Fatalf("running trial should pass the gate")
	}

	expired := &Claims{TrialActive: true, TrialEndsAt: now.Add(-time.Hour).Unix()}
	if expired.Authorized(now) {
		t.Fatalf("expired trial must not pass the gate")
	}

	nothing := &Claims{}
	if nothing.Authorized(now) {
		t.Fatalf("no trial and no subscription must not pass the gate")
	}
}
