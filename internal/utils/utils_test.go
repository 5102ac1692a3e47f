package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken("secret", "42", "employee", 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if d := time.Until(at.Exp); d <= 4*time.Minute || d > 5*time.Minute {
		t.Errorf("expiry %s out of range", d)
	}
	c, err := ParseAccessToken("secret", at.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if c.UserID != "42" || c.Role != "employee" {
		t.Errorf("claims = %+v", c)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, _ := NewAccessToken("secret", "42", "guest", 5)
	expired, _ := NewAccessToken("secret", "42", "guest", -1)
	noRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42", "role": "guest",
	}).SignedString([]byte("secret"))

	cases := map[string]struct{ secret, raw string }{
		"wrong secret": {"other", good.Token},
		"expired":      {"secret", expired.Token},
		"missing role": {"secret", noRole},
		"missing exp":  {"secret", noExp},
		"garbage":      {"secret", "not-a-jwt"},
	}
	for name, tc := range cases {
		if _, err := ParseAccessToken(tc.secret, tc.raw); err != ErrInvalidToken {
			t.Errorf("%s: err = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter22", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(h, "hunter22") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(h, "hunter23") {
		t.Error("wrong password accepted")
	}
}

func TestPasswordCostOutOfRange(t *testing.T) {
	h, err := HashPassword("pw", 99)
	if err != nil {
		t.Fatalf("out-of-range cost: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(h)); cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want default", cost)
	}
	if VerifyPassword("not-a-hash", "pw") {
		t.Error("malformed hash matched")
	}
}
