package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/utils"
)

const secret = "test-secret"

func token(t *testing.T, id string, role model.Role) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, id, string(role), 5)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + at.Token
}

// whoami echoes the identity the middleware chain left in the context.
func whoami(c echo.Context) error {
	return c.String(http.StatusOK, UserID(c)+"|"+string(ActorRole(c)))
}

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret))

	if rec := serve(e, http.MethodGet, "/me", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: code = %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/me", "Bearer garbage"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: code = %d", rec.Code)
	}
	rec := serve(e, http.MethodGet, "/me", token(t, "7", model.RoleEmployee))
	if rec.Code != http.StatusOK || rec.Body.String() != "7|employee" {
		t.Errorf("valid token: %d %q", rec.Code, rec.Body.String())
	}
}

func TestJWTOptional(t *testing.T) {
	e := echo.New()
	e.GET("/r", whoami, JWTOptional(secret))

	if rec := serve(e, http.MethodGet, "/r", ""); rec.Body.String() != "|anonymous" {
		t.Errorf("anonymous: %q", rec.Body.String())
	}
	if rec := serve(e, http.MethodGet, "/r", "Bearer garbage"); rec.Code != http.StatusOK || rec.Body.String() != "|anonymous" {
		t.Errorf("invalid token should pass as anonymous: %d %q", rec.Code, rec.Body.String())
	}
	if rec := serve(e, http.MethodGet, "/r", token(t, "9", model.RoleGuest)); rec.Body.String() != "9|guest" {
		t.Errorf("guest: %q", rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/staff", whoami, JWTAuth(secret), RequireRole(model.RoleEmployee))

	if rec := serve(e, http.MethodGet, "/staff", token(t, "1", model.RoleGuest)); rec.Code != http.StatusForbidden {
		t.Errorf("guest: code = %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/staff", token(t, "2", model.RoleEmployee)); rec.Code != http.StatusOK {
		t.Errorf("employee: code = %d", rec.Code)
	}
	// A token with a role outside guest/employee counts as anonymous.
	if rec := serve(e, http.MethodGet, "/staff", token(t, "3", "admin")); rec.Code != http.StatusForbidden {
		t.Errorf("unknown role: code = %d", rec.Code)
	}
}

func TestTokenBucketLocalFallback(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, nil, secret))
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		if rec := serve(e, http.MethodGet, "/ping", ""); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: code = %d", i, rec.Code)
		}
	}
	rec := serve(e, http.MethodGet, "/ping", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: code = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" || rec.Header().Get("Retry-After") == "0" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Limit") != "2" {
		t.Errorf("X-RateLimit-Limit = %q", rec.Header().Get("X-RateLimit-Limit"))
	}
}

// The limiter is mounted globally, ahead of the group's JWTAuth, and must
// still tell users apart.
func TestTokenBucketPerUserKeys(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "user",
		Prefix:         "rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, nil, secret))
	g := e.Group("/api", JWTAuth(secret))
	g.GET("/me", whoami)

	alice := token(t, "alice", model.RoleGuest)
	bob := token(t, "bob", model.RoleGuest)
	if rec := serve(e, http.MethodGet, "/api/me", alice); rec.Code != http.StatusOK {
		t.Fatalf("alice first: code = %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/api/me", bob); rec.Code != http.StatusOK {
		t.Fatalf("bob first: code = %d, want 200", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/api/me", alice); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("alice second: code = %d, want 429", rec.Code)
	}
}

func TestRateSubject(t *testing.T) {
	e := echo.New()
	cases := []struct {
		name, auth, secret, want string
	}{
		{"bearer", token(t, "42", model.RoleGuest), secret, "42"},
		{"no header", "", secret, "anon"},
		{"bad token", "Bearer garbage", secret, "anon"},
		{"wrong secret", token(t, "42", model.RoleGuest), "other", "anon"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.auth != "" {
			req.Header.Set("Authorization", tc.auth)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		if got := rateSubject(c, tc.secret); got != tc.want {
			t.Errorf("%s: rateSubject = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestTokenBucketDisabled(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: false, Capacity: 1}, nil, secret))
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	for i := 0; i < 5; i++ {
		if rec := serve(e, http.MethodGet, "/ping", ""); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d limited while disabled", i)
		}
	}
}

func TestResponseCacheWithoutRedis(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil)
	calls := 0
	e := echo.New()
	e.GET("/list", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "fresh")
	}, rc.Middleware())

	for i := 0; i < 2; i++ {
		rec := serve(e, http.MethodGet, "/list", "")
		if rec.Body.String() != "fresh" || rec.Header().Get("X-Cache") != "" {
			t.Fatalf("passthrough broken: %q %q", rec.Body.String(), rec.Header().Get("X-Cache"))
		}
	}
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
	rc.Purge(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	var nilCache *ResponseCache
	nilCache.Purge(httptest.NewRequest(http.MethodGet, "/", nil).Context())
}

func TestPayloadCodec(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[]`))
	if err != nil {
		t.Fatal(err)
	}
	status, got, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || string(body) != "[]" || got.Get("Content-Type") != "application/json" {
		t.Errorf("decode = %d %v %q %v", status, got, body, ok)
	}
	if _, _, _, ok := decodePayload([]byte{0, 0, 0}); ok {
		t.Error("short payload decoded")
	}
}

func TestReplayableHeader(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Content-Length", "2")
	h.Set("X-Cache", "MISS")
	h.Set("X-RateLimit-Limit", "5")
	h.Set("X-RateLimit-Remaining", "4")
	h.Set("X-RateLimit-Key", "rl:ip:1.2.3.4")
	h.Set("Retry-After", "3")

	got := replayable(h)
	for _, k := range []string{"Content-Length", "X-Cache", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Key", "Retry-After"} {
		if v := got.Get(k); v != "" {
			t.Errorf("%s kept as %q", k, v)
		}
	}
	if got.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", got.Get("Content-Type"))
	}
	got.Set("Content-Type", "text/plain")
	if h.Get("Content-Type") != "application/json" {
		t.Error("replayable aliased the source header")
	}
}

func TestCacheKeyGeneration(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Prefix: "p"}, nil)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/reservations?date=2026-10-19", nil), httptest.NewRecorder())
	c.SetPath("/reservations")

	k0, k1 := rc.key(c, 0), rc.key(c, 1)
	if k0 == k1 {
		t.Fatalf("generations share key %q", k0)
	}
	if k0 != rc.key(c, 0) {
		t.Error("key not stable within a generation")
	}
	for _, k := range []string{k0, k1} {
		if len(k) < 2 || k[:2] != "p:" {
			t.Errorf("key %q lacks prefix", k)
		}
	}
	if g := rc.genKey(); len(g) >= 2 && g[:2] == "p:" {
		t.Errorf("generation key %q falls inside the purge pattern", g)
	}
}
