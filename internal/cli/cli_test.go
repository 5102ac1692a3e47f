package cli

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/repository"
)

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"serve", "migrate", "consume", "user"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("command %s not registered: %v", name, err)
		}
	}
	if c, _, err := root.Find([]string{"user", "create"}); err != nil || c.Name() != "create" {
		t.Errorf("user create not registered: %v", err)
	}
}

func TestOpenStoresMemory(t *testing.T) {
	st, err := openStores(context.Background(), config.Config{StoreDriver: config.DriverMemory}, true)
	if err != nil {
		t.Fatal(err)
	}
	defer st.close()
	if st.reservations == nil || st.users == nil {
		t.Fatal("memory stores not wired")
	}
}

func TestOpenStoresUnknownDriver(t *testing.T) {
	_, err := openStores(context.Background(), config.Config{StoreDriver: "sqlite"}, false)
	if !errors.Is(err, repository.ErrUnknownDriver) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewEchoServesHealthWithCORS(t *testing.T) {
	cfg := config.Config{
		StoreDriver:  config.DriverMemory,
		JWTSecret:    "s",
		AccessTTLMin: 5,
		BcryptCost:   4,
		Location:     time.UTC,
		CORSOrigins:  []string{"https://example.com"},
	}
	st, _ := openStores(context.Background(), cfg, false)
	h := corsHandler(cfg, newEcho(cfg, st, nil))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("allow-origin = %q", got)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("request id not set")
	}
}
