package config

import (
	"strings"
	"testing"
	"time"
)

func setBase(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("RESTAURANT_TZ", "")
}

func TestFromEnvDefaults(t *testing.T) {
	setBase(t)
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.AccessTTLMin != 60 {
		t.Errorf("AccessTTLMin = %d, want 60", cfg.AccessTTLMin)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.Location != time.Local {
		t.Errorf("Location = %v, want Local", cfg.Location)
	}
}

func TestFromEnvMySQLRequiresDB(t *testing.T) {
	setBase(t)
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "restaurant")
	_, err := FromEnv()
	if err == nil {
		t.Fatal("expected error for missing DB vars")
	}
	if !strings.Contains(err.Error(), "DB_USER") || !strings.Contains(err.Error(), "DB_PORT") {
		t.Errorf("error %q does not name the missing vars", err)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"unknown driver": {"STORE_DRIVER", "sqlite"},
		"bad ttl":        {"ACCESS_TOKEN_TTL_MIN", "soon"},
		"zero cost":      {"BCRYPT_COST", "0"},
		"bad tz":         {"RESTAURANT_TZ", "Mars/Olympus_Mons"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setBase(t)
			t.Setenv(kv[0], kv[1])
			if _, err := FromEnv(); err == nil {
				t.Fatalf("%s=%s: expected error", kv[0], kv[1])
			}
		})
	}
}

func TestFromEnvLocation(t *testing.T) {
	setBase(t)
	t.Setenv("RESTAURANT_TZ", "UTC")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Location.String() != "UTC" {
		t.Errorf("Location = %s, want UTC", cfg.Location)
	}
}

func TestAMQPURLPrecedence(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://b")
	if got := AMQPURL(); got != "amqp://b" {
		t.Errorf("AMQPURL = %q", got)
	}
	t.Setenv("RABBITMQ_URL", "amqp://a")
	if got := AMQPURL(); got != "amqp://a" {
		t.Errorf("AMQPURL = %q", got)
	}
}

func TestRateLimitNormalize(t *testing.T) {
	c := RateLimitConfig{Capacity: 0, RefillTokens: 0, RefillInterval: 0, TTL: 0}.normalize()
	if c.Capacity != 1 || c.RefillTokens != 1 || c.RefillInterval != time.Second {
		t.Fatalf("normalize = %+v", c)
	}
	if c.TTL != 5*time.Second {
		t.Errorf("TTL = %s, want 5s", c.TTL)
	}
	if got := c.PerSecond(); got != 1 {
		t.Errorf("PerSecond = %v, want 1", got)
	}
}

func TestParseMethods(t *testing.T) {
	m := parseMethods(" get, Head ,,")
	if !m["GET"] || !m["HEAD"] || len(m) != 2 {
		t.Errorf("parseMethods = %v", m)
	}
}
