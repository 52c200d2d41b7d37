package config

import (
	"testing"
	"time"
)

func validBase() Config {
	return Config{
		App:  AppConfig{Env: "local", Port: 8080},
		Auth: AuthConfig{JWTSecret: "secret"},
		Dial: DialConfig{BridgeURL: "http://127.0.0.1:9000/dial"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_MinimalConfigIsValid(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected default token TTL, got %v", c.Auth.AccessTokenTTL)
	}
	if c.DB.Enabled() || c.Redis.Enabled() {
		t.Fatalf("db/redis must stay disabled when unset")
	}
}

func TestValidate_RequiresBridgeURL(t *testing.T) {
	c := validBase()
	c.Dial.BridgeURL = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error without DIAL_BRIDGE_URL")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	c.DB = DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "callwatch"}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "callwatch"
	c.Auth.JWTAudience = "callwatch-api"
	c.DB = DBConfig{Host: "db", Port: 5432, User: "postgres", Password: "x", Name: "callwatch"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_ProductionRequiresIssuerAndAudience(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without issuer/audience")
	}
}

func TestValidate_RedisChannelDefault(t *testing.T) {
	c := validBase()
	c.Redis = RedisConfig{Host: "localhost", Port: 6379}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Redis.Channel != "callwatch.events" {
		t.Fatalf("channel = %q", c.Redis.Channel)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DIAL_BRIDGE_URL", "http://127.0.0.1:9000/dial")
	t.Setenv("ENGINE_FEEDBACK_WINDOW", "45s")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPAddr() != ":8080" {
		t.Fatalf("addr = %q", c.HTTPAddr())
	}
	if c.Engine.FeedbackWindow != 45*time.Second {
		t.Fatalf("feedback window = %v", c.Engine.FeedbackWindow)
	}
}

func TestLoad_RejectsBadPort(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "eight thousand")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DIAL_BRIDGE_URL", "http://127.0.0.1:9000/dial")

	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
