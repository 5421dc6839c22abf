package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	APIKey        string
	DatabaseURL   string
	JWTSigningKey string

	ACABaseURL  string
	ACAUsername string
	ACAPassword string
	ACATimeout  time.Duration

	EventOpensAt  time.Time
	EventClosesAt time.Time

	SeedFile    string
	AuditBuffer int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:        envOr("VOTEAUTH_ADDR", ":8080"),
		APIKey:      os.Getenv("VOTEAUTH_API_KEY"),
		DatabaseURL: os.Getenv("VOTEAUTH_DATABASE_URL"),
		ACABaseURL:  os.Getenv("VOTEAUTH_ACA_URL"),
		ACAUsername: os.Getenv("VOTEAUTH_ACA_USERNAME"),
		ACAPassword: os.Getenv("VOTEAUTH_ACA_PASSWORD"),
		ACATimeout:  5 * time.Second,
		SeedFile:    os.Getenv("VOTEAUTH_SEED_FILE"),
		AuditBuffer: 256,
	}

	jwtSigningKey := os.Getenv("VOTEAUTH_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}
	cfg.JWTSigningKey = jwtSigningKey

	if raw := os.Getenv("VOTEAUTH_ACA_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Server{}, fmt.Errorf("parse VOTEAUTH_ACA_TIMEOUT: %w", err)
		}
		cfg.ACATimeout = d
	}

	if raw := os.Getenv("VOTEAUTH_AUDIT_BUFFER"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Server{}, fmt.Errorf("parse VOTEAUTH_AUDIT_BUFFER: %w", err)
		}
		cfg.AuditBuffer = n
	}

	var err error
	cfg.EventOpensAt, err = envTime("VOTEAUTH_EVENT_OPENS_AT")
	if err != nil {
		return Server{}, err
	}
	cfg.EventClosesAt, err = envTime("VOTEAUTH_EVENT_CLOSES_AT")
	if err != nil {
		return Server{}, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envTime reads an RFC 3339 timestamp; a missing variable yields the
// zero time, which callers treat as an unbounded window edge.
func envTime(key string) (time.Time, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", key, err)
	}
	return t, nil
}
