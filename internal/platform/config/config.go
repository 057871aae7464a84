package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultAddr     = ":8080"
	DefaultTokenTTL = 8 * time.Hour

	// DefaultBcryptCost keeps a single verification in the tens of milliseconds
	// on commodity hardware. PINs are low entropy, so the work factor is the
	// primary defense against offline brute force.
	DefaultBcryptCost = 12
)

// Server captures process-level configuration for the gateway.
// It is built once at startup and passed into constructors explicitly so
// business logic never reads the environment ad hoc.
type Server struct {
	Addr        string
	Environment string

	// SigningKey is the symmetric JWT key. It has no default: the process
	// refuses to start without PIN_GATEWAY_SIGNING_KEY.
	SigningKey string
	Issuer     string
	TokenTTL   time.Duration

	BcryptCost      int
	HashConcurrency int

	// DatabaseURL selects the postgres stores when set; empty means in-memory.
	DatabaseURL string

	// Migrate applies embedded schema migrations on startup.
	Migrate bool
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	signingKey := os.Getenv("PIN_GATEWAY_SIGNING_KEY")
	if signingKey == "" {
		return Server{}, fmt.Errorf("PIN_GATEWAY_SIGNING_KEY must be set")
	}

	cfg := Server{
		Addr:            DefaultAddr,
		Environment:     os.Getenv("PIN_GATEWAY_ENV"),
		SigningKey:      signingKey,
		Issuer:          "pinauth",
		TokenTTL:        DefaultTokenTTL,
		BcryptCost:      DefaultBcryptCost,
		HashConcurrency: runtime.GOMAXPROCS(0),
		DatabaseURL:     os.Getenv("PIN_GATEWAY_DATABASE_URL"),
		Migrate:         os.Getenv("PIN_GATEWAY_MIGRATE") == "true",
	}
	if cfg.Environment == "" {
		cfg.Environment = "dev"
	}

	if addr := os.Getenv("PIN_GATEWAY_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if issuer := os.Getenv("PIN_GATEWAY_ISSUER"); issuer != "" {
		cfg.Issuer = issuer
	}
	if ttlStr := os.Getenv("PIN_GATEWAY_TOKEN_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil || ttl <= 0 {
			return Server{}, fmt.Errorf("invalid PIN_GATEWAY_TOKEN_TTL %q", ttlStr)
		}
		cfg.TokenTTL = ttl
	}
	if costStr := os.Getenv("PIN_GATEWAY_BCRYPT_COST"); costStr != "" {
		cost, err := strconv.Atoi(costStr)
		if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return Server{}, fmt.Errorf("invalid PIN_GATEWAY_BCRYPT_COST %q", costStr)
		}
		cfg.BcryptCost = cost
	}
	if concStr := os.Getenv("PIN_GATEWAY_HASH_CONCURRENCY"); concStr != "" {
		conc, err := strconv.Atoi(concStr)
		if err != nil || conc < 1 {
			return Server{}, fmt.Errorf("invalid PIN_GATEWAY_HASH_CONCURRENCY %q", concStr)
		}
		cfg.HashConcurrency = conc
	}

	return cfg, nil
}
