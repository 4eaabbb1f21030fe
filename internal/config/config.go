// Package config loads application configuration from environment
// variables. Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable.
type Config struct {
	Env               string // application environment (e.g. "dev", "prod")
	Port              string // HTTP port to listen on
	DBUser            string // database username
	DBPass            string // database password (optional)
	DBHost            string // database host address
	DBPort            string // database port number
	DBName            string // database name
	JWTSecret         string // secret used to verify JWT access tokens
	HoldGraceMinutes  int    // minutes a temporary hold stays payable
	TicketCacheTTLSec int    // lifetime of cached ticket documents in seconds
	SearchBaseURL     string // search collaborator base URL (empty disables indexing)
}

// Load reads configuration values from environment variables and
// returns a Config.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		JWTSecret:         must("JWT_SECRET"),
		HoldGraceMinutes:  mustInt("RESERVATION_EXPIRY_MINUTES"),
		TicketCacheTTLSec: envInt("TICKET_CACHE_TTL_SEC", 600),
		SearchBaseURL:     os.Getenv("SEARCH_BASE_URL"), // optional collaborator
	}
}

// HoldGrace returns the hold grace period as a duration.
func (c Config) HoldGrace() time.Duration {
	return time.Duration(c.HoldGraceMinutes) * time.Minute
}

// TicketCacheTTL returns the ticket document TTL as a duration.
func (c Config) TicketCacheTTL() time.Duration {
	return time.Duration(c.TicketCacheTTLSec) * time.Second
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}
