// Package config reads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	// Load .env file to environments
	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultAPIBaseURL   = "https://trizencareersbackend.llp.trizenventures.com"
	defaultEmailURL     = "https://trizensupportemailservice.llp.trizenventures.com"
	defaultEmailFrom    = "support@trizenventures.com"
	defaultEmailName    = "Trizen Ventures Careers"
	defaultCompanyName  = "Trizen Ventures"
	defaultSQLitePath   = "careers.sqlite"
	defaultAllowOrigin  = "http://localhost:5173"
	defaultPort         = 8080
	defaultHTTPTimeout  = 15
	defaultEmailTimeout = 10
)

// Storage drivers accepted by STORAGE_DRIVER
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds every tunable of the careers service.
type Config struct {
	Port int

	APIBaseURL  string
	HTTPTimeout time.Duration

	EmailServiceURL  string
	EmailAPIKey      string
	EmailFrom        string
	EmailFromName    string
	EmailTimeout     time.Duration
	SendWelcomeEmail bool

	CompanyName string
	SecretKey   string
	AllowOrigin []string

	StorageDriver string
	SQLitePath    string
}

// Load builds a Config from environment variables, applying defaults for anything unset.
func Load() Config {
	return Config{
		Port:             envInt("PORT", defaultPort),
		APIBaseURL:       strings.TrimRight(envString("API_BASE_URL", defaultAPIBaseURL), "/"),
		HTTPTimeout:      time.Duration(envInt("HTTP_TIMEOUT_SECONDS", defaultHTTPTimeout)) * time.Second,
		EmailServiceURL:  strings.TrimRight(envString("EMAIL_SERVICE_URL", defaultEmailURL), "/"),
		EmailAPIKey:      os.Getenv("EMAIL_SERVICE_API_KEY"),
		EmailFrom:        envString("EMAIL_FROM", defaultEmailFrom),
		EmailFromName:    envString("EMAIL_FROM_NAME", defaultEmailName),
		EmailTimeout:     time.Duration(envInt("EMAIL_TIMEOUT_SECONDS", defaultEmailTimeout)) * time.Second,
		SendWelcomeEmail: envBool("SEND_WELCOME_EMAIL"),
		CompanyName:      envString("COMPANY_NAME", defaultCompanyName),
		SecretKey:        os.Getenv("SECRET_KEY"),
		AllowOrigin:      splitList(envString("ALLOW_ORIGIN", defaultAllowOrigin)),
		StorageDriver:    strings.ToLower(envString("STORAGE_DRIVER", StorageSQLite)),
		SQLitePath:       envString("SQLITE_PATH", defaultSQLitePath),
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
