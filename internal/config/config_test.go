package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("ALLOW_ORIGIN", "")

	cfg := Load()
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, defaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "Trizen Ventures", cfg.CompanyName)
	assert.Equal(t, []string{defaultAllowOrigin}, cfg.AllowOrigin)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_BASE_URL", "http://localhost:5000/")
	t.Setenv("ALLOW_ORIGIN", "http://a.test, ,http://b.test")
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("SEND_WELCOME_EMAIL", "true")

	cfg := Load()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowOrigin)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.True(t, cfg.SendWelcomeEmail)
}
