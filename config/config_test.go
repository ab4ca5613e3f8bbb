package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "http://localhost:8080", c.BaseURL)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, 60, c.RateLimitPerMinute)
	assert.Equal(t, "static/uploads/logos", c.UploadDir)
	assert.Equal(t, 5, c.MaxUploadMB)
	assert.Equal(t, 30, c.TrendDays)
	assert.Equal(t, 24, c.UniqueWindowHours)
	assert.False(t, c.GeoLookupEnabled)
}

func TestLoadJSONConfigGroupedSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	raw := `{
		"app": {
			"AppPort": "9090",
			"JWTSecret": "file-secret",
			"BaseURL": "https://cards.example.com",
			"AdminEmails": ["ops@example.com"]
		},
		"analytics": {
			"TrendDays": 14,
			"UniqueWindowHours": 48,
			"GeoLookupEnabled": true
		},
		"smtp": {
			"SMTPHost": "mail.example.com",
			"SMTPFrom": "noreply@example.com"
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	var c AppConfig
	require.NoError(t, loadJSONConfig(path, &c))

	assert.Equal(t, "9090", c.AppPort)
	assert.Equal(t, "file-secret", c.JWTSecret)
	assert.Equal(t, "https://cards.example.com", c.BaseURL)
	assert.Equal(t, []string{"ops@example.com"}, c.AdminEmails)
	assert.Equal(t, 14, c.TrendDays)
	assert.Equal(t, 48, c.UniqueWindowHours)
	assert.True(t, c.GeoLookupEnabled)
	assert.Equal(t, "mail.example.com", c.SMTPHost)
}

func TestLoadJSONConfigMissingFile(t *testing.T) {
	var c AppConfig
	assert.NoError(t, loadJSONConfig(filepath.Join(t.TempDir(), "absent.json"), &c))
	assert.Equal(t, AppConfig{}, c)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BASE_URL", "https://env.example.com")
	t.Setenv("ANALYTICS_TREND_DAYS", "7")
	t.Setenv("ADMIN_EMAILS", "a@example.com, b@example.com")
	t.Setenv("GEO_LOOKUP_ENABLED", "true")

	c := AppConfig{BaseURL: "https://file.example.com", TrendDays: 30}
	applyEnvOverrides(&c)

	assert.Equal(t, "https://env.example.com", c.BaseURL)
	assert.Equal(t, 7, c.TrendDays)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, c.AdminEmails)
	assert.True(t, c.GeoLookupEnabled)
}
