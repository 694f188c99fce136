package poptravel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "POP travel", cfg.SiteName)
	assert.Equal(t, "http://localhost:3000", cfg.SiteURL)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 5*time.Minute, cfg.ContentCacheTTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("POPTRAVEL_SITE_NAME", "Mon Blog")
	t.Setenv("POPTRAVEL_ADDR", ":8080")
	t.Setenv("POPTRAVEL_CACHE_TTL", "30s")
	t.Setenv("POPTRAVEL_DEV", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "Mon Blog", cfg.SiteName)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ContentCacheTTL)
	assert.True(t, cfg.Development)
}

func TestBackendSelection(t *testing.T) {
	tests := []struct {
		name      string
		dsn, key  string
		simulated bool
	}{
		{"both empty", "", "", true},
		{"placeholder dsn", "your-store-dsn-here", "real-key", true},
		{"placeholder key", "data/content.db", "https://your-project-id.example.co", true},
		{"fully configured", "data/content.db", "real-key", false},
		{"whitespace only", "   ", "real-key", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{StoreDSN: tt.dsn, StoreKey: tt.key}
			assert.Equal(t, tt.simulated, cfg.UseSimulatedStore())
		})
	}
}

func TestSignInSelection(t *testing.T) {
	unset := Config{}
	assert.True(t, unset.UseLocalSignIn())

	placeholder := Config{
		OAuthClientID:     "your-client-id",
		OAuthClientSecret: "s3cret",
		OAuthRedirectURL:  "https://example.com/admin/callback/",
	}
	assert.True(t, placeholder.UseLocalSignIn())

	configured := Config{
		OAuthClientID:     "client-id",
		OAuthClientSecret: "s3cret",
		OAuthRedirectURL:  "https://example.com/admin/callback/",
	}
	assert.False(t, configured.UseLocalSignIn())
}
