package poptravel

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for a poptravel site.
type Config struct {
	SiteName    string `env:"POPTRAVEL_SITE_NAME"`    // Site name (default "POP travel")
	SiteURL     string `env:"POPTRAVEL_SITE_URL"`     // Canonical URL (default "http://localhost:3000")
	Description string `env:"POPTRAVEL_DESCRIPTION"`  // Site description for RSS and meta tags
	AuthorName  string `env:"POPTRAVEL_AUTHOR_NAME"`  // Author name for JSON-LD and the local principal
	AuthorEmail string `env:"POPTRAVEL_AUTHOR_EMAIL"` // Contact address, also the local principal's email

	Addr    string `env:"POPTRAVEL_ADDR"`     // Listen address (default ":3000")
	DataDir string `env:"POPTRAVEL_DATA_DIR"` // Directory for the image library index (default "data")

	// StoreDSN and StoreKey select the backend: the real SQLite store is
	// used only when both are set and neither carries a placeholder value;
	// otherwise the in-memory simulated store serves the same contract.
	StoreDSN string `env:"POPTRAVEL_STORE_DSN"`
	StoreKey string `env:"POPTRAVEL_STORE_KEY"`

	SessionSecret string `env:"POPTRAVEL_SESSION_SECRET"` // Required: session encryption secret
	CookieSecure  bool   `env:"POPTRAVEL_COOKIE_SECURE"`  // Set true for HTTPS

	// OAuth sign-in; when unset the simulated single-admin sign-in is used.
	OAuthClientID     string `env:"POPTRAVEL_OAUTH_CLIENT_ID"`
	OAuthClientSecret string `env:"POPTRAVEL_OAUTH_CLIENT_SECRET"`
	OAuthRedirectURL  string `env:"POPTRAVEL_OAUTH_REDIRECT_URL"`

	ContentCacheTTL time.Duration `env:"POPTRAVEL_CACHE_TTL"` // Published-content cache TTL (default 5min)
	Development     bool          `env:"POPTRAVEL_DEV"`       // Human-readable logs
}

// LoadConfig reads configuration from environment variables and applies
// defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.SiteName == "" {
		c.SiteName = "POP travel"
	}
	if c.SiteURL == "" {
		c.SiteURL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.AuthorName == "" {
		c.AuthorName = "POP"
	}
	if c.AuthorEmail == "" {
		c.AuthorEmail = "pop@travel.example"
	}
	if c.ContentCacheTTL == 0 {
		c.ContentCacheTTL = 5 * time.Minute
	}
}

// UseSimulatedStore reports whether the in-memory backend should stand in
// for the real one. Fresh checkouts ship placeholder values in .env.example,
// so "looks like a placeholder" counts as unconfigured.
func (c Config) UseSimulatedStore() bool {
	return isPlaceholder(c.StoreDSN) || isPlaceholder(c.StoreKey)
}

// UseLocalSignIn reports whether the simulated authenticator should replace
// the OAuth flow.
func (c Config) UseLocalSignIn() bool {
	return isPlaceholder(c.OAuthClientID) || isPlaceholder(c.OAuthClientSecret) || isPlaceholder(c.OAuthRedirectURL)
}

func isPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.HasPrefix(v, "your-") || strings.Contains(v, "your-project-id")
}

// Option configures additional App behavior.
type Option func(*App)

// WithStore injects a content store, overriding the config-driven backend
// selection. Tests use this to run the whole app against a MemStore.
func WithStore(s ContentStore) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithAuthenticator overrides the config-driven sign-in flow.
func WithAuthenticator(auth Authenticator) Option {
	return func(a *App) {
		a.Auth = auth
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default
// "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
