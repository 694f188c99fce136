// Package poptravel is a travel-blog publishing engine built with Go, Echo,
// and templ. It provides the content admin panel (records with per-category
// metadata, draft/publish workflow), the public section pages, a local image
// library, RSS, and a sitemap out of the box.
//
// Users provide their own templ components via the ViewFuncs struct, and
// poptravel handles all the handler logic, middleware, and persistence.
package poptravel

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/poptravel/poptravel/views"
)

// Section is one dynamic block of the public site: the published records of
// a single category, newest-first, possibly capped.
type Section struct {
	Category Category
	Title    string
	Records  []Content
}

// ViewFuncs holds user-provided templ components that the engine calls when
// rendering pages. This is the inversion-of-control mechanism that lets
// users own and customize all templates.
type ViewFuncs struct {
	Home                func(sections []Section, settings views.SiteSettings, siteURL string) templ.Component
	Section             func(section Section, settings views.SiteSettings, siteURL string) templ.Component
	SectionPartial      func(section Section, settings views.SiteSettings) templ.Component
	AdminSignIn         func(signInURL string, showError bool, csrfToken string) templ.Component
	AdminDashboard      func(records []Content, principal Principal, message string, csrfToken string) templ.Component
	AdminForm           func(form ContentForm, csrfToken string) templ.Component
	AdminMetadataFields func(category Category, meta Metadata) templ.Component
	AdminImages         func(images []StoredImage, totalSize string, message string, csrfToken string) templ.Component
	NotFound            func() templ.Component
	ServerError         func() templ.Component
}

// App is the central poptravel application. It wires together the store,
// cache, image library, auth, handlers, middleware, and user-provided
// templates.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  ContentStore
	Cache  *ContentCache
	Images *ImageCache
	Auth   Authenticator
	Views  ViewFuncs
	Log    *zap.SugaredLogger

	signInLimiter *SignInLimiter
	customRoutes  []func(*App)
	staticDir     string
	settings      views.SiteSettings
}

// New creates a new poptravel App with the given configuration and view
// functions.
func New(cfg Config, vf ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     vf,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the store, cache, middleware, and routes, then starts
// the server.
func (a *App) Start() error {
	if err := a.bootstrap(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// bootstrap wires every component without binding the listen socket, so
// tests can exercise a fully assembled App in-process.
func (a *App) bootstrap() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("poptravel: SessionSecret is required")
	}

	if a.Log == nil {
		log, err := newLogger(a.Config.Development)
		if err != nil {
			return fmt.Errorf("poptravel: init logger: %w", err)
		}
		a.Log = log
	}

	if a.Store == nil {
		if a.Config.UseSimulatedStore() {
			a.Log.Infow("content store not configured, using simulated backend")
			a.Store = NewMemStore(SeedContent()...)
		} else {
			store, err := NewStore(a.Config.StoreDSN)
			if err != nil {
				return fmt.Errorf("poptravel: init store: %w", err)
			}
			a.Store = store
		}
	}

	if a.Auth == nil {
		if a.Config.UseLocalSignIn() {
			a.Log.Infow("oauth not configured, using local sign-in")
			a.Auth = NewLocalAuthenticator(a.Config.AuthorEmail, a.Config.AuthorName)
		} else {
			a.Auth = NewGoogleAuthenticator(a.Config.OAuthClientID, a.Config.OAuthClientSecret, a.Config.OAuthRedirectURL)
		}
	}

	a.Cache = NewContentCache(a.Store, a.Config.ContentCacheTTL)
	if a.Images == nil {
		a.Images = NewImageCache(filepath.Join(a.Config.DataDir, "images.json"))
	}
	a.signInLimiter = NewSignInLimiter(5, time.Minute)

	a.settings = views.DefaultSiteSettings()
	a.settings.SiteName = a.Config.SiteName
	a.settings.ContactEmail = a.Config.AuthorEmail

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// User's static assets (uploads land under <staticDir>/uploads).
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/section/:category/", a.handleSection)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.GET("/admin/login/", a.handleSignIn)
	e.GET("/admin/callback/", a.handleSignInCallback)
	e.POST("/admin/logout/", handleSignOut)
	e.GET("/admin/content/new/", a.handleAdminNew)
	e.GET("/admin/content/metadata/", a.handleMetadataFields)
	e.GET("/admin/content/:id/", a.handleAdminEdit)
	e.POST("/admin/content/save/", a.handleAdminSave)
	e.POST("/admin/content/:id/status/", a.handleAdminToggleStatus)
	e.DELETE("/admin/content/:id/", a.handleAdminDelete)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:id/", a.handleImageDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
