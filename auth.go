package poptravel

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Principal is the authenticated identity permitted to perform mutating
// operations. Its ID becomes the author_id of every record it saves.
type Principal struct {
	ID    string
	Email string
	Name  string
}

// Authenticator abstracts the sign-in flow so the OAuth provider and the
// local stand-in are interchangeable behind the same callback handler.
type Authenticator interface {
	// SignInURL returns the URL the browser is redirected to for sign-in.
	SignInURL(state string) string
	// Exchange turns the callback code into an authenticated Principal.
	Exchange(ctx context.Context, code string) (Principal, error)
}

// OAuthAuthenticator signs the admin in against an external identity
// provider via the standard authorization-code flow.
type OAuthAuthenticator struct {
	cfg         *oauth2.Config
	userInfoURL string
}

// NewGoogleAuthenticator builds the Google variant.
func NewGoogleAuthenticator(clientID, clientSecret, redirectURL string) *OAuthAuthenticator {
	return &OAuthAuthenticator{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
	}
}

func (a *OAuthAuthenticator) SignInURL(state string) string {
	return a.cfg.AuthCodeURL(state)
}

func (a *OAuthAuthenticator) Exchange(ctx context.Context, code string) (Principal, error) {
	token, err := a.cfg.Exchange(ctx, code)
	if err != nil {
		return Principal{}, fmt.Errorf("exchange code: %w", err)
	}
	resp, err := a.cfg.Client(ctx, token).Get(a.userInfoURL)
	if err != nil {
		return Principal{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Principal{}, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}
	var info struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Principal{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Sub == "" {
		return Principal{}, fmt.Errorf("userinfo without subject")
	}
	return Principal{ID: info.Sub, Email: info.Email, Name: info.Name}, nil
}

const (
	localPrincipalID  = "local-admin"
	localAuthCode     = "local"
	localCallbackPath = "/admin/callback/"
)

// LocalAuthenticator is the simulated identity provider used when no OAuth
// client is configured. SignInURL short-circuits straight to the callback,
// and Exchange always yields the same single-admin principal.
type LocalAuthenticator struct {
	Principal Principal
}

// NewLocalAuthenticator builds the simulated authenticator with the site
// author's identity.
func NewLocalAuthenticator(email, name string) *LocalAuthenticator {
	return &LocalAuthenticator{Principal: Principal{ID: localPrincipalID, Email: email, Name: name}}
}

func (a *LocalAuthenticator) SignInURL(state string) string {
	return localCallbackPath + "?code=" + localAuthCode + "&state=" + url.QueryEscape(state)
}

func (a *LocalAuthenticator) Exchange(_ context.Context, code string) (Principal, error) {
	if code != localAuthCode {
		return Principal{}, fmt.Errorf("local sign-in: unexpected code %q", code)
	}
	return a.Principal, nil
}

const sessionName = "admin_session"

// CurrentPrincipal returns the signed-in principal from the session, if any.
func CurrentPrincipal(c echo.Context) (Principal, bool) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return Principal{}, false
	}
	id, ok := sess.Values["principal_id"].(string)
	if !ok || id == "" {
		return Principal{}, false
	}
	email, _ := sess.Values["principal_email"].(string)
	name, _ := sess.Values["principal_name"].(string)
	return Principal{ID: id, Email: email, Name: name}, true
}

func setSessionPrincipal(c echo.Context, p Principal) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["principal_id"] = p.ID
	sess.Values["principal_email"] = p.Email
	sess.Values["principal_name"] = p.Name
	return sess.Save(c.Request(), c.Response())
}

func clearSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// The OAuth state parameter lives in the session between the redirect out
// and the callback in.
func setOAuthState(c echo.Context) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	state := hex.EncodeToString(buf)
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return "", err
	}
	sess.Values["oauth_state"] = state
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return "", err
	}
	return state, nil
}

func consumeOAuthState(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	state, _ := sess.Values["oauth_state"].(string)
	delete(sess.Values, "oauth_state")
	_ = sess.Save(c.Request(), c.Response())
	return state
}
