package poptravel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poptravel/poptravel/views"
)

// markerViews render one-line markers instead of real templates, so handler
// tests can assert on which view was chosen and with what data.
func markerViews() ViewFuncs {
	write := func(format string, args ...any) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w, format, args...)
			return err
		})
	}
	return ViewFuncs{
		Home: func(sections []Section, settings views.SiteSettings, siteURL string) templ.Component {
			return write("home sections=%d", len(sections))
		},
		Section: func(section Section, settings views.SiteSettings, siteURL string) templ.Component {
			return write("section %s records=%d", section.Category, len(section.Records))
		},
		SectionPartial: func(section Section, settings views.SiteSettings) templ.Component {
			return write("partial %s records=%d", section.Category, len(section.Records))
		},
		AdminSignIn: func(signInURL string, showError bool, csrfToken string) templ.Component {
			return write("signin error=%v", showError)
		},
		AdminDashboard: func(records []Content, principal Principal, message string, csrfToken string) templ.Component {
			return write("dashboard msg=%s records=%d", message, len(records))
		},
		AdminForm: func(form ContentForm, csrfToken string) templ.Component {
			return write("form new=%v category=%s", form.IsNew, form.Category)
		},
		AdminMetadataFields: func(category Category, meta Metadata) templ.Component {
			return write("fields %s", category)
		},
		AdminImages: func(images []StoredImage, totalSize string, message string, csrfToken string) templ.Component {
			return write("images n=%d total=%s", len(images), totalSize)
		},
		NotFound:    func() templ.Component { return write("not found") },
		ServerError: func() templ.Component { return write("server error") },
	}
}

type testApp struct {
	app    *App
	store  *MemStore
	server *httptest.Server
	client *http.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := NewMemStore(SeedContent()...)
	cfg := Config{
		SessionSecret: "test-secret",
		DataDir:       t.TempDir(),
	}
	app := New(cfg, markerViews(), WithStore(store), WithStaticDir(t.TempDir()))
	require.NoError(t, app.bootstrap())

	server := httptest.NewServer(app.Echo)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		app:    app,
		store:  store,
		server: server,
		client: &http.Client{Jar: jar},
	}
}

func (ta *testApp) get(t *testing.T, path string, headers ...string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ta.server.URL+path, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := ta.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// csrfToken returns the token the CSRF cookie currently carries for the
// test server.
func (ta *testApp) csrfToken(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(ta.server.URL)
	require.NoError(t, err)
	for _, c := range ta.client.Jar.Cookies(u) {
		if c.Name == "_csrf" {
			return c.Value
		}
	}
	t.Fatal("no csrf cookie set; perform a GET first")
	return ""
}

func (ta *testApp) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	form.Set("_csrf", ta.csrfToken(t))
	resp, err := ta.client.PostForm(ta.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// signIn walks the whole local sign-in flow: login redirect, callback,
// landing on the dashboard.
func (ta *testApp) signIn(t *testing.T) {
	t.Helper()
	resp, body := ta.get(t, "/admin/login/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "dashboard", "sign-in should land on the dashboard")
}

func TestHomePage(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "home sections=")
}

func TestSectionPage(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.get(t, "/section/recit/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "section recit records=1", body)
}

func TestSectionPartialForHTMX(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.get(t, "/section/concert/", "HX-Request", "true")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "partial concert records=1", body)
}

func TestUnknownSectionIs404(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.get(t, "/section/musique/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "not found")
}

func TestAdminRequiresSignIn(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.get(t, "/admin/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "signin")

	// Protected pages bounce anonymous visitors back to /admin/.
	resp, body = ta.get(t, "/admin/content/new/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "signin")
}

func TestSignInFlow(t *testing.T) {
	ta := newTestApp(t)
	ta.signIn(t)

	resp, body := ta.get(t, "/admin/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "dashboard")
	assert.Contains(t, body, "records=2", "seed records appear on the dashboard")
}

func TestCallbackWithBadStateFails(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.get(t, "/admin/callback/?code=local&state=forged")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "signin error=true")
}

func TestAdminSaveCreatesRecord(t *testing.T) {
	ta := newTestApp(t)
	ta.signIn(t)

	resp, body := ta.postForm(t, "/admin/content/save/", url.Values{
		"title":            {"Nouveau guide Japon"},
		"body":             {"Deux semaines entre Tokyo et Kyoto."},
		"category":         {"guide"},
		"status":           {"published"},
		"tags":             {"japon, asie"},
		"meta_duration":    {"2 semaines"},
		"meta_difficulty":  {"Modéré"},
		"meta_destination": {"Japon"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "msg=saved")

	records, err := ta.store.List(ListOptions{Category: CategoryGuide})
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	assert.Equal(t, "Nouveau guide Japon", got.Title)
	assert.Equal(t, StatusPublished, got.Status)
	assert.Equal(t, []string{"japon", "asie"}, got.Tags)
	assert.Equal(t, localPrincipalID, got.AuthorID)
	meta, ok := got.Meta.(GuideMeta)
	require.True(t, ok)
	assert.Equal(t, "Modéré", meta.Difficulty)
}

func TestAdminSaveRequiresTitleAndBody(t *testing.T) {
	ta := newTestApp(t)
	ta.signIn(t)

	resp, body := ta.postForm(t, "/admin/content/save/", url.Values{
		"title":    {"   "},
		"body":     {"x"},
		"category": {"guide"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Titre et contenu sont requis.")
}

func TestAdminToggleStatus(t *testing.T) {
	ta := newTestApp(t)
	ta.signIn(t)

	resp, body := ta.postForm(t, "/admin/content/seed-recit-1/status/", url.Values{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "msg=updated")

	got, err := ta.store.Get("seed-recit-1")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, got.Status)

	// Unpublished records disappear from the public section immediately.
	_, sectionBody := ta.get(t, "/section/recit/")
	assert.Equal(t, "section recit records=0", sectionBody)
}

func TestAdminDelete(t *testing.T) {
	ta := newTestApp(t)
	ta.signIn(t)

	req, err := http.NewRequest(http.MethodDelete, ta.server.URL+"/admin/content/seed-concert-1/", nil)
	require.NoError(t, err)
	req.Header.Set("X-CSRF-Token", ta.csrfToken(t))
	resp, err := ta.client.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "msg=deleted")

	_, err = ta.store.Get("seed-concert-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostWithoutCsrfIsForbidden(t *testing.T) {
	ta := newTestApp(t)
	ta.signIn(t)

	resp, err := ta.client.PostForm(ta.server.URL+"/admin/content/save/", url.Values{
		"title": {"x"}, "body": {"y"}, "category": {"guide"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMetadataFieldsEndpoint(t *testing.T) {
	ta := newTestApp(t)
	ta.signIn(t)

	resp, body := ta.get(t, "/admin/content/metadata/?category=venue")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fields venue", body)

	resp, _ = ta.get(t, "/admin/content/metadata/?category=musique")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeedAndSitemap(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.get(t, "/feed.xml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<rss")
	assert.Contains(t, body, "Mon premier récit de voyage")

	resp, body = ta.get(t, "/sitemap.xml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "urlset")
	assert.Contains(t, body, "/section/recit/")
}

func TestImageGalleryPage(t *testing.T) {
	ta := newTestApp(t)
	ta.signIn(t)

	resp, body := ta.get(t, "/admin/images/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "images n=0 total=0 Bytes", body)
}

func TestImageUpload(t *testing.T) {
	ta := newTestApp(t)
	ta.signIn(t)

	var buf strings.Builder
	// Multipart body is built by hand so the Content-Type part header is
	// under the test's control.
	boundary := "testboundary"
	png := encodeTestPNG(t, 20, 20)
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString("Content-Disposition: form-data; name=\"image\"; filename=\"vue.png\"\r\n")
	buf.WriteString("Content-Type: image/png\r\n\r\n")
	buf.Write(png.Bytes())
	buf.WriteString("\r\n--" + boundary + "--\r\n")

	req, err := http.NewRequest(http.MethodPost, ta.server.URL+"/admin/images/upload/", strings.NewReader(buf.String()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	req.Header.Set("X-CSRF-Token", ta.csrfToken(t))
	resp, err := ta.client.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "images n=1")

	images, err := ta.app.Images.List()
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "vue.png", images[0].Name)
	assert.Equal(t, "/public/uploads/vue.jpg", images[0].URL)
}

func TestImageUploadRejectsNonImages(t *testing.T) {
	ta := newTestApp(t)
	ta.signIn(t)

	var buf strings.Builder
	boundary := "testboundary"
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString("Content-Disposition: form-data; name=\"image\"; filename=\"notes.txt\"\r\n")
	buf.WriteString("Content-Type: text/plain\r\n\r\n")
	buf.WriteString("just text")
	buf.WriteString("\r\n--" + boundary + "--\r\n")

	req, err := http.NewRequest(http.MethodPost, ta.server.URL+"/admin/images/upload/", strings.NewReader(buf.String()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	req.Header.Set("X-CSRF-Token", ta.csrfToken(t))
	resp, err := ta.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
