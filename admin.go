package poptravel

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// ContentForm is the view model of the admin editing form, covering both
// the new-record and existing-record states.
type ContentForm struct {
	ID       string
	Title    string
	Body     string
	Category Category
	Status   Status
	ImageURL string
	Excerpt  string
	TagsText string
	Meta     Metadata
	IsNew    bool
}

func (a *App) handleAdmin(c echo.Context) error {
	if _, ok := CurrentPrincipal(c); !ok {
		return Render(c, a.Views.AdminSignIn("/admin/login/", c.QueryParam("error") != "", CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleSignIn(c echo.Context) error {
	if !a.signInLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many sign-in attempts. Try again later.")
	}
	state, err := setOAuthState(c)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, a.Auth.SignInURL(state))
}

func (a *App) handleSignInCallback(c echo.Context) error {
	ip := c.RealIP()
	expected := consumeOAuthState(c)
	if expected == "" || c.QueryParam("state") != expected {
		a.signInLimiter.Record(ip)
		return c.Redirect(http.StatusSeeOther, "/admin/?error=1")
	}
	principal, err := a.Auth.Exchange(c.Request().Context(), c.QueryParam("code"))
	if err != nil {
		a.signInLimiter.Record(ip)
		a.Log.Errorw("sign-in", "err", err)
		return c.Redirect(http.StatusSeeOther, "/admin/?error=1")
	}
	if err := setSessionPrincipal(c, principal); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func handleSignOut(c echo.Context) error {
	if err := clearSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminNew(c echo.Context) error {
	if _, ok := CurrentPrincipal(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	form := ContentForm{
		Category: CategoryStory,
		Status:   StatusDraft,
		Meta:     NewMetadata(CategoryStory),
		IsNew:    true,
	}
	return Render(c, a.Views.AdminForm(form, CsrfToken(c)))
}

func (a *App) handleAdminEdit(c echo.Context) error {
	if _, ok := CurrentPrincipal(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	record, err := a.Store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	form := ContentForm{
		ID:       record.ID,
		Title:    record.Title,
		Body:     record.Body,
		Category: record.Category,
		Status:   record.Status,
		ImageURL: record.ImageURL,
		Excerpt:  record.Excerpt,
		TagsText: JoinTags(record.Tags),
		Meta:     record.Meta,
	}
	return Render(c, a.Views.AdminForm(form, CsrfToken(c)))
}

// handleMetadataFields re-renders the category-specific field block when the
// form's category select changes. The fresh zero variant is intentional:
// values typed under the previous category are discarded rather than carried
// along as ghost data.
func (a *App) handleMetadataFields(c echo.Context) error {
	if _, ok := CurrentPrincipal(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	cat := Category(c.QueryParam("category"))
	if !cat.Valid() {
		return c.String(http.StatusBadRequest, "Unknown category")
	}
	return Render(c, a.Views.AdminMetadataFields(cat, NewMetadata(cat)))
}

func (a *App) handleAdminSave(c echo.Context) error {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}

	title := strings.TrimSpace(c.FormValue("title"))
	body := c.FormValue("body")
	if title == "" || strings.TrimSpace(body) == "" {
		return redirectWithMsg(c, "Titre et contenu sont requis.")
	}
	cat := Category(c.FormValue("category"))
	if !cat.Valid() {
		return redirectWithMsg(c, "Catégorie inconnue.")
	}
	status := Status(c.FormValue("status"))
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		return redirectWithMsg(c, "Statut inconnu.")
	}
	meta, err := ParseMetadataForm(cat, c.FormValue)
	if err != nil {
		return redirectWithMsg(c, err.Error())
	}
	tags := ParseTags(c.FormValue("tags"))
	imageURL := strings.TrimSpace(c.FormValue("image_url"))
	excerpt := strings.TrimSpace(c.FormValue("excerpt"))

	id := c.FormValue("id")
	if id == "" {
		_, err = a.Store.Create(Content{
			Title:    title,
			Body:     body,
			Category: cat,
			Status:   status,
			ImageURL: imageURL,
			Excerpt:  excerpt,
			Tags:     tags,
			Meta:     meta,
			AuthorID: principal.ID,
		})
	} else {
		_, err = a.Store.Update(id, ContentPatch{
			Title:    &title,
			Body:     &body,
			Category: &cat,
			Status:   &status,
			ImageURL: &imageURL,
			Excerpt:  &excerpt,
			Tags:     &tags,
			Meta:     meta,
			AuthorID: &principal.ID,
		})
	}
	if err != nil {
		a.Log.Errorw("save content", "id", id, "err", err)
		return a.renderAdminDashboard(c, "La sauvegarde a échoué.")
	}

	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminToggleStatus(c echo.Context) error {
	if _, ok := CurrentPrincipal(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id := c.Param("id")
	record, err := a.Store.Get(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		a.Log.Errorw("toggle status", "id", id, "err", err)
		return a.renderAdminDashboard(c, "La mise à jour a échoué.")
	}
	next := record.Status.Toggled()
	if _, err := a.Store.Update(id, ContentPatch{Status: &next}); err != nil {
		a.Log.Errorw("toggle status", "id", id, "err", err)
		return a.renderAdminDashboard(c, "La mise à jour a échoué.")
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "updated")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if _, ok := CurrentPrincipal(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id := c.Param("id")
	if err := a.Store.Delete(id); err != nil {
		a.Log.Errorw("delete content", "id", id, "err", err)
		return a.renderAdminDashboard(c, "La suppression a échoué.")
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	principal, _ := CurrentPrincipal(c)
	records, err := a.Store.List(ListOptions{})
	if err != nil {
		a.Log.Errorw("list content", "err", err)
		records = nil
		if msg == "" {
			msg = "Le chargement a échoué."
		}
	}
	return Render(c, a.Views.AdminDashboard(records, principal, msg, CsrfToken(c)))
}

func redirectWithMsg(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}
