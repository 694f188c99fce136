package poptravel

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// homeSections lists the dynamic blocks assembled on the home page, in
// display order, with their per-section card caps.
var homeSections = []struct {
	category Category
	limit    int
}{
	{CategoryGuide, 3},
	{CategoryStory, 3},
	{CategoryConcert, 3},
	{CategoryTip, 3},
}

func (a *App) handleHome(c echo.Context) error {
	sections := make([]Section, 0, len(homeSections))
	for _, hs := range homeSections {
		records, err := a.Cache.Published(hs.category, hs.limit)
		if err != nil {
			return err
		}
		sections = append(sections, Section{
			Category: hs.category,
			Title:    hs.category.Label(),
			Records:  records,
		})
	}
	return Render(c, a.Views.Home(sections, a.settings, a.Config.SiteURL))
}

func (a *App) handleSection(c echo.Context) error {
	cat := Category(c.Param("category"))
	if !cat.Valid() {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := a.Cache.Published(cat, limit)
	if err != nil {
		return err
	}
	section := Section{Category: cat, Title: cat.Label(), Records: records}
	if c.Request().Header.Get("HX-Request") == "true" {
		return Render(c, a.Views.SectionPartial(section, a.settings))
	}
	return Render(c, a.Views.Section(section, a.settings, a.Config.SiteURL))
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Errorw("server error", "err", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
