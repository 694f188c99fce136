package poptravel

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) handleSitemap(c echo.Context) error {
	records, err := a.Cache.Published("", 0)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, records)
}

func (a *App) renderSitemap(c echo.Context, records []Content) error {
	base := a.Config.SiteURL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	// One entry per section that has published content, stamped with its
	// newest record.
	latest := map[Category]time.Time{}
	for _, r := range records {
		if r.UpdatedAt.After(latest[r.Category]) {
			latest[r.Category] = r.UpdatedAt
		}
	}
	for _, cat := range Categories() {
		mod, ok := latest[cat]
		if !ok {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "section", string(cat)),
			LastMod: mod.Format("2006-01-02"),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
