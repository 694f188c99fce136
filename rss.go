package poptravel

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

func (a *App) handleFeed(c echo.Context) error {
	records, err := a.Cache.Published("", 0)
	if err != nil {
		return err
	}
	return a.renderRSS(c, records)
}

func (a *App) renderRSS(c echo.Context, records []Content) error {
	base := a.Config.SiteURL
	items := make([]rssItem, 0, len(records))
	for _, r := range records {
		// Records have no standalone page; the section list is the landing
		// spot, the id keeps the GUID stable.
		sectionURL := BuildURL(base, "section", string(r.Category))
		items = append(items, rssItem{
			Title:       r.Title,
			Link:        sectionURL,
			Description: r.Excerpt,
			Category:    string(r.Category),
			PubDate:     r.CreatedAt.Format(time.RFC1123Z),
			GUID:        sectionURL + "#" + r.ID,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.SiteName,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
