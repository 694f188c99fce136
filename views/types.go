package views

// SiteSettings carries the marketing copy rendered by the presentational
// sections (hero, about, contact, newsletter). Every handler passes this to
// templates so nothing is hardcoded in markup.
type SiteSettings struct {
	SiteName       string
	SiteTagline    string
	HeroTitle      string
	HeroSubtitle   string
	AboutTitle     string
	AboutText      string
	ContactEmail   string
	Instagram      string
	YouTube        string
	NewsletterText string
}

// DefaultSiteSettings returns the copy a fresh site ships with.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SiteName:       "POP travel",
		SiteTagline:    "✈️ Voyage avec style",
		HeroTitle:      "POP travel",
		HeroSubtitle:   "Découvre le monde avec style ✨ Des récits authentiques, des guides pratiques et des inspirations pour tes prochaines aventures 🗺️",
		AboutTitle:     "À propos de POP travel 🤍",
		AboutText:      "Salut, moi c'est POP ! ✌️ Passionnée de voyage depuis toujours, je partage mes aventures pour t'inspirer à découvrir le monde autrement.",
		ContactEmail:   "pop@travel.example",
		Instagram:      "#",
		YouTube:        "#",
		NewsletterText: "Reçois mes derniers articles, bons plans et inspirations directement dans ta boîte mail ! ✨",
	}
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>
// template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
