package poptravel

import (
	"errors"
	"strings"
	"time"
)

// Category is the closed set of content kinds. The wire values match the
// column values used by the content table, so they never change even when
// display labels do.
type Category string

const (
	CategoryGuide           Category = "guide"
	CategoryStory           Category = "recit"
	CategoryConcert         Category = "concert"
	CategoryUpcomingConcert Category = "upcoming-concert"
	CategoryVenue           Category = "venue"
	CategoryBudget          Category = "budget"
	CategoryGear            Category = "materiel"
	CategoryInspiration     Category = "inspiration"
	CategoryTip             Category = "conseil"
)

// Categories returns every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryGuide,
		CategoryStory,
		CategoryConcert,
		CategoryUpcomingConcert,
		CategoryVenue,
		CategoryBudget,
		CategoryGear,
		CategoryInspiration,
		CategoryTip,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGuide, CategoryStory, CategoryConcert, CategoryUpcomingConcert,
		CategoryVenue, CategoryBudget, CategoryGear, CategoryInspiration, CategoryTip:
		return true
	}
	return false
}

// Label returns the French display label for the category.
func (c Category) Label() string {
	switch c {
	case CategoryGuide:
		return "Guide 🗺️"
	case CategoryStory:
		return "Récit 📖"
	case CategoryConcert:
		return "Concert 🎵"
	case CategoryUpcomingConcert:
		return "Concert à venir 📅"
	case CategoryVenue:
		return "Salle 🏟️"
	case CategoryBudget:
		return "Budget 💰"
	case CategoryGear:
		return "Matériel ⭐"
	case CategoryInspiration:
		return "Inspiration ✨"
	case CategoryTip:
		return "Conseil 💡"
	}
	return string(c)
}

// Status is the publication state of a content record.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Toggled returns the opposite publication state.
func (s Status) Toggled() Status {
	if s == StatusPublished {
		return StatusDraft
	}
	return StatusPublished
}

// Content is the central entity: one publishable unit of site content with
// a category and category-specific metadata.
type Content struct {
	ID        string
	Title     string
	Body      string
	Category  Category
	Status    Status
	ImageURL  string
	Excerpt   string
	Tags      []string
	Meta      Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
	AuthorID  string
}

var (
	// ErrNotFound is returned when an update or delete targets an id that
	// does not exist, or a Get misses.
	ErrNotFound = errors.New("poptravel: content not found")

	// ErrUnauthenticated is returned by mutating store operations when no
	// principal is attached to the record.
	ErrUnauthenticated = errors.New("poptravel: no authenticated principal")
)

// Validate checks the record's own invariants: a non-empty title, a known
// category and status, and metadata whose shape matches the category.
func (c Content) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("poptravel: title is required")
	}
	if !c.Category.Valid() {
		return errors.New("poptravel: unknown category " + string(c.Category))
	}
	if !c.Status.Valid() {
		return errors.New("poptravel: unknown status " + string(c.Status))
	}
	if c.Meta != nil {
		if c.Meta.Category() != c.Category {
			return errors.New("poptravel: metadata shape does not match category " + string(c.Category))
		}
		if err := c.Meta.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ContentPatch carries a partial update. Nil fields are left untouched;
// Meta replaces the metadata wholesale when non-nil.
type ContentPatch struct {
	Title    *string
	Body     *string
	Category *Category
	Status   *Status
	ImageURL *string
	Excerpt  *string
	Tags     *[]string
	Meta     Metadata
	AuthorID *string
}

func (p ContentPatch) apply(c *Content) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Body != nil {
		c.Body = *p.Body
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	if p.Excerpt != nil {
		c.Excerpt = *p.Excerpt
	}
	if p.Tags != nil {
		c.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Meta != nil {
		c.Meta = p.Meta
	}
	if p.AuthorID != nil {
		c.AuthorID = *p.AuthorID
	}
}

// ParseTags splits a comma-separated form value into an ordered tag list,
// trimming whitespace and dropping empty segments.
func ParseTags(s string) []string {
	parts := strings.Split(s, ",")
	var tags []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
