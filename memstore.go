package poptravel

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is the simulated backend: an explicitly constructed in-memory
// content store used when no database is configured, and by tests. Unlike a
// package-level fixture it holds no hidden shared state; every instance is
// independent.
type MemStore struct {
	mu      sync.RWMutex
	records []Content
	now     func() time.Time
}

var _ ContentStore = (*MemStore)(nil)

// NewMemStore returns an empty simulated store. Pass SeedContent() to start
// with the demo records.
func NewMemStore(seed ...Content) *MemStore {
	s := &MemStore{now: time.Now}
	for _, c := range seed {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.Tags = append([]string(nil), c.Tags...)
		s.records = append(s.records, c)
	}
	return s
}

// SeedContent returns the demo records a fresh simulated deployment starts
// with, so the public pages are not empty before the first sign-in.
func SeedContent() []Content {
	t1 := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 20, 20, 0, 0, 0, time.UTC)
	return []Content{
		{
			ID:        "seed-recit-1",
			Title:     "Mon premier récit de voyage 🌍",
			Body:      "Voici mon premier récit de voyage incroyable ! Cette aventure a commencé quand j'ai décidé de partir à l'aventure...",
			Category:  CategoryStory,
			Status:    StatusPublished,
			ImageURL:  "https://images.pexels.com/photos/1007426/pexels-photo-1007426.jpeg?auto=compress&cs=tinysrgb&w=800",
			Excerpt:   "Une aventure incroyable qui a changé ma vision du voyage",
			Tags:      []string{"aventure", "voyage", "découverte"},
			Meta:      StoryMeta{},
			CreatedAt: t1,
			UpdatedAt: t1,
			AuthorID:  localPrincipalID,
		},
		{
			ID:        "seed-concert-1",
			Title:     "Concert magique à Paris 🎵",
			Body:      "Hier soir, j'ai assisté à un concert absolument magique à Paris. L'ambiance était électrique...",
			Category:  CategoryConcert,
			Status:    StatusPublished,
			ImageURL:  "https://images.pexels.com/photos/1105666/pexels-photo-1105666.jpeg?auto=compress&cs=tinysrgb&w=800",
			Excerpt:   "Une soirée musicale inoubliable dans la capitale",
			Tags:      []string{"concert", "musique", "paris"},
			Meta:      ConcertMeta{},
			CreatedAt: t2,
			UpdatedAt: t2,
			AuthorID:  localPrincipalID,
		},
	}
}

func (s *MemStore) List(opts ListOptions) ([]Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Content
	for _, c := range s.records {
		if opts.Category != "" && c.Category != opts.Category {
			continue
		}
		if opts.Status != "" && c.Status != opts.Status {
			continue
		}
		out = append(out, c)
	}
	// Records append in arrival order; reverse first so same-timestamp
	// records still come back newest-insertion-first after the stable sort.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *MemStore) Get(id string) (Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.records {
		if c.ID == id {
			return c, nil
		}
	}
	return Content{}, ErrNotFound
}

func (s *MemStore) Create(c Content) (Content, error) {
	if c.AuthorID == "" {
		return Content{}, ErrUnauthenticated
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if err := c.Validate(); err != nil {
		return Content{}, err
	}
	c.ID = uuid.NewString()
	now := s.now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Tags = append([]string(nil), c.Tags...)

	s.mu.Lock()
	s.records = append(s.records, c)
	s.mu.Unlock()
	return c, nil
}

func (s *MemStore) Update(id string, patch ContentPatch) (Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		c := s.records[i]
		patch.apply(&c)
		if c.Meta != nil && c.Meta.Category() != c.Category {
			c.Meta = NewMetadata(c.Category)
		}
		if err := c.Validate(); err != nil {
			return Content{}, err
		}
		c.UpdatedAt = s.now().UTC()
		s.records[i] = c
		return c, nil
	}
	return Content{}, ErrNotFound
}

// Delete mirrors the real backend: removing an id that is already gone is
// treated as success.
func (s *MemStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemStore) Close() error { return nil }
