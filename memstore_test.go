package poptravel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreCreateThenList(t *testing.T) {
	s := NewMemStore()

	created, err := s.Create(Content{
		Title:    "Budget Thaïlande",
		Body:     "Combien coûte un mois en Thaïlande.",
		Category: CategoryBudget,
		Status:   StatusPublished,
		Tags:     []string{"thaïlande", "budget"},
		Meta:     BudgetMeta{Country: "Thaïlande", BudgetCategory: "Backpack"},
		AuthorID: "author-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	records, err := s.List(ListOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Budget Thaïlande", got.Title)
	assert.Equal(t, CategoryBudget, got.Category)
	assert.Equal(t, StatusPublished, got.Status)
	assert.Equal(t, []string{"thaïlande", "budget"}, got.Tags)
	assert.Equal(t, BudgetMeta{Country: "Thaïlande", BudgetCategory: "Backpack"}, got.Meta)
}

func TestMemStoreToggleTwiceRestoresStatus(t *testing.T) {
	s := NewMemStore()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	created, err := s.Create(Content{
		Title:    "Conseil bagages",
		Category: CategoryTip,
		Status:   StatusDraft,
		AuthorID: "author-1",
	})
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(time.Hour) }
	toggled := created.Status.Toggled()
	first, err := s.Update(created.ID, ContentPatch{Status: &toggled})
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, first.Status)
	assert.True(t, first.UpdatedAt.After(created.UpdatedAt), "toggle should refresh UpdatedAt")

	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	back := first.Status.Toggled()
	second, err := s.Update(created.ID, ContentPatch{Status: &back})
	require.NoError(t, err)
	assert.Equal(t, created.Status, second.Status, "two toggles should restore the original status")
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, created.CreatedAt, second.CreatedAt, "CreatedAt never moves")
}

func TestMemStoreDeleteIsIdempotent(t *testing.T) {
	s := NewMemStore()

	created, err := s.Create(Content{
		Title:    "Éphémère",
		Category: CategoryStory,
		AuthorID: "author-1",
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(created.ID))
	_, err = s.Get(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Delete(created.ID), "deleting an absent id succeeds")
	assert.NoError(t, s.Delete("never-existed"))
}

func TestMemStorePublishedFilterExcludesDrafts(t *testing.T) {
	s := NewMemStore()

	for _, c := range []Content{
		{Title: "Publié", Category: CategoryGuide, Status: StatusPublished, AuthorID: "a"},
		{Title: "Brouillon", Category: CategoryGuide, Status: StatusDraft, AuthorID: "a"},
	} {
		_, err := s.Create(c)
		require.NoError(t, err)
	}

	records, err := s.List(ListOptions{Status: StatusPublished})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Publié", records[0].Title)
}

func TestMemStoreListOrderAndLimit(t *testing.T) {
	s := NewMemStore()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, title := range []string{"premier", "deuxième", "troisième"} {
		offset := time.Duration(i) * time.Hour
		s.now = func() time.Time { return base.Add(offset) }
		_, err := s.Create(Content{
			Title:    title,
			Category: CategoryStory,
			AuthorID: "a",
		})
		require.NoError(t, err)
	}

	records, err := s.List(ListOptions{Category: CategoryStory, Limit: 2})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "troisième", records[0].Title, "newest first")
	assert.Equal(t, "deuxième", records[1].Title)
}

func TestMemStoreListTieBreakByInsertion(t *testing.T) {
	s := NewMemStore()
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	for _, title := range []string{"ancien", "récent"} {
		_, err := s.Create(Content{Title: title, Category: CategoryTip, AuthorID: "a"})
		require.NoError(t, err)
	}

	records, err := s.List(ListOptions{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "récent", records[0].Title, "same timestamp: later insertion wins")
}

func TestMemStoreSeedContent(t *testing.T) {
	s := NewMemStore(SeedContent()...)

	records, err := s.List(ListOptions{Status: StatusPublished})
	require.NoError(t, err)
	require.Len(t, records, 2)

	stories, err := s.List(ListOptions{Category: CategoryStory})
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "seed-recit-1", stories[0].ID)
}

func TestMemStoreUpdateValidates(t *testing.T) {
	s := NewMemStore()

	created, err := s.Create(Content{
		Title:    "Valide",
		Category: CategoryGuide,
		AuthorID: "a",
	})
	require.NoError(t, err)

	empty := "   "
	_, err = s.Update(created.ID, ContentPatch{Title: &empty})
	assert.Error(t, err, "blank title must be rejected")

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Valide", got.Title, "failed update must not change the record")
}
