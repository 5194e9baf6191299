package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"noteforge/quill/internal/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "quill.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleNotebook(id, title string) *pipeline.Notebook {
	return &pipeline.Notebook{
		ID:    id,
		Title: title,
		Structure: pipeline.Outline{
			Title:    title,
			Sections: []pipeline.Section{{Heading: "Intro", Subsections: []string{"Overview", "Context"}}},
		},
		Content: []pipeline.ContentItem{
			{Type: pipeline.ItemHeading, Content: "Intro", Order: 0},
			{Type: pipeline.ItemText, Content: "a paragraph", Order: 1},
			{Type: pipeline.ItemPoints, Content: "a\nb", Points: []string{"a", "b"}, Order: 2},
		},
		CreatedAt:   time.Now(),
		TotalImages: 0,
		WordCount:   4,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	nb := sampleNotebook("aaaa1111-0000-0000-0000-000000000001", "Test Notes")

	if err := s.Save(nb); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get(nb.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != nb.Title {
		t.Errorf("Title = %q, want %q", got.Title, nb.Title)
	}
	if len(got.Content) != 3 {
		t.Fatalf("content length = %d, want 3", len(got.Content))
	}
	if got.Content[2].Type != pipeline.ItemPoints || len(got.Content[2].Points) != 2 {
		t.Errorf("content[2] = %+v, want points with 2 entries", got.Content[2])
	}
	if len(got.Structure.Sections) != 1 {
		t.Errorf("structure sections = %d, want 1", len(got.Structure.Sections))
	}
	if !got.IsSaved {
		t.Error("IsSaved = false, want true")
	}
	if got.SavedAt.IsZero() {
		t.Error("SavedAt is zero")
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)

	older := sampleNotebook("aaaa1111-0000-0000-0000-000000000001", "Older")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := sampleNotebook("bbbb2222-0000-0000-0000-000000000002", "Newer")

	for _, nb := range []*pipeline.Notebook{older, newer} {
		if err := s.Save(nb); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() length = %d, want 2", len(got))
	}
	if got[0].Title != "Newer" || got[1].Title != "Older" {
		t.Errorf("order = [%s, %s], want [Newer, Older]", got[0].Title, got[1].Title)
	}
}

func TestSaveReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	nb := sampleNotebook("aaaa1111-0000-0000-0000-000000000001", "Original")

	if err := s.Save(nb); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	nb.Title = "Updated"
	if err := s.Save(nb); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}

	got, err := s.Get(nb.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Updated" {
		t.Errorf("Title = %q, want Updated", got.Title)
	}
}

func TestSearchByIDPrefix(t *testing.T) {
	s := openTestStore(t)
	ids := []string{
		"aaaa1111-0000-0000-0000-000000000001",
		"aaaa2222-0000-0000-0000-000000000002",
		"bbbb3333-0000-0000-0000-000000000003",
	}
	for _, id := range ids {
		if err := s.Save(sampleNotebook(id, "nb-"+id[:4])); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	matches, err := s.SearchByIDPrefix("aaaa", 10)
	if err != nil {
		t.Fatalf("SearchByIDPrefix() error = %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("matches = %d, want 2", len(matches))
	}

	matches, err = s.SearchByIDPrefix("bbbb3333", 10)
	if err != nil {
		t.Fatalf("SearchByIDPrefix() error = %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("matches = %d, want 1", len(matches))
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	nb := sampleNotebook("aaaa1111-0000-0000-0000-000000000001", "Doomed")

	if err := s.Save(nb); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Delete(nb.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(nb.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(nb.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}
}

func TestUsage(t *testing.T) {
	s := openTestStore(t)
	bytes, err := s.Usage()
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if bytes <= 0 {
		t.Errorf("Usage() = %d, want > 0", bytes)
	}
}
