package cmd

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"noteforge/quill/internal/pipeline"
	"noteforge/quill/internal/store"
)

func TestIsHexDash(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"aaaa1111", true},
		{"AAAA-1111", true},
		{"deadbeef-cafe", true},
		{"ghij", false},
		{"aaaa 1111", false},
		{"", true},
	}
	for _, tt := range tests {
		if got := isHexDash(tt.in); got != tt.want {
			t.Errorf("isHexDash(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolveNotebook(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "quill.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	defer s.Close()

	save := func(id, title string) {
		t.Helper()
		nb := &pipeline.Notebook{ID: id, Title: title, CreatedAt: time.Now()}
		if err := s.Save(nb); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	save("aaaa1111-0000-0000-0000-000000000001", "First")
	save("aaaa2222-0000-0000-0000-000000000002", "Second")
	save("bbbb3333-0000-0000-0000-000000000003", "Third")

	t.Run("exact id", func(t *testing.T) {
		nb, err := ResolveNotebook(s, "bbbb3333-0000-0000-0000-000000000003")
		if err != nil {
			t.Fatalf("ResolveNotebook() error = %v", err)
		}
		if nb.Title != "Third" {
			t.Errorf("Title = %q, want Third", nb.Title)
		}
	})

	t.Run("unique prefix", func(t *testing.T) {
		nb, err := ResolveNotebook(s, "aaaa22")
		if err != nil {
			t.Fatalf("ResolveNotebook() error = %v", err)
		}
		if nb.Title != "Second" {
			t.Errorf("Title = %q, want Second", nb.Title)
		}
	})

	t.Run("unmatched prefix", func(t *testing.T) {
		_, err := ResolveNotebook(s, "aaaa11-")
		if err == nil {
			t.Fatal("expected error for prefix matching nothing")
		}
	})

	t.Run("ambiguous prefix lists matches", func(t *testing.T) {
		save("aaaa1111-0000-0000-0000-000000000009", "Twin")
		_, err := ResolveNotebook(s, "aaaa1111")
		if err == nil {
			t.Fatal("expected ambiguity error")
		}
		if !strings.Contains(err.Error(), "2 matches") {
			t.Errorf("error = %v, want match listing", err)
		}
	})

	t.Run("short prefix not resolved", func(t *testing.T) {
		if _, err := ResolveNotebook(s, "aaaa"); err == nil {
			t.Fatal("expected error for prefix shorter than 6 chars")
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := ResolveNotebook(s, "cccc4444-0000"); err == nil {
			t.Fatal("expected not-found error")
		}
	})
}
