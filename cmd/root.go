package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"noteforge/quill/internal/store"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill generates illustrated study notebooks from a prompt",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .quill.db database")
}

// DiscoverDB finds the database path using priority: env > flag > walk-up > XDG fallback
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("QUILL_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}
		return "", fmt.Errorf("database not found at --db path: %s", dbPath)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".quill.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG fallback
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".local", "share", "quill", "quill.db")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("no .quill.db found (set QUILL_DB, use --db, or run from a directory containing .quill.db)")
}

// DefaultDBPath is where a database is created when none exists yet.
func DefaultDBPath() (string, error) {
	if envPath := os.Getenv("QUILL_DB"); envPath != "" {
		return envPath, nil
	}
	if dbPath != "" {
		return dbPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".local", "share", "quill")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return filepath.Join(dir, "quill.db"), nil
}

// OpenDatabase discovers and opens an existing database
func OpenDatabase() (*store.Store, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

// OpenOrCreateDatabase opens the discovered database, creating the default
// one when discovery finds nothing.
func OpenOrCreateDatabase() (*store.Store, error) {
	if path, err := DiscoverDB(); err == nil {
		return store.Open(path)
	}
	path, err := DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

// ResolveNotebook finds a notebook by full ID or ID prefix (≥6 chars).
func ResolveNotebook(s *store.Store, reference string) (*store.SavedNotebook, error) {
	// 1. Exact ID match
	if nb, err := s.Get(reference); err == nil {
		return nb, nil
	}

	// 2. ID prefix match (≥6 hex/dash chars)
	if len(reference) >= 6 && isHexDash(reference) {
		matches, err := s.SearchByIDPrefix(reference, 10)
		if err == nil {
			switch len(matches) {
			case 1:
				return &matches[0], nil
			case 0:
				// fall through to not found
			default:
				lines := make([]string, len(matches))
				for i, m := range matches {
					lines[i] = fmt.Sprintf("  %s %s", shortID(m.ID), m.Title)
				}
				return nil, fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a full notebook ID instead.",
					reference, len(matches), joinLines(lines))
			}
		}
	}

	return nil, fmt.Errorf("notebook not found: %s", reference)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func isHexDash(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') || c == '-') {
			return false
		}
	}
	return true
}

func joinLines(lines []string) string {
	result := ""
	for i, l := range lines {
		if i > 0 {
			result += "\n"
		}
		result += l
	}
	return result
}
