package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MigrationFile describes a generated up/down pair.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down migration pair named
// <version>_<sanitized name>. The timestamp version keeps files ordered
// the way golang-migrate expects.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	mf := &MigrationFile{
		Version:     now.Format("20060102150405"),
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
	}

	base := mf.Version + "_" + sanitizeName(name)
	mf.UpPath = filepath.Join(migrationsDir, base+".up.sql")
	mf.DownPath = filepath.Join(migrationsDir, base+".down.sql")

	if err := os.WriteFile(mf.UpPath, []byte(mf.header(false)), 0644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}
	if err := os.WriteFile(mf.DownPath, []byte(mf.header(true)), 0644); err != nil {
		// Do not leave a half-created pair behind
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}

	return mf, nil
}

func (mf *MigrationFile) header(rollback bool) string {
	var b strings.Builder
	if rollback {
		fmt.Fprintf(&b, "-- %s (rollback)\n", mf.Name)
	} else {
		fmt.Fprintf(&b, "-- %s\n", mf.Name)
	}
	fmt.Fprintf(&b, "-- created %s\n", mf.Timestamp)
	if mf.Description != "" {
		fmt.Fprintf(&b, "-- %s\n", mf.Description)
	}
	b.WriteString("\n")
	return b.String()
}

// sanitizeName lowercases the name and collapses everything that is not
// a letter or digit into single underscores.
func sanitizeName(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(words, "_")
}

// ListMigrations returns the base names of the migration pairs in a
// directory. A missing directory lists as empty rather than failing.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries)/2)
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if !ok || base == "" || seen[base] {
			continue
		}
		seen[base] = true
		names = append(names, base)
	}
	return names, nil
}
