package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// CreateSQLMigration writes <dir>/<version>_<name>.sql and returns its path.
// An empty dir targets DefaultDir. Names shaped like create_<table>_table or
// add_<column>_to_<table> get a filled Up and Down; anything else gets a
// placeholder Down that ValidateDir rejects until it is written.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	version, err := nextVersion(dir, now)
	if err != nil {
		return "", err
	}
	fullpath := filepath.Join(dir, fmt.Sprintf("%d_%s.sql", version, safe))
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}

	if err := os.WriteFile(fullpath, []byte(migrationTemplate(safe)), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = nameSanitizeRe.ReplaceAllString(strings.ReplaceAll(safe, " ", "_"), "_")
	return strings.Trim(safe, "_")
}

// nextVersion uses the current timestamp unless a file in dir already holds
// that version or a later one, in which case it follows the latest.
func nextVersion(dir string, now time.Time) (int64, error) {
	version, err := strconv.ParseInt(now.Format(versionLayout), 10, 64)
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read dir %q: %w", dir, err)
	}
	for _, entry := range entries {
		m := sqlFileRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		existing, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if existing >= version {
			version = existing + 1
		}
	}
	return version, nil
}

func migrationTemplate(name string) string {
	up, down := "-- "+name, "-- rollback "+name

	if table, ok := strings.CutPrefix(name, "create_"); ok && strings.HasSuffix(table, "_table") {
		table = strings.TrimSuffix(table, "_table")
		up = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
  created_at timestamptz NOT NULL DEFAULT now(),
  updated_at timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_%s_created_at_id ON %s (created_at DESC, id DESC);`, table, table, table)
		down = fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)
	} else if rest, ok := strings.CutPrefix(name, "add_"); ok {
		if at := strings.LastIndex(rest, "_to_"); at > 0 && at+4 < len(rest) {
			column, table := rest[:at], rest[at+4:]
			up = fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s text;", table, column)
			down = fmt.Sprintf("ALTER TABLE %s DROP COLUMN IF EXISTS %s;", table, column)
		}
	}

	return fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
%s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
%s
-- +goose StatementEnd
`, up, down)
}
