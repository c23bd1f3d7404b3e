package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zansmarket/storefront-backend/pkg/db"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("expected shipped migrations to validate: %v", err)
	}
}

func TestEmbeddedVersionsAreOrdered(t *testing.T) {
	versions, err := EmbeddedVersions()
	if err != nil {
		t.Fatalf("embedded versions: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("expected 3 embedded migrations, got %d", len(versions))
	}
	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Fatalf("versions out of order: %v", versions)
		}
	}
}

func TestMigrationsContainSchemas(t *testing.T) {
	checks := map[string][]string{
		"*_create_products_table.sql": {
			"CREATE TABLE IF NOT EXISTS products",
			"count_in_stock integer",
			"price numeric(12,2)",
		},
		"*_create_orders_tables.sql": {
			"CREATE TYPE order_status AS ENUM ('pending', 'paid', 'delivered')",
			"CREATE TABLE IF NOT EXISTS orders",
			"shipping_address jsonb NOT NULL",
			"CREATE TABLE IF NOT EXISTS order_items",
			"REFERENCES orders(id) ON DELETE CASCADE",
		},
		"*_create_cart_snapshots_table.sql": {
			"CREATE TABLE IF NOT EXISTS cart_snapshots",
			"session_id text PRIMARY KEY",
		},
	}
	for pattern, statements := range checks {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		if err != nil || len(matches) != 1 {
			t.Fatalf("expected one migration for %s, got %v (%v)", pattern, matches, err)
		}
		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration file: %v", err)
		}
		for _, stmt := range statements {
			if !strings.Contains(string(data), stmt) {
				t.Errorf("%s missing expected statement %q", matches[0], stmt)
			}
		}
	}
}

func TestCreateSQLMigrationRequiresFilledDown(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Coupons!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_coupons.sql") {
		t.Fatalf("unexpected sanitized path %s", path)
	}
	if err := ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "empty Down") {
		t.Fatalf("expected template down section to be rejected, got %v", err)
	}

	filled := strings.Replace(mustRead(t, path), "-- rollback add_coupons", "DROP TABLE IF EXISTS coupons;", 1)
	if err := os.WriteFile(path, []byte(filled), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("expected filled migration to validate: %v", err)
	}
}

func TestCreateSQLMigrationFillsTableSkeletons(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	created, err := createSQLMigration(dir, "create_coupons_table", now)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	body := mustRead(t, created)
	for _, want := range []string{"CREATE TABLE IF NOT EXISTS coupons (", "DROP TABLE IF EXISTS coupons;"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in %s", want, body)
		}
	}

	column, err := createSQLMigration(dir, "add gift note to orders", now)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	body = mustRead(t, column)
	for _, want := range []string{
		"ALTER TABLE orders ADD COLUMN IF NOT EXISTS gift_note text;",
		"ALTER TABLE orders DROP COLUMN IF EXISTS gift_note;",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in %s", want, body)
		}
	}

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("expected generated skeletons to validate: %v", err)
	}
}

func TestCreateSQLMigrationVersionFollowsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	later := filepath.Join(dir, "20260301090200_create_cart_snapshots_table.sql")
	if err := os.WriteFile(later, []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	path, err := createSQLMigration(dir, "create_coupons_table", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if got := filepath.Base(path); got != "20260301090201_create_coupons_table.sql" {
		t.Fatalf("expected version after the latest file, got %s", got)
	}

	path, err = createSQLMigration(dir, "create_gift_cards_table", time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if got := filepath.Base(path); got != "20260402103000_create_gift_cards_table.sql" {
		t.Fatalf("expected clock version, got %s", got)
	}
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	if _, err := CreateSQLMigration(t.TempDir(), " !! "); err == nil {
		t.Fatal("expected empty sanitized name to fail")
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\nSELECT 1;"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename to fail")
	}
}

func TestAutoMigrateModelsOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	client := db.NewFromGorm(conn)
	if err := AutoMigrateModels(context.Background(), client); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	for _, table := range []string{"products", "orders", "order_items", "cart_snapshots"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
