package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edelguur/admin-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestReferenceMigrationContainsTables(t *testing.T) {
	content := readMigration(t, "create_reference_tables")
	for _, table := range []string{"brands", "units", "status", "typetable", "categories", "sub_categories"} {
		if !strings.Contains(content, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("missing table %q", table)
		}
	}
}

func TestProductsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "create_products_table")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS product_variants",
		"CREATE TABLE IF NOT EXISTS product_images",
		"category_name TEXT",
		"subcategory_name TEXT",
		"brand_name TEXT",
		"unit_name TEXT",
		"status_name TEXT",
		"type_name TEXT",
		"attribute JSONB",
		"CREATE INDEX IF NOT EXISTS idx_product_images_variant_id",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationCascadesItems(t *testing.T) {
	content := readMigration(t, "create_orders_table")
	if !strings.Contains(content, "REFERENCES orders(id) ON DELETE CASCADE") {
		t.Fatalf("order_items must cascade with orders")
	}
	if !strings.Contains(content, "status TEXT NOT NULL DEFAULT 'pending'") {
		t.Fatalf("orders must default to pending")
	}
}
