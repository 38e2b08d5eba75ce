package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retailpulse/retailpulse-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestStockLedgerMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_stock_ledger_entries.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS stock_ledger_entries",
		"CHECK (quantity >= 0)",
		"UNIQUE (product_id, business_entity_id)",
		"DROP TABLE IF EXISTS stock_ledger_entries",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestInventoryTransactionsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_inventory_transactions.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS inventory_transactions",
		"CHECK (quantity > 0)",
		"CHECK (cost_price_per_unit >= 0)",
		"CHECK (source_id <> destination_id)",
		"DROP TABLE IF EXISTS inventory_transactions",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSalesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_sales_transactions.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS sales_transactions",
		"CREATE TABLE IF NOT EXISTS sales_details",
		"REFERENCES sales_transactions(id) ON DELETE CASCADE",
		"CHECK (unit_price >= 0)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}
