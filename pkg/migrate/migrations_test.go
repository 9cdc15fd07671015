package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/migrate"
)

func TestMigrationsValidate(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migration validation failed: %v", err)
	}
}

func TestInitMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_init_schema.sql")

	checks := []string{
		"CHECK (token_balance >= 0)",
		"CREATE UNIQUE INDEX ux_unlocks_user_property ON unlocks (user_id, property_id)",
		"CREATE UNIQUE INDEX ux_users_email ON users (email)",
		"ux_verification_requests_user_pending",
		"WHERE status = 'pending'",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPaymentsMigrationContainsReferenceUniqueness(t *testing.T) {
	content := readMigration(t, "*_payments.sql")

	checks := []string{
		"CREATE UNIQUE INDEX ux_token_transactions_reference ON token_transactions (reference)",
		"CREATE UNIQUE INDEX ux_inspection_transactions_reference ON inspection_transactions (reference)",
		"CHECK (tokens_added > 0)",
		"CHECK (amount > 0)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

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
