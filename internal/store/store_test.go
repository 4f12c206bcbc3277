// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"nearo/internal/database"
	"nearo/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "nearo")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "nearo")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser inserts a throwaway user and registers its cleanup.
func testUser(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO users (name) VALUES ($1) RETURNING id
	`, "store-test-user").Scan(&id)
	if err != nil {
		t.Fatalf("insert test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", id) })
	return id
}

// testCategory inserts a leaf category and registers its cleanup.
// Cascades remove its attributes and options.
func testCategory(t *testing.T, db *sql.DB, name, slug string, parentID *uuid.UUID) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO categories (parent_id, name, slug, sort_order)
		VALUES ($1, $2, $3, 0) RETURNING id
	`, parentID, name, slug).Scan(&id)
	if err != nil {
		t.Fatalf("insert test category %q: %v", slug, err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", id) })
	return id
}

// testAttribute inserts an attribute definition for a category.
func testAttribute(t *testing.T, db *sql.DB, categoryID uuid.UUID, key string, typ models.AttributeType, dependsOn *string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO attributes (category_id, key, type, label_en, filterable, depends_on, sort_order)
		VALUES ($1, $2, $3, $4, TRUE, $5, 0) RETURNING id
	`, categoryID, key, string(typ), key, dependsOn).Scan(&id)
	if err != nil {
		t.Fatalf("insert test attribute %q: %v", key, err)
	}
	return id
}

// testOption inserts one option for an attribute.
func testOption(t *testing.T, db *sql.DB, attributeID uuid.UUID, value string, parentValue *string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO attribute_options (attribute_id, parent_value, value, label_en)
		VALUES ($1, $2, $3, $4)
	`, attributeID, parentValue, value, value)
	if err != nil {
		t.Fatalf("insert test option %q: %v", value, err)
	}
}

// testListing inserts a minimal active listing for the owner and category.
func testListing(t *testing.T, db *sql.DB, ownerID uuid.UUID, categoryID *uuid.UUID, title string, price int64) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO listings (owner_id, title, description, price, category, category_id, condition, status)
		VALUES ($1, $2, '', $3, 'test', $4, 'used', 'active') RETURNING id
	`, ownerID, title, price, categoryID).Scan(&id)
	if err != nil {
		t.Fatalf("insert test listing %q: %v", title, err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM listings WHERE id = $1", id) })
	return id
}

// attachValue stores one encoded attribute value row on a listing.
func attachValue(t *testing.T, db *sql.DB, listingID, attributeID uuid.UUID, value string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO listing_attribute_values (listing_id, attribute_id, value)
		VALUES ($1, $2, $3)
	`, listingID, attributeID, value)
	if err != nil {
		t.Fatalf("attach value %q: %v", value, err)
	}
}

func ctxT(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}
