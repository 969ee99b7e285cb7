// Package testutil provides shared test fixtures: a migrated in-memory
// database and sample profiles and waste items.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/trash-scanner/internal/model"
	"github.com/Veraticus/trash-scanner/internal/storage"
)

// TestDB is a migrated in-memory SQLite store closed at test cleanup.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// TestDBOptions seeds a test database.
type TestDBOptions struct {
	CustomSetup    func(context.Context, storage.Store) error
	Profile        *model.UserProfile
	Settings       *model.AppSettings
	Feedback       []model.Feedback
	SkipMigrations bool
}

// SetupTestDB creates an empty migrated database.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	app := assistant.NewApp(db.Storage, ...)
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithProfile creates a database holding a completed profile.
func SetupTestDBWithProfile(t *testing.T, p model.UserProfile) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Profile: &p})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	ctx := context.Background()

	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if opts.Profile != nil {
		if err := store.SaveProfile(ctx, *opts.Profile); err != nil {
			t.Fatalf("failed to seed profile: %v", err)
		}
	}
	if opts.Settings != nil {
		if err := store.SaveSettings(ctx, *opts.Settings); err != nil {
			t.Fatalf("failed to seed settings: %v", err)
		}
	}
	for _, f := range opts.Feedback {
		if err := store.AppendFeedback(ctx, f); err != nil {
			t.Fatalf("failed to seed feedback %q: %v", f.ID, err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// MustProfile returns the stored profile or fails the test.
func (db *TestDB) MustProfile() model.UserProfile {
	db.t.Helper()
	p, err := db.Storage.LoadProfile(context.Background())
	if err != nil {
		db.t.Fatalf("failed to load profile: %v", err)
	}
	return *p
}

// MustFeedback returns every stored feedback report or fails the test.
func (db *TestDB) MustFeedback() []model.Feedback {
	db.t.Helper()
	list, err := db.Storage.ListFeedback(context.Background())
	if err != nil {
		db.t.Fatalf("failed to list feedback: %v", err)
	}
	return list
}
