package shared

import (
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		for _, m := range migrations {
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration version %d is incomplete", m.Version)
			}
		}

		if migrations[0].Name != "create_tables" {
			t.Errorf("expected first migration name create_tables, got %q", migrations[0].Name)
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		for _, table := range []string{"kv", "drafts"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM kv LIMIT 1"); err == nil {
			t.Error("kv table should be gone after rollback")
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when nothing is left to rollback")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		applied, err := AppliedMigrations(db)
		if err != nil {
			t.Fatalf("AppliedMigrations() error = %v", err)
		}

		migrations, _ := loadMigrations()
		if len(applied) != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), len(applied))
		}
	})
}

func TestMigrationStatus(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()

	t.Run("fresh database is pending", func(t *testing.T) {
		states, err := MigrationStatus(db)
		if err != nil {
			t.Fatalf("MigrationStatus() error = %v", err)
		}
		if len(states) == 0 {
			t.Fatal("expected known migrations")
		}
		for _, s := range states {
			if s.Applied {
				t.Errorf("migration %d should be pending", s.Version)
			}
		}
	})

	t.Run("applied after RunMigrations", func(t *testing.T) {
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		states, err := MigrationStatus(db)
		if err != nil {
			t.Fatalf("MigrationStatus() error = %v", err)
		}
		for _, s := range states {
			if !s.Applied || s.Name == "" {
				t.Errorf("unexpected state %+v", s)
			}
		}
	})
}

func TestRemoveComments(t *testing.T) {
	got := removeComments("-- heading\nCREATE TABLE x (a INT) -- trailing\n\n")
	if got != "CREATE TABLE x (a INT)" {
		t.Errorf("removeComments() = %q", got)
	}
}
