package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	for want := 1; want <= 3; want++ {
		got, err := NextSequence(ctx, db, "runs")
		if err != nil {
			t.Fatalf("NextSequence returned error: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(ctx, db, "missing"); err == nil {
		t.Error("expected an error for a table without a sequence")
	}
}

func TestRunRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun([]string{"spotify", "deezer"})

		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence())
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewRunRepository(db).Create(ctx, models.NewRun(nil)); err == nil {
			t.Fatal("expected validation error for a run without platforms")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun([]string{"youtube"})
		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		retrieved, err := repo.Get(ctx, run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}

		if retrieved.ID() != run.ID() || retrieved.Sequence() != run.Sequence() {
			t.Errorf("expected run %s, got %s", run, retrieved)
		}
		if retrieved.Status() != models.RunRunning {
			t.Errorf("expected running, got %s", retrieved.Status())
		}
		if len(retrieved.Platforms()) != 1 || retrieved.Platforms()[0] != "youtube" {
			t.Errorf("unexpected platforms %v", retrieved.Platforms())
		}
		if retrieved.FinishedAt() != nil {
			t.Error("expected no finish time")
		}
		if !retrieved.StartedAt().Equal(run.StartedAt()) {
			t.Errorf("expected start %v, got %v", run.StartedAt(), retrieved.StartedAt())
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NewRunRepository(db).Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Finish", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun([]string{"deezer"})
		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.Finish(models.RunCounts{Existing: 3, Fetched: 10, Kept: 11, Duplicates: 2}, errors.New("boom"))
		if err := repo.Finish(ctx, run); err != nil {
			t.Fatalf("failed to finish run: %v", err)
		}

		retrieved, err := repo.Get(ctx, run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}

		if retrieved.Status() != models.RunFailed || retrieved.ErrorMessage() != "boom" {
			t.Errorf("expected failed run with message, got %s %q", retrieved.Status(), retrieved.ErrorMessage())
		}
		if retrieved.Counts() != run.Counts() {
			t.Errorf("expected counts %+v, got %+v", run.Counts(), retrieved.Counts())
		}
		if retrieved.FinishedAt() == nil {
			t.Error("expected a finish time")
		}
	})

	t.Run("FinishUnknown", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		run := models.NewRun([]string{"deezer"})
		run.SetID("unknown")
		run.Finish(models.RunCounts{}, nil)

		if err := NewRunRepository(db).Finish(ctx, run); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		for _, p := range []string{"deezer", "spotify", "youtube"} {
			if err := repo.Create(ctx, models.NewRun([]string{p})); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		runs, err := repo.List(ctx, 2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].Sequence() != 3 || runs[0].Platforms()[0] != "youtube" {
			t.Errorf("expected the newest run first, got %s", runs[0])
		}

		all, err := repo.List(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 runs, got %d", len(all))
		}
	})
}

func TestRecordRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		records, err := NewRecordRepository(db).List(ctx)
		if err != nil {
			t.Fatalf("failed to list records: %v", err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("expected an empty, non-nil catalog, got %#v", records)
		}
	})

	t.Run("ReplaceAll keeps order and optional fields", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRecordRepository(db)
		want := []models.MusicRecord{
			{Author: "Zed", Title: "Last", URL: models.Optional("https://z")},
			{Author: "Abba", Title: "First", Album: models.Optional("Arrival"), Date: models.Optional("1976")},
		}

		if err := repo.ReplaceAll(ctx, want); err != nil {
			t.Fatalf("failed to replace records: %v", err)
		}

		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list records: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got))
		}
		for i := range want {
			if !got[i].Equal(want[i]) {
				t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
			}
		}
		if got[0].Thumbnail != nil || got[1].URL != nil {
			t.Error("expected absent fields to stay nil")
		}
	})

	t.Run("ReplaceAll replaces", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRecordRepository(db)
		if err := repo.ReplaceAll(ctx, []models.MusicRecord{{Author: "a", Title: "1"}, {Author: "b", Title: "2"}}); err != nil {
			t.Fatalf("failed to replace records: %v", err)
		}
		if err := repo.ReplaceAll(ctx, []models.MusicRecord{{Author: "c", Title: "3"}}); err != nil {
			t.Fatalf("failed to replace records: %v", err)
		}

		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list records: %v", err)
		}
		if len(got) != 1 || got[0].Author != "c" {
			t.Errorf("expected only the second catalog, got %+v", got)
		}
	})
}
