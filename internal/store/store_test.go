package store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/shared"
	tu "github.com/desertthunder/music-exporter/internal/testing"
)

func catalog() []models.MusicRecord {
	return []models.MusicRecord{
		{Author: "Band", Title: "Song", URL: models.Optional("https://open.spotify.com/track/1"), Album: models.Optional("LP")},
		{Author: "X", Title: "Other"},
	}
}

func assertCatalog(t *testing.T, got []models.MusicRecord) {
	t.Helper()
	want := catalog()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestJSONStore(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	t.Run("missing file is created empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "musics.json")
		s := NewJSONStore(path, logger)

		records, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read returned error: %v", err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("expected an empty catalog, got %#v", records)
		}

		tu.AssertFileExists(t, path)
		if got := tu.MustReadFile(t, path); got != "[]" {
			t.Errorf("expected an empty array on disk, got %q", got)
		}
	})

	t.Run("write then read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "musics.json")
		s := NewJSONStore(path, logger)

		if err := s.Write(ctx, catalog()); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}

		records, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read returned error: %v", err)
		}
		assertCatalog(t, records)
	})

	t.Run("four space indentation and null fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "musics.json")
		s := NewJSONStore(path, logger)

		if err := s.Write(ctx, catalog()[1:]); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}

		want := "[\n    {\n        \"author\": \"X\",\n        \"title\": \"Other\",\n        \"url\": null,\n        \"thumbnail\": null,\n        \"date\": null,\n        \"album\": null\n    }\n]"
		if got := tu.MustReadFile(t, path); got != want {
			t.Errorf("unexpected file content:\n%s", got)
		}
	})

	t.Run("unparsable file is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "musics.json")
		tu.MustWriteFile(t, path, `{"not": "a list"}`)

		_, err := NewJSONStore(path, logger).Read(ctx)
		if !errors.Is(err, shared.ErrParse) {
			t.Errorf("expected parse error, got %v", err)
		}
		if got := tu.MustReadFile(t, path); got != `{"not": "a list"}` {
			t.Error("the file must not be rewritten")
		}
	})

	t.Run("blank file is empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "musics.json")
		tu.MustWriteFile(t, path, "\n")

		records, err := NewJSONStore(path, logger).Read(ctx)
		if err != nil || len(records) != 0 {
			t.Errorf("expected an empty catalog, got %d, %v", len(records), err)
		}
	})

	t.Run("write leaves no temporary files", func(t *testing.T) {
		dir := t.TempDir()
		s := NewJSONStore(filepath.Join(dir, "musics.json"), logger)
		if err := s.Write(ctx, catalog()); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the catalog file, got %d entries", len(entries))
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	s, err := OpenSQLiteStore(ctx, shared.DatabaseConfig{Path: ":memory:"}, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("OpenSQLiteStore returned error: %v", err)
	}
	defer s.Close()

	records, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected an empty catalog, got %d records", len(records))
	}

	if err := s.Write(ctx, catalog()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	records, err = s.Read(ctx)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	assertCatalog(t, records)

	if s.Location() != "sqlite::memory:" {
		t.Errorf("unexpected location %q", s.Location())
	}
}

func TestRedisEncoding(t *testing.T) {
	values, err := encodeRecords(catalog())
	if err != nil {
		t.Fatalf("encodeRecords returned error: %v", err)
	}

	raw := make([]string, 0, len(values))
	for _, v := range values {
		raw = append(raw, v.(string))
	}
	if !strings.Contains(raw[1], `"url":null`) {
		t.Errorf("expected null optional fields, got %s", raw[1])
	}

	records, err := decodeRecords(raw)
	if err != nil {
		t.Fatalf("decodeRecords returned error: %v", err)
	}
	assertCatalog(t, records)

	if _, err := decodeRecords([]string{"not json"}); !errors.Is(err, shared.ErrParse) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	open := func(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
		t.Helper()
		mr := miniredis.RunT(t)

		s, err := OpenRedisStore(ctx, shared.RedisConfig{Addr: mr.Addr(), Key: "catalog"}, logger)
		if err != nil {
			t.Fatalf("OpenRedisStore returned error: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s, mr
	}

	t.Run("missing key is an empty catalog", func(t *testing.T) {
		s, _ := open(t)

		records, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read returned error: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})

	t.Run("round trip keeps order", func(t *testing.T) {
		s, mr := open(t)

		if err := s.Write(ctx, catalog()); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}

		items, err := mr.List("catalog")
		if err != nil {
			t.Fatalf("failed to inspect list: %v", err)
		}
		if len(items) != 2 || !strings.Contains(items[0], `"title":"Song"`) {
			t.Errorf("unexpected stored list %v", items)
		}

		records, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read returned error: %v", err)
		}
		assertCatalog(t, records)
	})

	t.Run("write replaces the previous list", func(t *testing.T) {
		s, _ := open(t)

		if err := s.Write(ctx, catalog()); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}
		if err := s.Write(ctx, catalog()[1:]); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}

		records, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read returned error: %v", err)
		}
		if len(records) != 1 || records[0].Title != "Other" {
			t.Errorf("expected only the second write, got %+v", records)
		}
	})

	t.Run("empty write clears the catalog", func(t *testing.T) {
		s, mr := open(t)

		if err := s.Write(ctx, catalog()); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}
		if err := s.Write(ctx, nil); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}

		if mr.Exists("catalog") {
			t.Error("expected the key to be removed")
		}
		records, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read returned error: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected an empty catalog, got %d records", len(records))
		}
	})

	t.Run("corrupt entry", func(t *testing.T) {
		s, mr := open(t)
		if _, err := mr.Push("catalog", "not json"); err != nil {
			t.Fatalf("failed to seed list: %v", err)
		}

		if _, err := s.Read(ctx); !errors.Is(err, shared.ErrParse) {
			t.Errorf("expected parse error, got %v", err)
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		if _, err := OpenRedisStore(ctx, shared.RedisConfig{Addr: addr}, logger); !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected transport error, got %v", err)
		}
	})

	t.Run("location names the key", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, err := OpenRedisStore(ctx, shared.RedisConfig{Addr: mr.Addr()}, logger)
		if err != nil {
			t.Fatalf("OpenRedisStore returned error: %v", err)
		}
		defer s.Close()

		if want := "redis://" + mr.Addr() + "/0 music-exporter:catalog"; s.Location() != want {
			t.Errorf("Location() = %q, want %q", s.Location(), want)
		}
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	t.Run("json by default", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Catalog.Store = ""
		cfg.Catalog.Path = filepath.Join(t.TempDir(), "musics.json")

		s, err := Open(ctx, cfg, logger)
		if err != nil {
			t.Fatalf("Open returned error: %v", err)
		}
		defer s.Close()

		if _, ok := s.(*JSONStore); !ok || s.Location() != cfg.Catalog.Path {
			t.Errorf("expected a JSON store at %s, got %T %s", cfg.Catalog.Path, s, s.Location())
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Catalog.Store = "SQLite"
		cfg.Database.Path = filepath.Join(t.TempDir(), "db", "catalog.db")

		s, err := Open(ctx, cfg, logger)
		if err != nil {
			t.Fatalf("Open returned error: %v", err)
		}
		defer s.Close()

		if _, ok := s.(*SQLiteStore); !ok {
			t.Errorf("expected a SQLite store, got %T", s)
		}
		tu.AssertFileExists(t, cfg.Database.Path)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := shared.DefaultConfig()
		cfg.Catalog.Store = "redis"
		cfg.Redis.Addr = mr.Addr()

		s, err := Open(ctx, cfg, logger)
		if err != nil {
			t.Fatalf("Open returned error: %v", err)
		}
		defer s.Close()

		if _, ok := s.(*RedisStore); !ok {
			t.Errorf("expected a redis store, got %T", s)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Catalog.Store = "s3"

		if _, err := Open(ctx, cfg, logger); !errors.Is(err, shared.ErrConfig) {
			t.Errorf("expected config error, got %v", err)
		}
	})
}
