// ABOUTME: Tests for Repository interface implementations.
// ABOUTME: Runs one CRUD suite against SQLite and, when configured, Postgres.
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/growth/internal/models"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestMeasurement(creator, name string, sex models.Sex, age string, created time.Time) *models.Measurement {
	m := models.NewMeasurement(creator, name, sex, age, 80, 10).WithCreatedAt(created)
	m.BMI = 15.62
	m.HeightCategory = models.CategoryNormal
	m.WeightCategory = models.CategoryNormal
	m.BMICategory = models.CategoryNormal
	return m
}

// repoSuite exercises the Repository contract against a fresh store.
func repoSuite(t *testing.T, open func(t *testing.T) Repository) {
	t.Run("create and get", func(t *testing.T) {
		testCreateAndGet(t, open(t))
	})
	t.Run("get by prefix", func(t *testing.T) {
		testGetByPrefix(t, open(t))
	})
	t.Run("update", func(t *testing.T) {
		testUpdate(t, open(t))
	})
	t.Run("soft delete", func(t *testing.T) {
		testSoftDelete(t, open(t))
	})
	t.Run("list filters", func(t *testing.T) {
		testListFilters(t, open(t))
	})
	t.Run("list order", func(t *testing.T) {
		testListOrder(t, open(t))
	})
	t.Run("batch update rolls back", func(t *testing.T) {
		testBatchUpdateRollsBack(t, open(t))
	})
	t.Run("batch delete rolls back", func(t *testing.T) {
		testBatchDeleteRollsBack(t, open(t))
	})
	t.Run("literal wildcards", func(t *testing.T) {
		testLiteralWildcards(t, open(t))
	})
}

func TestSQLiteRepository(t *testing.T) {
	repoSuite(t, func(t *testing.T) Repository { return setupTestDB(t) })
}

func TestPostgresRepository(t *testing.T) {
	url := os.Getenv("GROWTH_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("GROWTH_TEST_DATABASE_URL not set")
	}

	repoSuite(t, func(t *testing.T) Repository {
		ctx := context.Background()
		pg, err := OpenPostgres(ctx, url, 4, 1)
		if err != nil {
			t.Fatalf("OpenPostgres failed: %v", err)
		}
		if _, err := pg.pool.Exec(ctx, "TRUNCATE measurements"); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		t.Cleanup(func() { pg.Close() })
		return pg
	})
}

func testCreateAndGet(t *testing.T, repo Repository) {
	ctx := context.Background()
	m := newTestMeasurement("u1", "Budi Santoso", models.SexMale, "1 tahun 2 bulan", baseTime)

	if err := repo.CreateMeasurement(ctx, m); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}

	got, err := repo.GetMeasurement(ctx, m.ID.String())
	if err != nil {
		t.Fatalf("GetMeasurement failed: %v", err)
	}

	if got.ID != m.ID {
		t.Errorf("ID mismatch: got %v, want %v", got.ID, m.ID)
	}
	if got.ChildID != "u1-BudiSantoso-L" {
		t.Errorf("ChildID = %q", got.ChildID)
	}
	if got.Sex != models.SexMale {
		t.Errorf("Sex = %q", got.Sex)
	}
	if got.AgeText != "1 tahun 2 bulan" || got.Height != 80 || got.Weight != 10 || got.BMI != 15.62 {
		t.Errorf("values mismatch: %+v", got)
	}
	if got.BMICategory != models.CategoryNormal {
		t.Errorf("BMICategory = %q", got.BMICategory)
	}
	if !got.CreatedAt.Equal(baseTime) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, baseTime)
	}
	if got.DeletedAt != nil {
		t.Errorf("DeletedAt = %v, want nil", got.DeletedAt)
	}

	_, err = repo.GetMeasurement(ctx, uuid.New().String())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMeasurement(unknown) err = %v, want ErrNotFound", err)
	}
}

func testGetByPrefix(t *testing.T, repo Repository) {
	ctx := context.Background()
	a := newTestMeasurement("u1", "A", models.SexMale, "5 bulan", baseTime)
	b := newTestMeasurement("u1", "B", models.SexMale, "5 bulan", baseTime)
	a.ID = uuid.MustParse("aaaa1000-0000-0000-0000-000000000001")
	b.ID = uuid.MustParse("aaaa2000-0000-0000-0000-000000000002")
	for _, m := range []*models.Measurement{a, b} {
		if err := repo.CreateMeasurement(ctx, m); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
	}

	if _, err := repo.GetMeasurement(ctx, "aaaa"); !errors.Is(err, ErrAmbiguousPrefix) {
		t.Errorf("GetMeasurement(aaaa) err = %v, want ErrAmbiguousPrefix", err)
	}

	got, err := repo.GetMeasurement(ctx, "aaaa1")
	if err != nil {
		t.Fatalf("GetMeasurement by prefix failed: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("prefix resolved to %v, want %v", got.ID, a.ID)
	}

	if err := repo.DeleteMeasurement(ctx, b.ID.String()); err != nil {
		t.Fatalf("DeleteMeasurement failed: %v", err)
	}
	if got, err := repo.GetMeasurement(ctx, "aaaa"); err != nil || got.ID != a.ID {
		t.Errorf("deleted records should not make a prefix ambiguous: %v", err)
	}

	if _, err := repo.GetMeasurement(ctx, "ffff"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMeasurement(ffff) err = %v, want ErrNotFound", err)
	}
}

func testUpdate(t *testing.T, repo Repository) {
	ctx := context.Background()
	m := newTestMeasurement("u1", "Budi", models.SexMale, "5 bulan", baseTime)
	if err := repo.CreateMeasurement(ctx, m); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}

	m.ChildName = "Budi S"
	m.ChildID = models.DeriveChildID("u1", "Budi S", models.SexMale)
	m.Height = 82.5
	m.WeightCategory = models.CategoryWasted
	m.UpdatedAt = baseTime.Add(time.Hour)
	if err := repo.UpdateMeasurement(ctx, m); err != nil {
		t.Fatalf("UpdateMeasurement failed: %v", err)
	}

	got, err := repo.GetMeasurement(ctx, m.ID.String())
	if err != nil {
		t.Fatalf("GetMeasurement failed: %v", err)
	}
	if got.ChildID != "u1-BudiS-L" || got.Height != 82.5 || got.WeightCategory != models.CategoryWasted {
		t.Errorf("update not persisted: %+v", got)
	}
	if !got.UpdatedAt.Equal(m.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, m.UpdatedAt)
	}
	if !got.CreatedAt.Equal(baseTime) {
		t.Errorf("CreatedAt changed to %v", got.CreatedAt)
	}

	ghost := newTestMeasurement("u1", "Ghost", models.SexMale, "5 bulan", baseTime)
	if err := repo.UpdateMeasurement(ctx, ghost); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateMeasurement(ghost) err = %v, want ErrNotFound", err)
	}
}

func testSoftDelete(t *testing.T, repo Repository) {
	ctx := context.Background()
	m := newTestMeasurement("u1", "Budi", models.SexMale, "5 bulan", baseTime)
	if err := repo.CreateMeasurement(ctx, m); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}

	if err := repo.DeleteMeasurement(ctx, m.ShortID()); err != nil {
		t.Fatalf("DeleteMeasurement failed: %v", err)
	}

	if _, err := repo.GetMeasurement(ctx, m.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMeasurement after delete err = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteMeasurement(ctx, m.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}

	live, err := repo.ListMeasurements(ctx, nil)
	if err != nil {
		t.Fatalf("ListMeasurements failed: %v", err)
	}
	if len(live) != 0 {
		t.Errorf("live list has %d records, want 0", len(live))
	}

	all, err := repo.ListMeasurements(ctx, &MeasurementFilter{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("ListMeasurements failed: %v", err)
	}
	if len(all) != 1 || all[0].DeletedAt == nil {
		t.Fatalf("expected the deleted record with DeletedAt set, got %d records", len(all))
	}
}

func testListFilters(t *testing.T, repo Repository) {
	ctx := context.Background()
	budi := newTestMeasurement("u1", "Budi Santoso", models.SexMale, "5 bulan", baseTime)
	siti := newTestMeasurement("u1", "Siti", models.SexFemale, "5 bulan", baseTime.Add(time.Minute))
	siti.HeightCategory = models.CategoryStunted
	other := newTestMeasurement("u2", "Budi", models.SexMale, "5 bulan", baseTime.Add(2*time.Minute))
	other.BMICategory = models.CategoryObese
	for _, m := range []*models.Measurement{budi, siti, other} {
		if err := repo.CreateMeasurement(ctx, m); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter *MeasurementFilter
		want   int
	}{
		{"nil filter", nil, 3},
		{"creator", &MeasurementFilter{CreatorID: "u1"}, 2},
		{"child id", &MeasurementFilter{ChildID: budi.ChildID}, 1},
		{"name substring", &MeasurementFilter{ChildName: "budi"}, 2},
		{"name and creator", &MeasurementFilter{ChildName: "BUDI", CreatorID: "u2"}, 1},
		{"category height", &MeasurementFilter{Category: "stunted"}, 1},
		{"category mass", &MeasurementFilter{Category: "obese"}, 1},
		{"category any", &MeasurementFilter{Category: "normal"}, 3},
		{"limit", &MeasurementFilter{Limit: 2}, 2},
		{"no match", &MeasurementFilter{ChildName: "zzz"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListMeasurements(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListMeasurements failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func testListOrder(t *testing.T, repo Repository) {
	ctx := context.Background()
	oldest := newTestMeasurement("u1", "A", models.SexMale, "5 bulan", baseTime)
	newest := newTestMeasurement("u1", "B", models.SexMale, "5 bulan", baseTime.Add(2*time.Hour))
	middle := newTestMeasurement("u1", "C", models.SexMale, "5 bulan", baseTime.Add(time.Hour))
	for _, m := range []*models.Measurement{oldest, newest, middle} {
		if err := repo.CreateMeasurement(ctx, m); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
	}

	got, err := repo.ListMeasurements(ctx, nil)
	if err != nil {
		t.Fatalf("ListMeasurements failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	if got[0].ID != newest.ID || got[1].ID != middle.ID || got[2].ID != oldest.ID {
		t.Errorf("order = %s, %s, %s; want newest first", got[0].ChildName, got[1].ChildName, got[2].ChildName)
	}
}

func testBatchUpdateRollsBack(t *testing.T, repo Repository) {
	ctx := context.Background()
	first := newTestMeasurement("u1", "Budi", models.SexMale, "5 bulan", baseTime)
	gone := newTestMeasurement("u1", "Budi", models.SexMale, "6 bulan", baseTime.Add(time.Hour))
	gone.ChildID = first.ChildID
	for _, m := range []*models.Measurement{first, gone} {
		if err := repo.CreateMeasurement(ctx, m); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
	}
	if err := repo.DeleteMeasurement(ctx, gone.ID.String()); err != nil {
		t.Fatalf("DeleteMeasurement failed: %v", err)
	}

	first.ChildName = "Budiman"
	gone.ChildName = "Budiman"
	err := repo.UpdateMeasurements(ctx, []*models.Measurement{first, gone})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateMeasurements err = %v, want ErrNotFound", err)
	}

	got, err := repo.GetMeasurement(ctx, first.ID.String())
	if err != nil {
		t.Fatalf("GetMeasurement failed: %v", err)
	}
	if got.ChildName != "Budi" {
		t.Errorf("ChildName = %q after failed batch, want Budi", got.ChildName)
	}

	// A batch of live rows still applies.
	if err := repo.UpdateMeasurements(ctx, []*models.Measurement{first}); err != nil {
		t.Fatalf("UpdateMeasurements failed: %v", err)
	}
	got, _ = repo.GetMeasurement(ctx, first.ID.String())
	if got.ChildName != "Budiman" {
		t.Errorf("ChildName = %q, want Budiman", got.ChildName)
	}
}

func testBatchDeleteRollsBack(t *testing.T, repo Repository) {
	ctx := context.Background()
	a := newTestMeasurement("u1", "Siti", models.SexFemale, "5 bulan", baseTime)
	b := newTestMeasurement("u1", "Siti", models.SexFemale, "6 bulan", baseTime.Add(time.Hour))
	for _, m := range []*models.Measurement{a, b} {
		if err := repo.CreateMeasurement(ctx, m); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
	}

	err := repo.DeleteMeasurements(ctx, []string{a.ID.String(), uuid.New().String()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteMeasurements err = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetMeasurement(ctx, a.ID.String()); err != nil {
		t.Errorf("row deleted by failed batch: %v", err)
	}

	if err := repo.DeleteMeasurements(ctx, []string{a.ID.String(), b.ID.String()}); err != nil {
		t.Fatalf("DeleteMeasurements failed: %v", err)
	}
	live, err := repo.ListMeasurements(ctx, nil)
	if err != nil {
		t.Fatalf("ListMeasurements failed: %v", err)
	}
	if len(live) != 0 {
		t.Errorf("got %d live rows, want 0", len(live))
	}
}

func testLiteralWildcards(t *testing.T, repo Repository) {
	ctx := context.Background()
	plain := newTestMeasurement("u1", "Budi", models.SexMale, "5 bulan", baseTime)
	odd := newTestMeasurement("u1", "Ani_2", models.SexFemale, "5 bulan", baseTime.Add(time.Minute))
	for _, m := range []*models.Measurement{plain, odd} {
		if err := repo.CreateMeasurement(ctx, m); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter *MeasurementFilter
		want   int
	}{
		{"percent", &MeasurementFilter{ChildName: "%"}, 0},
		{"underscore", &MeasurementFilter{ChildName: "_"}, 1},
		{"underscore in name", &MeasurementFilter{ChildName: "i_2"}, 1},
		{"underscore not any char", &MeasurementFilter{ChildName: "B_di"}, 0},
		{"percent category", &MeasurementFilter{Category: "%"}, 0},
		{"backslash", &MeasurementFilter{ChildName: `\`}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListMeasurements(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListMeasurements failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d records, want %d", len(got), tt.want)
			}
		})
	}

	// A wildcard is not a usable ID prefix either.
	if _, err := repo.GetMeasurement(ctx, "%"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMeasurement(%%) err = %v, want ErrNotFound", err)
	}
}

func TestDataDirFollowsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	if got := DataDir(); got != "/tmp/xdg-data/growth" {
		t.Errorf("DataDir = %s", got)
	}
	if got := DefaultDBPath(); got != "/tmp/xdg-data/growth/growth.db" {
		t.Errorf("DefaultDBPath = %s", got)
	}
}

func TestIsDirNonEmpty(t *testing.T) {
	dir := t.TempDir()

	if nonEmpty, err := IsDirNonEmpty(filepath.Join(dir, "missing")); err != nil || nonEmpty {
		t.Errorf("missing dir: nonEmpty=%v err=%v", nonEmpty, err)
	}
	if nonEmpty, err := IsDirNonEmpty(dir); err != nil || nonEmpty {
		t.Errorf("empty dir: nonEmpty=%v err=%v", nonEmpty, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "x"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if nonEmpty, err := IsDirNonEmpty(dir); err != nil || !nonEmpty {
		t.Errorf("populated dir: nonEmpty=%v err=%v", nonEmpty, err)
	}
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "growth-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	dbPath := filepath.Join(tmpDir, "growth.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}
