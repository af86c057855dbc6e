// ABOUTME: Tests for all-or-none batch writes on the KV backends.
// ABOUTME: Covers Badger transactions and the restore path for plain stores.
package charm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/growth/internal/models"
	"github.com/harperreed/growth/internal/storage"
)

// flakyStore fails the failOn-th Set call. It hides SetBatch so the client
// takes the sequential path.
type flakyStore struct {
	kvStore
	failOn int
	sets   int
}

func (s *flakyStore) Set(key, value []byte) error {
	s.sets++
	if s.sets == s.failOn {
		return errors.New("disk full")
	}
	return s.kvStore.Set(key, value)
}

func seedPair(t *testing.T, c *Client) (*models.Measurement, *models.Measurement) {
	t.Helper()
	ctx := context.Background()
	a := newMeasurement("u1", "Budi", "5 bulan", baseTime)
	b := newMeasurement("u1", "Budi", "6 bulan", baseTime.Add(time.Hour))
	b.ChildID = a.ChildID
	for _, m := range []*models.Measurement{a, b} {
		if err := c.CreateMeasurement(ctx, m); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
	}
	return a, b
}

func TestUpdateMeasurementsUnknownIDWritesNothing(t *testing.T) {
	c := setupLocal(t)
	ctx := context.Background()
	a, _ := seedPair(t, c)

	renamed := *a
	renamed.ChildName = "Budiman"
	ghost := newMeasurement("u1", "Budiman", "7 bulan", baseTime)

	err := c.UpdateMeasurements(ctx, []*models.Measurement{&renamed, ghost})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("UpdateMeasurements err = %v, want ErrNotFound", err)
	}
	got, err := c.GetMeasurement(ctx, a.ID.String())
	if err != nil {
		t.Fatalf("GetMeasurement failed: %v", err)
	}
	if got.ChildName != "Budi" {
		t.Errorf("ChildName = %q, want Budi", got.ChildName)
	}
}

func TestBatchRestoresOnPlainStore(t *testing.T) {
	c := setupLocal(t)
	ctx := context.Background()
	a, b := seedPair(t, c)

	c.kv = &flakyStore{kvStore: c.kv, failOn: 2}

	ra, rb := *a, *b
	ra.ChildName, rb.ChildName = "Budiman", "Budiman"
	if err := c.UpdateMeasurements(ctx, []*models.Measurement{&ra, &rb}); err == nil {
		t.Fatal("UpdateMeasurements succeeded, want write failure")
	}

	rows, err := c.ListMeasurements(ctx, &storage.MeasurementFilter{ChildID: a.ChildID})
	if err != nil {
		t.Fatalf("ListMeasurements failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for _, m := range rows {
		if m.ChildName != "Budi" {
			t.Errorf("%s ChildName = %q after failed batch, want Budi", m.ID, m.ChildName)
		}
	}
}

func TestDeleteMeasurementsBatch(t *testing.T) {
	c := setupLocal(t)
	ctx := context.Background()
	a, b := seedPair(t, c)

	err := c.DeleteMeasurements(ctx, []string{a.ID.String(), uuid.New().String()})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("DeleteMeasurements err = %v, want ErrNotFound", err)
	}
	if _, err := c.GetMeasurement(ctx, a.ID.String()); err != nil {
		t.Errorf("row deleted by failed batch: %v", err)
	}

	if err := c.DeleteMeasurements(ctx, []string{a.ID.String(), b.ID.String()}); err != nil {
		t.Fatalf("DeleteMeasurements failed: %v", err)
	}
	all, err := c.ListMeasurements(ctx, &storage.MeasurementFilter{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("ListMeasurements failed: %v", err)
	}
	for _, m := range all {
		if !m.IsDeleted() {
			t.Errorf("%s still live", m.ID)
		}
	}
}

func TestListMatchesWildcardsLiterally(t *testing.T) {
	c := setupLocal(t)
	ctx := context.Background()
	for _, name := range []string{"Budi", "Ani_2"} {
		if err := c.CreateMeasurement(ctx, newMeasurement("u1", name, "5 bulan", baseTime)); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
	}

	tests := []struct {
		name string
		want int
	}{
		{"%", 0},
		{"_", 1},
		{"B_di", 0},
	}
	for _, tt := range tests {
		got, err := c.ListMeasurements(ctx, &storage.MeasurementFilter{ChildName: tt.name})
		if err != nil {
			t.Fatalf("ListMeasurements failed: %v", err)
		}
		if len(got) != tt.want {
			t.Errorf("ChildName %q: got %d, want %d", tt.name, len(got), tt.want)
		}
	}
}
