// ABOUTME: Measurement CRUD operations for KV storage.
// ABOUTME: Uses type-prefixed keys, client-side filtering and soft deletes.
package charm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/growth/internal/models"
	"github.com/harperreed/growth/internal/storage"
)

var _ storage.Repository = (*Client)(nil)

func measurementKey(m *models.Measurement) string {
	return MeasurementPrefix + m.ID.String()
}

// CreateMeasurement stores a new measurement. The ID must be unused.
func (c *Client) CreateMeasurement(_ context.Context, m *models.Measurement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := measurementKey(m)
	exists, err := c.hasKey(key)
	if err != nil {
		return fmt.Errorf("create measurement: %w", err)
	}
	if exists {
		return fmt.Errorf("create measurement: %s already exists", m.ID)
	}

	data, err := marshalJSON(m)
	if err != nil {
		return fmt.Errorf("marshal measurement: %w", err)
	}
	return c.set(key, data)
}

// GetMeasurement retrieves a live measurement by ID or ID prefix.
func (c *Client) GetMeasurement(_ context.Context, idOrPrefix string) (*models.Measurement, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, err := c.resolve(idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get measurement: %w", err)
	}
	return m, nil
}

// UpdateMeasurement overwrites the mutable fields of a live measurement.
// CreatorID and CreatedAt keep their stored values.
func (c *Client) UpdateMeasurement(_ context.Context, m *models.Measurement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.resolve(m.ID.String())
	if err != nil {
		return fmt.Errorf("update measurement: %w", err)
	}

	updated := *m
	updated.CreatorID = existing.CreatorID
	updated.CreatedAt = existing.CreatedAt
	updated.DeletedAt = nil

	data, err := marshalJSON(&updated)
	if err != nil {
		return fmt.Errorf("marshal measurement: %w", err)
	}
	return c.set(measurementKey(&updated), data)
}

// DeleteMeasurement soft-deletes a measurement by ID or prefix.
func (c *Client) DeleteMeasurement(_ context.Context, idOrPrefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.resolve(idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}

	now := time.Now()
	m.DeletedAt = &now
	m.UpdatedAt = now

	data, err := marshalJSON(m)
	if err != nil {
		return fmt.Errorf("marshal measurement: %w", err)
	}
	return c.set(measurementKey(m), data)
}

// UpdateMeasurements overwrites several live measurements as one batch.
// Every row is checked before anything is written.
func (c *Client) UpdateMeasurements(_ context.Context, ms []*models.Measurement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	writes := make([]kvWrite, 0, len(ms))
	for _, m := range ms {
		existing, err := c.resolve(m.ID.String())
		if err != nil {
			return fmt.Errorf("update measurements: %w", err)
		}

		updated := *m
		updated.CreatorID = existing.CreatorID
		updated.CreatedAt = existing.CreatedAt
		updated.DeletedAt = nil

		w, err := batchEntry(existing, &updated)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}
	return c.setBatch(writes)
}

// DeleteMeasurements soft-deletes measurements by full ID as one batch.
func (c *Client) DeleteMeasurements(_ context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	writes := make([]kvWrite, 0, len(ids))
	for _, id := range ids {
		existing, err := c.resolve(id)
		if err != nil {
			return fmt.Errorf("delete measurements: %w", err)
		}

		deleted := *existing
		deleted.DeletedAt = &now
		deleted.UpdatedAt = now

		w, err := batchEntry(existing, &deleted)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}
	return c.setBatch(writes)
}

func batchEntry(prev, next *models.Measurement) (kvWrite, error) {
	prevData, err := marshalJSON(prev)
	if err != nil {
		return kvWrite{}, fmt.Errorf("marshal measurement: %w", err)
	}
	data, err := marshalJSON(next)
	if err != nil {
		return kvWrite{}, fmt.Errorf("marshal measurement: %w", err)
	}
	return kvWrite{key: []byte(measurementKey(next)), value: data, prev: prevData}, nil
}

// ListMeasurements returns measurements matching filter, newest first.
func (c *Client) ListMeasurements(_ context.Context, filter *storage.MeasurementFilter) ([]*models.Measurement, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all, err := c.loadAll()
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	return filter.Apply(all), nil
}

// loadAll decodes every stored measurement. Caller holds c.mu.
func (c *Client) loadAll() ([]*models.Measurement, error) {
	entries, err := c.scanPrefix(MeasurementPrefix)
	if err != nil {
		return nil, err
	}

	var out []*models.Measurement
	for _, e := range entries {
		m, err := unmarshalJSON[models.Measurement](e.value)
		if err != nil {
			c.log.Warn().Err(err).Str("key", string(e.key)).Msg("skipping invalid entry")
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// resolve finds the single live measurement whose ID starts with idOrPrefix.
// Caller holds c.mu.
func (c *Client) resolve(idOrPrefix string) (*models.Measurement, error) {
	entries, err := c.scanPrefix(MeasurementPrefix + strings.ToLower(idOrPrefix))
	if err != nil {
		return nil, err
	}

	var matches []*models.Measurement
	for _, e := range entries {
		m, err := unmarshalJSON[models.Measurement](e.value)
		if err != nil || m.DeletedAt != nil {
			continue
		}
		matches = append(matches, m)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w %s: matches multiple records", storage.ErrAmbiguousPrefix, idOrPrefix)
	}
}
