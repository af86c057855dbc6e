// ABOUTME: SQL WHERE clause construction shared by the SQLite and Postgres backends.
// ABOUTME: Also provides the in-memory equivalent used by key-value backends.
package storage

import (
	"sort"
	"strings"

	"github.com/harperreed/growth/internal/children"
	"github.com/harperreed/growth/internal/models"
)

const measurementColumns = `id, child_id, child_name, age_text, height, weight, gender, bmi,
	height_category, weight_category, mass_category, creator_id, created_at, updated_at, deleted_at`

// likeEscaper makes user text literal inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeContains and likePrefix build patterns used with " ESCAPE '\'".
func likeContains(s string) string { return "%" + likeEscaper.Replace(s) + "%" }
func likePrefix(s string) string { return likeEscaper.Replace(s) + "%" }

const likeEscape = ` ESCAPE '\'`

// whereClause renders the filter as " WHERE ..." plus args. placeholder
// returns the bind marker for the n-th argument (1-based); like is the
// case-insensitive match operator of the dialect. Name and category text
// match literally on every backend.
func (f *MeasurementFilter) whereClause(placeholder func(n int) string, like string) (string, []any) {
	if f == nil {
		f = &MeasurementFilter{}
	}

	var conds []string
	var args []any
	bind := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if !f.IncludeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if f.CreatorID != "" {
		conds = append(conds, "creator_id = "+bind(f.CreatorID))
	}
	if f.ChildID != "" {
		conds = append(conds, "child_id = "+bind(f.ChildID))
	}
	if f.ChildName != "" {
		conds = append(conds, "child_name "+like+" "+bind(likeContains(f.ChildName))+likeEscape)
	}
	if f.Category != "" {
		pattern := likeContains(f.Category)
		conds = append(conds, "(height_category "+like+" "+bind(pattern)+likeEscape+
			" OR weight_category "+like+" "+bind(pattern)+likeEscape+
			" OR mass_category "+like+" "+bind(pattern)+likeEscape+")")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Match reports whether m passes the filter. Used by backends that filter
// client-side.
func (f *MeasurementFilter) Match(m *models.Measurement) bool {
	if f == nil {
		return m.DeletedAt == nil
	}
	if !f.IncludeDeleted && m.DeletedAt != nil {
		return false
	}
	if f.CreatorID != "" && m.CreatorID != f.CreatorID {
		return false
	}
	if f.ChildID != "" && m.ChildID != f.ChildID {
		return false
	}
	return children.NameMatches(m, f.ChildName) && children.CategoryMatches(m, f.Category)
}

// Apply filters, sorts and limits an in-memory slice.
func (f *MeasurementFilter) Apply(all []*models.Measurement) []*models.Measurement {
	var out []*models.Measurement
	for _, m := range all {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	SortNewestFirst(out)
	if f != nil && f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// SortNewestFirst orders by CreatedAt descending, then ID descending.
func SortNewestFirst(ms []*models.Measurement) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].CreatedAt.After(ms[j].CreatedAt)
		}
		return ms[i].ID.String() > ms[j].ID.String()
	})
}

// isFullUUID reports whether s looks like a complete UUID rather than a prefix.
func isFullUUID(s string) bool {
	return len(s) == 36 && strings.Count(s, "-") == 4
}
