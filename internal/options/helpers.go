package options

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

func cloneFields(f Fields) Fields {
	out := f
	if f.Description != nil {
		desc := *f.Description
		out.Description = &desc
	}
	if f.DeletedAt != nil {
		ts := *f.DeletedAt
		out.DeletedAt = &ts
	}
	return out
}

// foldKey is the comparison form of a unique value.
func foldKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func indexByID[T Record](records []T) map[uuid.UUID]T {
	out := make(map[uuid.UUID]T, len(records))
	for _, r := range records {
		out[r.OptionFields().ID] = r
	}
	return out
}

// missingIDs returns the ids absent from found, keeping request order.
func missingIDs[T Record](ids []uuid.UUID, found map[uuid.UUID]T) []uuid.UUID {
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func sortRecords[T Record](records []T) {
	slices.SortFunc(records, func(a, b T) int {
		fa, fb := a.OptionFields(), b.OptionFields()
		if c := strings.Compare(fa.Name, fb.Name); c != 0 {
			return c
		}
		return strings.Compare(fa.ID.String(), fb.ID.String())
	})
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
