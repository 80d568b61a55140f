package override

import (
	"github.com/google/uuid"

	"github.com/dteedee/medix-scheduling/internal/model"
)

// Diff is a computed three-way reconcile plan. It is produced in full
// before any mutation is issued, so a bulk upsert can never delete an
// entry that a later step of the same batch would have updated.
type Diff struct {
	Inserts []*model.Override
	Updates []*model.Override
	Deletes []uuid.UUID
}

// Reconcile matches existing and desired overrides by their
// (date, start, end) key. Entries only in desired are inserted, entries
// only in existing are deleted, entries in both are updated in place.
func Reconcile(existing, desired []*model.Override) Diff {
	existingByKey := make(map[string]*model.Override, len(existing))
	for _, o := range existing {
		existingByKey[o.Key()] = o
	}

	var diff Diff
	seen := make(map[string]struct{}, len(desired))

	for _, want := range desired {
		key := want.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if current, ok := existingByKey[key]; ok {
			updated := *want
			updated.Base = current.Base
			diff.Updates = append(diff.Updates, &updated)
		} else {
			diff.Inserts = append(diff.Inserts, want)
		}
	}

	for _, current := range existing {
		if _, ok := seen[current.Key()]; !ok {
			diff.Deletes = append(diff.Deletes, current.ID)
		}
	}

	return diff
}
