package override

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/pkg/interval"
)

func mustTOD(t *testing.T, s string) interval.TimeOfDay {
	t.Helper()
	tod, err := interval.ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func makeOverride(t *testing.T, date string, start, end string, typ model.OverrideType) *model.Override {
	t.Helper()
	day, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	return &model.Override{
		OverrideDate: day,
		StartTime:    mustTOD(t, start),
		EndTime:      mustTOD(t, end),
		OverrideType: typ,
		IsAvailable:  true,
	}
}

func withID(o *model.Override) *model.Override {
	o.ID = uuid.New()
	return o
}

func TestReconcileEmptyExisting(t *testing.T) {
	desired := []*model.Override{
		makeOverride(t, "2024-06-10", "08:00", "12:00", model.OverrideTypeOvertime),
		makeOverride(t, "2024-06-11", "00:00", "23:59", model.OverrideTypeDayOff),
	}

	diff := Reconcile(nil, desired)

	assert.Len(t, diff.Inserts, 2)
	assert.Empty(t, diff.Updates)
	assert.Empty(t, diff.Deletes)
}

func TestReconcileMatchesByDateAndWindow(t *testing.T) {
	existing := []*model.Override{
		withID(makeOverride(t, "2024-06-10", "08:00", "12:00", model.OverrideTypeOvertime)),
		withID(makeOverride(t, "2024-06-12", "14:00", "18:00", model.OverrideTypeOvertime)),
	}
	desired := []*model.Override{
		// Same key as the first existing row, different payload.
		makeOverride(t, "2024-06-10", "08:00", "12:00", model.OverrideTypeOvertime),
		// New entry.
		makeOverride(t, "2024-06-13", "09:00", "11:00", model.OverrideTypeOvertime),
	}
	desired[0].Reason = "extended clinic hours"

	diff := Reconcile(existing, desired)

	require.Len(t, diff.Updates, 1)
	assert.Equal(t, existing[0].ID, diff.Updates[0].ID)
	assert.Equal(t, "extended clinic hours", diff.Updates[0].Reason)

	require.Len(t, diff.Inserts, 1)
	assert.Equal(t, "2024-06-13", diff.Inserts[0].OverrideDate.Format("2006-01-02"))

	require.Len(t, diff.Deletes, 1)
	assert.Equal(t, existing[1].ID, diff.Deletes[0])
}

func TestReconcileDeduplicatesDesired(t *testing.T) {
	desired := []*model.Override{
		makeOverride(t, "2024-06-10", "08:00", "12:00", model.OverrideTypeOvertime),
		makeOverride(t, "2024-06-10", "08:00", "12:00", model.OverrideTypeOvertime),
	}

	diff := Reconcile(nil, desired)
	assert.Len(t, diff.Inserts, 1)
}

// Applying the same desired set against its own result must produce an
// all-updates plan with nothing inserted or deleted.
func TestReconcileIdempotent(t *testing.T) {
	desired := []*model.Override{
		makeOverride(t, "2024-06-10", "08:00", "12:00", model.OverrideTypeOvertime),
		makeOverride(t, "2024-06-11", "00:00", "23:59", model.OverrideTypeDayOff),
	}

	first := Reconcile(nil, desired)
	require.Len(t, first.Inserts, 2)

	// Simulate the applied state.
	applied := make([]*model.Override, 0, len(first.Inserts))
	for _, o := range first.Inserts {
		committed := *o
		committed.ID = uuid.New()
		applied = append(applied, &committed)
	}

	second := Reconcile(applied, desired)
	assert.Empty(t, second.Inserts)
	assert.Empty(t, second.Deletes)
	assert.Len(t, second.Updates, 2)
}
