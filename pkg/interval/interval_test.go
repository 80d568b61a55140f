package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlap(t *testing.T) {
	base := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical", at(0), at(50), at(0), at(50), true},
		{"partial overlap", at(0), at(50), at(20), at(70), true},
		{"contained", at(0), at(50), at(10), at(40), true},
		{"touching boundaries", at(0), at(50), at(50), at(100), false},
		{"disjoint", at(0), at(50), at(60), at(110), false},
		{"b before a touching", at(50), at(100), at(0), at(50), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			assert.Equal(t, tt.want, Overlap(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd), "overlap must be symmetric")
		})
	}
}

func TestOverlapMinutes(t *testing.T) {
	assert.True(t, OverlapMinutes(540, 590, 560, 610))
	assert.False(t, OverlapMinutes(540, 590, 590, 640))
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:20")
	assert.NoError(t, err)
	assert.Equal(t, TimeOfDay(560), tod)
	assert.Equal(t, "09:20", tod.String())

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("abc")
	assert.Error(t, err)
}

func TestTimeOfDayAt(t *testing.T) {
	tod, _ := ParseTimeOfDay("08:00")
	d := time.Date(2024, 6, 9, 17, 45, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 9, 8, 0, 0, 0, time.UTC), tod.At(d))
}

func TestTimeOfDayJSON(t *testing.T) {
	tod := TimeOfDay(14 * 60)
	data, err := tod.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"14:00"`, string(data))

	var parsed TimeOfDay
	assert.NoError(t, parsed.UnmarshalJSON([]byte(`"14:30"`)))
	assert.Equal(t, TimeOfDay(870), parsed)

	assert.Error(t, parsed.UnmarshalJSON([]byte(`"nope"`)))
}
