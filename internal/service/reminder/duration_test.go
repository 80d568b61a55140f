package reminder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
)

func TestParseDurationDays(t *testing.T) {
	tests := []struct {
		input string
		days  int
	}{
		{"7 ngày", 7},
		{"7 ngay", 7},
		{"7 days", 7},
		{"1 day", 1},
		{"2 tuần", 14},
		{"2 tuan", 14},
		{"2 weeks", 14},
		{"1 tháng", 30},
		{"1 thang", 30},
		{"1 month", 30},
		{"10", 10},
		{" 10 ", 10},
		{"3NGÀY", 3},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			days, err := ParseDurationDays(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.days, days)
		})
	}
}

func TestParseDurationDaysRejectsGarbage(t *testing.T) {
	inputs := []string{
		"",
		"abc",
		"ngày 7",
		"0 ngày",
		"-3 days",
		"7 fortnights",
		"7.5 days",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDurationDays(input)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidDuration))
		})
	}
}
