package reminder

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
)

var durationPattern = regexp.MustCompile(`^\s*(\d+)\s*(\p{L}*)\s*$`)

// Unit synonyms accepted in prescription durations, Vietnamese and
// English, with and without diacritics.
var unitDays = map[string]int{
	"":       1,
	"ngày":   1,
	"ngay":   1,
	"day":    1,
	"days":   1,
	"tuần":   7,
	"tuan":   7,
	"week":   7,
	"weeks":  7,
	"tháng":  30,
	"thang":  30,
	"month":  30,
	"months": 30,
}

// ParseDurationDays turns a free-form prescription duration into a day
// count. A bare integer is read as days.
func ParseDurationDays(input string) (int, error) {
	match := durationPattern.FindStringSubmatch(strings.ToLower(input))
	if match == nil {
		return 0, apperrors.InvalidDuration(input)
	}

	n, err := strconv.Atoi(match[1])
	if err != nil || n <= 0 {
		return 0, apperrors.InvalidDuration(input)
	}

	multiplier, ok := unitDays[match[2]]
	if !ok {
		return 0, apperrors.InvalidDuration(input)
	}

	return n * multiplier, nil
}
