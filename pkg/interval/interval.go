package interval

import "time"

// Overlap reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// OverlapMinutes is the same test for time-of-day windows expressed as
// minutes from midnight.
func OverlapMinutes(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && aEnd > bStart
}
