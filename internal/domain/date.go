package domain

import "time"

const dateLayout = "2006-01-02"

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, NewValidationError("date", "must be YYYY-MM-DD")
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return DateOf(t).Format(dateLayout)
}

// Nights lists every night in [checkIn, checkOut).
func Nights(checkIn, checkOut time.Time) []time.Time {
	start, end := DateOf(checkIn), DateOf(checkOut)
	var out []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func IsWeekend(t time.Time) bool {
	switch DateOf(t).Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}
