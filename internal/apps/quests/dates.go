package quests

import "time"

// DateLayout is the calendar-day key format used for quest days and notes.
const DateLayout = "2006-01-02"

// Today returns the calendar day of now shifted by the configured timezone offset.
func Today(now time.Time, offset time.Duration) string {
	return now.UTC().Add(offset).Format(DateLayout)
}

// ShiftDate moves a YYYY-MM-DD key by the given number of days.
func ShiftDate(date string, days int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(DateLayout), nil
}

// ValidDate reports whether s is a real YYYY-MM-DD calendar day.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
