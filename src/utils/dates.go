package utils

import (
	"fmt"
	"time"
)

const (
	sessionOpenHour   = 9
	sessionOpenMinute = 30
	SessionLength     = 6*time.Hour + 30*time.Minute
)

func GenerateDates(startDate, endDate time.Time, interval time.Duration) ([]time.Time, error) {
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("endDate must be after startDate")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}

	var dates []time.Time
	for currentDate := startDate; !currentDate.After(endDate); currentDate = currentDate.Add(interval) {
		dates = append(dates, currentDate)
	}
	return dates, nil
}

// SessionOpen returns the most recent 09:30 market open at or before now, in UTC.
// Weekends and holidays are not skipped.
func SessionOpen(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	open := time.Date(local.Year(), local.Month(), local.Day(), sessionOpenHour, sessionOpenMinute, 0, 0, loc)
	if local.Before(open) {
		open = open.AddDate(0, 0, -1)
	}
	return open.UTC()
}
