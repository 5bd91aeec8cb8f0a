package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Period is a chart window such as "1d", "30d" or "1y".
type Period string

const (
	PeriodDay     Period = "1d"
	PeriodWeek    Period = "7d"
	PeriodMonth   Period = "30d"
	PeriodQuarter Period = "90d"
	PeriodYear    Period = "1y"

	DefaultPeriod = PeriodWeek
)

var ErrUnknownPeriod = errors.New("unknown period")

var periodRegex = regexp.MustCompile(`^(\d+)([dy])$`)

type periodWindow struct {
	lookback time.Duration
	step     time.Duration
}

const day = 24 * time.Hour

var periodsByDays = map[int]Period{
	1:   PeriodDay,
	7:   PeriodWeek,
	30:  PeriodMonth,
	90:  PeriodQuarter,
	365: PeriodYear,
}

var windows = map[Period]periodWindow{
	PeriodDay:     {lookback: SessionLength, step: 30 * time.Minute},
	PeriodWeek:    {lookback: 7 * day, step: 12 * time.Hour},
	PeriodMonth:   {lookback: 30 * day, step: day},
	PeriodQuarter: {lookback: 90 * day, step: 2 * day},
	PeriodYear:    {lookback: 365 * day, step: 7 * day},
}

// ParsePeriod accepts "<n>d" or "<n>y" for the supported windows. An empty string yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return DefaultPeriod, nil
	}
	match := periodRegex.FindStringSubmatch(s)
	if match == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
	days := n
	if match[2] == "y" {
		days = n * 365
	}
	period, ok := periodsByDays[days]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
	return period, nil
}

// Step is the spacing between samples.
func (p Period) Step() time.Duration {
	return windows[p].step
}

// Window returns the sampling range ending at now. The one day window follows the trading
// session in loc: it starts at the last open and stops at the close or now, whichever is first.
func (p Period) Window(now time.Time, loc *time.Location) (start, end time.Time) {
	now = now.UTC()
	if p == PeriodDay {
		start = SessionOpen(now, loc)
		end = start.Add(SessionLength)
		if now.Before(end) {
			end = now
		}
		return start, end
	}
	return now.Add(-windows[p].lookback), now
}
