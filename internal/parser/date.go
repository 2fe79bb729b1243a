// Package parser turns command-line input into dates and percentages.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"

	"github.com/manav03panchal/tasklog/internal/calendar"
)

// offsetRegex matches day offsets like "+3", "-1" or "+2d".
var offsetRegex = regexp.MustCompile(`^([+-]\d{1,4})d?$`)

// ParseDate parses a calendar date relative to now. It accepts ISO dates,
// "today", "yesterday", "tomorrow", day offsets ("+3", "-1d") and natural
// language understood by go-dateparser ("next friday", "3 days ago").
func ParseDate(input string, now time.Time) (calendar.Date, error) {
	input = strings.TrimSpace(input)
	today := calendar.DateOf(now)

	switch strings.ToLower(input) {
	case "", "today", "now":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	case "tomorrow":
		return today.AddDays(1), nil
	}

	if d, err := calendar.ParseDate(input); err == nil {
		return d, nil
	}

	if match := offsetRegex.FindStringSubmatch(input); match != nil {
		n, err := strconv.Atoi(match[1])
		if err == nil {
			return today.AddDays(n), nil
		}
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return calendar.Date{}, NewDateError(input)
	}
	return calendar.DateOf(result.Time), nil
}

// ParseRange parses a start and end date. An empty end means the same day
// as start.
func ParseRange(start, end string, now time.Time) (calendar.Date, calendar.Date, error) {
	s, err := ParseDate(start, now)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	if strings.TrimSpace(end) == "" {
		return s, s, nil
	}
	e, err := ParseDate(end, now)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	return s, e, nil
}
