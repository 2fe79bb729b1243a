package model

import (
	"math"

	"github.com/manav03panchal/tasklog/internal/calendar"
)

// Summary holds the derived figures shown for a task.
type Summary struct {
	Days        int `json:"days"`
	DonePercent int `json:"done_percent"`
	Logged      int `json:"logged"`
}

// ComputeSummary derives days and the rounded mean completion of logs.
func ComputeSummary(task *Task, logs []Log) Summary {
	s := Summary{
		Days:   task.Days(),
		Logged: len(logs),
	}
	if len(logs) == 0 {
		return s
	}

	total := 0
	for _, l := range logs {
		total += l.Percent
	}
	s.DonePercent = int(math.Round(float64(total) / float64(len(logs))))
	return s
}

// Coverage compares the logs a task should own with the logs that exist.
type Coverage struct {
	Expected int             `json:"expected"`
	Present  int             `json:"present"`
	Missing  []calendar.Date `json:"missing,omitempty"`
	Extra    []calendar.Date `json:"extra,omitempty"`
}

// Complete reports whether every day has exactly one log and nothing else.
func (c Coverage) Complete() bool {
	return len(c.Missing) == 0 && len(c.Extra) == 0
}

// CheckCoverage reports missing and out-of-range log dates for task.
func CheckCoverage(task *Task, logs []Log) Coverage {
	want := calendar.NewSet(task.Dates()...)
	have := calendar.NewSet(LogDates(logs)...)
	return Coverage{
		Expected: len(want),
		Present:  len(have),
		Missing:  want.Minus(have),
		Extra:    have.Minus(want),
	}
}
