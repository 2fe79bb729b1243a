package model

import (
	"time"

	"github.com/manav03panchal/tasklog/internal/calendar"
)

// Task is a named unit of work that owns one Log per day of [Start, End].
type Task struct {
	ID        string        `json:"id"`
	Name      string        `json:"name" validate:"notblank,max=200"`
	Start     calendar.Date `json:"start_date"`
	End       calendar.Date `json:"end_date"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewTask creates a new task with a generated ID.
func NewTask(name string, start, end calendar.Date, now time.Time) *Task {
	return &Task{
		ID:        NewID(),
		Name:      name,
		Start:     start,
		End:       end,
		UpdatedAt: now,
	}
}

// Days returns the number of calendar days the task spans.
func (t *Task) Days() int {
	return calendar.Days(t.Start, t.End)
}

// Covers reports whether d falls inside the task's window.
func (t *Task) Covers(d calendar.Date) bool {
	return d.Within(t.Start, t.End)
}

// Dates returns every date the task owns a log for.
func (t *Task) Dates() []calendar.Date {
	dates, err := calendar.Expand(t.Start, t.End)
	if err != nil {
		return nil
	}
	return dates
}
