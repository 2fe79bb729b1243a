package model

import (
	"github.com/manav03panchal/tasklog/internal/calendar"
)

// Percent bounds for a daily log.
const (
	MinPercent = 0
	MaxPercent = 100
)

// Log is one calendar day's progress record for a task. (TaskID, Date) is unique.
type Log struct {
	ID      string        `json:"id"`
	TaskID  string        `json:"task_id"`
	Date    calendar.Date `json:"log_date"`
	Notes   string        `json:"progress"`
	Percent int           `json:"percent" validate:"min=0,max=100"`
}

// NewLog creates an empty log row for the given day.
func NewLog(taskID string, date calendar.Date) *Log {
	return &Log{
		ID:     NewID(),
		TaskID: taskID,
		Date:   date,
	}
}

// Done reports whether the day is marked fully complete.
func (l *Log) Done() bool {
	return l.Percent >= MaxPercent
}

// LogDates extracts the dates of logs, preserving order.
func LogDates(logs []Log) []calendar.Date {
	dates := make([]calendar.Date, len(logs))
	for i, l := range logs {
		dates[i] = l.Date
	}
	return dates
}
