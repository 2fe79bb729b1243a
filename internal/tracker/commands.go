package tracker

import (
	"github.com/manav03panchal/tasklog/internal/calendar"
	"github.com/manav03panchal/tasklog/internal/model"
	"github.com/manav03panchal/tasklog/internal/reconcile"
	"github.com/manav03panchal/tasklog/internal/syncer"
)

// CreateTask creates a task and one empty log per day of [Start, End].
type CreateTask struct {
	Name  string
	Start calendar.Date
	End   calendar.Date
}

// RenameTask changes a task's name.
type RenameTask struct {
	TaskID string `json:"task_id" validate:"required"`
	Name   string
}

// UpdateRange moves a task's window. Logs on days kept by both windows are
// preserved. DropAttachments allows removing days that still hold documents.
type UpdateRange struct {
	TaskID          string `json:"task_id" validate:"required"`
	Start           calendar.Date
	End             calendar.Date
	DropAttachments bool
}

// RecordProgress updates one day. Nil fields are left as they are.
type RecordProgress struct {
	TaskID  string `json:"task_id" validate:"required"`
	Date    calendar.Date
	Notes   *string
	Percent *int
}

// MarkComplete sets a day to 100%, saving Notes when given.
type MarkComplete struct {
	TaskID string `json:"task_id" validate:"required"`
	Date   calendar.Date
	Notes  *string
}

// TaskView is a task with its logs and derived figures.
type TaskView struct {
	Task     model.Task     `json:"task"`
	Logs     []model.Log    `json:"logs"`
	Summary  model.Summary  `json:"summary"`
	Coverage model.Coverage `json:"coverage"`
}

// RangeResult describes what a range update or repair changed.
type RangeResult struct {
	Plan             reconcile.Plan   `json:"plan"`
	Created          int              `json:"created"`
	Deleted          int              `json:"deleted"`
	DocumentsRemoved int              `json:"documents_removed"`
	Warnings         []syncer.Warning `json:"warnings,omitempty"`
}
