// Package tracker owns the task aggregate: a task, exactly one daily log per
// calendar day in its window, and the derived summary. Every change is an
// explicit command run as an ordered syncer plan against the data store.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/tasklog/internal/calendar"
	"github.com/manav03panchal/tasklog/internal/errors"
	"github.com/manav03panchal/tasklog/internal/logging"
	"github.com/manav03panchal/tasklog/internal/model"
	"github.com/manav03panchal/tasklog/internal/reconcile"
	"github.com/manav03panchal/tasklog/internal/store"
	"github.com/manav03panchal/tasklog/internal/syncer"
	"github.com/manav03panchal/tasklog/internal/validate"
)

// AttachmentRemover deletes the documents attached to logs.
type AttachmentRemover interface {
	RemoveForLogs(ctx context.Context, logIDs []string) (int, *syncer.Report, error)
}

// Options configures a Service.
type Options struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Service handles task commands and queries.
type Service struct {
	data        store.DataStore
	attachments AttachmentRemover
	now         func() time.Time
}

// NewService creates a Service.
func NewService(data store.DataStore, attachments AttachmentRemover, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{data: data, attachments: attachments, now: now}
}

// =============================================================================
// Commands
// =============================================================================

// Create inserts the task, then its logs. When the second step fails the
// task is returned together with the error; its missing days show up as
// incomplete coverage and Repair fills them.
func (s *Service) Create(ctx context.Context, cmd CreateTask) (*model.Task, error) {
	name, err := validate.TaskName(cmd.Name)
	if err != nil {
		return nil, err
	}
	if err := validate.Range(cmd.Start, cmd.End); err != nil {
		return nil, err
	}

	task := model.NewTask(name, cmd.Start, cmd.End, s.now())
	ctx = logging.WithTask(ctx, task.ID)
	_, err = syncer.New("create_task").
		Step("insert_task", func(ctx context.Context) error {
			return s.data.InsertTask(ctx, task)
		}).
		Step("create_logs", func(ctx context.Context) error {
			_, err := s.data.EnsureLogs(ctx, task.ID, task.Dates())
			return err
		}).
		Run(ctx)
	if err != nil {
		var se *syncer.StepError
		if errors.As(err, &se) && se.Partial() {
			return task, err
		}
		return nil, err
	}

	logging.FromContext(ctx).Debug("task created", logging.KeyCount, task.Days())
	return task, nil
}

// Rename changes the task name and bumps updated_at.
func (s *Service) Rename(ctx context.Context, cmd RenameTask) (*model.Task, error) {
	if err := validate.Struct(cmd); err != nil {
		return nil, err
	}
	name, err := validate.TaskName(cmd.Name)
	if err != nil {
		return nil, err
	}

	if err := s.data.UpdateTaskName(ctx, cmd.TaskID, name, s.now()); err != nil {
		return nil, err
	}
	return s.data.GetTask(ctx, cmd.TaskID)
}

// UpdateRange moves the task window and reconciles its logs: days only in
// the new window get empty logs, days only in the old window lose theirs, and
// every other day keeps its notes and percent.
//
// Days leaving the window that hold documents fail the command with an
// AttachmentConflictError unless DropAttachments is set, in which case their
// documents are removed first.
func (s *Service) UpdateRange(ctx context.Context, cmd UpdateRange) (*RangeResult, error) {
	if err := validate.Struct(cmd); err != nil {
		return nil, err
	}
	if err := validate.Range(cmd.Start, cmd.End); err != nil {
		return nil, err
	}

	task, err := s.data.GetTask(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	return s.reconcile(ctx, "update_range", task, cmd.Start, cmd.End, cmd.DropAttachments, func(ctx context.Context) error {
		return s.data.UpdateTaskRange(ctx, task.ID, cmd.Start, cmd.End, s.now())
	})
}

// Repair reconciles the stored logs against the stored window. It is the
// retry path after a partially applied command and is idempotent.
func (s *Service) Repair(ctx context.Context, taskID string, dropAttachments bool) (*RangeResult, error) {
	if err := validate.NonEmpty("task_id", taskID); err != nil {
		return nil, err
	}

	task, err := s.data.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, "repair_task", task, task.Start, task.End, dropAttachments, nil)
}

// reconcile computes the log plan for [start, end] and applies it after the
// optional first step.
func (s *Service) reconcile(ctx context.Context, name string, task *model.Task, start, end calendar.Date,
	dropAttachments bool, first syncer.StepFunc) (*RangeResult, error) {
	ctx = logging.WithTask(ctx, task.ID)
	logs, err := s.data.ListLogs(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	plan, err := reconcile.ForRange(start, end, model.LogDates(logs))
	if err != nil {
		return nil, err
	}

	doomed := logsOn(logs, plan.ToDelete)
	docs, err := s.data.ListDocumentsForLogs(ctx, logIDs(doomed))
	if err != nil {
		return nil, err
	}
	if len(docs) > 0 && (!dropAttachments || s.attachments == nil) {
		return nil, &errors.AttachmentConflictError{Dates: datesWithDocs(doomed, docs), Documents: len(docs)}
	}

	result := &RangeResult{Plan: plan}
	p := syncer.New(name)
	if first != nil {
		p.Step("update_task", first)
	}
	if len(docs) > 0 {
		p.Step("remove_attachments", func(ctx context.Context) error {
			n, report, err := s.attachments.RemoveForLogs(ctx, logIDs(doomed))
			result.DocumentsRemoved = n
			if report != nil {
				result.Warnings = append(result.Warnings, report.Warnings...)
			}
			return err
		})
	}
	p.Step("create_logs", func(ctx context.Context) error {
		result.Created, err = s.data.EnsureLogs(ctx, task.ID, plan.ToCreate)
		return err
	})
	p.Step("delete_logs", func(ctx context.Context) error {
		result.Deleted, err = s.data.DeleteLogs(ctx, task.ID, plan.ToDelete)
		return err
	})

	if _, err := p.Run(ctx); err != nil {
		return result, err
	}

	logging.FromContext(ctx).Debug("logs reconciled",
		"created", result.Created, "deleted", result.Deleted)
	return result, nil
}

// RecordProgress updates the day's notes and/or percent. Input is checked
// before any write: a bad percent or an empty command is a ValidationError,
// a date outside the window is an OutOfRangeError.
func (s *Service) RecordProgress(ctx context.Context, cmd RecordProgress) (*model.Log, error) {
	if err := validate.Struct(cmd); err != nil {
		return nil, err
	}
	if cmd.Date.IsZero() {
		return nil, errors.NewValidationError("date", "a date is required")
	}
	if cmd.Notes == nil && cmd.Percent == nil {
		return nil, errors.NewValidationError("progress", "supply notes, a percent, or both")
	}

	update := store.LogUpdate{Percent: cmd.Percent}
	if cmd.Percent != nil {
		if err := validate.Percent(*cmd.Percent); err != nil {
			return nil, err
		}
	}
	if cmd.Notes != nil {
		notes, err := validate.Notes(*cmd.Notes)
		if err != nil {
			return nil, err
		}
		update.Notes = &notes
	}

	task, err := s.data.GetTask(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}
	if !task.Covers(cmd.Date) {
		return nil, &errors.OutOfRangeError{Date: cmd.Date, Start: task.Start, End: task.End}
	}

	ctx = logging.WithTask(ctx, task.ID)
	var l *model.Log
	_, err = syncer.New("record_progress").
		Step("ensure_log", func(ctx context.Context) error {
			_, err := s.data.EnsureLogs(ctx, task.ID, []calendar.Date{cmd.Date})
			return err
		}).
		Step("update_log", func(ctx context.Context) error {
			existing, err := s.data.GetLogByDate(ctx, task.ID, cmd.Date)
			if err != nil {
				return err
			}
			if err := s.data.UpdateLog(ctx, existing.ID, update); err != nil {
				return err
			}
			l, err = s.data.GetLog(ctx, existing.ID)
			return err
		}).
		Step("touch_task", func(ctx context.Context) error {
			return s.data.TouchTask(ctx, task.ID, s.now())
		}).
		Run(ctx)
	if err != nil {
		return l, err
	}
	return l, nil
}

// MarkComplete records 100% for the day, saving notes when supplied.
func (s *Service) MarkComplete(ctx context.Context, cmd MarkComplete) (*model.Log, error) {
	done := model.MaxPercent
	return s.RecordProgress(ctx, RecordProgress{
		TaskID:  cmd.TaskID,
		Date:    cmd.Date,
		Notes:   cmd.Notes,
		Percent: &done,
	})
}

// EnsureDay returns the day's log, creating an empty one if it is missing.
// Existing notes and percent are never reset.
func (s *Service) EnsureDay(ctx context.Context, taskID string, date calendar.Date) (*model.Log, error) {
	task, err := s.data.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.Covers(date) {
		return nil, &errors.OutOfRangeError{Date: date, Start: task.Start, End: task.End}
	}
	if _, err := s.data.EnsureLogs(ctx, task.ID, []calendar.Date{date}); err != nil {
		return nil, err
	}
	return s.data.GetLogByDate(ctx, task.ID, date)
}

// =============================================================================
// Queries
// =============================================================================

// Get returns the task with its logs in date order, summary and coverage.
func (s *Service) Get(ctx context.Context, id string) (*TaskView, error) {
	task, err := s.data.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, task)
}

// List returns every task, most recently updated first.
func (s *Service) List(ctx context.Context) ([]TaskView, error) {
	tasks, err := s.data.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		v, err := s.view(ctx, &tasks[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// Resolve finds a task by full ID or by a unique ID prefix, as printed in
// task lists.
func (s *Service) Resolve(ctx context.Context, ref string) (*model.Task, error) {
	ref = strings.TrimSpace(ref)
	if err := validate.NonEmpty("task_id", ref); err != nil {
		return nil, err
	}

	task, err := s.data.GetTask(ctx, ref)
	if err == nil || !errors.Is(err, errors.ErrNotFound) {
		return task, err
	}

	tasks, err := s.data.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	var matches []model.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return nil, errors.NewNotFoundError("task", ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, errors.NewUserErrorWithField("task_id", ref,
			fmt.Sprintf("%d tasks start with %q", len(matches), ref),
			"Use more characters of the ID.")
	}
}

// Day returns the log for one day of the task.
func (s *Service) Day(ctx context.Context, taskID string, date calendar.Date) (*model.Log, error) {
	task, err := s.data.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.Covers(date) {
		return nil, &errors.OutOfRangeError{Date: date, Start: task.Start, End: task.End}
	}
	return s.data.GetLogByDate(ctx, task.ID, date)
}

func (s *Service) view(ctx context.Context, task *model.Task) (*TaskView, error) {
	logs, err := s.data.ListLogs(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	return &TaskView{
		Task:     *task,
		Logs:     logs,
		Summary:  model.ComputeSummary(task, logs),
		Coverage: model.CheckCoverage(task, logs),
	}, nil
}

// =============================================================================
// Helpers
// =============================================================================

func logsOn(logs []model.Log, dates []calendar.Date) []model.Log {
	want := calendar.NewSet(dates...)
	var out []model.Log
	for _, l := range logs {
		if want.Has(l.Date) {
			out = append(out, l)
		}
	}
	return out
}

func logIDs(logs []model.Log) []string {
	ids := make([]string, len(logs))
	for i, l := range logs {
		ids[i] = l.ID
	}
	return ids
}

func datesWithDocs(logs []model.Log, docs []model.Document) []calendar.Date {
	byID := make(map[string]calendar.Date, len(logs))
	for _, l := range logs {
		byID[l.ID] = l.Date
	}
	set := calendar.NewSet()
	for _, d := range docs {
		if date, ok := byID[d.LogID]; ok {
			set[date] = struct{}{}
		}
	}
	return set.Sorted()
}
