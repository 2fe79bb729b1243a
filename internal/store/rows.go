package store

import (
	"time"

	"github.com/manav03panchal/tasklog/internal/calendar"
	"github.com/manav03panchal/tasklog/internal/model"
)

type taskRow struct {
	ID        string        `gorm:"primaryKey;type:varchar(36)"`
	Name      string        `gorm:"not null"`
	StartDate calendar.Date `gorm:"column:start_date;not null"`
	EndDate   calendar.Date `gorm:"column:end_date;not null"`
	UpdatedAt time.Time     `gorm:"column:updated_at;not null;index;autoUpdateTime:false"`
}

func (taskRow) TableName() string { return "tasks" }

type logRow struct {
	ID       string        `gorm:"primaryKey;type:varchar(36)"`
	TaskID   string        `gorm:"type:varchar(36);not null;uniqueIndex:idx_logs_task_date,priority:1"`
	LogDate  calendar.Date `gorm:"column:log_date;not null;uniqueIndex:idx_logs_task_date,priority:2"`
	Progress string        `gorm:"column:progress;not null"`
	Percent  int           `gorm:"not null;check:percent >= 0 AND percent <= 100"`
}

func (logRow) TableName() string { return "logs" }

type docRow struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	LogID       string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_docs_log_path,priority:1"`
	Filename    string    `gorm:"not null"`
	Path        string    `gorm:"type:varchar(1024);not null;uniqueIndex:idx_docs_log_path,priority:2"`
	ContentType string    `gorm:"not null"`
	Size        int64     `gorm:"not null"`
	UploadedAt  time.Time `gorm:"column:uploaded_at;not null"`
}

func (docRow) TableName() string { return "docs" }

func toTaskRow(t *model.Task) *taskRow {
	return &taskRow{
		ID:        t.ID,
		Name:      t.Name,
		StartDate: t.Start,
		EndDate:   t.End,
		UpdatedAt: t.UpdatedAt.UTC(),
	}
}

func (r *taskRow) toModel() model.Task {
	return model.Task{
		ID:        r.ID,
		Name:      r.Name,
		Start:     r.StartDate,
		End:       r.EndDate,
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func (r *logRow) toModel() model.Log {
	return model.Log{
		ID:      r.ID,
		TaskID:  r.TaskID,
		Date:    r.LogDate,
		Notes:   r.Progress,
		Percent: r.Percent,
	}
}

func toDocRow(d *model.Document) *docRow {
	return &docRow{
		ID:          d.ID,
		LogID:       d.LogID,
		Filename:    d.Filename,
		Path:        d.Path,
		ContentType: d.ContentType,
		Size:        d.Size,
		UploadedAt:  d.UploadedAt.UTC(),
	}
}

func (r *docRow) toModel() model.Document {
	return model.Document{
		ID:          r.ID,
		LogID:       r.LogID,
		Filename:    r.Filename,
		Path:        r.Path,
		ContentType: r.ContentType,
		Size:        r.Size,
		UploadedAt:  r.UploadedAt.UTC(),
	}
}
