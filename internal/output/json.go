package output

import (
	"time"

	"github.com/manav03panchal/tasklog/internal/attach"
	"github.com/manav03panchal/tasklog/internal/model"
	"github.com/manav03panchal/tasklog/internal/syncer"
	"github.com/manav03panchal/tasklog/internal/tracker"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// TaskOutput represents a task in JSON and YAML output.
type TaskOutput struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	StartDate   string       `json:"start_date" yaml:"start_date"`
	EndDate     string       `json:"end_date" yaml:"end_date"`
	UpdatedAt   string       `json:"updated_at" yaml:"updated_at"`
	Days        int          `json:"days" yaml:"days"`
	DonePercent int          `json:"done_percent" yaml:"done_percent"`
	Complete    bool         `json:"complete" yaml:"complete"`
	Missing     []string     `json:"missing_days,omitempty" yaml:"missing_days,omitempty"`
	Extra       []string     `json:"extra_days,omitempty" yaml:"extra_days,omitempty"`
	Logs        []*LogOutput `json:"logs,omitempty" yaml:"logs,omitempty"`
}

// LogOutput represents one day in JSON output.
type LogOutput struct {
	ID        string            `json:"id" yaml:"id"`
	Date      string            `json:"log_date" yaml:"log_date"`
	Notes     string            `json:"progress" yaml:"progress"`
	Percent   int               `json:"percent" yaml:"percent"`
	Done      bool              `json:"done" yaml:"done"`
	Documents []*DocumentOutput `json:"documents,omitempty" yaml:"documents,omitempty"`
}

// DocumentOutput represents an attached document in JSON output.
type DocumentOutput struct {
	ID          string `json:"id" yaml:"id"`
	LogID       string `json:"log_id" yaml:"log_id"`
	Filename    string `json:"filename" yaml:"filename"`
	Path        string `json:"path" yaml:"path"`
	ContentType string `json:"content_type" yaml:"content_type"`
	Size        int64  `json:"size" yaml:"size"`
	UploadedAt  string `json:"uploaded_at" yaml:"uploaded_at"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
}

// RangeOutput represents the result of a range update or repair.
type RangeOutput struct {
	Status           string   `json:"status"`
	Created          []string `json:"created"`
	Deleted          []string `json:"deleted"`
	DocumentsRemoved int      `json:"documents_removed"`
	Warnings         []string `json:"warnings,omitempty"`
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Category   string `json:"category"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// TasksResponse is the task list output.
type TasksResponse struct {
	Tasks []*TaskOutput `json:"tasks"`
	Count int           `json:"count"`
}

// DocumentsResponse is the document list output.
type DocumentsResponse struct {
	Documents []*DocumentOutput `json:"documents"`
	Count     int               `json:"count"`
}

// NewTaskOutput creates a TaskOutput from a view. Logs are included when
// withLogs is set; docs, keyed by log ID, are attached to their days.
func NewTaskOutput(v *tracker.TaskView, withLogs bool, docs map[string][]model.Document) *TaskOutput {
	out := &TaskOutput{
		ID:          v.Task.ID,
		Name:        v.Task.Name,
		StartDate:   v.Task.Start.String(),
		EndDate:     v.Task.End.String(),
		UpdatedAt:   v.Task.UpdatedAt.UTC().Format(time.RFC3339),
		Days:        v.Summary.Days,
		DonePercent: v.Summary.DonePercent,
		Complete:    v.Coverage.Complete(),
	}
	for _, d := range v.Coverage.Missing {
		out.Missing = append(out.Missing, d.String())
	}
	for _, d := range v.Coverage.Extra {
		out.Extra = append(out.Extra, d.String())
	}
	if withLogs {
		out.Logs = make([]*LogOutput, len(v.Logs))
		for i := range v.Logs {
			out.Logs[i] = NewLogOutput(&v.Logs[i], docs[v.Logs[i].ID])
		}
	}
	return out
}

// NewLogOutput creates a LogOutput from a log and its documents.
func NewLogOutput(l *model.Log, docs []model.Document) *LogOutput {
	out := &LogOutput{
		ID:      l.ID,
		Date:    l.Date.String(),
		Notes:   l.Notes,
		Percent: l.Percent,
		Done:    l.Done(),
	}
	for i := range docs {
		out.Documents = append(out.Documents, NewDocumentOutput(&docs[i], ""))
	}
	return out
}

// NewDocumentOutput creates a DocumentOutput; url may be empty.
func NewDocumentOutput(d *model.Document, url string) *DocumentOutput {
	return &DocumentOutput{
		ID:          d.ID,
		LogID:       d.LogID,
		Filename:    d.Filename,
		Path:        d.Path,
		ContentType: d.ContentType,
		Size:        d.Size,
		UploadedAt:  d.UploadedAt.UTC().Format(time.RFC3339),
		URL:         url,
	}
}

// NewRangeOutput creates a RangeOutput from a range result.
func NewRangeOutput(r *tracker.RangeResult) *RangeOutput {
	out := &RangeOutput{
		Status:           "ok",
		Created:          make([]string, 0, len(r.Plan.ToCreate)),
		Deleted:          make([]string, 0, len(r.Plan.ToDelete)),
		DocumentsRemoved: r.DocumentsRemoved,
		Warnings:         warningStrings(r.Warnings),
	}
	if r.Plan.Empty() {
		out.Status = "unchanged"
	}
	for _, d := range r.Plan.ToCreate {
		out.Created = append(out.Created, d.String())
	}
	for _, d := range r.Plan.ToDelete {
		out.Deleted = append(out.Deleted, d.String())
	}
	return out
}

func warningStrings(ws []syncer.Warning) []string {
	if len(ws) == 0 {
		return nil
	}
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}

// PrintTasks outputs the task list.
func (j *JSONFormatter) PrintTasks(views []tracker.TaskView) error {
	resp := TasksResponse{Tasks: make([]*TaskOutput, len(views)), Count: len(views)}
	for i := range views {
		resp.Tasks[i] = NewTaskOutput(&views[i], false, nil)
	}
	return j.JSON(resp)
}

// PrintTask outputs one task with its days and documents.
func (j *JSONFormatter) PrintTask(v *tracker.TaskView, docs map[string][]model.Document) error {
	return j.JSON(NewTaskOutput(v, true, docs))
}

// PrintDay outputs one day with its documents.
func (j *JSONFormatter) PrintDay(l *model.Log, docs []model.Document) error {
	return j.JSON(NewLogOutput(l, docs))
}

// PrintDocument outputs one document.
func (j *JSONFormatter) PrintDocument(d *model.Document, url string) error {
	return j.JSON(NewDocumentOutput(d, url))
}

// PrintDocuments outputs documents in day order.
func (j *JSONFormatter) PrintDocuments(days []attach.DayDocuments) error {
	resp := DocumentsResponse{Documents: []*DocumentOutput{}}
	for _, day := range days {
		for i := range day.Documents {
			resp.Documents = append(resp.Documents, NewDocumentOutput(&day.Documents[i], ""))
		}
	}
	resp.Count = len(resp.Documents)
	return j.JSON(resp)
}

// PrintRange outputs a range update or repair result.
func (j *JSONFormatter) PrintRange(r *tracker.RangeResult) error {
	return j.JSON(NewRangeOutput(r))
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(category, errMsg, suggestion string) error {
	return j.JSON(ErrorResponse{
		Status:     "error",
		Category:   category,
		Error:      errMsg,
		Suggestion: suggestion,
	})
}
