package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/tasklog/internal/attach"
	"github.com/manav03panchal/tasklog/internal/model"
	"github.com/manav03panchal/tasklog/internal/syncer"
	"github.com/manav03panchal/tasklog/internal/tracker"
	"github.com/manav03panchal/tasklog/internal/validate"
)

// Styles for CLI output.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Yellow
	colorError   = lipgloss.Color("#EF4444") // Red
	colorSuccess = lipgloss.Color("#10B981") // Green

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleTask = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleNote = lipgloss.NewStyle().
			Italic(true).
			Foreground(colorMuted)
)

// notesPreview is the width of notes shown in tables.
const notesPreview = 48

// progressWidth is the width of progress bars.
const progressWidth = 20

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(style lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return style.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// TaskName formats a task name.
func (c *CLIFormatter) TaskName(name string) string {
	return c.render(styleTask, name)
}

// Note formats notes.
func (c *CLIFormatter) Note(text string) string {
	return c.render(styleNote, text)
}

// Percent formats a completion percentage, green when done.
func (c *CLIFormatter) Percent(p int) string {
	text := fmt.Sprintf("%d%%", p)
	switch {
	case p >= model.MaxPercent:
		return c.render(styleSuccess, text)
	case p == 0:
		return c.render(styleMuted, text)
	default:
		return text
	}
}

// ShortID returns the first 8 characters of an ID for tables.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// ProgressBar creates a simple progress bar.
func ProgressBar(percentage float64, width int) string {
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}

	filled := int(float64(width) * percentage / 100)
	empty := width - filled

	return strings.Repeat("█", filled) + strings.Repeat("░", empty)
}

// PrintTaskCreated prints the result of task create.
func (c *CLIFormatter) PrintTaskCreated(task *model.Task) {
	c.Success(fmt.Sprintf("Created %s", c.TaskName(task.Name)))
	c.Printf("  ID: %s\n", task.ID)
	c.Printf("  Range: %s → %s (%d days)\n", task.Start, task.End, task.Days())
}

// PrintTasks prints the task list, most recently updated first.
func (c *CLIFormatter) PrintTasks(views []tracker.TaskView) {
	if len(views) == 0 {
		c.Muted("No tasks yet.")
		c.Muted("Use 'tasklog task create <name> --from <date> --to <date>' to add one.")
		return
	}

	rows := make([]TableRow, len(views))
	for i, v := range views {
		rows[i] = TableRow{Columns: []string{
			ShortID(v.Task.ID),
			validate.TruncateString(v.Task.Name, 40),
			fmt.Sprintf("%s → %s", v.Task.Start, v.Task.End),
			fmt.Sprintf("%d", v.Summary.Days),
			fmt.Sprintf("%s %3d%%", ProgressBar(float64(v.Summary.DonePercent), 10), v.Summary.DonePercent),
			FormatRelative(v.Task.UpdatedAt),
		}}
	}
	c.PrintTable([]string{"ID", "NAME", "RANGE", "DAYS", "DONE", "UPDATED"}, rows)
}

// PrintTask prints a task with one row per day. docs maps log IDs to their
// documents.
func (c *CLIFormatter) PrintTask(v *tracker.TaskView, docs map[string][]model.Document) {
	c.Title(v.Task.Name)
	c.Printf("  ID: %s\n", v.Task.ID)
	c.Printf("  Range: %s → %s (%d days)\n", v.Task.Start, v.Task.End, v.Summary.Days)
	c.Printf("  Done: %s %s\n", ProgressBar(float64(v.Summary.DonePercent), progressWidth), c.Percent(v.Summary.DonePercent))
	c.Printf("  Updated: %s (%s)\n", FormatTimeShort(v.Task.UpdatedAt), FormatRelative(v.Task.UpdatedAt))
	c.printCoverage(v.Task.ID, v.Coverage)
	c.Println()

	rows := make([]TableRow, len(v.Logs))
	for i, l := range v.Logs {
		attached := ""
		if n := len(docs[l.ID]); n > 0 {
			attached = fmt.Sprintf("%d", n)
		}
		rows[i] = TableRow{Columns: []string{
			l.Date.String(),
			fmt.Sprintf("%3d%%", l.Percent),
			attached,
			validate.TruncateString(firstLine(l.Notes), notesPreview),
		}}
	}
	c.PrintTable([]string{"DATE", "DONE", "DOCS", "NOTES"}, rows)
}

func (c *CLIFormatter) printCoverage(taskID string, cov model.Coverage) {
	if cov.Complete() {
		return
	}
	if len(cov.Missing) > 0 {
		c.Warning(fmt.Sprintf("%d day(s) have no log", len(cov.Missing)))
	}
	if len(cov.Extra) > 0 {
		c.Warning(fmt.Sprintf("%d log(s) fall outside the range", len(cov.Extra)))
	}
	c.Muted(fmt.Sprintf("  Run 'tasklog task repair %s' to fix.", taskID))
}

// PrintDay prints one day's notes, percent and documents.
func (c *CLIFormatter) PrintDay(task *model.Task, l *model.Log, docs []model.Document) {
	c.Title(fmt.Sprintf("%s · %s", task.Name, l.Date))
	c.Printf("  Done: %s %s\n", ProgressBar(float64(l.Percent), progressWidth), c.Percent(l.Percent))
	if l.Notes == "" {
		c.Printf("  Notes: %s\n", c.Note("(none)"))
	} else {
		c.Println("  Notes:")
		for _, line := range strings.Split(l.Notes, "\n") {
			c.Printf("    %s\n", c.Note(line))
		}
	}
	if len(docs) > 0 {
		c.Println("  Documents:")
		for _, d := range docs {
			c.Printf("    %s  %s  %s\n", d.ID, d.Filename, c.render(styleMuted, FormatSize(d.Size)))
		}
	}
}

// PrintProgressSaved prints the result of day record and day done.
func (c *CLIFormatter) PrintProgressSaved(l *model.Log) {
	if l.Done() {
		c.Success(fmt.Sprintf("%s marked complete", l.Date))
		return
	}
	c.Success(fmt.Sprintf("Saved %s at %s", l.Date, c.Percent(l.Percent)))
}

// PrintRange prints the result of a range update or repair.
func (c *CLIFormatter) PrintRange(r *tracker.RangeResult) {
	if r.Plan.Empty() {
		c.Muted("Logs already match the range.")
	} else {
		c.Success(fmt.Sprintf("Added %d day(s), removed %d day(s)", r.Created, r.Deleted))
		if r.DocumentsRemoved > 0 {
			c.Printf("  Removed %d document(s)\n", r.DocumentsRemoved)
		}
	}
	c.PrintWarnings(r.Warnings)
}

// PrintWarnings prints best-effort step failures.
func (c *CLIFormatter) PrintWarnings(ws []syncer.Warning) {
	for _, w := range ws {
		c.Warning(w.String())
	}
}

// PrintDocuments prints documents grouped by day.
func (c *CLIFormatter) PrintDocuments(days []attach.DayDocuments) {
	if len(days) == 0 {
		c.Muted("No documents.")
		return
	}

	var rows []TableRow
	for _, day := range days {
		for _, d := range day.Documents {
			rows = append(rows, TableRow{Columns: []string{
				d.ID,
				day.Date.String(),
				d.Filename,
				FormatSize(d.Size),
				FormatTimeShort(d.UploadedAt),
			}})
		}
	}
	c.PrintTable([]string{"ID", "DATE", "FILE", "SIZE", "UPLOADED"}, rows)
}

// PrintAttached prints an uploaded document.
func (c *CLIFormatter) PrintAttached(d *model.Document) {
	c.Success(fmt.Sprintf("Attached %s (%s)", d.Filename, FormatSize(d.Size)))
	c.Printf("  ID: %s\n", d.ID)
	c.Printf("  Path: %s\n", d.Path)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

// TableRow is one row of a table.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && lipgloss.Width(col) > widths[i] {
				widths[i] = lipgloss.Width(col)
			}
		}
	}

	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(pad(h, widths[i]))
	}
	c.Println(strings.TrimRight(c.render(styleBold, headerLine.String()), " "))

	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				rowLine.WriteString(pad(col, widths[i]))
			}
		}
		c.Println(strings.TrimRight(rowLine.String(), " "))
	}
}

// pad right-pads s to width display cells plus the column gap.
func pad(s string, width int) string {
	return s + strings.Repeat(" ", width-lipgloss.Width(s)+2)
}
