package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binaryPath is the tasklog binary built once for every test in this file.
var binaryPath string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "tasklog-bin-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create temp dir:", err)
		os.Exit(1)
	}
	binaryPath = filepath.Join(dir, "tasklog")

	build := exec.Command("go", "build", "-o", binaryPath, ".")
	if out, err := build.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build binary: %v\n%s", err, out)
		os.RemoveAll(dir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// cli runs the binary against stores in a per-test directory.
type cli struct {
	t   *testing.T
	dir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{t: t, dir: t.TempDir()}
}

func (c *cli) env() []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "TASKLOG_") || strings.HasPrefix(kv, "SUPABASE_") ||
			strings.HasPrefix(kv, "XDG_") || strings.HasPrefix(kv, "DATABASE_URL=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env,
		"XDG_CONFIG_HOME="+filepath.Join(c.dir, "config"),
		"XDG_DATA_HOME="+filepath.Join(c.dir, "data"),
		"TASKLOG_DATABASE="+filepath.Join(c.dir, "tasklog.db"),
		"TASKLOG_BLOB_PATH="+filepath.Join(c.dir, "blobs"),
	)
}

// run executes tasklog and returns stdout, stderr and the exit code.
func (c *cli) run(args ...string) (string, string, int) {
	c.t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = c.dir
	cmd.Env = c.env()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return stdout.String(), stderr.String(), 0
	case errors.As(err, &exitErr):
		return stdout.String(), stderr.String(), exitErr.ExitCode()
	default:
		c.t.Fatalf("cannot run tasklog: %v", err)
		return "", "", -1
	}
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	stdout, stderr, code := c.run(args...)
	require.Equal(c.t, 0, code, "tasklog %v\nstdout: %s\nstderr: %s", args, stdout, stderr)
	return stdout
}

// mustJSON runs tasklog with --format json and decodes stdout into v.
func (c *cli) mustJSON(v any, args ...string) {
	c.t.Helper()
	out := c.mustRun(append([]string{"--format", "json"}, args...)...)
	require.NoError(c.t, json.Unmarshal([]byte(out), v), "output: %s", out)
}

type taskJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Days        int    `json:"days"`
	DonePercent int    `json:"done_percent"`
	Complete    bool   `json:"complete"`
	Logs        []struct {
		ID        string `json:"id"`
		Date      string `json:"log_date"`
		Notes     string `json:"progress"`
		Percent   int    `json:"percent"`
		Done      bool   `json:"done"`
		Documents []struct {
			ID       string `json:"id"`
			Filename string `json:"filename"`
		} `json:"documents"`
	} `json:"logs"`
}

type rangeJSON struct {
	Status           string   `json:"status"`
	Created          []string `json:"created"`
	Deleted          []string `json:"deleted"`
	DocumentsRemoved int      `json:"documents_removed"`
}

type docsJSON struct {
	Documents []struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
	} `json:"documents"`
	Count int `json:"count"`
}

func (c *cli) createTask(name, from, to string) taskJSON {
	c.t.Helper()
	var task taskJSON
	c.mustJSON(&task, "task", "create", name, "--from", from, "--to", to)
	return task
}

// =============================================================================
// Task Tests
// =============================================================================

func TestCreateAndList(t *testing.T) {
	c := newCLI(t)

	task := c.createTask("Write report", "2024-03-01", "2024-03-03")
	assert.Equal(t, "Write report", task.Name)
	assert.Equal(t, 3, task.Days)
	assert.True(t, task.Complete)
	require.Len(t, task.Logs, 3)
	assert.Equal(t, "2024-03-01", task.Logs[0].Date)
	assert.Equal(t, "2024-03-03", task.Logs[2].Date)

	var list struct {
		Tasks []taskJSON `json:"tasks"`
		Count int        `json:"count"`
	}
	c.mustJSON(&list, "task", "list")
	require.Equal(t, 1, list.Count)
	assert.Equal(t, task.ID, list.Tasks[0].ID)

	out := c.mustRun("--color", "never", "task", "list")
	assert.Contains(t, out, "Write report")
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	c := newCLI(t)

	_, stderr, code := c.run("task", "create", "Backwards", "--from", "2024-03-05", "--to", "2024-03-01")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")
}

func TestShortIDResolves(t *testing.T) {
	c := newCLI(t)
	task := c.createTask("Prefix", "2024-03-01", "2024-03-01")

	var shown taskJSON
	c.mustJSON(&shown, "task", "show", task.ID[:8])
	assert.Equal(t, task.ID, shown.ID)
}

func TestRename(t *testing.T) {
	c := newCLI(t)
	task := c.createTask("Draft", "2024-03-01", "2024-03-02")

	var renamed taskJSON
	c.mustJSON(&renamed, "task", "rename", task.ID, "Final draft")
	assert.Equal(t, "Final draft", renamed.Name)
	assert.Equal(t, "2024-03-01", renamed.StartDate)
}

// =============================================================================
// Day Tests
// =============================================================================

func TestRecordProgressAndSummary(t *testing.T) {
	c := newCLI(t)
	task := c.createTask("Write report", "2024-03-01", "2024-03-03")

	c.mustRun("day", "record", task.ID, "2024-03-02", "--percent", "50%", "--notes", "outline")

	var shown taskJSON
	c.mustJSON(&shown, "task", "show", task.ID)
	assert.Equal(t, 17, shown.DonePercent)
	assert.Equal(t, "outline", shown.Logs[1].Notes)
	assert.Equal(t, 50, shown.Logs[1].Percent)

	// Only the given field changes.
	c.mustRun("day", "record", task.ID, "2024-03-02", "--percent", "60")
	c.mustJSON(&shown, "task", "show", task.ID)
	assert.Equal(t, "outline", shown.Logs[1].Notes)
	assert.Equal(t, 60, shown.Logs[1].Percent)
}

func TestRecordRejectsBadPercent(t *testing.T) {
	c := newCLI(t)
	task := c.createTask("Write report", "2024-03-01", "2024-03-01")

	_, _, code := c.run("day", "record", task.ID, "2024-03-01", "--percent", "150")
	assert.Equal(t, 1, code)

	_, _, code = c.run("day", "record", task.ID, "2024-03-09", "--percent", "10")
	assert.Equal(t, 1, code)
}

func TestDayDone(t *testing.T) {
	c := newCLI(t)
	task := c.createTask("One day", "2024-03-01", "2024-03-01")

	c.mustRun("day", "done", task.ID, "2024-03-01")

	var shown taskJSON
	c.mustJSON(&shown, "task", "show", task.ID)
	assert.Equal(t, 100, shown.DonePercent)
	assert.True(t, shown.Logs[0].Done)
}

// =============================================================================
// Range Tests
// =============================================================================

func TestRangeShiftKeepsOverlap(t *testing.T) {
	c := newCLI(t)
	task := c.createTask("Shift", "2024-03-01", "2024-03-03")
	c.mustRun("day", "record", task.ID, "2024-03-02", "--notes", "keep me")

	var result rangeJSON
	c.mustJSON(&result, "task", "range", task.ID, "2024-03-02", "2024-03-05")
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, []string{"2024-03-04", "2024-03-05"}, result.Created)
	assert.Equal(t, []string{"2024-03-01"}, result.Deleted)

	var shown taskJSON
	c.mustJSON(&shown, "task", "show", task.ID)
	require.Len(t, shown.Logs, 4)
	assert.Equal(t, "2024-03-02", shown.Logs[0].Date)
	assert.Equal(t, "keep me", shown.Logs[0].Notes)

	c.mustJSON(&result, "task", "range", task.ID, "2024-03-02", "2024-03-05")
	assert.Equal(t, "unchanged", result.Status)
}

// =============================================================================
// Document Tests
// =============================================================================

func TestDocumentLifecycle(t *testing.T) {
	c := newCLI(t)
	task := c.createTask("Docs", "2024-03-01", "2024-03-02")

	file := filepath.Join(c.dir, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	var attached docsJSON
	c.mustJSON(&attached, "doc", "attach", task.ID, "2024-03-01", file)
	require.Equal(t, 1, attached.Count)
	docID := attached.Documents[0].ID
	assert.Equal(t, "notes.txt", attached.Documents[0].Filename)
	assert.EqualValues(t, 5, attached.Documents[0].Size)

	var listed docsJSON
	c.mustJSON(&listed, "doc", "list", task.ID)
	assert.Equal(t, 1, listed.Count)

	assert.Equal(t, "hello", c.mustRun("doc", "get", docID, "-o", "-"))

	// Local storage has no links.
	_, _, code := c.run("doc", "url", docID)
	assert.Equal(t, 1, code)

	c.mustRun("doc", "rm", docID)
	c.mustJSON(&listed, "doc", "list", task.ID)
	assert.Equal(t, 0, listed.Count)
}

func TestRangeRefusesToDropAttachments(t *testing.T) {
	c := newCLI(t)
	task := c.createTask("Conflict", "2024-03-01", "2024-03-03")

	file := filepath.Join(c.dir, "draft.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF-1.4"), 0o644))
	c.mustRun("doc", "attach", task.ID, "2024-03-01", file)

	_, stderr, code := c.run("--format", "json", "task", "range", task.ID, "2024-03-02", "2024-03-03")
	assert.Equal(t, 1, code)
	var resp struct {
		Status   string `json:"status"`
		Category string `json:"category"`
	}
	require.NoError(t, json.Unmarshal([]byte(stderr), &resp), "stderr: %s", stderr)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "user", resp.Category)

	var result rangeJSON
	c.mustJSON(&result, "task", "range", task.ID, "2024-03-02", "2024-03-03", "--drop-attachments")
	assert.Equal(t, []string{"2024-03-01"}, result.Deleted)
	assert.Equal(t, 1, result.DocumentsRemoved)
}

// =============================================================================
// Export and Misc Tests
// =============================================================================

func TestExportYAML(t *testing.T) {
	c := newCLI(t)
	c.createTask("Exported", "2024-03-01", "2024-03-02")

	dest := filepath.Join(c.dir, "backup.yaml")
	c.mustRun("export", "--as", "yaml", "-o", dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 1")
	assert.Contains(t, string(data), "name: Exported")
	assert.Contains(t, string(data), "2024-03-02")
}

func TestUnknownTask(t *testing.T) {
	c := newCLI(t)

	_, stderr, code := c.run("task", "show", "does-not-exist")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not found")
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	assert.Contains(t, c.mustRun("version"), "tasklog")
}

func TestCompletionScripts(t *testing.T) {
	c := newCLI(t)
	assert.Contains(t, c.mustRun("completion", "bash"), "__start_tasklog")
	assert.Contains(t, c.mustRun("completion", "powershell"), "Register-ArgumentCompleter")
	assert.Contains(t, c.mustRun("completion", "fish", "--no-descriptions"), "tasklog")

	_, err := os.Stat(filepath.Join(c.dir, "tasklog.db"))
	assert.True(t, os.IsNotExist(err), "completion scripts never open the store")

	_, _, code := c.run("completion", "tcsh")
	assert.Equal(t, 1, code)
}

func TestConfigShowMasksSecrets(t *testing.T) {
	c := newCLI(t)

	cmd := exec.Command(binaryPath, "config", "show")
	cmd.Dir = c.dir
	cmd.Env = append(c.env(), "TASKLOG_BLOB_SECRET_KEY=supersecretvalue")
	out, err := cmd.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "secret_key")
	assert.NotContains(t, string(out), "supersecretvalue")
}
