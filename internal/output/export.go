package output

import (
	"fmt"
	"time"
)

// ExportVersion is bumped when the export layout changes.
const ExportVersion = 1

// Export formats.
const (
	ExportJSON = "json"
	ExportYAML = "yaml"
)

// Export is a full dump of tasks with their days and document metadata.
// Document content is not included.
type Export struct {
	Version    int           `json:"version" yaml:"version"`
	ExportedAt string        `json:"exported_at" yaml:"exported_at"`
	Tasks      []*TaskOutput `json:"tasks" yaml:"tasks"`
}

// NewExport creates an export stamped with now.
func NewExport(now time.Time, tasks []*TaskOutput) *Export {
	if tasks == nil {
		tasks = []*TaskOutput{}
	}
	return &Export{
		Version:    ExportVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Tasks:      tasks,
	}
}

// WriteExport writes the export as json or yaml.
func (f *Formatter) WriteExport(e *Export, format string) error {
	switch format {
	case ExportJSON, "":
		return f.JSON(e)
	case ExportYAML, "yml":
		return f.YAML(e)
	default:
		return fmt.Errorf("unknown export format %q (use json or yaml)", format)
	}
}
