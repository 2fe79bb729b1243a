package errors

import "errors"

// Suggestions maps common errors to helpful suggestions. Order of lookup is
// not guaranteed, so entries must not overlap except where noted in
// GetSuggestion.
var Suggestions = map[error]string{
	// User input errors
	ErrValidation:         "Check your input. Names cannot be blank and percent must be between 0 and 100.",
	ErrOutOfRange:         "Use 'tasklog task show <id>' to see the task's date range, or widen it with 'tasklog task range'.",
	ErrAttachmentConflict: "Remove the documents first with 'tasklog doc rm', or pass --drop-attachments to delete them with the days.",

	// System errors
	ErrStore:            "The data store or blob store rejected the request. Check connectivity and run 'tasklog task repair <id>' once it is back.",
	ErrDiskFull:         "Free up disk space and try again.",
	ErrLockHeld:         "Another tasklog process holds the data directory. Wait for it to finish or remove a stale lock file.",
	ErrPermissionDenied: "Check file permissions in your data directory (~/.local/share/tasklog/).",
}

// blobMissingSuggestion is kept out of the map so it wins over ErrNotFound.
const blobMissingSuggestion = "The document record exists but its content is gone. Remove it with 'tasklog doc rm' and attach the file again."

// notFoundSuggestion is kept out of the map for the same reason.
const notFoundSuggestion = "Use 'tasklog task list' or 'tasklog doc list' to find valid IDs."

// GetSuggestion returns a suggestion for an error, if available.
// It walks the error chain to find matching suggestions.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrBlobMissing) {
		return blobMissingSuggestion
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	if errors.Is(err, ErrNotFound) {
		return notFoundSuggestion
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	return ""
}

// GetCategorySuggestion returns a generic suggestion based on error category.
func GetCategorySuggestion(err error) string {
	switch Classify(err) {
	case CategoryUser:
		return "Check your input and try again. Use --help for usage information."
	case CategorySystem:
		return "This is a system error. Check system resources and try again."
	case CategoryDrift:
		return "Stored records disagree. Run 'tasklog task repair <id>' or re-attach the document."
	}
	return ""
}

// CommandExamples provides example commands for common errors.
var CommandExamples = map[error][]string{
	ErrOutOfRange: {
		"tasklog task show <task-id>",
		"tasklog task range <task-id> 2024-01-01 2024-01-31",
	},
	ErrValidation: {
		"tasklog task create \"Write report\" --from 2024-01-01 --to 2024-01-05",
		"tasklog day record <task-id> 2024-01-02 --percent 50 --notes \"outline done\"",
	},
	ErrAttachmentConflict: {
		"tasklog doc list <task-id> --date 2024-01-05",
		"tasklog task range <task-id> 2024-01-01 2024-01-03 --drop-attachments",
	},
}

// GetExamples returns example commands for an error.
func GetExamples(err error) []string {
	for knownErr, examples := range CommandExamples {
		if errors.Is(err, knownErr) {
			return examples
		}
	}
	return nil
}
