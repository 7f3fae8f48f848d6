package types

import "fmt"

// Error codes shared by the CLI and MCP surfaces. Every rejection carries
// one of these so callers can render an actionable message or pick a
// resolution flag instead of parsing error text.
const (
	CodeInvalidIDFormat  = "INVALID_ID_FORMAT"
	CodeInvalidTagName   = "INVALID_TAG_NAME"
	CodeTagNotFound      = "TAG_NOT_FOUND"
	CodeTagExists        = "TAG_EXISTS"
	CodeTaskNotFound     = "TASK_NOT_FOUND"
	CodeSameSourceTarget = "SAME_SOURCE_TARGET"
	CodeIDCollision      = "ID_COLLISION"
	CodeSubtaskMove      = "SUBTASK_MOVE_UNSUPPORTED"
	CodeCrossTagConflict = "CROSS_TAG_DEPENDENCY_CONFLICTS"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeStoreCorrupt     = "STORE_CORRUPT"
	CodeUnsupportedFmt   = "UNSUPPORTED_FORMAT"
)

// TaskError provides structured error information for CLI and MCP responses.
type TaskError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewTaskError creates a new structured error.
func NewTaskError(code string, message string, details map[string]interface{}) *TaskError {
	return &TaskError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewTaskErrorf creates a structured error with a formatted message and no
// details map.
func NewTaskErrorf(code string, format string, args ...interface{}) *TaskError {
	return &TaskError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
