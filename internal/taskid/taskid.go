// Package taskid parses and formats task and subtask identifiers.
//
// Tasks are addressed by a positive integer ("5"); subtasks by a
// parent-qualified pair ("5.2"). Everything else is a format error.
package taskid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tasktag/tasktag/types"
)

// ID is a resolved task or subtask address.
type ID struct {
	TaskID    int
	SubtaskID int
	IsSubtask bool
}

// Parse resolves a textual identifier into its components.
func Parse(raw string) (ID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ID{}, types.NewTaskErrorf(types.CodeInvalidIDFormat, "task id is empty")
	}

	parts := strings.Split(s, ".")
	switch len(parts) {
	case 1:
		taskID, err := parsePositiveInt(parts[0])
		if err != nil {
			return ID{}, types.NewTaskErrorf(types.CodeInvalidIDFormat, "invalid task id %q: %v", raw, err)
		}
		return ID{TaskID: taskID}, nil
	case 2:
		taskID, err := parsePositiveInt(parts[0])
		if err != nil {
			return ID{}, types.NewTaskErrorf(types.CodeInvalidIDFormat, "invalid parent id in %q: %v", raw, err)
		}
		subID, err := parsePositiveInt(parts[1])
		if err != nil {
			return ID{}, types.NewTaskErrorf(types.CodeInvalidIDFormat, "invalid subtask id in %q: %v", raw, err)
		}
		return ID{TaskID: taskID, SubtaskID: subID, IsSubtask: true}, nil
	default:
		return ID{}, types.NewTaskErrorf(types.CodeInvalidIDFormat, "invalid id %q: expected N or N.M", raw)
	}
}

// ParseList parses a comma-separated list of identifiers.
func ParseList(raw string) ([]ID, error) {
	var ids []ID
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, types.NewTaskErrorf(types.CodeInvalidIDFormat, "no task ids in %q", raw)
	}
	return ids, nil
}

// Format renders a task address.
func Format(taskID int) string {
	return strconv.Itoa(taskID)
}

// FormatSubtask renders a parent-qualified subtask address.
func FormatSubtask(taskID, subtaskID int) string {
	return fmt.Sprintf("%d.%d", taskID, subtaskID)
}

// String renders the ID in its external form.
func (id ID) String() string {
	if id.IsSubtask {
		return FormatSubtask(id.TaskID, id.SubtaskID)
	}
	return Format(id.TaskID)
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be a positive integer, got %d", n)
	}
	return n, nil
}
