package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TaskStatus represents the possible statuses of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
	StatusReview     TaskStatus = "review"
	StatusDeferred   TaskStatus = "deferred"
	StatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority represents the priority levels of a task.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// Task represents a top-level unit of work inside a tag. IDs are positive
// integers unique within the owning tag; dependency entries reference other
// task ids in the same tag.
type Task struct {
	ID           int          `json:"id" yaml:"id" toml:"id" validate:"required,gt=0"`
	Title        string       `json:"title" yaml:"title" toml:"title" validate:"required"`
	Description  string       `json:"description" yaml:"description" toml:"description" validate:"required"`
	Status       TaskStatus   `json:"status" yaml:"status" toml:"status" validate:"required,oneof=pending in-progress done review deferred cancelled"`
	Priority     TaskPriority `json:"priority" yaml:"priority" toml:"priority" validate:"required,oneof=high medium low"`
	Dependencies []int        `json:"dependencies" yaml:"dependencies" toml:"dependencies" validate:"dive,gt=0"`
	Details      string       `json:"details,omitempty" yaml:"details,omitempty" toml:"details,omitempty"`
	TestStrategy string       `json:"testStrategy,omitempty" yaml:"testStrategy,omitempty" toml:"testStrategy,omitempty"`
	Subtasks     []Subtask    `json:"subtasks,omitempty" yaml:"subtasks,omitempty" toml:"subtasks,omitempty" validate:"dive"`
	// ParentTaskID is set only when the task was produced by promoting a
	// subtask out of its parent.
	ParentTaskID *int `json:"parentTaskId,omitempty" yaml:"parentTaskId,omitempty" toml:"parentTaskId,omitempty" validate:"omitempty,gt=0"`
}

// Subtask mirrors Task minus tag membership. Subtasks are addressed
// externally as "<parentId>.<subtaskId>" and may depend on sibling subtask
// ids or parent-level task ids. Nesting stops here: subtasks do not own
// subtasks of their own.
type Subtask struct {
	ID           int          `json:"id" yaml:"id" toml:"id" validate:"required,gt=0"`
	Title        string       `json:"title" yaml:"title" toml:"title" validate:"required"`
	Description  string       `json:"description" yaml:"description" toml:"description" validate:"required"`
	Status       TaskStatus   `json:"status" yaml:"status" toml:"status" validate:"required,oneof=pending in-progress done review deferred cancelled"`
	Priority     TaskPriority `json:"priority" yaml:"priority" toml:"priority" validate:"required,oneof=high medium low"`
	Dependencies []int        `json:"dependencies" yaml:"dependencies" toml:"dependencies" validate:"dive,gt=0"`
	Details      string       `json:"details,omitempty" yaml:"details,omitempty" toml:"details,omitempty"`
	TestStrategy string       `json:"testStrategy,omitempty" yaml:"testStrategy,omitempty" toml:"testStrategy,omitempty"`
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	err := validate.Struct(s)
	if err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("Validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}

// NewTask creates a task with the default status and priority.
func NewTask(id int, title, description string) Task {
	return Task{
		ID:           id,
		Title:        title,
		Description:  description,
		Status:       StatusPending,
		Priority:     PriorityMedium,
		Dependencies: []int{},
	}
}

// DeepCopy returns a copy of the task that shares no slices with the
// original, so mutating the copy never affects the source.
func (t Task) DeepCopy() Task {
	c := t
	c.Dependencies = append([]int(nil), t.Dependencies...)
	if t.ParentTaskID != nil {
		pid := *t.ParentTaskID
		c.ParentTaskID = &pid
	}
	if t.Subtasks != nil {
		c.Subtasks = make([]Subtask, len(t.Subtasks))
		for i, st := range t.Subtasks {
			c.Subtasks[i] = st.DeepCopy()
		}
	}
	return c
}

// DeepCopy returns a copy of the subtask with its own dependency slice.
func (st Subtask) DeepCopy() Subtask {
	c := st
	c.Dependencies = append([]int(nil), st.Dependencies...)
	return c
}

// HasDependency reports whether the task directly depends on the given id.
func (t Task) HasDependency(id int) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// NormalizeDependencies collapses duplicate dependency entries in place,
// keeping first-occurrence order. Self references are left for the
// validator to report.
func (t *Task) NormalizeDependencies() {
	t.Dependencies = dedupeInts(t.Dependencies)
	for i := range t.Subtasks {
		t.Subtasks[i].Dependencies = dedupeInts(t.Subtasks[i].Dependencies)
	}
}

func dedupeInts(in []int) []int {
	if len(in) < 2 {
		return in
	}
	seen := make(map[int]bool, len(in))
	out := in[:0]
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
