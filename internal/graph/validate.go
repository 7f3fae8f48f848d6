// Package graph validates and repairs the dependency graph of a tag's
// task list. Validation never mutates its input; repair works on a deep
// copy and reports every edit it makes.
package graph

import (
	"fmt"
	"sort"

	"github.com/tasktag/tasktag/internal/taskid"
	"github.com/tasktag/tasktag/models"
	"github.com/tasktag/tasktag/types"
)

// ViolationKind tags a structural violation.
type ViolationKind string

const (
	ViolationDuplicateID       ViolationKind = "duplicate-id"
	ViolationMissingDependency ViolationKind = "missing-dependency"
	ViolationSelfDependency    ViolationKind = "self-dependency"
	ViolationCycle             ViolationKind = "cycle"
	ViolationInvalidSubtaskID  ViolationKind = "invalid-subtask-id"
)

// Violation describes one structural problem found in a task set.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Path    string        `json:"path"`
	Message string        `json:"message"`
	// Cycle holds the ordered loop of task ids for cycle violations.
	Cycle []int `json:"cycle,omitempty"`
}

// Result is the outcome of validating one task set.
type Result struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}

// Validate checks the task set for duplicate ids, dangling and
// self-referential dependencies, malformed subtask ids, and cycles.
// Checks run in that order and the input is never mutated.
func Validate(tasks []models.Task) Result {
	var violations []Violation

	byID := make(map[int]*models.Task, len(tasks))

	// (a) duplicate top-level ids
	seen := make(map[int]bool, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if seen[t.ID] {
			violations = append(violations, Violation{
				Kind:    ViolationDuplicateID,
				Path:    taskid.Format(t.ID),
				Message: fmt.Sprintf("task id %d is used more than once", t.ID),
			})
			continue
		}
		seen[t.ID] = true
		byID[t.ID] = t
	}

	// (b) dependency existence and (c) self-dependency, in ascending id
	// order so reports are deterministic regardless of slice order.
	ids := sortedIDs(byID)
	for _, id := range ids {
		t := byID[id]
		for _, dep := range t.Dependencies {
			if dep == t.ID {
				violations = append(violations, Violation{
					Kind:    ViolationSelfDependency,
					Path:    taskid.Format(t.ID),
					Message: fmt.Sprintf("task %d depends on itself", t.ID),
				})
				continue
			}
			if _, ok := byID[dep]; !ok {
				violations = append(violations, Violation{
					Kind:    ViolationMissingDependency,
					Path:    taskid.Format(t.ID),
					Message: fmt.Sprintf("task %d depends on missing task %d", t.ID, dep),
				})
			}
		}
	}

	// (d) subtask ids and subtask dependency resolution
	for _, id := range ids {
		violations = append(violations, validateSubtasks(byID[id], seen)...)
	}

	// (e) cycles over the top-level dependency graph
	violations = append(violations, detectCycles(byID, ids)...)

	return Result{Valid: len(violations) == 0, Violations: violations}
}

// validateSubtasks checks uniqueness and dependency resolution of one
// task's subtask list. A subtask dependency id resolves against the
// sibling subtask ids first, then the parent-level task ids in taskIDs.
func validateSubtasks(t *models.Task, taskIDs map[int]bool) []Violation {
	if len(t.Subtasks) == 0 {
		return nil
	}

	var violations []Violation
	siblings := make(map[int]bool, len(t.Subtasks))
	for _, st := range t.Subtasks {
		if st.ID <= 0 {
			violations = append(violations, Violation{
				Kind:    ViolationInvalidSubtaskID,
				Path:    taskid.FormatSubtask(t.ID, st.ID),
				Message: fmt.Sprintf("subtask of task %d has invalid id %d", t.ID, st.ID),
			})
			continue
		}
		if siblings[st.ID] {
			violations = append(violations, Violation{
				Kind:    ViolationDuplicateID,
				Path:    taskid.FormatSubtask(t.ID, st.ID),
				Message: fmt.Sprintf("subtask id %d.%d is used more than once", t.ID, st.ID),
			})
			continue
		}
		siblings[st.ID] = true
	}

	for _, st := range t.Subtasks {
		for _, dep := range st.Dependencies {
			// Sibling ids shadow task ids, so a dependency equal to the
			// subtask's own id is a self reference.
			if dep == st.ID {
				violations = append(violations, Violation{
					Kind:    ViolationSelfDependency,
					Path:    taskid.FormatSubtask(t.ID, st.ID),
					Message: fmt.Sprintf("subtask %d.%d depends on itself", t.ID, st.ID),
				})
				continue
			}
			if !siblings[dep] && !taskIDs[dep] {
				violations = append(violations, Violation{
					Kind:    ViolationMissingDependency,
					Path:    taskid.FormatSubtask(t.ID, st.ID),
					Message: fmt.Sprintf("subtask %d.%d depends on %d, which is neither a sibling subtask nor a known task", t.ID, st.ID, dep),
				})
			}
		}
	}
	return violations
}

// DFS colors for cycle detection.
const (
	colorWhite = 0
	colorGray  = 1
	colorBlack = 2
)

// detectCycles runs a tri-color depth-first traversal over the edge
// relation "task depends on dep". Roots are visited in ascending id order
// and dependency lists in stored order, so the first back edge found is
// stable across runs. Every distinct back edge yields one violation.
func detectCycles(byID map[int]*models.Task, ids []int) []Violation {
	color := make(map[int]int, len(ids))
	var stack []int
	var violations []Violation
	reported := make(map[string]bool)

	var visit func(id int)
	visit = func(id int) {
		color[id] = colorGray
		stack = append(stack, id)

		for _, dep := range byID[id].Dependencies {
			t, ok := byID[dep]
			if !ok || t.ID == id {
				continue // dangling and self edges are reported elsewhere
			}
			switch color[dep] {
			case colorWhite:
				visit(dep)
			case colorGray:
				loop := extractLoop(stack, dep)
				key := loopKey(loop)
				if !reported[key] {
					reported[key] = true
					violations = append(violations, Violation{
						Kind:    ViolationCycle,
						Path:    taskid.Format(loop[0]),
						Message: fmt.Sprintf("dependency cycle: %s", formatLoop(loop)),
						Cycle:   loop,
					})
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = colorBlack
	}

	for _, id := range ids {
		if color[id] == colorWhite {
			visit(id)
		}
	}
	return violations
}

// extractLoop slices the gray stack from the back-edge target to the top.
func extractLoop(stack []int, target int) []int {
	for i, id := range stack {
		if id == target {
			loop := make([]int, len(stack)-i)
			copy(loop, stack[i:])
			return loop
		}
	}
	return []int{target}
}

func loopKey(loop []int) string {
	// Canonical key: the loop rotated so its smallest id leads.
	minIdx := 0
	for i, id := range loop {
		if id < loop[minIdx] {
			minIdx = i
		}
	}
	key := ""
	for i := range loop {
		key += fmt.Sprintf("%d>", loop[(minIdx+i)%len(loop)])
	}
	return key
}

func formatLoop(loop []int) string {
	s := ""
	for _, id := range loop {
		s += fmt.Sprintf("%d -> ", id)
	}
	return s + fmt.Sprintf("%d", loop[0])
}

func sortedIDs(byID map[int]*models.Task) []int {
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ValidateTags validates one tag, or every tag when tagName is empty.
// The returned map is keyed by tag name.
func ValidateTags(tm models.TagMap, tagName string) (map[string]Result, error) {
	results := make(map[string]Result)
	if tagName != "" {
		tg, ok := tm[tagName]
		if !ok {
			return nil, types.NewTaskErrorf(types.CodeTagNotFound, "tag %q not found", tagName)
		}
		results[tagName] = Validate(tg.Tasks)
		return results, nil
	}
	for name, tg := range tm {
		results[name] = Validate(tg.Tasks)
	}
	return results, nil
}
