package graph

import (
	"fmt"

	"github.com/tasktag/tasktag/internal/taskid"
	"github.com/tasktag/tasktag/models"
	"github.com/tasktag/tasktag/types"
)

// ChangeType tags a corrective edit applied by Fix.
type ChangeType string

const (
	// ChangeRemovedDependency covers dangling edges, self edges, and the
	// edge removed to break a cycle.
	ChangeRemovedDependency ChangeType = "removed-dependency"
)

// Change records one corrective edit.
type Change struct {
	Type    ChangeType `json:"type"`
	Path    string     `json:"path"`
	Removed int        `json:"removed"`
	Reason  string     `json:"reason"`
}

// FixOutcome is the result of a repair pass.
type FixOutcome struct {
	Tasks []models.Task `json:"tasks"`
	// Changes lists every removed edge in application order.
	Changes []Change `json:"changes"`
	// UnfixableCycles holds any loops left after the iteration bound.
	UnfixableCycles [][]int `json:"unfixableCycles,omitempty"`
}

// Changed reports whether the fixer edited anything.
func (o *FixOutcome) Changed() bool {
	return len(o.Changes) > 0
}

// Fix repairs the task set: dangling and self-referential dependency edges
// are dropped in a single pass, then cycles are broken one edge at a time
// until the graph validates clean or the iteration bound is hit. Tasks are
// never deleted; the input slice is not mutated.
func Fix(tasks []models.Task) FixOutcome {
	out := FixOutcome{Tasks: make([]models.Task, len(tasks))}
	for i, t := range tasks {
		out.Tasks[i] = t.DeepCopy()
	}

	byID := make(map[int]bool, len(out.Tasks))
	for _, t := range out.Tasks {
		byID[t.ID] = true
	}

	// Pass 1: drop missing and self edges, tasks and subtasks alike.
	for i := range out.Tasks {
		t := &out.Tasks[i]
		t.Dependencies = filterDeps(t.Dependencies, t.ID, byID, taskid.Format(t.ID), &out.Changes)

		if len(t.Subtasks) == 0 {
			continue
		}
		siblings := make(map[int]bool, len(t.Subtasks))
		for _, st := range t.Subtasks {
			siblings[st.ID] = true
		}
		for j := range t.Subtasks {
			st := &t.Subtasks[j]
			path := taskid.FormatSubtask(t.ID, st.ID)
			kept := st.Dependencies[:0]
			for _, dep := range st.Dependencies {
				switch {
				case dep == st.ID:
					out.Changes = append(out.Changes, Change{
						Type: ChangeRemovedDependency, Path: path, Removed: dep,
						Reason: "self-referential dependency",
					})
				case !siblings[dep] && !byID[dep]:
					out.Changes = append(out.Changes, Change{
						Type: ChangeRemovedDependency, Path: path, Removed: dep,
						Reason: "dependency target does not exist",
					})
				default:
					kept = append(kept, dep)
				}
			}
			st.Dependencies = kept
		}
	}

	// Pass 2: break cycles. Each round removes one edge, so the total
	// number of dependency edges bounds the rounds needed; anything left
	// after that is reported, not retried forever.
	bound := edgeCount(out.Tasks) + 1
	for i := 0; i < bound; i++ {
		cycles := cycleViolations(out.Tasks)
		if len(cycles) == 0 {
			return out
		}
		loop := cycles[0].Cycle
		from, to := cycleEdgeToRemove(loop)
		removeDependency(out.Tasks, from, to)
		out.Changes = append(out.Changes, Change{
			Type: ChangeRemovedDependency, Path: taskid.Format(from), Removed: to,
			Reason: fmt.Sprintf("broke cycle %s", formatLoop(loop)),
		})
	}

	for _, v := range cycleViolations(out.Tasks) {
		out.UnfixableCycles = append(out.UnfixableCycles, v.Cycle)
	}
	return out
}

// cycleEdgeToRemove picks which loop edge to cut: the edge leaving the
// highest-id task in the loop. For a two-task loop this is the edge from
// the higher id back to the lower one, which keeps already-ordered ids
// intact. Loop ids are unique, so the choice is deterministic.
func cycleEdgeToRemove(loop []int) (from, to int) {
	best := -1
	for i := range loop {
		src := loop[i]
		dst := loop[(i+1)%len(loop)]
		if src > best {
			best, from, to = src, src, dst
		}
	}
	return from, to
}

func filterDeps(deps []int, selfID int, byID map[int]bool, path string, changes *[]Change) []int {
	kept := deps[:0]
	for _, dep := range deps {
		switch {
		case dep == selfID:
			*changes = append(*changes, Change{
				Type: ChangeRemovedDependency, Path: path, Removed: dep,
				Reason: "self-referential dependency",
			})
		case !byID[dep]:
			*changes = append(*changes, Change{
				Type: ChangeRemovedDependency, Path: path, Removed: dep,
				Reason: "dependency target does not exist",
			})
		default:
			kept = append(kept, dep)
		}
	}
	return kept
}

func cycleViolations(tasks []models.Task) []Violation {
	var cycles []Violation
	for _, v := range Validate(tasks).Violations {
		if v.Kind == ViolationCycle {
			cycles = append(cycles, v)
		}
	}
	return cycles
}

func removeDependency(tasks []models.Task, taskID, dep int) {
	for i := range tasks {
		if tasks[i].ID != taskID {
			continue
		}
		kept := tasks[i].Dependencies[:0]
		for _, d := range tasks[i].Dependencies {
			if d != dep {
				kept = append(kept, d)
			}
		}
		tasks[i].Dependencies = kept
		return
	}
}

func edgeCount(tasks []models.Task) int {
	n := 0
	for _, t := range tasks {
		n += len(t.Dependencies)
	}
	return n
}

// FixDependencies repairs one tag in place and refreshes its metadata when
// anything changed. The caller persists the store afterwards.
func FixDependencies(tm models.TagMap, tagName string) (*FixOutcome, error) {
	tg, ok := tm[tagName]
	if !ok {
		return nil, types.NewTaskErrorf(types.CodeTagNotFound, "tag %q not found", tagName)
	}
	out := Fix(tg.Tasks)
	if out.Changed() {
		tg.Tasks = out.Tasks
		tg.Touch()
	}
	return &out, nil
}
