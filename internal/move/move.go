// Package move relocates and reorders tasks: id relabels and swaps within
// a tag, and cross-tag moves that reconcile dependency edges spanning two
// partitions. Every operation validates the outcome before installing it
// into the snapshot, so a returned error means the store is untouched.
package move

import (
	"fmt"

	"github.com/tasktag/tasktag/internal/graph"
	"github.com/tasktag/tasktag/internal/taskid"
	"github.com/tasktag/tasktag/models"
	"github.com/tasktag/tasktag/types"
)

// Result reports a completed move operation.
type Result struct {
	// Moved lists the external addresses affected, in application order.
	Moved []string `json:"moved"`
	// Tips carries caller-facing warnings: severed edges, implicitly
	// created tags, rewritten dependency ids.
	Tips []string `json:"tips,omitempty"`
}

// BatchFailure is one failed pair inside a batch move.
type BatchFailure struct {
	From string           `json:"from"`
	To   string           `json:"to"`
	Err  *types.TaskError `json:"error"`
}

// BatchResult reports a batch move. Failures do not roll back pairs that
// already applied; partial success is the contract for bulk usage.
type BatchResult struct {
	Moved    []string       `json:"moved"`
	Tips     []string       `json:"tips,omitempty"`
	Failures []BatchFailure `json:"failures,omitempty"`
}

// WithinTag relabels a task id inside one tag, or swaps two ids when the
// destination already exists. Dependency references across the whole tag
// follow the relabel. Subtask addresses are rejected; promote first.
func WithinTag(tm models.TagMap, tagName, fromID, toID string) (*Result, error) {
	from, err := parseTaskAddress(fromID)
	if err != nil {
		return nil, err
	}
	to, err := parseTaskAddress(toID)
	if err != nil {
		return nil, err
	}

	tg, ok := tm[tagName]
	if !ok {
		return nil, types.NewTaskErrorf(types.CodeTagNotFound, "tag %q not found", tagName)
	}
	if !tg.HasTask(from) {
		return nil, types.NewTaskErrorf(types.CodeTaskNotFound, "task %d not found in tag %q", from, tagName)
	}

	// Identity move: nothing changes except the tag timestamp.
	if from == to {
		tg.Touch()
		return &Result{Moved: []string{taskid.Format(from)}}, nil
	}

	work := tg.DeepCopy()
	var moved, tips []string
	if work.HasTask(to) {
		tips = swapIDs(work, from, to)
		moved = []string{taskid.Format(from), taskid.Format(to)}
	} else {
		tips = relabelID(work, from, to)
		moved = []string{taskid.Format(to)}
	}

	if res := graph.Validate(work.Tasks); !res.Valid {
		return nil, validationError(tagName, res)
	}

	work.Touch()
	tm[tagName] = work
	return &Result{Moved: moved, Tips: tips}, nil
}

// Batch applies from/to pairs sequentially. A failing pair is recorded and
// the remaining pairs still run; already-applied pairs stay applied.
func Batch(tm models.TagMap, tagName string, fromIDs, toIDs []string) *BatchResult {
	out := &BatchResult{}
	if len(fromIDs) != len(toIDs) {
		out.Failures = append(out.Failures, BatchFailure{
			Err: types.NewTaskErrorf(types.CodeInvalidIDFormat,
				"from/to id lists differ in length: %d vs %d", len(fromIDs), len(toIDs)),
		})
		return out
	}
	for i := range fromIDs {
		res, err := WithinTag(tm, tagName, fromIDs[i], toIDs[i])
		if err != nil {
			out.Failures = append(out.Failures, BatchFailure{
				From: fromIDs[i], To: toIDs[i], Err: asTaskError(err),
			})
			continue
		}
		out.Moved = append(out.Moved, res.Moved...)
		out.Tips = append(out.Tips, res.Tips...)
	}
	return out
}

// parseTaskAddress parses an id and rejects subtask addresses: a bare
// subtask cannot be relabeled or moved across tags without promotion.
func parseTaskAddress(raw string) (int, error) {
	id, err := taskid.Parse(raw)
	if err != nil {
		return 0, err
	}
	if id.IsSubtask {
		return 0, types.NewTaskError(types.CodeSubtaskMove,
			fmt.Sprintf("%s is a subtask address; promote it to a task before moving", id),
			map[string]interface{}{"id": id.String()})
	}
	return id.TaskID, nil
}

// swapIDs exchanges two task ids and every dependency reference to either.
func swapIDs(tg *models.Tag, a, b int) []string {
	for i := range tg.Tasks {
		switch tg.Tasks[i].ID {
		case a:
			tg.Tasks[i].ID = b
		case b:
			tg.Tasks[i].ID = a
		}
	}
	return rewriteReferences(tg, map[int]int{a: b, b: a})
}

// relabelID changes one task id and every dependency reference to it.
func relabelID(tg *models.Tag, from, to int) []string {
	if t := tg.FindTask(from); t != nil {
		t.ID = to
	}
	return rewriteReferences(tg, map[int]int{from: to})
}

// rewriteReferences applies an id mapping to every dependency list in the
// tag. Subtask dependency ids resolve sibling-first, so a value that names
// a sibling subtask is left alone even when a top-level task shares it;
// conversely, when the mapped-to id is shadowed by a sibling, rewriting
// would silently retarget the edge, so it is dropped and reported instead.
func rewriteReferences(tg *models.Tag, mapping map[int]int) []string {
	var tips []string
	for i := range tg.Tasks {
		t := &tg.Tasks[i]
		for j, dep := range t.Dependencies {
			if to, ok := mapping[dep]; ok {
				t.Dependencies[j] = to
			}
		}
		if len(t.Subtasks) == 0 {
			continue
		}
		siblings := make(map[int]bool, len(t.Subtasks))
		for _, st := range t.Subtasks {
			siblings[st.ID] = true
		}
		for j := range t.Subtasks {
			st := &t.Subtasks[j]
			kept := st.Dependencies[:0]
			for _, dep := range st.Dependencies {
				if siblings[dep] {
					kept = append(kept, dep)
					continue
				}
				to, ok := mapping[dep]
				if !ok {
					kept = append(kept, dep)
					continue
				}
				if siblings[to] {
					tips = append(tips, fmt.Sprintf(
						"dependency of %s on task %d was dropped (id %d is shadowed by a sibling subtask)",
						taskid.FormatSubtask(t.ID, st.ID), dep, to))
					continue
				}
				kept = append(kept, to)
			}
			st.Dependencies = kept
		}
	}
	return tips
}

func validationError(tagName string, res graph.Result) error {
	return types.NewTaskError(types.CodeValidationFailed,
		fmt.Sprintf("move would leave tag %q invalid", tagName),
		map[string]interface{}{"violations": res.Violations})
}

func asTaskError(err error) *types.TaskError {
	if te, ok := err.(*types.TaskError); ok {
		return te
	}
	return types.NewTaskError(types.CodeValidationFailed, err.Error(), nil)
}
