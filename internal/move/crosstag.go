package move

import (
	"fmt"
	"sort"

	"github.com/tasktag/tasktag/internal/graph"
	"github.com/tasktag/tasktag/internal/taskid"
	"github.com/tasktag/tasktag/models"
	"github.com/tasktag/tasktag/types"
)

// CrossTagOptions selects how cross-partition dependency edges are
// reconciled. With neither flag set, any such edge aborts the move with a
// structured conflict so the caller can pick a resolution.
type CrossTagOptions struct {
	// WithDependencies pulls the moved tasks' transitive dependency
	// closure (within the source tag) into the move set.
	WithDependencies bool
	// IgnoreDependencies severs cross-partition edges instead, reporting
	// each dropped edge as a tip.
	IgnoreDependencies bool
}

// ConflictEdge is one dependency edge that would span two partitions.
type ConflictEdge struct {
	// From is the external address of the depending node ("3" or "3.2").
	From string `json:"from"`
	// To is the task id being depended on.
	To int `json:"to"`
	// Direction is "inbound" when a task staying behind depends on a
	// moved task, "outbound" when a moved task depends on one staying.
	Direction string `json:"direction"`
}

func (e ConflictEdge) String() string {
	return fmt.Sprintf("%s -> %d (%s)", e.From, e.To, e.Direction)
}

// CrossTag relocates tasks from sourceTag to destTag. The destination tag
// is created when absent. On any error the snapshot is left untouched.
func CrossTag(tm models.TagMap, sourceTag, destTag string, ids []string, opts CrossTagOptions) (*Result, error) {
	if sourceTag == destTag {
		return nil, types.NewTaskErrorf(types.CodeSameSourceTarget,
			"source and destination tag are both %q", sourceTag)
	}

	src, ok := tm[sourceTag]
	if !ok {
		return nil, types.NewTaskErrorf(types.CodeTagNotFound, "tag %q not found", sourceTag)
	}

	moveSet := make(map[int]bool, len(ids))
	for _, raw := range ids {
		id, err := parseTaskAddress(raw)
		if err != nil {
			return nil, err
		}
		if !src.HasTask(id) {
			return nil, types.NewTaskErrorf(types.CodeTaskNotFound,
				"task %d not found in tag %q", id, sourceTag)
		}
		moveSet[id] = true
	}

	result := &Result{}

	dest, destExists := tm[destTag]
	if !destExists {
		dest = models.NewTag("")
		result.Tips = append(result.Tips, fmt.Sprintf("tag %q did not exist and was created", destTag))
	}

	if opts.WithDependencies {
		expandDependencyClosure(src, moveSet)
	}

	// Id collisions across partitions are never silently renumbered.
	var collisions []int
	for id := range moveSet {
		if dest.HasTask(id) {
			collisions = append(collisions, id)
		}
	}
	if len(collisions) > 0 {
		sort.Ints(collisions)
		return nil, types.NewTaskError(types.CodeIDCollision,
			fmt.Sprintf("task ids already exist in tag %q: %v", destTag, collisions),
			map[string]interface{}{"ids": collisions, "destTag": destTag})
	}

	inbound, outbound := externalEdges(src, moveSet)

	// Outbound edges are resolved by closure expansion; inbound edges and,
	// without a flag, outbound edges too, need caller guidance.
	var conflicts []ConflictEdge
	if !opts.IgnoreDependencies {
		if !opts.WithDependencies {
			conflicts = append(conflicts, inbound...)
			conflicts = append(conflicts, outbound...)
		}
	}
	if len(conflicts) > 0 {
		return nil, crossTagConflictError(sourceTag, destTag, conflicts)
	}

	srcWork := src.DeepCopy()
	destWork := dest.DeepCopy()

	// Sever whatever still spans the partition boundary after expansion.
	sever := append(append([]ConflictEdge(nil), inbound...), outbound...)
	for _, edge := range sever {
		severEdge(srcWork, edge)
		result.Tips = append(result.Tips, fmt.Sprintf(
			"dependency %s was removed because it would cross from %q to %q",
			edge, sourceTag, destTag))
	}

	// Commit: extract in source order, append to the destination.
	var moved []models.Task
	kept := srcWork.Tasks[:0]
	for _, t := range srcWork.Tasks {
		if moveSet[t.ID] {
			moved = append(moved, t)
		} else {
			kept = append(kept, t)
		}
	}
	srcWork.Tasks = kept
	destWork.Tasks = append(destWork.Tasks, moved...)

	if res := graph.Validate(srcWork.Tasks); !res.Valid {
		return nil, validationError(sourceTag, res)
	}
	if res := graph.Validate(destWork.Tasks); !res.Valid {
		return nil, validationError(destTag, res)
	}

	srcWork.Touch()
	destWork.Touch()
	tm[sourceTag] = srcWork
	tm[destTag] = destWork

	for _, t := range moved {
		result.Moved = append(result.Moved, taskid.Format(t.ID))
	}
	return result, nil
}

// expandDependencyClosure grows the move set until every task the moved set
// depends on (within the tag) is itself in the set. Subtask dependencies
// count too: an unshadowed task-level id referenced by a moved task's
// subtask must come along, or extraction would leave it dangling.
func expandDependencyClosure(tg *models.Tag, moveSet map[int]bool) {
	for changed := true; changed; {
		changed = false
		for i := range tg.Tasks {
			t := &tg.Tasks[i]
			if !moveSet[t.ID] {
				continue
			}
			for _, dep := range t.Dependencies {
				if !moveSet[dep] && tg.HasTask(dep) {
					moveSet[dep] = true
					changed = true
				}
			}
			if len(t.Subtasks) == 0 {
				continue
			}
			siblings := make(map[int]bool, len(t.Subtasks))
			for _, st := range t.Subtasks {
				siblings[st.ID] = true
			}
			for _, st := range t.Subtasks {
				for _, dep := range st.Dependencies {
					if siblings[dep] {
						continue
					}
					if !moveSet[dep] && tg.HasTask(dep) {
						moveSet[dep] = true
						changed = true
					}
				}
			}
		}
	}
}

// externalEdges computes the dependency edges that would span the
// partition boundary: inbound edges from tasks (or their subtasks) staying
// in the source to moved ids, and outbound edges from moved tasks to ids
// staying behind. Subtask dependencies resolve sibling-first, so shadowed
// ids are not counted.
func externalEdges(tg *models.Tag, moveSet map[int]bool) (inbound, outbound []ConflictEdge) {
	for i := range tg.Tasks {
		t := &tg.Tasks[i]
		moving := moveSet[t.ID]

		for _, dep := range t.Dependencies {
			if !tg.HasTask(dep) {
				continue // dangling edges are the validator's concern
			}
			depMoving := moveSet[dep]
			switch {
			case !moving && depMoving:
				inbound = append(inbound, ConflictEdge{
					From: taskid.Format(t.ID), To: dep, Direction: "inbound"})
			case moving && !depMoving:
				outbound = append(outbound, ConflictEdge{
					From: taskid.Format(t.ID), To: dep, Direction: "outbound"})
			}
		}

		if len(t.Subtasks) == 0 {
			continue
		}
		siblings := make(map[int]bool, len(t.Subtasks))
		for _, st := range t.Subtasks {
			siblings[st.ID] = true
		}
		for _, st := range t.Subtasks {
			for _, dep := range st.Dependencies {
				if siblings[dep] || !tg.HasTask(dep) {
					continue
				}
				depMoving := moveSet[dep]
				switch {
				case !moving && depMoving:
					inbound = append(inbound, ConflictEdge{
						From: taskid.FormatSubtask(t.ID, st.ID), To: dep, Direction: "inbound"})
				case moving && !depMoving:
					outbound = append(outbound, ConflictEdge{
						From: taskid.FormatSubtask(t.ID, st.ID), To: dep, Direction: "outbound"})
				}
			}
		}
	}
	return inbound, outbound
}

// severEdge removes the dependency edge described by the conflict from the
// working copy of the source tag.
func severEdge(tg *models.Tag, edge ConflictEdge) {
	id, err := taskid.Parse(edge.From)
	if err != nil {
		return
	}
	t := tg.FindTask(id.TaskID)
	if t == nil {
		return
	}
	if !id.IsSubtask {
		kept := t.Dependencies[:0]
		for _, d := range t.Dependencies {
			if d != edge.To {
				kept = append(kept, d)
			}
		}
		t.Dependencies = kept
		return
	}
	for j := range t.Subtasks {
		if t.Subtasks[j].ID != id.SubtaskID {
			continue
		}
		kept := t.Subtasks[j].Dependencies[:0]
		for _, d := range t.Subtasks[j].Dependencies {
			if d != edge.To {
				kept = append(kept, d)
			}
		}
		t.Subtasks[j].Dependencies = kept
		return
	}
}

func crossTagConflictError(sourceTag, destTag string, edges []ConflictEdge) error {
	rendered := make([]string, len(edges))
	for i, e := range edges {
		rendered[i] = e.String()
	}
	return types.NewTaskError(types.CodeCrossTagConflict,
		fmt.Sprintf("%d dependency edge(s) would span tags %q and %q; pass withDependencies or ignoreDependencies",
			len(edges), sourceTag, destTag),
		map[string]interface{}{
			"sourceTag": sourceTag,
			"destTag":   destTag,
			"edges":     edges,
			"rendered":  rendered,
		})
}
