package move

import (
	"fmt"

	"github.com/tasktag/tasktag/internal/graph"
	"github.com/tasktag/tasktag/internal/taskid"
	"github.com/tasktag/tasktag/models"
	"github.com/tasktag/tasktag/types"
)

// PromoteSubtask converts a subtask into a top-level task: it gets the next
// free id in the tag, sibling-relative dependency ids are rewritten, the
// parent link is recorded, and the subtask leaves its parent's list.
func PromoteSubtask(tm models.TagMap, tagName, addr string) (*Result, error) {
	id, err := taskid.Parse(addr)
	if err != nil {
		return nil, err
	}
	if !id.IsSubtask {
		return nil, types.NewTaskErrorf(types.CodeInvalidIDFormat,
			"%s is not a subtask address", addr)
	}

	tg, ok := tm[tagName]
	if !ok {
		return nil, types.NewTaskErrorf(types.CodeTagNotFound, "tag %q not found", tagName)
	}

	work := tg.DeepCopy()
	parent := work.FindTask(id.TaskID)
	if parent == nil {
		return nil, types.NewTaskErrorf(types.CodeTaskNotFound,
			"task %d not found in tag %q", id.TaskID, tagName)
	}

	subIdx := -1
	for i, st := range parent.Subtasks {
		if st.ID == id.SubtaskID {
			subIdx = i
			break
		}
	}
	if subIdx < 0 {
		return nil, types.NewTaskErrorf(types.CodeTaskNotFound,
			"subtask %s not found in tag %q", addr, tagName)
	}

	st := parent.Subtasks[subIdx]
	newID := work.NextTaskID()
	result := &Result{Moved: []string{taskid.Format(newID)}}

	siblings := make(map[int]bool, len(parent.Subtasks))
	for _, s := range parent.Subtasks {
		siblings[s.ID] = true
	}

	// Dependencies on siblings cannot follow the subtask to the top level;
	// they collapse onto the parent, which still contains those siblings.
	parentID := parent.ID
	promoted := models.Task{
		ID:           newID,
		Title:        st.Title,
		Description:  st.Description,
		Status:       st.Status,
		Priority:     st.Priority,
		Details:      st.Details,
		TestStrategy: st.TestStrategy,
		ParentTaskID: &parentID,
		Dependencies: []int{},
	}
	for _, dep := range st.Dependencies {
		if dep == st.ID {
			continue
		}
		if siblings[dep] {
			result.Tips = append(result.Tips, fmt.Sprintf(
				"dependency on sibling %s was rewritten to parent task %d",
				taskid.FormatSubtask(parent.ID, dep), parent.ID))
			promoted.Dependencies = append(promoted.Dependencies, parent.ID)
			continue
		}
		promoted.Dependencies = append(promoted.Dependencies, dep)
	}
	promoted.NormalizeDependencies()

	parent.Subtasks = append(parent.Subtasks[:subIdx], parent.Subtasks[subIdx+1:]...)

	// Siblings that depended on the promoted subtask now reference its new
	// top-level id, unless a remaining sibling shadows that id.
	for i := range parent.Subtasks {
		sib := &parent.Subtasks[i]
		for j, dep := range sib.Dependencies {
			if dep != st.ID {
				continue
			}
			if shadowed(parent.Subtasks, newID) {
				sib.Dependencies = append(sib.Dependencies[:j], sib.Dependencies[j+1:]...)
				result.Tips = append(result.Tips, fmt.Sprintf(
					"dependency of %s on promoted subtask was dropped (new id %d is shadowed by a sibling)",
					taskid.FormatSubtask(parent.ID, sib.ID), newID))
				break
			}
			sib.Dependencies[j] = newID
		}
	}

	work.Tasks = append(work.Tasks, promoted)

	if res := graph.Validate(work.Tasks); !res.Valid {
		return nil, validationError(tagName, res)
	}

	work.Touch()
	tm[tagName] = work
	return result, nil
}

func shadowed(subtasks []models.Subtask, id int) bool {
	for _, st := range subtasks {
		if st.ID == id {
			return true
		}
	}
	return false
}

// RemoveTask destroys a task or subtask. Dependents elsewhere in the tag
// lose the removed id from their dependency lists; every dropped edge is
// reported as a tip, never silently.
func RemoveTask(tm models.TagMap, tagName, addr string) (*Result, error) {
	id, err := taskid.Parse(addr)
	if err != nil {
		return nil, err
	}

	tg, ok := tm[tagName]
	if !ok {
		return nil, types.NewTaskErrorf(types.CodeTagNotFound, "tag %q not found", tagName)
	}

	work := tg.DeepCopy()
	result := &Result{Moved: []string{id.String()}}

	if id.IsSubtask {
		if err := removeSubtask(work, id, result); err != nil {
			return nil, err
		}
	} else {
		if err := removeTopLevel(work, id.TaskID, result); err != nil {
			return nil, err
		}
	}

	if res := graph.Validate(work.Tasks); !res.Valid {
		return nil, validationError(tagName, res)
	}

	work.Touch()
	tm[tagName] = work
	return result, nil
}

func removeTopLevel(tg *models.Tag, id int, result *Result) error {
	idx := -1
	for i := range tg.Tasks {
		if tg.Tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return types.NewTaskErrorf(types.CodeTaskNotFound, "task %d not found", id)
	}

	tg.Tasks = append(tg.Tasks[:idx], tg.Tasks[idx+1:]...)

	// Cascade: strip the removed id from every remaining dependency list,
	// including subtask lists where the id is not shadowed by a sibling.
	for i := range tg.Tasks {
		t := &tg.Tasks[i]
		for j := len(t.Dependencies) - 1; j >= 0; j-- {
			if t.Dependencies[j] == id {
				t.Dependencies = append(t.Dependencies[:j], t.Dependencies[j+1:]...)
				result.Tips = append(result.Tips, fmt.Sprintf(
					"task %d no longer depends on removed task %d", t.ID, id))
			}
		}
		siblings := make(map[int]bool, len(t.Subtasks))
		for _, st := range t.Subtasks {
			siblings[st.ID] = true
		}
		for j := range t.Subtasks {
			st := &t.Subtasks[j]
			for k := len(st.Dependencies) - 1; k >= 0; k-- {
				if st.Dependencies[k] == id && !siblings[id] {
					st.Dependencies = append(st.Dependencies[:k], st.Dependencies[k+1:]...)
					result.Tips = append(result.Tips, fmt.Sprintf(
						"subtask %s no longer depends on removed task %d",
						taskid.FormatSubtask(t.ID, st.ID), id))
				}
			}
		}
	}
	return nil
}

func removeSubtask(tg *models.Tag, id taskid.ID, result *Result) error {
	parent := tg.FindTask(id.TaskID)
	if parent == nil {
		return types.NewTaskErrorf(types.CodeTaskNotFound, "task %d not found", id.TaskID)
	}
	idx := -1
	for i, st := range parent.Subtasks {
		if st.ID == id.SubtaskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return types.NewTaskErrorf(types.CodeTaskNotFound, "subtask %s not found", id)
	}

	parent.Subtasks = append(parent.Subtasks[:idx], parent.Subtasks[idx+1:]...)

	for i := range parent.Subtasks {
		sib := &parent.Subtasks[i]
		for k := len(sib.Dependencies) - 1; k >= 0; k-- {
			if sib.Dependencies[k] == id.SubtaskID {
				sib.Dependencies = append(sib.Dependencies[:k], sib.Dependencies[k+1:]...)
				result.Tips = append(result.Tips, fmt.Sprintf(
					"subtask %d.%d no longer depends on removed subtask %s",
					parent.ID, sib.ID, id))
			}
		}
	}
	return nil
}
