package move

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktag/tasktag/models"
	"github.com/tasktag/tasktag/types"
)

func task(id int, deps ...int) models.Task {
	t := models.NewTask(id, "task", "")
	t.Dependencies = deps
	return t
}

func tagWith(tasks ...models.Task) *models.Tag {
	tg := models.NewTag("")
	tg.Tasks = tasks
	return tg
}

func taskIDs(tg *models.Tag) []int {
	out := make([]int, len(tg.Tasks))
	for i, t := range tg.Tasks {
		out[i] = t.ID
	}
	return out
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var te *types.TaskError
	require.ErrorAs(t, err, &te)
	return te.Code
}

func TestWithinTagRelabel(t *testing.T) {
	tm := models.TagMap{"master": tagWith(task(1), task(2, 1), task(3, 1, 2))}

	res, err := WithinTag(tm, "master", "1", "10")
	require.NoError(t, err)
	assert.Equal(t, []string{"10"}, res.Moved)

	tg := tm["master"]
	assert.Equal(t, []int{10, 2, 3}, taskIDs(tg))
	assert.Equal(t, []int{10}, tg.Tasks[1].Dependencies)
	assert.Equal(t, []int{10, 2}, tg.Tasks[2].Dependencies)
}

func TestWithinTagSwap(t *testing.T) {
	// Destination id exists, so the move is a swap with dependents'
	// references following both ids.
	tm := models.TagMap{"master": tagWith(task(1), task(2), task(3, 1, 2))}

	res, err := WithinTag(tm, "master", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, res.Moved)

	tg := tm["master"]
	assert.Equal(t, []int{2, 1, 3}, taskIDs(tg))
	// Task 3 still depends on the same two tasks under their new ids.
	assert.Equal(t, []int{2, 1}, tg.Tasks[2].Dependencies)
}

func TestWithinTagIdentityMove(t *testing.T) {
	tm := models.TagMap{"master": tagWith(task(1), task(2, 1))}
	before := tm["master"].Tasks[1].Dependencies

	res, err := WithinTag(tm, "master", "2", "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, res.Moved)
	assert.Equal(t, before, tm["master"].Tasks[1].Dependencies)
	assert.Equal(t, []int{1, 2}, taskIDs(tm["master"]))
}

func TestWithinTagRewritesSubtaskDeps(t *testing.T) {
	parent := task(2, 1)
	parent.Subtasks = []models.Subtask{
		{ID: 1, Title: "shadowed", Dependencies: []int{1}},
		{ID: 3, Title: "follows", Dependencies: []int{1}},
	}
	tm := models.TagMap{"master": tagWith(task(1), parent)}

	_, err := WithinTag(tm, "master", "1", "9")
	require.NoError(t, err)

	got := tm["master"].FindTask(2)
	require.NotNil(t, got)
	// Subtask 2.1's dependency 1 names its own sibling, so it stays put.
	assert.Equal(t, []int{1}, got.Subtasks[0].Dependencies)
	// Subtask 2.3's dependency 1 named the top-level task and follows it.
	assert.Equal(t, []int{9}, got.Subtasks[1].Dependencies)
}

func TestWithinTagDropsDepWhenTargetIDShadowed(t *testing.T) {
	holder := task(2)
	holder.Subtasks = []models.Subtask{
		{ID: 5, Title: "shadow"},
		{ID: 3, Title: "depends out", Dependencies: []int{1}},
	}
	tm := models.TagMap{"master": tagWith(task(1), holder)}

	res, err := WithinTag(tm, "master", "1", "5")
	require.NoError(t, err)

	got := tm["master"].FindTask(2)
	require.NotNil(t, got)
	// Rewriting 2.3's dependency to 5 would bind it to sibling 2.5, a task
	// it never depended on. The edge is dropped and reported instead.
	assert.Empty(t, got.Subtasks[1].Dependencies)
	require.Len(t, res.Tips, 1)
	assert.Contains(t, res.Tips[0], "shadowed by a sibling")
}

func TestWithinTagErrors(t *testing.T) {
	tm := models.TagMap{"master": tagWith(task(1))}

	_, err := WithinTag(tm, "missing", "1", "2")
	assert.Equal(t, types.CodeTagNotFound, errCode(t, err))

	_, err = WithinTag(tm, "master", "7", "2")
	assert.Equal(t, types.CodeTaskNotFound, errCode(t, err))

	_, err = WithinTag(tm, "master", "1.2", "2")
	assert.Equal(t, types.CodeSubtaskMove, errCode(t, err))

	_, err = WithinTag(tm, "master", "x", "2")
	assert.Equal(t, types.CodeInvalidIDFormat, errCode(t, err))

	// The snapshot is untouched after any failure.
	assert.Equal(t, []int{1}, taskIDs(tm["master"]))
}

func TestBatchPartialSuccess(t *testing.T) {
	tm := models.TagMap{"master": tagWith(task(1), task(2), task(3))}

	out := Batch(tm, "master", []string{"1", "77", "3"}, []string{"10", "78", "30"})
	assert.Equal(t, []string{"10", "30"}, out.Moved)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, "77", out.Failures[0].From)
	assert.Equal(t, types.CodeTaskNotFound, out.Failures[0].Err.Code)

	// The two good pairs applied even though the middle one failed.
	assert.Equal(t, []int{10, 2, 30}, taskIDs(tm["master"]))
}

func TestBatchLengthMismatch(t *testing.T) {
	tm := models.TagMap{"master": tagWith(task(1))}
	out := Batch(tm, "master", []string{"1", "2"}, []string{"3"})
	assert.Empty(t, out.Moved)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, types.CodeInvalidIDFormat, out.Failures[0].Err.Code)
	assert.Equal(t, []int{1}, taskIDs(tm["master"]))
}
