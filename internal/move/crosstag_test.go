package move

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktag/tasktag/models"
	"github.com/tasktag/tasktag/types"
)

// chainTag builds {1:[], 2:[1], 3:[2]}.
func chainTag() *models.Tag {
	return tagWith(task(1), task(2, 1), task(3, 2))
}

func TestCrossTagConflictWithoutFlags(t *testing.T) {
	tm := models.TagMap{"A": chainTag()}

	_, err := CrossTag(tm, "A", "B", []string{"2"}, CrossTagOptions{})
	require.Error(t, err)
	var te *types.TaskError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, types.CodeCrossTagConflict, te.Code)

	edges, ok := te.Details["edges"].([]ConflictEdge)
	require.True(t, ok)
	require.Len(t, edges, 2)
	// 3 stays and depends on moved 2; moved 2 depends on staying 1.
	assert.Contains(t, edges, ConflictEdge{From: "3", To: 2, Direction: "inbound"})
	assert.Contains(t, edges, ConflictEdge{From: "2", To: 1, Direction: "outbound"})

	// Nothing committed: no tag B, tag A intact.
	_, exists := tm["B"]
	assert.False(t, exists)
	assert.Equal(t, []int{1, 2, 3}, taskIDs(tm["A"]))
}

func TestCrossTagWithDependenciesExpandsClosure(t *testing.T) {
	tm := models.TagMap{"A": chainTag()}

	res, err := CrossTag(tm, "A", "B", []string{"2"}, CrossTagOptions{WithDependencies: true})
	require.NoError(t, err)

	// The move set expands to {1, 2}; both land in B in source order.
	assert.Equal(t, []string{"1", "2"}, res.Moved)
	assert.Equal(t, []int{1, 2}, taskIDs(tm["B"]))
	assert.Equal(t, []int{1}, tm["B"].Tasks[1].Dependencies)

	// Task 3 stays behind; its edge to 2 would dangle, so it is severed
	// and reported.
	require.Equal(t, []int{3}, taskIDs(tm["A"]))
	assert.Empty(t, tm["A"].Tasks[0].Dependencies)
	require.NotEmpty(t, res.Tips)
	found := false
	for _, tip := range res.Tips {
		if strings.Contains(tip, "3 -> 2") {
			found = true
		}
	}
	assert.True(t, found, "expected a tip about the severed 3 -> 2 edge, got %v", res.Tips)
}

func TestCrossTagWithDependenciesFollowsSubtaskEdges(t *testing.T) {
	// The moved task's own dependency list is empty; only its subtask
	// references task 7, which in turn depends on 9. Both must come along.
	mover := task(2)
	mover.Subtasks = []models.Subtask{{ID: 1, Title: "needs seven", Dependencies: []int{7}}}
	tm := models.TagMap{"A": tagWith(mover, task(7, 9), task(9))}

	res, err := CrossTag(tm, "A", "B", []string{"2"}, CrossTagOptions{WithDependencies: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "7", "9"}, res.Moved)
	assert.Empty(t, tm["A"].Tasks)

	got := tm["B"].FindTask(2)
	require.NotNil(t, got)
	// The subtask's edge survives intact; nothing was severed.
	assert.Equal(t, []int{7}, got.Subtasks[0].Dependencies)
	for _, tip := range res.Tips {
		assert.NotContains(t, tip, "was removed")
	}
}

func TestCrossTagWithDependenciesSkipsShadowedSubtaskDeps(t *testing.T) {
	// Sibling id 3 shadows task 3, so the subtask edge stays internal and
	// task 3 must not be pulled into the move set.
	mover := task(2)
	mover.Subtasks = []models.Subtask{
		{ID: 1, Title: "refers sibling", Dependencies: []int{3}},
		{ID: 3, Title: "shadow"},
	}
	tm := models.TagMap{"A": tagWith(mover, task(3))}

	res, err := CrossTag(tm, "A", "B", []string{"2"}, CrossTagOptions{WithDependencies: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, res.Moved)
	assert.Equal(t, []int{3}, taskIDs(tm["A"]))
}

func TestCrossTagIgnoreDependenciesSeversBothDirections(t *testing.T) {
	tm := models.TagMap{"A": chainTag()}

	res, err := CrossTag(tm, "A", "B", []string{"2"}, CrossTagOptions{IgnoreDependencies: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, res.Moved)

	// 2 arrives in B with its edge to 1 stripped.
	require.Equal(t, []int{2}, taskIDs(tm["B"]))
	assert.Empty(t, tm["B"].Tasks[0].Dependencies)

	// 3 in A loses its edge to 2.
	got := tm["A"].FindTask(3)
	require.NotNil(t, got)
	assert.Empty(t, got.Dependencies)

	// One tip per severed edge plus the implicit tag creation.
	assert.Len(t, res.Tips, 3)
}

func TestCrossTagImplicitDestinationCreation(t *testing.T) {
	tm := models.TagMap{"A": tagWith(task(1))}

	res, err := CrossTag(tm, "A", "B", []string{"1"}, CrossTagOptions{})
	require.NoError(t, err)
	require.Contains(t, tm, "B")
	assert.Equal(t, []int{1}, taskIDs(tm["B"]))
	assert.Empty(t, tm["A"].Tasks)
	require.Len(t, res.Tips, 1)
	assert.Contains(t, res.Tips[0], "did not exist")
}

func TestCrossTagIDCollision(t *testing.T) {
	tm := models.TagMap{
		"A": tagWith(task(1), task(2)),
		"B": tagWith(task(2)),
	}

	_, err := CrossTag(tm, "A", "B", []string{"1", "2"}, CrossTagOptions{})
	require.Error(t, err)
	var te *types.TaskError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, types.CodeIDCollision, te.Code)
	assert.Equal(t, []int{2}, te.Details["ids"])

	// Both tags are left exactly as they were.
	assert.Equal(t, []int{1, 2}, taskIDs(tm["A"]))
	assert.Equal(t, []int{2}, taskIDs(tm["B"]))
}

func TestCrossTagSameSourceAndTarget(t *testing.T) {
	tm := models.TagMap{"A": tagWith(task(1))}
	_, err := CrossTag(tm, "A", "A", []string{"1"}, CrossTagOptions{})
	assert.Equal(t, types.CodeSameSourceTarget, errCode(t, err))
}

func TestCrossTagUnknownSourceAndTask(t *testing.T) {
	tm := models.TagMap{"A": tagWith(task(1))}

	_, err := CrossTag(tm, "X", "B", []string{"1"}, CrossTagOptions{})
	assert.Equal(t, types.CodeTagNotFound, errCode(t, err))

	_, err = CrossTag(tm, "A", "B", []string{"9"}, CrossTagOptions{})
	assert.Equal(t, types.CodeTaskNotFound, errCode(t, err))

	_, err = CrossTag(tm, "A", "B", []string{"1.2"}, CrossTagOptions{})
	assert.Equal(t, types.CodeSubtaskMove, errCode(t, err))
}

func TestCrossTagSubtaskEdgesCounted(t *testing.T) {
	// A subtask of a staying task depends on the moved task; sibling ids
	// shadow, so only the unshadowed reference counts.
	stayer := task(3)
	stayer.Subtasks = []models.Subtask{
		{ID: 2, Title: "shadow"},
		{ID: 4, Title: "refers out", Dependencies: []int{2}},
		{ID: 5, Title: "refers sibling", Dependencies: []int{4}},
	}
	tm := models.TagMap{"A": tagWith(task(1), task(2), stayer)}

	_, err := CrossTag(tm, "A", "B", []string{"2"}, CrossTagOptions{})
	require.NoError(t, err, "sibling id 2 shadows task 2, so no edge spans the boundary")
	assert.Equal(t, []int{2}, taskIDs(tm["B"]))
}

func TestCrossTagMovesSubtasksAlong(t *testing.T) {
	mover := task(2, 1)
	mover.Subtasks = []models.Subtask{{ID: 1, Title: "carry me"}}
	tm := models.TagMap{"A": tagWith(task(1), mover)}

	_, err := CrossTag(tm, "A", "B", []string{"2"}, CrossTagOptions{IgnoreDependencies: true})
	require.NoError(t, err)
	got := tm["B"].FindTask(2)
	require.NotNil(t, got)
	require.Len(t, got.Subtasks, 1)
	assert.Equal(t, "carry me", got.Subtasks[0].Title)
}
