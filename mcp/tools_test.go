package mcp

import (
	"context"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"

	"github.com/tasktag/tasktag/internal/graph"
	"github.com/tasktag/tasktag/models"
	"github.com/tasktag/tasktag/store"
	"github.com/tasktag/tasktag/types"
)

func newMemStore(t *testing.T) store.TagStore {
	t.Helper()
	s := store.NewFileTagStore(afero.NewMemMapFs())
	if err := s.Initialize(map[string]string{"dataFile": "tasks.json"}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return s
}

func seedTasks(t *testing.T, s store.TagStore, tasks ...models.Task) {
	t.Helper()
	tg := models.NewTag("")
	tg.Tasks = tasks
	tm := models.TagMap{store.DefaultTag: tg}
	if err := s.Save(tm); err != nil {
		t.Fatalf("seed Save() error = %v", err)
	}
}

func depTask(id int, deps ...int) models.Task {
	task := models.NewTask(id, "task", "d")
	task.Dependencies = deps
	return task
}

func TestRegisterTools(t *testing.T) {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "test", Version: "0.0.0"}, nil)
	if err := RegisterTools(server, newMemStore(t), "master"); err != nil {
		t.Fatalf("RegisterTools() error = %v", err)
	}
}

func TestValidateTool(t *testing.T) {
	s := newMemStore(t)
	seedTasks(t, s, depTask(1, 2), depTask(2, 1))

	handler := validateHandler(s)
	res, err := handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.ValidateParams]{
		Arguments: types.ValidateParams{Tag: "master"},
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(res.StructuredContent.Message, "1 violation(s)") {
		t.Errorf("unexpected message: %s", res.StructuredContent.Message)
	}

	results, ok := res.StructuredContent.Data.(map[string]graph.Result)
	if !ok {
		t.Fatalf("unexpected data type %T", res.StructuredContent.Data)
	}
	if results["master"].Valid {
		t.Error("expected the cycle to be reported")
	}
}

func TestFixToolPersistsRepairs(t *testing.T) {
	s := newMemStore(t)
	seedTasks(t, s, depTask(1, 2), depTask(2, 1))

	handler := fixHandler(s, "master")
	if _, err := handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.FixParams]{
		Arguments: types.FixParams{},
	}); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	tm, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res := graph.Validate(tm["master"].Tasks); !res.Valid {
		t.Errorf("repairs not persisted: %v", res.Violations)
	}
}

func TestMoveToolSingleAndBatch(t *testing.T) {
	s := newMemStore(t)
	seedTasks(t, s, depTask(1), depTask(2, 1))

	handler := moveHandler(s, "master")
	res, err := handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.MoveParams]{
		Arguments: types.MoveParams{From: "1", To: "5"},
	})
	if err != nil {
		t.Fatalf("single move error: %v", err)
	}
	if !strings.Contains(res.StructuredContent.Message, "moved 5") {
		t.Errorf("unexpected message: %s", res.StructuredContent.Message)
	}

	tm, _ := s.Load()
	if !tm["master"].HasTask(5) {
		t.Fatal("relabel not persisted")
	}
	if deps := tm["master"].FindTask(2).Dependencies; len(deps) != 1 || deps[0] != 5 {
		t.Errorf("dependency did not follow relabel: %v", deps)
	}

	// Batch with one bad pair: partial success persists the good pair.
	res, err = handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.MoveParams]{
		Arguments: types.MoveParams{From: "5, 99", To: "6, 100"},
	})
	if err != nil {
		t.Fatalf("batch move error: %v", err)
	}
	if !strings.Contains(res.StructuredContent.Message, "1 failure(s)") {
		t.Errorf("unexpected message: %s", res.StructuredContent.Message)
	}
	tm, _ = s.Load()
	if !tm["master"].HasTask(6) {
		t.Error("batch success pair not persisted")
	}
}

func TestCrossMoveTool(t *testing.T) {
	s := newMemStore(t)
	seedTasks(t, s, depTask(1), depTask(2, 1), depTask(3, 2))

	handler := crossMoveHandler(s)

	// Unresolved boundary edges surface the structured conflict error.
	_, err := handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.CrossMoveParams]{
		Arguments: types.CrossMoveParams{FromTag: "master", ToTag: "feature", IDs: "2"},
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	te, ok := err.(*types.TaskError)
	if !ok || te.Code != types.CodeCrossTagConflict {
		t.Fatalf("expected CROSS_TAG_DEPENDENCY_CONFLICTS, got %v", err)
	}

	// withDependencies pulls the closure along and persists both tags.
	res, err := handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.CrossMoveParams]{
		Arguments: types.CrossMoveParams{FromTag: "master", ToTag: "feature", IDs: "2", WithDependencies: true},
	})
	if err != nil {
		t.Fatalf("cross move error: %v", err)
	}
	if !strings.Contains(res.StructuredContent.Message, `from "master" to "feature"`) {
		t.Errorf("unexpected message: %s", res.StructuredContent.Message)
	}

	tm, _ := s.Load()
	if !tm["feature"].HasTask(1) || !tm["feature"].HasTask(2) {
		t.Errorf("closure not moved: %v", tm["feature"].Tasks)
	}
	if tm["master"].HasTask(2) {
		t.Error("moved task still in source tag")
	}
}

func TestTagTools(t *testing.T) {
	s := newMemStore(t)
	seedTasks(t, s, depTask(1))

	add := addTagHandler(s)
	if _, err := add(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.AddTagParams]{
		Arguments: types.AddTagParams{Name: "feature", CopyFrom: "master"},
	}); err != nil {
		t.Fatalf("add-tag error: %v", err)
	}

	rename := renameTagHandler(s)
	if _, err := rename(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.RenameTagParams]{
		Arguments: types.RenameTagParams{Old: "feature", New: "release"},
	}); err != nil {
		t.Fatalf("rename-tag error: %v", err)
	}

	list := listTagsHandler(s)
	res, err := list(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.ListTagsParams]{})
	if err != nil {
		t.Fatalf("list-tags error: %v", err)
	}
	if !strings.Contains(res.StructuredContent.Message, "2 tag(s)") {
		t.Errorf("unexpected message: %s", res.StructuredContent.Message)
	}

	del := deleteTagHandler(s)
	if _, err := del(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.DeleteTagParams]{
		Arguments: types.DeleteTagParams{Name: "release"},
	}); err != nil {
		t.Fatalf("delete-tag error: %v", err)
	}

	tm, _ := s.Load()
	if _, exists := tm["release"]; exists {
		t.Error("deleted tag still present")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" 1, 2 ,,3 ")
	if len(got) != 3 || got[0] != "1" || got[1] != "2" || got[2] != "3" {
		t.Errorf("unexpected split: %v", got)
	}
	if got := splitList(""); len(got) != 0 {
		t.Errorf("expected empty split, got %v", got)
	}
}
