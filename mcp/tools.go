// Package mcp exposes the tag-store operation surface as MCP tools over
// stdio. Handlers load the store, apply one operation, and persist; every
// structured error code passes through to the client unchanged.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tasktag/tasktag/internal/graph"
	"github.com/tasktag/tasktag/internal/move"
	"github.com/tasktag/tasktag/models"
	"github.com/tasktag/tasktag/store"
	"github.com/tasktag/tasktag/types"
)

// RegisterTools registers the core graph, move, and tag-partition tools.
func RegisterTools(server *mcpsdk.Server, tagStore store.TagStore, currentTag string) error {
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "validate-dependencies",
		Description: "Check dependency graph integrity for one tag or the whole store. Reports duplicate ids, missing dependencies, self dependencies, invalid subtask ids, and cycles. Read-only.",
	}, validateHandler(tagStore))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "fix-dependencies",
		Description: "Repair a tag's dependency graph: drop dangling/self edges and break cycles. Returns the change report. Never deletes tasks.",
	}, fixHandler(tagStore, currentTag))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "move-task",
		Description: "Relabel or swap task ids within a tag (from/to accept comma-separated batches with partial-success semantics).",
	}, moveHandler(tagStore, currentTag))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "move-task-cross-tag",
		Description: "Move tasks between tags. Cross-partition dependency edges abort with CROSS_TAG_DEPENDENCY_CONFLICTS unless withDependencies or ignoreDependencies resolves them.",
	}, crossMoveHandler(tagStore))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list-tags",
		Description: "List tag partitions with task counts and descriptions.",
	}, listTagsHandler(tagStore))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "add-tag",
		Description: "Create a tag partition, optionally deep-copying tasks from an existing tag.",
	}, addTagHandler(tagStore))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "rename-tag",
		Description: "Rename a tag partition. Task ids stay valid; nothing inside the tag is rewritten.",
	}, renameTagHandler(tagStore))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "copy-tag",
		Description: "Deep-copy a tag partition under a new name.",
	}, copyTagHandler(tagStore))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "delete-tag",
		Description: "Delete a tag partition and every task it contains. Irreversible; callers must confirm intent first.",
	}, deleteTagHandler(tagStore))

	return nil
}

func validateHandler(tagStore store.TagStore) mcpsdk.ToolHandlerFor[types.ValidateParams, types.OperationResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.ValidateParams]) (*mcpsdk.CallToolResultFor[types.OperationResponse], error) {
		tm, err := tagStore.Load()
		if err != nil {
			return nil, err
		}
		results, err := graph.ValidateTags(tm, params.Arguments.Tag)
		if err != nil {
			return nil, err
		}
		total := 0
		for _, res := range results {
			total += len(res.Violations)
		}
		resp := types.OperationResponse{
			Message: fmt.Sprintf("%d violation(s) across %d tag(s)", total, len(results)),
			Data:    results,
		}
		return textResult(resp), nil
	}
}

func fixHandler(tagStore store.TagStore, currentTag string) mcpsdk.ToolHandlerFor[types.FixParams, types.OperationResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.FixParams]) (*mcpsdk.CallToolResultFor[types.OperationResponse], error) {
		tm, err := tagStore.Load()
		if err != nil {
			return nil, err
		}
		tagName := params.Arguments.Tag
		if tagName == "" {
			tagName = currentTag
		}
		out, err := graph.FixDependencies(tm, tagName)
		if err != nil {
			return nil, err
		}
		if out.Changed() {
			if err := tagStore.Save(tm); err != nil {
				return nil, err
			}
		}
		resp := types.OperationResponse{
			Message: fmt.Sprintf("applied %d change(s) to tag %q", len(out.Changes), tagName),
			Data:    out,
		}
		return textResult(resp), nil
	}
}

func moveHandler(tagStore store.TagStore, currentTag string) mcpsdk.ToolHandlerFor[types.MoveParams, types.OperationResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.MoveParams]) (*mcpsdk.CallToolResultFor[types.OperationResponse], error) {
		args := params.Arguments
		tm, err := tagStore.Load()
		if err != nil {
			return nil, err
		}
		tagName := args.Tag
		if tagName == "" {
			tagName = currentTag
		}

		fromIDs := splitList(args.From)
		toIDs := splitList(args.To)

		if len(fromIDs) == 1 && len(toIDs) == 1 {
			res, err := move.WithinTag(tm, tagName, fromIDs[0], toIDs[0])
			if err != nil {
				return nil, err
			}
			if err := tagStore.Save(tm); err != nil {
				return nil, err
			}
			return textResult(types.OperationResponse{
				Message: "moved " + strings.Join(res.Moved, ", "),
				Data:    res,
			}), nil
		}

		res := move.Batch(tm, tagName, fromIDs, toIDs)
		if len(res.Moved) > 0 {
			if err := tagStore.Save(tm); err != nil {
				return nil, err
			}
		}
		return textResult(types.OperationResponse{
			Message: fmt.Sprintf("moved %d id(s), %d failure(s)", len(res.Moved), len(res.Failures)),
			Data:    res,
		}), nil
	}
}

func crossMoveHandler(tagStore store.TagStore) mcpsdk.ToolHandlerFor[types.CrossMoveParams, types.OperationResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.CrossMoveParams]) (*mcpsdk.CallToolResultFor[types.OperationResponse], error) {
		args := params.Arguments
		tm, err := tagStore.Load()
		if err != nil {
			return nil, err
		}
		res, err := move.CrossTag(tm, args.FromTag, args.ToTag, splitList(args.IDs), move.CrossTagOptions{
			WithDependencies:   args.WithDependencies,
			IgnoreDependencies: args.IgnoreDependencies,
		})
		if err != nil {
			return nil, err
		}
		if err := tagStore.Save(tm); err != nil {
			return nil, err
		}
		return textResult(types.OperationResponse{
			Message: fmt.Sprintf("moved %s from %q to %q", strings.Join(res.Moved, ", "), args.FromTag, args.ToTag),
			Data:    res,
		}), nil
	}
}

func listTagsHandler(tagStore store.TagStore) mcpsdk.ToolHandlerFor[types.ListTagsParams, types.OperationResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.ListTagsParams]) (*mcpsdk.CallToolResultFor[types.OperationResponse], error) {
		tm, err := tagStore.Load()
		if err != nil {
			return nil, err
		}
		names := tm.TagNames()
		sort.Strings(names)
		summary := make([]map[string]interface{}, 0, len(names))
		for _, name := range names {
			tg := tm[name]
			summary = append(summary, map[string]interface{}{
				"name":        name,
				"taskCount":   len(tg.Tasks),
				"description": tg.Metadata.Description,
				"updated":     tg.Metadata.Updated,
			})
		}
		return textResult(types.OperationResponse{
			Message: fmt.Sprintf("%d tag(s)", len(names)),
			Data:    summary,
		}), nil
	}
}

func addTagHandler(tagStore store.TagStore) mcpsdk.ToolHandlerFor[types.AddTagParams, types.OperationResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.AddTagParams]) (*mcpsdk.CallToolResultFor[types.OperationResponse], error) {
		args := params.Arguments
		return tagOp(tagStore, func(tm models.TagMap) (*store.TagResult, error) {
			return store.CreateTag(tm, args.Name, store.CreateTagOptions{
				CopyFromTag: args.CopyFrom,
				Description: args.Description,
			})
		})
	}
}

func renameTagHandler(tagStore store.TagStore) mcpsdk.ToolHandlerFor[types.RenameTagParams, types.OperationResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.RenameTagParams]) (*mcpsdk.CallToolResultFor[types.OperationResponse], error) {
		args := params.Arguments
		return tagOp(tagStore, func(tm models.TagMap) (*store.TagResult, error) {
			return store.RenameTag(tm, args.Old, args.New)
		})
	}
}

func copyTagHandler(tagStore store.TagStore) mcpsdk.ToolHandlerFor[types.CopyTagParams, types.OperationResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.CopyTagParams]) (*mcpsdk.CallToolResultFor[types.OperationResponse], error) {
		args := params.Arguments
		return tagOp(tagStore, func(tm models.TagMap) (*store.TagResult, error) {
			return store.CopyTag(tm, args.Source, args.Target, store.CopyTagOptions{Description: args.Description})
		})
	}
}

func deleteTagHandler(tagStore store.TagStore) mcpsdk.ToolHandlerFor[types.DeleteTagParams, types.OperationResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.DeleteTagParams]) (*mcpsdk.CallToolResultFor[types.OperationResponse], error) {
		args := params.Arguments
		return tagOp(tagStore, func(tm models.TagMap) (*store.TagResult, error) {
			return store.DeleteTag(tm, args.Name)
		})
	}
}

// tagOp loads, applies one partition operation, and persists.
func tagOp(tagStore store.TagStore, op func(models.TagMap) (*store.TagResult, error)) (*mcpsdk.CallToolResultFor[types.OperationResponse], error) {
	tm, err := tagStore.Load()
	if err != nil {
		return nil, err
	}
	res, err := op(tm)
	if err != nil {
		return nil, err
	}
	if err := tagStore.Save(tm); err != nil {
		return nil, err
	}
	return textResult(types.OperationResponse{Message: res.Message, Data: res}), nil
}

func textResult(resp types.OperationResponse) *mcpsdk.CallToolResultFor[types.OperationResponse] {
	return &mcpsdk.CallToolResultFor[types.OperationResponse]{
		StructuredContent: resp,
		Content:           []mcpsdk.Content{&mcpsdk.TextContent{Text: resp.Message}},
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
