package store

import (
	"fmt"
	"strings"

	"github.com/tasktag/tasktag/models"
	"github.com/tasktag/tasktag/types"
)

// Tag partition operations. Each one is a pure function over the in-memory
// snapshot; callers persist with Save afterwards, or skip it to dry-run.

// CreateTagOptions configures CreateTag.
type CreateTagOptions struct {
	// CopyFromTag deep-copies every task from an existing tag.
	CopyFromTag string
	Description string
}

// CopyTagOptions configures CopyTag.
type CopyTagOptions struct {
	Description string
}

// TagResult reports a completed tag operation.
type TagResult struct {
	Name      string `json:"name"`
	TaskCount int    `json:"taskCount"`
	Message   string `json:"message"`
}

// ValidTagName rejects empty and all-whitespace names.
func ValidTagName(name string) error {
	if strings.TrimSpace(name) == "" {
		return types.NewTaskErrorf(types.CodeInvalidTagName, "tag name must not be empty")
	}
	return nil
}

// CreateTag adds a new, empty partition, optionally seeded with a deep
// copy of another tag's tasks.
func CreateTag(tm models.TagMap, name string, opts CreateTagOptions) (*TagResult, error) {
	if err := ValidTagName(name); err != nil {
		return nil, err
	}
	if _, exists := tm[name]; exists {
		return nil, types.NewTaskErrorf(types.CodeTagExists, "tag %q already exists", name)
	}

	tg := models.NewTag(opts.Description)
	if opts.CopyFromTag != "" {
		src, ok := tm[opts.CopyFromTag]
		if !ok {
			return nil, types.NewTaskErrorf(types.CodeTagNotFound, "tag %q not found", opts.CopyFromTag)
		}
		copied := src.DeepCopy()
		tg.Tasks = copied.Tasks
	}

	tm[name] = tg
	return &TagResult{
		Name:      name,
		TaskCount: len(tg.Tasks),
		Message:   fmt.Sprintf("created tag %q with %d task(s)", name, len(tg.Tasks)),
	}, nil
}

// RenameTag moves a partition to a new name. Task ids stay valid, so
// nothing inside the tag is rewritten.
func RenameTag(tm models.TagMap, oldName, newName string) (*TagResult, error) {
	if err := ValidTagName(newName); err != nil {
		return nil, err
	}
	tg, ok := tm[oldName]
	if !ok {
		return nil, types.NewTaskErrorf(types.CodeTagNotFound, "tag %q not found", oldName)
	}
	if _, exists := tm[newName]; exists {
		return nil, types.NewTaskErrorf(types.CodeTagExists, "tag %q already exists", newName)
	}

	delete(tm, oldName)
	tm[newName] = tg
	tg.Touch()
	return &TagResult{
		Name:      newName,
		TaskCount: len(tg.Tasks),
		Message:   fmt.Sprintf("renamed tag %q to %q", oldName, newName),
	}, nil
}

// CopyTag deep-copies a partition under a new name; mutating the copy
// never affects the source.
func CopyTag(tm models.TagMap, source, target string, opts CopyTagOptions) (*TagResult, error) {
	if err := ValidTagName(target); err != nil {
		return nil, err
	}
	src, ok := tm[source]
	if !ok {
		return nil, types.NewTaskErrorf(types.CodeTagNotFound, "tag %q not found", source)
	}
	if _, exists := tm[target]; exists {
		return nil, types.NewTaskErrorf(types.CodeTagExists, "tag %q already exists", target)
	}

	tg := src.DeepCopy()
	now := models.NewTag(opts.Description)
	tg.Metadata = now.Metadata
	tm[target] = tg
	return &TagResult{
		Name:      target,
		TaskCount: len(tg.Tasks),
		Message:   fmt.Sprintf("copied tag %q to %q (%d task(s))", source, target, len(tg.Tasks)),
	}, nil
}

// DeleteTag removes a partition and every task it contains. Irreversible;
// callers confirm destructive intent before calling.
func DeleteTag(tm models.TagMap, name string) (*TagResult, error) {
	tg, ok := tm[name]
	if !ok {
		return nil, types.NewTaskErrorf(types.CodeTagNotFound, "tag %q not found", name)
	}
	count := len(tg.Tasks)
	delete(tm, name)
	return &TagResult{
		Name:      name,
		TaskCount: count,
		Message:   fmt.Sprintf("deleted tag %q and its %d task(s)", name, count),
	}, nil
}
