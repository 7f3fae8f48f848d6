package types

// Parameter and response types for the MCP tool surface. Field names and
// jsonschema descriptions are what MCP clients see.

// ValidateParams selects what to validate. An empty tag means every tag in
// the store.
type ValidateParams struct {
	Tag string `json:"tag,omitempty" jsonschema:"Tag to validate. Omit to validate all tags."`
}

// FixParams selects the tag whose dependencies get repaired.
type FixParams struct {
	Tag string `json:"tag" jsonschema:"Tag whose dependency graph to repair."`
}

// MoveParams drives a within-tag move. From and To accept comma-separated
// id lists of equal length for batch moves.
type MoveParams struct {
	Tag  string `json:"tag,omitempty" jsonschema:"Tag to move within. Defaults to the current tag."`
	From string `json:"from" jsonschema:"Source task id, or comma-separated ids for a batch move."`
	To   string `json:"to" jsonschema:"Destination task id, or comma-separated ids matching 'from'."`
}

// CrossMoveParams drives a cross-tag move.
type CrossMoveParams struct {
	FromTag            string `json:"fromTag" jsonschema:"Tag the tasks currently live in."`
	ToTag              string `json:"toTag" jsonschema:"Tag to move the tasks into. Created if absent."`
	IDs                string `json:"ids" jsonschema:"Comma-separated task ids to move."`
	WithDependencies   bool   `json:"withDependencies,omitempty" jsonschema:"Also move the tasks' dependency closure."`
	IgnoreDependencies bool   `json:"ignoreDependencies,omitempty" jsonschema:"Sever cross-tag dependency edges instead of moving them."`
}

// AddTagParams creates a tag, optionally copying tasks from another tag.
type AddTagParams struct {
	Name        string `json:"name" jsonschema:"Name of the tag to create."`
	Description string `json:"description,omitempty" jsonschema:"Optional tag description."`
	CopyFrom    string `json:"copyFrom,omitempty" jsonschema:"Existing tag to deep-copy tasks from."`
}

// RenameTagParams renames a tag.
type RenameTagParams struct {
	Old string `json:"old" jsonschema:"Current tag name."`
	New string `json:"new" jsonschema:"New tag name."`
}

// CopyTagParams deep-copies a tag.
type CopyTagParams struct {
	Source      string `json:"source" jsonschema:"Tag to copy."`
	Target      string `json:"target" jsonschema:"Name of the new tag."`
	Description string `json:"description,omitempty" jsonschema:"Optional description for the copy."`
}

// DeleteTagParams deletes a tag and every task it contains.
type DeleteTagParams struct {
	Name string `json:"name" jsonschema:"Tag to delete. Irreversible."`
}

// ListTagsParams has no arguments; present for schema generation.
type ListTagsParams struct{}

// OperationResponse is the common MCP tool response shape.
type OperationResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
