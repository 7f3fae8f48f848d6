package store

import "github.com/tasktag/tasktag/models"

// TagStore defines the persistence contract for the tag map. The whole map
// is the unit of persistence: Load returns an in-memory snapshot, callers
// mutate it through the operation surface, and Save writes it back
// atomically. Skipping Save is how callers dry-run.
type TagStore interface {
	// Initialize configures the store with backend-specific settings such
	// as the data file path and format. It must be called before any other
	// store operation.
	Initialize(config map[string]string) error

	// Load reads the persisted tag map. A missing data file yields a fresh
	// store containing only the default tag.
	Load() (models.TagMap, error)

	// Save persists the tag map atomically: the new content is written to
	// a temporary file and renamed over the previous one, so an
	// interrupted save never leaves a partial file behind.
	Save(tm models.TagMap) error

	// Close releases any resources held by the store.
	Close() error
}
