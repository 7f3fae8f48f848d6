package models

import (
	"time"
)

// TagMetadata records bookkeeping for a tag partition. Timestamps serialize
// as RFC 3339 strings.
type TagMetadata struct {
	Created     time.Time `json:"created" yaml:"created" toml:"created"`
	Updated     time.Time `json:"updated" yaml:"updated" toml:"updated"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

// Tag is a named, isolated partition of the task graph. Dependency edges
// never cross tag boundaries.
type Tag struct {
	Tasks    []Task      `json:"tasks" yaml:"tasks" toml:"tasks" validate:"dive"`
	Metadata TagMetadata `json:"metadata" yaml:"metadata" toml:"metadata"`
}

// TagMap is the whole persisted store: tag name to partition. The map is the
// unit of persistence; FileTagStore serializes it as a single document.
type TagMap map[string]*Tag

// NewTag creates an empty tag with both timestamps set to now.
func NewTag(description string) *Tag {
	now := time.Now().UTC()
	return &Tag{
		Tasks: []Task{},
		Metadata: TagMetadata{
			Created:     now,
			Updated:     now,
			Description: description,
		},
	}
}

// Touch refreshes the tag's updated timestamp. Every committed mutation of
// a tag's task list must call this.
func (tg *Tag) Touch() {
	tg.Metadata.Updated = time.Now().UTC()
}

// DeepCopy returns a tag that shares no task data with the original.
func (tg *Tag) DeepCopy() *Tag {
	c := &Tag{
		Tasks:    make([]Task, len(tg.Tasks)),
		Metadata: tg.Metadata,
	}
	for i, t := range tg.Tasks {
		c.Tasks[i] = t.DeepCopy()
	}
	return c
}

// FindTask returns a pointer to the task with the given id, or nil.
func (tg *Tag) FindTask(id int) *Task {
	for i := range tg.Tasks {
		if tg.Tasks[i].ID == id {
			return &tg.Tasks[i]
		}
	}
	return nil
}

// HasTask reports whether a task with the given id exists in the tag.
func (tg *Tag) HasTask(id int) bool {
	return tg.FindTask(id) != nil
}

// NextTaskID returns one past the highest task id in the tag, starting at 1.
func (tg *Tag) NextTaskID() int {
	max := 0
	for _, t := range tg.Tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// DeepCopy copies every tag in the map.
func (tm TagMap) DeepCopy() TagMap {
	c := make(TagMap, len(tm))
	for name, tg := range tm {
		c[name] = tg.DeepCopy()
	}
	return c
}

// TagNames returns the tag names in map order; callers sort when they need
// determinism.
func (tm TagMap) TagNames() []string {
	names := make([]string, 0, len(tm))
	for name := range tm {
		names = append(names, name)
	}
	return names
}
