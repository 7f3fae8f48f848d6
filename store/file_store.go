package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v3"

	"github.com/tasktag/tasktag/models"
	"github.com/tasktag/tasktag/types"
)

const (
	defaultDataFile   = "tasks.json"
	dataFileKey       = "dataFile"
	dataFileFormatKey = "dataFileFormat"
	defaultDataFormat = "json"
	formatJSON        = "json"
	formatYAML        = "yaml"
	formatTOML        = "toml"
	checksumSuffix    = ".checksum"

	// DefaultTag is the partition a fresh or legacy store starts with.
	DefaultTag = "master"
)

// FileTagStore implements TagStore on a filesystem. It supports JSON, YAML,
// and TOML encodings; JSON is canonical. The filesystem is injected so
// tests run against an in-memory one.
type FileTagStore struct {
	fs       afero.Fs
	filePath string
	format   string
}

// NewFileTagStore creates a store on the given filesystem. Initialize must
// be called before use.
func NewFileTagStore(filesystem afero.Fs) *FileTagStore {
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	return &FileTagStore{fs: filesystem}
}

// Initialize configures the file path and data format. It expects a
// 'dataFile' key in the config map; without one the store defaults to
// 'tasks.json' in the working directory, adjusting the extension when a
// non-JSON format is chosen.
func (s *FileTagStore) Initialize(config map[string]string) error {
	if val, ok := config[dataFileKey]; ok && val != "" {
		s.filePath = val
	} else {
		s.filePath = defaultDataFile
	}

	if val, ok := config[dataFileFormatKey]; ok && val != "" {
		formatLower := strings.ToLower(val)
		switch formatLower {
		case formatJSON, formatYAML, formatTOML:
			s.format = formatLower
		default:
			return types.NewTaskErrorf(types.CodeUnsupportedFmt,
				"unsupported dataFileFormat: %s. Supported formats are json, yaml, toml", val)
		}
	} else {
		s.format = defaultDataFormat
	}

	if s.filePath == defaultDataFile && s.format != formatJSON {
		ext := filepath.Ext(s.filePath)
		s.filePath = strings.TrimSuffix(s.filePath, ext) + "." + s.format
	}

	dir := filepath.Dir(s.filePath)
	if dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Path returns the resolved data file path.
func (s *FileTagStore) Path() string {
	return s.filePath
}

// calculateChecksum computes the SHA256 checksum of the given data.
func calculateChecksum(data []byte) string {
	hasher := sha256.New()
	hasher.Write(data) // Write never returns an error
	return hex.EncodeToString(hasher.Sum(nil))
}

// Load reads the tag map from disk, verifying the checksum sidecar when
// present. A missing file yields a store with just the default tag. The
// legacy single-partition layout ({"tasks": [...]}) is migrated into the
// default tag once, here at load time.
func (s *FileTagStore) Load() (models.TagMap, error) {
	checksumFilePath := s.filePath + checksumSuffix

	data, err := afero.ReadFile(s.fs, s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			tm := models.TagMap{DefaultTag: models.NewTag("Default tag. Created automatically.")}
			return tm, nil
		}
		return nil, fmt.Errorf("failed to read data file %s: %w", s.filePath, err)
	}

	if exists, _ := afero.Exists(s.fs, checksumFilePath); exists {
		expectedBytes, readErr := afero.ReadFile(s.fs, checksumFilePath)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read checksum file %s: %w", checksumFilePath, readErr)
		}
		expected := strings.TrimSpace(string(expectedBytes))
		if actual := calculateChecksum(data); actual != expected {
			return nil, types.NewTaskError(types.CodeStoreCorrupt,
				fmt.Sprintf("checksum mismatch for %s - file is corrupt or tampered", s.filePath),
				map[string]interface{}{"expected": expected, "actual": actual})
		}
	}
	// No checksum file means data from before checksums; load it and let
	// the next save create one.

	if len(data) == 0 {
		return models.TagMap{DefaultTag: models.NewTag("Default tag. Created automatically.")}, nil
	}

	tm, err := decodeTagMap(data, s.format)
	if err != nil {
		return nil, err
	}

	// Soft-schema normalization: collapse duplicate dependency entries.
	for _, tg := range tm {
		for i := range tg.Tasks {
			tg.Tasks[i].NormalizeDependencies()
		}
	}
	return tm, nil
}

// decodeTagMap parses the raw document, handling legacy migration and
// rejecting tag objects with unknown top-level keys. Unknown keys inside
// tasks are tolerated.
func decodeTagMap(data []byte, format string) (models.TagMap, error) {
	raw, err := decodeGeneric(data, format)
	if err != nil {
		return nil, types.NewTaskError(types.CodeStoreCorrupt,
			fmt.Sprintf("failed to parse %s document: %v", format, err), nil)
	}

	// Legacy layout: a bare task list at the top level. JSON and YAML
	// decode the list as []interface{}; TOML array-of-tables comes back as
	// []map[string]interface{}.
	if tasksVal, ok := raw["tasks"]; ok && isList(tasksVal) {
		var legacy struct {
			Tasks []models.Task `json:"tasks" yaml:"tasks" toml:"tasks"`
		}
		if err := decodeStrict(data, format, &legacy); err != nil {
			return nil, types.NewTaskError(types.CodeStoreCorrupt,
				fmt.Sprintf("failed to migrate legacy task list: %v", err), nil)
		}
		tg := models.NewTag("Migrated from legacy single-partition layout.")
		tg.Tasks = legacy.Tasks
		return models.TagMap{DefaultTag: tg}, nil
	}

	for name, tagVal := range raw {
		if strings.TrimSpace(name) == "" {
			return nil, types.NewTaskErrorf(types.CodeStoreCorrupt, "empty tag name in store")
		}
		obj, ok := tagVal.(map[string]interface{})
		if !ok {
			return nil, types.NewTaskErrorf(types.CodeStoreCorrupt,
				"tag %q is not an object", name)
		}
		for key := range obj {
			if key != "tasks" && key != "metadata" {
				return nil, types.NewTaskErrorf(types.CodeStoreCorrupt,
					"tag %q has unknown key %q", name, key)
			}
		}
	}

	var tm models.TagMap
	if err := decodeStrict(data, format, &tm); err != nil {
		return nil, types.NewTaskError(types.CodeStoreCorrupt,
			fmt.Sprintf("failed to decode tag map: %v", err), nil)
	}
	for name, tg := range tm {
		if tg == nil {
			tm[name] = models.NewTag("")
		} else if tg.Tasks == nil {
			tg.Tasks = []models.Task{}
		}
	}
	return tm, nil
}

func isList(v interface{}) bool {
	switch v.(type) {
	case []interface{}, []map[string]interface{}:
		return true
	}
	return false
}

func decodeGeneric(data []byte, format string) (map[string]interface{}, error) {
	raw := make(map[string]interface{})
	switch format {
	case formatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case formatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported data format: %s", format)
	}
	return raw, nil
}

func decodeStrict(data []byte, format string, out interface{}) error {
	switch format {
	case formatJSON:
		return json.Unmarshal(data, out)
	case formatYAML:
		return yaml.Unmarshal(data, out)
	case formatTOML:
		return toml.Unmarshal(data, out)
	default:
		return fmt.Errorf("unsupported data format: %s", format)
	}
}

// Save writes the tag map and its checksum. Both files go through a
// temporary path and a rename, so a crash mid-save leaves the previous
// contents intact. There is no locking: a single active writer is assumed.
func (s *FileTagStore) Save(tm models.TagMap) error {
	var marshaled []byte
	var err error

	switch s.format {
	case formatJSON:
		marshaled, err = json.MarshalIndent(tm, "", "  ")
	case formatYAML:
		marshaled, err = yaml.Marshal(tm)
	case formatTOML:
		buf := new(bytes.Buffer)
		if encodeErr := toml.NewEncoder(buf).Encode(tm); encodeErr == nil {
			marshaled = buf.Bytes()
		} else {
			err = fmt.Errorf("failed to marshal TOML: %w", encodeErr)
		}
	default:
		return types.NewTaskErrorf(types.CodeUnsupportedFmt, "unsupported data format for saving: %s", s.format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal tag map to %s: %w", s.format, err)
	}

	tempFilePath := s.filePath + ".tmp"
	checksumFilePath := s.filePath + checksumSuffix
	tempChecksumFilePath := checksumFilePath + ".tmp"

	defer func() { _ = s.fs.Remove(tempFilePath) }()
	defer func() { _ = s.fs.Remove(tempChecksumFilePath) }()

	if err := afero.WriteFile(s.fs, tempFilePath, marshaled, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary data file %s: %w", tempFilePath, err)
	}
	if err := afero.WriteFile(s.fs, tempChecksumFilePath, []byte(calculateChecksum(marshaled)), 0o644); err != nil {
		return fmt.Errorf("failed to write temporary checksum file %s: %w", tempChecksumFilePath, err)
	}

	if err := s.fs.Rename(tempFilePath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temporary data file %s to %s: %w", tempFilePath, s.filePath, err)
	}
	if err := s.fs.Rename(tempChecksumFilePath, checksumFilePath); err != nil {
		return fmt.Errorf("data file %s updated, but failed to update checksum file %s: %w - store may report corruption on next load", s.filePath, checksumFilePath, err)
	}
	return nil
}

// Close is a no-op for the file-backed store; it exists to satisfy
// TagStore for backends that hold resources.
func (s *FileTagStore) Close() error {
	return nil
}
