package config

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-choices/pkg/model"
)

// Store holds the field configurations of one or more documents, in the
// order they were read.
type Store struct {
	fields []model.FieldConfig
	byKey  map[string]int
	origin map[string]string
}

// LoadFS walks fsys and parses every JSON, YAML and TOML document. Files are
// read in lexical path order. When fsys is nil the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := newStore()
	if fsys == nil {
		return store, nil
	}

	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDocumentFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to walk config documents")
	}
	sort.Strings(paths)

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read config document", goerr.V("path", path))
		}
		if err := store.add(data, path); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// LoadFile parses a single document.
func LoadFile(path string) (*Store, error) {
	// #nosec G304 - path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config document", goerr.V("path", path))
	}
	store := newStore()
	if err := store.add(data, path); err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes data as a document. The format is taken from the extension
// of name, falling back to JSON then YAML when the extension is unknown.
func Parse(data []byte, name string) (Document, error) {
	var doc Document
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, goerr.Wrap(ErrInvalidDocument, "document is empty", goerr.V("path", name))
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, goerr.Wrap(err, "failed to parse JSON document", goerr.V("path", name))
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, goerr.Wrap(err, "failed to parse YAML document", goerr.V("path", name))
		}
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return Document{}, goerr.Wrap(err, "failed to parse TOML document", goerr.V("path", name))
		}
	default:
		if err := json.Unmarshal(data, &doc); err == nil {
			return doc, nil
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, goerr.Wrap(ErrInvalidDocument, "invalid JSON or YAML", goerr.V("path", name))
		}
	}
	return doc, nil
}

// Fields returns the configurations in document order.
func (s *Store) Fields() []model.FieldConfig {
	if s == nil {
		return nil
	}
	return append([]model.FieldConfig(nil), s.fields...)
}

// Field returns the configuration stored under key.
func (s *Store) Field(key string) (model.FieldConfig, bool) {
	if s == nil {
		return model.FieldConfig{}, false
	}
	idx, ok := s.byKey[key]
	if !ok {
		return model.FieldConfig{}, false
	}
	return s.fields[idx], true
}

// Origin returns the document a field was read from.
func (s *Store) Origin(key string) string {
	if s == nil {
		return ""
	}
	return s.origin[key]
}

// Empty reports whether the store holds any field.
func (s *Store) Empty() bool {
	return s == nil || len(s.fields) == 0
}

func newStore() *Store {
	return &Store{byKey: make(map[string]int), origin: make(map[string]string)}
}

func (s *Store) add(data []byte, path string) error {
	doc, err := Parse(data, path)
	if err != nil {
		return err
	}
	for idx, component := range doc.Components {
		cfg, err := component.FieldConfig(doc.Project)
		if err != nil {
			return goerr.Wrap(err, "invalid component", goerr.V("path", path), goerr.V("index", idx))
		}
		if prev, exists := s.origin[cfg.Key]; exists {
			return goerr.Wrap(ErrInvalidDocument, "duplicate field key",
				goerr.V("key", cfg.Key), goerr.V("path", path), goerr.V("previous", prev))
		}
		s.byKey[cfg.Key] = len(s.fields)
		s.origin[cfg.Key] = path
		s.fields = append(s.fields, cfg)
	}
	return nil
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml", ".toml":
		return true
	default:
		return false
	}
}
