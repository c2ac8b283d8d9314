package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrInvalidID is returned for ids that cannot be used as file names.
var ErrInvalidID = errors.New("invalid record id")

// LocalFileStore keeps one JSON file per record under <root>/<kind>/<id>.json.
// Directories are created on first write.
type LocalFileStore struct {
	root string
}

// NewLocalFileStore returns a store rooted at root. Nothing is created until the first write.
func NewLocalFileStore(root string) *LocalFileStore {
	return &LocalFileStore{root: root}
}

// Name implements Backend.
func (s *LocalFileStore) Name() string { return "local" }

// Root returns the storage directory.
func (s *LocalFileStore) Root() string { return s.root }

func (s *LocalFileStore) path(kind Kind, id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.root, string(kind), id+".json"), nil
}

// Get implements Backend. A missing directory or file reports found=false.
func (s *LocalFileStore) Get(_ context.Context, kind Kind, id string, dst any) (bool, error) {
	p, err := s.path(kind, id)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s/%s: %w", kind, id, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", kind, id, err)
	}
	return true, nil
}

// Put implements Backend.
func (s *LocalFileStore) Put(_ context.Context, kind Kind, id string, record any) error {
	p, err := s.path(kind, id)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", kind, id, err)
	}
	return s.write(p, data)
}

// Update implements Backend by merging fields into the stored JSON object.
func (s *LocalFileStore) Update(_ context.Context, kind Kind, id string, fields Fields) error {
	p, err := s.path(kind, id)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read %s/%s: %w", kind, id, err)
	}

	out, err := MergeFields(data, fields)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", kind, id, err)
	}
	return s.write(p, out)
}

// List implements Backend. Records are ordered by file modification time, newest first.
func (s *LocalFileStore) List(_ context.Context, kind Kind, filter Filter, limit int) ([]json.RawMessage, error) {
	dir := filepath.Join(s.root, string(kind))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	type item struct {
		name string
		mod  time.Time
		data []byte
	}
	var items []item
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s/%s: %w", kind, e.Name(), err)
		}
		if !matches(data, filter) {
			continue
		}
		items = append(items, item{name: e.Name(), mod: info.ModTime(), data: data})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].mod.Equal(items[j].mod) {
			return items[i].name < items[j].name
		}
		return items[i].mod.After(items[j].mod)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	out := make([]json.RawMessage, len(items))
	for i, it := range items {
		out[i] = json.RawMessage(it.data)
	}
	return out, nil
}

func (s *LocalFileStore) write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// matches compares a top-level field of a JSON object against the filter value.
// String fields compare by value, other JSON values by their encoded text.
func matches(data []byte, filter Filter) bool {
	if filter.IsZero() {
		return true
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	raw, ok := doc[filter.Field]
	if !ok {
		return false
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str == filter.Value
	}
	return string(raw) == filter.Value
}
