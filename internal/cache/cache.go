// Package cache persists the last used paths between sessions.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"

	"curve-plotter/internal/apperr"
	"curve-plotter/internal/atomicfile"
)

const (
	appDirName = "curve-plotter"
	cacheFile  = "app_cache.json"
)

// Record is the persisted cache content.
type Record struct {
	LastOpenedPath string `json:"last_opened_path"`
	SaveDir        string `json:"save_dir"`
}

// DefaultPath returns ~/.config/curve-plotter/app_cache.json, or
// app_cache.json in the working directory if no config dir is known.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return cacheFile
	}
	return filepath.Join(configDir, appDirName, cacheFile)
}

// Load reads the record at path. A missing or empty file yields an empty
// record. Malformed content yields an empty record and a parse error.
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, apperr.IO("read cache", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Record{}, nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, apperr.Parse("decode cache", path, err)
	}
	return rec, nil
}

// Save overwrites path with the full record.
func Save(path string, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperr.IO("create cache dir", filepath.Dir(path), err)
	}
	if err := atomicfile.WriteBytes(path, data, 0o644); err != nil {
		return apperr.IO("write cache", path, err)
	}
	return nil
}

// Store holds the process-wide record and writes it back after every change.
type Store struct {
	mu   sync.RWMutex
	path string
	rec  Record
}

// Open loads the store at path. A malformed file is logged and replaced by
// an empty record; it is overwritten on the next change.
func Open(path string) (*Store, error) {
	rec, err := Load(path)
	if err != nil {
		if !apperr.Is(err, apperr.KindParse) {
			return nil, err
		}
		log.Printf("cache: ignoring unreadable cache: %v", err)
	}
	return &Store{path: path, rec: rec}, nil
}

// NewMemory returns a store seeded with rec that is saved to path on change.
func NewMemory(path string, rec Record) *Store {
	return &Store{path: path, rec: rec}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Record returns a copy of the current record.
func (s *Store) Record() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec
}

// LastOpenedPath returns the last directory a file or folder was picked from.
func (s *Store) LastOpenedPath() string {
	return s.Record().LastOpenedPath
}

// SaveDir returns the image destination directory.
func (s *Store) SaveDir() string {
	return s.Record().SaveDir
}

// SetLastOpenedPath records dir and saves.
func (s *Store) SetLastOpenedPath(dir string) error {
	return s.update(func(r *Record) { r.LastOpenedPath = dir })
}

// SetSaveDir records dir and saves.
func (s *Store) SetSaveDir(dir string) error {
	return s.update(func(r *Record) { r.SaveDir = dir })
}

func (s *Store) update(mutate func(*Record)) error {
	s.mu.Lock()
	mutate(&s.rec)
	rec := s.rec
	s.mu.Unlock()
	return Save(s.path, rec)
}
