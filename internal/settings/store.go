// Package settings is the flat-file collaborator store behind the server
// group configuration screens. It is deliberately dumb: get/set/delete over
// a '$'-delimited file, with every change persisted through an atomic
// whole-file rewrite so a crash mid-write never leaves a truncated store.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"pointsadmin/internal/apperrors"
	"pointsadmin/internal/export"
)

type Store struct {
	path         string
	protectedKey string

	mu      sync.Mutex
	entries map[string]export.SettingsEntry
}

// NewStore loads the file at path (a missing file is an empty store).
// protectedKey names the default group that must survive deletion; the
// original kept this in ambient global config, here it is an explicit
// constructor argument.
func NewStore(path string, protectedKey string) (*Store, error) {
	s := &Store{
		path:         path,
		protectedKey: protectedKey,
		entries:      make(map[string]export.SettingsEntry),
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		for _, e := range export.DecodeSettings(data) {
			// Later lines with the same key overwrite earlier ones
			s.entries[e.Key] = e
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("settings file read error: %w", err)
	}

	return s, nil
}

func (s *Store) Get(key string) (export.SettingsEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return entry, apperrors.ErrSettingsKeyNotFound
	}

	return entry, nil
}

// List returns every entry ordered by key
func (s *Store) List() []export.SettingsEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedLocked()
}

// Set stores the entry under its key, overwriting any existing one
func (s *Store) Set(entry export.SettingsEntry) error {
	if entry.Key == "" {
		return apperrors.ErrSettingsKeyEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.entries[entry.Key]
	s.entries[entry.Key] = entry

	if err := s.saveLocked(); err != nil {
		// Keep memory and disk in agreement
		if existed {
			s.entries[entry.Key] = previous
		} else {
			delete(s.entries, entry.Key)
		}
		return err
	}

	return nil
}

func (s *Store) Delete(key string) error {
	if key == s.protectedKey {
		return apperrors.ErrSettingsKeyProtected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.entries[key]
	if !ok {
		return apperrors.ErrSettingsKeyNotFound
	}
	delete(s.entries, key)

	if err := s.saveLocked(); err != nil {
		s.entries[key] = previous
		return err
	}

	return nil
}

// saveLocked rewrites the whole file through a temp file + rename, the
// rename being the atomic step. Callers must hold mu.
func (s *Store) saveLocked() error {
	data := export.EncodeSettings(s.sortedLocked())

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("settings file write error: %w", err)
	}

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("settings file write error: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("settings file rename error: %w", err)
	}

	return nil
}

func (s *Store) sortedLocked() []export.SettingsEntry {
	entries := make([]export.SettingsEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}
