// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package guildconf

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// FileStore persists all guild records in one JSON file, keyed by
// guild ID. Every write rewrites the whole file through a temp file
// and rename, so a crash mid-write leaves the previous contents
// intact. A process-level mutex serializes access; there is no
// cross-process locking.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by the JSON file at path. The
// file is created on first write; a missing file reads as empty.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, guildID ref.GuildID) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return Config{}, err
	}
	return all[guildID.String()], nil
}

// Set implements Store.
func (s *FileStore) Set(ctx context.Context, guildID ref.GuildID, patch Patch) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return Config{}, err
	}

	updated := patch.apply(all[guildID.String()])
	all[guildID.String()] = updated

	if err := s.writeAll(all); err != nil {
		return Config{}, err
	}
	return updated, nil
}

func (s *FileStore) readAll() (map[string]Config, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("guildconf: reading %s: %w", s.path, err)
	}

	var all map[string]Config
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("guildconf: parsing %s: %w", s.path, err)
	}
	if all == nil {
		all = map[string]Config{}
	}
	return all, nil
}

func (s *FileStore) writeAll(all map[string]Config) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("guildconf: encoding records: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".guildconf-*")
	if err != nil {
		return fmt.Errorf("guildconf: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("guildconf: writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("guildconf: closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("guildconf: replacing %s: %w", s.path, err)
	}
	return nil
}
