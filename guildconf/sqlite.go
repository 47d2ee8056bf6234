// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package guildconf

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/moldova-rp/gatekeeper/lib/ref"
	"github.com/moldova-rp/gatekeeper/lib/sqlitepool"
)

// SQLiteStore persists one JSON document per guild in a SQLite table.
// Patches are serialized by a process-level mutex; SQLite's WAL mode
// handles durability.
type SQLiteStore struct {
	mu   sync.Mutex
	pool *sqlitepool.Pool
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS guild_config (
	guild_id TEXT PRIMARY KEY,
	document TEXT NOT NULL
)`

// OpenSQLiteStore opens (creating if needed) the database at path. The
// caller must Close the store when done.
func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteTransient(conn, sqliteSchema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("guildconf: %w", err)
	}
	return &SQLiteStore{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, guildID ref.GuildID) (Config, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Config{}, err
	}
	defer s.pool.Put(conn)

	return s.load(conn, guildID)
}

// Set implements Store.
func (s *SQLiteStore) Set(ctx context.Context, guildID ref.GuildID, patch Patch) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Config{}, err
	}
	defer s.pool.Put(conn)

	current, err := s.load(conn, guildID)
	if err != nil {
		return Config{}, err
	}

	updated := patch.apply(current)
	document, err := json.Marshal(updated)
	if err != nil {
		return Config{}, fmt.Errorf("guildconf: encoding record: %w", err)
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO guild_config (guild_id, document) VALUES (?, ?)
		 ON CONFLICT(guild_id) DO UPDATE SET document = excluded.document`,
		&sqlitex.ExecOptions{
			Args: []any{guildID.String(), string(document)},
		})
	if err != nil {
		return Config{}, fmt.Errorf("guildconf: storing %s: %w", guildID, err)
	}
	return updated, nil
}

func (s *SQLiteStore) load(conn *sqlite.Conn, guildID ref.GuildID) (Config, error) {
	var document string
	err := sqlitex.Execute(conn,
		"SELECT document FROM guild_config WHERE guild_id = ?",
		&sqlitex.ExecOptions{
			Args: []any{guildID.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				document = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return Config{}, fmt.Errorf("guildconf: loading %s: %w", guildID, err)
	}
	if document == "" {
		return Config{}, nil
	}

	var cfg Config
	if err := json.Unmarshal([]byte(document), &cfg); err != nil {
		return Config{}, fmt.Errorf("guildconf: parsing record for %s: %w", guildID, err)
	}
	return cfg, nil
}
