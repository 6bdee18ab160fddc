// Package store persists a CompilerState's source text across process
// restarts, using pure-Go modernc.org/sqlite through database/sql —
// the same driver and Open("sqlite", file) call the dekarrin-tunaq
// retrieval pack's server/dao/sqlite package uses for its own
// on-disk tables. Source text is stored, not the compiled AST, so a
// future fxc build with a changed AST shape can still load an old
// session.
package store

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	fxerrors "fxc/internal/errors"
)

// Binding is one named variable or function definition as it was
// typed, plus enough to reconstruct it (AddVariable vs. AddFunction
// expects the two-character name for functions).
type Binding struct {
	Name    string
	Content string
	IsFunc  bool
}

// Store is a session-scoped SQLite-backed binding repository.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite database at file and
// ensures its schema exists.
func Open(file string) (*Store, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, fxerrors.IO("couldn't open session database: %v", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS bindings (
		session TEXT NOT NULL,
		name TEXT NOT NULL,
		content TEXT NOT NULL,
		is_func INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (session, name)
	);`)
	if err != nil {
		db.Close()
		return nil, fxerrors.IO("couldn't initialize session schema: %v", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts one binding under the named session.
func (s *Store) Save(ctx context.Context, session string, b Binding) error {
	isFunc := 0
	if b.IsFunc {
		isFunc = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bindings (session, name, content, is_func, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (session, name) DO UPDATE SET content = excluded.content, is_func = excluded.is_func, updated_at = excluded.updated_at`,
		session, b.Name, b.Content, isFunc, time.Now().Unix())
	if err != nil {
		return fxerrors.IO("couldn't save binding %s: %v", b.Name, err)
	}
	return nil
}

// Load returns every binding saved under session, in no particular
// order; the caller replays them through AddVariable/AddFunction to
// rebuild a CompilerState.
func (s *Store) Load(ctx context.Context, session string) ([]Binding, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, content, is_func FROM bindings WHERE session = ?`, session)
	if err != nil {
		return nil, fxerrors.IO("couldn't load session %s: %v", session, err)
	}
	defer rows.Close()

	var out []Binding
	for rows.Next() {
		var b Binding
		var isFunc int
		if err := rows.Scan(&b.Name, &b.Content, &isFunc); err != nil {
			return nil, fxerrors.IO("couldn't read binding row: %v", err)
		}
		b.IsFunc = isFunc != 0
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fxerrors.IO("couldn't read session %s: %v", session, err)
	}
	return out, nil
}

// Delete removes one named binding from session.
func (s *Store) Delete(ctx context.Context, session, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bindings WHERE session = ? AND name = ?`, session, name)
	if err != nil {
		return fxerrors.IO("couldn't delete binding %s: %v", name, err)
	}
	return nil
}

// DeleteSession removes every binding for session.
func (s *Store) DeleteSession(ctx context.Context, session string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bindings WHERE session = ?`, session)
	if err != nil {
		return fxerrors.IO("couldn't delete session %s: %v", session, err)
	}
	return nil
}
