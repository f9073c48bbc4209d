// Package store keeps pathway documents and their load diagnostics in a
// SQLite database. Bodies are stored in msgpack form.
package store

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ritzau/pathlink/pkg/codec"
	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/model"
)

//go:embed schema.sql
var schemaSQL string

//go:embed pragmas.sql
var pragmasSQL string

// ErrDocumentNotFound is returned for names that were never saved.
var ErrDocumentNotFound = fmt.Errorf("document %w", diag.ErrNotFound)

// DocumentInfo describes one stored document.
type DocumentInfo struct {
	Name      string    `json:"name"`
	Elements  int       `json:"elements"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DB wraps a SQLite connection.
type DB struct {
	conn  *sql.DB
	mu    sync.RWMutex
	path  string
	codec codec.Codec
}

// Open opens or creates a database at path. ":memory:" works for tests.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// One connection keeps in-memory databases alive and serializes writers.
	conn.SetMaxOpenConns(1)

	for _, pragma := range strings.Split(pragmasSQL, "\n") {
		pragma = strings.TrimSpace(pragma)
		if pragma == "" || strings.HasPrefix(pragma, "--") {
			continue
		}
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &DB{conn: conn, path: path, codec: codec.Msgpack{}}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// SaveDocument stores a document under its name, replacing any earlier
// version together with its diagnostics.
func (db *DB) SaveDocument(ctx context.Context, doc *model.RawDocument, diags diag.List) error {
	if doc.Name == "" {
		return fmt.Errorf("%w: document without a name", diag.ErrInvalidParameter)
	}
	var body bytes.Buffer
	if err := db.codec.Encode(&body, doc); err != nil {
		return fmt.Errorf("encoding %s: %w", doc.Name, err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (name, format, body, elements, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET format = excluded.format, body = excluded.body,
		   elements = excluded.elements, updated_at = excluded.updated_at`,
		doc.Name, db.codec.Name(), body.Bytes(), len(doc.Elements), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", doc.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM diagnostics WHERE document = ?`, doc.Name); err != nil {
		return fmt.Errorf("clearing diagnostics of %s: %w", doc.Name, err)
	}
	for i, d := range diags {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO diagnostics (document, seq, element_id, kind, reason) VALUES (?, ?, ?, ?, ?)`,
			doc.Name, i, d.ElementID, string(d.Kind), d.Reason,
		)
		if err != nil {
			return fmt.Errorf("storing diagnostic of %s: %w", doc.Name, err)
		}
	}
	return tx.Commit()
}

// LoadDocument returns the stored document with the given name.
func (db *DB) LoadDocument(ctx context.Context, name string) (*model.RawDocument, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var (
		format string
		body   []byte
	)
	err := db.conn.QueryRowContext(ctx, `SELECT format, body FROM documents WHERE name = ?`, name).Scan(&format, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", name, err)
	}

	c, err := codec.ByName(format)
	if err != nil {
		return nil, err
	}
	return c.Decode(bytes.NewReader(body))
}

// ListDocuments returns all stored documents ordered by name.
func (db *DB) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, `SELECT name, elements, updated_at FROM documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentInfo
	for rows.Next() {
		var (
			info    DocumentInfo
			updated int64
		)
		if err := rows.Scan(&info.Name, &info.Elements, &updated); err != nil {
			return nil, err
		}
		info.UpdatedAt = time.UnixMilli(updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document and its diagnostics.
func (db *DB) DeleteDocument(ctx context.Context, name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", name, ErrDocumentNotFound)
	}
	return nil
}

// Diagnostics returns the diagnostics stored with a document in the
// order they were recorded.
func (db *DB) Diagnostics(ctx context.Context, name string) (diag.List, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT element_id, kind, reason FROM diagnostics WHERE document = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("querying diagnostics of %s: %w", name, err)
	}
	defer rows.Close()

	var out diag.List
	for rows.Next() {
		var d diag.Diagnostic
		var kind string
		if err := rows.Scan(&d.ElementID, &kind, &d.Reason); err != nil {
			return nil, err
		}
		d.Kind = diag.Kind(kind)
		out = append(out, d)
	}
	return out, rows.Err()
}
