// Package store provides SQLite persistence for the peopledesk server.
//
// Every HR record is a JSON document in one table, next to the handful of
// columns the list endpoints filter, scope and search on.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no document matches kind and id.
var ErrNotFound = errors.New("store: not found")

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// Doc is one stored record.
type Doc struct {
	Kind       string
	ID         string
	Status     string
	EmployeeID string
	Day        string
	Search     string // lower-cased haystack
	Body       []byte // JSON
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// shared cache so every pooled connection sees the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db, now: time.Now}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		employee_id TEXT NOT NULL DEFAULT '',
		day TEXT NOT NULL DEFAULT '',
		search_text TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (kind, id)
	);

	CREATE INDEX IF NOT EXISTS idx_records_kind_created ON records(kind, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_records_kind_status ON records(kind, status);
	CREATE INDEX IF NOT EXISTS idx_records_kind_employee ON records(kind, employee_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Put inserts or replaces a document. CreatedAt is kept from an existing
// row; a zero CreatedAt on insert is set to now.
func (s *Store) Put(ctx context.Context, d Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, s.db, d)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) put(ctx context.Context, db execer, d Doc) error {
	now := s.now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO records (kind, id, status, employee_id, day, search_text, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			status = excluded.status,
			employee_id = excluded.employee_id,
			day = excluded.day,
			search_text = excluded.search_text,
			body = excluded.body,
			updated_at = excluded.updated_at
	`, d.Kind, d.ID, d.Status, d.EmployeeID, d.Day, strings.ToLower(d.Search), string(d.Body),
		d.CreatedAt.UnixNano(), now.UnixNano())
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", d.Kind, d.ID, err)
	}
	return nil
}

// Get returns one document or ErrNotFound.
func (s *Store) Get(ctx context.Context, kind, id string) (Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, err := s.queryDocs(ctx, s.db, `SELECT `+docColumns+` FROM records WHERE kind = ? AND id = ?`, kind, id)
	if err != nil {
		return Doc{}, err
	}
	if len(docs) == 0 {
		return Doc{}, ErrNotFound
	}
	return docs[0], nil
}

// Delete removes one document or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE kind = ? AND id = ?`, kind, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", kind, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Update reads one document, passes it to fn and writes back whatever fn
// leaves in it, all under the write lock in one transaction. fn may return
// an error to abort. extra lets fn rewrite sibling documents of the same
// kind (plan selection demotes the previously selected plan).
func (s *Store) Update(ctx context.Context, kind, id string, fn func(d *Doc, siblings []Doc) ([]Doc, error)) (Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Doc{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	docs, err := s.queryDocs(ctx, tx, `SELECT `+docColumns+` FROM records WHERE kind = ? ORDER BY created_at DESC, id DESC`, kind)
	if err != nil {
		return Doc{}, err
	}
	var (
		target   *Doc
		siblings []Doc
	)
	for i := range docs {
		if docs[i].ID == id {
			target = &docs[i]
		} else {
			siblings = append(siblings, docs[i])
		}
	}
	if target == nil {
		return Doc{}, ErrNotFound
	}

	changed, err := fn(target, siblings)
	if err != nil {
		return Doc{}, err
	}
	if err := s.put(ctx, tx, *target); err != nil {
		return Doc{}, err
	}
	for _, d := range changed {
		if err := s.put(ctx, tx, d); err != nil {
			return Doc{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Doc{}, fmt.Errorf("commit: %w", err)
	}
	return *target, nil
}

// Query selects a page of one kind.
type Query struct {
	Kind       string
	Statuses   []string // any of
	EmployeeID string
	From, To   string // inclusive bounds on day, compared as strings
	Text       string // case-insensitive substring of the search haystack
	Offset     int
	Limit      int // <= 0 means no limit
}

// List returns the matching page, newest first, and the total match count.
func (s *Store) List(ctx context.Context, q Query) ([]Doc, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := q.where()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", q.Kind, err)
	}

	query := `SELECT ` + docColumns + ` FROM records WHERE ` + where + ` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, max(q.Offset, 0))
	}
	docs, err := s.queryDocs(ctx, s.db, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (q Query) where() (string, []any) {
	clauses := []string{"kind = ?"}
	args := []any{q.Kind}

	if len(q.Statuses) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?,", len(q.Statuses)), ",")
		clauses = append(clauses, "status IN ("+marks+")")
		for _, st := range q.Statuses {
			args = append(args, st)
		}
	}
	if q.EmployeeID != "" {
		clauses = append(clauses, "employee_id = ?")
		args = append(args, q.EmployeeID)
	}
	if q.From != "" {
		clauses = append(clauses, "day >= ?")
		args = append(args, q.From)
	}
	if q.To != "" {
		clauses = append(clauses, "day <= ?")
		args = append(args, q.To)
	}
	if t := strings.TrimSpace(q.Text); t != "" {
		clauses = append(clauses, `search_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(t))+"%")
	}
	return strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Counts returns the number of documents of kind per status.
func (s *Store) Counts(ctx context.Context, kind string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM records WHERE kind = ? GROUP BY status`, kind)
	if err != nil {
		return nil, fmt.Errorf("counts %s: %w", kind, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// Total returns the number of stored documents.
func (s *Store) Total(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}

const docColumns = `kind, id, status, employee_id, day, search_text, body, created_at, updated_at`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryDocs executes a query and scans results into Docs.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) queryDocs(ctx context.Context, db querier, query string, args ...any) ([]Doc, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Doc
	for rows.Next() {
		var (
			d                Doc
			body             string
			created, updated int64
		)
		if err := rows.Scan(&d.Kind, &d.ID, &d.Status, &d.EmployeeID, &d.Day, &d.Search, &body, &created, &updated); err != nil {
			return nil, err
		}
		d.Body = []byte(body)
		d.CreatedAt = time.Unix(0, created)
		d.UpdatedAt = time.Unix(0, updated)
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
