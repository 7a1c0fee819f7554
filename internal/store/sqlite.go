package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchemaVersion = 1

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	k TEXT PRIMARY KEY,
	v INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS stacks (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	stack_id   INTEGER NOT NULL REFERENCES stacks(id) ON DELETE CASCADE,
	content    TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_stack ON entries(stack_id, id);
`

// SQLite stores stacks and entries in a single embedded database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	// modernc.org/sqlite driver name is "sqlite"; pragmas ride on the DSN so
	// every pooled connection gets them.
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	s := &SQLite{db: db, path: path}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

// Path reports the database location.
func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (k, v) VALUES ('schema', ?), ('revision', 0) ON CONFLICT(k) DO NOTHING`,
		sqliteSchemaVersion)
	return err
}

func (s *SQLite) ListStacks(ctx context.Context) ([]Stack, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.created_at, s.updated_at, COUNT(e.id)
		FROM stacks s
		LEFT JOIN entries e ON e.stack_id = s.id
		GROUP BY s.id
		ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("list stacks: %w", err)
	}
	defer rows.Close()
	var out []Stack
	for rows.Next() {
		var st Stack
		var created, updated int64
		if err := rows.Scan(&st.ID, &st.Name, &created, &updated, &st.Count); err != nil {
			return nil, fmt.Errorf("scan stack: %w", err)
		}
		st.Created = fromUnix(created)
		st.Updated = fromUnix(updated)
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLite) ListEntries(ctx context.Context, stackID int64) ([]Entry, error) {
	if err := s.requireStack(ctx, s.db, stackID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stack_id, content, created_at, updated_at
		FROM entries
		WHERE stack_id = ?
		ORDER BY id`, stackID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) CreateStack(ctx context.Context, name string) (Stack, error) {
	name, err := cleanName(name)
	if err != nil {
		return Stack{}, err
	}
	ts := now()
	st := Stack{Name: name, Created: ts, Updated: ts}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO stacks (name, created_at, updated_at) VALUES (?, ?, ?)`,
			name, ts.Unix(), ts.Unix())
		if err != nil {
			return err
		}
		st.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return Stack{}, fmt.Errorf("create stack: %w", err)
	}
	return st, nil
}

func (s *SQLite) RenameStack(ctx context.Context, id int64, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE stacks SET name = ?, updated_at = ? WHERE id = ?`,
			name, now().Unix(), id)
		if err != nil {
			return fmt.Errorf("rename stack: %w", err)
		}
		return expectRow(res, stackNotFound(id))
	})
}

func (s *SQLite) DeleteStack(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM stacks WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete stack: %w", err)
		}
		return expectRow(res, stackNotFound(id))
	})
}

func (s *SQLite) AddEntry(ctx context.Context, stackID int64, content string) (Entry, error) {
	content, err := cleanContent(content)
	if err != nil {
		return Entry{}, err
	}
	ts := now()
	e := Entry{StackID: stackID, Content: content, Created: ts, Updated: ts}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireStack(ctx, tx, stackID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO entries (stack_id, content, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			stackID, content, ts.Unix(), ts.Unix())
		if err != nil {
			return fmt.Errorf("add entry: %w", err)
		}
		if e.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE stacks SET updated_at = ? WHERE id = ?`, ts.Unix(), stackID)
		return err
	})
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *SQLite) UpdateEntry(ctx context.Context, stackID, entryID int64, content string) error {
	content, err := cleanContent(content)
	if err != nil {
		return err
	}
	ts := now().Unix()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE entries SET content = ?, updated_at = ? WHERE id = ? AND stack_id = ?`,
			content, ts, entryID, stackID)
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		if err := expectRow(res, entryNotFound(stackID, entryID)); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE stacks SET updated_at = ? WHERE id = ?`, ts, stackID)
		return err
	})
}

func (s *SQLite) DeleteEntry(ctx context.Context, stackID, entryID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM entries WHERE id = ? AND stack_id = ?`, entryID, stackID)
		if err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		return expectRow(res, entryNotFound(stackID, entryID))
	})
}

func (s *SQLite) GetEntry(ctx context.Context, stackID, entryID int64) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, stack_id, content, created_at, updated_at
		FROM entries
		WHERE id = ? AND stack_id = ?`, entryID, stackID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, entryNotFound(stackID, entryID)
	}
	return e, err
}

func (s *SQLite) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = 'revision'`).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	return rev, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLite) requireStack(ctx context.Context, q queryer, id int64) error {
	var found int64
	err := q.QueryRowContext(ctx, `SELECT id FROM stacks WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return stackNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("lookup stack %d: %w", id, err)
	}
	return nil
}

// withTx runs fn in a transaction and bumps the revision when it succeeds.
func (s *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE meta SET v = v + 1 WHERE k = 'revision'`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("bump revision: %w", err)
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var created, updated int64
	if err := row.Scan(&e.ID, &e.StackID, &e.Content, &created, &updated); err != nil {
		return Entry{}, err
	}
	e.Created = fromUnix(created)
	e.Updated = fromUnix(updated)
	return e, nil
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
