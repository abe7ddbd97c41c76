package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// ClipboardRow is one stored clipboard payload.
type ClipboardRow struct {
	Seq     int64
	At      time.Time
	Session string
	Payload string
}

// CatalogRow records a config digest the server ran with.
type CatalogRow struct {
	Name   string
	Digest string
	JSON   []byte
}

type SQLiteIndex struct {
	db *sql.DB

	// mu orders sends on ch against close(ch).
	mu   sync.RWMutex
	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropClipboard atomic.Uint64
}

type reqKind int

const (
	reqClipboard reqKind = iota + 1
	reqSync
)

type req struct {
	kind reqKind

	clip ClipboardRow
	done chan struct{}
}

type Stats struct {
	DropClipboardTotal uint64
	QueueDepth         int
	QueueCapacity      int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	return openSQLite(path, 4096)
}

func openSQLite(path string, queue int) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, queue),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS clipboard (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			session TEXT NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_clipboard_session ON clipboard(session, seq);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// WriteClipboard queues row for the writer goroutine. Rows are dropped when
// the queue is full.
func (s *SQLiteIndex) WriteClipboard(row ClipboardRow) error {
	if s == nil {
		return nil
	}
	if row.At.IsZero() {
		row.At = time.Now()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqClipboard, clip: row}:
	default:
		s.dropClipboard.Add(1)
	}
	return nil
}

// Sync blocks until every row queued before the call is committed.
func (s *SQLiteIndex) Sync(ctx context.Context) error {
	if s == nil {
		return nil
	}
	done := make(chan struct{})
	if err := s.send(ctx, req{kind: reqSync, done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// send blocks until r is queued. A closed index accepts nothing and the
// pending Sync returns immediately.
func (s *SQLiteIndex) send(ctx context.Context, r req) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		close(r.done)
		return nil
	}
	select {
	case s.ch <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		DropClipboardTotal: s.dropClipboard.Load(),
		QueueDepth:         len(s.ch),
		QueueCapacity:      cap(s.ch),
	}
}

// History returns up to limit rows, newest first. An empty session matches
// every session.
func (s *SQLiteIndex) History(ctx context.Context, session string, limit int) ([]ClipboardRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq,at,session,payload FROM clipboard WHERE (?='' OR session=?) ORDER BY seq DESC LIMIT ?`,
		session, session, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClipboardRow
	for rows.Next() {
		var (
			r  ClipboardRow
			at string
		)
		if err := rows.Scan(&r.Seq, &at, &r.Session, &r.Payload); err != nil {
			return nil, err
		}
		r.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Latest returns the newest row; false when the table is empty.
func (s *SQLiteIndex) Latest(ctx context.Context, session string) (ClipboardRow, bool, error) {
	rows, err := s.History(ctx, session, 1)
	if err != nil || len(rows) == 0 {
		return ClipboardRow{}, false, err
	}
	return rows[0], true, nil
}

// UpsertCatalogs stores the digests and raw JSON of the configs in use.
func (s *SQLiteIndex) UpsertCatalogs(ctx context.Context, rows []CatalogRow) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.Name == "" || r.Digest == "" || len(r.JSON) == 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, r.Name, r.Digest, string(r.JSON), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CatalogDigest returns the stored digest for name.
func (s *SQLiteIndex) CatalogDigest(ctx context.Context, name string) (string, bool, error) {
	var d string
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM catalogs WHERE name=?`, name).Scan(&d)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return d, true, nil
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertClip, _ := s.db.Prepare(`INSERT INTO clipboard(at,session,payload) VALUES(?,?,?)`)
	defer func() {
		if insertClip != nil {
			_ = insertClip.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 256
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait || len(s.ch) == 0 {
			commit()
		}
	}

	for r := range s.ch {
		switch r.kind {
		case reqSync:
			commit()
			close(r.done)
			continue
		case reqClipboard:
			begin()
			if tx == nil || insertClip == nil {
				continue
			}
			c := r.clip
			if _, err := tx.Stmt(insertClip).Exec(c.At.UTC().Format(time.RFC3339Nano), c.Session, c.Payload); err != nil {
				rollback()
				continue
			}
			opCount++
		}
		flushIfNeeded()
	}

	commit()
}
