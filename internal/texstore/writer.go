package texstore

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/MeKo-Tech/cloudnoise/internal/cloud"
)

const (
	// DefaultBatchSize is the number of slices to buffer before flushing to the database.
	DefaultBatchSize = 16
)

// SliceEntry represents a single slice to be written.
type SliceEntry struct {
	Data  []byte // Raw texel bytes (gzip-compressed before storage)
	Index int
}

// Writer writes texture slices to a texture store.
type Writer struct {
	db        *sql.DB
	path      string
	batch     []SliceEntry
	metadata  Metadata
	batchSize int
	mu        sync.Mutex
}

// New creates a new texture store writer.
// The database is created if it doesn't exist, and the schema is initialized.
func New(path string, metadata Metadata) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := insertMetadata(db, metadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert metadata: %w", err)
	}

	return &Writer{
		db:        db,
		path:      path,
		batch:     make([]SliceEntry, 0, DefaultBatchSize),
		batchSize: DefaultBatchSize,
		metadata:  metadata,
	}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT NOT NULL,
			value TEXT
		);

		CREATE TABLE IF NOT EXISTS slices (
			slice_index INTEGER NOT NULL,
			slice_data BLOB NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS slice_index ON slices (slice_index);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func insertMetadata(db *sql.DB, meta Metadata) error {
	if _, err := db.Exec("DELETE FROM metadata"); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}

	stmt, err := db.Prepare("INSERT INTO metadata (name, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer stmt.Close()

	for key, value := range meta.ToMap() {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to insert metadata %q: %w", key, err)
		}
	}

	return nil
}

// WriteSlice adds a slice to the batch. When the batch is full, it is automatically flushed.
// The data must be exactly one slice long as described by the store metadata.
func (w *Writer) WriteSlice(index int, data []byte) error {
	if n := w.metadata.sliceLen(); len(data) != n {
		return fmt.Errorf("slice %d has %d bytes, want %d", index, len(data), n)
	}
	if index < 0 || index >= int(w.metadata.Resolution) {
		return fmt.Errorf("slice %d out of range [0,%d)", index, w.metadata.Resolution)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.batch = append(w.batch, SliceEntry{Index: index, Data: data})

	if len(w.batch) >= w.batchSize {
		return w.flushLocked()
	}

	return nil
}

// Flush writes any buffered slices to the database.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// flushLocked writes buffered slices to the database. Must be called with lock held.
func (w *Writer) flushLocked() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO slices (slice_index, slice_data) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, slice := range w.batch {
		compressed, err := gzipCompress(slice.Data)
		if err != nil {
			return fmt.Errorf("failed to compress slice %d: %w", slice.Index, err)
		}

		if _, err := stmt.Exec(slice.Index, compressed); err != nil {
			return fmt.Errorf("failed to insert slice %d: %w", slice.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.batch = w.batch[:0]
	return nil
}

// Close flushes any remaining slices and closes the database.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.db.Close()
		return err
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// WriteTexture stores every slice of tex in a new texture store at path.
func WriteTexture(path string, meta Metadata, tex *cloud.Texture) error {
	if err := tex.Validate(); err != nil {
		return err
	}
	meta.Resolution = tex.Resolution
	meta.NumChannels = tex.NumChannels
	meta.BytesPerChannel = tex.BytesPerChannel

	w, err := New(path, meta)
	if err != nil {
		return err
	}
	for s := 0; s < int(tex.Resolution); s++ {
		if err := w.WriteSlice(s, tex.Slice(s)); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)

	if _, err := gw.Write(data); err != nil {
		gw.Close()
		return nil, err
	}

	if err := gw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
