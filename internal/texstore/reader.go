package texstore

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/MeKo-Tech/cloudnoise/internal/cloud"
)

// ErrSliceNotFound is returned when a store has no row for the requested slice.
var ErrSliceNotFound = errors.New("slice not found")

// Reader reads texture slices from a texture store.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens a texture store for reading.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='slices'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain slices table")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

// ReadSlice reads one slice and returns its uncompressed texel bytes.
func (r *Reader) ReadSlice(index int) ([]byte, error) {
	var compressedData []byte
	err := r.db.QueryRow("SELECT slice_data FROM slices WHERE slice_index=?", index).Scan(&compressedData)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrSliceNotFound, index)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query slice: %w", err)
	}

	uncompressed, err := gzipDecompress(compressedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress slice %d: %w", index, err)
	}

	return uncompressed, nil
}

// SliceCount returns the number of stored slices.
func (r *Reader) SliceCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM slices").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count slices: %w", err)
	}
	return count, nil
}

// Metadata reads metadata from the database.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	metaMap := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		metaMap[name] = value
	}

	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	return fromMap(metaMap), nil
}

// ReadTexture reassembles the whole texture. Every slice must be present and have the
// size recorded in the metadata.
func (r *Reader) ReadTexture() (*cloud.Texture, error) {
	meta, err := r.Metadata()
	if err != nil {
		return nil, err
	}

	tex := &cloud.Texture{
		Resolution:      meta.Resolution,
		NumChannels:     meta.NumChannels,
		BytesPerChannel: meta.BytesPerChannel,
	}
	if tex.Len() == 0 {
		return nil, fmt.Errorf("store %s has no texture geometry", r.path)
	}
	tex.Data = make([]byte, tex.Len())

	for s := 0; s < int(tex.Resolution); s++ {
		data, err := r.ReadSlice(s)
		if err != nil {
			return nil, err
		}
		if len(data) != tex.SliceLen() {
			return nil, fmt.Errorf("slice %d has %d bytes, want %d", s, len(data), tex.SliceLen())
		}
		copy(tex.Slice(s), data)
	}

	return tex, nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}
