package texstore

import (
	"os"
	"path/filepath"
	"testing"
)

func testMetadata() Metadata {
	return Metadata{
		Name:            "detail",
		Format:          "rgba8_unorm",
		Description:     "Test description",
		Version:         "1.0",
		Channels:        []string{"r", "g", "b", "a"},
		Resolution:      4,
		NumChannels:     4,
		BytesPerChannel: 1,
	}
}

func sliceData(meta Metadata, fill byte) []byte {
	data := make([]byte, meta.sliceLen())
	for i := range data {
		data[i] = fill + byte(i)
	}
	return data
}

func TestWriter_New(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.sqlite")

	w, err := New(dbPath, testMetadata())
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("Database file was not created")
	}

	var count int
	err = w.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='slices'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected slices table to exist, got count=%d", count)
	}

	err = w.db.QueryRow("SELECT COUNT(*) FROM metadata").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query metadata: %v", err)
	}
	if count != 8 {
		t.Errorf("Expected 8 metadata rows, got %d", count)
	}
}

func TestWriter_WriteSlice(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.sqlite")
	meta := testMetadata()

	w, err := New(dbPath, meta)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	if err := w.WriteSlice(2, sliceData(meta, 7)); err != nil {
		t.Fatalf("Failed to write slice: %v", err)
	}

	// Buffered until flushed
	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM slices").Scan(&count); err != nil {
		t.Fatalf("Failed to count slices: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 slices before flush, got %d", count)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}

	var stored []byte
	if err := w.db.QueryRow("SELECT slice_data FROM slices WHERE slice_index=2").Scan(&stored); err != nil {
		t.Fatalf("Failed to query slice: %v", err)
	}
	// gzip magic
	if len(stored) < 2 || stored[0] != 0x1f || stored[1] != 0x8b {
		t.Errorf("Expected gzip-compressed slice data")
	}
}

func TestWriter_WriteSliceValidation(t *testing.T) {
	tmpDir := t.TempDir()
	meta := testMetadata()

	w, err := New(filepath.Join(tmpDir, "test.sqlite"), meta)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	if err := w.WriteSlice(0, []byte{1, 2, 3}); err == nil {
		t.Error("Expected error for short slice")
	}
	if err := w.WriteSlice(4, sliceData(meta, 0)); err == nil {
		t.Error("Expected error for out of range slice index")
	}
	if err := w.WriteSlice(-1, sliceData(meta, 0)); err == nil {
		t.Error("Expected error for negative slice index")
	}
}

func TestWriter_AutoFlush(t *testing.T) {
	tmpDir := t.TempDir()
	meta := testMetadata()
	meta.Resolution = DefaultBatchSize + 2

	w, err := New(filepath.Join(tmpDir, "test.sqlite"), meta)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	for s := 0; s < DefaultBatchSize; s++ {
		if err := w.WriteSlice(s, sliceData(meta, byte(s))); err != nil {
			t.Fatalf("Failed to write slice %d: %v", s, err)
		}
	}

	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM slices").Scan(&count); err != nil {
		t.Fatalf("Failed to count slices: %v", err)
	}
	if count != DefaultBatchSize {
		t.Errorf("Expected %d slices after auto-flush, got %d", DefaultBatchSize, count)
	}
}

func TestWriter_ReplaceSlice(t *testing.T) {
	tmpDir := t.TempDir()
	meta := testMetadata()

	w, err := New(filepath.Join(tmpDir, "test.sqlite"), meta)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	for _, fill := range []byte{1, 2} {
		if err := w.WriteSlice(0, sliceData(meta, fill)); err != nil {
			t.Fatalf("Failed to write slice: %v", err)
		}
		if err := w.Flush(); err != nil {
			t.Fatalf("Failed to flush: %v", err)
		}
	}

	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM slices").Scan(&count); err != nil {
		t.Fatalf("Failed to count slices: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected replaced slice to leave 1 row, got %d", count)
	}
}

func TestMetadata_ToMap(t *testing.T) {
	m := Metadata{Name: "shape", Resolution: 128}
	got := m.ToMap()

	if len(got) != 2 {
		t.Errorf("Expected only set fields, got %v", got)
	}
	if got["resolution"] != "128" {
		t.Errorf("resolution = %q, want 128", got["resolution"])
	}
}
