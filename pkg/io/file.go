package io

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
	"github.com/matzehuels/depgraph/pkg/observability"
)

// Decode parses a document in the given format into a validated snapshot.
func Decode(ctx context.Context, r io.Reader, format Format) (*graph.Snapshot, error) {
	start := time.Now()
	var (
		snap *graph.Snapshot
		err  error
	)
	switch format {
	case FormatJSON:
		snap, err = ReadJSON(r)
	case FormatCSV:
		snap, err = ReadCSV(r)
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	observability.Codec().OnDecode(ctx, string(format), snap.Len(), time.Since(start), err)
	return snap, err
}

// Encode writes tasks to w in the given format.
func Encode(ctx context.Context, w io.Writer, tasks []graph.Task, format Format) error {
	start := time.Now()
	var err error
	switch format {
	case FormatJSON:
		err = WriteJSON(w, tasks)
	case FormatCSV:
		err = WriteCSV(w, tasks)
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	observability.Codec().OnEncode(ctx, string(format), len(tasks), time.Since(start), err)
	return err
}

// Import decodes a document and, if it is valid, replaces the contents of
// store with it. On any error the store is left untouched.
func Import(ctx context.Context, store *graph.Store, r io.Reader, format Format) (*graph.Snapshot, error) {
	snap, err := Decode(ctx, r, format)
	if err != nil {
		return nil, err
	}
	store.Replace(snap)
	return snap, nil
}

// ImportFile imports the file at path, choosing the format from its extension.
func ImportFile(ctx context.Context, store *graph.Store, path string) (*graph.Snapshot, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Import(ctx, store, f, format)
}

// ExportFile writes the tasks of store to path, choosing the format from its
// extension. The file is replaced atomically: it is written to a temporary file
// in the same directory and renamed into place.
func ExportFile(ctx context.Context, store *graph.Store, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(ctx, &buf, store.Tasks(), format); err != nil {
		return err
	}
	return WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// WriteFileAtomic writes data to path through a temporary file and rename, so
// readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
