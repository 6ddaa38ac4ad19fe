package io

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
)

// CSV column names, in the order [WriteCSV] emits them.
const (
	colID           = "id"
	colText         = "text"
	colDependencies = "dependencies"
)

// depSeparator joins dependency ids inside the dependencies column.
const depSeparator = ";"

var csvHeader = []string{colID, colText, colDependencies}

// WriteCSV writes tasks as CSV with a header row. Text is quoted when needed.
func WriteCSV(w io.Writer, tasks []graph.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range tasks {
		if err := cw.Write([]string{t.ID, t.Text, strings.Join(t.Dependencies, depSeparator)}); err != nil {
			return fmt.Errorf("write task %q: %w", t.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// ReadCSV decodes a CSV document from r into a validated snapshot.
//
// The header row must name the columns id, text and dependencies, in any order
// and case. Extra columns are ignored. Every row must have as many fields as the
// header. Blank lines and empty dependency entries are skipped, and a leading
// UTF-8 byte order mark is tolerated. Structural problems are reported as
// MALFORMED_INPUT with the line number; graph problems as for [ReadJSON].
// ReadCSV does not close r.
func ReadCSV(r io.Reader) (*graph.Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0 // first record fixes the width

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeMalformedInput, "empty CSV document: missing header row")
	}
	if err != nil {
		return nil, csvError(err)
	}
	cols, err := headerColumns(header)
	if err != nil {
		return nil, err
	}

	var tasks []graph.Task
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := cr.FieldPos(0)
		t := graph.Task{
			ID:   rec[cols[colID]],
			Text: rec[cols[colText]],
		}
		if raw := strings.TrimSpace(rec[cols[colDependencies]]); raw != "" {
			for _, dep := range strings.Split(raw, depSeparator) {
				if dep = strings.TrimSpace(dep); dep != "" {
					t.Dependencies = append(t.Dependencies, dep)
				}
			}
		}
		if err := errors.ValidateTaskID(t.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "line %d", line)
		}
		tasks = append(tasks, t)
	}

	return graph.NewSnapshot(tasks)
}

// headerColumns maps each required column name to its index in header.
func headerColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(csvHeader))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := cols[name]; dup {
			if slices.Contains(csvHeader, name) {
				return nil, errors.New(errors.ErrCodeMalformedInput, "line 1: duplicate column %q", name)
			}
			continue
		}
		cols[name] = i
	}
	for _, want := range csvHeader {
		if _, ok := cols[want]; !ok {
			return nil, errors.New(errors.ErrCodeMalformedInput, "line 1: missing column %q (header must contain id,text,dependencies)", want)
		}
	}
	return cols, nil
}

// csvError converts a reader error into MALFORMED_INPUT, keeping the line.
func csvError(err error) error {
	var pe *csv.ParseError
	if stderrors.As(err, &pe) {
		return errors.Wrap(errors.ErrCodeMalformedInput, pe.Err, "line %d", pe.Line)
	}
	return errors.Wrap(errors.ErrCodeMalformedInput, err, "invalid CSV document")
}
