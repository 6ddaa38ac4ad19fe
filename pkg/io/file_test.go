package io

import (
	"bytes"
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
	"github.com/matzehuels/depgraph/pkg/observability"
)

// sampleStore builds a graph whose texts exercise CSV quoting.
func sampleStore(t *testing.T) *graph.Store {
	t.Helper()
	s := graph.NewStore()
	add := func(text string, deps ...string) string {
		task, err := s.AddTask(text, deps)
		if err != nil {
			t.Fatalf("AddTask(%q): %v", text, err)
		}
		return task.ID
	}
	design := add("Design, then review")
	build := add(`Build "v2"`, design)
	docs := add("Write docs\nand examples", design)
	add("Ship", build, docs)
	add("Unrelated\r\nsecond line\rthird")
	return s
}

func TestImportReplacesStore(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		format Format
		doc    string
	}{
		{FormatJSON, importJSON},
		{FormatCSV, importCSV},
	} {
		t.Run(string(tc.format), func(t *testing.T) {
			store := sampleStore(t)
			before := store.Version()

			snap, err := Import(ctx, store, strings.NewReader(tc.doc), tc.format)
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if store.Len() != 2 || store.EdgeCount() != 1 {
				t.Errorf("store has %d tasks, %d edges; want 2, 1", store.Len(), store.EdgeCount())
			}
			if !store.Snapshot().Equal(snap) {
				t.Error("store does not match imported snapshot")
			}
			if store.Version() != before+1 {
				t.Errorf("Version() = %d, want %d", store.Version(), before+1)
			}
		})
	}
}

func TestImportFailureLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		format Format
		doc    string
		code   errors.Code
	}{
		{"json duplicate id", FormatJSON, `{"tasks":[{"id":"a","text":"A"},{"id":"a","text":"B"}]}`, errors.ErrCodeDuplicateID},
		{"json unknown dependency", FormatJSON, `{"tasks":[{"id":"a","text":"A","dependencies":["x"]}]}`, errors.ErrCodeUnknownDependency},
		{"json cycle", FormatJSON, `{"tasks":[{"id":"a","text":"A","dependencies":["b"]},{"id":"b","text":"B","dependencies":["a"]}]}`, errors.ErrCodeCycleDetected},
		{"json malformed", FormatJSON, `{"tasks":`, errors.ErrCodeMalformedInput},
		{"csv duplicate id", FormatCSV, "id,text,dependencies\na,A,\na,B,\n", errors.ErrCodeDuplicateID},
		{"csv unknown dependency", FormatCSV, "id,text,dependencies\na,A,x\n", errors.ErrCodeUnknownDependency},
		{"csv cycle", FormatCSV, "id,text,dependencies\na,A,b\nb,B,a\n", errors.ErrCodeCycleDetected},
		{"csv malformed", FormatCSV, "id,text\na,A\n", errors.ErrCodeMalformedInput},
		{"unknown format", Format("xml"), "<tasks/>", errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := sampleStore(t)
			before := store.Snapshot()
			version := store.Version()

			_, err := Import(ctx, store, strings.NewReader(tt.doc), tt.format)
			if got := errors.GetCode(err); got != tt.code {
				t.Fatalf("code = %s, want %s (err: %v)", got, tt.code, err)
			}
			if !store.Snapshot().Equal(before) {
				t.Error("store changed after failed import")
			}
			if store.Version() != version {
				t.Errorf("Version() = %d, want %d", store.Version(), version)
			}
		})
	}
}

func TestCSVAndJSONEncodingsAgree(t *testing.T) {
	ctx := context.Background()
	store := sampleStore(t)

	var fromJSON, fromCSV *graph.Snapshot
	for _, f := range Formats {
		var buf bytes.Buffer
		if err := Encode(ctx, &buf, store.Tasks(), f); err != nil {
			t.Fatalf("Encode(%s): %v", f, err)
		}
		snap, err := Decode(ctx, &buf, f)
		if err != nil {
			t.Fatalf("Decode(%s): %v", f, err)
		}
		if f == FormatJSON {
			fromJSON = snap
		} else {
			fromCSV = snap
		}
	}
	if !fromJSON.Equal(fromCSV) {
		t.Error("JSON and CSV round trips disagree")
	}
}

func TestExportImportFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			src := sampleStore(t)
			path := filepath.Join(dir, DefaultFilename(string(f)))
			if err := ExportFile(ctx, src, path); err != nil {
				t.Fatalf("ExportFile: %v", err)
			}

			dst := graph.NewStore()
			if _, err := ImportFile(ctx, dst, path); err != nil {
				t.Fatalf("ImportFile: %v", err)
			}
			if !dst.Snapshot().Equal(src.Snapshot()) {
				t.Error("imported graph differs from exported graph")
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatal(err)
			}
			for _, e := range entries {
				if strings.HasSuffix(e.Name(), ".tmp") {
					t.Errorf("temporary file left behind: %s", e.Name())
				}
			}
		})
	}
}

func TestImportFileErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := graph.NewStore()

	if _, err := ImportFile(ctx, store, filepath.Join(dir, "graph.yaml")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("yaml: got %v, want INVALID_FORMAT", err)
	}
	if _, err := ImportFile(ctx, store, filepath.Join(dir, "missing.json")); !stderrors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: got %v, want not-exist", err)
	}
	if err := ExportFile(ctx, store, filepath.Join(dir, "graph")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("no extension: got %v, want INVALID_FORMAT", err)
	}
}

func TestDecodeReadFailure(t *testing.T) {
	readErr := stderrors.New("connection reset")
	for _, format := range []Format{FormatJSON, FormatCSV} {
		t.Run(string(format), func(t *testing.T) {
			_, err := Decode(context.Background(), iotest.ErrReader(readErr), format)
			if !errors.Is(err, errors.ErrCodeMalformedInput) {
				t.Errorf("got %v, want MALFORMED_INPUT", err)
			}
			if !stderrors.Is(err, readErr) {
				t.Errorf("got %v, want the read error in the chain", err)
			}
		})
	}
}

type recordingCodecHooks struct {
	decodes []string
	encodes []string
}

func (h *recordingCodecHooks) OnDecode(_ context.Context, format string, tasks int, _ time.Duration, err error) {
	h.decodes = append(h.decodes, format+":"+string(errors.GetCode(err)))
}

func (h *recordingCodecHooks) OnEncode(_ context.Context, format string, tasks int, _ time.Duration, err error) {
	h.encodes = append(h.encodes, format)
}

func TestCodecHooks(t *testing.T) {
	defer observability.Reset()
	hooks := &recordingCodecHooks{}
	observability.SetCodecHooks(hooks)

	ctx := context.Background()
	var buf bytes.Buffer
	if err := Encode(ctx, &buf, nil, FormatCSV); err != nil {
		t.Fatal(err)
	}
	_, _ = Decode(ctx, strings.NewReader(importJSON), FormatJSON)
	_, _ = Decode(ctx, strings.NewReader("{"), FormatJSON)

	if len(hooks.encodes) != 1 || hooks.encodes[0] != "csv" {
		t.Errorf("encodes = %v", hooks.encodes)
	}
	want := []string{"json:", "json:MALFORMED_INPUT"}
	if len(hooks.decodes) != 2 || hooks.decodes[0] != want[0] || hooks.decodes[1] != want[1] {
		t.Errorf("decodes = %v, want %v", hooks.decodes, want)
	}
}

func TestFormats(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"json", FormatJSON, true},
		{" CSV ", FormatCSV, true},
		{".json", FormatJSON, true},
		{"png", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}

	if f, err := FormatFromPath("out/dependency_graph.CSV"); err != nil || f != FormatCSV {
		t.Errorf("FormatFromPath = %q, %v", f, err)
	}
	if got := DefaultFilename("png"); got != "dependency_graph.png" {
		t.Errorf("DefaultFilename(png) = %q", got)
	}
	if got := DefaultFilename(".json"); got != "dependency_graph.json" {
		t.Errorf("DefaultFilename(.json) = %q", got)
	}
}
