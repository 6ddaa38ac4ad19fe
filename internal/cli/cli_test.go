package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/observability"
)

// =============================================================================
// Helpers
// =============================================================================

type captured struct {
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// captureOutput redirects command output and spinner frames to buffers for
// the rest of the test.
func captureOutput(t *testing.T) *captured {
	t.Helper()
	out := &captured{stdout: new(bytes.Buffer), stderr: new(bytes.Buffer)}
	oldOut, oldErr := stdout, stderr
	stdout, stderr = out.stdout, out.stderr
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })
	return out
}

// isolate points every XDG directory at a fresh temp dir so commands never
// touch the real workspace, config or cache.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	for _, env := range []string{
		"DEPGRAPH_WORKSPACE_BACKEND", "DEPGRAPH_WORKSPACE_DIR", "DEPGRAPH_WORKSPACE",
		"DEPGRAPH_REDIS_ADDR", "DEPGRAPH_REDIS_PASSWORD", "DEPGRAPH_SERVER_ADDR",
	} {
		t.Setenv(env, "")
	}
	t.Cleanup(observability.Reset)
	return home
}

// run executes one CLI invocation with input as stdin and returns stdout.
func run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	out := captureOutput(t)

	c := New(io.Discard, LogInfo)
	c.in = strings.NewReader(input)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.stdout.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("depgraph %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

// =============================================================================
// Task Commands
// =============================================================================

func TestAddListEdges(t *testing.T) {
	home := isolate(t)

	assertContains(t, mustRun(t, "add", "Design", "the", "API"), "Added #1", "Design the API")
	assertContains(t, mustRun(t, "add", "Build", "--dep", "1"), "Added #2", "Build")
	assertContains(t, mustRun(t, "add", "Ship", "-d", "#1", "-d", "2"), "Added #3")

	list := mustRun(t, "list")
	assertContains(t, list, "Design the API", "Build", "Ship", "#1 #2", "3 tasks", "3 dependencies")

	edges := mustRun(t, "edges")
	assertContains(t, edges, "Build", "Ship")
	if n := strings.Count(edges, iconArrow); n != 3 {
		t.Errorf("edges printed %d arrows, want 3:\n%s", n, edges)
	}

	saved := filepath.Join(home, "data", "depgraph", "workspaces", "default.json")
	if _, err := os.Stat(saved); err != nil {
		t.Errorf("workspace not saved: %v", err)
	}
}

func TestAddErrors(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "Design")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"empty text", []string{"add", "  "}, errors.ErrCodeEmptyText},
		{"no text", []string{"add"}, errors.ErrCodeEmptyText},
		{"unknown dependency", []string{"add", "Build", "--dep", "7"}, errors.ErrCodeUnknownDependency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}

	_, err := run(t, "", "add", "")
	if msg := errors.UserMessage(err); msg != "Please enter a task name" {
		t.Errorf("UserMessage = %q", msg)
	}
	if out := mustRun(t, "list"); !strings.Contains(out, "1 task") {
		t.Errorf("failed adds changed the graph:\n%s", out)
	}
}

func TestDepCommands(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "Design")
	mustRun(t, "add", "Build")

	assertContains(t, mustRun(t, "dep", "add", "2", "1"), "#2 now depends on #1")

	_, err := run(t, "", "dep", "add", "1", "2")
	if !errors.Is(err, errors.ErrCodeCycleDetected) {
		t.Errorf("cycle error = %v", err)
	}
	_, err = run(t, "", "dep", "add", "1", "1")
	if !errors.Is(err, errors.ErrCodeSelfDependency) {
		t.Errorf("self error = %v", err)
	}
	_, err = run(t, "", "dep", "add", "9", "1")
	if !errors.Is(err, errors.ErrCodeUnknownTask) {
		t.Errorf("unknown task error = %v", err)
	}

	assertContains(t, mustRun(t, "dep", "toggle", "2", "1"), "no longer depends on")
	assertContains(t, mustRun(t, "dep", "toggle", "2", "1"), "now depends on")
	mustRun(t, "dep", "rm", "2", "1")
	assertContains(t, mustRun(t, "edges"), "No dependencies")
}

func TestSearch(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "Write docs")
	mustRun(t, "add", "Write code")
	mustRun(t, "add", "Review")

	out := mustRun(t, "search", "WRITE")
	assertContains(t, out, "Write docs", "Write code", "2 of 3 tasks")
	if strings.Contains(out, "Review") {
		t.Errorf("search showed a non-match:\n%s", out)
	}
}

func TestReset(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "Design")

	out, err := run(t, "n\n", "reset")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Clear all tasks?", "Cancelled")
	assertContains(t, mustRun(t, "list"), "Design")

	out, err = run(t, "y\n", "reset")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Removed 1 task")
	assertContains(t, mustRun(t, "list"), "No tasks")

	mustRun(t, "add", "Again")
	assertContains(t, mustRun(t, "reset", "--yes"), "Removed 1 task")
	assertContains(t, mustRun(t, "reset", "--yes"), "Nothing to reset")
}

func TestWorkspaceFlag(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "Default task")
	mustRun(t, "-w", "other", "add", "Other task")

	if out := mustRun(t, "-w", "other", "list"); strings.Contains(out, "Default task") {
		t.Errorf("workspaces not isolated:\n%s", out)
	}

	list := mustRun(t, "workspace", "list")
	assertContains(t, list, "default", "other")

	mustRun(t, "workspace", "rm", "other", "--yes")
	if list := mustRun(t, "workspace", "list"); strings.Contains(list, "other") {
		t.Errorf("workspace not deleted:\n%s", list)
	}

	_, err := run(t, "", "-w", "../escape", "list")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad workspace name error = %v", err)
	}
}

// =============================================================================
// Import / Export
// =============================================================================

func TestExportImportRoundTrip(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	mustRun(t, "add", "Design")
	mustRun(t, "add", "Build, then test", "-d", "1")
	before := mustRun(t, "list")

	for _, format := range []string{"json", "csv"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "graph."+format)
			assertContains(t, mustRun(t, "export", format, "-o", path), "Exported "+strings.ToUpper(format), path)

			mustRun(t, "reset", "--yes")
			assertContains(t, mustRun(t, "import", path), "Imported graph."+format, "2 tasks")
			if after := mustRun(t, "list"); after != before {
				t.Errorf("list after import differs:\nbefore:\n%s\nafter:\n%s", before, after)
			}
		})
	}
}

func TestExportDefaultFilename(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "Design")

	dir := t.TempDir()
	t.Chdir(dir)

	mustRun(t, "export")
	if _, err := os.Stat(filepath.Join(dir, "dependency_graph.json")); err != nil {
		t.Errorf("default export file missing: %v", err)
	}
}

func TestExportStdout(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "Design")
	mustRun(t, "add", "Build", "-d", "1")

	out := mustRun(t, "export", "dot", "-o", "-", "--rankdir", "LR", "--highlight", "build")
	assertContains(t, out, "digraph G {", "rankdir=LR;", `fillcolor="#fff3b0"`)

	csv := mustRun(t, "export", "csv", "-o", "-")
	if !strings.HasPrefix(csv, "id,text,dependencies\n") {
		t.Errorf("csv export = %q", csv)
	}
}

func TestExportImage(t *testing.T) {
	home := isolate(t)
	mustRun(t, "add", "Design")
	path := filepath.Join(t.TempDir(), "graph.png")

	assertContains(t, mustRun(t, "export", "png", "-o", path), "fresh")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("exported file is not a PNG")
	}

	assertContains(t, mustRun(t, "export", "png", "-o", path), "cached")
	assertContains(t, mustRun(t, "export", "png", "-o", path, "--no-cache"), "fresh")

	assertContains(t, mustRun(t, "cache", "path"), filepath.Join(home, "cache", "depgraph"))
	assertContains(t, mustRun(t, "cache", "clear"), "Cleared 1 cached image")
}

func TestExportInvalid(t *testing.T) {
	isolate(t)
	if _, err := run(t, "", "export", "pdf"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("export pdf error = %v", err)
	}
	if _, err := run(t, "", "export", "svg", "--rankdir", "up"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad rankdir error = %v", err)
	}
}

func TestImportFailureKeepsGraph(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "Keep me")
	dir := t.TempDir()

	tests := []struct {
		name string
		file string
		body string
		args []string
		code errors.Code
	}{
		{"cycle", "cycle.json", `{"tasks":[{"id":"a","text":"A","dependencies":["b"]},{"id":"b","text":"B","dependencies":["a"]}]}`, nil, errors.ErrCodeCycleDetected},
		{"unknown dependency", "dangling.csv", "id,text,dependencies\na,A,zz\n", nil, errors.ErrCodeUnknownDependency},
		{"bad extension", "tasks.txt", "id,text,dependencies\n", nil, errors.ErrCodeInvalidFormat},
		{"explicit format", "tasks.txt", "{}", []string{"--format", "json"}, errors.ErrCodeMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := run(t, "", append([]string{"import", path}, tt.args...)...)
			if !errors.Is(err, tt.code) {
				t.Errorf("import error = %v, want %s", err, tt.code)
			}
			assertContains(t, mustRun(t, "list"), "Keep me", "1 task")
		})
	}
}

// =============================================================================
// Config
// =============================================================================

func TestConfigCommands(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "config", "depgraph", "config.toml")

	assertContains(t, mustRun(t, "config", "path"), path)
	assertContains(t, mustRun(t, "config", "init"), "Wrote default config")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, err := run(t, "", "config", "init"); err == nil {
		t.Error("config init overwrote an existing file without --force")
	}
	mustRun(t, "config", "init", "--force")

	show := mustRun(t, "-w", "sprint", "config", "show")
	assertContains(t, show, "[workspace]", `name = "sprint"`, `rankdir = "TB"`)
}

func TestConfigFlag(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	body := "[workspace]\ndir = \"" + filepath.ToSlash(filepath.Join(dir, "ws")) + "\"\nname = \"custom\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	mustRun(t, "--config", path, "add", "Configured")
	if _, err := os.Stat(filepath.Join(dir, "ws", "custom.json")); err != nil {
		t.Errorf("workspace not saved under configured dir: %v", err)
	}

	if err := os.WriteFile(path, []byte("[workspace]\nbogus = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "", "--config", path, "list"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("unknown key error = %v", err)
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	assertContains(t, mustRun(t, "completion", "bash"), "depgraph")
	if _, err := run(t, "", "completion", "tcsh"); err == nil {
		t.Error("unsupported shell accepted")
	}
}
