package workspace

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/depgraph/pkg/config"
	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
)

func sampleSnapshot(t *testing.T) *graph.Snapshot {
	t.Helper()
	snap, err := graph.NewSnapshot([]graph.Task{
		{ID: "t1", Text: "Design"},
		{ID: "t2", Text: "Build, test", Dependencies: []string{"t1"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, s Store, prefix string) {
	ctx := context.Background()
	name := prefix + "ws"

	t.Run("load missing", func(t *testing.T) {
		snap, err := s.Load(ctx, prefix+"never-saved")
		if err != nil || snap != nil {
			t.Errorf("Load(missing) = %v, %v; want nil, nil", snap, err)
		}
	})

	t.Run("save and load", func(t *testing.T) {
		want := sampleSnapshot(t)
		if err := s.Save(ctx, name, want); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := s.Load(ctx, name)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !got.Equal(want) {
			t.Errorf("Load() = %+v, want %+v", got.Tasks(), want.Tasks())
		}
	})

	t.Run("save empty", func(t *testing.T) {
		if err := s.Save(ctx, name+"-empty", nil); err != nil {
			t.Fatalf("Save(nil): %v", err)
		}
		got, err := s.Load(ctx, name+"-empty")
		if err != nil || got == nil || got.Len() != 0 {
			t.Errorf("Load(empty) = %v, %v", got, err)
		}
	})

	t.Run("list", func(t *testing.T) {
		names, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		for _, want := range []string{name, name + "-empty"} {
			if !slices.Contains(names, want) {
				t.Errorf("List() = %v, missing %q", names, want)
			}
		}
		if !slices.IsSorted(names) {
			t.Errorf("List() not sorted: %v", names)
		}
	})

	t.Run("delete", func(t *testing.T) {
		for _, n := range []string{name, name + "-empty"} {
			if err := s.Delete(ctx, n); err != nil {
				t.Fatalf("Delete(%q): %v", n, err)
			}
		}
		if snap, _ := s.Load(ctx, name); snap != nil {
			t.Error("workspace still present after Delete")
		}
		if err := s.Delete(ctx, name); err != nil {
			t.Errorf("Delete(missing) = %v", err)
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		for _, bad := range []string{"", "../escape", "a/b", ".hidden"} {
			if _, err := s.Load(ctx, bad); !errors.Is(err, errors.ErrCodeInvalidPath) {
				t.Errorf("Load(%q) = %v, want INVALID_PATH", bad, err)
			}
			if err := s.Save(ctx, bad, nil); !errors.Is(err, errors.ErrCodeInvalidPath) {
				t.Errorf("Save(%q) = %v, want INVALID_PATH", bad, err)
			}
		}
	})
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "workspaces"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s, "")
}

func TestFileStorePermissions(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	if err := s.Save(context.Background(), "perm", sampleSnapshot(t)); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(s.Path("perm"))
	if err != nil {
		t.Fatal(err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("mode = %o, want 600", mode)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	if err := os.WriteFile(s.Path("broken"), []byte(`{"tasks":[{"id":"a"}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load(context.Background(), "broken")
	if !errors.Is(err, errors.ErrCodeMalformedInput) {
		t.Errorf("Load(corrupt) = %v, want MALFORMED_INPUT", err)
	}
}

func TestNewFileStoreEmptyDir(t *testing.T) {
	if _, err := NewFileStore(""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("NewFileStore(\"\") = %v, want INVALID_CONFIG", err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("DEPGRAPH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DEPGRAPH_TEST_REDIS_ADDR not set")
	}
	s, err := DialRedisStore(context.Background(), &redis.Options{Addr: addr})
	if err != nil {
		t.Fatalf("DialRedisStore: %v", err)
	}
	defer s.Close()
	testStore(t, s, "test-")
}

func TestOpenAndRestore(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Workspace.Dir = t.TempDir()

	ws, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ws.Close()
	if _, ok := ws.(*FileStore); !ok {
		t.Fatalf("Open() = %T, want *FileStore", ws)
	}

	empty, err := Restore(ctx, ws, "fresh")
	if err != nil || empty.Len() != 0 {
		t.Fatalf("Restore(fresh) = %v tasks, %v", empty.Len(), err)
	}

	if err := ws.Save(ctx, "main", sampleSnapshot(t)); err != nil {
		t.Fatal(err)
	}
	store, err := Restore(ctx, ws, "main")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if store.Len() != 2 || store.EdgeCount() != 1 {
		t.Errorf("restored %d tasks, %d edges; want 2, 1", store.Len(), store.EdgeCount())
	}

	added, err := store.AddTask("Ship", []string{"t2"})
	if err != nil {
		t.Fatalf("AddTask on restored store: %v", err)
	}
	if added.ID == "t1" || added.ID == "t2" {
		t.Errorf("restored store reissued id %q", added.ID)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Workspace.Backend = "mongo"
	if _, err := Open(context.Background(), cfg); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Open(mongo) = %v, want INVALID_CONFIG", err)
	}
}
