package workspace

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
	depio "github.com/matzehuels/depgraph/pkg/io"
)

const fileExt = ".json"

// FileStore keeps each workspace as <dir>/<name>.json.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "workspace directory is empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file that holds name.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

func (s *FileStore) Load(ctx context.Context, name string) (*graph.Snapshot, error) {
	if err := errors.ValidateWorkspaceName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(name))
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read workspace %q: %w", name, err)
	}
	snap, err := depio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("workspace %q is corrupt: %w", name, err)
	}
	return snap, nil
}

func (s *FileStore) Save(ctx context.Context, name string, snap *graph.Snapshot) error {
	if err := errors.ValidateWorkspaceName(name); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := depio.WriteJSON(&buf, snap.Tasks()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return depio.WriteFileAtomic(s.Path(name), buf.Bytes(), 0o600)
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateWorkspaceName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path(name))
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete workspace %q: %w", name, err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	var names []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), fileExt)
		if e.IsDir() || !ok || errors.ValidateWorkspaceName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) Close() error {
	return nil
}

var _ Store = (*FileStore)(nil)
