package workspace

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
	depio "github.com/matzehuels/depgraph/pkg/io"
)

// KeyPrefix namespaces workspace keys.
const KeyPrefix = "depgraph:workspace:"

// RedisStore keeps each workspace as a JSON string under KeyPrefix+name.
// Keys never expire.
type RedisStore struct {
	client redis.UniversalClient
	owned  bool
}

// NewRedisStore wraps an existing client. The caller keeps ownership of client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedisStore connects with opts and verifies the connection with PING.
// Close closes the connection.
func DialRedisStore(ctx context.Context, opts *redis.Options) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	return &RedisStore{client: client, owned: true}, nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (*graph.Snapshot, error) {
	if err := errors.ValidateWorkspaceName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, KeyPrefix+name).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load workspace %q: %w", name, err)
	}
	snap, err := depio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("workspace %q is corrupt: %w", name, err)
	}
	return snap, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, snap *graph.Snapshot) error {
	if err := errors.ValidateWorkspaceName(name); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := depio.WriteJSON(&buf, snap.Tasks()); err != nil {
		return err
	}
	if err := s.client.Set(ctx, KeyPrefix+name, buf.Bytes(), 0).Err(); err != nil {
		return fmt.Errorf("save workspace %q: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateWorkspaceName(name); err != nil {
		return err
	}
	if err := s.client.Del(ctx, KeyPrefix+name).Err(); err != nil {
		return fmt.Errorf("delete workspace %q: %w", name, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), KeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
