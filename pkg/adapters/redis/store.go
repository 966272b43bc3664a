package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.ParamStore and ports.RunLog using Redis.
// Parameter sets are JSON documents under <prefix>params:<name>; runs keep
// their snapshot under <prefix>run:<run>:params and their log as a list
// under <prefix>run:<run>:log.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for run records. Parameter sets never expire.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "arbor:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) setKey(name string) string {
	return s.prefix + "params:" + name
}

func (s *Store) setIndexKey() string {
	return s.prefix + "params:index"
}

func (s *Store) runParamsKey(run string) string {
	return s.prefix + "run:" + run + ":params"
}

func (s *Store) runLogKey(run string) string {
	return s.prefix + "run:" + run + ":log"
}

func (s *Store) runIndexKey() string {
	return s.prefix + "run:index"
}

// Put stores a raw parameter set and indexes its name.
func (s *Store) Put(ctx context.Context, name string, raw map[string]any) error {
	if err := domain.CheckSetName(name); err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal parameter set: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.setKey(name), data, 0)
	pipe.SAdd(ctx, s.setIndexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a raw parameter set.
func (s *Store) Load(ctx context.Context, name string) (map[string]any, error) {
	if err := domain.CheckSetName(name); err != nil {
		return nil, err
	}

	val, err := s.client.Get(ctx, s.setKey(name)).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrParamSetNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decode(val)
}

// List returns the indexed parameter set names in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.setIndexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list parameter sets: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Start records the run snapshot and adds the run to the index.
func (s *Store) Start(ctx context.Context, run string, params domain.Tree, names []string) error {
	if run == "" {
		return fmt.Errorf("run name cannot be empty")
	}
	data, err := json.Marshal(domain.Snapshot(params, names))
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.runParamsKey(run), data, s.ttl)
	pipe.ZAdd(ctx, s.runIndexKey(), backend.Z{
		Score:  float64(time.Now().Unix()),
		Member: run,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run to redis: %w", err)
	}
	return nil
}

// Append pushes a line onto the run's log list.
func (s *Store) Append(ctx context.Context, run string, line string) error {
	if run == "" {
		return fmt.Errorf("run name cannot be empty")
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.runLogKey(run), line)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.runLogKey(run), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append run log: %w", err)
	}
	return nil
}

// Params returns the snapshot recorded by Start.
func (s *Store) Params(ctx context.Context, run string) (map[string]any, error) {
	val, err := s.client.Get(ctx, s.runParamsKey(run)).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, fmt.Errorf("run %q has no recorded parameters", run)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decode(val)
}

// Lines returns the run's log lines in order.
func (s *Store) Lines(ctx context.Context, run string) ([]string, error) {
	lines, err := s.client.LRange(ctx, s.runLogKey(run), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}
	return lines, nil
}

// Runs returns recorded runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	runs, err := s.client.ZRange(ctx, s.runIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func decode(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameter set: %w", err)
	}
	return raw, nil
}
