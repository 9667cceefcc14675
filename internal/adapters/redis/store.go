// Package redisad backs the lake with Redis: one key per blob, named
// <container>/<path>. Useful when several pipeline processes share state
// without a shared filesystem.
package redisad

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
)

type Store struct{ c *redis.Client }

func New(addr, pass string, db int) *Store {
	return &Store{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func key(container, path string) string { return container + "/" + path }

func (s *Store) List(ctx context.Context, container, prefix string) ([]string, error) {
	pattern := key(container, prefix) + "*"
	var (
		out    []string
		cursor uint64
	)
	for {
		keys, next, err := s.c.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", pattern, err)
		}
		for _, k := range keys {
			out = append(out, strings.TrimPrefix(k, container+"/"))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Download(ctx context.Context, container, path string) ([]byte, error) {
	v, err := s.c.Get(ctx, key(container, path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s/%s: %w", container, path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) Upload(ctx context.Context, container, path string, data []byte) error {
	return s.c.Set(ctx, key(container, path), data, 0).Err()
}
