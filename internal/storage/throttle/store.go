// Package throttle rate-limits a LakeStore. The lake is usually a shared
// service; a runaway run should not be able to saturate it.
package throttle

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
)

type Store struct {
	inner domain.LakeStore
	rl    *rate.Limiter
}

// Wrap decorates inner with a client-side limiter of rps operations per
// second. rps <= 0 returns inner unchanged.
func Wrap(inner domain.LakeStore, rps int) domain.LakeStore {
	if rps <= 0 {
		return inner
	}
	return &Store{inner: inner, rl: rate.NewLimiter(rate.Limit(rps), rps)}
}

func (s *Store) List(ctx context.Context, container, prefix string) ([]string, error) {
	if err := s.rl.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.List(ctx, container, prefix)
}

func (s *Store) Download(ctx context.Context, container, path string) ([]byte, error) {
	if err := s.rl.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Download(ctx, container, path)
}

func (s *Store) Upload(ctx context.Context, container, path string, data []byte) error {
	if err := s.rl.Wait(ctx); err != nil {
		return err
	}
	return s.inner.Upload(ctx, container, path, data)
}
