package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/adapters/observability"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/tabular"
)

// IngestionService tags every landed table with the run's ingestion
// timestamp and copies it to the bronze tier. No filtering, no validation.
type IngestionService struct {
	store   domain.LakeStore
	landing string // container the raw files land in
	lake    string // container holding the bronze/silver/gold tiers
	workers int
	now     func() time.Time
}

func NewIngestionService(store domain.LakeStore, landing, lake string, workers int) *IngestionService {
	if workers <= 0 {
		workers = 4
	}
	return &IngestionService{store: store, landing: landing, lake: lake, workers: workers, now: time.Now}
}

// Run discovers *.csv blobs in the landing container and processes them
// with bounded fan-out. Failures are captured per table: a blob that
// cannot be read or parsed does not stop the others. The returned error
// joins every per-table failure.
func (s *IngestionService) Run(ctx context.Context) error {
	names, err := s.store.List(ctx, s.landing, "")
	if err != nil {
		return fmt.Errorf("list landing container: %w", err)
	}

	stamp := s.now().Format(tabular.TimestampLayout)

	var tables []string
	for _, n := range names {
		if strings.HasSuffix(n, ".csv") {
			tables = append(tables, strings.TrimSuffix(n, ".csv"))
		}
	}
	log.Info().Int("tables", len(tables)).Str("stamp", stamp).Msg("bronze ingestion starting")

	sem := semaphore.NewWeighted(int64(s.workers))
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, table := range tables {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func(table string) {
			defer wg.Done()
			defer sem.Release(1)

			err := s.ingestTable(ctx, table, stamp)
			observability.ObserveTable("bronze", table, err)
			if err != nil {
				log.Warn().Str("table", table).Err(err).Msg("bronze ingestion failed")
				mu.Lock()
				errs = append(errs, fmt.Errorf("table %s: %w", table, err))
				mu.Unlock()
				return
			}
			log.Info().Str("table", table).Msg("bronze ingestion ok")
		}(table)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (s *IngestionService) ingestTable(ctx context.Context, table, stamp string) error {
	raw, err := s.store.Download(ctx, s.landing, table+".csv")
	if err != nil {
		return err
	}
	t, err := tabular.Decode(raw)
	if err != nil {
		return err
	}
	observability.AddTableRows("bronze", table, "read", len(t.Rows))

	t.AddColumn("ingestion_date", stamp)

	out, err := t.Encode()
	if err != nil {
		return err
	}
	if err := s.store.Upload(ctx, s.lake, domain.TablePath(domain.TierBronze, table), out); err != nil {
		return err
	}
	observability.AddTableRows("bronze", table, "written", len(t.Rows))
	return nil
}
