package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/adapters/observability"
)

// Runner sequences the three stages. Data only flows forward, so each
// stage starts strictly after the previous one finished, with a
// cancellation check in between.
type Runner struct {
	ingest  *IngestionService
	cleanse *CleansingService
	kpi     *KPIService

	mu   sync.RWMutex
	runs map[string]*RunStatus
}

type RunStatus struct {
	ID         string     `json:"id"`
	State      string     `json:"state"` // running | succeeded | failed
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

func NewRunner(ingest *IngestionService, cleanse *CleansingService, kpi *KPIService) *Runner {
	return &Runner{ingest: ingest, cleanse: cleanse, kpi: kpi, runs: make(map[string]*RunStatus)}
}

// Run executes bronze, silver and gold in order and blocks until done.
func (r *Runner) Run(ctx context.Context) error {
	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{"bronze", r.ingest.Run},
		{"silver", r.cleanse.Run},
		{"gold", r.kpi.Run},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := st.run(ctx)
		observability.ObserveStage(st.name, err, time.Since(start))
		if err != nil {
			return fmt.Errorf("stage %s: %w", st.name, err)
		}
		log.Info().Str("stage", st.name).Dur("duration", time.Since(start)).Msg("stage completed")
	}
	return nil
}

// StartAsync launches a run in the background and returns its ID. The
// run outlives the caller's request context on purpose.
func (r *Runner) StartAsync(ctx context.Context) string {
	id := uuid.NewString()
	status := &RunStatus{ID: id, State: "running", StartedAt: time.Now()}
	r.mu.Lock()
	r.runs[id] = status
	r.mu.Unlock()

	go func() {
		logger := log.With().Str("run_id", id).Logger()
		logger.Info().Msg("pipeline run starting")
		err := r.Run(context.WithoutCancel(ctx))

		now := time.Now()
		r.mu.Lock()
		status.FinishedAt = &now
		if err != nil {
			status.State = "failed"
			status.Error = err.Error()
		} else {
			status.State = "succeeded"
		}
		r.mu.Unlock()

		if err != nil {
			logger.Error().Err(err).Msg("pipeline run failed")
			return
		}
		logger.Info().Msg("pipeline run succeeded")
	}()
	return id
}

// Status returns a snapshot of a run, or false if the ID is unknown.
func (r *Runner) Status(id string) (RunStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.runs[id]
	if !ok {
		return RunStatus{}, false
	}
	return *s, true
}
