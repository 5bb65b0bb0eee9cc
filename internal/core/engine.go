package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/auto-dns/docker-hosts-sync/internal/config"
	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/auto-dns/docker-hosts-sync/internal/state"
)

// SyncEngine coordinates event ingestion, state updates, and hosts-file
// writes. Two concurrent activities run for the process lifetime: the event
// loop (this engine) and the debounce loop; they coordinate through the
// store's lock and the debouncer's collapsed signal.
type SyncEngine struct {
	logger    zerolog.Logger
	cfg       *config.AppConfig
	source    source
	store     *state.Store
	writer    snapshotWriter
	debouncer *Debouncer
}

func NewSyncEngine(logger zerolog.Logger, cfg *config.AppConfig, src source, store *state.Store, writer snapshotWriter) *SyncEngine {
	se := &SyncEngine{
		logger: logger,
		cfg:    cfg,
		source: src,
		store:  store,
		writer: writer,
	}
	se.debouncer = NewDebouncer(time.Duration(cfg.DebounceMs)*time.Millisecond, se.writeSnapshot, logger)
	return se
}

// writeSnapshot clones the store under its lock, then writes outside it so a
// slow file write never blocks event processing.
func (se *SyncEngine) writeSnapshot() error {
	return se.writer.WriteSnapshot(se.store.Snapshot())
}

// FullResync rebuilds the store from the runtime's current container list
// and triggers an immediate, non-debounced write. Failures to inspect an
// individual container are logged and that container is omitted.
func (se *SyncEngine) FullResync(ctx context.Context) error {
	se.logger.Info().Msg("Fetching running containers")

	ids, err := se.source.ListRunningContainerIds(ctx)
	if err != nil {
		return fmt.Errorf("full resync: %w", err)
	}
	se.logger.Info().Int("count", len(ids)).Msg("Found running containers")

	recs := make([]domain.ContainerRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := se.source.Inspect(ctx, id)
		if err != nil {
			se.logger.Warn().Err(err).Msg("Failed to inspect container during resync")
			continue
		}
		if rec.Active() {
			se.logger.Debug().Str("container", rec.Name).Msg("Adding container")
			recs = append(recs, rec)
		}
	}
	se.store.Replace(recs)

	return se.writeSnapshot()
}

// HandleEvent applies one runtime event to the store and signals the
// debouncer when the active set changed.
func (se *SyncEngine) HandleEvent(ctx context.Context, evt domain.ContainerEvent) {
	if evt.ContainerId == "" {
		return
	}

	switch evt.Class() {
	case domain.ClassAttach:
		rec, err := se.source.Inspect(ctx, evt.ContainerId)
		if err != nil {
			se.logger.Warn().Err(err).Str("action", evt.Action).Msg("Failed to inspect container")
			return
		}
		if rec.Active() {
			se.store.Upsert(rec)
			se.logger.Info().Str("container", rec.Name).Str("action", evt.Action).Msg("Container attached")
			se.debouncer.Schedule()
		} else if se.store.Remove(evt.ContainerId) {
			// A start-class event for a container that turned out
			// ineligible must not leave a stale record behind.
			se.logger.Info().Str("container", rec.Name).Str("action", evt.Action).Msg("Container no longer eligible")
			se.debouncer.Schedule()
		}
	case domain.ClassDetach:
		if se.store.Remove(evt.ContainerId) {
			se.logger.Info().Str("action", evt.Action).Msg("Container detached")
			se.debouncer.Schedule()
		}
	default:
		se.logger.Debug().Str("action", evt.Action).Msg("Ignoring event")
	}
}

// Run performs the initial full resync, then consumes the event stream until
// the context is cancelled or the stream closes. An in-flight write is
// allowed to complete on shutdown.
func (se *SyncEngine) Run(ctx context.Context) error {
	se.logger.Info().Msg("Starting sync engine")

	// Derived context so the debounce loop and subscription stop when Run
	// returns for any reason, not only caller cancellation.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eventCh, err := se.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to container events: %w", err)
	}

	if err := se.FullResync(ctx); err != nil {
		return err
	}

	go se.debouncer.Run(ctx)

	se.logger.Info().Msg("Listening for container events")
	for {
		select {
		case <-ctx.Done():
			se.logger.Info().Msg("Sync engine shutting down")
			return ctx.Err()
		case evt, ok := <-eventCh:
			if !ok {
				se.logger.Info().Msg("Event stream closed")
				return nil
			}
			se.HandleEvent(ctx, evt)
		}
	}
}
