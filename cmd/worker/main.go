package main

import (
	"context"
	"database/sql"
	stdlog "log"
	"os"
	"os/signal"
	stdsync "sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"structwatch/internal/engine/esi"
	"structwatch/internal/engine/forwarding"
	"structwatch/internal/engine/notifications"
	syncengine "structwatch/internal/engine/sync"
	"structwatch/internal/pkg/logger"
	"structwatch/internal/platform/config"
	"structwatch/internal/platform/database"
	"structwatch/internal/platform/models"
	"structwatch/internal/platform/repositories"
)

// worker runs the full per-owner sync pipeline on a fixed interval. An
// owner whose previous run has not finished is skipped, never stacked.
type worker struct {
	db     *sql.DB
	cfg    *config.Config
	tokens esi.TokenSource

	reconciler *syncengine.Reconciler
	ingestor   *notifications.Ingestor
	forwarder  *forwarding.Forwarder

	mu     stdsync.Mutex
	locks  map[int64]*stdsync.Mutex
	active stdsync.WaitGroup
}

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		stdlog.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	tokens := esi.StaticTokenSource(cfg.ESI.Tokens)
	universe := syncengine.NewESIUniverse(
		esi.NewClient(cfg.ESI, tokens, ""),
		cfg.Sync.DefaultLanguage,
		cfg.Sync.Languages,
	)

	w := &worker{
		db:         db,
		cfg:        cfg,
		tokens:     tokens,
		reconciler: syncengine.NewReconciler(db, universe, cfg.Sync),
		ingestor:   notifications.NewIngestor(db, notifications.NewDBTimerCreator(db), cfg.Sync),
		forwarder:  forwarding.NewForwarder(db, forwarding.NewHTTPSender(cfg.Webhooks.SendTimeout)),
		locks:      make(map[int64]*stdsync.Mutex),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Dur("interval", cfg.Sync.Interval).Msg("worker starting")
	w.run(ctx)
	w.active.Wait()
	log.Info().Msg("worker stopped")
}

func (w *worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Sync.Interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *worker) tick(ctx context.Context) {
	owners, err := repositories.NewOwnerRepository(w.db).ListActive()
	if err != nil {
		log.Error().Err(err).Msg("failed to list owners")
		return
	}

	for _, owner := range owners {
		lock := w.ownerLock(owner.ID)
		if !lock.TryLock() {
			log.Warn().Int64("owner_id", owner.ID).Msg("previous sync still running, skipping")
			continue
		}

		w.active.Add(1)
		go func(owner *models.Owner) {
			defer w.active.Done()
			defer lock.Unlock()
			w.syncOwner(ctx, owner)
		}(owner)
	}
}

func (w *worker) ownerLock(ownerID int64) *stdsync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	lock, ok := w.locks[ownerID]
	if !ok {
		lock = &stdsync.Mutex{}
		w.locks[ownerID] = lock
	}
	return lock
}

// syncOwner runs one full pipeline pass. Stages run in dependency
// order; a failed stage records its error on the owner and the pass
// moves on to the next stage.
func (w *worker) syncOwner(ctx context.Context, owner *models.Owner) {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.Sync.TaskTimeout)
	defer cancel()

	gw := esi.NewClient(w.cfg.ESI, w.tokens, owner.CredentialRef)

	w.reconciler.UpdateStructures(ctx, gw, owner)
	w.reconciler.UpdateAssets(ctx, gw, owner)
	w.ingestor.FetchNotifications(ctx, gw, owner)
	w.forwarder.SendNewNotifications(ctx, owner)
}
