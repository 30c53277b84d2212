package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/olerom/formula/internal/config"
	"github.com/olerom/formula/internal/harvest"
	"github.com/olerom/formula/internal/logger"
	"github.com/olerom/formula/internal/storage"
	"github.com/olerom/formula/pkg/ergast"
	"github.com/olerom/formula/pkg/httpclient"
	"github.com/olerom/formula/pkg/publishers"
	"github.com/olerom/formula/pkg/queries"
	"golang.org/x/time/rate"
)

// Harvester is the sync runtime. It runs the harvest loop over the configured
// queries, owns the publishers fanout and the dedupe store, and releases both
// on exit.
type Harvester struct {
	cfg          *config.Config
	queryReg     *queries.Registry
	fanout       *publishers.Fanout
	service      *harvest.Service
	syncInterval time.Duration
	runOnce      bool
	log          logger.Logger
	store        storage.Store
}

// NewHarvester builds a harvester runtime from config files.
func NewHarvester(ctx context.Context, cfg *config.Config, log logger.Logger) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	queryReg, err := queries.LoadRegistry(cfg.QueriesFile)
	if err != nil {
		return nil, fmt.Errorf("load queries registry: %w", err)
	}
	queryList := queryReg.All()
	queryIDs := make([]string, 0, len(queryList))
	for _, q := range queryList {
		queryIDs = append(queryIDs, q.ID)
	}
	log.InfoObj("queries registry loaded", "queries_meta", map[string]any{
		"count": len(queryIDs),
		"ids":   queryIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	storeOpts := storage.Options{
		RecordTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"record_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	httpClient := httpclient.NewRestyClient(cfg.HTTPTimeout)
	clientOpts := []ergast.Option{
		ergast.WithBaseURL(cfg.ErgastBaseURL),
		ergast.WithSeries(cfg.ErgastSeries),
		ergast.WithUserAgent(cfg.UserAgent),
		ergast.WithLogger(log),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(math.Ceil(cfg.RequestsPerSecond))
		clientOpts = append(clientOpts, ergast.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)))
	}
	client := ergast.NewClient(httpClient, clientOpts...)
	enricher := harvest.NewEnricher(httpClient, cfg.UserAgent, log)

	return &Harvester{
		cfg:          cfg,
		queryReg:     queryReg,
		fanout:       fanout,
		service:      harvest.NewService(client, enricher, fanout, log, store),
		syncInterval: cfg.SyncInterval,
		runOnce:      cfg.RunOnce,
		log:          log,
		store:        store,
	}, nil
}

// Run starts the sync loop until the context is cancelled. With run_once set
// it returns after the first pass and reports its error.
func (h *Harvester) Run(ctx context.Context) error {
	if h == nil || h.service == nil {
		return fmt.Errorf("harvester is not initialized")
	}
	defer h.close()

	qs := h.queryReg.All()
	h.log.InfoObj("harvester loop starting", "harvester_state", map[string]any{
		"queries_count":    len(qs),
		"publishers_count": h.fanout.Size(),
		"sync_interval":    h.syncInterval.String(),
		"run_once":         h.runOnce,
	})

	if err := h.runPass(ctx, qs); err != nil {
		if h.runOnce {
			return err
		}
		h.log.ErrorObj("initial sync failed", "error", err.Error())
	}
	if h.runOnce {
		return nil
	}

	ticker := time.NewTicker(h.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.InfoObj("harvester loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := h.runPass(ctx, qs); err != nil {
				h.log.ErrorObj("scheduled sync failed", "error", err.Error())
			}
		}
	}
}

// runPass performs a single sync across all queries.
func (h *Harvester) runPass(ctx context.Context, qs []queries.Query) error {
	start := time.Now()
	h.log.InfoObj("sync started", "sync_meta", map[string]any{
		"queries_count": len(qs),
		"started_at":    start.UTC(),
	})
	if err := h.service.Run(ctx, qs); err != nil {
		return err
	}
	h.log.InfoObj("sync completed", "sync_meta", map[string]any{
		"queries_count": len(qs),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return nil
}

// close releases the publishers and the storage backend, logging failures.
func (h *Harvester) close() {
	if err := h.fanout.Close(); err != nil {
		h.log.ErrorObj("publishers close failed", "error", err.Error())
	}
	if h.store == nil {
		return
	}
	if err := h.store.Close(); err != nil {
		h.log.ErrorObj("storage close failed", "error", err.Error())
	}
}
