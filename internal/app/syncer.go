package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/xplana-partner-client/internal/catalog"
	"github.com/samvad-hq/xplana-partner-client/internal/config"
	"github.com/samvad-hq/xplana-partner-client/internal/logger"
	"github.com/samvad-hq/xplana-partner-client/internal/storage"
	"github.com/samvad-hq/xplana-partner-client/pkg/publishers"
	"github.com/samvad-hq/xplana-partner-client/pkg/xplana"
)

// StatusChecker probes partner API reachability.
type StatusChecker interface {
	CheckStatus(ctx context.Context) xplana.Status
}

// Syncer represents the catalog sync runtime. It probes the partner API, runs the
// catalog service on a fixed interval and releases storage and publishers on exit.
type Syncer struct {
	status       StatusChecker
	fanout       *publishers.Fanout
	catalog      *catalog.Service
	syncInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewSyncer builds a syncer runtime from config.
func NewSyncer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Syncer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	client, err := xplana.NewClient(cfg.XplanaHost, xplana.Config{
		APIVersion:       cfg.XplanaAPIVersion,
		TrustedPartnerID: cfg.XplanaTrustedPartnerID,
		Timeout:          cfg.XplanaTimeout,
		Logger:           log,
	})
	if err != nil {
		return nil, fmt.Errorf("init xplana client: %w", err)
	}
	log.InfoObj("xplana client initialized", "xplana_client", map[string]any{
		"host":        client.Host(),
		"api_version": client.APIVersion().String(),
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

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		ProductTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"product_ttl_seconds":      int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return newSyncer(client, client, fanout, store, cfg.XplanaTrustedPartnerID, cfg.SyncInterval, log), nil
}

func newSyncer(status StatusChecker, source catalog.ProductSource, fanout *publishers.Fanout, store storage.Store, partnerID string, interval time.Duration, log logger.Logger) *Syncer {
	return &Syncer{
		status:       status,
		fanout:       fanout,
		catalog:      catalog.NewService(source, fanout, store, partnerID, log),
		syncInterval: interval,
		log:          log,
		store:        store,
	}
}

// Run starts the sync loop until the context is cancelled.
func (s *Syncer) Run(ctx context.Context) error {
	if s == nil || s.catalog == nil {
		return fmt.Errorf("syncer is not initialized")
	}
	defer s.close()

	if s.status != nil {
		st := s.status.CheckStatus(ctx)
		if st.Online {
			s.log.InfoObj("xplana api reachable", "xplana_status", st)
		} else {
			s.log.WarnObj("xplana api unreachable", "xplana_status", st)
		}
	}

	s.log.InfoObj("sync loop starting", "syncer_state", map[string]any{
		"publishers_count": s.fanout.Size(),
		"sync_interval":    s.syncInterval.String(),
	})

	if err := s.runOnce(ctx); err != nil {
		s.log.ErrorObj("initial sync failed", "error", err)
	}

	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoObj("sync loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := s.runOnce(ctx); err != nil {
				s.log.ErrorObj("scheduled sync failed", "error", err)
			}
		}
	}
}

// runOnce performs a single catalog sync pass.
func (s *Syncer) runOnce(ctx context.Context) error {
	start := time.Now()
	res, err := s.catalog.Run(ctx)
	s.log.InfoObj("sync completed", "sync_meta", map[string]any{
		"listed":     res.Listed,
		"published":  res.Published,
		"removed":    res.Removed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return err
}

// close releases storage and publishers, logging any errors encountered.
func (s *Syncer) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := s.fanout.Close(); err != nil {
		s.log.ErrorObj("publisher close failed", "error", err)
	}
}
