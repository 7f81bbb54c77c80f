package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vicimikul/lifi-fee-scraper/internal/chains"
	"github.com/vicimikul/lifi-fee-scraper/internal/config"
	"github.com/vicimikul/lifi-fee-scraper/internal/domain/entities"
	"github.com/vicimikul/lifi-fee-scraper/internal/domain/repositories"
	"github.com/vicimikul/lifi-fee-scraper/internal/errs"
)

var (
	windowsScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanner_windows_scanned_total",
			Help: "Total number of block windows scanned",
		},
		[]string{"chain_id"},
	)

	eventsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanner_events_stored_total",
			Help: "Total number of fee events handed to storage",
		},
		[]string{"chain_id"},
	)

	scanErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanner_errors_total",
			Help: "Total number of scan errors",
		},
		[]string{"chain_id"},
	)

	lastScannedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scanner_last_scanned_block",
			Help: "Last fully scanned block per chain",
		},
		[]string{"chain_id"},
	)

	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scanner_pass_duration_seconds",
			Help:    "Time taken for one full multi-chain scan pass",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
)

// ChainReader is the view of a chain client the scanner consumes.
type ChainReader interface {
	// LatestBlock returns the chain head.
	LatestBlock(ctx context.Context) (int64, error)

	// FetchEvents returns the decoded events in the closed window [from, to].
	FetchEvents(ctx context.Context, from, to int64) ([]entities.FeeEvent, error)
}

// ReaderFactory resolves the reader for a chain descriptor.
type ReaderFactory func(chain chains.Chain) ChainReader

// ScannerService pages every enabled chain forward in fixed-size block
// windows and persists decoded events together with progress. Chains run
// in parallel; within one chain windows are strictly sequential.
type ScannerService struct {
	readerFor    ReaderFactory
	registry     *chains.Registry
	eventRepo    repositories.FeeEventRepository
	progressRepo repositories.ProgressRepository
	cfg          config.ScannerConfig
	logger       *zap.Logger
	stopCh       chan struct{}
	wg           sync.WaitGroup
}

// NewScannerService creates a new scanner service.
func NewScannerService(
	readerFor ReaderFactory,
	registry *chains.Registry,
	eventRepo repositories.FeeEventRepository,
	progressRepo repositories.ProgressRepository,
	cfg config.ScannerConfig,
	logger *zap.Logger,
) *ScannerService {
	return &ScannerService{
		readerFor:    readerFor,
		registry:     registry,
		eventRepo:    eventRepo,
		progressRepo: progressRepo,
		cfg:          cfg,
		logger:       logger,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the scan loop. The first pass runs immediately, then one
// pass per poll interval.
func (s *ScannerService) Start(ctx context.Context) {
	s.logger.Info("Starting scanner",
		zap.Int("chains", len(s.registry.Chains())),
		zap.Int64("chunk_size", s.cfg.ChunkSize),
	)

	s.wg.Add(1)
	go s.runScanLoop(ctx)
}

// Stop waits for the in-flight pass to finish.
func (s *ScannerService) Stop() {
	s.logger.Info("Stopping scanner")
	close(s.stopCh)
	s.wg.Wait()
}

func (s *ScannerService) runScanLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

func (s *ScannerService) runPass(ctx context.Context) {
	start := time.Now()
	if err := s.ScanAll(ctx); err != nil {
		s.logger.Error("Scan pass finished with errors", zap.Error(err))
	}
	scanDuration.Observe(time.Since(start).Seconds())
}

// ScanAll runs one pass over every enabled chain, one goroutine per
// chain. A failing chain is logged and does not stop its siblings; the
// first error is returned once all chains finished.
func (s *ScannerService) ScanAll(ctx context.Context) error {
	var g errgroup.Group

	for _, chain := range s.registry.Chains() {
		chain := chain
		g.Go(func() error {
			if err := s.ScanChain(ctx, chain); err != nil {
				scanErrors.WithLabelValues(strconv.FormatInt(chain.ID, 10)).Inc()
				s.logger.Error("Chain scan failed",
					zap.String("chain", chain.Name),
					zap.Int64("chain_id", chain.ID),
					zap.Error(err),
				)
				return fmt.Errorf("chain %d: %w", chain.ID, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// ScanChain catches one chain up to its current head. Resumes from the
// stored cursor plus one, or from the configured start block when no
// cursor exists. Blockchain and database errors abort the run; anything
// else skips the window and continues.
func (s *ScannerService) ScanChain(ctx context.Context, chain chains.Chain) error {
	reader := s.readerFor(chain)

	head, err := reader.LatestBlock(ctx)
	if err != nil {
		return err
	}

	cursor, found, err := s.progressRepo.Get(ctx, chain.ID)
	if err != nil {
		return err
	}

	from := chain.StartBlock
	if found {
		from = cursor + 1
	}

	if from >= head {
		s.logger.Info("Chain up to date",
			zap.String("chain", chain.Name),
			zap.Int64("cursor", from-1),
			zap.Int64("head", head),
		)
		return nil
	}

	s.logger.Info("Scanning chain",
		zap.String("chain", chain.Name),
		zap.Int64("from", from),
		zap.Int64("head", head),
	)

	w := s.cfg.ChunkSize
	for current := from; current < head; current += w {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		default:
		}

		windowEnd := current + w - 1
		if windowEnd > head {
			windowEnd = head
		}

		if err := s.scanWindow(ctx, reader, chain, current, windowEnd); err != nil {
			if errs.IsBlockchain(err) || errs.IsDatabase(err) {
				return err
			}
			s.logger.Warn("Skipping window",
				zap.String("chain", chain.Name),
				zap.Int64("from", current),
				zap.Int64("to", windowEnd),
				zap.Error(err),
			)
		}
	}

	return nil
}

// scanWindow fetches, persists and advances one window. Progress is set
// only after the insert succeeded; a crash in between re-fetches the
// window on restart, which the identity index makes idempotent.
func (s *ScannerService) scanWindow(ctx context.Context, reader ChainReader, chain chains.Chain, from, to int64) error {
	events, err := reader.FetchEvents(ctx, from, to)
	if err != nil {
		return err
	}

	if err := s.eventRepo.InsertMany(ctx, events, chain.ID); err != nil {
		return err
	}

	if err := s.progressRepo.Set(ctx, chain.ID, to); err != nil {
		return err
	}

	chainLabel := strconv.FormatInt(chain.ID, 10)
	windowsScanned.WithLabelValues(chainLabel).Inc()
	eventsStored.WithLabelValues(chainLabel).Add(float64(len(events)))
	lastScannedBlock.WithLabelValues(chainLabel).Set(float64(to))

	s.logger.Debug("Scanned window",
		zap.String("chain", chain.Name),
		zap.Int64("from", from),
		zap.Int64("to", to),
		zap.Int("events", len(events)),
	)

	return nil
}
