package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrganizationProvider lists the organizations the sweep has to visit
type OrganizationProvider interface {
	OrganizationIDsWithOpenInvoices(ctx context.Context) ([]uuid.UUID, error)
}

// Sweeper persists overdue status on qualifying invoices of one organization
type Sweeper interface {
	SweepOverdue(ctx context.Context, orgID uuid.UUID) (int, error)
}

// OverdueSweeperConfig holds configuration for the periodic overdue sweep
type OverdueSweeperConfig struct {
	// Interval is how often the sweep runs
	Interval time.Duration
	// PerOrgTimeout bounds one organization's sweep
	PerOrgTimeout time.Duration
}

// DefaultOverdueSweeperConfig returns default sweep configuration
func DefaultOverdueSweeperConfig() OverdueSweeperConfig {
	return OverdueSweeperConfig{
		Interval:      time.Hour,
		PerOrgTimeout: 30 * time.Second,
	}
}

// OverdueSweeper periodically marks sent invoices past their due date as
// overdue. The read path classifies overdue on the fly regardless; the
// sweep only makes the stored status catch up.
type OverdueSweeper struct {
	config  OverdueSweeperConfig
	orgs    OrganizationProvider
	sweeper Sweeper
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewOverdueSweeper creates a new OverdueSweeper
func NewOverdueSweeper(
	config OverdueSweeperConfig,
	orgs OrganizationProvider,
	sweeper Sweeper,
	logger *zap.Logger,
) *OverdueSweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultOverdueSweeperConfig().Interval
	}
	if config.PerOrgTimeout <= 0 {
		config.PerOrgTimeout = DefaultOverdueSweeperConfig().PerOrgTimeout
	}
	return &OverdueSweeper{
		config:  config,
		orgs:    orgs,
		sweeper: sweeper,
		logger:  logger,
	}
}

// Start launches the sweep loop. It returns immediately; the loop stops
// when Stop is called or the parent context is cancelled.
func (s *OverdueSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.isRunning = true

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Overdue sweep scheduler started",
		zap.Duration("interval", s.config.Interval))
}

// Stop stops the sweep loop and waits for an in-flight sweep to finish
func (s *OverdueSweeper) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("Overdue sweep scheduler stopped")
}

func (s *OverdueSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// First pass right away so a restart does not delay the sweep by a
	// full interval
	s.sweepAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepAll(ctx)
		}
	}
}

// sweepAll visits every organization with open invoices. A failure in one
// organization never blocks the others.
func (s *OverdueSweeper) sweepAll(ctx context.Context) {
	orgIDs, err := s.orgs.OrganizationIDsWithOpenInvoices(ctx)
	if err != nil {
		s.logger.Error("Listing organizations for overdue sweep failed", zap.Error(err))
		return
	}

	total := 0
	for _, orgID := range orgIDs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		orgCtx, cancel := context.WithTimeout(ctx, s.config.PerOrgTimeout)
		updated, err := s.sweeper.SweepOverdue(orgCtx, orgID)
		cancel()
		if err != nil {
			s.logger.Warn("Overdue sweep failed for organization",
				zap.String("organization_id", orgID.String()),
				zap.Error(err))
			continue
		}
		total += updated
	}

	if total > 0 {
		s.logger.Info("Overdue sweep finished",
			zap.Int("organizations", len(orgIDs)),
			zap.Int("invoices_updated", total))
	}
}
