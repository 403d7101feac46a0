package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubOrgProvider struct {
	mu    sync.Mutex
	ids   []uuid.UUID
	calls int
}

func (p *stubOrgProvider) OrganizationIDsWithOpenInvoices(ctx context.Context) ([]uuid.UUID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.ids, nil
}

type stubSweeper struct {
	mu    sync.Mutex
	swept []uuid.UUID
}

func (s *stubSweeper) SweepOverdue(ctx context.Context, orgID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swept = append(s.swept, orgID)
	return 1, nil
}

func (s *stubSweeper) sweptIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, len(s.swept))
	copy(out, s.swept)
	return out
}

func TestOverdueSweeperVisitsEveryOrganization(t *testing.T) {
	orgA := uuid.New()
	orgB := uuid.New()
	provider := &stubOrgProvider{ids: []uuid.UUID{orgA, orgB}}
	sweeper := &stubSweeper{}

	s := NewOverdueSweeper(
		OverdueSweeperConfig{Interval: time.Hour},
		provider,
		sweeper,
		zap.NewNop(),
	)

	s.Start(context.Background())
	defer s.Stop()

	// The first pass runs immediately on start
	require.Eventually(t, func() bool {
		return len(sweeper.sweptIDs()) == 2
	}, time.Second, 10*time.Millisecond)

	swept := sweeper.sweptIDs()
	assert.Contains(t, swept, orgA)
	assert.Contains(t, swept, orgB)
}

func TestOverdueSweeperStopIsIdempotent(t *testing.T) {
	s := NewOverdueSweeper(
		OverdueSweeperConfig{Interval: time.Hour},
		&stubOrgProvider{},
		&stubSweeper{},
		zap.NewNop(),
	)

	s.Start(context.Background())
	s.Stop()
	s.Stop()

	// Restart after stop works
	s2 := NewOverdueSweeper(
		OverdueSweeperConfig{},
		&stubOrgProvider{},
		&stubSweeper{},
		zap.NewNop(),
	)
	assert.Equal(t, DefaultOverdueSweeperConfig().Interval, s2.config.Interval)
}

func TestOverdueSweeperStartTwiceIsSafe(t *testing.T) {
	provider := &stubOrgProvider{}
	s := NewOverdueSweeper(
		OverdueSweeperConfig{Interval: time.Hour},
		provider,
		&stubSweeper{},
		zap.NewNop(),
	)

	s.Start(context.Background())
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		provider.mu.Lock()
		defer provider.mu.Unlock()
		return provider.calls >= 1
	}, time.Second, 10*time.Millisecond)

	// One loop only: a second Start must not double the immediate pass
	time.Sleep(50 * time.Millisecond)
	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.Equal(t, 1, provider.calls)
}
