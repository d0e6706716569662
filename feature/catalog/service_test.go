package catalog

import (
	"context"
	gosync "sync"
	"testing"

	"cardstock/feature/catalog/models"
	"cardstock/feature/catalog/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// blockingCatalog holds runs open until the gate closes so tests can observe
// the in-flight state.
type blockingCatalog struct {
	*memCatalog
	gate chan struct{}
}

func (c *blockingCatalog) StartRun(ctx context.Context, id string) error {
	c.runs.setStatus(id, models.RunRunning)
	select {
	case <-c.gate:
	case <-ctx.Done():
	}
	return nil
}

func (c *blockingCatalog) Games(ctx context.Context, _ []string) ([]models.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}

func setupBlockingService(t *testing.T) (*Service, *memRuns, chan struct{}) {
	t.Helper()
	runs := newMemRuns()
	gate := make(chan struct{})
	cat := &blockingCatalog{memCatalog: &memCatalog{runs: runs}, gate: gate}
	svc := NewService(stubAPI{}, cat, runs, nil, sync.Config{}, zap.NewNop())
	return svc, runs, gate
}

func TestConcurrentTriggersCollapseOntoOneRun(t *testing.T) {
	svc, runs, gate := setupBlockingService(t)

	const callers = 8
	ids := make([]string, callers)
	var wg gosync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			run, _, err := svc.TriggerSync(context.Background(), nil, false)
			require.NoError(t, err)
			ids[i] = run.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id, "every caller must land on the same run")
	}

	close(gate)
	waitTerminal(t, runs, ids[0])
}

func TestCancelOwnedRunSettlesCancelled(t *testing.T) {
	svc, runs, gate := setupBlockingService(t)
	defer close(gate)

	run, created, err := svc.TriggerSync(context.Background(), nil, false)
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, svc.CancelRun(context.Background(), run.ID))

	final := waitTerminal(t, runs, run.ID)
	assert.Equal(t, models.RunCancelled, final.Status)
}

func TestCancelRunNotOwnedByInstance(t *testing.T) {
	svc, runs, _ := setupBlockingService(t)

	// A run left behind by another instance: running in the store but with no
	// cancel handle here.
	orphan, err := runs.CreateRun(context.Background(), "en", nil)
	require.NoError(t, err)
	runs.setStatus(orphan.ID, models.RunRunning)

	err = svc.CancelRun(context.Background(), orphan.ID)
	assert.ErrorIs(t, err, ErrRunNotCancellable)
}
