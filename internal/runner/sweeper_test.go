package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/frc4121/vvpipeline/internal/component"
	"github.com/frc4121/vvpipeline/internal/rlog"
	"github.com/frc4121/vvpipeline/internal/runid"
)

func TestAgedEntriesIgnoresFreshEntries(t *testing.T) {
	t.Parallel()

	cs := newComponentState(testSpec())
	cs.mu.Lock()
	cs.ensureEntry(runid.New(1).Push(0))
	cs.mu.Unlock()

	require.Empty(t, cs.agedEntries(time.Hour, time.Now()))
}

func TestAgedEntriesReportsOldEntries(t *testing.T) {
	t.Parallel()

	cs := newComponentState(testSpec())
	cs.mu.Lock()
	cs.ensureEntry(runid.New(7).Push(0))
	cs.mu.Unlock()

	aged := cs.agedEntries(time.Hour, time.Now().Add(2*time.Hour))
	require.Len(t, aged, 1)
	require.Equal(t, "7.0", aged[0].runID.Key())
}

func TestStartResidueSweeperDisabledAtZeroHorizon(t *testing.T) {
	t.Parallel()

	rn := New([]ComponentSpec{testSpec()}, map[string]component.ID{"check": 0}, nil, rlog.Nop())
	stop := rn.StartResidueSweeper(context.Background(), 0)
	stop() // must return immediately; no goroutine was started
}
