package optimizer

import (
	"testing"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestMaxAppearances(t *testing.T) {
	tests := []struct {
		limit    float64
		lineups  int
		expected int
	}{
		{100, 20, 20},
		{50, 3, 2},
		{33.3, 3, 1},
		{70, 10, 7},
		{10, 1, 1},
		{0, 10, 0},
		{25, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MaxAppearances(tt.limit, tt.lineups), "limit=%v lineups=%d", tt.limit, tt.lineups)
	}
}

func TestExposureLedger_Allows(t *testing.T) {
	settings := testSettings(4)
	settings.MaxPlayerExposure = 50

	ledger := NewExposureLedger()
	p := player("w1", models.PositionWR, 6000, 12)

	assert.True(t, ledger.Allows(p, settings))
	ledger["w1"] = 1
	assert.True(t, ledger.Allows(p, settings))
	ledger["w1"] = 2
	assert.False(t, ledger.Allows(p, settings))

	p.ExposureLimit = pct(100)
	assert.True(t, ledger.Allows(p, settings), "player limit overrides the global default")

	p.ExposureLimit = pct(0)
	assert.False(t, NewExposureLedger().Allows(p, settings))
}

func TestExposureLedger_Record(t *testing.T) {
	ledger := NewExposureLedger()
	lineup := models.Lineup{
		QB: player("q1", models.PositionQB, 1, 1), RB1: player("r1", models.PositionRB, 1, 1),
		RB2: player("r2", models.PositionRB, 1, 1), WR1: player("w1", models.PositionWR, 1, 1),
		WR2: player("w2", models.PositionWR, 1, 1), WR3: player("w3", models.PositionWR, 1, 1),
		TE: player("t1", models.PositionTE, 1, 1), Flex: player("r3", models.PositionRB, 1, 1),
		DEF: player("d1", models.PositionDEF, 1, 1),
	}

	ledger.Record(lineup)
	ledger.Record(lineup)

	assert.Len(t, ledger, 9)
	assert.Equal(t, 2, ledger.Count("q1"))
	assert.Equal(t, 0, ledger.Count("q2"))
}
