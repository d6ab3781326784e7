package optimizer

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func player(id string, pos models.Position, salary int, projection float64) models.Player {
	return models.Player{
		ID:         id,
		Position:   pos,
		Salary:     salary,
		FPPG:       projection,
		Projection: projection,
		Team:       "T" + id,
		Opponent:   "O" + id,
	}
}

func pct(v float64) *float64 { return &v }

// slatePool is a small slate where the most expensive player at every slot still fits under the cap.
func slatePool() []models.Player {
	return []models.Player{
		player("q1", models.PositionQB, 7500, 22),
		player("q2", models.PositionQB, 6800, 18),
		player("q3", models.PositionQB, 6000, 15),
		player("r1", models.PositionRB, 7800, 18),
		player("r2", models.PositionRB, 6500, 15),
		player("r3", models.PositionRB, 5500, 12),
		player("r4", models.PositionRB, 4800, 9),
		player("w1", models.PositionWR, 7600, 17),
		player("w2", models.PositionWR, 6400, 14),
		player("w3", models.PositionWR, 5600, 12),
		player("w4", models.PositionWR, 5000, 10),
		player("w5", models.PositionWR, 4500, 8),
		player("t1", models.PositionTE, 5800, 11),
		player("t2", models.PositionTE, 4600, 8),
		player("d1", models.PositionDEF, 4200, 9),
		player("d2", models.PositionDEF, 3800, 7),
	}
}

func testSettings(n int) models.Settings {
	s := models.DefaultSettings()
	s.NumberOfLineups = n
	return s
}

func testLogger() *logrus.Entry {
	log, _ := test.NewNullLogger()
	return logrus.NewEntry(log)
}

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func newTestGenerator(seed int64) *Generator {
	return NewGenerator(WithRand(seeded(seed)), WithLogger(testLogger()))
}

// assertValidLineup checks roster shape, distinct players and the salary cap.
func assertValidLineup(t *testing.T, l models.Lineup) {
	t.Helper()

	assert.Equal(t, models.PositionQB, l.QB.Position)
	assert.Equal(t, models.PositionRB, l.RB1.Position)
	assert.Equal(t, models.PositionRB, l.RB2.Position)
	assert.Equal(t, models.PositionWR, l.WR1.Position)
	assert.Equal(t, models.PositionWR, l.WR2.Position)
	assert.Equal(t, models.PositionWR, l.WR3.Position)
	assert.Equal(t, models.PositionTE, l.TE.Position)
	assert.Equal(t, models.PositionDEF, l.DEF.Position)
	assert.Contains(t, []models.Position{models.PositionRB, models.PositionWR, models.PositionTE}, l.Flex.Position)

	seen := make(map[string]bool)
	salary := 0
	projection := 0.0
	for _, p := range l.Players() {
		require.NotEmpty(t, p.ID)
		assert.False(t, seen[p.ID], "player %s rostered twice", p.ID)
		seen[p.ID] = true
		salary += p.Salary
		projection += p.EffectiveProjection()
	}
	assert.Len(t, seen, models.LineupSize)
	assert.Equal(t, salary, l.TotalSalary)
	assert.LessOrEqual(t, l.TotalSalary, models.SalaryCap)
	assert.InDelta(t, projection, l.TotalProjection, 1e-9)
}
