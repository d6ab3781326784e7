package optimizer

import (
	"testing"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(settings models.Settings) *Builder {
	return NewBuilder(settings, NewScorer(seeded(1)), testLogger())
}

func TestBuilder_GreedyFillAtZeroRandomness(t *testing.T) {
	settings := testSettings(1)
	settings.Randomness = 0

	lineup, ok := newTestBuilder(settings).Build(slatePool(), nil, NewExposureLedger())
	require.True(t, ok)
	assertValidLineup(t, lineup)

	assert.Equal(t, "q1", lineup.QB.ID)
	assert.Equal(t, "r1", lineup.RB1.ID)
	assert.Equal(t, "r2", lineup.RB2.ID)
	assert.Equal(t, "w1", lineup.WR1.ID)
	assert.Equal(t, "w2", lineup.WR2.ID)
	assert.Equal(t, "w3", lineup.WR3.ID)
	assert.Equal(t, "t1", lineup.TE.ID)
	assert.Equal(t, "d1", lineup.DEF.ID)
	assert.Equal(t, "r3", lineup.Flex.ID)
	assert.Equal(t, 51400, lineup.TotalSalary)
	assert.InDelta(t, 130.0, lineup.TotalProjection, 1e-9)
	assert.NotEmpty(t, lineup.ID)
}

func TestBuilder_TiesGoToEarliestPlayer(t *testing.T) {
	settings := testSettings(1)
	settings.Randomness = 0

	pool := slatePool()
	pool = append([]models.Player{player("q0", models.PositionQB, 7000, 22)}, pool...)

	lineup, ok := newTestBuilder(settings).Build(pool, nil, NewExposureLedger())
	require.True(t, ok)
	assert.Equal(t, "q0", lineup.QB.ID)
}

func TestBuilder_RespectsRemainingSalary(t *testing.T) {
	settings := testSettings(1)
	settings.Randomness = 0

	pool := slatePool()
	// Best flex option by score, but only 8600 is left when flex is filled.
	pool = append(pool, player("r9", models.PositionRB, 9000, 13))

	lineup, ok := newTestBuilder(settings).Build(pool, nil, NewExposureLedger())
	require.True(t, ok)
	assertValidLineup(t, lineup)
	assert.Equal(t, "r3", lineup.Flex.ID)
	assert.False(t, lineup.Contains("r9"))
}

func TestBuilder_NoCandidateFails(t *testing.T) {
	settings := testSettings(1)
	pool := []models.Player{}
	for _, p := range slatePool() {
		if p.Position != models.PositionTE {
			pool = append(pool, p)
		}
	}

	_, failure := newTestBuilder(settings).attempt(pool, nil, NewExposureLedger())
	assert.Equal(t, FailureNoCandidate, failure)
}

func TestBuilder_ExcludedInjuredAndFreePlayersAreSkipped(t *testing.T) {
	settings := testSettings(1)
	settings.Randomness = 0

	pool := slatePool()
	for i := range pool {
		switch pool[i].ID {
		case "q1":
			pool[i].IsExcluded = true
		case "r1":
			pool[i].InjuryIndicator = models.InjuryOut
		case "w1":
			pool[i].Salary = 0
		case "w2":
			pool[i].InjuryIndicator = "Q"
		}
	}

	lineup, ok := newTestBuilder(settings).Build(pool, nil, NewExposureLedger())
	require.True(t, ok)
	assertValidLineup(t, lineup)
	assert.False(t, lineup.Contains("q1"))
	assert.False(t, lineup.Contains("r1"))
	assert.False(t, lineup.Contains("w1"))
	assert.True(t, lineup.Contains("w2"), "questionable players stay eligible")
}

func TestBuilder_LocksFollowSlotChains(t *testing.T) {
	settings := testSettings(1)
	settings.Randomness = 0

	pool := slatePool()
	for i := range pool {
		switch pool[i].ID {
		case "r3", "r4", "w5":
			pool[i].IsLocked = true
		}
	}

	lineup, ok := newTestBuilder(settings).Build(pool, nil, NewExposureLedger())
	require.True(t, ok)
	assertValidLineup(t, lineup)
	assert.Equal(t, "r3", lineup.RB1.ID)
	assert.Equal(t, "r4", lineup.RB2.ID)
	assert.Equal(t, "w5", lineup.WR1.ID)
	assert.Equal(t, "r1", lineup.Flex.ID)
}

func TestBuilder_LockedPlayersIgnoreExposure(t *testing.T) {
	settings := testSettings(2)
	settings.Randomness = 0

	pool := slatePool()
	pool[12].IsLocked = true // t1
	pool[12].ExposureLimit = pct(0)

	ledger := NewExposureLedger()
	ledger["t1"] = 5

	lineup, ok := newTestBuilder(settings).Build(pool, nil, ledger)
	require.True(t, ok)
	assert.Equal(t, "t1", lineup.TE.ID)
}

func TestBuilder_ExcessLocksStillSpendSalary(t *testing.T) {
	settings := testSettings(1)
	settings.Randomness = 0

	pool := slatePool()
	pool[1].IsLocked = true // q2
	pool[2].IsLocked = true // q3

	partial := newPartialLineup()
	conflicts := assignLocks(partial, eligiblePlayers(pool))
	require.Len(t, conflicts, 1)
	assert.Equal(t, "q3", conflicts[0].PlayerID)
	assert.Equal(t, 6800+6000, partial.salary)
	assert.True(t, partial.used["q3"])
	assert.False(t, partial.isFilled(models.SlotFlex))

	// q3's salary leaves 3300 for flex once the other slots are filled.
	_, failure := newTestBuilder(settings).attempt(pool, nil, NewExposureLedger())
	assert.Equal(t, FailureNoCandidate, failure)

	pool[5].Salary = 3000 // r3
	lineup, ok := newTestBuilder(settings).Build(pool, nil, NewExposureLedger())
	require.True(t, ok)
	assertValidLineup(t, lineup)
	assert.Equal(t, "q2", lineup.QB.ID)
	assert.Equal(t, "r3", lineup.Flex.ID)
	assert.False(t, lineup.Contains("q3"))
	assert.Equal(t, 53700, lineup.TotalSalary)
}

func TestBuilder_LocksOverCapFail(t *testing.T) {
	settings := testSettings(1)
	pool := []models.Player{
		player("q", models.PositionQB, 7000, 20),
		player("r1", models.PositionRB, 7000, 15),
		player("r2", models.PositionRB, 7000, 15),
		player("w1", models.PositionWR, 7000, 15),
		player("w2", models.PositionWR, 7000, 15),
		player("w3", models.PositionWR, 7000, 15),
		player("t", models.PositionTE, 7000, 10),
		player("f", models.PositionWR, 7000, 10),
		player("d", models.PositionDEF, 7000, 8),
	}
	for i := range pool {
		pool[i].IsLocked = true
	}

	_, failure := newTestBuilder(settings).attempt(pool, nil, NewExposureLedger())
	assert.Equal(t, FailureOverCap, failure)
}

func TestBuilder_MinSalaryFloor(t *testing.T) {
	settings := testSettings(1)
	settings.Randomness = 0
	settings.MinSalaryUsed = 59000

	_, ok := newTestBuilder(settings).Build(slatePool(), nil, NewExposureLedger())
	assert.True(t, ok, "floor is not enforced by default")

	settings.EnforceMinSalary = true
	_, failure := newTestBuilder(settings).attempt(slatePool(), nil, NewExposureLedger())
	assert.Equal(t, FailureUnderMinSalary, failure)
}

func TestBuilder_UniquenessAgainstAccepted(t *testing.T) {
	settings := testSettings(3)
	settings.Randomness = 0
	settings.MinUniquePlayers = 1

	builder := newTestBuilder(settings)
	first, ok := builder.Build(slatePool(), nil, NewExposureLedger())
	require.True(t, ok)

	_, failure := builder.attempt(slatePool(), []models.Lineup{first}, NewExposureLedger())
	assert.Equal(t, FailureNotUnique, failure)
}
