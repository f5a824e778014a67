// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/globalstats"
	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/reverts"
	"github.com/vechain/stakeledger/staking/store"
)

var (
	alice = acc.FromLabel("alice")
	bob   = acc.FromLabel("bob")
)

type fixture struct {
	pools     *pool.Service
	stats     *globalstats.Service
	positions *Service
}

func newFixture(t *testing.T, latched bool) *fixture {
	st := store.New()
	limits := pool.OpenTermLimits
	if latched {
		limits = pool.FixedTermLimits
	}
	pools := pool.New(st, limits)
	stats := globalstats.New(st)
	for i := 0; i < 2; i++ {
		_, err := pools.Create(pool.Config{
			RewardAsset:   acc.FromLabel("reward"),
			Rate:          500,
			LockDuration:  100,
			MaxPerAccount: 1000,
		})
		require.NoError(t, err)
	}
	return &fixture{pools: pools, stats: stats, positions: New(st, pools, stats, latched)}
}

func TestCheckDeposit(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.positions.Deposit(alice, 0, 600, 10))
	require.NoError(t, f.pools.SetActive(1, false))

	tests := []struct {
		name    string
		pool    uint64
		amount  uint64
		minimum uint64
		err     error
	}{
		{"ok", 0, 400, 0, nil},
		{"unknown pool", 7, 10, 0, reverts.ErrNotFound},
		{"inactive pool", 1, 10, 0, reverts.ErrPoolInactive},
		{"zero amount", 0, 0, 0, reverts.ErrBelowMinimum},
		{"below minimum", 0, 9, 10, reverts.ErrBelowMinimum},
		{"over cap", 0, 401, 0, reverts.ErrCapExceeded},
		{"huge amount", 0, ^uint64(0), 0, reverts.ErrCapExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, pos, err := f.positions.CheckDeposit(alice, tt.pool, tt.amount, tt.minimum)
			if tt.err == nil {
				require.NoError(t, err)
				assert.Equal(t, uint64(600), pos.Amount)
				return
			}
			assert.ErrorIs(t, err, tt.err)
			assert.True(t, reverts.IsRevertErr(err))
		})
	}
}

func TestDepositAndTopUp(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.positions.Deposit(alice, 0, 100, 50))
	pos := f.positions.Get(alice, 0)
	assert.Equal(t, Position{Amount: 100, Since: 50, LastClaimedAt: 50, Latch: LatchActive}, pos)

	require.NoError(t, f.positions.Settle(alice, 0, 80))
	require.NoError(t, f.positions.Deposit(alice, 0, 25, 90))
	pos = f.positions.Get(alice, 0)
	assert.Equal(t, Position{Amount: 125, Since: 50, LastClaimedAt: 80, Latch: LatchSuspended}, pos)

	p, _ := f.pools.Get(0)
	assert.Equal(t, pool.Stats{TotalStaked: 125, ActiveStakers: 1}, p.Stats())
	assert.Equal(t, globalstats.Totals{TotalStaked: 125, ActiveStakers: 1}, f.stats.Totals())
}

func TestOpenTermHasNoLatch(t *testing.T) {
	f := newFixture(t, false)
	require.NoError(t, f.positions.Deposit(alice, 0, 100, 5))
	require.NoError(t, f.positions.Settle(alice, 0, 9))

	pos := f.positions.Get(alice, 0)
	assert.Equal(t, LatchNone, pos.Latch)
	assert.Equal(t, uint64(9), pos.LastClaimedAt)
}

func TestActiveStakersCountDistinctAccounts(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.positions.Deposit(alice, 0, 100, 1))
	require.NoError(t, f.positions.Deposit(alice, 1, 100, 1))
	require.NoError(t, f.positions.Deposit(bob, 1, 50, 1))
	assert.Equal(t, uint64(2), f.stats.Totals().ActiveStakers)
	assert.Equal(t, uint64(250), f.stats.Totals().TotalStaked)

	cleared, err := f.positions.Clear(alice, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), cleared.Amount)
	assert.Equal(t, uint64(2), f.stats.Totals().ActiveStakers)

	_, err = f.positions.Clear(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), f.stats.Totals().ActiveStakers)
	assert.Equal(t, uint64(50), f.stats.Totals().TotalStaked)
	assert.False(t, f.stats.Account(alice).IsActive())

	p, _ := f.pools.Get(1)
	assert.Equal(t, pool.Stats{TotalStaked: 50, ActiveStakers: 1}, p.Stats())

	assert.True(t, f.positions.Get(alice, 1).IsEmpty())
	assert.Equal(t, Position{}, f.positions.Get(alice, 1))

	_, err = f.positions.Clear(alice, 1)
	assert.ErrorIs(t, err, reverts.ErrNothingStaked)
}

func TestRestartAndIncrease(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.positions.Deposit(alice, 0, 100, 1))
	require.NoError(t, f.positions.Settle(alice, 0, 150))

	require.NoError(t, f.positions.Increase(alice, 0, 20))
	require.NoError(t, f.positions.Restart(alice, 0, 200))
	assert.Equal(t, Position{Amount: 120, Since: 200, LastClaimedAt: 200, Latch: LatchActive}, f.positions.Get(alice, 0))
	assert.Equal(t, uint64(120), f.stats.Account(alice).Staked)

	assert.ErrorIs(t, f.positions.Increase(bob, 0, 1), reverts.ErrNothingStaked)
	assert.ErrorIs(t, f.positions.Restart(bob, 0, 1), reverts.ErrNothingStaked)
	assert.ErrorIs(t, f.positions.Settle(bob, 0, 1), reverts.ErrNothingStaked)
}

func TestElapsed(t *testing.T) {
	pos := Position{Amount: 1, Since: 100}
	assert.Equal(t, uint64(0), pos.Elapsed(50))
	assert.Equal(t, uint64(0), pos.Elapsed(100))
	assert.Equal(t, uint64(25), pos.Elapsed(125))
	assert.Equal(t, uint64(0), Position{Since: 1}.Elapsed(10))
	assert.Equal(t, "suspended", LatchSuspended.String())
}
