// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixedterm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/env"
	"github.com/vechain/stakeledger/staking/globalstats"
	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/position"
	"github.com/vechain/stakeledger/staking/reverts"
	"github.com/vechain/stakeledger/test/testledger"
)

const (
	day  = 24 * 3600
	week = 7 * day
)

var (
	cfg   = DefaultConfig()
	stake = cfg.StakeAsset
	vault = cfg.Vault
	gold  = acc.FromLabel("gold")
	alice = acc.FromLabel("alice")
	bob   = acc.FromLabel("bob")
	carol = acc.FromLabel("carol")
)

type fixture struct {
	*testledger.Env
	l *Ledger
}

func newFixture(t *testing.T) *fixture {
	e := testledger.NewEnv()
	l, err := New(cfg, e.Env())
	require.NoError(t, err)

	require.NoError(t, e.Fund(stake, 100_000, alice, bob))
	require.NoError(t, e.Fund(stake, 1_000_000, vault))
	require.NoError(t, e.Fund(gold, 1_000_000, vault))
	return &fixture{Env: e, l: l}
}

func poolConfig(rewardAsset acc.Address) pool.Config {
	return pool.Config{RewardAsset: rewardAsset, Rate: 1000, LockDuration: week, MaxPerAccount: 10_000}
}

func (f *fixture) createPool(t *testing.T, c pool.Config) uint64 {
	id, err := f.l.CreatePool(testledger.Admin, c)
	require.NoError(t, err)
	return id
}

func (f *fixture) check(t *testing.T) {
	require.NoError(t, testledger.CheckInvariants(f.l.Core))
}

func (f *fixture) fingerprint(t *testing.T) string {
	fp, err := testledger.Fingerprint(f.l.Core)
	require.NoError(t, err)
	return fp
}

func (f *fixture) pendingReward(t *testing.T, account acc.Address, poolID uint64) uint64 {
	r, err := f.l.PendingReward(account, poolID)
	require.NoError(t, err)
	return r
}

func TestScenarioRewardCappedAtOnePeriod(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))

	require.NoError(t, f.l.Deposit(alice, id, 1000))
	f.check(t)

	f.Clock.Set(week - 1)
	assert.Zero(t, f.pendingReward(t, alice, id))

	f.Clock.Set(week + 1)
	assert.Equal(t, uint64(100), f.pendingReward(t, alice, id))

	f.Clock.Set(2 * week)
	assert.Equal(t, uint64(100), f.pendingReward(t, alice, id))

	paid, err := f.l.ClaimReward(alice, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), paid)
	assert.Equal(t, uint64(100_000-1000+100), f.Bank.BalanceOf(stake, alice))

	// the latch is suspended until the position is recommitted
	f.Clock.Set(3 * week)
	assert.Zero(t, f.pendingReward(t, alice, id))
	_, err = f.l.ClaimReward(alice, id)
	assert.ErrorIs(t, err, reverts.ErrNothingToClaim)

	require.NoError(t, f.l.Restake(alice, id, false))
	pos, err := f.l.PositionOf(alice, id)
	require.NoError(t, err)
	assert.Equal(t, position.Position{Amount: 1000, Since: 3 * week, LastClaimedAt: 3 * week, Latch: position.LatchActive}, pos)

	f.Clock.Set(4 * week)
	assert.Equal(t, uint64(100), f.pendingReward(t, alice, id))
	assert.Equal(t, uint64(100), f.l.ProtocolStats().RewardsPaid)
	f.check(t)
}

func TestRewardCapProperty(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))
	f.Clock.Set(5)
	require.NoError(t, f.l.Deposit(alice, id, 4321))

	at := func(ts uint64) uint64 {
		r, err := f.l.PendingRewardAt(alice, id, ts)
		require.NoError(t, err)
		return r
	}
	base := at(5 + week)
	assert.Equal(t, uint64(4321*1000/10_000), base)
	for k := uint64(1); k <= 8; k++ {
		assert.Equal(t, base, at(5+week+k*week))
	}
}

func TestScenarioEmergencyWithdraw(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))
	require.NoError(t, f.l.Deposit(alice, id, 1000))
	require.NoError(t, f.l.Deposit(bob, id, 300))

	f.Clock.Set(2 * week)
	payout, err := f.l.EmergencyWithdraw(alice, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(900), payout)
	assert.Equal(t, uint64(100_000-100), f.Bank.BalanceOf(stake, alice))

	stats, err := f.l.PoolStats(id)
	require.NoError(t, err)
	assert.Equal(t, pool.Stats{TotalStaked: 300, ActiveStakers: 1}, stats)

	totals := f.l.ProtocolStats()
	assert.Equal(t, uint64(100), totals.Penalties)
	assert.Zero(t, totals.RewardsPaid)

	pos, err := f.l.PositionOf(alice, id)
	require.NoError(t, err)
	assert.True(t, pos.IsEmpty())

	_, err = f.l.EmergencyWithdraw(alice, id)
	assert.ErrorIs(t, err, reverts.ErrNothingStaked)
	f.check(t)
}

func TestScenarioDelayedExit(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))
	require.NoError(t, f.l.Deposit(alice, id, 1000))
	require.NoError(t, f.l.Deposit(bob, id, 500))

	f.Clock.Set(day)
	availableAt, err := f.l.RequestDelayedExit(alice, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(day+cfg.UnbondingPeriod), availableAt)

	// counters move at request time, not at claim time
	assert.Equal(t, globalstats.Totals{TotalStaked: 500, ActiveStakers: 1, PendingExit: 1000}, f.l.ProtocolStats())
	assert.False(t, f.l.AccountStats(alice).IsActive())
	pos, err := f.l.PositionOf(alice, id)
	require.NoError(t, err)
	assert.True(t, pos.IsEmpty())
	f.check(t)

	f.Clock.Set(availableAt - 1)
	_, err = f.l.ClaimDelayedExit(alice, id)
	assert.ErrorIs(t, err, reverts.ErrNotYetAvailable)

	f.Clock.Set(availableAt)
	amount, err := f.l.ClaimDelayedExit(alice, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), amount)
	assert.Equal(t, uint64(100_000), f.Bank.BalanceOf(stake, alice))

	before := f.fingerprint(t)
	_, err = f.l.ClaimDelayedExit(alice, id)
	assert.ErrorIs(t, err, reverts.ErrAlreadyClaimed)
	assert.Equal(t, before, f.fingerprint(t))
	assert.Equal(t, uint64(100_000), f.Bank.BalanceOf(stake, alice))

	ticket, ok, err := f.l.PendingExitOf(alice, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ticket.Claimed)
	assert.Zero(t, f.l.ProtocolStats().PendingExit)
	f.check(t)
}

func TestDelayedExitRules(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))

	_, err := f.l.RequestDelayedExit(alice, id)
	assert.ErrorIs(t, err, reverts.ErrNothingStaked)
	_, err = f.l.RequestDelayedExit(alice, 9)
	assert.ErrorIs(t, err, reverts.ErrNotFound)

	require.NoError(t, f.l.Deposit(alice, id, 1000))
	_, err = f.l.RequestDelayedExit(alice, id)
	require.NoError(t, err)

	// a fresh position may be opened while the ticket waits, but not exited
	require.NoError(t, f.l.Deposit(alice, id, 200))
	_, err = f.l.RequestDelayedExit(alice, id)
	assert.ErrorIs(t, err, reverts.ErrDuplicateRequest)

	f.Clock.Set(cfg.UnbondingPeriod)
	_, err = f.l.ClaimDelayedExit(alice, id)
	require.NoError(t, err)

	// the second position has matured in the meantime
	f.Clock.Set(cfg.UnbondingPeriod + week)
	_, err = f.l.RequestDelayedExit(alice, id)
	assert.ErrorIs(t, err, reverts.ErrAlreadyUnlocked)

	require.NoError(t, f.l.Deposit(bob, id, 10))
	_, err = f.l.RequestDelayedExit(bob, id)
	require.NoError(t, err)

	history, err := f.l.ExitHistoryOf(alice, id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, uint64(1000), history[0].Amount)
	f.check(t)
}

func TestClaimDelayedExitIgnoresPoolStatus(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))
	require.NoError(t, f.l.Deposit(alice, id, 1000))
	availableAt, err := f.l.RequestDelayedExit(alice, id)
	require.NoError(t, err)

	require.NoError(t, f.l.SetPoolActive(testledger.Admin, id, false))
	f.Clock.Set(availableAt)
	amount, err := f.l.ClaimDelayedExit(alice, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), amount)
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))
	goldPool := f.createPool(t, poolConfig(gold))
	require.NoError(t, f.l.Deposit(alice, id, 1000))
	require.NoError(t, f.l.Deposit(alice, goldPool, 2000))

	f.Clock.Set(week - 1)
	_, _, err := f.l.Withdraw(alice, id)
	assert.ErrorIs(t, err, reverts.ErrStillLocked)

	f.Clock.Set(week)
	principal, paid, err := f.l.Withdraw(alice, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), principal)
	assert.Equal(t, uint64(100), paid)

	principal, paid, err = f.l.Withdraw(alice, goldPool)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), principal)
	assert.Equal(t, uint64(200), paid)

	assert.Equal(t, uint64(100_000+100), f.Bank.BalanceOf(stake, alice))
	assert.Equal(t, uint64(200), f.Bank.BalanceOf(gold, alice))
	assert.Equal(t, globalstats.Account{RewardsClaimed: 300}, f.l.AccountStats(alice))

	_, _, err = f.l.Withdraw(alice, id)
	assert.ErrorIs(t, err, reverts.ErrNothingStaked)
	f.check(t)
}

func TestTopUpKeepsLockStart(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))

	f.Clock.Set(10)
	require.NoError(t, f.l.Deposit(alice, id, 100))
	f.Clock.Set(500)
	require.NoError(t, f.l.Deposit(alice, id, 50))

	pos, err := f.l.PositionOf(alice, id)
	require.NoError(t, err)
	assert.Equal(t, position.Position{Amount: 150, Since: 10, LastClaimedAt: 10, Latch: position.LatchActive}, pos)

	f.Clock.Set(10 + week)
	_, _, err = f.l.Withdraw(alice, id)
	require.NoError(t, err)

	f.Clock.Set(20 + week)
	require.NoError(t, f.l.Deposit(alice, id, 70))
	pos, err = f.l.PositionOf(alice, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(20+week), pos.Since)
}

func TestRestake(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))
	goldPool := f.createPool(t, poolConfig(gold))
	full := f.createPool(t, poolConfig(stake))

	require.NoError(t, f.l.Deposit(alice, id, 1000))
	require.NoError(t, f.l.Deposit(alice, goldPool, 1000))
	require.NoError(t, f.l.Deposit(alice, full, 10_000))

	assert.ErrorIs(t, f.l.Restake(alice, id, true), reverts.ErrStillLocked)
	assert.ErrorIs(t, f.l.Restake(bob, id, true), reverts.ErrNothingStaked)

	f.Clock.Set(week)
	balance := f.Bank.BalanceOf(stake, alice)

	// folded into the principal, nothing transferred
	require.NoError(t, f.l.Restake(alice, id, true))
	pos, err := f.l.PositionOf(alice, id)
	require.NoError(t, err)
	assert.Equal(t, position.Position{Amount: 1100, Since: week, LastClaimedAt: week, Latch: position.LatchActive}, pos)
	assert.Equal(t, balance, f.Bank.BalanceOf(stake, alice))

	// a different reward asset is paid out even when folding is asked for
	require.NoError(t, f.l.Restake(alice, goldPool, true))
	assert.Equal(t, uint64(100), f.Bank.BalanceOf(gold, alice))
	pos, err = f.l.PositionOf(alice, goldPool)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), pos.Amount)

	// folding would breach the cap, restaking without the reward still works
	before := f.fingerprint(t)
	assert.ErrorIs(t, f.l.Restake(alice, full, true), reverts.ErrCapExceeded)
	assert.Equal(t, before, f.fingerprint(t))
	require.NoError(t, f.l.Restake(alice, full, false))
	assert.Equal(t, balance+1000, f.Bank.BalanceOf(stake, alice))

	totals := f.l.ProtocolStats()
	assert.Equal(t, uint64(100+100+1000), totals.RewardsPaid)
	assert.Equal(t, uint64(1100+1000+10_000), totals.TotalStaked)

	require.NoError(t, f.l.SetPoolActive(testledger.Admin, id, false))
	f.Clock.Set(2 * week)
	assert.ErrorIs(t, f.l.Restake(alice, id, false), reverts.ErrPoolInactive)
	f.check(t)
}

func TestInactivePoolAccruesNothing(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))
	require.NoError(t, f.l.Deposit(alice, id, 1000))
	f.Clock.Set(week)

	require.NoError(t, f.l.SetPoolActive(testledger.Admin, id, false))
	assert.Zero(t, f.pendingReward(t, alice, id))
	assert.ErrorIs(t, f.l.Deposit(bob, id, 10), reverts.ErrPoolInactive)

	require.NoError(t, f.l.SetPoolActive(testledger.Admin, id, true))
	assert.Equal(t, uint64(100), f.pendingReward(t, alice, id))
}

func TestRejectionsLeaveStateUntouched(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))
	closed := f.createPool(t, poolConfig(stake))
	require.NoError(t, f.l.SetPoolActive(testledger.Admin, closed, false))
	require.NoError(t, f.l.Deposit(alice, id, 9_000))
	f.Clock.Set(day)

	tests := []struct {
		name string
		op   func() error
		want error
	}{
		{"deposit unknown pool", func() error { return f.l.Deposit(alice, 42, 10) }, reverts.ErrNotFound},
		{"deposit inactive pool", func() error { return f.l.Deposit(alice, closed, 10) }, reverts.ErrPoolInactive},
		{"deposit zero", func() error { return f.l.Deposit(alice, id, 0) }, reverts.ErrBelowMinimum},
		{"deposit over cap", func() error { return f.l.Deposit(alice, id, 1001) }, reverts.ErrCapExceeded},
		{"withdraw locked", func() error { _, _, err := f.l.Withdraw(alice, id); return err }, reverts.ErrStillLocked},
		{"withdraw empty", func() error { _, _, err := f.l.Withdraw(bob, id); return err }, reverts.ErrNothingStaked},
		{"claim before maturity", func() error { _, err := f.l.ClaimReward(alice, id); return err }, reverts.ErrNothingToClaim},
		{"claim unknown pool", func() error { _, err := f.l.ClaimReward(alice, 42); return err }, reverts.ErrNotFound},
		{"restake locked", func() error { return f.l.Restake(alice, id, false) }, reverts.ErrStillLocked},
		{"claim exit without ticket", func() error { _, err := f.l.ClaimDelayedExit(alice, id); return err }, reverts.ErrNothingToClaim},
		{"create pool as non admin", func() error { _, err := f.l.CreatePool(alice, poolConfig(stake)); return err }, reverts.ErrUnauthorized},
		{"create invalid pool", func() error {
			c := poolConfig(stake)
			c.Rate = 10_001
			_, err := f.l.CreatePool(testledger.Admin, c)
			return err
		}, reverts.ErrInvalidConfig},
		{"set unknown pool", func() error { return f.l.SetPoolActive(testledger.Admin, 42, true) }, reverts.ErrNotFound},
		{"set pool as non admin", func() error { return f.l.SetPoolActive(bob, id, false) }, reverts.ErrUnauthorized},
		{"deposit without funds", func() error { return f.l.Deposit(carol, id, 10) }, reverts.ErrTransferFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.fingerprint(t)
			balance := f.Bank.BalanceOf(stake, vault)

			err := tt.op()
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, reverts.IsRevertErr(err))
			assert.Equal(t, before, f.fingerprint(t))
			assert.Equal(t, balance, f.Bank.BalanceOf(stake, vault))
			f.check(t)
		})
	}
}

func TestGateClosed(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))
	require.NoError(t, f.l.Deposit(alice, id, 1000))
	before := f.fingerprint(t)

	f.Gate.Pause()
	assert.ErrorIs(t, f.l.Deposit(alice, id, 1), reverts.ErrNotOperational)
	_, err := f.l.EmergencyWithdraw(alice, id)
	assert.ErrorIs(t, err, reverts.ErrNotOperational)
	_, err = f.l.CreatePool(testledger.Admin, poolConfig(stake))
	assert.ErrorIs(t, err, reverts.ErrNotOperational)
	assert.Equal(t, before, f.fingerprint(t))

	// reads stay available
	_, err = f.l.PositionOf(alice, id)
	assert.NoError(t, err)

	f.Gate.Resume()
	assert.NoError(t, f.l.Deposit(alice, id, 1))
}

func TestTransferFailureRevertsEverything(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, poolConfig(stake))
	require.NoError(t, f.l.Deposit(alice, id, 1000))
	f.Clock.Set(week)

	before := f.fingerprint(t)
	f.Bank.Freeze(alice)
	_, err := f.l.ClaimReward(alice, id)
	assert.ErrorIs(t, err, reverts.ErrTransferFailed)
	assert.ErrorIs(t, err, env.ErrTransferDenied)
	assert.Equal(t, before, f.fingerprint(t))

	var terr interface{ Unwrap() []error }
	assert.True(t, errors.As(err, &terr))

	f.Bank.Unfreeze(alice)
	paid, err := f.l.ClaimReward(alice, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), paid)
}

func TestPartialPayoutIsCompensated(t *testing.T) {
	f := newFixture(t)
	goldPool := f.createPool(t, poolConfig(gold))
	require.NoError(t, f.l.Deposit(alice, goldPool, 1000))
	f.Clock.Set(week)

	aliceStake := f.Bank.BalanceOf(stake, alice)
	vaultStake := f.Bank.BalanceOf(stake, vault)
	before := f.fingerprint(t)

	// the principal leg goes through, the reward leg does not
	f.Bank.OnTransfer(func(asset, _, _ acc.Address, _ uint64) error {
		if asset == gold {
			return env.ErrInsufficientFunds
		}
		return nil
	})
	_, _, err := f.l.Withdraw(alice, goldPool)
	assert.ErrorIs(t, err, reverts.ErrTransferFailed)
	assert.ErrorIs(t, err, env.ErrInsufficientFunds)
	f.Bank.OnTransfer(nil)

	assert.Equal(t, aliceStake, f.Bank.BalanceOf(stake, alice))
	assert.Equal(t, vaultStake, f.Bank.BalanceOf(stake, vault))
	assert.Equal(t, before, f.fingerprint(t))
	f.check(t)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.PenaltyRate = 10_001
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.UnbondingPeriod = 0
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.Vault = acc.Address{}
	_, err := New(c, testledger.NewEnv().Env())
	assert.Error(t, err)

	_, err = New(DefaultConfig(), env.Env{})
	assert.Error(t, err)
}
