// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/env"
	"github.com/vechain/stakeledger/staking/fixedterm"
	"github.com/vechain/stakeledger/staking/globalstats"
	"github.com/vechain/stakeledger/staking/openterm"
	"github.com/vechain/stakeledger/staking/reverts"
	"github.com/vechain/stakeledger/staking/store"
	"github.com/vechain/stakeledger/test/testledger"
)

var (
	stake = acc.FromLabel("stake")
	gold  = acc.FromLabel("gold")
	alice = acc.FromLabel("alice")
	bob   = acc.FromLabel("bob")
)

func run(t *testing.T, path string) *Runner {
	sc, err := LoadFile(path)
	require.NoError(t, err)
	r, err := NewRunner(sc)
	require.NoError(t, err)

	var seen int
	results, err := r.Run(func(Result) { seen++ })
	require.NoError(t, err)
	assert.Len(t, results, len(sc.Steps))
	assert.Equal(t, len(sc.Steps), seen)
	require.NoError(t, testledger.CheckInvariants(r.Ledger.Core))
	return r
}

func TestFixedTermScenario(t *testing.T) {
	r := run(t, "testdata/fixed-term.yaml")

	assert.Equal(t, fixedterm.Variant, r.Ledger.Variant())
	assert.Equal(t, uint64(10_000+100-10), r.Bank.BalanceOf(stake, alice))
	assert.Equal(t, uint64(10_000), r.Bank.BalanceOf(stake, bob))
	assert.Equal(t, globalstats.Totals{RewardsPaid: 100, Penalties: 10}, r.Ledger.ProtocolStats())
	assert.Equal(t, uint64(907_200+3600), r.Clock.Now())
}

func TestOpenTermScenario(t *testing.T) {
	r := run(t, "testdata/open-term.yaml")

	assert.Equal(t, openterm.Variant, r.Ledger.Variant())
	assert.Equal(t, uint64(10_000-1000+10), r.Bank.BalanceOf(stake, alice))
	assert.Equal(t, uint64(20), r.Bank.BalanceOf(gold, bob))
	assert.Equal(t, uint64(10_000), r.Bank.BalanceOf(stake, bob))
	assert.Equal(t, globalstats.Totals{TotalStaked: 1020, ActiveStakers: 1, RewardsPaid: 50}, r.Ledger.ProtocolStats())
}

func TestRunStopsAtMismatch(t *testing.T) {
	sc, err := Parse([]byte(`
variant: open-term
funds:
  - {asset: stake, account: alice, amount: 100}
pools:
  - {rate: 100, max_per_account: 1000}
steps:
  - {op: deposit, account: alice, pool: 0, amount: 100}
  - {op: deposit, account: alice, pool: 0, amount: 100, expect: cap_exceeded}
  - {op: claim_reward, account: alice, pool: 0}
`))
	require.NoError(t, err)
	r, err := NewRunner(sc)
	require.NoError(t, err)

	results, err := r.Run(nil)
	assert.ErrorContains(t, err, "step 1 (deposit)")
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[1].Err, reverts.ErrTransferFailed)
	assert.NoError(t, results[0].Err)
}

func TestCheck(t *testing.T) {
	want := uint64(5)
	tests := []struct {
		name string
		step Step
		res  Result
		ok   bool
	}{
		{"ok", Step{}, Result{}, true},
		{"unexpected failure", Step{}, Result{Err: reverts.ErrNotFound}, false},
		{"expected revert", Step{Expect: "not_found"}, Result{Err: reverts.ErrNotFound}, true},
		{"other revert", Step{Expect: "not_found"}, Result{Err: reverts.ErrStillLocked}, false},
		{"missing revert", Step{Expect: "not_found"}, Result{}, false},
		{"amount", Step{Want: &want}, Result{Amount: 5}, true},
		{"wrong amount", Step{Want: &want}, Result{Amount: 4}, false},
		{"wrong reward", Step{WantReward: &want}, Result{Amount: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := check(tt.step, tt.res)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown variant", "variant: perpetual\n"},
		{"unknown field", "variant: open-term\nspeed: 3\n"},
		{"unknown op", "variant: open-term\nsteps:\n  - {op: mint}\n"},
		{"unknown expectation", "variant: open-term\nsteps:\n  - {op: deposit, expect: sad}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLedgerConfig(t *testing.T) {
	period := uint64(60)
	minimum := uint64(3)
	sc := &Scenario{Variant: openterm.Variant, Ledger: Params{Vault: "treasury", Period: &period}}

	config, err := sc.LedgerConfig()
	require.NoError(t, err)
	l, err := Open(sc.Variant, config, store.New(), testledger.NewEnv().Env())
	require.NoError(t, err)
	assert.Equal(t, acc.FromLabel("treasury"), l.Options().Vault)

	back, err := l.Config()
	require.NoError(t, err)
	assert.Contains(t, string(back), "cooldown_period: 60")

	sc.Ledger.MinDeposit = &minimum
	_, err = sc.LedgerConfig()
	assert.Error(t, err)

	sc.Variant = fixedterm.Variant
	config, err = sc.LedgerConfig()
	require.NoError(t, err)
	l, err = Open(sc.Variant, config, store.New(), testledger.NewEnv().Env())
	require.NoError(t, err)
	back, err = l.Config()
	require.NoError(t, err)
	assert.Contains(t, string(back), "unbonding_period: 60")
	assert.Contains(t, string(back), "min_deposit: 3")
}

func TestVariantOnlyOperations(t *testing.T) {
	e := testledger.NewEnv()
	l, err := Open(openterm.Variant, nil, store.New(), e.Env())
	require.NoError(t, err)
	assert.Error(t, l.Restake(alice, 0, true))

	l, err = Open(fixedterm.Variant, nil, store.New(), env.Env{})
	assert.Error(t, err)
	assert.Nil(t, l)

	_, err = Open("perpetual", nil, store.New(), e.Env())
	assert.Error(t, err)
}
