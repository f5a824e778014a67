// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/position"
)

const week = 7 * Day

func fixedPool() pool.Pool {
	return pool.Pool{Rate: 1000, LockDuration: week, MaxPerAccount: 10_000, Active: true}
}

func TestFixedTermScenario(t *testing.T) {
	pos := position.Position{Amount: 1000, Latch: position.LatchActive}
	p := fixedPool()

	tests := []struct {
		name string
		now  uint64
		want uint64
	}{
		{"at deposit", 0, 0},
		{"one second before maturity", week - 1, 0},
		{"at maturity", week, 100},
		{"just after maturity", week + 1, 100},
		{"two periods", 2 * week, 100},
		{"many periods", 50 * week, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FixedTerm(pos, p, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFixedTermCapHolds(t *testing.T) {
	p := fixedPool()
	pos := position.Position{Amount: 777, Since: 31, LastClaimedAt: 31, Latch: position.LatchActive}

	base, err := FixedTerm(pos, p, pos.Since+p.LockDuration)
	require.NoError(t, err)
	for k := uint64(1); k <= 10; k++ {
		got, err := FixedTerm(pos, p, pos.Since+p.LockDuration+k*p.LockDuration)
		require.NoError(t, err)
		assert.Equal(t, base, got, "k=%d", k)
	}
}

func TestFixedTermZeroCases(t *testing.T) {
	p := fixedPool()
	armed := position.Position{Amount: 1000, Latch: position.LatchActive}

	suspended := armed
	suspended.Latch = position.LatchSuspended
	got, err := FixedTerm(suspended, p, 3*week)
	require.NoError(t, err)
	assert.Zero(t, got)

	inactive := p
	inactive.Active = false
	got, err = FixedTerm(armed, inactive, 3*week)
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = FixedTerm(position.Position{}, p, 3*week)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestFixedTermPartialWindow(t *testing.T) {
	// claimed half way into the lock, window restarts from the claim
	pos := position.Position{Amount: 1000, Since: 0, LastClaimedAt: week / 2, Latch: position.LatchActive}
	got, err := FixedTerm(pos, fixedPool(), week)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), got)
}

func TestOpenTermScenario(t *testing.T) {
	p := pool.Pool{Rate: 100, MaxPerAccount: 10_000, Active: true}
	pos := position.Position{Amount: 1000}

	got, err := OpenTerm(pos, p, 23*3600)
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = OpenTerm(pos, p, Day+1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), got)

	pos.LastClaimedAt = Day + 1
	got, err = OpenTerm(pos, p, 2*Day+2)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), got)

	got, err = OpenTerm(pos, p, 3*Day+1)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), got)

	p.Active = false
	got, err = OpenTerm(pos, p, 30*Day)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestFloorDivision(t *testing.T) {
	p := pool.Pool{Rate: 1, Active: true}
	got, err := OpenTerm(position.Position{Amount: 9_999}, p, Day)
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = OpenTerm(position.Position{Amount: 19_999}, p, Day)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got)
}

func TestOverflow(t *testing.T) {
	p := pool.Pool{Rate: 1000, Active: true}
	pos := position.Position{Amount: math.MaxUint64}

	// ten days at 10% a day is exactly the principal
	got, err := OpenTerm(pos, p, 10*Day)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got)

	_, err = OpenTerm(pos, p, 11*Day)
	assert.ErrorContains(t, err, "reward overflow")
}

func TestPolicyTypes(t *testing.T) {
	policies := []Policy{FixedTerm, OpenTerm}
	for _, policy := range policies {
		got, err := policy(position.Position{}, pool.Pool{Active: true}, 10)
		require.NoError(t, err)
		assert.Zero(t, got)
	}
}
