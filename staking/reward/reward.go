// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward computes accrued reward. Every function here is pure: it reads
// copies of a position and its pool and never touches state.
package reward

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/position"
)

// Day is the open-term accrual step in seconds.
const Day = 86400

var errOverflow = errors.New("reward overflow")

// Policy evaluates the accrued reward of a position at now.
type Policy func(pos position.Position, p pool.Pool, now uint64) (uint64, error)

// FixedTerm accrues one lock period's worth at most, and only once the lock has
// elapsed on an armed position.
//
//	reward = amount * rate * min(now - lastClaimedAt, lockDuration) / (lockDuration * 10000)
func FixedTerm(pos position.Position, p pool.Pool, now uint64) (uint64, error) {
	if pos.IsEmpty() || !pos.RewardsActive() || !p.Active || p.LockDuration == 0 {
		return 0, nil
	}
	if pos.Elapsed(now) < p.LockDuration || now <= pos.LastClaimedAt {
		return 0, nil
	}
	window := min(now-pos.LastClaimedAt, p.LockDuration)

	denom := new(uint256.Int).Mul(uint256.NewInt(p.LockDuration), uint256.NewInt(pool.RateDenominator))
	return mulDiv(pos.Amount, uint64(p.Rate), window, denom)
}

// OpenTerm accrues per whole elapsed day since the last settlement.
//
//	reward = amount * rate * floor((now - lastClaimedAt) / 86400) / 10000
func OpenTerm(pos position.Position, p pool.Pool, now uint64) (uint64, error) {
	if pos.IsEmpty() || !p.Active || now <= pos.LastClaimedAt {
		return 0, nil
	}
	days := (now - pos.LastClaimedAt) / Day
	if days == 0 {
		return 0, nil
	}
	return mulDiv(pos.Amount, uint64(p.Rate), days, uint256.NewInt(pool.RateDenominator))
}

// mulDiv returns floor(a*b*c/d) computed in 256 bits.
func mulDiv(a, b, c uint64, d *uint256.Int) (uint64, error) {
	// a*b*c is at most 192 bits wide, so the product itself cannot overflow.
	prod := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	prod.Mul(prod, uint256.NewInt(c))
	if d.IsZero() {
		return 0, errors.New("reward division by zero")
	}
	q := prod.Div(prod, d)
	if !q.IsUint64() {
		return 0, errOverflow
	}
	return q.Uint64(), nil
}
