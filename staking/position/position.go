// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"github.com/vechain/stakeledger/acc"
)

// Latch is the reward eligibility state of a position.
//
// Open-term positions never latch. Fixed-term positions are armed on a fresh
// deposit or a restake and suspended by a reward claim; a suspended position
// accrues nothing until it is re-armed.
type Latch uint8

const (
	LatchNone Latch = iota
	LatchActive
	LatchSuspended
)

func (l Latch) String() string {
	switch l {
	case LatchActive:
		return "active"
	case LatchSuspended:
		return "suspended"
	default:
		return "none"
	}
}

// Key addresses one account's position in one pool.
type Key struct {
	Account acc.Address
	Pool    uint64
}

// Position is one account's stake in one pool.
type Position struct {
	Amount        uint64 `json:"amount" yaml:"amount"`
	Since         uint64 `json:"since" yaml:"since"`
	LastClaimedAt uint64 `json:"lastClaimedAt" yaml:"last_claimed_at"`
	Latch         Latch  `json:"latch" yaml:"latch"`
}

// IsEmpty returns whether the position is logically absent.
func (p Position) IsEmpty() bool {
	return p.Amount == 0
}

// RewardsActive reports the fixed-term eligibility latch.
func (p Position) RewardsActive() bool {
	return p.Latch == LatchActive
}

// Elapsed returns the seconds since the principal was committed.
func (p Position) Elapsed(now uint64) uint64 {
	if p.IsEmpty() || now <= p.Since {
		return 0
	}
	return now - p.Since
}
