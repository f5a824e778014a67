// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/vechain/stakeledger/acc"
)

// RateDenominator is the basis point scale, 10_000 = 100%.
const RateDenominator = 10_000

// Pool is a reward bearing bucket many accounts stake into.
type Pool struct {
	ID            uint64      `json:"id" yaml:"id"`
	RewardAsset   acc.Address `json:"rewardAsset" yaml:"reward_asset"`
	Rate          uint32      `json:"rate" yaml:"rate"`                  // basis points per lock period, or per day
	LockDuration  uint64      `json:"lockDuration" yaml:"lock_duration"` // seconds, zero for open-term pools
	MaxPerAccount uint64      `json:"maxPerAccount" yaml:"max_per_account"`
	Active        bool        `json:"active" yaml:"active"`
	TotalStaked   uint64      `json:"totalStaked" yaml:"total_staked"`
	ActiveStakers uint64      `json:"activeStakers" yaml:"active_stakers"`
}

// Stats is the observable part of a pool's running totals.
type Stats struct {
	TotalStaked   uint64 `json:"totalStaked" yaml:"total_staked"`
	ActiveStakers uint64 `json:"activeStakers" yaml:"active_stakers"`
}

func (p Pool) Stats() Stats {
	return Stats{TotalStaked: p.TotalStaked, ActiveStakers: p.ActiveStakers}
}

// Config is the administrator supplied part of a pool.
type Config struct {
	RewardAsset   acc.Address `yaml:"reward_asset"`
	Rate          uint32      `yaml:"rate"`
	LockDuration  uint64      `yaml:"lock_duration"`
	MaxPerAccount uint64      `yaml:"max_per_account"`
}

// Limits are the variant specific bounds on a pool config.
type Limits struct {
	MaxRate     uint32
	RequireLock bool
}

var (
	// FixedTermLimits allow at most 100% of principal per lock period.
	FixedTermLimits = Limits{MaxRate: RateDenominator, RequireLock: true}
	// OpenTermLimits allow at most 10% of principal per day.
	OpenTermLimits = Limits{MaxRate: RateDenominator / 10, RequireLock: false}
)
