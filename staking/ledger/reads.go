// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/exit"
	"github.com/vechain/stakeledger/staking/globalstats"
	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/position"
)

//
// Getters - no state change
//

// PendingReward returns the reward accrued at the current clock reading.
func (c *Core) PendingReward(account acc.Address, poolID uint64) (uint64, error) {
	return c.PendingRewardAt(account, poolID, c.env.Clock.Now())
}

// PendingRewardAt returns the reward the position would have accrued at ts.
func (c *Core) PendingRewardAt(account acc.Address, poolID, ts uint64) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, pos, err := c.load(account, poolID)
	if err != nil {
		return 0, err
	}
	return c.opts.Reward(pos, p, ts)
}

// PositionOf returns the position, the zero value if the account never staked.
func (c *Core) PositionOf(account acc.Address, poolID uint64) (position.Position, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, pos, err := c.load(account, poolID)
	return pos, err
}

// PendingExitOf returns the latest exit ticket, claimed or not.
func (c *Core) PendingExitOf(account acc.Address, poolID uint64) (exit.PendingExit, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.svc.Pools.Get(poolID); err != nil {
		return exit.PendingExit{}, false, err
	}
	t, ok := c.svc.Exits.Latest(account, poolID)
	return t, ok, nil
}

// ExitHistoryOf returns every exit ticket, oldest first.
func (c *Core) ExitHistoryOf(account acc.Address, poolID uint64) ([]exit.PendingExit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.svc.Pools.Get(poolID); err != nil {
		return nil, err
	}
	return c.svc.Exits.History(account, poolID), nil
}

func (c *Core) Pool(poolID uint64) (pool.Pool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.svc.Pools.Get(poolID)
}

// Pools returns every pool in id order, inactive ones included.
func (c *Core) Pools() []pool.Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.svc.Pools.All()
}

func (c *Core) PoolStats(poolID uint64) (pool.Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, err := c.svc.Pools.Get(poolID)
	if err != nil {
		return pool.Stats{}, err
	}
	return p.Stats(), nil
}

func (c *Core) ProtocolStats() globalstats.Totals {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.svc.Stats.Totals()
}

func (c *Core) AccountStats(account acc.Address) globalstats.Account {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.svc.Stats.Account(account)
}

// Seq returns the sequence number of the last committed operation.
func (c *Core) Seq() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.seq.Get()
}
