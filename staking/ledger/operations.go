// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/exit"
	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/position"
	"github.com/vechain/stakeledger/staking/reverts"
)

//
// Administration
//

// CreatePool appends a pool. Only admins may call it.
func (c *Core) CreatePool(caller acc.Address, cfg pool.Config) (id uint64, err error) {
	op := Op{Name: "create pool", Account: caller, Admin: true,
		Ctx: []any{"rate", cfg.Rate, "lock", cfg.LockDuration, "cap", cfg.MaxPerAccount, "rewardAsset", cfg.RewardAsset}}

	err = c.Run(op, func(tx *Tx) error {
		id, err = c.svc.Pools.Create(cfg)
		if err != nil {
			return err
		}
		tx.Log("pool", id)
		return nil
	})
	return id, err
}

// SetPoolActive opens or closes a pool to deposits and accrual. Only admins may call it.
func (c *Core) SetPoolActive(caller acc.Address, poolID uint64, active bool) error {
	op := Op{Name: "set pool active", Account: caller, Admin: true, Ctx: []any{"pool", poolID, "active", active}}
	return c.Run(op, func(*Tx) error {
		return c.svc.Pools.SetActive(poolID, active)
	})
}

//
// Shared account operations
//

// Deposit checks and books amount into the position and collects it into the vault.
func (c *Core) Deposit(account acc.Address, poolID, amount, minimum uint64) error {
	op := Op{Name: "deposit", Account: account, Ctx: []any{"pool", poolID, "amount", amount}}
	return c.Run(op, func(tx *Tx) error {
		if _, _, err := c.svc.Positions.CheckDeposit(account, poolID, amount, minimum); err != nil {
			return err
		}
		if err := c.svc.Positions.Deposit(account, poolID, amount, tx.Now); err != nil {
			return err
		}
		tx.Collect(c.opts.StakeAsset, account, amount)
		return nil
	})
}

// ClaimReward settles and pays the accrued reward without touching the principal.
func (c *Core) ClaimReward(account acc.Address, poolID uint64) (paid uint64, err error) {
	op := Op{Name: "claim reward", Account: account, Ctx: []any{"pool", poolID}}
	err = c.Run(op, func(tx *Tx) error {
		p, pos, err := c.load(account, poolID)
		if err != nil {
			return err
		}
		amount, err := c.opts.Reward(pos, p, tx.Now)
		if err != nil {
			return err
		}
		if amount == 0 {
			return errors.Wrapf(reverts.ErrNothingToClaim, "pool %d", poolID)
		}
		if err := c.svc.Positions.Settle(account, poolID, tx.Now); err != nil {
			return err
		}
		if err := c.PayReward(tx, account, p, amount); err != nil {
			return err
		}
		paid = amount
		tx.Log("reward", amount)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return paid, nil
}

// EmergencyWithdraw exits at once, keeping the penalty in the vault and forfeiting reward.
func (c *Core) EmergencyWithdraw(account acc.Address, poolID uint64) (payout uint64, err error) {
	op := Op{Name: "emergency withdraw", Account: account, Ctx: []any{"pool", poolID}}
	err = c.Run(op, func(tx *Tx) error {
		if _, err := c.svc.Pools.Get(poolID); err != nil {
			return err
		}
		cleared, err := c.svc.Positions.Clear(account, poolID)
		if err != nil {
			return err
		}
		penalty := exit.Penalty(cleared.Amount, c.opts.PenaltyRate)
		if err := c.svc.Stats.AddPenalty(penalty); err != nil {
			return err
		}
		payout = cleared.Amount - penalty
		tx.Pay(c.opts.StakeAsset, account, payout)
		tx.Log("principal", cleared.Amount, "penalty", penalty, "payout", payout)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return payout, nil
}

// ClaimDelayedExit pays out a matured exit ticket, whatever the pool status.
func (c *Core) ClaimDelayedExit(account acc.Address, poolID uint64) (amount uint64, err error) {
	op := Op{Name: "claim delayed exit", Account: account, Ctx: []any{"pool", poolID}}
	err = c.Run(op, func(tx *Tx) error {
		if _, err := c.svc.Pools.Get(poolID); err != nil {
			return err
		}
		if _, err := c.svc.Exits.CheckClaim(account, poolID, tx.Now); err != nil {
			return err
		}
		ticket, err := c.svc.Exits.MarkClaimed(account, poolID)
		if err != nil {
			return err
		}
		amount = ticket.Amount
		tx.Pay(c.opts.StakeAsset, account, amount)
		tx.Log("amount", amount)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

//
// Helpers for the variants, called inside Run
//

// load returns the pool and the position, failing for unknown pools.
func (c *Core) load(account acc.Address, poolID uint64) (pool.Pool, position.Position, error) {
	p, err := c.svc.Pools.Get(poolID)
	if err != nil {
		return pool.Pool{}, position.Position{}, err
	}
	return p, c.svc.Positions.Get(account, poolID), nil
}

// Load is load for the variant ledgers; it also rejects empty positions.
func (c *Core) Load(account acc.Address, poolID uint64) (pool.Pool, position.Position, error) {
	p, pos, err := c.load(account, poolID)
	if err != nil {
		return pool.Pool{}, position.Position{}, err
	}
	if pos.IsEmpty() {
		return pool.Pool{}, position.Position{}, errors.Wrapf(reverts.ErrNothingStaked, "pool %d", poolID)
	}
	return p, pos, nil
}

// Accrued evaluates the reward policy.
func (c *Core) Accrued(pos position.Position, p pool.Pool, now uint64) (uint64, error) {
	return c.opts.Reward(pos, p, now)
}

// PayReward books amount as paid and requests the transfer in the pool's reward asset.
func (c *Core) PayReward(tx *Tx, account acc.Address, p pool.Pool, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := c.svc.Stats.AddRewardPaid(account, amount); err != nil {
		return err
	}
	tx.Pay(p.RewardAsset, account, amount)
	return nil
}

// FoldReward books amount as paid and adds it to the principal.
func (c *Core) FoldReward(account acc.Address, p pool.Pool, amount uint64) error {
	if err := c.svc.Stats.AddRewardPaid(account, amount); err != nil {
		return err
	}
	return c.svc.Positions.Increase(account, p.ID, amount)
}
