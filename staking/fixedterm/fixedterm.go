// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fixedterm is the lockup ledger. Principal is committed for the pool's
// lock duration and earns at most one period's reward until claimed or restaked.
package fixedterm

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/env"
	"github.com/vechain/stakeledger/staking/ledger"
	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/position"
	"github.com/vechain/stakeledger/staking/reverts"
	"github.com/vechain/stakeledger/staking/reward"
	"github.com/vechain/stakeledger/staking/store"
)

const Variant = "fixed-term"

type Ledger struct {
	*ledger.Core
	cfg Config
}

// New creates an empty ledger.
func New(cfg Config, e env.Env) (*Ledger, error) {
	return Open(store.New(), cfg, e)
}

// Open runs a ledger over an existing state, typically a loaded snapshot.
func Open(st *store.State, cfg Config, e env.Env) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	core, err := ledger.New(st, ledger.Options{
		Variant:     Variant,
		StakeAsset:  cfg.StakeAsset,
		Vault:       cfg.Vault,
		PenaltyRate: cfg.PenaltyRate,
		Limits:      pool.FixedTermLimits,
		Latched:     true,
		Reward:      reward.FixedTerm,
	}, e)
	if err != nil {
		return nil, err
	}
	return &Ledger{Core: core, cfg: cfg}, nil
}

func (l *Ledger) Config() Config { return l.cfg }

// Deposit stakes amount. Topping up an open position keeps its lock start.
func (l *Ledger) Deposit(account acc.Address, poolID, amount uint64) error {
	return l.Core.Deposit(account, poolID, amount, l.cfg.MinDeposit)
}

func matured(p pool.Pool, pos position.Position, now uint64) bool {
	return pos.Elapsed(now) >= p.LockDuration
}

// Withdraw pays back the principal and the accrued reward once the lock has elapsed.
func (l *Ledger) Withdraw(account acc.Address, poolID uint64) (principal, paid uint64, err error) {
	op := ledger.Op{Name: "withdraw", Account: account, Ctx: []any{"pool", poolID}}
	err = l.Run(op, func(tx *ledger.Tx) error {
		svc := l.Services()
		p, pos, err := l.Load(account, poolID)
		if err != nil {
			return err
		}
		if !matured(p, pos, tx.Now) {
			return errors.Wrapf(reverts.ErrStillLocked, "unlocks at %d", pos.Since+p.LockDuration)
		}
		amount, err := l.Accrued(pos, p, tx.Now)
		if err != nil {
			return err
		}
		if _, err := svc.Positions.Clear(account, poolID); err != nil {
			return err
		}
		tx.Pay(l.cfg.StakeAsset, account, pos.Amount)
		if err := l.PayReward(tx, account, p, amount); err != nil {
			return err
		}
		principal, paid = pos.Amount, amount
		tx.Log("principal", principal, "reward", paid)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return principal, paid, nil
}

// RequestDelayedExit leaves a still locked position without penalty. The
// principal is parked in a ticket claimable after the unbonding period and
// the reward is forfeited.
func (l *Ledger) RequestDelayedExit(account acc.Address, poolID uint64) (availableAt uint64, err error) {
	op := ledger.Op{Name: "request delayed exit", Account: account, Ctx: []any{"pool", poolID}}
	err = l.Run(op, func(tx *ledger.Tx) error {
		svc := l.Services()
		p, err := svc.Pools.Get(poolID)
		if err != nil {
			return err
		}
		if svc.Exits.HasUnclaimed(account, poolID) {
			return errors.Wrapf(reverts.ErrDuplicateRequest, "pool %d", poolID)
		}
		pos := svc.Positions.Get(account, poolID)
		if pos.IsEmpty() {
			return errors.Wrapf(reverts.ErrNothingStaked, "pool %d", poolID)
		}
		if matured(p, pos, tx.Now) {
			return errors.Wrapf(reverts.ErrAlreadyUnlocked, "unlocked at %d", pos.Since+p.LockDuration)
		}
		if _, err := svc.Positions.Clear(account, poolID); err != nil {
			return err
		}
		ticket, err := svc.Exits.Request(account, poolID, pos.Amount, tx.Now, l.cfg.UnbondingPeriod)
		if err != nil {
			return err
		}
		availableAt = ticket.AvailableAt
		tx.Log("amount", ticket.Amount, "availableAt", availableAt)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return availableAt, nil
}

// Restake recommits a matured position for a fresh lock period. The accrued
// reward is folded into the principal when includeReward is set and the pool
// pays in the stake asset; otherwise it is paid out.
func (l *Ledger) Restake(account acc.Address, poolID uint64, includeReward bool) error {
	op := ledger.Op{Name: "restake", Account: account, Ctx: []any{"pool", poolID, "includeReward", includeReward}}
	return l.Run(op, func(tx *ledger.Tx) error {
		svc := l.Services()
		p, pos, err := l.Load(account, poolID)
		if err != nil {
			return err
		}
		if !p.Active {
			return errors.Wrapf(reverts.ErrPoolInactive, "pool %d", poolID)
		}
		if !matured(p, pos, tx.Now) {
			return errors.Wrapf(reverts.ErrStillLocked, "unlocks at %d", pos.Since+p.LockDuration)
		}
		amount, err := l.Accrued(pos, p, tx.Now)
		if err != nil {
			return err
		}

		fold := includeReward && p.RewardAsset == l.cfg.StakeAsset && amount > 0
		if fold {
			if err := position.CheckCap(p, pos.Amount, amount); err != nil {
				return err
			}
			if err := l.FoldReward(account, p, amount); err != nil {
				return err
			}
		} else if err := l.PayReward(tx, account, p, amount); err != nil {
			return err
		}

		if err := svc.Positions.Restart(account, poolID, tx.Now); err != nil {
			return err
		}
		tx.Log("reward", amount, "folded", fold)
		return nil
	})
}
