// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package openterm is the flexible ledger. Principal earns a daily rate from
// the last settlement and leaves through a cooldown.
package openterm

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

const Variant = "open-term"

type Ledger struct {
	*ledger.Core
	cfg Config
}

func New(cfg Config, e env.Env) (*Ledger, error) {
	return Open(store.New(), cfg, e)
}

// Open runs a ledger over an existing state.
func Open(st *store.State, cfg Config, e env.Env) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	core, err := ledger.New(st, ledger.Options{
		Variant:     Variant,
		StakeAsset:  cfg.StakeAsset,
		Vault:       cfg.Vault,
		PenaltyRate: cfg.PenaltyRate,
		Limits:      pool.OpenTermLimits,
		Reward:      reward.OpenTerm,
	}, e)
	if err != nil {
		return nil, err
	}
	return &Ledger{Core: core, cfg: cfg}, nil
}

func (l *Ledger) Config() Config { return l.cfg }

// Deposit stakes amount. There is no minimum beyond a non-zero amount.
func (l *Ledger) Deposit(account acc.Address, poolID, amount uint64) error {
	return l.Core.Deposit(account, poolID, amount, 0)
}

// Withdraw exits at once with principal and reward. It is only offered when
// the ledger runs without a cooldown.
func (l *Ledger) Withdraw(account acc.Address, poolID uint64) (principal, paid uint64, err error) {
	op := ledger.Op{Name: "withdraw", Account: account, Ctx: []any{"pool", poolID}}
	err = l.Run(op, func(tx *ledger.Tx) error {
		if l.cfg.CooldownPeriod > 0 {
			return errors.Wrapf(reverts.ErrCooldownRequired, "cooldown %ds", l.cfg.CooldownPeriod)
		}
		p, pos, err := l.Load(account, poolID)
		if err != nil {
			return err
		}
		amount, err := l.Accrued(pos, p, tx.Now)
		if err != nil {
			return err
		}
		if _, err := l.Services().Positions.Clear(account, poolID); err != nil {
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

// RequestDelayedExit starts the cooldown. The reward accrued so far is paid now;
// the principal waits in a ticket until the cooldown has passed.
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
		amount, err := l.Accrued(pos, p, tx.Now)
		if err != nil {
			return err
		}
		if _, err := svc.Positions.Clear(account, poolID); err != nil {
			return err
		}
		ticket, err := svc.Exits.Request(account, poolID, pos.Amount, tx.Now, l.cfg.CooldownPeriod)
		if err != nil {
			return err
		}
		if err := l.PayReward(tx, account, p, amount); err != nil {
			return err
		}
		availableAt = ticket.AvailableAt
		tx.Log("amount", ticket.Amount, "reward", amount, "availableAt", availableAt)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return availableAt, nil
}

// Compound folds the accrued reward into the principal. The pool must pay in
// the stake asset and the grown position must stay within the cap.
func (l *Ledger) Compound(account acc.Address, poolID uint64) (compounded uint64, err error) {
	op := ledger.Op{Name: "compound", Account: account, Ctx: []any{"pool", poolID}}
	err = l.Run(op, func(tx *ledger.Tx) error {
		p, pos, err := l.Load(account, poolID)
		if err != nil {
			return err
		}
		if p.RewardAsset != l.cfg.StakeAsset {
			return errors.Wrapf(reverts.ErrAssetMismatch, "pool %d pays %s", poolID, p.RewardAsset)
		}
		amount, err := l.Accrued(pos, p, tx.Now)
		if err != nil {
			return err
		}
		if amount == 0 {
			return errors.Wrapf(reverts.ErrNothingToClaim, "pool %d", poolID)
		}
		if err := position.CheckCap(p, pos.Amount, amount); err != nil {
			return err
		}
		if err := l.FoldReward(account, p, amount); err != nil {
			return err
		}
		if err := l.Services().Positions.Settle(account, poolID, tx.Now); err != nil {
			return err
		}
		compounded = amount
		tx.Log("reward", amount)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return compounded, nil
}
