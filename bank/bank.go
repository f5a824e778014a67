// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bank is an in-memory multi-asset balance book. It implements the
// ledger value transport for tests and offline scenario runs.
package bank

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/env"
)

type holding struct {
	asset   acc.Address
	account acc.Address
}

// Bank holds balances per (asset, account).
type Bank struct {
	mu       sync.Mutex
	balances map[holding]uint64
	frozen   map[acc.Address]bool
	hook     func(asset, from, to acc.Address, amount uint64) error
}

func New() *Bank {
	return &Bank{
		balances: make(map[holding]uint64),
		frozen:   make(map[acc.Address]bool),
	}
}

// Mint credits amount out of thin air.
func (b *Bank) Mint(asset, account acc.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := holding{asset, account}
	sum := b.balances[h] + amount
	if sum < amount {
		return errors.Errorf("balance overflow: %s of %s", account, asset)
	}
	b.balances[h] = sum
	return nil
}

func (b *Bank) BalanceOf(asset, account acc.Address) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.balances[holding{asset, account}]
}

// Freeze makes every transfer from or to account fail with env.ErrTransferDenied.
func (b *Bank) Freeze(account acc.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.frozen[account] = true
}

func (b *Bank) Unfreeze(account acc.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.frozen, account)
}

// OnTransfer installs a hook consulted before each transfer; a non-nil result
// fails the transfer. Pass nil to remove it.
func (b *Bank) OnTransfer(hook func(asset, from, to acc.Address, amount uint64) error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hook = hook
}

// Transfer implements env.Transport.
func (b *Bank) Transfer(asset, from, to acc.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hook != nil {
		if err := b.hook(asset, from, to, amount); err != nil {
			return err
		}
	}
	if b.frozen[from] || b.frozen[to] {
		return errors.Wrapf(env.ErrTransferDenied, "%s -> %s", from, to)
	}
	src, dst := holding{asset, from}, holding{asset, to}
	if b.balances[src] < amount {
		return errors.Wrapf(env.ErrInsufficientFunds, "%s has %d of %s, needs %d", from, b.balances[src], asset, amount)
	}
	if from == to {
		return nil
	}
	if b.balances[dst]+amount < b.balances[dst] {
		return errors.Errorf("balance overflow: %s of %s", to, asset)
	}
	b.balances[src] -= amount
	b.balances[dst] += amount
	return nil
}

// Balance is one non-zero holding.
type Balance struct {
	Asset   acc.Address `json:"asset" yaml:"asset"`
	Account acc.Address `json:"account" yaml:"account"`
	Amount  uint64      `json:"amount" yaml:"amount"`
}

// Balances lists the non-zero holdings ordered by asset then account.
func (b *Bank) Balances() []Balance {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Balance, 0, len(b.balances))
	for h, amount := range b.balances {
		if amount == 0 {
			continue
		}
		out = append(out, Balance{Asset: h.asset, Account: h.account, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Asset != out[j].Asset {
			return out[i].Asset.String() < out[j].Asset.String()
		}
		return out[i].Account.String() < out[j].Account.String()
	})
	return out
}
