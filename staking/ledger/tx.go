// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"fmt"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/reverts"
)

// Leg is one value movement requested by an operation.
type Leg struct {
	Asset  acc.Address `json:"asset"`
	From   acc.Address `json:"from"`
	To     acc.Address `json:"to"`
	Amount uint64      `json:"amount"`
}

func (l Leg) reversed() Leg {
	return Leg{Asset: l.Asset, From: l.To, To: l.From, Amount: l.Amount}
}

// TransferError reports the leg the transport refused. It matches both
// reverts.ErrTransferFailed and the transport's own error.
type TransferError struct {
	Leg Leg
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed: %d of %s from %s to %s: %v",
		e.Leg.Amount, e.Leg.Asset, e.Leg.From, e.Leg.To, e.Err)
}

func (e *TransferError) Unwrap() []error {
	return []error{reverts.ErrTransferFailed, e.Err}
}

// Tx collects what an operation wants done outside the journaled state.
// Legs run in the order they were first requested, after the effects.
type Tx struct {
	Now uint64

	vault acc.Address
	legs  []Leg
	ctx   []any
}

func (tx *Tx) add(leg Leg) {
	if leg.Amount == 0 {
		return
	}
	for i := range tx.legs {
		l := &tx.legs[i]
		if l.Asset == leg.Asset && l.From == leg.From && l.To == leg.To {
			// amounts are bounded by ledger counters, which are overflow checked
			l.Amount += leg.Amount
			return
		}
	}
	tx.legs = append(tx.legs, leg)
}

// Pay requests a transfer of amount from the vault to account.
func (tx *Tx) Pay(asset, account acc.Address, amount uint64) {
	tx.add(Leg{Asset: asset, From: tx.vault, To: account, Amount: amount})
}

// Collect requests a transfer of amount from account into the vault.
func (tx *Tx) Collect(asset, account acc.Address, amount uint64) {
	tx.add(Leg{Asset: asset, From: account, To: tx.vault, Amount: amount})
}

// Legs returns the pending transfers in execution order.
func (tx *Tx) Legs() []Leg {
	return tx.legs
}

// Log attaches key/value pairs to the outcome log line.
func (tx *Tx) Log(ctx ...any) {
	tx.ctx = append(tx.ctx, ctx...)
}
