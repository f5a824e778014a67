// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testledger wires in-memory collaborators around a ledger and checks
// its bookkeeping from scratch.
package testledger

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/bank"
	"github.com/vechain/stakeledger/staking/env"
)

// Admin is the administrator every Env starts with.
var Admin = acc.FromLabel("admin")

// Env holds the collaborators handed to a ledger under test.
type Env struct {
	Bank   *bank.Bank
	Clock  *env.ManualClock
	Gate   *env.Switch
	Admins *env.Admins
}

func NewEnv() *Env {
	return &Env{
		Bank:   bank.New(),
		Clock:  env.NewManualClock(0),
		Gate:   &env.Switch{},
		Admins: env.NewAdmins(Admin),
	}
}

// Env returns the bundle a ledger is constructed with.
func (e *Env) Env() env.Env {
	return env.Env{
		Transport:  e.Bank,
		Gate:       e.Gate,
		Authorizer: e.Admins,
		Clock:      e.Clock,
	}
}

// Fund mints amount of asset to every account.
func (e *Env) Fund(asset acc.Address, amount uint64, accounts ...acc.Address) error {
	for _, a := range accounts {
		if err := e.Bank.Mint(asset, a, amount); err != nil {
			return errors.Wrapf(err, "fund %s", a)
		}
	}
	return nil
}
