// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scenario

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/env"
	"github.com/vechain/stakeledger/staking/fixedterm"
	"github.com/vechain/stakeledger/staking/ledger"
	"github.com/vechain/stakeledger/staking/openterm"
	"github.com/vechain/stakeledger/staking/store"
)

// Ledger is either variant behind one set of methods.
type Ledger struct {
	*ledger.Core
	fixed *fixedterm.Ledger
	open  *openterm.Ledger
}

// Open runs the variant over st. config is the yaml encoded variant config,
// empty for the defaults.
func Open(variant string, config []byte, st *store.State, e env.Env) (*Ledger, error) {
	switch variant {
	case fixedterm.Variant:
		cfg := fixedterm.DefaultConfig()
		if err := yaml.Unmarshal(config, &cfg); err != nil {
			return nil, errors.Wrap(err, "decode fixed-term config")
		}
		l, err := fixedterm.Open(st, cfg, e)
		if err != nil {
			return nil, err
		}
		return &Ledger{Core: l.Core, fixed: l}, nil
	case openterm.Variant:
		cfg := openterm.DefaultConfig()
		if err := yaml.Unmarshal(config, &cfg); err != nil {
			return nil, errors.Wrap(err, "decode open-term config")
		}
		l, err := openterm.Open(st, cfg, e)
		if err != nil {
			return nil, err
		}
		return &Ledger{Core: l.Core, open: l}, nil
	}
	return nil, errors.Errorf("unknown variant %q", variant)
}

// Config returns the yaml encoded variant config.
func (l *Ledger) Config() ([]byte, error) {
	if l.fixed != nil {
		return yaml.Marshal(l.fixed.Config())
	}
	return yaml.Marshal(l.open.Config())
}

func (l *Ledger) Deposit(account acc.Address, poolID, amount uint64) error {
	if l.fixed != nil {
		return l.fixed.Deposit(account, poolID, amount)
	}
	return l.open.Deposit(account, poolID, amount)
}

func (l *Ledger) Withdraw(account acc.Address, poolID uint64) (principal, paid uint64, err error) {
	if l.fixed != nil {
		return l.fixed.Withdraw(account, poolID)
	}
	return l.open.Withdraw(account, poolID)
}

func (l *Ledger) RequestDelayedExit(account acc.Address, poolID uint64) (uint64, error) {
	if l.fixed != nil {
		return l.fixed.RequestDelayedExit(account, poolID)
	}
	return l.open.RequestDelayedExit(account, poolID)
}

// Restake is only offered by the fixed-term ledger.
func (l *Ledger) Restake(account acc.Address, poolID uint64, includeReward bool) error {
	if l.fixed == nil {
		return errors.Errorf("restake is not offered by the %s ledger", l.Variant())
	}
	return l.fixed.Restake(account, poolID, includeReward)
}

// Compound is only offered by the open-term ledger.
func (l *Ledger) Compound(account acc.Address, poolID uint64) (uint64, error) {
	if l.open == nil {
		return 0, errors.Errorf("compound is not offered by the %s ledger", l.Variant())
	}
	return l.open.Compound(account, poolID)
}
