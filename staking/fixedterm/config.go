// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixedterm

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/pool"
)

// Config holds the ledger wide parameters.
type Config struct {
	StakeAsset      acc.Address `yaml:"stake_asset"`
	Vault           acc.Address `yaml:"vault"`
	MinDeposit      uint64      `yaml:"min_deposit"`
	PenaltyRate     uint32      `yaml:"penalty_rate"`     // basis points of principal kept on emergency exit
	UnbondingPeriod uint64      `yaml:"unbonding_period"` // seconds between a delayed exit request and its claim
}

func DefaultConfig() Config {
	return Config{
		StakeAsset:      acc.FromLabel("stake"),
		Vault:           acc.FromLabel("vault"),
		MinDeposit:      1,
		PenaltyRate:     1000,
		UnbondingPeriod: 7 * 24 * 3600,
	}
}

func (c Config) Validate() error {
	switch {
	case c.StakeAsset.IsZero():
		return errors.New("fixedterm: stake asset is required")
	case c.Vault.IsZero():
		return errors.New("fixedterm: vault is required")
	case c.PenaltyRate > pool.RateDenominator:
		return errors.Errorf("fixedterm: penalty rate %d exceeds %d", c.PenaltyRate, pool.RateDenominator)
	case c.UnbondingPeriod == 0:
		return errors.New("fixedterm: unbonding period must be greater than zero")
	}
	return nil
}
