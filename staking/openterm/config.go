// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package openterm

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/pool"
)

// Config holds the ledger wide parameters.
// With a zero CooldownPeriod positions may also leave through Withdraw.
type Config struct {
	StakeAsset     acc.Address `yaml:"stake_asset"`
	Vault          acc.Address `yaml:"vault"`
	PenaltyRate    uint32      `yaml:"penalty_rate"`
	CooldownPeriod uint64      `yaml:"cooldown_period"`
}

func DefaultConfig() Config {
	return Config{
		StakeAsset:     acc.FromLabel("stake"),
		Vault:          acc.FromLabel("vault"),
		PenaltyRate:    500,
		CooldownPeriod: 3 * 24 * 3600,
	}
}

func (c Config) Validate() error {
	switch {
	case c.StakeAsset.IsZero():
		return errors.New("openterm: stake asset is required")
	case c.Vault.IsZero():
		return errors.New("openterm: vault is required")
	case c.PenaltyRate > pool.RateDenominator:
		return errors.Errorf("openterm: penalty rate %d exceeds %d", c.PenaltyRate, pool.RateDenominator)
	}
	return nil
}
