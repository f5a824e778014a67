// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package scenario replays scripted operations against a ledger running on
// an in-memory bank and a manual clock.
package scenario

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/fixedterm"
	"github.com/vechain/stakeledger/staking/openterm"
	"github.com/vechain/stakeledger/staking/reverts"
)

// Scenario is the yaml document driving a run.
type Scenario struct {
	Name    string   `yaml:"name"`
	Variant string   `yaml:"variant"`
	Ledger  Params   `yaml:"ledger"`
	Admins  []string `yaml:"admins"`
	Funds   []Fund   `yaml:"funds"`
	Pools   []Pool   `yaml:"pools"`
	Steps   []Step   `yaml:"steps"`
}

// Params overrides the variant defaults. Unset fields keep them.
type Params struct {
	StakeAsset  string  `yaml:"stake_asset"`
	Vault       string  `yaml:"vault"`
	MinDeposit  *uint64 `yaml:"min_deposit"`
	PenaltyRate *uint32 `yaml:"penalty_rate"`
	// Period is the unbonding period of a fixed-term ledger or the cooldown
	// of an open-term one.
	Period *uint64 `yaml:"period"`
}

type Fund struct {
	Asset   string `yaml:"asset"`
	Account string `yaml:"account"`
	Amount  uint64 `yaml:"amount"`
}

type Pool struct {
	RewardAsset   string `yaml:"reward_asset"`
	Rate          uint32 `yaml:"rate"`
	LockDuration  uint64 `yaml:"lock_duration"`
	MaxPerAccount uint64 `yaml:"max_per_account"`
}

// Step is one operation. At sets the clock, Advance moves it forward; both
// are applied before the operation. Expect names the revert the operation
// must fail with and defaults to "ok". Want and WantReward check the
// amounts it returns.
type Step struct {
	At            *uint64 `yaml:"at"`
	Advance       uint64  `yaml:"advance"`
	Op            string  `yaml:"op"`
	Account       string  `yaml:"account"`
	Pool          uint64  `yaml:"pool"`
	Amount        uint64  `yaml:"amount"`
	Active        bool    `yaml:"active"`
	IncludeReward bool    `yaml:"include_reward"`
	Expect        string  `yaml:"expect"`
	Want          *uint64 `yaml:"want"`
	WantReward    *uint64 `yaml:"want_reward"`
}

// Expectations maps the names usable in Step.Expect to reverts.
var Expectations = map[string]error{
	"not_found":         reverts.ErrNotFound,
	"invalid_config":    reverts.ErrInvalidConfig,
	"pool_inactive":     reverts.ErrPoolInactive,
	"below_minimum":     reverts.ErrBelowMinimum,
	"cap_exceeded":      reverts.ErrCapExceeded,
	"nothing_staked":    reverts.ErrNothingStaked,
	"still_locked":      reverts.ErrStillLocked,
	"already_unlocked":  reverts.ErrAlreadyUnlocked,
	"duplicate_request": reverts.ErrDuplicateRequest,
	"not_yet_available": reverts.ErrNotYetAvailable,
	"already_claimed":   reverts.ErrAlreadyClaimed,
	"nothing_to_claim":  reverts.ErrNothingToClaim,
	"unauthorized":      reverts.ErrUnauthorized,
	"not_operational":   reverts.ErrNotOperational,
	"transfer_failed":   reverts.ErrTransferFailed,
	"asset_mismatch":    reverts.ErrAssetMismatch,
	"cooldown_required": reverts.ErrCooldownRequired,
}

// Parse decodes and checks a scenario. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return sc, nil
}

func (sc *Scenario) validate() error {
	if sc.Variant != fixedterm.Variant && sc.Variant != openterm.Variant {
		return errors.Errorf("unknown variant %q", sc.Variant)
	}
	for i, s := range sc.Steps {
		if _, ok := ops[s.Op]; !ok {
			return errors.Errorf("step %d: unknown op %q", i, s.Op)
		}
		if s.Expect != "" && s.Expect != "ok" {
			if _, ok := Expectations[s.Expect]; !ok {
				return errors.Errorf("step %d: unknown expectation %q", i, s.Expect)
			}
		}
	}
	return nil
}

// LedgerConfig renders the variant config with the overrides applied.
func (sc *Scenario) LedgerConfig() ([]byte, error) {
	m := make(map[string]any)
	if sc.Ledger.StakeAsset != "" {
		m["stake_asset"] = acc.Resolve(sc.Ledger.StakeAsset)
	}
	if sc.Ledger.Vault != "" {
		m["vault"] = acc.Resolve(sc.Ledger.Vault)
	}
	if sc.Ledger.PenaltyRate != nil {
		m["penalty_rate"] = *sc.Ledger.PenaltyRate
	}
	if sc.Ledger.MinDeposit != nil {
		if sc.Variant != fixedterm.Variant {
			return nil, errors.Errorf("min_deposit is not supported by the %s ledger", sc.Variant)
		}
		m["min_deposit"] = *sc.Ledger.MinDeposit
	}
	if sc.Ledger.Period != nil {
		if sc.Variant == fixedterm.Variant {
			m["unbonding_period"] = *sc.Ledger.Period
		} else {
			m["cooldown_period"] = *sc.Ledger.Period
		}
	}
	return yaml.Marshal(m)
}

func (sc *Scenario) admins() []acc.Address {
	if len(sc.Admins) == 0 {
		return []acc.Address{acc.FromLabel("admin")}
	}
	admins := make([]acc.Address, 0, len(sc.Admins))
	for _, a := range sc.Admins {
		admins = append(admins, acc.Resolve(a))
	}
	return admins
}
