// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scenario

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/bank"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/staking/env"
	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/store"
)

var logger = log.WithContext("pkg", "scenario")

// Result is the outcome of one step.
type Result struct {
	Step    int
	Op      string
	Account acc.Address
	Pool    uint64
	At      uint64
	Amount  uint64
	Reward  uint64
	Err     error
}

type opFunc func(r *Runner, s Step, account acc.Address) (amount, reward uint64, err error)

var ops = map[string]opFunc{
	"deposit": func(r *Runner, s Step, a acc.Address) (uint64, uint64, error) {
		return 0, 0, r.Ledger.Deposit(a, s.Pool, s.Amount)
	},
	"withdraw": func(r *Runner, s Step, a acc.Address) (uint64, uint64, error) {
		return r.Ledger.Withdraw(a, s.Pool)
	},
	"claim_reward": func(r *Runner, s Step, a acc.Address) (uint64, uint64, error) {
		paid, err := r.Ledger.ClaimReward(a, s.Pool)
		return paid, 0, err
	},
	"emergency_withdraw": func(r *Runner, s Step, a acc.Address) (uint64, uint64, error) {
		payout, err := r.Ledger.EmergencyWithdraw(a, s.Pool)
		return payout, 0, err
	},
	"request_exit": func(r *Runner, s Step, a acc.Address) (uint64, uint64, error) {
		availableAt, err := r.Ledger.RequestDelayedExit(a, s.Pool)
		return availableAt, 0, err
	},
	"claim_exit": func(r *Runner, s Step, a acc.Address) (uint64, uint64, error) {
		amount, err := r.Ledger.ClaimDelayedExit(a, s.Pool)
		return amount, 0, err
	},
	"restake": func(r *Runner, s Step, a acc.Address) (uint64, uint64, error) {
		return 0, 0, r.Ledger.Restake(a, s.Pool, s.IncludeReward)
	},
	"compound": func(r *Runner, s Step, a acc.Address) (uint64, uint64, error) {
		amount, err := r.Ledger.Compound(a, s.Pool)
		return amount, 0, err
	},
	"set_pool_active": func(r *Runner, s Step, a acc.Address) (uint64, uint64, error) {
		return 0, 0, r.Ledger.SetPoolActive(a, s.Pool, s.Active)
	},
	"pause": func(r *Runner, _ Step, _ acc.Address) (uint64, uint64, error) {
		r.Gate.Pause()
		return 0, 0, nil
	},
	"resume": func(r *Runner, _ Step, _ acc.Address) (uint64, uint64, error) {
		r.Gate.Resume()
		return 0, 0, nil
	},
	"freeze": func(r *Runner, _ Step, a acc.Address) (uint64, uint64, error) {
		r.Bank.Freeze(a)
		return 0, 0, nil
	},
	"unfreeze": func(r *Runner, _ Step, a acc.Address) (uint64, uint64, error) {
		r.Bank.Unfreeze(a)
		return 0, 0, nil
	},
}

// Runner holds the ledger of a scenario and its collaborators.
type Runner struct {
	Bank   *bank.Bank
	Clock  *env.ManualClock
	Gate   *env.Switch
	Admins *env.Admins
	Ledger *Ledger

	sc    *Scenario
	admin acc.Address
}

// NewRunner opens the ledger on a fresh state.
func NewRunner(sc *Scenario) (*Runner, error) {
	admins := sc.admins()
	r := &Runner{
		Bank:   bank.New(),
		Clock:  env.NewManualClock(0),
		Gate:   &env.Switch{},
		Admins: env.NewAdmins(admins...),
		sc:     sc,
		admin:  admins[0],
	}

	config, err := sc.LedgerConfig()
	if err != nil {
		return nil, err
	}
	r.Ledger, err = Open(sc.Variant, config, store.New(), env.Env{
		Transport:  r.Bank,
		Gate:       r.Gate,
		Authorizer: r.Admins,
		Clock:      r.Clock,
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// setup mints the funds and creates the pools at the current time.
func (r *Runner) setup() error {
	for _, f := range r.sc.Funds {
		if err := r.Bank.Mint(acc.Resolve(f.Asset), acc.Resolve(f.Account), f.Amount); err != nil {
			return err
		}
	}
	for i, p := range r.sc.Pools {
		cfg := pool.Config{
			RewardAsset:   r.Ledger.Options().StakeAsset,
			Rate:          p.Rate,
			LockDuration:  p.LockDuration,
			MaxPerAccount: p.MaxPerAccount,
		}
		if p.RewardAsset != "" {
			cfg.RewardAsset = acc.Resolve(p.RewardAsset)
		}
		if _, err := r.Ledger.CreatePool(r.admin, cfg); err != nil {
			return errors.Wrapf(err, "pool %d", i)
		}
	}
	return nil
}

// Run sets the scenario up and plays every step in order. It stops at the
// first step whose outcome differs from its expectation. onStep, if not nil,
// sees every result.
func (r *Runner) Run(onStep func(Result)) ([]Result, error) {
	logger.Debug("run scenario", "name", r.sc.Name, "variant", r.sc.Variant, "steps", len(r.sc.Steps))
	if err := r.setup(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(r.sc.Steps))
	for i, s := range r.sc.Steps {
		if s.At != nil {
			r.Clock.Set(*s.At)
		}
		r.Clock.Advance(s.Advance)

		account := r.admin
		if s.Account != "" {
			account = acc.Resolve(s.Account)
		}
		res := Result{Step: i, Op: s.Op, Account: account, Pool: s.Pool, At: r.Clock.Now()}
		res.Amount, res.Reward, res.Err = ops[s.Op](r, s, account)
		results = append(results, res)
		if onStep != nil {
			onStep(res)
		}
		if err := check(s, res); err != nil {
			logger.Info("scenario failed", "name", r.sc.Name, "step", i, "err", err)
			return results, errors.Wrapf(err, "step %d (%s)", i, s.Op)
		}
	}
	logger.Info("scenario done", "name", r.sc.Name, "steps", len(results))
	return results, nil
}

func check(s Step, res Result) error {
	if s.Expect == "" || s.Expect == "ok" {
		if res.Err != nil {
			return errors.Wrap(res.Err, "unexpected failure")
		}
	} else {
		want := Expectations[s.Expect]
		if res.Err == nil {
			return errors.Errorf("succeeded, want %s", s.Expect)
		}
		if !errors.Is(res.Err, want) {
			return errors.Errorf("failed with %q, want %s", res.Err, s.Expect)
		}
	}
	if s.Want != nil && res.Amount != *s.Want {
		return errors.Errorf("amount %d, want %d", res.Amount, *s.Want)
	}
	if s.WantReward != nil && res.Reward != *s.WantReward {
		return errors.Errorf("reward %d, want %d", res.Reward, *s.WantReward)
	}
	return nil
}
