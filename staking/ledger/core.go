// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger holds what the fixed-term and open-term ledgers share: the
// all-or-nothing operation runner, the transfer legs, the operations whose
// rules do not depend on the variant, and every read.
package ledger

import (
	"math"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/staking/env"
	"github.com/vechain/stakeledger/staking/exit"
	"github.com/vechain/stakeledger/staking/globalstats"
	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/position"
	"github.com/vechain/stakeledger/staking/reverts"
	"github.com/vechain/stakeledger/staking/reward"
	"github.com/vechain/stakeledger/staking/store"
)

var (
	metricOperations    = metrics.LazyLoadCounterVec("ledger_operations_count", []string{"variant", "op", "status"})
	metricOperationTime = metrics.LazyLoadHistogramVec("ledger_operation_duration_us", []string{"variant", "op"}, metrics.BucketMicros)
	metricTotalStaked   = metrics.LazyLoadGaugeVec("ledger_total_staked", []string{"variant"})
	metricActiveStakers = metrics.LazyLoadGaugeVec("ledger_active_stakers", []string{"variant"})
	metricPendingExit   = metrics.LazyLoadGaugeVec("ledger_pending_exit", []string{"variant"})
)

// Options are the variant specific parameters of a Core.
type Options struct {
	Variant     string
	StakeAsset  acc.Address
	Vault       acc.Address
	PenaltyRate uint32
	Limits      pool.Limits
	Latched     bool
	Reward      reward.Policy
}

func (o Options) validate() error {
	switch {
	case o.Variant == "":
		return errors.New("variant is required")
	case o.StakeAsset.IsZero():
		return errors.New("stake asset is required")
	case o.Vault.IsZero():
		return errors.New("vault is required")
	case o.PenaltyRate > pool.RateDenominator:
		return errors.Errorf("penalty rate %d exceeds %d", o.PenaltyRate, pool.RateDenominator)
	case o.Reward == nil:
		return errors.New("reward policy is required")
	}
	return nil
}

// Services are the state services a Core is built from.
type Services struct {
	Pools     *pool.Service
	Positions *position.Service
	Exits     *exit.Service
	Stats     *globalstats.Service
}

// seqName is the counter numbering committed operations.
const seqName = "op-seq"

// Core serializes every operation of one ledger behind a single lock.
type Core struct {
	mu     sync.RWMutex
	state  *store.State
	env    env.Env
	opts   Options
	svc    Services
	seq    *store.Uint64
	logger log.Logger

	feed  event.Feed
	scope event.SubscriptionScope
}

// New builds a Core over st. The state may already hold a ledger.
func New(st *store.State, opts Options, e env.Env) (*Core, error) {
	if err := opts.validate(); err != nil {
		return nil, errors.Wrap(err, "ledger options")
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	pools := pool.New(st, opts.Limits)
	stats := globalstats.New(st)
	c := &Core{
		state: st,
		env:   e,
		opts:  opts,
		svc: Services{
			Pools:     pools,
			Positions: position.New(st, pools, stats, opts.Latched),
			Exits:     exit.New(st, stats),
			Stats:     stats,
		},
		seq:    store.NewUint64(st, seqName),
		logger: log.WithContext("pkg", "ledger", "variant", opts.Variant),
	}
	c.updateGauges()
	return c, nil
}

func (c *Core) Services() *Services { return &c.svc }
func (c *Core) Options() Options    { return c.opts }
func (c *Core) Variant() string     { return c.opts.Variant }

// Now returns the clock reading operations run at.
func (c *Core) Now() uint64 { return c.env.Clock.Now() }

// SubscribeRecords delivers a Record for every committed operation. Rejected
// operations publish nothing. Delivery happens after the ledger lock is
// released but before the operation returns, so a subscriber that stops
// reading blocks the caller of the current operation.
func (c *Core) SubscribeRecords(ch chan<- *Record) event.Subscription {
	return c.scope.Track(c.feed.Subscribe(ch))
}

// Close ends all record subscriptions.
func (c *Core) Close() {
	c.scope.Close()
}

// Op names a mutation for logging, metrics and authorization.
type Op struct {
	Name    string
	Account acc.Address
	Admin   bool
	Ctx     []any
}

// Run executes fn as one all-or-nothing operation. fn performs the checks and
// applies the effects to the journaled state; the transfer legs it requests
// run afterwards. Any error, from fn or from a transfer, discards the effects.
func (c *Core) Run(op Op, fn func(tx *Tx) error) (err error) {
	start := time.Now()
	ctx := append([]any{"account", op.Account}, op.Ctx...)
	c.logger.Debug(op.Name, ctx...)

	tx := &Tx{vault: c.opts.Vault}
	var rec *Record
	defer func() {
		c.record(op.Name, err, start)
		if err != nil {
			c.logger.Info(op.Name+" failed", append(ctx, "error", err)...)
			return
		}
		c.logger.Info(op.Name+" done", append(ctx, tx.ctx...)...)
		c.feed.Send(rec)
	}()

	if !c.env.Gate.IsOperational() {
		return reverts.ErrNotOperational
	}
	if op.Admin && !c.env.Authorizer.IsAdmin(op.Account) {
		return errors.Wrapf(reverts.ErrUnauthorized, "%s is not an admin", op.Account)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tx.Now = c.env.Clock.Now()
	cp := c.state.Checkpoint()
	if err := fn(tx); err != nil {
		c.state.RevertTo(cp)
		return err
	}
	if err := c.transfer(tx.legs); err != nil {
		c.state.RevertTo(cp)
		return err
	}
	if err := c.seq.Add(1); err != nil {
		c.compensate(tx.legs, len(tx.legs))
		c.state.RevertTo(cp)
		return err
	}
	rec = newRecord(c.seq.Get(), c.opts.Variant, op, tx)
	c.state.Commit()
	c.updateGauges()
	return nil
}

// transfer runs the legs in order. When one fails, the legs already executed
// are sent back in reverse order.
func (c *Core) transfer(legs []Leg) error {
	for i, leg := range legs {
		err := c.env.Transport.Transfer(leg.Asset, leg.From, leg.To, leg.Amount)
		if err == nil {
			continue
		}
		c.compensate(legs, i)
		return &TransferError{Leg: leg, Err: err}
	}
	return nil
}

// compensate sends back the first n legs, last one first.
func (c *Core) compensate(legs []Leg, n int) {
	for j := n - 1; j >= 0; j-- {
		back := legs[j].reversed()
		if err := c.env.Transport.Transfer(back.Asset, back.From, back.To, back.Amount); err != nil {
			c.logger.Error("transfer compensation failed", "asset", back.Asset, "from", back.From,
				"to", back.To, "amount", back.Amount, "error", err)
		}
	}
}

func (c *Core) record(op string, err error, start time.Time) {
	status := "ok"
	switch {
	case reverts.IsRevertErr(err):
		status = "revert"
	case err != nil:
		status = "error"
	}
	metricOperations().AddWithLabel(1, map[string]string{"variant": c.opts.Variant, "op": op, "status": status})
	metricOperationTime().ObserveWithLabels(time.Since(start).Microseconds(), map[string]string{"variant": c.opts.Variant, "op": op})
}

func (c *Core) updateGauges() {
	totals := c.svc.Stats.Totals()
	labels := map[string]string{"variant": c.opts.Variant}
	metricTotalStaked().SetWithLabel(gaugeValue(totals.TotalStaked), labels)
	metricActiveStakers().SetWithLabel(gaugeValue(totals.ActiveStakers), labels)
	metricPendingExit().SetWithLabel(gaugeValue(totals.PendingExit), labels)
}

func gaugeValue(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// View runs fn under the read lock against the committed state.
func (c *Core) View(fn func(st *store.State) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fn(c.state)
}
