// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package env declares the collaborators a ledger consumes from its host:
// value transport, an operational gate, an administrator check and a clock.
package env

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTransferDenied    = errors.New("transfer denied")
)

// Transport moves value between parties.
// It fails with ErrInsufficientFunds or ErrTransferDenied (possibly wrapped).
type Transport interface {
	Transfer(asset, from, to acc.Address, amount uint64) error
}

// Gate reports whether state mutations are currently allowed.
type Gate interface {
	IsOperational() bool
}

// Authorizer reports whether an account may administer pools.
type Authorizer interface {
	IsAdmin(account acc.Address) bool
}

// Clock supplies the current time in unix seconds. It must never go backwards.
type Clock interface {
	Now() uint64
}

// Env bundles the collaborators of a ledger.
type Env struct {
	Transport  Transport
	Gate       Gate
	Authorizer Authorizer
	Clock      Clock
}

// Validate checks that every collaborator is set.
func (e Env) Validate() error {
	switch {
	case e.Transport == nil:
		return errors.New("env: transport is required")
	case e.Gate == nil:
		return errors.New("env: gate is required")
	case e.Authorizer == nil:
		return errors.New("env: authorizer is required")
	case e.Clock == nil:
		return errors.New("env: clock is required")
	}
	return nil
}

// Switch is a Gate that can be paused and resumed at runtime.
type Switch struct {
	paused atomic.Bool
}

func (s *Switch) Pause()              { s.paused.Store(true) }
func (s *Switch) Resume()             { s.paused.Store(false) }
func (s *Switch) IsOperational() bool { return !s.paused.Load() }

// Closed is a Gate that rejects every mutation; used by read-only hosts.
type Closed struct{}

func (Closed) IsOperational() bool { return false }

// Admins is a set based Authorizer.
type Admins struct {
	mu      sync.RWMutex
	members map[acc.Address]struct{}
}

func NewAdmins(members ...acc.Address) *Admins {
	a := &Admins{members: make(map[acc.Address]struct{}, len(members))}
	for _, m := range members {
		a.members[m] = struct{}{}
	}
	return a
}

func (a *Admins) Grant(account acc.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.members[account] = struct{}{}
}

func (a *Admins) Revoke(account acc.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.members, account)
}

func (a *Admins) IsAdmin(account acc.Address) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.members[account]
	return ok
}

// ManualClock is a Clock driven by the caller, used by tests and scenario replays.
type ManualClock struct {
	now atomic.Uint64
}

func NewManualClock(start uint64) *ManualClock {
	c := &ManualClock{}
	c.now.Store(start)
	return c
}

func (c *ManualClock) Now() uint64 { return c.now.Load() }

// Set moves the clock to ts. Moving backwards is ignored.
func (c *ManualClock) Set(ts uint64) {
	for {
		cur := c.now.Load()
		if ts <= cur || c.now.CompareAndSwap(cur, ts) {
			return
		}
	}
}

func (c *ManualClock) Advance(d uint64) {
	c.now.Add(d)
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() uint64 { return uint64(time.Now().Unix()) }

// DenyTransport refuses every transfer.
type DenyTransport struct{}

func (DenyTransport) Transfer(_, _, _ acc.Address, _ uint64) error { return ErrTransferDenied }
