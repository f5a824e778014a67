// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package exit

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/globalstats"
	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/position"
	"github.com/vechain/stakeledger/staking/reverts"
	"github.com/vechain/stakeledger/staking/store"
)

const (
	// Space holds the tickets, keyed by TicketKey.
	Space = "exit"
	// CountSpace holds the number of tickets per position.Key.
	CountSpace = "exit.count"
)

// PendingExit is a delayed exit ticket. Claimed only ever goes from false to true.
type PendingExit struct {
	Amount      uint64 `json:"amount" yaml:"amount"`
	RequestedAt uint64 `json:"requestedAt" yaml:"requested_at"`
	AvailableAt uint64 `json:"availableAt" yaml:"available_at"`
	Claimed     bool   `json:"claimed" yaml:"claimed"`
}

// TicketKey addresses the Seq-th ticket of an account in a pool.
type TicketKey struct {
	Account acc.Address
	Pool    uint64
	Seq     uint64
}

// Service keeps an append-only ticket sequence per account and pool.
// Only the latest ticket can be unclaimed.
type Service struct {
	tickets *store.Mapping[TicketKey, PendingExit]
	counts  *store.Mapping[position.Key, uint64]
	stats   *globalstats.Service
}

func New(st *store.State, stats *globalstats.Service) *Service {
	return &Service{
		tickets: store.NewMapping[TicketKey, PendingExit](st, Space),
		counts:  store.NewMapping[position.Key, uint64](st, CountSpace),
		stats:   stats,
	}
}

func (s *Service) count(account acc.Address, poolID uint64) uint64 {
	n, _ := s.counts.Get(position.Key{Account: account, Pool: poolID})
	return n
}

// Latest returns the most recent ticket, if any.
func (s *Service) Latest(account acc.Address, poolID uint64) (PendingExit, bool) {
	n := s.count(account, poolID)
	if n == 0 {
		return PendingExit{}, false
	}
	return s.tickets.Get(TicketKey{account, poolID, n - 1})
}

// History returns every ticket, oldest first.
func (s *Service) History(account acc.Address, poolID uint64) []PendingExit {
	n := s.count(account, poolID)
	history := make([]PendingExit, 0, n)
	for seq := uint64(0); seq < n; seq++ {
		t, _ := s.tickets.Get(TicketKey{account, poolID, seq})
		history = append(history, t)
	}
	return history
}

// Range iterates every ticket of every position in unspecified order.
func (s *Service) Range(fn func(TicketKey, PendingExit) bool) {
	s.tickets.Range(fn)
}

func (s *Service) HasUnclaimed(account acc.Address, poolID uint64) bool {
	t, ok := s.Latest(account, poolID)
	return ok && !t.Claimed
}

// Request appends a ticket for amount, claimable at now+delay.
func (s *Service) Request(account acc.Address, poolID, amount, now, delay uint64) (PendingExit, error) {
	if s.HasUnclaimed(account, poolID) {
		return PendingExit{}, errors.Wrapf(reverts.ErrDuplicateRequest, "pool %d", poolID)
	}
	availableAt, err := store.CheckedAdd("exit-available-at", now, delay)
	if err != nil {
		return PendingExit{}, err
	}
	if err := s.stats.AddPendingExit(amount); err != nil {
		return PendingExit{}, err
	}
	n := s.count(account, poolID)
	ticket := PendingExit{Amount: amount, RequestedAt: now, AvailableAt: availableAt}
	s.tickets.Set(TicketKey{account, poolID, n}, ticket)
	s.counts.Set(position.Key{Account: account, Pool: poolID}, n+1)
	return ticket, nil
}

// CheckClaim returns the ticket that can be claimed at now.
func (s *Service) CheckClaim(account acc.Address, poolID, now uint64) (PendingExit, error) {
	t, ok := s.Latest(account, poolID)
	switch {
	case !ok:
		return PendingExit{}, errors.Wrapf(reverts.ErrNothingToClaim, "pool %d", poolID)
	case t.Claimed:
		return PendingExit{}, errors.Wrapf(reverts.ErrAlreadyClaimed, "pool %d", poolID)
	case now < t.AvailableAt:
		return PendingExit{}, errors.Wrapf(reverts.ErrNotYetAvailable, "available at %d", t.AvailableAt)
	}
	return t, nil
}

// MarkClaimed flips the latest ticket to claimed.
func (s *Service) MarkClaimed(account acc.Address, poolID uint64) (PendingExit, error) {
	n := s.count(account, poolID)
	if n == 0 {
		return PendingExit{}, errors.Wrapf(reverts.ErrNothingToClaim, "pool %d", poolID)
	}
	key := TicketKey{account, poolID, n - 1}
	t, _ := s.tickets.Get(key)
	if t.Claimed {
		return PendingExit{}, errors.Wrapf(reverts.ErrAlreadyClaimed, "pool %d", poolID)
	}
	if err := s.stats.SubPendingExit(t.Amount); err != nil {
		return PendingExit{}, err
	}
	t.Claimed = true
	s.tickets.Set(key, t)
	return t, nil
}

// Penalty returns the share of amount retained on an emergency exit.
// Rates above the denominator are treated as a full penalty.
func Penalty(amount uint64, rate uint32) uint64 {
	if rate >= pool.RateDenominator {
		return amount
	}
	// the product fits in 128 bits and the quotient never exceeds amount
	prod := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(uint64(rate)))
	return prod.Div(prod, uint256.NewInt(pool.RateDenominator)).Uint64()
}
