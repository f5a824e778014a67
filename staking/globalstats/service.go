// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/store"
)

// AccountSpace holds per account aggregates.
const AccountSpace = "account"

const (
	nameTotalStaked   = "total-staked"
	nameActiveStakers = "active-stakers"
	namePendingExit   = "pending-exit"
	nameRewardsPaid   = "rewards-paid"
	namePenalties     = "penalties"
)

// Totals is the protocol wide view.
type Totals struct {
	TotalStaked   uint64 `json:"totalStaked" yaml:"total_staked"`
	ActiveStakers uint64 `json:"activeStakers" yaml:"active_stakers"`
	PendingExit   uint64 `json:"pendingExit" yaml:"pending_exit"`
	RewardsPaid   uint64 `json:"rewardsPaid" yaml:"rewards_paid"`
	Penalties     uint64 `json:"penalties" yaml:"penalties"`
}

// Account aggregates one account across pools.
type Account struct {
	OpenPositions  uint64 `json:"openPositions" yaml:"open_positions"`
	Staked         uint64 `json:"staked" yaml:"staked"`
	RewardsClaimed uint64 `json:"rewardsClaimed" yaml:"rewards_claimed"`
}

// IsActive returns whether the account holds at least one open position.
func (a Account) IsActive() bool {
	return a.OpenPositions > 0
}

// Service manages ledger-wide staking totals.
// An account counts once in ActiveStakers however many pools it is in.
type Service struct {
	totalStaked   *store.Uint64
	activeStakers *store.Uint64
	pendingExit   *store.Uint64
	rewardsPaid   *store.Uint64
	penalties     *store.Uint64

	accounts *store.Mapping[acc.Address, Account]
}

func New(st *store.State) *Service {
	return &Service{
		totalStaked:   store.NewUint64(st, nameTotalStaked),
		activeStakers: store.NewUint64(st, nameActiveStakers),
		pendingExit:   store.NewUint64(st, namePendingExit),
		rewardsPaid:   store.NewUint64(st, nameRewardsPaid),
		penalties:     store.NewUint64(st, namePenalties),
		accounts:      store.NewMapping[acc.Address, Account](st, AccountSpace),
	}
}

func (s *Service) Totals() Totals {
	return Totals{
		TotalStaked:   s.totalStaked.Get(),
		ActiveStakers: s.activeStakers.Get(),
		PendingExit:   s.pendingExit.Get(),
		RewardsPaid:   s.rewardsPaid.Get(),
		Penalties:     s.penalties.Get(),
	}
}

func (s *Service) Account(account acc.Address) Account {
	a, _ := s.accounts.Get(account)
	return a
}

// RangeAccounts iterates all known accounts.
func (s *Service) RangeAccounts(fn func(acc.Address, Account) bool) {
	s.accounts.Range(fn)
}

// AddStake increases the global and the account staked totals.
func (s *Service) AddStake(account acc.Address, amount uint64) error {
	a := s.Account(account)
	staked, err := store.CheckedAdd("account-staked", a.Staked, amount)
	if err != nil {
		return err
	}
	if err := s.totalStaked.Add(amount); err != nil {
		return err
	}
	a.Staked = staked
	s.accounts.Set(account, a)
	return nil
}

// SubStake decreases the global and the account staked totals.
func (s *Service) SubStake(account acc.Address, amount uint64) error {
	a := s.Account(account)
	staked, err := store.CheckedSub("account-staked", a.Staked, amount)
	if err != nil {
		return err
	}
	if err := s.totalStaked.Sub(amount); err != nil {
		return err
	}
	a.Staked = staked
	s.accounts.Set(account, a)
	return nil
}

// OpenPosition records a position going from empty to non-empty.
func (s *Service) OpenPosition(account acc.Address) error {
	a := s.Account(account)
	if a.OpenPositions == 0 {
		if err := s.activeStakers.Add(1); err != nil {
			return err
		}
	}
	a.OpenPositions++
	s.accounts.Set(account, a)
	return nil
}

// ClosePosition records a position going back to empty.
func (s *Service) ClosePosition(account acc.Address) error {
	a := s.Account(account)
	open, err := store.CheckedSub("open-positions", a.OpenPositions, 1)
	if err != nil {
		return err
	}
	if open == 0 {
		if err := s.activeStakers.Sub(1); err != nil {
			return err
		}
	}
	a.OpenPositions = open
	s.accounts.Set(account, a)
	return nil
}

func (s *Service) AddPendingExit(amount uint64) error {
	return s.pendingExit.Add(amount)
}

func (s *Service) SubPendingExit(amount uint64) error {
	return s.pendingExit.Sub(amount)
}

// AddRewardPaid records reward settled to an account, paid out or compounded.
func (s *Service) AddRewardPaid(account acc.Address, amount uint64) error {
	a := s.Account(account)
	claimed, err := store.CheckedAdd("rewards-claimed", a.RewardsClaimed, amount)
	if err != nil {
		return err
	}
	if err := s.rewardsPaid.Add(amount); err != nil {
		return err
	}
	a.RewardsClaimed = claimed
	s.accounts.Set(account, a)
	return nil
}

func (s *Service) AddPenalty(amount uint64) error {
	return s.penalties.Add(amount)
}
