// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/globalstats"
	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/reverts"
	"github.com/vechain/stakeledger/staking/store"
)

// Space holds the positions, keyed by Key.
const Space = "position"

// Service owns the positions and keeps pool and global counters in step with them.
type Service struct {
	positions *store.Mapping[Key, Position]
	pools     *pool.Service
	stats     *globalstats.Service
	latched   bool
}

// New creates the service. latched selects the fixed-term reward latch behaviour.
func New(st *store.State, pools *pool.Service, stats *globalstats.Service, latched bool) *Service {
	return &Service{
		positions: store.NewMapping[Key, Position](st, Space),
		pools:     pools,
		stats:     stats,
		latched:   latched,
	}
}

func (s *Service) Get(account acc.Address, poolID uint64) Position {
	p, _ := s.positions.Get(Key{account, poolID})
	return p
}

// Range iterates every stored position, empty ones included.
func (s *Service) Range(fn func(Key, Position) bool) {
	s.positions.Range(fn)
}

// CheckDeposit runs the deposit checks and returns the pool and the current position.
func (s *Service) CheckDeposit(account acc.Address, poolID, amount, minimum uint64) (pool.Pool, Position, error) {
	p, err := s.pools.Get(poolID)
	if err != nil {
		return pool.Pool{}, Position{}, err
	}
	if !p.Active {
		return pool.Pool{}, Position{}, errors.Wrapf(reverts.ErrPoolInactive, "pool %d", poolID)
	}
	if amount == 0 || amount < minimum {
		return pool.Pool{}, Position{}, errors.Wrapf(reverts.ErrBelowMinimum, "amount %d, minimum %d", amount, minimum)
	}
	pos := s.Get(account, poolID)
	if err := CheckCap(p, pos.Amount, amount); err != nil {
		return pool.Pool{}, Position{}, err
	}
	return p, pos, nil
}

// CheckCap fails with reverts.ErrCapExceeded if current+extra breaches the pool cap.
func CheckCap(p pool.Pool, current, extra uint64) error {
	if current > p.MaxPerAccount || extra > p.MaxPerAccount-current {
		return errors.Wrapf(reverts.ErrCapExceeded, "pool %d cap %d", p.ID, p.MaxPerAccount)
	}
	return nil
}

// Deposit adds amount to the position. An empty position is opened at now;
// a top-up keeps its timestamps and latch.
func (s *Service) Deposit(account acc.Address, poolID, amount, now uint64) error {
	key := Key{account, poolID}
	pos := s.Get(account, poolID)

	if pos.IsEmpty() {
		pos = Position{Since: now, LastClaimedAt: now}
		if s.latched {
			pos.Latch = LatchActive
		}
		if err := s.pools.AddStaker(poolID); err != nil {
			return err
		}
		if err := s.stats.OpenPosition(account); err != nil {
			return err
		}
	}

	total, err := store.CheckedAdd("position-amount", pos.Amount, amount)
	if err != nil {
		return err
	}
	pos.Amount = total
	if err := s.addStake(account, poolID, amount); err != nil {
		return err
	}
	s.positions.Set(key, pos)
	return nil
}

// Increase folds amount into an open position without touching its timestamps.
func (s *Service) Increase(account acc.Address, poolID, amount uint64) error {
	pos := s.Get(account, poolID)
	if pos.IsEmpty() {
		return errors.Wrapf(reverts.ErrNothingStaked, "pool %d", poolID)
	}
	total, err := store.CheckedAdd("position-amount", pos.Amount, amount)
	if err != nil {
		return err
	}
	pos.Amount = total
	if err := s.addStake(account, poolID, amount); err != nil {
		return err
	}
	s.positions.Set(Key{account, poolID}, pos)
	return nil
}

// Clear empties the position and returns what it held.
func (s *Service) Clear(account acc.Address, poolID uint64) (Position, error) {
	pos := s.Get(account, poolID)
	if pos.IsEmpty() {
		return Position{}, errors.Wrapf(reverts.ErrNothingStaked, "pool %d", poolID)
	}
	if err := s.pools.SubStake(poolID, pos.Amount); err != nil {
		return Position{}, err
	}
	if err := s.stats.SubStake(account, pos.Amount); err != nil {
		return Position{}, err
	}
	if err := s.pools.RemoveStaker(poolID); err != nil {
		return Position{}, err
	}
	if err := s.stats.ClosePosition(account); err != nil {
		return Position{}, err
	}
	s.positions.Set(Key{account, poolID}, Position{})
	return pos, nil
}

// Settle advances the accrual window start to now. Fixed-term positions are suspended.
func (s *Service) Settle(account acc.Address, poolID, now uint64) error {
	pos := s.Get(account, poolID)
	if pos.IsEmpty() {
		return errors.Wrapf(reverts.ErrNothingStaked, "pool %d", poolID)
	}
	pos.LastClaimedAt = now
	if s.latched {
		pos.Latch = LatchSuspended
	}
	s.positions.Set(Key{account, poolID}, pos)
	return nil
}

// Restart recommits an open position at now and re-arms its latch.
func (s *Service) Restart(account acc.Address, poolID, now uint64) error {
	pos := s.Get(account, poolID)
	if pos.IsEmpty() {
		return errors.Wrapf(reverts.ErrNothingStaked, "pool %d", poolID)
	}
	pos.Since = now
	pos.LastClaimedAt = now
	if s.latched {
		pos.Latch = LatchActive
	}
	s.positions.Set(Key{account, poolID}, pos)
	return nil
}

func (s *Service) addStake(account acc.Address, poolID, amount uint64) error {
	if err := s.pools.AddStake(poolID, amount); err != nil {
		return err
	}
	return s.stats.AddStake(account, amount)
}
