// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/staking/reverts"
	"github.com/vechain/stakeledger/staking/store"
)

// Space holds the pools, keyed by id.
const Space = "pool"

const nameCount = "pool-count"

// Service is the append-only pool registry. Ids are sequential from zero and never reused.
type Service struct {
	pools  *store.Mapping[uint64, Pool]
	count  *store.Uint64
	limits Limits
}

func New(st *store.State, limits Limits) *Service {
	return &Service{
		pools:  store.NewMapping[uint64, Pool](st, Space),
		count:  store.NewUint64(st, nameCount),
		limits: limits,
	}
}

// Validate checks cfg against the registry limits.
func (s *Service) Validate(cfg Config) error {
	switch {
	case cfg.RewardAsset.IsZero():
		return errors.Wrap(reverts.ErrInvalidConfig, "reward asset is required")
	case cfg.Rate == 0:
		return errors.Wrap(reverts.ErrInvalidConfig, "rate must be greater than zero")
	case cfg.Rate > s.limits.MaxRate:
		return errors.Wrapf(reverts.ErrInvalidConfig, "rate %d exceeds maximum %d", cfg.Rate, s.limits.MaxRate)
	case s.limits.RequireLock && cfg.LockDuration == 0:
		return errors.Wrap(reverts.ErrInvalidConfig, "lock duration must be greater than zero")
	case cfg.MaxPerAccount == 0:
		return errors.Wrap(reverts.ErrInvalidConfig, "max per account must be greater than zero")
	}
	return nil
}

// Create appends a new active pool and returns its id.
func (s *Service) Create(cfg Config) (uint64, error) {
	if err := s.Validate(cfg); err != nil {
		return 0, err
	}
	id := s.count.Get()
	if err := s.count.Add(1); err != nil {
		return 0, err
	}
	lock := cfg.LockDuration
	if !s.limits.RequireLock {
		lock = 0
	}
	s.pools.Set(id, Pool{
		ID:            id,
		RewardAsset:   cfg.RewardAsset,
		Rate:          cfg.Rate,
		LockDuration:  lock,
		MaxPerAccount: cfg.MaxPerAccount,
		Active:        true,
	})
	return id, nil
}

// Get returns the pool or reverts.ErrNotFound.
func (s *Service) Get(id uint64) (Pool, error) {
	if id >= s.count.Get() {
		return Pool{}, errors.Wrapf(reverts.ErrNotFound, "pool %d", id)
	}
	p, _ := s.pools.Get(id)
	return p, nil
}

func (s *Service) Count() uint64 {
	return s.count.Get()
}

// All returns every pool in id order.
func (s *Service) All() []Pool {
	n := s.count.Get()
	pools := make([]Pool, 0, n)
	for id := uint64(0); id < n; id++ {
		p, _ := s.pools.Get(id)
		pools = append(pools, p)
	}
	return pools
}

// SetActive toggles the deposit and accrual gate of a pool.
func (s *Service) SetActive(id uint64, active bool) error {
	p, err := s.Get(id)
	if err != nil {
		return err
	}
	p.Active = active
	s.pools.Set(id, p)
	return nil
}

func (s *Service) AddStake(id uint64, amount uint64) error {
	return s.update(id, func(p *Pool) (err error) {
		p.TotalStaked, err = store.CheckedAdd("pool-staked", p.TotalStaked, amount)
		return
	})
}

func (s *Service) SubStake(id uint64, amount uint64) error {
	return s.update(id, func(p *Pool) (err error) {
		p.TotalStaked, err = store.CheckedSub("pool-staked", p.TotalStaked, amount)
		return
	})
}

func (s *Service) AddStaker(id uint64) error {
	return s.update(id, func(p *Pool) (err error) {
		p.ActiveStakers, err = store.CheckedAdd("pool-stakers", p.ActiveStakers, 1)
		return
	})
}

func (s *Service) RemoveStaker(id uint64) error {
	return s.update(id, func(p *Pool) (err error) {
		p.ActiveStakers, err = store.CheckedSub("pool-stakers", p.ActiveStakers, 1)
		return
	})
}

func (s *Service) update(id uint64, fn func(p *Pool) error) error {
	p, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := fn(&p); err != nil {
		return err
	}
	s.pools.Set(id, p)
	return nil
}
