// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"math/bits"

	"github.com/pkg/errors"
)

// CounterSpace is the space holding named counters.
const CounterSpace = "counter"

// Mapping is a typed view on one space of the state, similar to a mapping in Solidity.
// Values are stored by value: V must not contain pointers, slices or maps.
type Mapping[K comparable, V any] struct {
	state *State
	space string
}

func NewMapping[K comparable, V any](state *State, space string) *Mapping[K, V] {
	return &Mapping[K, V]{state: state, space: space}
}

// Get returns the value for key, or the zero value and false.
func (m *Mapping[K, V]) Get(key K) (value V, ok bool) {
	raw, ok := m.state.get(slot{m.space, key})
	if !ok {
		return value, false
	}
	return raw.(V), true
}

func (m *Mapping[K, V]) Set(key K, value V) {
	m.state.put(slot{m.space, key}, value)
}

// Range calls fn for every key of the space until fn returns false.
// The iteration order is unspecified.
func (m *Mapping[K, V]) Range(fn func(key K, value V) bool) {
	for _, k := range m.state.keys(m.space) {
		key := k.(K)
		value, _ := m.Get(key)
		if !fn(key, value) {
			return
		}
	}
}

// Uint64 is a named counter stored in the state.
type Uint64 struct {
	state *State
	name  string
}

func NewUint64(state *State, name string) *Uint64 {
	return &Uint64{state: state, name: name}
}

func (u *Uint64) Get() uint64 {
	raw, ok := u.state.get(slot{CounterSpace, u.name})
	if !ok {
		return 0
	}
	return raw.(uint64)
}

func (u *Uint64) Set(value uint64) {
	u.state.put(slot{CounterSpace, u.name}, value)
}

func (u *Uint64) Add(delta uint64) error {
	sum, err := CheckedAdd(u.name, u.Get(), delta)
	if err != nil {
		return err
	}
	u.Set(sum)
	return nil
}

func (u *Uint64) Sub(delta uint64) error {
	diff, err := CheckedSub(u.name, u.Get(), delta)
	if err != nil {
		return err
	}
	u.Set(diff)
	return nil
}

// CheckedAdd returns a+b or an overflow error naming the quantity.
func CheckedAdd(name string, a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, errors.Errorf("%s overflow", name)
	}
	return sum, nil
}

// CheckedSub returns a-b or an error if the result would be negative.
func CheckedSub(name string, a, b uint64) (uint64, error) {
	if b > a {
		return 0, errors.Errorf("%s cannot be negative", name)
	}
	return a - b, nil
}
