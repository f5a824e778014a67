// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/stackedmap"
)

type slot struct {
	space string
	key   any
}

// State is the journaled key/value state shared by the ledger services.
// Writes made after Checkpoint are visible to reads immediately and are either
// folded into the committed set by Commit or discarded by RevertTo.
type State struct {
	committed map[slot]any
	journal   *stackedmap.StackedMap[slot, any]
}

func New() *State {
	s := &State{committed: make(map[slot]any)}
	s.journal = stackedmap.New(func(k slot) (any, bool) {
		v, ok := s.committed[k]
		return v, ok
	})
	return s
}

// Checkpoint opens a journal level and returns the depth to revert to.
func (s *State) Checkpoint() int {
	return s.journal.Push()
}

// RevertTo drops every write made since the checkpoint cp.
func (s *State) RevertTo(cp int) {
	s.journal.PopTo(cp)
}

// Commit folds all journaled writes into the committed set.
func (s *State) Commit() {
	for _, entry := range s.journal.Journal() {
		s.committed[entry.Key] = entry.Value
	}
	s.journal.PopTo(0)
}

// Pending reports whether a checkpoint is open.
func (s *State) Pending() bool {
	return s.journal.Depth() > 0
}

func (s *State) get(k slot) (any, bool) {
	return s.journal.Get(k)
}

func (s *State) put(k slot, v any) {
	if s.journal.Depth() == 0 {
		s.committed[k] = v
		return
	}
	s.journal.Put(k, v)
}

// keys returns the keys of a space, committed and journaled.
func (s *State) keys(space string) []any {
	seen := make(map[any]struct{})
	var keys []any
	for k := range s.committed {
		if k.space != space {
			continue
		}
		seen[k.key] = struct{}{}
		keys = append(keys, k.key)
	}
	for _, entry := range s.journal.Journal() {
		if entry.Key.space != space {
			continue
		}
		if _, ok := seen[entry.Key.key]; ok {
			continue
		}
		seen[entry.Key.key] = struct{}{}
		keys = append(keys, entry.Key.key)
	}
	return keys
}

// Export walks every committed entry.
func (s *State) Export(fn func(space string, key, value any) error) error {
	if s.Pending() {
		return errors.New("store: export with open checkpoint")
	}
	for k, v := range s.committed {
		if err := fn(k.space, k.key, v); err != nil {
			return err
		}
	}
	return nil
}

// Import writes a committed entry directly, bypassing the journal.
func (s *State) Import(space string, key, value any) error {
	if s.Pending() {
		return errors.New("store: import with open checkpoint")
	}
	s.committed[slot{space, key}] = value
	return nil
}
