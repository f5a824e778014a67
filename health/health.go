// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package health reports whether a served ledger agrees with its journal.
package health

import (
	"context"
	"sync"
	"time"
)

// Journal reports the last operation it holds.
type Journal interface {
	LastSeq(ctx context.Context) (uint64, error)
}

type Snapshot struct {
	Variant  string     `json:"variant"`
	SavedAt  uint64     `json:"savedAt"`
	Seq      uint64     `json:"seq"`
	LoadedAt *time.Time `json:"loadedAt"`
}

type Status struct {
	Healthy       bool      `json:"healthy"`
	Snapshot      *Snapshot `json:"snapshot"`
	JournalSeq    uint64    `json:"journalSeq"`
	JournalSynced bool      `json:"journalSynced"`
}

type Health struct {
	lock     sync.RWMutex
	snapshot *Snapshot
	journal  Journal
}

func New(journal Journal) *Health {
	return &Health{journal: journal}
}

// SnapshotLoaded records the ledger being served.
func (h *Health) SnapshotLoaded(variant string, savedAt, seq uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	now := time.Now()
	h.snapshot = &Snapshot{Variant: variant, SavedAt: savedAt, Seq: seq, LoadedAt: &now}
}

// Status is healthy once a snapshot is loaded and the journal ends at the
// same operation.
func (h *Health) Status(ctx context.Context) (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	status := &Status{Snapshot: h.snapshot}
	if h.journal != nil {
		seq, err := h.journal.LastSeq(ctx)
		if err != nil {
			return nil, err
		}
		status.JournalSeq = seq
	}
	status.JournalSynced = h.snapshot != nil && status.JournalSeq == h.snapshot.Seq
	status.Healthy = h.snapshot != nil && (h.journal == nil || status.JournalSynced)
	return status, nil
}
