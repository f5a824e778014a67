// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"

	"github.com/ethereum/go-ethereum/event"

	"github.com/vechain/stakeledger/oplog"
	"github.com/vechain/stakeledger/staking/ledger"
)

// journalWriter copies the records of a replayed ledger into the oplog.
// It subscribes on creation, so no operation committed afterwards is missed.
type journalWriter struct {
	opLog *oplog.OpLog
	ch    chan *ledger.Record
	sub   event.Subscription
	done  chan struct{}
	err   chan error
}

func newJournalWriter(opLog *oplog.OpLog, core *ledger.Core) *journalWriter {
	ch := make(chan *ledger.Record, 64)
	j := &journalWriter{
		opLog: opLog,
		ch:    ch,
		sub:   core.SubscribeRecords(ch),
		done:  make(chan struct{}),
		err:   make(chan error, 1),
	}
	go j.loop()
	return j
}

func (j *journalWriter) loop() {
	write := func(batch []*ledger.Record) error {
		return j.opLog.Write(context.Background(), batch...)
	}
	for {
		select {
		case r := <-j.ch:
			if err := write([]*ledger.Record{r}); err != nil {
				j.err <- err
				// keep draining so the ledger never blocks on a dead journal
				for {
					select {
					case <-j.ch:
					case <-j.done:
						return
					}
				}
			}
		case <-j.done:
			var batch []*ledger.Record
			for {
				select {
				case r := <-j.ch:
					batch = append(batch, r)
				default:
					if len(batch) > 0 {
						j.err <- write(batch)
					} else {
						j.err <- nil
					}
					return
				}
			}
		}
	}
}

// Close stops the writer after storing what is buffered and returns the
// first write error.
func (j *journalWriter) Close() error {
	j.sub.Unsubscribe()
	close(j.done)
	return <-j.err
}
