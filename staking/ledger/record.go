// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"fmt"

	"github.com/vechain/stakeledger/acc"
)

// Record describes one committed operation.
type Record struct {
	Seq     uint64         `json:"seq"`
	Variant string         `json:"variant"`
	Op      string         `json:"op"`
	Account acc.Address    `json:"account"`
	Time    uint64         `json:"time"`
	Legs    []Leg          `json:"legs"`
	Fields  map[string]any `json:"fields,omitempty"`
}

func newRecord(seq uint64, variant string, op Op, tx *Tx) *Record {
	fields := make(map[string]any)
	pairs := append(append([]any(nil), op.Ctx...), tx.ctx...)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			key = fmt.Sprint(pairs[i])
		}
		fields[key] = pairs[i+1]
	}
	return &Record{
		Seq:     seq,
		Variant: variant,
		Op:      op.Name,
		Account: op.Account,
		Time:    tx.Now,
		Legs:    append([]Leg(nil), tx.legs...),
		Fields:  fields,
	}
}
