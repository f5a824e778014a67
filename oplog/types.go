// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oplog

import (
	"encoding/json"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/ledger"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Entry is a stored operation record. Fields keep their JSON form.
type Entry struct {
	Seq     uint64          `json:"seq"`
	Variant string          `json:"variant"`
	Op      string          `json:"op"`
	Account acc.Address     `json:"account"`
	Time    uint64          `json:"time"`
	Legs    []ledger.Leg    `json:"legs"`
	Fields  json.RawMessage `json:"fields,omitempty"`
}

// Filter selects records. Zero fields match everything.
type Filter struct {
	Account *acc.Address
	Op      string
	From    uint64 // ledger time, inclusive
	To      uint64 // ledger time, inclusive, ignored when below From
	Offset  uint64
	Limit   uint64
	Order   Order
}

// TransferFilter selects legs by participant and asset.
type TransferFilter struct {
	Asset   *acc.Address
	Account *acc.Address // sender or recipient
	Offset  uint64
	Limit   uint64
}

// Transfer is a stored leg of an operation.
type Transfer struct {
	Seq   uint64 `json:"seq"`
	Index uint32 `json:"index"`
	ledger.Leg
}
