// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/exit"
	"github.com/vechain/stakeledger/staking/globalstats"
	"github.com/vechain/stakeledger/staking/position"
)

type Account struct {
	Address acc.Address `json:"address"`
	globalstats.Account
}

type Position struct {
	Pool uint64 `json:"pool"`
	position.Position
}

type Exits struct {
	Pool    uint64             `json:"pool"`
	Latest  *exit.PendingExit  `json:"latest"`
	History []exit.PendingExit `json:"history"`
}

type Reward struct {
	Pool    uint64 `json:"pool"`
	At      uint64 `json:"at"`
	Pending uint64 `json:"pending"`
}
