// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/exit"
	"github.com/vechain/stakeledger/staking/globalstats"
	"github.com/vechain/stakeledger/staking/ledger"
	"github.com/vechain/stakeledger/staking/position"
	"github.com/vechain/stakeledger/staking/store"
)

type poolTally struct {
	staked  uint64
	stakers uint64
}

type accountTally struct {
	open   uint64
	staked uint64
}

// CheckInvariants recomputes every aggregate from the positions and tickets
// and compares it with the running counters.
func CheckInvariants(core *ledger.Core) error {
	return core.View(func(*store.State) error {
		svc := core.Services()

		pools := make(map[uint64]*poolTally)
		accounts := make(map[acc.Address]*accountTally)
		var total uint64

		svc.Positions.Range(func(k position.Key, pos position.Position) bool {
			if pos.IsEmpty() {
				return true
			}
			pt := pools[k.Pool]
			if pt == nil {
				pt = &poolTally{}
				pools[k.Pool] = pt
			}
			pt.staked += pos.Amount
			pt.stakers++

			at := accounts[k.Account]
			if at == nil {
				at = &accountTally{}
				accounts[k.Account] = at
			}
			at.open++
			at.staked += pos.Amount
			total += pos.Amount
			return true
		})

		var sumPools uint64
		for _, p := range svc.Pools.All() {
			want := pools[p.ID]
			if want == nil {
				want = &poolTally{}
			}
			if p.TotalStaked != want.staked {
				return errors.Errorf("pool %d total staked %d, positions sum to %d", p.ID, p.TotalStaked, want.staked)
			}
			if p.ActiveStakers != want.stakers {
				return errors.Errorf("pool %d active stakers %d, positions count %d", p.ID, p.ActiveStakers, want.stakers)
			}
			sumPools += p.TotalStaked
		}

		totals := svc.Stats.Totals()
		if totals.TotalStaked != sumPools || totals.TotalStaked != total {
			return errors.Errorf("global total staked %d, pools sum %d, positions sum %d", totals.TotalStaked, sumPools, total)
		}
		if totals.ActiveStakers != uint64(len(accounts)) {
			return errors.Errorf("global active stakers %d, %d accounts hold a position", totals.ActiveStakers, len(accounts))
		}

		var err error
		svc.Stats.RangeAccounts(func(a acc.Address, got globalstats.Account) bool {
			want := accounts[a]
			if want == nil {
				want = &accountTally{}
			}
			if got.OpenPositions != want.open || got.Staked != want.staked {
				err = errors.Errorf("account %s has %d/%d recorded, %d/%d in positions", a, got.OpenPositions, got.Staked, want.open, want.staked)
				return false
			}
			return true
		})
		if err != nil {
			return err
		}

		var pending uint64
		unclaimed := make(map[position.Key]int)
		svc.Exits.Range(func(k exit.TicketKey, t exit.PendingExit) bool {
			if !t.Claimed {
				pending += t.Amount
				unclaimed[position.Key{Account: k.Account, Pool: k.Pool}]++
			}
			return true
		})
		if pending != totals.PendingExit {
			return errors.Errorf("pending exit %d, unclaimed tickets sum to %d", totals.PendingExit, pending)
		}
		for k, n := range unclaimed {
			if n > 1 {
				return errors.Errorf("account %s has %d unclaimed tickets in pool %d", k.Account, n, k.Pool)
			}
		}
		return nil
	})
}

// Fingerprint renders the committed state deterministically, for comparing
// the state before and after a rejected operation.
func Fingerprint(core *ledger.Core) (string, error) {
	var lines []string
	err := core.View(func(st *store.State) error {
		return st.Export(func(space string, key, value any) error {
			lines = append(lines, fmt.Sprintf("%s/%v=%+v", space, key, value))
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}
