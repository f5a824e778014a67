// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/oplog"
	"github.com/vechain/stakeledger/staking/exit"
	"github.com/vechain/stakeledger/staking/globalstats"
	"github.com/vechain/stakeledger/staking/position"
)

// Reader is the part of a ledger the accounts API reads.
type Reader interface {
	Now() uint64
	AccountStats(account acc.Address) globalstats.Account
	PositionOf(account acc.Address, poolID uint64) (position.Position, error)
	PendingExitOf(account acc.Address, poolID uint64) (exit.PendingExit, bool, error)
	ExitHistoryOf(account acc.Address, poolID uint64) ([]exit.PendingExit, error)
	PendingRewardAt(account acc.Address, poolID, ts uint64) (uint64, error)
}

// Journal serves the operation history. It is optional.
type Journal interface {
	Filter(ctx context.Context, f *oplog.Filter) ([]*oplog.Entry, error)
	FilterTransfers(ctx context.Context, f *oplog.TransferFilter) ([]*oplog.Transfer, error)
}

type Accounts struct {
	reader  Reader
	journal Journal
	limit   uint64
}

// New creates the accounts API. History queries return at most limit entries.
func New(reader Reader, journal Journal, limit uint64) *Accounts {
	return &Accounts{reader, journal, limit}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Account{Address: addr, Account: a.reader.AccountStats(addr)})
}

func (a *Accounts) handleGetPosition(w http.ResponseWriter, req *http.Request) error {
	addr, poolID, err := parseAddressAndPool(req)
	if err != nil {
		return err
	}
	pos, err := a.reader.PositionOf(addr, poolID)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Position{Pool: poolID, Position: pos})
}

func (a *Accounts) handleGetExits(w http.ResponseWriter, req *http.Request) error {
	addr, poolID, err := parseAddressAndPool(req)
	if err != nil {
		return err
	}
	latest, ok, err := a.reader.PendingExitOf(addr, poolID)
	if err != nil {
		return err
	}
	history, err := a.reader.ExitHistoryOf(addr, poolID)
	if err != nil {
		return err
	}
	resp := &Exits{Pool: poolID, History: history}
	if ok {
		resp.Latest = &latest
	}
	if resp.History == nil {
		resp.History = []exit.PendingExit{}
	}
	return utils.WriteJSON(w, resp)
}

func (a *Accounts) handleGetReward(w http.ResponseWriter, req *http.Request) error {
	addr, poolID, err := parseAddressAndPool(req)
	if err != nil {
		return err
	}
	at, err := utils.ParseUint64(req.URL.Query().Get("at"), a.reader.Now())
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "at"))
	}
	pending, err := a.reader.PendingRewardAt(addr, poolID, at)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Reward{Pool: poolID, At: at, Pending: pending})
}

func (a *Accounts) handleGetHistory(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	offset, limit, err := a.parsePage(req)
	if err != nil {
		return err
	}
	filter := &oplog.Filter{Account: &addr, Op: req.URL.Query().Get("op"), Offset: offset, Limit: limit}
	if req.URL.Query().Get("order") == string(oplog.DESC) {
		filter.Order = oplog.DESC
	}
	entries, err := a.journal.Filter(req.Context(), filter)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*oplog.Entry{}
	}
	return utils.WriteJSON(w, entries)
}

func (a *Accounts) handleGetTransfers(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	offset, limit, err := a.parsePage(req)
	if err != nil {
		return err
	}
	filter := &oplog.TransferFilter{Account: &addr, Offset: offset, Limit: limit}
	if s := req.URL.Query().Get("asset"); s != "" {
		asset, err := acc.ParseAddress(s)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "asset"))
		}
		filter.Asset = asset
	}
	transfers, err := a.journal.FilterTransfers(req.Context(), filter)
	if err != nil {
		return err
	}
	if transfers == nil {
		transfers = []*oplog.Transfer{}
	}
	return utils.WriteJSON(w, transfers)
}

func (a *Accounts) parsePage(req *http.Request) (offset, limit uint64, err error) {
	query := req.URL.Query()
	if offset, err = utils.ParseUint64(query.Get("offset"), 0); err != nil {
		return 0, 0, utils.BadRequest(errors.WithMessage(err, "offset"))
	}
	if limit, err = utils.ParseUint64(query.Get("limit"), a.limit); err != nil {
		return 0, 0, utils.BadRequest(errors.WithMessage(err, "limit"))
	}
	if limit == 0 || limit > a.limit {
		return 0, 0, utils.BadRequest(errors.Errorf("limit must be between 1 and %d", a.limit))
	}
	return offset, limit, nil
}

func parseAddress(req *http.Request) (acc.Address, error) {
	addr, err := acc.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return acc.Address{}, utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return *addr, nil
}

func parseAddressAndPool(req *http.Request) (acc.Address, uint64, error) {
	addr, err := parseAddress(req)
	if err != nil {
		return acc.Address{}, 0, err
	}
	poolID, err := utils.ParseUint64(mux.Vars(req)["pool"], 0)
	if err != nil {
		return acc.Address{}, 0, utils.BadRequest(errors.WithMessage(err, "pool"))
	}
	return addr, poolID, nil
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/positions/{pool}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetPosition))
	sub.Path("/{address}/exits/{pool}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetExits))
	sub.Path("/{address}/rewards/{pool}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetReward))
	if a.journal != nil {
		sub.Path("/{address}/history").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetHistory))
		sub.Path("/{address}/transfers").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetTransfers))
	}
}
