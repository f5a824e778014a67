// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/staking/pool"
)

// Reader is the part of a ledger the pools API reads.
type Reader interface {
	Pool(id uint64) (pool.Pool, error)
	Pools() []pool.Pool
	PoolStats(id uint64) (pool.Stats, error)
}

type Pools struct {
	reader Reader
}

func New(reader Reader) *Pools {
	return &Pools{reader}
}

func (p *Pools) handleGetPools(w http.ResponseWriter, _ *http.Request) error {
	pools := p.reader.Pools()
	if pools == nil {
		pools = []pool.Pool{}
	}
	return utils.WriteJSON(w, pools)
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	pl, err := p.reader.Pool(id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, pl)
}

func (p *Pools) handleGetPoolStats(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	stats, err := p.reader.PoolStats(id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, stats)
}

func parseID(req *http.Request) (uint64, error) {
	id, err := utils.ParseUint64(mux.Vars(req)["id"], 0)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetPools))
	sub.Path("/{id}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{id}/stats").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetPoolStats))
}
