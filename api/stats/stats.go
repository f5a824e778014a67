// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stats

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/staking/globalstats"
)

// Reader is the part of a ledger the stats API reads.
type Reader interface {
	Variant() string
	Now() uint64
	ProtocolStats() globalstats.Totals
}

// Response is the protocol wide view.
type Response struct {
	Variant string `json:"variant"`
	Now     uint64 `json:"now"`
	globalstats.Totals
}

type Stats struct {
	reader Reader
}

func New(reader Reader) *Stats {
	return &Stats{reader}
}

func (s *Stats) handleGetStats(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &Response{
		Variant: s.reader.Variant(),
		Now:     s.reader.Now(),
		Totals:  s.reader.ProtocolStats(),
	})
}

func (s *Stats) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleGetStats))
}
