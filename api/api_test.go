// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/api/accounts"
	"github.com/vechain/stakeledger/api/stats"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/oplog"
	"github.com/vechain/stakeledger/staking/fixedterm"
	"github.com/vechain/stakeledger/staking/ledger"
	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/test/testledger"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

const day = 24 * 3600

var (
	alice = acc.FromLabel("alice")
	bob   = acc.FromLabel("bob")
)

type fixture struct {
	ts      *httptest.Server
	ledger  *fixedterm.Ledger
	env     *testledger.Env
	closeFn func()
}

func newFixture(t *testing.T) *fixture {
	e := testledger.NewEnv()
	l, err := fixedterm.New(fixedterm.DefaultConfig(), e.Env())
	require.NoError(t, err)
	stake := l.Options().StakeAsset
	require.NoError(t, e.Fund(stake, 10_000, alice, bob))
	require.NoError(t, e.Fund(stake, 100_000, l.Options().Vault))

	records := make(chan *ledger.Record, 16)
	sub := l.SubscribeRecords(records)
	defer sub.Unsubscribe()

	id, err := l.CreatePool(testledger.Admin, pool.Config{RewardAsset: stake, Rate: 1000, LockDuration: day, MaxPerAccount: 5000})
	require.NoError(t, err)
	_, err = l.CreatePool(testledger.Admin, pool.Config{RewardAsset: stake, Rate: 500, LockDuration: 2 * day, MaxPerAccount: 5000})
	require.NoError(t, err)
	require.NoError(t, l.Deposit(alice, id, 1000))
	require.NoError(t, l.Deposit(bob, id, 3000))
	e.Clock.Set(day / 2)
	_, err = l.RequestDelayedExit(bob, id)
	require.NoError(t, err)

	journal, err := oplog.NewMem()
	require.NoError(t, err)
	for len(records) > 0 {
		require.NoError(t, journal.Write(context.Background(), <-records))
	}

	handler, closeSubs := New(l, journal, Options{AllowedOrigins: "*", EnableMetrics: true, HistoryLimit: 10})
	ts := httptest.NewServer(handler)
	f := &fixture{ts: ts, ledger: l, env: e, closeFn: func() {
		ts.Close()
		closeSubs()
		journal.Close()
	}}
	t.Cleanup(f.closeFn)
	return f
}

func (f *fixture) get(t *testing.T, path string) ([]byte, int) {
	res, err := http.Get(f.ts.URL + path) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func (f *fixture) getJSON(t *testing.T, path string, v any) {
	body, code := f.get(t, path)
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, v))
}

func TestPools(t *testing.T) {
	f := newFixture(t)

	var all []pool.Pool
	f.getJSON(t, "/pools", &all)
	require.Len(t, all, 2)
	assert.Equal(t, uint64(2*day), all[1].LockDuration)

	var p pool.Pool
	f.getJSON(t, "/pools/0", &p)
	assert.Equal(t, uint64(1000), p.TotalStaked)
	assert.Equal(t, uint64(1), p.ActiveStakers)

	var s pool.Stats
	f.getJSON(t, "/pools/0/stats", &s)
	assert.Equal(t, pool.Stats{TotalStaked: 1000, ActiveStakers: 1}, s)

	_, code := f.get(t, "/pools/9")
	assert.Equal(t, http.StatusNotFound, code)
	_, code = f.get(t, "/pools/x")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStats(t *testing.T) {
	f := newFixture(t)

	var s stats.Response
	f.getJSON(t, "/stats", &s)
	assert.Equal(t, fixedterm.Variant, s.Variant)
	assert.Equal(t, uint64(day/2), s.Now)
	assert.Equal(t, uint64(1000), s.TotalStaked)
	assert.Equal(t, uint64(3000), s.PendingExit)
}

func TestAccounts(t *testing.T) {
	f := newFixture(t)

	var a accounts.Account
	f.getJSON(t, "/accounts/"+alice.String(), &a)
	assert.Equal(t, alice, a.Address)
	assert.Equal(t, uint64(1), a.OpenPositions)
	assert.Equal(t, uint64(1000), a.Staked)

	var pos accounts.Position
	f.getJSON(t, "/accounts/"+alice.String()+"/positions/0", &pos)
	assert.Equal(t, uint64(1000), pos.Amount)

	var rw accounts.Reward
	f.getJSON(t, "/accounts/"+alice.String()+"/rewards/0", &rw)
	assert.Equal(t, accounts.Reward{Pool: 0, At: day / 2, Pending: 0}, rw)
	f.getJSON(t, "/accounts/"+alice.String()+"/rewards/0?at=172800", &rw)
	assert.Equal(t, accounts.Reward{Pool: 0, At: 2 * day, Pending: 100}, rw)

	var exits accounts.Exits
	f.getJSON(t, "/accounts/"+bob.String()+"/exits/0", &exits)
	require.NotNil(t, exits.Latest)
	assert.Equal(t, uint64(3000), exits.Latest.Amount)
	assert.Len(t, exits.History, 1)

	f.getJSON(t, "/accounts/"+alice.String()+"/exits/0", &exits)
	assert.Nil(t, exits.Latest)
	assert.Empty(t, exits.History)

	_, code := f.get(t, "/accounts/0xbad")
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = f.get(t, "/accounts/"+alice.String()+"/positions/7")
	assert.Equal(t, http.StatusNotFound, code)
	_, code = f.get(t, "/accounts/"+alice.String()+"/rewards/0?at=soon")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)

	var entries []oplog.Entry
	f.getJSON(t, "/accounts/"+bob.String()+"/history", &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "deposit", entries[0].Op)
	assert.Equal(t, "request delayed exit", entries[1].Op)

	f.getJSON(t, "/accounts/"+bob.String()+"/history?order=desc&limit=1", &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "request delayed exit", entries[0].Op)

	var transfers []oplog.Transfer
	f.getJSON(t, "/accounts/"+alice.String()+"/transfers", &transfers)
	require.Len(t, transfers, 1)
	assert.Equal(t, uint64(1000), transfers[0].Amount)

	_, code := f.get(t, "/accounts/"+alice.String()+"/history?limit=11")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMetricsMiddleware(t *testing.T) {
	f := newFixture(t)

	f.get(t, "/pools/0")
	f.get(t, "/pools/9")
	f.get(t, "/pools/9")

	body, _ := f.get(t, "/metrics")
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)

	counts := make(map[string]float64)
	for _, m := range families["stakeledger_api_request_count"].GetMetric() {
		labels := make(map[string]string)
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		if labels["path"] == "/pools/{id}" {
			counts[labels["code"]] += m.GetCounter().GetValue()
		}
	}
	assert.GreaterOrEqual(t, counts["200"], float64(1))
	assert.GreaterOrEqual(t, counts["404"], float64(2))

	assert.NotNil(t, families["stakeledger_ledger_operations_count"])
}
