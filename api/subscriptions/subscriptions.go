// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams committed ledger operations over websocket.
package subscriptions

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/staking/ledger"
)

var (
	logger                = log.WithContext("pkg", "subscriptions")
	metricActiveWebsocket = metrics.LazyLoadGaugeVec("api_active_websocket_count", []string{"subject"})
)

const (
	pingPeriod    = 30 * time.Second
	pongWait      = pingPeriod * 2
	writeWait     = 10 * time.Second
	listenerQueue = 64
)

// Source publishes committed operations.
type Source interface {
	SubscribeRecords(ch chan<- *ledger.Record) event.Subscription
}

type listener struct {
	account *acc.Address
	op      string
	ch      chan []byte
}

func (l *listener) match(r *ledger.Record) bool {
	if l.account != nil && *l.account != r.Account {
		return false
	}
	return l.op == "" || l.op == r.Op
}

type Subscriptions struct {
	upgrader  *websocket.Upgrader
	cache     *messageCache
	mu        sync.RWMutex
	listeners map[*listener]struct{}
	done      chan struct{}
	wg        sync.WaitGroup
}

// New starts dispatching the records of source. allowedOrigins of "*" accepts
// every origin.
func New(source Source, allowedOrigins []string) *Subscriptions {
	s := &Subscriptions{
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		cache:     newMessageCache(256),
		listeners: make(map[*listener]struct{}),
		done:      make(chan struct{}),
	}

	ch := make(chan *ledger.Record, listenerQueue)
	sub := source.SubscribeRecords(ch)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer sub.Unsubscribe()
		s.dispatchLoop(ch, sub.Err())
	}()
	return s
}

func (s *Subscriptions) dispatchLoop(ch <-chan *ledger.Record, errCh <-chan error) {
	for {
		select {
		case r := <-ch:
			msg, _, err := s.cache.GetOrAdd(r.Seq, func() ([]byte, error) { return json.Marshal(r) })
			if err != nil {
				logger.Warn("failed to encode record", "seq", r.Seq, "err", err)
				continue
			}
			s.mu.RLock()
			for l := range s.listeners {
				if !l.match(r) {
					continue
				}
				select {
				case l.ch <- msg:
				default: // broadcast in a non-blocking manner, so there's no guarantee that all subscriber receives it
				}
			}
			s.mu.RUnlock()
		case <-errCh:
			return
		case <-s.done:
			return
		}
	}
}

func (s *Subscriptions) handleSubscribeOps(w http.ResponseWriter, req *http.Request) error {
	l := &listener{op: req.URL.Query().Get("op"), ch: make(chan []byte, listenerQueue)}
	if v := req.URL.Query().Get("account"); v != "" {
		addr, err := acc.ParseAddress(v)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "account"))
		}
		l.account = addr
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil // the upgrader has already replied
	}
	defer conn.Close()

	s.mu.Lock()
	s.listeners[l] = struct{}{}
	s.mu.Unlock()
	metricActiveWebsocket().AddWithLabel(1, map[string]string{"subject": "ops"})
	defer func() {
		s.mu.Lock()
		delete(s.listeners, l)
		s.mu.Unlock()
		metricActiveWebsocket().AddWithLabel(-1, map[string]string{"subject": "ops"})
	}()

	return s.pipe(conn, l.ch)
}

// pipe writes messages to conn until the peer goes away or the service closes.
func (s *Subscriptions) pipe(conn *websocket.Conn, msgs <-chan []byte) error {
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-msgs:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return nil
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-closed:
			return nil
		case <-s.done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return nil
		}
	}
}

// Close stops dispatching and ends open streams.
func (s *Subscriptions) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/ops").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeOps))
}
