// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package snapshot

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/staking/exit"
	"github.com/vechain/stakeledger/staking/globalstats"
	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/position"
	"github.com/vechain/stakeledger/staking/store"
)

// codec encodes the keys and values of one state space.
type codec interface {
	encode(key, value any) ([]byte, []byte, error)
	decode(key, value []byte) (any, any, error)
}

type rlpCodec[K, V any] struct{}

func (rlpCodec[K, V]) encode(key, value any) ([]byte, []byte, error) {
	k, ok := key.(K)
	if !ok {
		return nil, nil, errors.Errorf("unexpected key type %T", key)
	}
	v, ok := value.(V)
	if !ok {
		return nil, nil, errors.Errorf("unexpected value type %T", value)
	}
	kb, err := rlp.EncodeToBytes(k)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode key")
	}
	vb, err := rlp.EncodeToBytes(v)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode value")
	}
	return kb, vb, nil
}

func (rlpCodec[K, V]) decode(key, value []byte) (any, any, error) {
	var (
		k K
		v V
	)
	if err := rlp.DecodeBytes(key, &k); err != nil {
		return nil, nil, errors.Wrap(err, "decode key")
	}
	if err := rlp.DecodeBytes(value, &v); err != nil {
		return nil, nil, errors.Wrap(err, "decode value")
	}
	return k, v, nil
}

// codecs lists every space a ledger state is made of.
var codecs = map[string]codec{
	pool.Space:               rlpCodec[uint64, pool.Pool]{},
	position.Space:           rlpCodec[position.Key, position.Position]{},
	globalstats.AccountSpace: rlpCodec[acc.Address, globalstats.Account]{},
	exit.Space:               rlpCodec[exit.TicketKey, exit.PendingExit]{},
	exit.CountSpace:          rlpCodec[position.Key, uint64]{},
	store.CounterSpace:       rlpCodec[string, uint64]{},
}
