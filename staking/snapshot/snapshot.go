// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package snapshot persists the committed state of a ledger to a kv store and
// reads it back.
package snapshot

import (
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/staking/store"
)

// Version is the layout written by Save.
const Version = 1

var (
	logger = log.WithContext("pkg", "snapshot")

	headerKey    = []byte("header")
	metaBucket   = kv.Bucket("m/")
	entryBuckets = func() map[string]kv.Bucket {
		m := make(map[string]kv.Bucket, len(codecs))
		for space := range codecs {
			m[space] = kv.Bucket("s/" + space + "/")
		}
		return m
	}()

	// ErrNotFound is returned by Load when the store holds no snapshot.
	ErrNotFound = errors.New("snapshot not found")
)

// Header identifies the ledger a snapshot belongs to.
type Header struct {
	Version uint
	Variant string
	Config  []byte // variant config, yaml encoded
	SavedAt uint64 // ledger clock when saved
}

// Save replaces the snapshot in db with the committed entries of st.
// Values are RLP encoded and snappy compressed, and all writes land in one batch.
func Save(db kv.Store, h Header, st *store.State) error {
	h.Version = Version
	bulk := db.Bulk()

	// drop what a previous save left behind
	for space, bucket := range entryBuckets {
		it := bucket.Iterate(db, kv.Range{})
		for it.Next() {
			if err := bucket.NewBulk(bulk).Delete(it.Key()); err != nil {
				it.Release()
				return err
			}
		}
		it.Release()
		if err := it.Error(); err != nil {
			return errors.Wrapf(err, "iterate %s", space)
		}
	}

	entries := 0
	err := st.Export(func(space string, key, value any) error {
		c, ok := codecs[space]
		if !ok {
			return errors.Errorf("unknown space %q", space)
		}
		k, v, err := c.encode(key, value)
		if err != nil {
			return errors.Wrap(err, space)
		}
		entries++
		return entryBuckets[space].NewBulk(bulk).Put(k, snappy.Encode(nil, v))
	})
	if err != nil {
		return errors.Wrap(err, "export state")
	}

	hb, err := rlp.EncodeToBytes(&h)
	if err != nil {
		return errors.Wrap(err, "encode header")
	}
	if err := metaBucket.NewBulk(bulk).Put(headerKey, hb); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	logger.Debug("snapshot saved", "variant", h.Variant, "entries", entries, "savedAt", h.SavedAt)
	return nil
}

// ReadHeader returns the header of the snapshot in db, or ErrNotFound.
func ReadHeader(db kv.Getter) (Header, error) {
	var h Header
	raw, err := metaBucket.NewGetter(db).Get(headerKey)
	if err != nil {
		if db.IsNotFound(err) {
			return h, ErrNotFound
		}
		return h, errors.Wrap(err, "read header")
	}
	if err := rlp.DecodeBytes(raw, &h); err != nil {
		return h, errors.Wrap(err, "decode header")
	}
	if h.Version != Version {
		return h, errors.Errorf("unsupported snapshot version %d", h.Version)
	}
	return h, nil
}

// Load rebuilds the committed state stored in db.
func Load(db kv.Store) (Header, *store.State, error) {
	h, err := ReadHeader(db)
	if err != nil {
		return h, nil, err
	}

	spaces := make([]string, 0, len(entryBuckets))
	for space := range entryBuckets {
		spaces = append(spaces, space)
	}
	sort.Strings(spaces)

	st := store.New()
	entries := 0
	for _, space := range spaces {
		if err := load(db, space, st, &entries); err != nil {
			return h, nil, err
		}
	}
	logger.Debug("snapshot loaded", "variant", h.Variant, "entries", entries, "savedAt", h.SavedAt)
	return h, st, nil
}

func load(db kv.Store, space string, st *store.State, entries *int) error {
	it := entryBuckets[space].Iterate(db, kv.Range{})
	defer it.Release()

	for it.Next() {
		raw, err := snappy.Decode(nil, it.Value())
		if err != nil {
			return errors.Wrapf(err, "decompress %s entry", space)
		}
		key, value, err := codecs[space].decode(it.Key(), raw)
		if err != nil {
			return errors.Wrap(err, space)
		}
		if err := st.Import(space, key, value); err != nil {
			return err
		}
		*entries++
	}
	return errors.Wrapf(it.Error(), "iterate %s", space)
}
