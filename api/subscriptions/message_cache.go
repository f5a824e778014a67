// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// messageCache keeps encoded messages by record sequence, so a record is
// encoded once however many subscribers it is sent to.
type messageCache struct {
	cache *lru.Cache
	mu    sync.Mutex
}

func newMessageCache(cacheSize uint32) *messageCache {
	if cacheSize > 1000 {
		cacheSize = 1000
	}
	if cacheSize == 0 {
		cacheSize = 1
	}
	cache, err := lru.New(int(cacheSize))
	if err != nil {
		// lru.New only throws an error if the number is less than 1
		panic(fmt.Errorf("failed to create message cache: %v", err))
	}
	return &messageCache{
		cache: cache,
	}
}

// GetOrAdd returns the message of seq, generating and caching it when missing.
// The second return value indicates whether the message is newly generated.
func (mc *messageCache) GetOrAdd(seq uint64, createMessage func() ([]byte, error)) ([]byte, bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if msg, ok := mc.cache.Get(seq); ok {
		return msg.([]byte), false, nil
	}
	msg, err := createMessage()
	if err != nil {
		return nil, false, err
	}
	mc.cache.Add(seq, msg)
	return msg, true, nil
}
