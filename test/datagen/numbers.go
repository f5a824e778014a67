// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen produces random inputs for property style tests.
package datagen

import (
	"crypto/rand"
	mathrand "math/rand/v2"

	"github.com/vechain/stakeledger/acc"
)

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandUint64Between returns a value in [lo, hi].
func RandUint64Between(lo, hi uint64) uint64 {
	if hi <= lo {
		return lo
	}
	return lo + mathrand.N(hi-lo+1) //#nosec G404
}

func RandAddress() (a acc.Address) {
	_, _ = rand.Read(a[:])
	return
}

// RandAddresses returns n distinct random addresses.
func RandAddresses(n int) []acc.Address {
	seen := make(map[acc.Address]struct{}, n)
	out := make([]acc.Address, 0, n)
	for len(out) < n {
		a := RandAddress()
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
