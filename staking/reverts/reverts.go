// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts holds the business rejections of the ledger.
// A revert means the operation was refused before any state changed.
package reverts

import (
	"github.com/pkg/errors"
)

type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

var (
	ErrNotFound         = New("pool not found")
	ErrInvalidConfig    = New("invalid pool config")
	ErrPoolInactive     = New("pool is inactive")
	ErrBelowMinimum     = New("amount below minimum")
	ErrCapExceeded      = New("per account cap exceeded")
	ErrNothingStaked    = New("nothing staked")
	ErrStillLocked      = New("stake is still locked")
	ErrAlreadyUnlocked  = New("stake already unlocked")
	ErrDuplicateRequest = New("unclaimed exit request exists")
	ErrNotYetAvailable  = New("exit not yet available")
	ErrAlreadyClaimed   = New("exit already claimed")
	ErrNothingToClaim   = New("nothing to claim")
	ErrUnauthorized     = New("unauthorized")
	ErrNotOperational   = New("ledger is not operational")
	ErrTransferFailed   = New("transfer failed")
	ErrAssetMismatch    = New("reward asset differs from stake asset")
	ErrCooldownRequired = New("cooldown exit required")
)
