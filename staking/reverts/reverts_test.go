// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New("test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_WrappedReverts(t *testing.T) {
	wrapped := pkgerrors.Wrap(ErrStillLocked, "withdraw pool 3")
	assert.True(t, IsRevertErr(wrapped))
	assert.True(t, errors.Is(wrapped, ErrStillLocked))
	assert.False(t, errors.Is(wrapped, ErrAlreadyUnlocked))
	assert.Equal(t, "withdraw pool 3: stake is still locked", wrapped.Error())

	assert.True(t, IsRevertErr(fmt.Errorf("deposit: %w", ErrCapExceeded)))
}
