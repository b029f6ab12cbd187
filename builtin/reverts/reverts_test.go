// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/questforge/forge/forge"
)

func Test_Reverts(t *testing.T) {
	revert := New(KindValidation, "Test", "test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
	assert.True(t, IsRevertErr(forge.ErrOverflow))
}

func TestWrappedSentinel(t *testing.T) {
	err := errors.WithMessagef(ErrAlreadyStaked, "owner %v", "0x01")

	assert.ErrorIs(t, err, ErrAlreadyStaked)
	assert.NotErrorIs(t, err, ErrStakeInactive)
	assert.Equal(t, KindStateConflict, KindOf(err))
	assert.Equal(t, "AlreadyStaked", CodeOf(err))
	assert.Equal(t, "owner 0x01: an active stake already exists", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
		code string
	}{
		{ErrInsufficientAmount, KindValidation, "InsufficientAmount"},
		{ErrUnauthorized, KindAuthorization, "Unauthorized"},
		{ErrAlreadyVoted, KindStateConflict, "AlreadyVoted"},
		{ErrExpired, KindTemporal, "Expired"},
		{ErrQuestFull, KindResourceExhaustion, "QuestFull"},
		{forge.ErrPercentage, KindArithmetic, "Arithmetic"},
		{Arithmetic(forge.ErrOverflow), KindArithmetic, "Arithmetic"},
		{errors.New("disk"), KindInternal, "Internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err), tt.err.Error())
		assert.Equal(t, tt.code, CodeOf(tt.err))
	}
	assert.Equal(t, "resource-exhaustion", KindResourceExhaustion.String())
	assert.Nil(t, Arithmetic(nil))
	assert.Equal(t, ErrExpired, Arithmetic(ErrExpired))
}
