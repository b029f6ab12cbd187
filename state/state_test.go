// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/lvldb"
)

func M(a ...any) []any {
	return a
}

func TestBalances(t *testing.T) {
	st := New(nil)
	alice := forge.BytesToAddress([]byte("alice"))
	bob := forge.BytesToAddress([]byte("bob"))
	token := forge.BytesToAddress([]byte("token"))

	assert.Equal(t, M(big.NewInt(0), nil), M(st.GetBalance(forge.NativeAsset, alice)))

	require.NoError(t, st.SetBalance(forge.NativeAsset, alice, big.NewInt(100)))
	require.NoError(t, st.AddBalance(token, alice, big.NewInt(7)))
	require.NoError(t, st.Transfer(forge.NativeAsset, alice, bob, big.NewInt(40)))

	assert.Equal(t, M(big.NewInt(60), nil), M(st.GetBalance(forge.NativeAsset, alice)))
	assert.Equal(t, M(big.NewInt(40), nil), M(st.GetBalance(forge.NativeAsset, bob)))
	assert.Equal(t, M(big.NewInt(7), nil), M(st.GetBalance(token, alice)))
	assert.Equal(t, M(big.NewInt(0), nil), M(st.GetBalance(token, bob)))

	err := st.Transfer(forge.NativeAsset, bob, alice, big.NewInt(41))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Error(t, st.SetBalance(forge.NativeAsset, bob, big.NewInt(-1)))
}

func TestCheckpoint(t *testing.T) {
	st := New(nil)
	addr := forge.BytesToAddress([]byte("acc"))
	key := forge.BytesToBytes32([]byte("key"))

	st.SetStorage(addr, key, forge.BytesToBytes32([]byte("v1")))
	require.NoError(t, st.SetBalance(forge.NativeAsset, addr, big.NewInt(1)))

	rev := st.NewCheckpoint()
	st.SetStorage(addr, key, forge.BytesToBytes32([]byte("v2")))
	require.NoError(t, st.SetBalance(forge.NativeAsset, addr, big.NewInt(2)))
	assert.Equal(t, M(forge.BytesToBytes32([]byte("v2")), nil), M(st.GetStorage(addr, key)))

	st.RevertTo(rev)
	assert.Equal(t, M(forge.BytesToBytes32([]byte("v1")), nil), M(st.GetStorage(addr, key)))
	assert.Equal(t, M(big.NewInt(1), nil), M(st.GetBalance(forge.NativeAsset, addr)))

	st.RevertTo(0)
	assert.Equal(t, M(forge.Bytes32{}, nil), M(st.GetStorage(addr, key)))

	// still writable after a full revert
	st.SetStorage(addr, key, forge.BytesToBytes32([]byte("v3")))
	assert.Equal(t, M(forge.BytesToBytes32([]byte("v3")), nil), M(st.GetStorage(addr, key)))
}

func TestStructuredStorage(t *testing.T) {
	st := New(nil)
	addr := forge.BytesToAddress([]byte("acc"))
	key := forge.BytesToBytes32([]byte("struct"))

	type pair struct {
		A uint64
		B string
	}
	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&pair{1, "x"})
	}))

	var got pair
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &got)
	}))
	assert.Equal(t, pair{1, "x"}, got)

	raw, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, M(forge.Blake2b(raw), nil), M(st.GetStorage(addr, key)))
}

func TestStageCommit(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	addr := forge.BytesToAddress([]byte("acc1"))
	storage := map[forge.Bytes32]forge.Bytes32{
		forge.BytesToBytes32([]byte("s1")): forge.BytesToBytes32([]byte("v1")),
		forge.BytesToBytes32([]byte("s2")): forge.BytesToBytes32([]byte("v2")),
		forge.BytesToBytes32([]byte("s3")): forge.BytesToBytes32([]byte("v3")),
	}

	st := New(db)
	require.NoError(t, st.SetBalance(forge.NativeAsset, addr, big.NewInt(10)))
	for k, v := range storage {
		st.SetStorage(addr, k, v)
	}

	stage := st.Stage()
	assert.Equal(t, 4, stage.Len())
	hash := stage.Hash()
	root, err := stage.Commit(db)
	require.NoError(t, err)
	assert.Equal(t, hash, root)

	st = New(db)
	assert.Equal(t, M(big.NewInt(10), nil), M(st.GetBalance(forge.NativeAsset, addr)))
	for k, v := range storage {
		assert.Equal(t, M(v, nil), M(st.GetStorage(addr, k)))
	}

	// clearing a slot removes it from the store
	for k := range storage {
		st.SetStorage(addr, k, forge.Bytes32{})
	}
	_, err = st.Stage().Commit(db)
	require.NoError(t, err)
	for k := range storage {
		assert.Equal(t, M(forge.Bytes32{}, nil), M(New(db).GetStorage(addr, k)))
	}
}
