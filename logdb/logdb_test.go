// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package logdb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/block"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/logdb"
	"github.com/questforge/forge/test/datagen"
	"github.com/questforge/forge/tx"
)

var (
	questAddr  = forge.BytesToAddress([]byte("quest"))
	ledgerAddr = forge.BytesToAddress([]byte("ledger"))
)

func newEvent(t *testing.T, addr forge.Address, name string, user forge.Address) *tx.Event {
	ev, err := tx.NewEvent(addr, name, map[string]any{"user": user}, tx.AddressTopic(user))
	require.NoError(t, err)
	return ev
}

// newChain builds n blocks, each with one successful and one reverted transaction.
func newChain(t *testing.T, n int, users []forge.Address) []*block.Block {
	var (
		blocks   []*block.Block
		parentID forge.Bytes32
	)
	for i := range n {
		user := users[i%len(users)]
		ok := &tx.Receipt{
			ID:     datagen.RandomHash(),
			Origin: user,
			Events: tx.Events{
				newEvent(t, questAddr, "ParticipantJoined", user),
				newEvent(t, ledgerAddr, "Staked", user),
			},
		}
		reverted := &tx.Receipt{
			ID:       datagen.RandomHash(),
			Origin:   user,
			Events:   tx.Events{newEvent(t, questAddr, "Ghost", user)},
			Reverted: true,
		}
		blk := block.New(parentID, uint32(i+1), 1000+uint64(i)*10, datagen.RandomHash(), tx.Receipts{ok, reverted})
		parentID = blk.Header.ID
		blocks = append(blocks, blk)
	}
	return blocks
}

func TestWriteAndFilter(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	users := datagen.RandAddresses(2)
	blocks := newChain(t, 10, users)
	for _, blk := range blocks {
		require.NoError(t, db.Write(blk))
	}

	ctx := context.Background()
	all, err := db.FilterEvents(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 20, "events of reverted transactions are skipped")

	first := all[0]
	assert.Equal(t, blocks[0].Header.ID, first.BlockID)
	assert.Equal(t, uint32(1), first.BlockNumber)
	assert.Equal(t, uint64(1000), first.BlockTime)
	assert.Equal(t, blocks[0].Receipts[0].ID, first.TxID)
	assert.Equal(t, users[0], first.TxOrigin)
	assert.Equal(t, questAddr, first.Address)
	assert.Equal(t, "ParticipantJoined", first.Name)
	require.NotNil(t, first.Topics[0])
	assert.Equal(t, tx.AddressTopic(users[0]), *first.Topics[0])
	assert.Nil(t, first.Topics[1])
	assert.JSONEq(t, `{"user":"`+users[0].String()+`"}`, string(first.Data))

	name := "Staked"
	tests := []struct {
		name   string
		filter *logdb.EventFilter
		want   int
	}{
		{"by address", &logdb.EventFilter{CriteriaSet: []*logdb.EventCriteria{{Address: &questAddr}}}, 10},
		{"by name", &logdb.EventFilter{CriteriaSet: []*logdb.EventCriteria{{Name: &name}}}, 10},
		{"by topic", &logdb.EventFilter{CriteriaSet: []*logdb.EventCriteria{{Topics: [5]*forge.Bytes32{ptr(tx.AddressTopic(users[1]))}}}}, 10},
		{"address and topic", &logdb.EventFilter{CriteriaSet: []*logdb.EventCriteria{{
			Address: &ledgerAddr,
			Topics:  [5]*forge.Bytes32{ptr(tx.AddressTopic(users[1]))},
		}}}, 5},
		{"criteria are or-ed", &logdb.EventFilter{CriteriaSet: []*logdb.EventCriteria{
			{Address: &ledgerAddr, Topics: [5]*forge.Bytes32{ptr(tx.AddressTopic(users[0]))}},
			{Address: &ledgerAddr, Topics: [5]*forge.Bytes32{ptr(tx.AddressTopic(users[1]))}},
		}}, 10},
		{"block range", &logdb.EventFilter{Range: &logdb.Range{Unit: logdb.Block, From: 2, To: 4}}, 6},
		{"time range", &logdb.EventFilter{Range: &logdb.Range{Unit: logdb.Time, From: 1050, To: 2000}}, 10},
		{"open range", &logdb.EventFilter{Range: &logdb.Range{Unit: logdb.Block, From: 9}}, 4},
		{"range limits criteria", &logdb.EventFilter{
			Range:       &logdb.Range{Unit: logdb.Block, From: 1, To: 2},
			CriteriaSet: []*logdb.EventCriteria{{Address: &questAddr}, {Name: &name}},
		}, 4},
		{"tx id", &logdb.EventFilter{TxID: &blocks[3].Receipts[0].ID}, 2},
		{"reverted tx id", &logdb.EventFilter{TxID: &blocks[3].Receipts[1].ID}, 0},
		{"limit", &logdb.EventFilter{Options: &logdb.Options{Offset: 5, Limit: 3}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := db.FilterEvents(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, events, tt.want)
		})
	}

	desc, err := db.FilterEvents(ctx, &logdb.EventFilter{Order: logdb.DESC, Options: &logdb.Options{Limit: 1}})
	require.NoError(t, err)
	require.Len(t, desc, 1)
	assert.Equal(t, uint32(10), desc[0].BlockNumber)
	assert.Equal(t, "Staked", desc[0].Name)

	num, ok, err := db.NewestBlockNumber()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(10), num)
}

func TestRewriteIsIdempotent(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, ok, err := db.NewestBlockNumber()
	require.NoError(t, err)
	assert.False(t, ok)

	blk := newChain(t, 1, datagen.RandAddresses(1))[0]
	require.NoError(t, db.Write(blk))
	require.NoError(t, db.Write(blk))

	events, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestPersistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := logdb.New(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	assert.NotEmpty(t, db.DriverVersion())

	require.NoError(t, db.Write(newChain(t, 1, datagen.RandAddresses(1))[0]))
	require.NoError(t, db.Close())

	db, err = logdb.New(path)
	require.NoError(t, err)
	defer db.Close()
	events, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestFilterCanceled(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Write(newChain(t, 1, datagen.RandAddresses(1))[0]))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = db.FilterEvents(ctx, nil)
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
