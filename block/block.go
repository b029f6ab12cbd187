// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"encoding/binary"
	"io"

	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
)

// Header summarizes a sealed block.
type Header struct {
	ID        forge.Bytes32 `json:"id"`
	ParentID  forge.Bytes32 `json:"parentID"`
	Number    uint32        `json:"number"`
	Timestamp uint64        `json:"timestamp"`
	StateRoot forge.Bytes32 `json:"stateRoot"`
	TxCount   int           `json:"txCount"`
}

// Block is a header plus the receipts of every executed transaction, successful or reverted.
type Block struct {
	Header   Header      `json:"header"`
	Receipts tx.Receipts `json:"receipts"`
}

// New seals receipts into a block. The first 4 bytes of the id hold the block number.
func New(parentID forge.Bytes32, number uint32, timestamp uint64, stateRoot forge.Bytes32, receipts tx.Receipts) *Block {
	id := forge.Blake2bFn(func(w io.Writer) {
		w.Write(parentID.Bytes())
		w.Write(forge.Uint64Bytes(timestamp))
		w.Write(stateRoot.Bytes())
		for _, r := range receipts {
			w.Write(r.ID.Bytes())
		}
	})
	binary.BigEndian.PutUint32(id[:], number)

	return &Block{
		Header: Header{
			ID:        id,
			ParentID:  parentID,
			Number:    number,
			Timestamp: timestamp,
			StateRoot: stateRoot,
			TxCount:   len(receipts),
		},
		Receipts: receipts,
	}
}

// Number extracts block number from block id.
func Number(blockID forge.Bytes32) uint32 {
	return binary.BigEndian.Uint32(blockID[:])
}
