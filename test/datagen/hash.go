// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/questforge/forge/forge"
)

func RandomHash() forge.Bytes32 {
	var b32 forge.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() forge.Address {
	var addr forge.Address

	rand.Read(addr[:])
	return addr
}

func RandAddresses(n int) []forge.Address {
	addrs := make([]forge.Address, n)
	for i := range addrs {
		addrs[i] = RandAddress()
	}
	return addrs
}
