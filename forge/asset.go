// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package forge

// NativeAsset identifies the chain's native currency. Fungible tokens are identified
// by their token contract address.
var NativeAsset = Address{}

// IsNative returns whether the asset is the native currency.
func IsNative(asset Address) bool {
	return asset.IsZero()
}
