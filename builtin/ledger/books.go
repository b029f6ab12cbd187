// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
)

// addTo sets dst += v, failing on overflow.
func addTo(dst, v *big.Int) error {
	sum, err := forge.SafeAdd(dst, v)
	if err != nil {
		return reverts.Arithmetic(err)
	}
	dst.Set(sum)
	return nil
}

// subFrom sets dst -= v, failing on underflow.
func subFrom(dst, v *big.Int) error {
	diff, err := forge.SafeSub(dst, v)
	if err != nil {
		return reverts.Arithmetic(err)
	}
	dst.Set(diff)
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func minBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

func elapsedSince(now, t uint64) uint64 {
	if now < t {
		return 0
	}
	return now - t
}
