// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/xenv"
)

type fuzzOp struct {
	Kind    uint8
	Actor   uint8
	Quest   uint8
	Amount  uint16 // in milli ether
	Bps     uint16
	Advance uint32 // seconds
}

// TestConservation runs random operation sequences and checks that no value is created or destroyed.
func TestConservation(t *testing.T) {
	f := fuzz.NewWithSeed(42).NilChance(0)

	for round := 0; round < 20; round++ {
		tl := newTestLedger(t)
		actors := make([]forge.Address, 4)
		for i := range actors {
			actors[i] = tl.user()
		}
		quests := []forge.Address{tl.quest, forge.BytesToAddress([]byte("q1")), forge.BytesToAddress([]byte("q2"))}
		for _, q := range quests {
			tl.openPool(q)
		}
		stakes := map[forge.Address][]forge.Bytes32{}

		var ops []fuzzOp
		f.NumElements(20, 60).Fuzz(&ops)

		for _, op := range ops {
			actor := actors[int(op.Actor)%len(actors)]
			quest := quests[int(op.Quest)%len(quests)]
			amount := new(big.Int).Mul(big.NewInt(int64(op.Amount)%5000+1), big.NewInt(1e15))
			bps := uint64(op.Bps) % (forge.BasisPoints + 500) // sometimes out of range
			tl.now += uint64(op.Advance) % forge.Week

			// failures are expected, and must leave no trace
			switch op.Kind % 7 {
			case 0:
				var id forge.Bytes32
				_, err := tl.call(actor, amount, func(env *xenv.Environment) (err error) {
					id, err = tl.ledger.Stake(env, quest, amount, forge.NativeAsset)
					return
				})
				if err == nil {
					stakes[actor] = append(stakes[actor], id)
				}
			case 1, 2:
				for _, id := range stakes[actor] {
					_, _ = tl.call(actor, nil, func(env *xenv.Environment) error {
						var err error
						if op.Kind%7 == 1 {
							_, err = tl.ledger.Withdraw(env, id)
						} else {
							_, err = tl.ledger.EmergencyWithdraw(env, id)
						}
						return err
					})
				}
			case 3:
				_, _ = tl.call(actor, amount, func(env *xenv.Environment) error {
					_, err := tl.ledger.FundRewards(env, quest, forge.NativeAsset, amount)
					return err
				})
			case 4:
				_, _ = tl.callVia(actor, tl.quest, nil, func(env *xenv.Environment) error {
					_, err := tl.ledger.DistributeReward(env, tl.quest, actor, amount)
					return err
				})
			case 5:
				_, _ = tl.callVia(actor, tl.quest, nil, func(env *xenv.Environment) error {
					_, err := tl.ledger.Slash(env, actor, bps)
					return err
				})
			case 6:
				_, _ = tl.call(tl.admin, nil, func(env *xenv.Environment) error {
					_, err := tl.ledger.Slash(env, actor, bps)
					return err
				})
			}

			tl.checkConservation(forge.NativeAsset)
			checkPools(t, tl, actors, quests)
		}
	}
}

// checkPools asserts every pool's total equals the sum of its active stakes,
// and that active stakes are positive and unique per (owner, quest).
func checkPools(t *testing.T, tl *testLedger, actors, quests []forge.Address) {
	sums := map[forge.Address]*big.Int{}
	for _, q := range quests {
		sums[q] = new(big.Int)
	}
	for _, a := range actors {
		stakes, err := tl.ledger.ActiveStakesOf(a)
		require.NoError(t, err)
		seen := map[forge.Address]bool{}
		for _, s := range stakes {
			require.Equal(t, 1, s.Amount.Sign())
			require.False(t, seen[s.Quest], "two active stakes in one quest")
			seen[s.Quest] = true
			sums[s.Quest].Add(sums[s.Quest], s.Amount)
		}
	}
	for _, q := range quests {
		pool, err := tl.ledger.Pool(q)
		require.NoError(t, err)
		if pool == nil {
			require.Equal(t, 0, sums[q].Sign())
			continue
		}
		require.Equal(t, 0, sums[q].Cmp(pool.TotalStaked), "pool %v", q)
	}
}
