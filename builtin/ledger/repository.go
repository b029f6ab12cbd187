// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
)

var (
	slotStakes      = forge.BytesToBytes32([]byte("stakes"))
	slotStakeOf     = forge.BytesToBytes32([]byte("stake-of"))
	slotOwnerStakes = forge.BytesToBytes32([]byte("owner-stakes"))
	slotPools       = forge.BytesToBytes32([]byte("pools"))
	slotTotals      = forge.BytesToBytes32([]byte("totals"))
	slotTreasury    = forge.BytesToBytes32([]byte("treasury"))
	slotEscrows     = forge.BytesToBytes32([]byte("escrows"))
	slotAssets      = forge.BytesToBytes32([]byte("assets"))
	slotNonce       = forge.BytesToBytes32([]byte("stake-nonce"))
	slotClaims      = forge.BytesToBytes32([]byte("claims"))
)

type stakeKey struct {
	owner forge.Address
	quest forge.Address
}

func (k stakeKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.quest.Bytes()...)
}

type claimKey struct {
	asset forge.Address
	owner forge.Address
}

func (k claimKey) Bytes() []byte {
	return append(k.asset.Bytes(), k.owner.Bytes()...)
}

type repository struct {
	sctx     *solidity.Context
	stakes   *solidity.Mapping[forge.Bytes32, *Stake]
	stakeOf  *solidity.Mapping[stakeKey, forge.Bytes32]
	pools    *solidity.Mapping[forge.Address, *Pool]
	totals   *solidity.Mapping[forge.Address, *Totals]
	treasury *solidity.Mapping[forge.Address, *big.Int]
	escrows  *solidity.Mapping[forge.Bytes32, *FeeEscrow]
	assets   *solidity.Mapping[forge.Address, bool]
	nonce    *solidity.Uint256
	claims   *solidity.Mapping[claimKey, *big.Int]
}

func newRepository(sctx *solidity.Context) *repository {
	return &repository{
		sctx:     sctx,
		stakes:   solidity.NewMapping[forge.Bytes32, *Stake](sctx, slotStakes),
		stakeOf:  solidity.NewMapping[stakeKey, forge.Bytes32](sctx, slotStakeOf),
		pools:    solidity.NewMapping[forge.Address, *Pool](sctx, slotPools),
		totals:   solidity.NewMapping[forge.Address, *Totals](sctx, slotTotals),
		treasury: solidity.NewMapping[forge.Address, *big.Int](sctx, slotTreasury),
		escrows:  solidity.NewMapping[forge.Bytes32, *FeeEscrow](sctx, slotEscrows),
		assets:   solidity.NewMapping[forge.Address, bool](sctx, slotAssets),
		nonce:    solidity.NewUint256(sctx, slotNonce),
		claims:   solidity.NewMapping[claimKey, *big.Int](sctx, slotClaims),
	}
}

func (r *repository) ownerStakes(owner forge.Address) *solidity.IndexedSet[forge.Bytes32] {
	return solidity.NewIndexedSet[forge.Bytes32](r.sctx, forge.Blake2b(slotOwnerStakes.Bytes(), owner.Bytes()))
}

func (r *repository) getStake(id forge.Bytes32) (*Stake, error) {
	s, err := r.stakes.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake")
	}
	return s, nil
}

// activeStakeOf returns the active stake of owner in quest, or nil.
func (r *repository) activeStakeOf(owner, quest forge.Address) (*Stake, error) {
	id, err := r.stakeOf.Get(stakeKey{owner, quest})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake id")
	}
	if id.IsZero() {
		return nil, nil
	}
	s, err := r.getStake(id)
	if err != nil || s == nil || !s.Active {
		return nil, err
	}
	return s, nil
}

// openStake stores a new active stake and indexes it.
func (r *repository) openStake(s *Stake) error {
	if err := r.stakes.Set(s.ID, s); err != nil {
		return errors.Wrap(err, "failed to set stake")
	}
	if err := r.stakeOf.Set(stakeKey{s.Owner, s.Quest}, s.ID); err != nil {
		return errors.Wrap(err, "failed to set stake id")
	}
	if _, err := r.ownerStakes(s.Owner).Add(s.ID); err != nil {
		return errors.Wrap(err, "failed to index stake")
	}
	return nil
}

func (r *repository) updateStake(s *Stake) error {
	return errors.Wrap(r.stakes.Set(s.ID, s), "failed to set stake")
}

// closeStake deactivates a stake and drops it from the indexes.
func (r *repository) closeStake(s *Stake) error {
	s.Active = false
	if err := r.updateStake(s); err != nil {
		return err
	}
	r.stakeOf.Delete(stakeKey{s.Owner, s.Quest})
	if _, err := r.ownerStakes(s.Owner).Remove(s.ID); err != nil {
		return errors.Wrap(err, "failed to unindex stake")
	}
	return nil
}

func (r *repository) activeStakesOf(owner forge.Address) ([]*Stake, error) {
	ids, err := r.ownerStakes(owner).All()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stakes")
	}
	stakes := make([]*Stake, 0, len(ids))
	for _, id := range ids {
		s, err := r.getStake(id)
		if err != nil {
			return nil, err
		}
		if s != nil && s.Active {
			stakes = append(stakes, s)
		}
	}
	return stakes, nil
}

func (r *repository) nextNonce() (uint64, error) {
	return r.nonce.Next()
}

func (r *repository) getPool(quest forge.Address) (*Pool, error) {
	p, err := r.pools.Get(quest)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool")
	}
	return p, nil
}

func (r *repository) setPool(p *Pool) error {
	return errors.Wrap(r.pools.Set(p.Quest, p), "failed to set pool")
}

func (r *repository) getTotals(asset forge.Address) (*Totals, error) {
	t, err := r.totals.Get(asset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get totals")
	}
	if t == nil {
		return newTotals(), nil
	}
	return t, nil
}

func (r *repository) setTotals(asset forge.Address, t *Totals) error {
	return errors.Wrap(r.totals.Set(asset, t), "failed to set totals")
}

func (r *repository) getTreasury(asset forge.Address) (*big.Int, error) {
	v, err := r.treasury.Get(asset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get treasury")
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

func (r *repository) setTreasury(asset forge.Address, v *big.Int) error {
	return errors.Wrap(r.treasury.Set(asset, v), "failed to set treasury")
}

func (r *repository) getEscrow(ref forge.Bytes32) (*FeeEscrow, error) {
	e, err := r.escrows.Get(ref)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get escrow")
	}
	return e, nil
}

func (r *repository) isSupported(asset forge.Address) (bool, error) {
	if forge.IsNative(asset) {
		return true, nil
	}
	return r.assets.Get(asset)
}

func (r *repository) getClaim(asset, owner forge.Address) (*big.Int, error) {
	v, err := r.claims.Get(claimKey{asset, owner})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get claim")
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

func (r *repository) setClaim(asset, owner forge.Address, v *big.Int) error {
	if v.Sign() == 0 {
		r.claims.Delete(claimKey{asset, owner})
		return nil
	}
	return errors.Wrap(r.claims.Set(claimKey{asset, owner}, v), "failed to set claim")
}
