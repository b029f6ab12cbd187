// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
)

var (
	slotRecords   = forge.BytesToBytes32([]byte("records"))
	slotActive    = forge.BytesToBytes32([]byte("active-quests"))
	slotByCreator = forge.BytesToBytes32([]byte("quests-by-creator"))
	slotNonce     = forge.BytesToBytes32([]byte("nonce"))
)

type repository struct {
	sctx    *solidity.Context
	records *solidity.Mapping[forge.Address, *Record]
	active  *solidity.IndexedSet[forge.Address]
	nonce   *solidity.Uint256
}

func newRepository(sctx *solidity.Context) *repository {
	return &repository{
		sctx:    sctx,
		records: solidity.NewMapping[forge.Address, *Record](sctx, slotRecords),
		active:  solidity.NewIndexedSet[forge.Address](sctx, slotActive),
		nonce:   solidity.NewUint256(sctx, slotNonce),
	}
}

// byCreator is the set of active quests of one creator.
func (r *repository) byCreator(creator forge.Address) *solidity.IndexedSet[forge.Address] {
	return solidity.NewIndexedSet[forge.Address](r.sctx, forge.Blake2b(slotByCreator.Bytes(), creator.Bytes()))
}

func (r *repository) getRecord(addr forge.Address) (*Record, error) {
	rec, err := r.records.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get quest record")
	}
	return rec, nil
}

func (r *repository) add(rec *Record) error {
	if err := r.records.Set(rec.Quest, rec); err != nil {
		return errors.Wrap(err, "failed to set quest record")
	}
	if _, err := r.active.Add(rec.Quest); err != nil {
		return errors.Wrap(err, "failed to add active quest")
	}
	_, err := r.byCreator(rec.Creator).Add(rec.Quest)
	return errors.Wrap(err, "failed to add creator quest")
}

func (r *repository) retire(rec *Record) error {
	if err := r.records.Set(rec.Quest, rec); err != nil {
		return errors.Wrap(err, "failed to set quest record")
	}
	if _, err := r.active.Remove(rec.Quest); err != nil {
		return errors.Wrap(err, "failed to remove active quest")
	}
	_, err := r.byCreator(rec.Creator).Remove(rec.Quest)
	return errors.Wrap(err, "failed to remove creator quest")
}
