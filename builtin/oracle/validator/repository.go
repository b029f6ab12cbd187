// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

import (
	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
)

var (
	slotValidators = forge.BytesToBytes32([]byte("validators"))
	slotActive     = forge.BytesToBytes32([]byte("validators-active"))
)

type repository struct {
	validators *solidity.Mapping[forge.Address, *Validator]
	active     *solidity.IndexedSet[forge.Address]
}

func newRepository(sctx *solidity.Context) *repository {
	return &repository{
		validators: solidity.NewMapping[forge.Address, *Validator](sctx, slotValidators),
		active:     solidity.NewIndexedSet[forge.Address](sctx, slotActive),
	}
}

func (r *repository) get(addr forge.Address) (*Validator, error) {
	v, err := r.validators.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get validator")
	}
	return v, nil
}

// set persists v and keeps the active arena in line with its status.
func (r *repository) set(v *Validator) error {
	if err := r.validators.Set(v.Address, v); err != nil {
		return errors.Wrap(err, "failed to set validator")
	}
	var err error
	if v.IsActive() {
		_, err = r.active.Add(v.Address)
	} else {
		_, err = r.active.Remove(v.Address)
	}
	return errors.Wrap(err, "failed to update active validators")
}
