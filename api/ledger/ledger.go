// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/questforge/forge/api/restutil"
	"github.com/questforge/forge/builtin"
	"github.com/questforge/forge/builtin/ledger"
	"github.com/questforge/forge/forge"
)

type Ledger struct {
	viewer restutil.Viewer
}

func New(viewer restutil.Viewer) *Ledger {
	return &Ledger{viewer}
}

// Totals is the accounting of one asset.
type Totals struct {
	Asset     forge.Address  `json:"asset"`
	Supported bool           `json:"supported"`
	Treasury  *big.Int       `json:"treasury"`
	Totals    *ledger.Totals `json:"totals"`
}

func (l *Ledger) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.Bytes32Var(req, "id")
	if err != nil {
		return err
	}

	var stake *ledger.Stake
	if err := restutil.View(l.viewer, func(c *builtin.Contracts) error {
		stake, err = c.Ledger.GetStake(id)
		return err
	}); err != nil {
		return err
	}
	if stake == nil {
		return restutil.NotFound(errors.New("stake not found"))
	}
	return restutil.WriteJSON(w, stake)
}

func (l *Ledger) handleListStakes(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.OptionalAddress(req, "owner")
	if err != nil {
		return err
	}
	if owner == nil {
		return restutil.BadRequest(errors.New("owner: required"))
	}

	var stakes []*ledger.Stake
	if err := restutil.View(l.viewer, func(c *builtin.Contracts) error {
		stakes, err = c.Ledger.ActiveStakesOf(*owner)
		return err
	}); err != nil {
		return err
	}
	if stakes == nil {
		stakes = []*ledger.Stake{}
	}
	return restutil.WriteJSON(w, stakes)
}

func (l *Ledger) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	quest, err := restutil.AddressVar(req, "quest")
	if err != nil {
		return err
	}

	var pool *ledger.Pool
	if err := restutil.View(l.viewer, func(c *builtin.Contracts) error {
		pool, err = c.Ledger.Pool(quest)
		return err
	}); err != nil {
		return err
	}
	if pool == nil {
		return restutil.NotFound(errors.New("pool not found"))
	}
	return restutil.WriteJSON(w, pool)
}

func (l *Ledger) handleGetTotals(w http.ResponseWriter, req *http.Request) error {
	asset, err := restutil.AddressVar(req, "asset")
	if err != nil {
		return err
	}

	result := &Totals{Asset: asset}
	if err := restutil.View(l.viewer, func(c *builtin.Contracts) error {
		if result.Supported, err = c.Ledger.IsSupported(asset); err != nil {
			return err
		}
		if result.Treasury, err = c.Ledger.Treasury(asset); err != nil {
			return err
		}
		result.Totals, err = c.Ledger.Totals(asset)
		return err
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (l *Ledger) handleGetEscrow(w http.ResponseWriter, req *http.Request) error {
	ref, err := restutil.Bytes32Var(req, "ref")
	if err != nil {
		return err
	}

	var escrow *ledger.FeeEscrow
	if err := restutil.View(l.viewer, func(c *builtin.Contracts) error {
		escrow, err = c.Ledger.Escrow(ref)
		return err
	}); err != nil {
		return err
	}
	if escrow == nil {
		return restutil.NotFound(errors.New("escrow not found"))
	}
	return restutil.WriteJSON(w, escrow)
}

// Claim is what an owner may pull with Ledger.Claim after refusing a payout.
type Claim struct {
	Asset     forge.Address `json:"asset"`
	Owner     forge.Address `json:"owner"`
	Claimable *big.Int      `json:"claimable"`
}

func (l *Ledger) handleGetClaim(w http.ResponseWriter, req *http.Request) error {
	asset, err := restutil.AddressVar(req, "asset")
	if err != nil {
		return err
	}
	owner, err := restutil.AddressVar(req, "owner")
	if err != nil {
		return err
	}

	result := &Claim{Asset: asset, Owner: owner}
	if err := restutil.View(l.viewer, func(c *builtin.Contracts) error {
		result.Claimable, err = c.Ledger.Claimable(asset, owner)
		return err
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (l *Ledger) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/stakes").
		Methods(http.MethodGet).
		Name("GET /ledger/stakes").
		HandlerFunc(restutil.WrapHandlerFunc(l.handleListStakes))
	sub.Path("/stakes/{id}").
		Methods(http.MethodGet).
		Name("GET /ledger/stakes/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(l.handleGetStake))
	sub.Path("/pools/{quest}").
		Methods(http.MethodGet).
		Name("GET /ledger/pools/{quest}").
		HandlerFunc(restutil.WrapHandlerFunc(l.handleGetPool))
	sub.Path("/totals/{asset}").
		Methods(http.MethodGet).
		Name("GET /ledger/totals/{asset}").
		HandlerFunc(restutil.WrapHandlerFunc(l.handleGetTotals))
	sub.Path("/escrows/{ref}").
		Methods(http.MethodGet).
		Name("GET /ledger/escrows/{ref}").
		HandlerFunc(restutil.WrapHandlerFunc(l.handleGetEscrow))
	sub.Path("/claims/{asset}/{owner}").
		Methods(http.MethodGet).
		Name("GET /ledger/claims/{asset}/{owner}").
		HandlerFunc(restutil.WrapHandlerFunc(l.handleGetClaim))
}
