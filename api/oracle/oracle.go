// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"bytes"
	"math/big"
	"net/http"
	"slices"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/questforge/forge/api/restutil"
	"github.com/questforge/forge/builtin"
	"github.com/questforge/forge/builtin/oracle/dispute"
	"github.com/questforge/forge/builtin/oracle/evidence"
	"github.com/questforge/forge/builtin/oracle/validator"
	"github.com/questforge/forge/forge"
)

// Clock tells the time voting power is computed at.
type Clock interface {
	Now() uint64
}

type Oracle struct {
	viewer restutil.Viewer
	clock  Clock
}

func New(viewer restutil.Viewer, clock Clock) *Oracle {
	return &Oracle{viewer, clock}
}

// Validator is a validator with its current voting power.
type Validator struct {
	*validator.Validator
	VotingPower *big.Int `json:"votingPower"`
}

// Evidence is a verification request with its votes and dispute.
type Evidence struct {
	*evidence.Evidence
	Votes   []*evidence.Vote `json:"votes"`
	Dispute *forge.Bytes32   `json:"dispute"`
}

func sortAddresses(addrs []forge.Address) {
	slices.SortFunc(addrs, func(a, b forge.Address) int { return bytes.Compare(a[:], b[:]) })
}

func (o *Oracle) handleListValidators(w http.ResponseWriter, _ *http.Request) error {
	var addrs []forge.Address
	if err := restutil.View(o.viewer, func(c *builtin.Contracts) (err error) {
		addrs, err = c.Oracle.ActiveValidators()
		return
	}); err != nil {
		return err
	}
	if addrs == nil {
		addrs = []forge.Address{}
	}
	sortAddresses(addrs)
	return restutil.WriteJSON(w, addrs)
}

func (o *Oracle) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}

	var result *Validator
	if err := restutil.View(o.viewer, func(c *builtin.Contracts) error {
		v, err := c.Oracle.GetValidator(addr)
		if err != nil || v == nil {
			return err
		}
		power, err := c.Oracle.VotingPower(addr, o.clock.Now())
		if err != nil {
			return err
		}
		result = &Validator{v, power}
		return nil
	}); err != nil {
		return err
	}
	if result == nil {
		return restutil.NotFound(errors.New("validator not found"))
	}
	return restutil.WriteJSON(w, result)
}

func (o *Oracle) handleListPending(w http.ResponseWriter, _ *http.Request) error {
	var ids []forge.Bytes32
	if err := restutil.View(o.viewer, func(c *builtin.Contracts) (err error) {
		ids, err = c.Oracle.PendingRequests()
		return
	}); err != nil {
		return err
	}
	if ids == nil {
		ids = []forge.Bytes32{}
	}
	slices.SortFunc(ids, func(a, b forge.Bytes32) int { return bytes.Compare(a[:], b[:]) })
	return restutil.WriteJSON(w, ids)
}

func (o *Oracle) handleGetEvidence(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.Bytes32Var(req, "id")
	if err != nil {
		return err
	}

	var result *Evidence
	if err := restutil.View(o.viewer, func(c *builtin.Contracts) error {
		e, err := c.Oracle.GetEvidence(id)
		if err != nil || e == nil {
			return err
		}
		result = &Evidence{Evidence: e, Votes: make([]*evidence.Vote, 0, len(e.Voters))}
		for _, voter := range e.Voters {
			vote, err := c.Oracle.GetVote(id, voter)
			if err != nil {
				return err
			}
			if vote != nil {
				result.Votes = append(result.Votes, vote)
			}
		}
		d, err := c.Oracle.DisputeOf(id)
		if err != nil {
			return err
		}
		if d != nil {
			result.Dispute = &d.ID
		}
		return nil
	}); err != nil {
		return err
	}
	if result == nil {
		return restutil.NotFound(errors.New("evidence not found"))
	}
	return restutil.WriteJSON(w, result)
}

func (o *Oracle) handleGetDispute(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.Bytes32Var(req, "id")
	if err != nil {
		return err
	}

	var d *dispute.Dispute
	if err := restutil.View(o.viewer, func(c *builtin.Contracts) error {
		d, err = c.Oracle.GetDispute(id)
		return err
	}); err != nil {
		return err
	}
	if d == nil {
		return restutil.NotFound(errors.New("dispute not found"))
	}
	return restutil.WriteJSON(w, d)
}

func (o *Oracle) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/validators").
		Methods(http.MethodGet).
		Name("GET /oracle/validators").
		HandlerFunc(restutil.WrapHandlerFunc(o.handleListValidators))
	sub.Path("/validators/{address}").
		Methods(http.MethodGet).
		Name("GET /oracle/validators/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(o.handleGetValidator))
	sub.Path("/evidence").
		Methods(http.MethodGet).
		Name("GET /oracle/evidence").
		HandlerFunc(restutil.WrapHandlerFunc(o.handleListPending))
	sub.Path("/evidence/{id}").
		Methods(http.MethodGet).
		Name("GET /oracle/evidence/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(o.handleGetEvidence))
	sub.Path("/disputes/{id}").
		Methods(http.MethodGet).
		Name("GET /oracle/disputes/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(o.handleGetDispute))
}
