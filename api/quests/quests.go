// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quests

import (
	"bytes"
	"net/http"
	"slices"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/questforge/forge/api/restutil"
	"github.com/questforge/forge/builtin"
	"github.com/questforge/forge/builtin/quest"
	"github.com/questforge/forge/forge"
)

type Quests struct {
	viewer restutil.Viewer
}

func New(viewer restutil.Viewer) *Quests {
	return &Quests{viewer}
}

func bindQuest(c *builtin.Contracts, addr forge.Address) (*quest.Quest, error) {
	q, err := c.Quest(addr)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, restutil.NotFound(errors.New("quest not found"))
	}
	return q, nil
}

func (q *Quests) handleListQuests(w http.ResponseWriter, req *http.Request) error {
	creator, err := restutil.OptionalAddress(req, "creator")
	if err != nil {
		return err
	}

	var list []*Summary
	err = restutil.View(q.viewer, func(c *builtin.Contracts) error {
		var addrs []forge.Address
		if creator != nil {
			addrs, err = c.Factory.QuestsOf(*creator)
		} else {
			addrs, err = c.Factory.Quests()
		}
		if err != nil {
			return err
		}
		list = make([]*Summary, 0, len(addrs))
		for _, addr := range addrs {
			qc, err := bindQuest(c, addr)
			if err != nil {
				return err
			}
			cfg, err := qc.Config()
			if err != nil {
				return err
			}
			info, err := qc.Info()
			if err != nil {
				return err
			}
			if cfg == nil || info == nil {
				continue
			}
			list = append(list, &Summary{
				Address:      addr,
				Creator:      cfg.Creator,
				Title:        cfg.Title,
				Status:       info.Status,
				Participants: info.Active,
				ExpiresAt:    info.ExpiresAt,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	// storage sets carry no order
	slices.SortFunc(list, func(a, b *Summary) int { return bytes.Compare(a.Address[:], b.Address[:]) })
	return restutil.WriteJSON(w, list)
}

func (q *Quests) handleGetQuest(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}

	result := &Quest{Address: addr}
	err = restutil.View(q.viewer, func(c *builtin.Contracts) error {
		qc, err := bindQuest(c, addr)
		if err != nil {
			return err
		}
		if result.Record, err = c.Factory.Record(addr); err != nil {
			return err
		}
		if result.Config, err = qc.Config(); err != nil {
			return err
		}
		if result.Info, err = qc.Info(); err != nil {
			return err
		}
		result.Milestones, err = qc.Milestones()
		return err
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (q *Quests) handleGetParticipants(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}

	var users []forge.Address
	err = restutil.View(q.viewer, func(c *builtin.Contracts) error {
		qc, err := bindQuest(c, addr)
		if err != nil {
			return err
		}
		users, err = qc.Participants()
		return err
	})
	if err != nil {
		return err
	}
	slices.SortFunc(users, func(a, b forge.Address) int { return bytes.Compare(a[:], b[:]) })
	return restutil.WriteJSON(w, users)
}

func (q *Quests) handleGetParticipant(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	user, err := restutil.AddressVar(req, "user")
	if err != nil {
		return err
	}

	var p *quest.Participant
	err = restutil.View(q.viewer, func(c *builtin.Contracts) error {
		qc, err := bindQuest(c, addr)
		if err != nil {
			return err
		}
		p, err = qc.Participant(user)
		return err
	})
	if err != nil {
		return err
	}
	if p == nil {
		return restutil.NotFound(errors.New("participant not found"))
	}
	return restutil.WriteJSON(w, p)
}

func (q *Quests) handleGetSubmission(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	id, err := restutil.Bytes32Var(req, "id")
	if err != nil {
		return err
	}

	var s *quest.Submission
	err = restutil.View(q.viewer, func(c *builtin.Contracts) error {
		qc, err := bindQuest(c, addr)
		if err != nil {
			return err
		}
		s, err = qc.Submission(id)
		return err
	})
	if err != nil {
		return err
	}
	if s == nil {
		return restutil.NotFound(errors.New("submission not found"))
	}
	return restutil.WriteJSON(w, s)
}

func (q *Quests) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /quests").
		HandlerFunc(restutil.WrapHandlerFunc(q.handleListQuests))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /quests/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(q.handleGetQuest))
	sub.Path("/{address}/participants").
		Methods(http.MethodGet).
		Name("GET /quests/{address}/participants").
		HandlerFunc(restutil.WrapHandlerFunc(q.handleGetParticipants))
	sub.Path("/{address}/participants/{user}").
		Methods(http.MethodGet).
		Name("GET /quests/{address}/participants/{user}").
		HandlerFunc(restutil.WrapHandlerFunc(q.handleGetParticipant))
	sub.Path("/{address}/submissions/{id}").
		Methods(http.MethodGet).
		Name("GET /quests/{address}/submissions/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(q.handleGetSubmission))
}
