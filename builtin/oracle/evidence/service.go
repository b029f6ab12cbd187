// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package evidence

import (
	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
)

var (
	slotEvidence = forge.BytesToBytes32([]byte("evidence"))
	slotVotes    = forge.BytesToBytes32([]byte("evidence-votes"))
	slotPending  = forge.BytesToBytes32([]byte("evidence-pending"))
)

type voteKey struct {
	evidence  forge.Bytes32
	validator forge.Address
}

func (k voteKey) Bytes() []byte {
	return append(k.evidence.Bytes(), k.validator.Bytes()...)
}

// Service stores evidence records, their votes and the pending request set.
type Service struct {
	records *solidity.Mapping[forge.Bytes32, *Evidence]
	votes   *solidity.Mapping[voteKey, *Vote]
	pending *solidity.IndexedSet[forge.Bytes32]
}

func NewService(sctx *solidity.Context) *Service {
	return &Service{
		records: solidity.NewMapping[forge.Bytes32, *Evidence](sctx, slotEvidence),
		votes:   solidity.NewMapping[voteKey, *Vote](sctx, slotVotes),
		pending: solidity.NewIndexedSet[forge.Bytes32](sctx, slotPending),
	}
}

func (s *Service) Get(id forge.Bytes32) (*Evidence, error) {
	e, err := s.records.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get evidence")
	}
	return e, nil
}

// Set persists e, keeping it in the pending set while it awaits a verdict.
func (s *Service) Set(e *Evidence) error {
	if err := s.records.Set(e.ID, e); err != nil {
		return errors.Wrap(err, "failed to set evidence")
	}
	var err error
	if e.Status == StatusPending {
		_, err = s.pending.Add(e.ID)
	} else {
		_, err = s.pending.Remove(e.ID)
	}
	return errors.Wrap(err, "failed to update pending requests")
}

func (s *Service) GetVote(id forge.Bytes32, validator forge.Address) (*Vote, error) {
	v, err := s.votes.Get(voteKey{id, validator})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vote")
	}
	return v, nil
}

func (s *Service) SetVote(id forge.Bytes32, v *Vote) error {
	return errors.Wrap(s.votes.Set(voteKey{id, v.Validator}, v), "failed to set vote")
}

func (s *Service) Pending() ([]forge.Bytes32, error) {
	return s.pending.All()
}
