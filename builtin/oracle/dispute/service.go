// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dispute

import (
	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
)

var (
	slotDisputes = forge.BytesToBytes32([]byte("disputes"))
	slotReviews  = forge.BytesToBytes32([]byte("dispute-reviews"))
)

type reviewKey struct {
	dispute  forge.Bytes32
	reviewer forge.Address
}

func (k reviewKey) Bytes() []byte {
	return append(k.dispute.Bytes(), k.reviewer.Bytes()...)
}

type Service struct {
	disputes *solidity.Mapping[forge.Bytes32, *Dispute]
	reviews  *solidity.Mapping[reviewKey, *Review]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		disputes: solidity.NewMapping[forge.Bytes32, *Dispute](sctx, slotDisputes),
		reviews:  solidity.NewMapping[reviewKey, *Review](sctx, slotReviews),
	}
}

func (s *Service) Get(id forge.Bytes32) (*Dispute, error) {
	d, err := s.disputes.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dispute")
	}
	return d, nil
}

// Of returns the dispute raised against an evidence, nil if none.
func (s *Service) Of(evidenceID forge.Bytes32) (*Dispute, error) {
	return s.Get(ID(evidenceID))
}

func (s *Service) Set(d *Dispute) error {
	return errors.Wrap(s.disputes.Set(d.ID, d), "failed to set dispute")
}

func (s *Service) GetReview(id forge.Bytes32, reviewer forge.Address) (*Review, error) {
	r, err := s.reviews.Get(reviewKey{id, reviewer})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get review")
	}
	return r, nil
}

func (s *Service) SetReview(id forge.Bytes32, r *Review) error {
	return errors.Wrap(s.reviews.Set(reviewKey{id, r.Reviewer}, r), "failed to set review")
}
