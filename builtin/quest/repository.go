// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quest

import (
	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
)

var (
	slotConfig       = forge.BytesToBytes32([]byte("config"))
	slotInfo         = forge.BytesToBytes32([]byte("info"))
	slotMilestones   = forge.BytesToBytes32([]byte("milestones"))
	slotParticipants = forge.BytesToBytes32([]byte("participants"))
	slotRoster       = forge.BytesToBytes32([]byte("roster"))
	slotSubmissions  = forge.BytesToBytes32([]byte("submissions"))
	slotPending      = forge.BytesToBytes32([]byte("pending-submissions"))
	slotResults      = forge.BytesToBytes32([]byte("verifier-results"))
	slotNonce        = forge.BytesToBytes32([]byte("submission-nonce"))
)

type milestoneKey uint64

func (k milestoneKey) Bytes() []byte { return forge.Uint64Bytes(uint64(k)) }

// progressKey addresses one participant on one milestone.
type progressKey struct {
	participant forge.Address
	milestone   uint64
}

func (k progressKey) Bytes() []byte {
	return append(k.participant.Bytes(), forge.Uint64Bytes(k.milestone)...)
}

type resultKey struct {
	submission forge.Bytes32
	verifier   forge.Address
}

func (k resultKey) Bytes() []byte {
	return append(k.submission.Bytes(), k.verifier.Bytes()...)
}

type repository struct {
	config       *solidity.Value[*Config]
	info         *solidity.Value[*Info]
	milestones   *solidity.Mapping[milestoneKey, *Milestone]
	participants *solidity.Mapping[forge.Address, *Participant]
	roster       *solidity.IndexedSet[forge.Address]
	submissions  *solidity.Mapping[forge.Bytes32, *Submission]
	pending      *solidity.Mapping[progressKey, forge.Bytes32]
	results      *solidity.Mapping[resultKey, bool]
	nonce        *solidity.Uint256
}

func newRepository(sctx *solidity.Context) *repository {
	return &repository{
		config:       solidity.NewValue[*Config](sctx, slotConfig),
		info:         solidity.NewValue[*Info](sctx, slotInfo),
		milestones:   solidity.NewMapping[milestoneKey, *Milestone](sctx, slotMilestones),
		participants: solidity.NewMapping[forge.Address, *Participant](sctx, slotParticipants),
		roster:       solidity.NewIndexedSet[forge.Address](sctx, slotRoster),
		submissions:  solidity.NewMapping[forge.Bytes32, *Submission](sctx, slotSubmissions),
		pending:      solidity.NewMapping[progressKey, forge.Bytes32](sctx, slotPending),
		results:      solidity.NewMapping[resultKey, bool](sctx, slotResults),
		nonce:        solidity.NewUint256(sctx, slotNonce),
	}
}

func (r *repository) getConfig() (*Config, error) {
	c, err := r.config.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config")
	}
	return c, nil
}

func (r *repository) getInfo() (*Info, error) {
	info, err := r.info.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get info")
	}
	return info, nil
}

func (r *repository) setInfo(info *Info) error {
	return errors.Wrap(r.info.Set(info), "failed to set info")
}

func (r *repository) getMilestone(id uint64) (*Milestone, error) {
	m, err := r.milestones.Get(milestoneKey(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get milestone")
	}
	return m, nil
}

func (r *repository) setMilestone(m *Milestone) error {
	return errors.Wrap(r.milestones.Set(milestoneKey(m.ID), m), "failed to set milestone")
}

func (r *repository) getParticipant(addr forge.Address) (*Participant, error) {
	p, err := r.participants.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get participant")
	}
	return p, nil
}

// setParticipant persists p and keeps the roster of active participants in line with its status.
func (r *repository) setParticipant(p *Participant) error {
	if err := r.participants.Set(p.Address, p); err != nil {
		return errors.Wrap(err, "failed to set participant")
	}
	var err error
	if p.Status == ParticipantActive {
		_, err = r.roster.Add(p.Address)
	} else {
		_, err = r.roster.Remove(p.Address)
	}
	return errors.Wrap(err, "failed to update roster")
}

func (r *repository) getSubmission(id forge.Bytes32) (*Submission, error) {
	s, err := r.submissions.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get submission")
	}
	return s, nil
}

// setSubmission persists s and tracks it as the open submission of its participant while pending.
func (r *repository) setSubmission(s *Submission) error {
	if err := r.submissions.Set(s.ID, s); err != nil {
		return errors.Wrap(err, "failed to set submission")
	}
	key := progressKey{s.Submitter, s.Milestone}
	if s.Status == SubmissionPending {
		return errors.Wrap(r.pending.Set(key, s.ID), "failed to set pending submission")
	}
	open, err := r.pending.Get(key)
	if err != nil {
		return errors.Wrap(err, "failed to get pending submission")
	}
	if open == s.ID {
		r.pending.Delete(key)
	}
	return nil
}

func (r *repository) pendingOf(participant forge.Address, milestone uint64) (forge.Bytes32, error) {
	id, err := r.pending.Get(progressKey{participant, milestone})
	if err != nil {
		return forge.Bytes32{}, errors.Wrap(err, "failed to get pending submission")
	}
	return id, nil
}
