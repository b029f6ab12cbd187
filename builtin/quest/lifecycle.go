// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quest

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

// Initialize activates the quest with cfg. Only a factory may initialize, and only once:
// a later call leaves the quest untouched.
func (q *Quest) Initialize(env *xenv.Environment, cfg *Config, ledger, oracle, nft forge.Address) error {
	logger.Debug("initializing quest", "quest", q.addr, "sender", env.Caller())

	if err := q.deps.ACL.Require(acl.Factory, env.Caller()); err != nil {
		logger.Info("initialize failed", "quest", q.addr, "error", err)
		return err
	}
	switch {
	case ledger != q.deps.Ledger.Address():
		return errors.WithMessagef(reverts.ErrInvalidAddress, "ledger %v", ledger)
	case oracle != q.deps.Oracle.Address():
		return errors.WithMessagef(reverts.ErrInvalidAddress, "oracle %v", oracle)
	case nft != q.deps.NFT.Address():
		return errors.WithMessagef(reverts.ErrInvalidAddress, "nft %v", nft)
	}
	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	existing, err := q.repo.getInfo()
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Warn("quest already initialized, ignoring", "quest", q.addr, "status", existing.Status, "sender", env.Caller())
		return nil
	}

	minStake, err := q.deps.Params.Get(forge.ParamMinStake)
	if err != nil {
		return err
	}
	maxParticipants, err := q.deps.Params.Uint64(forge.ParamMaxParticipants)
	if err != nil {
		return err
	}
	if err := cfg.Validate(Limits{MinStake: minStake, MaxParticipants: maxParticipants}); err != nil {
		logger.Info("initialize failed", "quest", q.addr, "error", err)
		return err
	}
	now := env.Now()
	expires := now + cfg.Duration
	if expires < now {
		return errors.WithMessage(reverts.ErrArithmetic, "quest expiry")
	}

	info := &Info{
		Status:      StatusActive,
		Ledger:      ledger,
		Oracle:      oracle,
		NFT:         nft,
		ActivatedAt: now,
		ExpiresAt:   expires,
	}
	if err := q.repo.config.Set(cfg); err != nil {
		return errors.Wrap(err, "failed to set config")
	}
	for i, mc := range cfg.Milestones {
		deadline := expires
		if mc.Deadline > 0 {
			deadline = now + mc.Deadline
		}
		m := &Milestone{
			ID:               uint64(i),
			Title:            mc.Title,
			VerificationType: mc.VerificationType,
			RequiredTags:     mc.RequiredTags,
			Deadline:         deadline,
			Threshold:        mc.Threshold,
			Quorum:           max(mc.Quorum, 1),
			Status:           MilestoneActive,
		}
		if err := q.repo.setMilestone(m); err != nil {
			return err
		}
	}
	if err := q.repo.setInfo(info); err != nil {
		return err
	}
	if err := env.Log("QuestActivated", &questActivatedEvent{cfg.Creator, cfg.Title, cfg.Asset, cfg.StakeAmount, uint64(len(cfg.Milestones)), info.ExpiresAt},
		tx.AddressTopic(cfg.Creator)); err != nil {
		return err
	}

	logger.Info("quest initialized", "quest", q.addr, "creator", cfg.Creator, "milestones", len(cfg.Milestones), "expiresAt", info.ExpiresAt)
	return nil
}

// EndQuest closes the quest. It completes when enough participants finished, else it fails.
// Participants still active fail and are slashed.
func (q *Quest) EndQuest(env *xenv.Environment) (Status, error) {
	logger.Debug("ending quest", "quest", q.addr, "sender", env.Caller())

	unlock, err := env.Lock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	info, cfg, err := q.load()
	if err != nil {
		return 0, err
	}
	if err := q.requireAdmin(env.Caller(), cfg); err != nil {
		logger.Info("end quest failed", "quest", q.addr, "error", err)
		return 0, err
	}
	if info.Status != StatusActive && info.Status != StatusEmergencyPaused {
		return 0, errors.WithMessagef(reverts.ErrInvalidStatus, "quest is %v", info.Status)
	}
	threshold, err := q.deps.Params.Uint64(forge.ParamCompletionRateBps)
	if err != nil {
		return 0, err
	}
	rate, err := completionRate(info)
	if err != nil {
		return 0, reverts.Arithmetic(err)
	}
	status := StatusFailed
	if info.Participants > 0 && rate >= threshold {
		status = StatusCompleted
	}
	if err := q.close(env, info, cfg, status); err != nil {
		return 0, err
	}
	logger.Info("quest ended", "quest", q.addr, "status", status, "rateBps", rate, "completed", info.Completed, "participants", info.Participants)
	return status, nil
}

// Expire closes an active quest past its expiry. Anyone may call it.
func (q *Quest) Expire(env *xenv.Environment) error {
	logger.Debug("expiring quest", "quest", q.addr, "sender", env.Caller())

	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	info, cfg, err := q.load()
	if err != nil {
		return err
	}
	if info.Status != StatusActive {
		return errors.WithMessagef(reverts.ErrInvalidStatus, "quest is %v", info.Status)
	}
	if env.Now() < info.ExpiresAt {
		return errors.WithMessagef(reverts.ErrNotExpired, "quest expires at %d", info.ExpiresAt)
	}
	if err := q.close(env, info, cfg, StatusExpired); err != nil {
		return err
	}
	logger.Info("quest expired", "quest", q.addr, "completed", info.Completed, "participants", info.Participants)
	return nil
}

// Pause halts joins and submissions.
func (q *Quest) Pause(env *xenv.Environment) error {
	return q.setPaused(env, StatusActive, StatusEmergencyPaused, "QuestPaused")
}

func (q *Quest) Unpause(env *xenv.Environment) error {
	return q.setPaused(env, StatusEmergencyPaused, StatusActive, "QuestUnpaused")
}

func (q *Quest) setPaused(env *xenv.Environment, from, to Status, event string) error {
	logger.Debug("changing quest status", "quest", q.addr, "to", to, "sender", env.Caller())

	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	info, cfg, err := q.load()
	if err != nil {
		return err
	}
	if err := q.requireAdmin(env.Caller(), cfg); err != nil {
		logger.Info("change quest status failed", "quest", q.addr, "error", err)
		return err
	}
	if info.Status != from {
		return errors.WithMessagef(reverts.ErrInvalidStatus, "quest is %v", info.Status)
	}
	info.Status = to
	if err := q.repo.setInfo(info); err != nil {
		return err
	}
	if err := env.Log(event, &questStatusEvent{to, env.Caller()}, tx.AddressTopic(env.Caller())); err != nil {
		return err
	}
	logger.Info("quest status changed", "quest", q.addr, "status", to)
	return nil
}

// close moves the quest to a terminal status, settles milestones and sweeps the remaining participants.
func (q *Quest) close(env *xenv.Environment, info *Info, cfg *Config, status Status) error {
	slashBps, err := q.deps.Params.Uint64(forge.ParamFailureSlashBps)
	if err != nil {
		return err
	}
	rate, err := completionRate(info)
	if err != nil {
		return reverts.Arithmetic(err)
	}
	for i := range uint64(len(cfg.Milestones)) {
		m, err := q.repo.getMilestone(i)
		if err != nil {
			return err
		}
		m.Status = MilestoneFailed
		if m.CompletedBy > 0 {
			m.Status = MilestoneCompleted
		}
		if err := q.repo.setMilestone(m); err != nil {
			return err
		}
	}

	roster, err := q.repo.roster.All()
	if err != nil {
		return err
	}
	for _, addr := range roster {
		p, err := q.repo.getParticipant(addr)
		if err != nil {
			return err
		}
		p.Status = ParticipantFailed
		p.FinishedAt = env.Now()
		if err := q.repo.setParticipant(p); err != nil {
			return err
		}
		info.Active--
	}
	info.Status = status
	info.ClosedAt = env.Now()
	if err := q.repo.setInfo(info); err != nil {
		return err
	}
	if err := env.Log("QuestClosed", &questClosedEvent{status, info.Participants, info.Completed, rate, uint64(len(roster))}); err != nil {
		return err
	}

	// state is settled, the ledger refunds what is left of each stake
	for _, addr := range roster {
		if err := q.slash(env, addr, slashBps); err != nil {
			return err
		}
	}
	return nil
}

// slash forfeits bps of the participant's stake. A refund the participant refuses is
// credited to them by the ledger, so a failing slash fails the whole close.
func (q *Quest) slash(env *xenv.Environment, participant forge.Address, bps uint64) error {
	slashed, err := xenv.Invoke(env, q.deps.Ledger.Address(), nil, func(env *xenv.Environment) (*big.Int, error) {
		return q.deps.Ledger.Slash(env, participant, bps)
	})
	if err != nil {
		logger.Info("slash failed", "quest", q.addr, "participant", participant, "error", err)
		return err
	}
	return env.Log("ParticipantSlashed", &participantSlashedEvent{participant, bps, slashed}, tx.AddressTopic(participant))
}

// completionRate is completed / joined in basis points.
func completionRate(info *Info) (uint64, error) {
	if info.Participants == 0 {
		return 0, nil
	}
	rate, err := forge.MulDiv(new(big.Int).SetUint64(info.Completed), new(big.Int).SetUint64(forge.BasisPoints), new(big.Int).SetUint64(info.Participants))
	if err != nil {
		return 0, err
	}
	return rate.Uint64(), nil
}
