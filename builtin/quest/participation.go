// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quest

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

// JoinQuest enrolls the caller and stakes exactly the quest's stake amount through the ledger.
// Native stakes are sent as value, token stakes are pulled from the transaction origin.
func (q *Quest) JoinQuest(env *xenv.Environment) (forge.Bytes32, error) {
	user := env.Caller()
	logger.Debug("joining quest", "quest", q.addr, "participant", user, "value", env.Value())

	unlock, err := env.Lock()
	if err != nil {
		return forge.Bytes32{}, err
	}
	defer unlock()

	info, cfg, err := q.loadActive(env.Now())
	if err != nil {
		logger.Info("join quest failed", "quest", q.addr, "participant", user, "error", err)
		return forge.Bytes32{}, err
	}
	existing, err := q.repo.getParticipant(user)
	if err != nil {
		return forge.Bytes32{}, err
	}
	if existing != nil {
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrAlreadyJoined, "%v is %v", user, existing.Status)
	}
	if info.Active >= cfg.MaxParticipants {
		logger.Info("join quest failed", "quest", q.addr, "participant", user, "error", reverts.ErrQuestFull)
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrQuestFull, "%d participants", info.Active)
	}
	value := env.Value()
	if forge.IsNative(cfg.Asset) {
		if value.Cmp(cfg.StakeAmount) != 0 {
			return forge.Bytes32{}, errors.WithMessagef(reverts.ErrIncorrectPayment, "sent %v, stake is %v", value, cfg.StakeAmount)
		}
	} else if value.Sign() != 0 {
		return forge.Bytes32{}, errors.WithMessage(reverts.ErrIncorrectPayment, "native value sent to a token quest")
	}

	p := &Participant{
		Address:     user,
		StakeAmount: new(big.Int).Set(cfg.StakeAmount),
		JoinedAt:    env.Now(),
		Status:      ParticipantActive,
	}
	info.Participants++
	info.Active++

	p.StakeID, err = xenv.Invoke(env, q.deps.Ledger.Address(), value, func(env *xenv.Environment) (forge.Bytes32, error) {
		return q.deps.Ledger.StakeFor(env, user, cfg.StakeAmount, cfg.Asset)
	})
	if err != nil {
		logger.Info("join quest failed", "quest", q.addr, "participant", user, "error", err)
		return forge.Bytes32{}, err
	}
	if err := firstErr(q.repo.setParticipant(p), q.repo.setInfo(info)); err != nil {
		return forge.Bytes32{}, err
	}
	if err := env.Log("ParticipantJoined", &participantJoinedEvent{user, p.StakeID, p.StakeAmount}, tx.AddressTopic(user)); err != nil {
		return forge.Bytes32{}, err
	}

	logger.Info("participant joined", "quest", q.addr, "participant", user, "stakeID", p.StakeID, "active", info.Active)
	return p.StakeID, nil
}

// WithdrawQuest lets an active participant leave early. The penalty shrinks linearly with
// the time remaining and is capped. It returns the amount slashed.
func (q *Quest) WithdrawQuest(env *xenv.Environment) (*big.Int, error) {
	user := env.Caller()
	logger.Debug("withdrawing from quest", "quest", q.addr, "participant", user)

	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	info, cfg, err := q.load()
	if err != nil {
		return nil, err
	}
	p, err := q.repo.getParticipant(user)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Status != ParticipantActive {
		logger.Info("withdraw quest failed", "quest", q.addr, "participant", user, "error", reverts.ErrNotParticipant)
		return nil, errors.WithMessagef(reverts.ErrNotParticipant, "%v", user)
	}
	maxPenalty, err := q.deps.Params.Uint64(forge.ParamMaxEarlyPenaltyBps)
	if err != nil {
		return nil, err
	}
	bps, err := EarlyPenaltyBps(env.Now(), info.ExpiresAt, cfg.Duration, maxPenalty)
	if err != nil {
		return nil, reverts.Arithmetic(err)
	}

	p.Status = ParticipantWithdrawn
	p.FinishedAt = env.Now()
	info.Active--
	if err := firstErr(q.repo.setParticipant(p), q.repo.setInfo(info)); err != nil {
		return nil, err
	}
	if err := env.Log("ParticipantWithdrawn", &participantWithdrawnEvent{user, bps}, tx.AddressTopic(user)); err != nil {
		return nil, err
	}

	slashed, err := xenv.Invoke(env, q.deps.Ledger.Address(), nil, func(env *xenv.Environment) (*big.Int, error) {
		return q.deps.Ledger.Slash(env, user, bps)
	})
	if err != nil {
		logger.Info("withdraw quest failed", "quest", q.addr, "participant", user, "error", err)
		return nil, err
	}

	logger.Info("participant withdrawn", "quest", q.addr, "participant", user, "penaltyBps", bps, "slashed", slashed)
	return slashed, nil
}

// EarlyPenaltyBps is remaining * 10000 / duration, capped at maxBps.
func EarlyPenaltyBps(now, expiresAt, duration, maxBps uint64) (uint64, error) {
	if now >= expiresAt || duration == 0 {
		return 0, nil
	}
	remaining := min(expiresAt-now, duration)
	bps, err := forge.MulDiv(new(big.Int).SetUint64(remaining), new(big.Int).SetUint64(forge.BasisPoints), new(big.Int).SetUint64(duration))
	if err != nil {
		return 0, err
	}
	return min(bps.Uint64(), maxBps), nil
}
