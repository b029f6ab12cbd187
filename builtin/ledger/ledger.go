// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/params"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/log"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

var logger = log.WithContext("pkg", "ledger")

// Ledger implements native methods of the `RewardPool` contract.
// It holds every escrowed unit of value: stakes, reward reserves, escrowed fees and the treasury.
type Ledger struct {
	addr   forge.Address
	repo   *repository
	params *params.Params
	acl    *acl.ACL
}

// New create a new instance.
func New(addr forge.Address, state *state.State, params *params.Params, acl *acl.ACL) *Ledger {
	return &Ledger{
		addr:   addr,
		repo:   newRepository(solidity.NewContext(addr, state)),
		params: params,
		acl:    acl,
	}
}

func (l *Ledger) Address() forge.Address { return l.addr }

//
// Getters - no state change
//

// GetStake returns a stake by id, nil if unknown.
func (l *Ledger) GetStake(id forge.Bytes32) (*Stake, error) {
	return l.repo.getStake(id)
}

// StakeOf returns the active stake of owner in quest, nil if none.
func (l *Ledger) StakeOf(owner, quest forge.Address) (*Stake, error) {
	return l.repo.activeStakeOf(owner, quest)
}

// ActiveStakesOf lists every active stake of owner.
func (l *Ledger) ActiveStakesOf(owner forge.Address) ([]*Stake, error) {
	return l.repo.activeStakesOf(owner)
}

// Pool returns the pool of a quest key, nil if none was created.
func (l *Ledger) Pool(quest forge.Address) (*Pool, error) {
	return l.repo.getPool(quest)
}

func (l *Ledger) Totals(asset forge.Address) (*Totals, error) {
	return l.repo.getTotals(asset)
}

func (l *Ledger) Treasury(asset forge.Address) (*big.Int, error) {
	return l.repo.getTreasury(asset)
}

// Escrow returns the fee held under ref, nil if none.
func (l *Ledger) Escrow(ref forge.Bytes32) (*FeeEscrow, error) {
	return l.repo.getEscrow(ref)
}

func (l *Ledger) IsSupported(asset forge.Address) (bool, error) {
	return l.repo.isSupported(asset)
}

//
// Setters - state change
//

// Stake deposits amount of asset against quest on behalf of the caller.
// Native overpayment is refunded to the caller. Stakes of managed pools are opened by their quest only.
func (l *Ledger) Stake(env *xenv.Environment, quest forge.Address, amount *big.Int, asset forge.Address) (forge.Bytes32, error) {
	logger.Debug("staking", "owner", env.Caller(), "quest", quest, "amount", amount, "asset", asset)

	unlock, err := env.Lock()
	if err != nil {
		return forge.Bytes32{}, err
	}
	defer unlock()

	if quest.IsZero() {
		return forge.Bytes32{}, errors.WithMessage(reverts.ErrInvalidAddress, "quest")
	}
	s, err := l.deposit(env, env.Caller(), quest, amount, asset, false)
	if err != nil {
		logger.Info("stake failed", "owner", env.Caller(), "quest", quest, "error", err)
		return forge.Bytes32{}, err
	}

	refund := new(big.Int)
	if forge.IsNative(asset) {
		refund.Sub(env.Value(), amount)
	}
	if err := env.Log("Staked", &stakedEvent{s.ID, s.Owner, s.Quest, s.Asset, s.Amount, refund},
		s.ID, tx.AddressTopic(s.Owner), tx.AddressTopic(s.Quest)); err != nil {
		return forge.Bytes32{}, err
	}
	if err := env.Transfer(forge.NativeAsset, env.Caller(), refund); err != nil {
		return forge.Bytes32{}, err
	}

	logger.Info("staked", "stakeID", s.ID, "owner", s.Owner, "quest", quest)
	return s.ID, nil
}

// StakeFor opens a stake for owner under the calling contract's quest key.
// Native value must match amount exactly, tokens are pulled from the transaction origin.
func (l *Ledger) StakeFor(env *xenv.Environment, owner forge.Address, amount *big.Int, asset forge.Address) (forge.Bytes32, error) {
	quest := env.Caller()
	logger.Debug("staking for", "owner", owner, "quest", quest, "amount", amount, "asset", asset)

	if err := l.acl.Require(acl.QuestContract, quest); err != nil {
		return forge.Bytes32{}, err
	}
	unlock, err := env.Lock()
	if err != nil {
		return forge.Bytes32{}, err
	}
	defer unlock()

	if owner.IsZero() {
		return forge.Bytes32{}, errors.WithMessage(reverts.ErrInvalidAddress, "owner")
	}
	s, err := l.deposit(env, owner, quest, amount, asset, true)
	if err != nil {
		logger.Info("stake for failed", "owner", owner, "quest", quest, "error", err)
		return forge.Bytes32{}, err
	}
	if err := env.Log("Staked", &stakedEvent{s.ID, s.Owner, s.Quest, s.Asset, s.Amount, new(big.Int)},
		s.ID, tx.AddressTopic(s.Owner), tx.AddressTopic(s.Quest)); err != nil {
		return forge.Bytes32{}, err
	}

	logger.Info("staked", "stakeID", s.ID, "owner", owner, "quest", quest)
	return s.ID, nil
}

// deposit opens a stake. Stakes forwarded by the quest key must carry the exact native value.
func (l *Ledger) deposit(env *xenv.Environment, owner, quest forge.Address, amount *big.Int, asset forge.Address, forwarded bool) (*Stake, error) {
	minStake, err := l.params.Get(forge.ParamMinStake)
	if err != nil {
		return nil, err
	}
	if amount == nil || amount.Cmp(minStake) < 0 {
		return nil, errors.WithMessagef(reverts.ErrInsufficientAmount, "minimum stake is %v", minStake)
	}
	supported, err := l.repo.isSupported(asset)
	if err != nil {
		return nil, err
	}
	if !supported {
		return nil, errors.WithMessagef(reverts.ErrUnsupportedAsset, "asset %v", asset)
	}
	if err := checkPayment(env, asset, amount, forwarded); err != nil {
		return nil, err
	}
	existing, err := l.repo.activeStakeOf(owner, quest)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.WithMessagef(reverts.ErrAlreadyStaked, "stake %v", existing.ID)
	}
	pool, err := l.openPool(env, quest, asset)
	if err != nil {
		return nil, err
	}
	if pool.Managed && !forwarded {
		return nil, errors.WithMessagef(reverts.ErrManagedStake, "pool %v", quest)
	}
	if !forge.IsNative(asset) {
		if err := env.TransferFrom(asset, env.Origin(), amount); err != nil {
			return nil, err
		}
	}

	nonce, err := l.repo.nextNonce()
	if err != nil {
		return nil, err
	}
	s := &Stake{
		ID:           forge.Blake2b([]byte("stake"), owner.Bytes(), quest.Bytes(), forge.Uint64Bytes(nonce)),
		Owner:        owner,
		Quest:        quest,
		Amount:       new(big.Int).Set(amount),
		Asset:        asset,
		OpenedAt:     env.Now(),
		LastActivity: env.Now(),
		Active:       true,
		RewardDebt:   new(big.Int),
	}
	totals, err := l.repo.getTotals(asset)
	if err != nil {
		return nil, err
	}
	if err := firstErr(
		addTo(pool.TotalStaked, amount),
		addTo(totals.TotalStaked, amount),
		addTo(totals.Deposits, amount),
	); err != nil {
		return nil, err
	}
	pool.Participants++

	if err := l.repo.openStake(s); err != nil {
		return nil, err
	}
	if err := l.save(pool, totals); err != nil {
		return nil, err
	}
	return s, nil
}

// Withdraw closes an active stake, paying the principal plus the final reward.
// The reward comes out of the pool's reserve, any shortfall is reported in the event.
func (l *Ledger) Withdraw(env *xenv.Environment, id forge.Bytes32) (*big.Int, error) {
	logger.Debug("withdrawing", "stakeID", id, "sender", env.Caller())

	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, pool, err := l.ownedStake(env, id)
	if err != nil {
		logger.Info("withdraw failed", "stakeID", id, "error", err)
		return nil, err
	}

	schedule, err := l.withdrawSchedule()
	if err != nil {
		return nil, err
	}
	reward, err := FinalReward(s.Amount, elapsedSince(env.Now(), s.OpenedAt), schedule)
	if err != nil {
		return nil, reverts.Arithmetic(err)
	}
	paid := minBig(reward, pool.RewardReserve)
	shortfall := new(big.Int).Sub(reward, paid)
	payout, err := forge.SafeAdd(s.Amount, paid)
	if err != nil {
		return nil, reverts.Arithmetic(err)
	}

	totals, err := l.repo.getTotals(s.Asset)
	if err != nil {
		return nil, err
	}
	if err := firstErr(
		subFrom(pool.TotalStaked, s.Amount),
		subFrom(pool.RewardReserve, paid),
		addTo(pool.TotalRewards, paid),
		subFrom(totals.TotalStaked, s.Amount),
		subFrom(totals.TotalReserves, paid),
		addTo(totals.TotalRewards, paid),
		addTo(totals.Releases, payout),
		addTo(s.RewardDebt, paid),
	); err != nil {
		return nil, err
	}
	pool.Participants--
	s.LastActivity = env.Now()

	if err := l.repo.closeStake(s); err != nil {
		return nil, err
	}
	if err := l.save(pool, totals); err != nil {
		return nil, err
	}
	if err := env.Log("Withdrawn", &withdrawnEvent{s.ID, s.Owner, s.Quest, s.Amount, paid, shortfall},
		s.ID, tx.AddressTopic(s.Owner), tx.AddressTopic(s.Quest)); err != nil {
		return nil, err
	}
	if err := env.Transfer(s.Asset, s.Owner, payout); err != nil {
		return nil, err
	}

	if shortfall.Sign() > 0 {
		logger.Warn("reward reserve short", "quest", s.Quest, "shortfall", shortfall)
	}
	logger.Info("withdrawn", "stakeID", id, "owner", s.Owner, "payout", payout)
	return payout, nil
}

// EmergencyWithdraw closes an active stake without reward, routing the penalty to the treasury.
func (l *Ledger) EmergencyWithdraw(env *xenv.Environment, id forge.Bytes32) (*big.Int, error) {
	logger.Debug("emergency withdrawing", "stakeID", id, "sender", env.Caller())

	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, pool, err := l.ownedStake(env, id)
	if err != nil {
		logger.Info("emergency withdraw failed", "stakeID", id, "error", err)
		return nil, err
	}
	penaltyBps, err := l.params.Uint64(forge.ParamEmergencyPenaltyBps)
	if err != nil {
		return nil, err
	}
	penalty, err := forge.ApplyBps(s.Amount, penaltyBps)
	if err != nil {
		return nil, reverts.Arithmetic(err)
	}
	refund := new(big.Int).Sub(s.Amount, penalty)

	totals, err := l.repo.getTotals(s.Asset)
	if err != nil {
		return nil, err
	}
	treasury, err := l.repo.getTreasury(s.Asset)
	if err != nil {
		return nil, err
	}
	if err := firstErr(
		subFrom(pool.TotalStaked, s.Amount),
		subFrom(totals.TotalStaked, s.Amount),
		addTo(totals.Releases, refund),
		addTo(treasury, penalty),
	); err != nil {
		return nil, err
	}
	pool.Participants--
	s.LastActivity = env.Now()

	if err := l.repo.closeStake(s); err != nil {
		return nil, err
	}
	if err := firstErr(l.save(pool, totals), l.repo.setTreasury(s.Asset, treasury)); err != nil {
		return nil, err
	}
	if err := env.Log("EmergencyWithdrawn", &emergencyWithdrawnEvent{s.ID, s.Owner, s.Quest, refund, penalty},
		s.ID, tx.AddressTopic(s.Owner), tx.AddressTopic(s.Quest)); err != nil {
		return nil, err
	}
	if err := env.Transfer(s.Asset, s.Owner, refund); err != nil {
		return nil, err
	}

	logger.Info("emergency withdrawn", "stakeID", id, "owner", s.Owner, "refund", refund, "penalty", penalty)
	return refund, nil
}

// ownedStake loads an active stake owned by the caller, outside managed pools.
func (l *Ledger) ownedStake(env *xenv.Environment, id forge.Bytes32) (*Stake, *Pool, error) {
	s, err := l.repo.getStake(id)
	if err != nil {
		return nil, nil, err
	}
	if s == nil {
		return nil, nil, errors.WithMessagef(reverts.ErrUnknownStake, "stake %v", id)
	}
	if s.Owner != env.Caller() {
		return nil, nil, errors.WithMessagef(reverts.ErrNotOwner, "stake %v", id)
	}
	if !s.Active {
		return nil, nil, errors.WithMessagef(reverts.ErrStakeInactive, "stake %v", id)
	}
	pool, err := l.repo.getPool(s.Quest)
	if err != nil {
		return nil, nil, err
	}
	if pool == nil {
		return nil, nil, errors.WithMessagef(reverts.ErrUnknownPool, "pool %v", s.Quest)
	}
	if pool.Managed {
		return nil, nil, errors.WithMessagef(reverts.ErrManagedStake, "pool %v", s.Quest)
	}
	return s, pool, nil
}

func (l *Ledger) withdrawSchedule() (WithdrawSchedule, error) {
	var (
		s   WithdrawSchedule
		err error
	)
	for _, p := range []struct {
		param *forge.Param
		dst   *uint64
	}{
		{forge.ParamBaseRateBps, &s.BaseRateBps},
		{forge.ParamWithdrawSpeedBonusBps, &s.BonusBps},
		{forge.ParamSpeedBonusWindow, &s.BonusWindow},
		{forge.ParamSpeedBonusDecay, &s.BonusDecay},
	} {
		if *p.dst, err = l.params.Uint64(p.param); err != nil {
			return WithdrawSchedule{}, err
		}
	}
	return s, nil
}

// DefaultPolicy is the bonus policy given to pools created without one.
func (l *Ledger) DefaultPolicy() (Policy, error) {
	var (
		p   Policy
		err error
	)
	if p.PerformanceBonusBps, err = l.params.Uint64(forge.ParamPerformanceBonusBps); err != nil {
		return p, err
	}
	if p.SpeedBonusBps, err = l.params.Uint64(forge.ParamRewardSpeedBonusBps); err != nil {
		return p, err
	}
	p.SpeedDecay, err = l.params.Uint64(forge.ParamSpeedBonusDecay)
	return p, err
}

// poolFor loads the pool of quest, creating it with the default policy on first use.
func (l *Ledger) poolFor(quest, asset forge.Address) (*Pool, error) {
	pool, err := l.repo.getPool(quest)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		policy, err := l.DefaultPolicy()
		if err != nil {
			return nil, err
		}
		return newPool(quest, asset, policy), nil
	}
	if pool.Asset != asset {
		return nil, errors.WithMessagef(reverts.ErrAssetMismatch, "pool %v holds %v", quest, pool.Asset)
	}
	return pool, nil
}

// openPool loads the pool of quest for a deposit. Only the factory, an admin or the quest key itself
// may bring a pool into existence, so nobody can claim the address of a future quest.
func (l *Ledger) openPool(env *xenv.Environment, quest, asset forge.Address) (*Pool, error) {
	existing, err := l.repo.getPool(quest)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		allowed, err := l.mayCreatePool(env.Caller(), quest)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, errors.WithMessagef(reverts.ErrUnknownPool, "pool %v", quest)
		}
	}
	return l.poolFor(quest, asset)
}

func (l *Ledger) mayCreatePool(sender, quest forge.Address) (bool, error) {
	if sender == quest {
		return l.acl.HasRole(acl.QuestContract, sender)
	}
	for _, role := range []acl.Role{acl.Factory, acl.Admin} {
		has, err := l.acl.HasRole(role, sender)
		if err != nil || has {
			return has, err
		}
	}
	return false, nil
}

func (l *Ledger) save(pool *Pool, totals *Totals) error {
	return firstErr(l.repo.setPool(pool), l.repo.setTotals(pool.Asset, totals))
}

func checkPayment(env *xenv.Environment, asset forge.Address, amount *big.Int, exact bool) error {
	value := env.Value()
	if !forge.IsNative(asset) {
		if value.Sign() != 0 {
			return errors.WithMessage(reverts.ErrIncorrectPayment, "native value sent with token asset")
		}
		return nil
	}
	if exact && value.Cmp(amount) != 0 {
		return errors.WithMessagef(reverts.ErrIncorrectPayment, "sent %v, want %v", value, amount)
	}
	if value.Cmp(amount) < 0 {
		return errors.WithMessagef(reverts.ErrIncorrectPayment, "sent %v, want at least %v", value, amount)
	}
	return nil
}
