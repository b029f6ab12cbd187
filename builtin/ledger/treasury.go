// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

// FundRewards adds amount to the reward reserve of quest. Anyone may fund an existing pool.
func (l *Ledger) FundRewards(env *xenv.Environment, quest, asset forge.Address, amount *big.Int) (*big.Int, error) {
	logger.Debug("funding rewards", "quest", quest, "asset", asset, "amount", amount, "funder", env.Caller())

	if quest.IsZero() {
		return nil, errors.WithMessage(reverts.ErrInvalidAddress, "quest")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, errors.WithMessage(reverts.ErrInvalidAmount, "reward budget")
	}
	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	pool, err := l.openPool(env, quest, asset)
	if err != nil {
		logger.Info("fund rewards failed", "quest", quest, "error", err)
		return nil, err
	}
	if err := l.pull(env, asset, amount); err != nil {
		logger.Info("fund rewards failed", "quest", quest, "error", err)
		return nil, err
	}
	totals, err := l.repo.getTotals(asset)
	if err != nil {
		return nil, err
	}
	if err := firstErr(
		addTo(pool.RewardReserve, amount),
		addTo(totals.TotalReserves, amount),
		addTo(totals.Deposits, amount),
	); err != nil {
		return nil, err
	}
	if err := l.save(pool, totals); err != nil {
		return nil, err
	}
	if err := env.Log("RewardsFunded", &rewardsFundedEvent{quest, env.Caller(), asset, amount, pool.RewardReserve},
		tx.AddressTopic(quest), tx.AddressTopic(env.Caller())); err != nil {
		return nil, err
	}

	logger.Info("rewards funded", "quest", quest, "reserve", pool.RewardReserve)
	return new(big.Int).Set(pool.RewardReserve), nil
}

// ConfigurePool sets the bonus policy of a quest pool, creating it if needed. Factory or admin.
// Pools the factory configures are managed: their stakes leave through the quest only.
func (l *Ledger) ConfigurePool(env *xenv.Environment, quest, asset forge.Address, policy Policy) error {
	logger.Debug("configuring pool", "quest", quest, "asset", asset, "sender", env.Caller())

	isFactory, err := l.acl.HasRole(acl.Factory, env.Caller())
	if err != nil {
		return err
	}
	if !isFactory {
		if err := l.acl.Require(acl.Admin, env.Caller()); err != nil {
			return err
		}
	}
	if policy.PerformanceBonusBps > forge.BasisPoints || policy.SpeedBonusBps > forge.BasisPoints {
		return errors.WithMessage(reverts.ErrInvalidConfig, "bonus above 100%")
	}
	pool, err := l.poolFor(quest, asset)
	if err != nil {
		return err
	}
	pool.Policy = policy
	pool.Managed = pool.Managed || isFactory
	if err := l.repo.setPool(pool); err != nil {
		return err
	}
	return env.Log("PoolConfigured", &poolConfiguredEvent{quest, asset, policy}, tx.AddressTopic(quest))
}

// InitPool creates a pool without caller check. Used while building genesis.
// Stakes of a managed pool are released by its quest key only.
func (l *Ledger) InitPool(quest, asset forge.Address, policy Policy, managed bool) error {
	pool, err := l.poolFor(quest, asset)
	if err != nil {
		return err
	}
	pool.Policy = policy
	pool.Managed = managed
	return l.repo.setPool(pool)
}

// HoldFee escrows a fee paid by payer under ref, on behalf of the calling contract.
func (l *Ledger) HoldFee(env *xenv.Environment, ref forge.Bytes32, payer, asset forge.Address, amount *big.Int) error {
	holder := env.Caller()
	logger.Debug("holding fee", "ref", ref, "holder", holder, "payer", payer, "amount", amount)

	if err := l.acl.Require(acl.QuestContract, holder); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return errors.WithMessage(reverts.ErrInvalidAmount, "fee")
	}
	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	existing, err := l.repo.getEscrow(ref)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.WithMessagef(reverts.ErrEscrowExists, "ref %v", ref)
	}
	if err := l.pull(env, asset, amount); err != nil {
		return err
	}
	totals, err := l.repo.getTotals(asset)
	if err != nil {
		return err
	}
	if err := firstErr(addTo(totals.TotalEscrowed, amount), addTo(totals.Deposits, amount)); err != nil {
		return err
	}
	escrow := &FeeEscrow{Ref: ref, Holder: holder, Payer: payer, Asset: asset, Amount: new(big.Int).Set(amount)}
	if err := firstErr(l.repo.escrows.Set(ref, escrow), l.repo.setTotals(asset, totals)); err != nil {
		return err
	}
	if err := env.Log("FeeHeld", &feeEvent{ref, holder, payer, asset, amount}, ref, tx.AddressTopic(payer)); err != nil {
		return err
	}

	logger.Info("fee held", "ref", ref, "payer", payer, "amount", amount)
	return nil
}

// RefundFee returns an escrowed fee to its payer. A refused refund becomes claimable.
func (l *Ledger) RefundFee(env *xenv.Environment, ref forge.Bytes32) (*big.Int, error) {
	logger.Debug("refunding fee", "ref", ref, "sender", env.Caller())

	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	escrow, totals, err := l.releaseEscrow(env, ref)
	if err != nil {
		logger.Info("refund fee failed", "ref", ref, "error", err)
		return nil, err
	}
	if err := addTo(totals.Releases, escrow.Amount); err != nil {
		return nil, err
	}
	if err := l.repo.setTotals(escrow.Asset, totals); err != nil {
		return nil, err
	}
	if err := env.Log("FeeRefunded", &feeEvent{ref, escrow.Holder, escrow.Payer, escrow.Asset, escrow.Amount},
		ref, tx.AddressTopic(escrow.Payer)); err != nil {
		return nil, err
	}
	if err := l.payOrCredit(env, escrow.Asset, escrow.Payer, escrow.Amount); err != nil {
		return nil, err
	}

	logger.Info("fee refunded", "ref", ref, "payer", escrow.Payer, "amount", escrow.Amount)
	return escrow.Amount, nil
}

// ForfeitFee moves an escrowed fee to the treasury.
func (l *Ledger) ForfeitFee(env *xenv.Environment, ref forge.Bytes32) (*big.Int, error) {
	logger.Debug("forfeiting fee", "ref", ref, "sender", env.Caller())

	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	escrow, totals, err := l.releaseEscrow(env, ref)
	if err != nil {
		logger.Info("forfeit fee failed", "ref", ref, "error", err)
		return nil, err
	}
	treasury, err := l.repo.getTreasury(escrow.Asset)
	if err != nil {
		return nil, err
	}
	if err := addTo(treasury, escrow.Amount); err != nil {
		return nil, err
	}
	if err := firstErr(l.repo.setTotals(escrow.Asset, totals), l.repo.setTreasury(escrow.Asset, treasury)); err != nil {
		return nil, err
	}
	if err := env.Log("FeeForfeited", &feeEvent{ref, escrow.Holder, escrow.Payer, escrow.Asset, escrow.Amount},
		ref, tx.AddressTopic(escrow.Payer)); err != nil {
		return nil, err
	}

	logger.Info("fee forfeited", "ref", ref, "amount", escrow.Amount)
	return escrow.Amount, nil
}

// releaseEscrow drops the escrow under ref, which only its holder may do.
func (l *Ledger) releaseEscrow(env *xenv.Environment, ref forge.Bytes32) (*FeeEscrow, *Totals, error) {
	if err := l.acl.Require(acl.QuestContract, env.Caller()); err != nil {
		return nil, nil, err
	}
	escrow, err := l.repo.getEscrow(ref)
	if err != nil {
		return nil, nil, err
	}
	if escrow == nil {
		return nil, nil, errors.WithMessagef(reverts.ErrUnknownEscrow, "ref %v", ref)
	}
	if escrow.Holder != env.Caller() {
		return nil, nil, errors.WithMessagef(reverts.ErrUnauthorized, "escrow %v is held by %v", ref, escrow.Holder)
	}
	totals, err := l.repo.getTotals(escrow.Asset)
	if err != nil {
		return nil, nil, err
	}
	if err := subFrom(totals.TotalEscrowed, escrow.Amount); err != nil {
		return nil, nil, err
	}
	l.repo.escrows.Delete(ref)
	return escrow, totals, nil
}

// AddAsset adds a fungible token to the supported list. Admin only.
func (l *Ledger) AddAsset(env *xenv.Environment, asset forge.Address) error {
	logger.Debug("adding asset", "asset", asset, "sender", env.Caller())

	if err := l.acl.Require(acl.Admin, env.Caller()); err != nil {
		return err
	}
	if err := l.InitAsset(asset); err != nil {
		return err
	}
	return env.Log("AssetAdded", &assetAddedEvent{asset}, tx.AddressTopic(asset))
}

// InitAsset marks asset supported without caller check. Used while building genesis.
func (l *Ledger) InitAsset(asset forge.Address) error {
	if forge.IsNative(asset) {
		return errors.WithMessage(reverts.ErrInvalidAddress, "native asset is always supported")
	}
	return l.repo.assets.Set(asset, true)
}

// WithdrawTreasury pays amount of the treasury to `to`. Admin only.
func (l *Ledger) WithdrawTreasury(env *xenv.Environment, asset, to forge.Address, amount *big.Int) error {
	logger.Debug("withdrawing treasury", "asset", asset, "to", to, "amount", amount, "sender", env.Caller())

	if err := l.acl.Require(acl.Admin, env.Caller()); err != nil {
		return err
	}
	if to.IsZero() {
		return errors.WithMessage(reverts.ErrInvalidAddress, "recipient")
	}
	if amount == nil || amount.Sign() <= 0 {
		return errors.WithMessage(reverts.ErrInvalidAmount, "treasury withdrawal")
	}
	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	treasury, err := l.repo.getTreasury(asset)
	if err != nil {
		return err
	}
	if treasury.Cmp(amount) < 0 {
		return errors.WithMessagef(reverts.ErrInsufficientBalance, "treasury holds %v", treasury)
	}
	totals, err := l.repo.getTotals(asset)
	if err != nil {
		return err
	}
	if err := firstErr(subFrom(treasury, amount), addTo(totals.Releases, amount)); err != nil {
		return err
	}
	if err := firstErr(l.repo.setTreasury(asset, treasury), l.repo.setTotals(asset, totals)); err != nil {
		return err
	}
	if err := env.Log("TreasuryWithdrawn", &treasuryWithdrawnEvent{asset, to, amount}, tx.AddressTopic(to)); err != nil {
		return err
	}
	if err := env.Transfer(asset, to, amount); err != nil {
		return err
	}

	logger.Info("treasury withdrawn", "asset", asset, "to", to, "amount", amount)
	return nil
}

// pull collects a payment of amount into the ledger.
func (l *Ledger) pull(env *xenv.Environment, asset forge.Address, amount *big.Int) error {
	supported, err := l.repo.isSupported(asset)
	if err != nil {
		return err
	}
	if !supported {
		return errors.WithMessagef(reverts.ErrUnsupportedAsset, "asset %v", asset)
	}
	if err := checkPayment(env, asset, amount, true); err != nil {
		return err
	}
	if forge.IsNative(asset) {
		return nil
	}
	return env.TransferFrom(asset, env.Origin(), amount)
}
