// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

// Claimable returns what owner may pull with Claim.
func (l *Ledger) Claimable(asset, owner forge.Address) (*big.Int, error) {
	return l.repo.getClaim(asset, owner)
}

// Claim pays the caller every refused payout credited to them in asset.
func (l *Ledger) Claim(env *xenv.Environment, asset forge.Address) (*big.Int, error) {
	owner := env.Caller()
	logger.Debug("claiming", "owner", owner, "asset", asset)

	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	amount, err := l.repo.getClaim(asset, owner)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, errors.WithMessagef(reverts.ErrInvalidAmount, "nothing to claim for %v", owner)
	}
	totals, err := l.repo.getTotals(asset)
	if err != nil {
		return nil, err
	}
	if err := firstErr(subFrom(totals.TotalClaimable, amount), addTo(totals.Releases, amount)); err != nil {
		return nil, err
	}
	if err := firstErr(l.repo.setClaim(asset, owner, new(big.Int)), l.repo.setTotals(asset, totals)); err != nil {
		return nil, err
	}
	if err := env.Log("Claimed", &claimedEvent{asset, owner, amount}, tx.AddressTopic(owner)); err != nil {
		return nil, err
	}
	if err := env.Transfer(asset, owner, amount); err != nil {
		return nil, err
	}

	logger.Info("claimed", "owner", owner, "asset", asset, "amount", amount)
	return amount, nil
}

// payOrCredit sends a settlement payout that was already counted as released. A recipient
// refusing it is credited the amount instead, so the settlement itself always lands.
func (l *Ledger) payOrCredit(env *xenv.Environment, asset, to forge.Address, amount *big.Int) error {
	delivered, err := env.TryTransfer(asset, to, amount)
	if err != nil || delivered {
		return err
	}
	totals, err := l.repo.getTotals(asset)
	if err != nil {
		return err
	}
	claim, err := l.repo.getClaim(asset, to)
	if err != nil {
		return err
	}
	if err := firstErr(
		subFrom(totals.Releases, amount),
		addTo(totals.TotalClaimable, amount),
		addTo(claim, amount),
	); err != nil {
		return err
	}
	if err := firstErr(l.repo.setTotals(asset, totals), l.repo.setClaim(asset, to, claim)); err != nil {
		return err
	}
	logger.Warn("payout refused, credited for claim", "to", to, "asset", asset, "amount", amount)
	return env.Log("PaymentDeferred", &paymentDeferredEvent{asset, to, amount, claim}, tx.AddressTopic(to))
}
