// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package nft implements the achievement registry. Achievements are minted by quests and
// cannot be transferred.
package nft

import (
	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/log"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

var (
	slotAchievements = forge.BytesToBytes32([]byte("achievements"))
	slotOwned        = forge.BytesToBytes32([]byte("owned"))
	slotBalances     = forge.BytesToBytes32([]byte("balances"))
	slotNextID       = forge.BytesToBytes32([]byte("next-id"))

	logger = log.WithContext("pkg", "nft")
)

type Achievement struct {
	ID          uint64        `json:"id"`
	Owner       forge.Address `json:"owner"`
	Quest       forge.Address `json:"quest"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	MintedAt    uint64        `json:"mintedAt"`
}

type tokenID uint64

func (id tokenID) Bytes() []byte { return forge.Uint64Bytes(uint64(id)) }

// ownedKey addresses the i-th achievement of an owner.
type ownedKey struct {
	owner forge.Address
	index uint64
}

func (k ownedKey) Bytes() []byte { return append(k.owner.Bytes(), forge.Uint64Bytes(k.index)...) }

type NFT struct {
	addr         forge.Address
	acl          *acl.ACL
	achievements *solidity.Mapping[tokenID, *Achievement]
	owned        *solidity.Mapping[ownedKey, uint64]
	balances     *solidity.Mapping[forge.Address, uint64]
	nextID       *solidity.Uint256
}

func New(addr forge.Address, state *state.State, acl *acl.ACL) *NFT {
	sctx := solidity.NewContext(addr, state)
	return &NFT{
		addr:         addr,
		acl:          acl,
		achievements: solidity.NewMapping[tokenID, *Achievement](sctx, slotAchievements),
		owned:        solidity.NewMapping[ownedKey, uint64](sctx, slotOwned),
		balances:     solidity.NewMapping[forge.Address, uint64](sctx, slotBalances),
		nextID:       solidity.NewUint256(sctx, slotNextID),
	}
}

func (n *NFT) Address() forge.Address { return n.addr }

// Get returns nil for an unknown id.
func (n *NFT) Get(id uint64) (*Achievement, error) {
	a, err := n.achievements.Get(tokenID(id))
	return a, errors.Wrap(err, "failed to get achievement")
}

func (n *NFT) BalanceOf(owner forge.Address) (uint64, error) {
	b, err := n.balances.Get(owner)
	return b, errors.Wrap(err, "failed to get balance")
}

// TokensOf lists the achievements of owner in mint order.
func (n *NFT) TokensOf(owner forge.Address) ([]*Achievement, error) {
	balance, err := n.BalanceOf(owner)
	if err != nil {
		return nil, err
	}
	out := make([]*Achievement, 0, balance)
	for i := range balance {
		id, err := n.owned.Get(ownedKey{owner, i})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get owned achievement")
		}
		a, err := n.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// MintAchievement issues an achievement to `to` on behalf of the calling quest. Ids start at 1.
func (n *NFT) MintAchievement(env *xenv.Environment, to forge.Address, title, description string) (uint64, error) {
	quest := env.Caller()
	logger.Debug("minting achievement", "to", to, "quest", quest, "title", title)

	if err := n.acl.Require(acl.Minter, quest); err != nil {
		logger.Info("mint failed", "to", to, "quest", quest, "error", err)
		return 0, err
	}
	if to.IsZero() {
		return 0, errors.WithMessage(reverts.ErrInvalidAddress, "recipient")
	}
	if title == "" {
		return 0, errors.WithMessage(reverts.ErrInvalidConfig, "empty title")
	}
	next, err := n.nextID.Next()
	if err != nil {
		return 0, err
	}
	id := next + 1
	balance, err := n.BalanceOf(to)
	if err != nil {
		return 0, err
	}
	a := &Achievement{ID: id, Owner: to, Quest: quest, Title: title, Description: description, MintedAt: env.Now()}
	if err := n.achievements.Set(tokenID(id), a); err != nil {
		return 0, errors.Wrap(err, "failed to set achievement")
	}
	if err := n.owned.Set(ownedKey{to, balance}, id); err != nil {
		return 0, errors.Wrap(err, "failed to set owned achievement")
	}
	if err := n.balances.Set(to, balance+1); err != nil {
		return 0, errors.Wrap(err, "failed to set balance")
	}
	if err := env.Log("AchievementMinted", a, tx.AddressTopic(to), tx.AddressTopic(quest)); err != nil {
		return 0, err
	}

	logger.Info("achievement minted", "id", id, "to", to, "quest", quest)
	return id, nil
}
