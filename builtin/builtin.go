// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/factory"
	"github.com/questforge/forge/builtin/ledger"
	"github.com/questforge/forge/builtin/nft"
	"github.com/questforge/forge/builtin/oracle"
	"github.com/questforge/forge/builtin/params"
	"github.com/questforge/forge/builtin/quest"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/state"
)

// Builtin contracts binding.
var (
	ACL     = &aclContract{newContract("ACL")}
	Params  = newContract("Params")
	Ledger  = newContract("RewardPool")
	Oracle  = newContract("VerificationOracle")
	NFT     = newContract("Achievement")
	Factory = newContract("QuestFactory")
)

type aclContract struct{ *contract }

func (a *aclContract) WithState(state *state.State) *acl.ACL {
	return acl.New(a.Address, state)
}

// Contracts is the set of builtin contracts bound to one state.
type Contracts struct {
	State   *state.State
	ACL     *acl.ACL
	Params  *params.Params
	Ledger  *ledger.Ledger
	Oracle  *oracle.Oracle
	NFT     *nft.NFT
	Factory *factory.Factory
}

// Bind wires the builtin contracts on state.
func Bind(state *state.State) *Contracts {
	c := &Contracts{State: state}
	c.ACL = ACL.WithState(state)
	c.Params = params.New(Params.Address, state, c.ACL)
	c.Ledger = ledger.New(Ledger.Address, state, c.Params, c.ACL)
	c.NFT = nft.New(NFT.Address, state, c.ACL)
	// the oracle calls back quests the factory created, the factory hands the oracle to its quests
	c.Oracle = oracle.New(Oracle.Address, state, c.Ledger, c.Params, c.ACL, oracle.RequestersFunc(
		func(addr forge.Address) (oracle.Verifiable, error) {
			return c.Factory.Requesters().Verifiable(addr)
		}))
	c.Factory = factory.New(Factory.Address, state, factory.Deps{
		Ledger: c.Ledger,
		Oracle: c.Oracle,
		NFT:    c.NFT,
		ACL:    c.ACL,
		Params: c.Params,
	})
	return c
}

// Quest binds a quest created by the factory, nil for any other address.
func (c *Contracts) Quest(addr forge.Address) (*quest.Quest, error) {
	return c.Factory.Bind(addr)
}

// Setup grants the builtin roles and creates the oracle's collateral pool.
// It runs once while building genesis.
func (c *Contracts) Setup(admin forge.Address) error {
	for _, grant := range []struct {
		role acl.Role
		addr forge.Address
	}{
		{acl.Admin, admin},
		{acl.Factory, Factory.Address},
		{acl.QuestContract, Oracle.Address},
		{acl.Verifier, Oracle.Address},
	} {
		if err := c.ACL.Init(grant.role, grant.addr); err != nil {
			return err
		}
	}
	return c.Ledger.InitPool(Oracle.Address, forge.NativeAsset, ledger.Policy{}, true)
}
