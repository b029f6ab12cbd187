// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package acl

import (
	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/log"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

// Role names a permission.
type Role = forge.Bytes32

var (
	Admin         = forge.BytesToBytes32([]byte("admin"))
	Factory       = forge.BytesToBytes32([]byte("factory"))
	QuestContract = forge.BytesToBytes32([]byte("quest-contract"))
	Verifier      = forge.BytesToBytes32([]byte("verifier"))
	Minter        = forge.BytesToBytes32([]byte("minter"))

	slotMembers = forge.BytesToBytes32([]byte("members"))

	logger = log.WithContext("pkg", "acl")
)

var roleNames = map[Role]string{
	Admin:         "admin",
	Factory:       "factory",
	QuestContract: "quest-contract",
	Verifier:      "verifier",
	Minter:        "minter",
}

// RoleName returns the readable name of a known role.
func RoleName(role Role) string {
	if name, ok := roleNames[role]; ok {
		return name
	}
	return role.AbbrevString()
}

// grantableByFactory lists the roles a factory hands to the quests it creates.
var grantableByFactory = map[Role]bool{
	QuestContract: true,
	Minter:        true,
}

type member struct {
	role Role
	addr forge.Address
}

func (m member) Bytes() []byte {
	return append(m.role.Bytes(), m.addr.Bytes()...)
}

// ACL is the role registry every contract checks its callers against.
type ACL struct {
	addr    forge.Address
	members *solidity.Mapping[member, bool]
}

func New(addr forge.Address, state *state.State) *ACL {
	sctx := solidity.NewContext(addr, state)
	return &ACL{
		addr:    addr,
		members: solidity.NewMapping[member, bool](sctx, slotMembers),
	}
}

func (a *ACL) Address() forge.Address { return a.addr }

// HasRole reports whether addr holds role.
func (a *ACL) HasRole(role Role, addr forge.Address) (bool, error) {
	return a.members.Get(member{role, addr})
}

// Require fails with an authorization revert unless addr holds role.
func (a *ACL) Require(role Role, addr forge.Address) error {
	ok, err := a.HasRole(role, addr)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithMessagef(reverts.ErrUnauthorized, "%v lacks role %s", addr, RoleName(role))
	}
	return nil
}

// Init writes a membership without any caller check. Used while building genesis.
func (a *ACL) Init(role Role, addr forge.Address) error {
	return a.members.Set(member{role, addr}, true)
}

type roleEvent struct {
	Role    string        `json:"role"`
	Account forge.Address `json:"account"`
	Sender  forge.Address `json:"sender"`
}

// Grant gives role to addr. Admins grant any role, factories only the roles of quest instances.
func (a *ACL) Grant(env *xenv.Environment, role Role, addr forge.Address) error {
	logger.Debug("granting role", "role", RoleName(role), "account", addr, "sender", env.Caller())

	if addr.IsZero() {
		return errors.WithMessage(reverts.ErrInvalidAddress, "grant to zero address")
	}
	if err := a.canGrant(role, env.Caller()); err != nil {
		logger.Info("grant role failed", "role", RoleName(role), "account", addr, "error", err)
		return err
	}
	if err := a.members.Set(member{role, addr}, true); err != nil {
		return err
	}
	return env.Log("RoleGranted", &roleEvent{RoleName(role), addr, env.Caller()}, role, tx.AddressTopic(addr))
}

// Revoke removes role from addr. Admin only.
func (a *ACL) Revoke(env *xenv.Environment, role Role, addr forge.Address) error {
	logger.Debug("revoking role", "role", RoleName(role), "account", addr, "sender", env.Caller())

	if err := a.Require(Admin, env.Caller()); err != nil {
		logger.Info("revoke role failed", "role", RoleName(role), "account", addr, "error", err)
		return err
	}
	a.members.Delete(member{role, addr})
	return env.Log("RoleRevoked", &roleEvent{RoleName(role), addr, env.Caller()}, role, tx.AddressTopic(addr))
}

func (a *ACL) canGrant(role Role, sender forge.Address) error {
	isAdmin, err := a.HasRole(Admin, sender)
	if err != nil || isAdmin {
		return err
	}
	if grantableByFactory[role] {
		isFactory, err := a.HasRole(Factory, sender)
		if err != nil || isFactory {
			return err
		}
	}
	return errors.WithMessagef(reverts.ErrUnauthorized, "%v may not grant %s", sender, RoleName(role))
}
