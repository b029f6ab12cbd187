// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/state"
)

// Context binds storage helpers to one contract account.
type Context struct {
	address forge.Address
	state   *state.State
}

func NewContext(address forge.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() forge.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
