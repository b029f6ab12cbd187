// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/questforge/forge/forge"
)

type contract struct {
	Name    string
	Address forge.Address
}

func newContract(name string) *contract {
	return &contract{
		name,
		forge.BytesToAddress([]byte(name)),
	}
}

func (c *contract) String() string {
	return c.Name + "@" + c.Address.String()
}
