// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package genesis

import (
	"github.com/questforge/forge/block"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/kv"
)

// Genesis to build genesis block.
type Genesis struct {
	builder *Builder
	id      forge.Bytes32
	name    string
}

// Build writes the genesis state into db and returns block 0.
func (g *Genesis) Build(db kv.GetPutter) (*block.Block, error) {
	return g.builder.Build(db)
}

// ID returns genesis block ID.
func (g *Genesis) ID() forge.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}
