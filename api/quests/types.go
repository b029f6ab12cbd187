// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quests

import (
	"github.com/questforge/forge/builtin/factory"
	"github.com/questforge/forge/builtin/quest"
	"github.com/questforge/forge/forge"
)

// Quest is the detail view of one quest.
type Quest struct {
	Address    forge.Address      `json:"address"`
	Record     *factory.Record    `json:"record"`
	Config     *quest.Config      `json:"config"`
	Info       *quest.Info        `json:"info"`
	Milestones []*quest.Milestone `json:"milestones"`
}

// Summary is one entry of the quest listing.
type Summary struct {
	Address      forge.Address `json:"address"`
	Creator      forge.Address `json:"creator"`
	Title        string        `json:"title"`
	Status       quest.Status  `json:"status"`
	Participants uint64        `json:"participants"`
	ExpiresAt    uint64        `json:"expiresAt"`
}
