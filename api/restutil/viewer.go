// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"github.com/questforge/forge/builtin"
	"github.com/questforge/forge/runtime"
	"github.com/questforge/forge/xenv"
)

// Viewer runs read-only code against the pending state.
type Viewer interface {
	View(fn runtime.Tx) error
}

// View runs fn with the bound contracts of v.
func View(v Viewer, fn func(c *builtin.Contracts) error) error {
	return v.View(func(_ *xenv.Environment, c *builtin.Contracts) error {
		return fn(c)
	})
}
