// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

import (
	"math/big"

	"github.com/questforge/forge/forge"
)

type Status uint8

const (
	StatusUnknown Status = iota
	StatusActive
	StatusSuspended
	StatusSlashed
	StatusUnregistered
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSuspended:
		return "suspended"
	case StatusSlashed:
		return "slashed"
	case StatusUnregistered:
		return "unregistered"
	default:
		return "unknown"
	}
}

// MarshalText renders the status name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// maxVoteHistory bounds the stored recent vote timestamps.
const maxVoteHistory = 32

type Validator struct {
	Address       forge.Address `json:"address"`
	Stake         *big.Int      `json:"stake"`
	Reputation    uint64        `json:"reputation"`
	TotalVotes    uint64        `json:"totalVotes"`
	CorrectVotes  uint64        `json:"correctVotes"`
	TotalEarnings *big.Int      `json:"totalEarnings"`
	Status        Status        `json:"status"`
	RegisteredAt  uint64        `json:"registeredAt"`
	LastVoteAt    uint64        `json:"lastVoteAt"`
	RecentVotes   []uint64      `json:"recentVotes"` // vote timestamps, oldest first
}

// IsActive returns whether the validator may vote and review.
func (v *Validator) IsActive() bool {
	return v != nil && v.Status == StatusActive
}

// RecordVote appends a vote at now to the history, dropping entries older than window.
func (v *Validator) RecordVote(now, window uint64) {
	v.TotalVotes++
	v.LastVoteAt = now
	v.RecentVotes = append(v.recent(now, window), now)
	if len(v.RecentVotes) > maxVoteHistory {
		v.RecentVotes = v.RecentVotes[len(v.RecentVotes)-maxVoteHistory:]
	}
}

// RecentVoteCount returns the number of votes cast within window before now.
func (v *Validator) RecentVoteCount(now, window uint64) uint64 {
	return uint64(len(v.recent(now, window)))
}

func (v *Validator) recent(now, window uint64) []uint64 {
	for i, ts := range v.RecentVotes {
		if ts <= now && now-ts < window {
			return v.RecentVotes[i:]
		}
	}
	return nil
}

// Bounds is the allowed reputation range.
type Bounds struct {
	Min uint64
	Max uint64
}

// Clamp limits rep into the bounds.
func (b Bounds) Clamp(rep uint64) uint64 {
	if rep < b.Min {
		return b.Min
	}
	if rep > b.Max {
		return b.Max
	}
	return rep
}

// Reward raises the reputation by delta, saturating at the ceiling.
func (v *Validator) Reward(delta uint64, b Bounds) {
	if v.Reputation > b.Max || b.Max-v.Reputation < delta {
		v.Reputation = b.Max
		return
	}
	v.Reputation = b.Clamp(v.Reputation + delta)
}

// Penalize lowers the reputation by delta, saturating at the floor.
func (v *Validator) Penalize(delta uint64, b Bounds) {
	if v.Reputation < delta {
		v.Reputation = b.Min
		return
	}
	v.Reputation = b.Clamp(v.Reputation - delta)
}
