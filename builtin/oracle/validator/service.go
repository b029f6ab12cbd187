// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

import (
	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
)

// Service stores validator records and the set of active validators.
type Service struct {
	repo *repository
}

func New(sctx *solidity.Context) *Service {
	return &Service{repo: newRepository(sctx)}
}

// Get returns the validator record, nil if addr never registered.
func (s *Service) Get(addr forge.Address) (*Validator, error) {
	return s.repo.get(addr)
}

func (s *Service) Set(v *Validator) error {
	return s.repo.set(v)
}

func (s *Service) ActiveLen() (uint64, error) {
	return s.repo.active.Len()
}

func (s *Service) Active() ([]forge.Address, error) {
	return s.repo.active.All()
}

// Rotation returns up to n active validators, starting at seed mod len and wrapping around.
// Validators rejected by skip are passed over.
func (s *Service) Rotation(seed forge.Bytes32, n uint64, skip func(*Validator) bool) ([]forge.Address, error) {
	size, err := s.repo.active.Len()
	if err != nil || size == 0 || n == 0 {
		return nil, err
	}
	start := seedIndex(seed, size)
	picked := make([]forge.Address, 0, min(n, size))
	for i := uint64(0); i < size && uint64(len(picked)) < n; i++ {
		addr, err := s.repo.active.At((start + i) % size)
		if err != nil {
			return nil, err
		}
		if skip != nil {
			v, err := s.repo.get(addr)
			if err != nil {
				return nil, err
			}
			if skip(v) {
				continue
			}
		}
		picked = append(picked, addr)
	}
	return picked, nil
}

func seedIndex(seed forge.Bytes32, size uint64) uint64 {
	var n uint64
	for _, b := range seed[24:] {
		n = n<<8 | uint64(b)
	}
	return n % size
}
