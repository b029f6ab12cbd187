// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"github.com/pkg/errors"

	"github.com/questforge/forge/forge"
)

// Kind classifies why a call reverted.
type Kind uint8

const (
	KindInternal Kind = iota // not a revert, e.g. storage failure
	KindValidation
	KindAuthorization
	KindStateConflict
	KindTemporal
	KindResourceExhaustion
	KindArithmetic
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindStateConflict:
		return "state-conflict"
	case KindTemporal:
		return "temporal"
	case KindResourceExhaustion:
		return "resource-exhaustion"
	case KindArithmetic:
		return "arithmetic"
	default:
		return "internal"
	}
}

// ErrRevert is a typed revert reason. Two reverts match under errors.Is when
// their codes are equal, so sentinels survive wrapping with extra context.
type ErrRevert struct {
	kind    Kind
	code    string
	message string
}

func New(kind Kind, code, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		code:    code,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func (e *ErrRevert) Code() string {
	return e.code
}

func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	return ok && t.code == e.code
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	if forge.IsMathErr(e) {
		return true
	}
	var re *ErrRevert
	return errors.As(e, &re)
}

// KindOf returns the revert kind of err. Checked math failures are arithmetic.
func KindOf(err error) Kind {
	var re *ErrRevert
	if errors.As(err, &re) {
		return re.kind
	}
	if forge.IsMathErr(err) {
		return KindArithmetic
	}
	return KindInternal
}

// CodeOf returns the machine readable reason of err.
func CodeOf(err error) string {
	var re *ErrRevert
	if errors.As(err, &re) {
		return re.code
	}
	if forge.IsMathErr(err) {
		return ErrArithmetic.code
	}
	return "Internal"
}

// Arithmetic turns a checked math failure into an arithmetic revert. Reverts pass through.
func Arithmetic(err error) error {
	if err == nil {
		return nil
	}
	var re *ErrRevert
	if errors.As(err, &re) {
		return err
	}
	return errors.WithMessage(ErrArithmetic, err.Error())
}
