// Copyright 2019 The go-xgp Authors
// This file is part of the go-xgp library.
//
// The go-xgp library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-xgp library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-xgp library. If not, see <http://www.gnu.org/licenses/>.

package vm

import "errors"

var (
	// ErrContractNotFound is returned when executing or inspecting an
	// address with no deployed code.
	ErrContractNotFound = errors.New("contract not found")

	// errDivisionByZero aborts execution; memory writes made before the
	// fault are kept.
	errDivisionByZero = errors.New("division by zero")

	// errInvalidOpcode aborts execution on a byte outside the opcode set.
	errInvalidOpcode = errors.New("invalid opcode")
)
