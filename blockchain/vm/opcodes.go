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

// OpCode is a single byte of contract bytecode.
type OpCode byte

const (
	STOP  OpCode = 0x00
	ADD   OpCode = 0x01
	SUB   OpCode = 0x02
	MUL   OpCode = 0x03
	DIV   OpCode = 0x04
	POP   OpCode = 0x50
	LOAD  OpCode = 0x51
	STORE OpCode = 0x52
	JUMP  OpCode = 0x56
	JUMPI OpCode = 0x57
	PUSH  OpCode = 0x60
)

var opCodeNames = map[OpCode]string{
	STOP:  "STOP",
	ADD:   "ADD",
	SUB:   "SUB",
	MUL:   "MUL",
	DIV:   "DIV",
	POP:   "POP",
	LOAD:  "LOAD",
	STORE: "STORE",
	JUMP:  "JUMP",
	JUMPI: "JUMPI",
	PUSH:  "PUSH",
}

func (op OpCode) String() string {
	if name, ok := opCodeNames[op]; ok {
		return name
	}
	return "INVALID"
}

// operation binds an opcode to its interpreter step. Beyond the base
// compute charge taken before dispatch, each step meters its own gas so
// conditional effects (a LOAD miss, an untaken JUMPI) cost nothing extra.
type operation struct {
	name    string
	execute func(ctx *execContext) error
	halts   bool
}

var opTable = map[OpCode]operation{
	STOP:  {name: "STOP", execute: opStop, halts: true},
	ADD:   {name: "ADD", execute: opAdd},
	SUB:   {name: "SUB", execute: opSub},
	MUL:   {name: "MUL", execute: opMul},
	DIV:   {name: "DIV", execute: opDiv},
	POP:   {name: "POP", execute: opPop},
	LOAD:  {name: "LOAD", execute: opLoad},
	STORE: {name: "STORE", execute: opStore},
	JUMP:  {name: "JUMP", execute: opJump},
	JUMPI: {name: "JUMPI", execute: opJumpi},
	PUSH:  {name: "PUSH", execute: opPush},
}
