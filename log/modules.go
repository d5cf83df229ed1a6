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

package log

// ModuleID identifies the subsystem a logger belongs to.
type ModuleID int

const (
	Blockchain ModuleID = iota
	ContractVM
	ConsensusEthash
	ConsensusPBFT
	Wallet
	Work
	StorageDatabase
	Security
	API
	Node
	CMD
	Common
)

var moduleNames = [...]string{
	"blockchain",
	"vm",
	"ethash",
	"pbft",
	"wallet",
	"work",
	"database",
	"security",
	"api",
	"node",
	"cmd",
	"common",
}

func (mi ModuleID) String() string {
	if int(mi) < len(moduleNames) {
		return moduleNames[mi]
	}
	return "unknown"
}
