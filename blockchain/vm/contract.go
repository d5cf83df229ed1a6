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

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"sync"
	"time"

	"github.com/xugenping/go-xgp/metrics"
	"github.com/xugenping/go-xgp/params"
)

var deployCounter = metrics.NewRegisteredCounter("vm/deploy", nil)

// addressHexLen is the length of a contract address: the first 40 hex
// characters of the SHA-256 over the bytecode. Identical bytecode shares
// an address.
const addressHexLen = 40

// Contract is a deployed bytecode program addressed by its own hash.
type Contract struct {
	Name       string  `json:"name"`
	Creator    string  `json:"creator"`
	Address    string  `json:"address"`
	Code       []byte  `json:"-"`
	DeployTime float64 `json:"deployment_time"`
}

// NewContract derives the contract's address from its code.
func NewContract(name string, code []byte, creator string) *Contract {
	return &Contract{
		Name:       name,
		Creator:    creator,
		Code:       code,
		Address:    ContractAddress(code),
		DeployTime: float64(time.Now().UnixNano()) / float64(time.Second),
	}
}

// ContractAddress returns the address derived from bytecode.
func ContractAddress(code []byte) string {
	sum := sha256.Sum256(code)
	return hex.EncodeToString(sum[:])[:addressHexLen]
}

// MarshalJSON serializes the contract with hex-encoded code.
func (c *Contract) MarshalJSON() ([]byte, error) {
	type external struct {
		Name       string  `json:"name"`
		Address    string  `json:"address"`
		Code       string  `json:"code"`
		Creator    string  `json:"creator"`
		DeployTime float64 `json:"deployment_time"`
	}
	return json.Marshal(&external{
		Name:       c.Name,
		Address:    c.Address,
		Code:       hex.EncodeToString(c.Code),
		Creator:    c.Creator,
		DeployTime: c.DeployTime,
	})
}

// UnmarshalJSON restores a contract, re-deriving the address from the code.
func (c *Contract) UnmarshalJSON(data []byte) error {
	type external struct {
		Name       string  `json:"name"`
		Address    string  `json:"address"`
		Code       string  `json:"code"`
		Creator    string  `json:"creator"`
		DeployTime float64 `json:"deployment_time"`
	}
	var ext external
	if err := json.Unmarshal(data, &ext); err != nil {
		return err
	}
	code, err := hex.DecodeString(ext.Code)
	if err != nil {
		return err
	}
	c.Name = ext.Name
	c.Creator = ext.Creator
	c.Code = code
	c.Address = ContractAddress(code)
	c.DeployTime = ext.DeployTime
	return nil
}

// Registry is the address-indexed catalog of deployed contracts,
// dispatching deploy and execute calls into the interpreter. A deploy to
// an already-used address overwrites the previous record.
type Registry struct {
	mu        sync.RWMutex
	contracts map[string]*Contract
	vm        *VM
}

// NewRegistry returns a registry with an empty interpreter.
func NewRegistry() *Registry {
	return &Registry{
		contracts: make(map[string]*Contract),
		vm:        NewVM(),
	}
}

// Deploy records the contract and charges deployment gas.
func (r *Registry) Deploy(contract *Contract, gasPrice float64) (string, float64) {
	ok, cost := r.vm.DeployContract(contract.Code, contract.Address, gasPrice)
	if ok {
		r.mu.Lock()
		r.contracts[contract.Address] = contract
		r.mu.Unlock()
		deployCounter.Inc(1)
		logger.Info("Deployed contract", "name", contract.Name, "address", contract.Address, "codeLen", len(contract.Code))
	}
	return contract.Address, cost
}

// Execute runs a deployed contract.
func (r *Registry) Execute(address string, input []byte, gasPrice float64) (*big.Int, float64, error) {
	r.mu.RLock()
	_, known := r.contracts[address]
	r.mu.RUnlock()
	if !known {
		return nil, 0, ErrContractNotFound
	}
	return r.vm.ExecuteContract(address, input, gasPrice)
}

// GetContract returns the record at the address, or nil when unknown.
func (r *Registry) GetContract(address string) *Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contracts[address]
}

// GetState returns a snapshot of the contract's storage.
func (r *Registry) GetState(address string) (Storage, error) {
	return r.vm.GetState(address)
}

// EstimateDeployCost returns the all-in deployment cost at the given gas
// price without mutating the registry.
func (r *Registry) EstimateDeployCost(gasPrice float64) float64 {
	return params.DeploymentCost(gasPrice)
}
