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

// Package vm implements the stack-based contract interpreter with gas
// metering and per-contract persistent storage.
package vm

import (
	"math/big"
	"sync"

	"github.com/xugenping/go-xgp/log"
	"github.com/xugenping/go-xgp/metrics"
	"github.com/xugenping/go-xgp/params"
)

var logger = log.NewModuleLogger(log.ContractVM)

var (
	// Metrics for the interpreter
	executeCounter = metrics.NewRegisteredCounter("vm/execute", nil)
	faultCounter   = metrics.NewRegisteredCounter("vm/fault", nil)
	gasUsedMeter   = metrics.NewRegisteredMeter("vm/gas", nil)
)

// pushOperandSize is the number of bytes consumed by a PUSH operand,
// interpreted big-endian.
const pushOperandSize = 32

// Storage is the string-keyed integer state of one contract.
type Storage map[string]*big.Int

func (s Storage) copy() Storage {
	cpy := make(Storage, len(s))
	for k, v := range s {
		cpy[k] = new(big.Int).Set(v)
	}
	return cpy
}

// execContext is the per-execution scratch state. A fresh context is
// built for every call, so concurrent executions never share a stack or
// program counter; only the contract's storage outlives the call.
type execContext struct {
	code    []byte
	stack   []*big.Int
	pc      int
	gasUsed uint64
	store   Storage
}

func (ctx *execContext) push(v *big.Int) { ctx.stack = append(ctx.stack, v) }

func (ctx *execContext) pop() *big.Int {
	v := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return v
}

func (ctx *execContext) depth() int { return len(ctx.stack) }

func (ctx *execContext) useGas(gas uint64) { ctx.gasUsed += gas }

// VM owns the deployed code and the per-contract storage. Executions are
// serialized; the scratch state lives in the context, never on the VM.
type VM struct {
	mu        sync.Mutex
	contracts map[string][]byte
	storage   map[string]Storage
}

// NewVM returns an interpreter with no deployed contracts.
func NewVM() *VM {
	return &VM{
		contracts: make(map[string][]byte),
		storage:   make(map[string]Storage),
	}
}

// DeployContract records the code under the given address and charges the
// full deployment gas limit, independent of code length. A redeploy to an
// existing address overwrites the code but keeps its storage.
func (vm *VM) DeployContract(code []byte, address string, gasPrice float64) (bool, float64) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.contracts[address] = code
	if _, ok := vm.storage[address]; !ok {
		vm.storage[address] = make(Storage)
	}
	price := params.ValidateGasPrice(gasPrice)
	return true, params.GasCost(params.DeployContractGas, price)
}

// ExecuteContract runs the code deployed at the address until STOP, the
// end of the code, or the execution gas ceiling. The returned result is
// the top of the stack, or nil when the stack is empty or a fault
// occurred; the cost always reflects the gas burned up to that point.
// Storage writes made before a fault are not rolled back.
func (vm *VM) ExecuteContract(address string, input []byte, gasPrice float64) (*big.Int, float64, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	code, ok := vm.contracts[address]
	if !ok {
		return nil, 0, ErrContractNotFound
	}
	price := params.ValidateGasPrice(gasPrice)
	executeCounter.Inc(1)

	ctx := &execContext{code: code, store: vm.storage[address]}
	result, err := run(ctx)
	gasUsedMeter.Mark(int64(ctx.gasUsed))
	cost := params.GasCost(ctx.gasUsed, price)
	if err != nil {
		faultCounter.Inc(1)
		logger.Warn("Contract execution fault", "address", address, "pc", ctx.pc, "err", err, "gasUsed", ctx.gasUsed)
		return nil, cost, nil
	}
	return result, cost, nil
}

// run drives the interpreter loop. A base compute charge is taken before
// every dispatch; the step itself meters any additional gas.
func run(ctx *execContext) (*big.Int, error) {
	for ctx.pc < len(ctx.code) && ctx.gasUsed < params.ExecuteContractGas {
		op := OpCode(ctx.code[ctx.pc])
		ctx.pc++
		ctx.useGas(params.ComputeGas)

		entry, ok := opTable[op]
		if !ok {
			return nil, errInvalidOpcode
		}
		if err := entry.execute(ctx); err != nil {
			return nil, err
		}
		if entry.halts {
			break
		}
	}
	if ctx.depth() == 0 {
		return nil, nil
	}
	return ctx.stack[ctx.depth()-1], nil
}

// GetState returns a snapshot of the storage of the contract at the given
// address.
func (vm *VM) GetState(address string) (Storage, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if _, ok := vm.contracts[address]; !ok {
		return nil, ErrContractNotFound
	}
	return vm.storage[address].copy(), nil
}

// HasContract reports whether code is deployed at the address.
func (vm *VM) HasContract(address string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	_, ok := vm.contracts[address]
	return ok
}

func opStop(ctx *execContext) error {
	return nil
}

func opPush(ctx *execContext) error {
	end := ctx.pc + pushOperandSize
	if end > len(ctx.code) {
		end = len(ctx.code)
	}
	v := new(big.Int).SetBytes(ctx.code[ctx.pc:end])
	ctx.pc += pushOperandSize
	ctx.push(v)
	ctx.useGas(params.StoreDataGas)
	return nil
}

func opPop(ctx *execContext) error {
	if ctx.depth() >= 1 {
		ctx.pop()
		ctx.useGas(params.ComputeGas)
	}
	return nil
}

// Arithmetic pops b from the top and a from below it, pushing the result
// of a OP b. Too few operands is a silent no-op.

func opAdd(ctx *execContext) error {
	if ctx.depth() >= 2 {
		b, a := ctx.pop(), ctx.pop()
		ctx.push(new(big.Int).Add(a, b))
		ctx.useGas(params.ComputeGas)
	}
	return nil
}

func opSub(ctx *execContext) error {
	if ctx.depth() >= 2 {
		b, a := ctx.pop(), ctx.pop()
		ctx.push(new(big.Int).Sub(a, b))
		ctx.useGas(params.ComputeGas)
	}
	return nil
}

func opMul(ctx *execContext) error {
	if ctx.depth() >= 2 {
		b, a := ctx.pop(), ctx.pop()
		ctx.push(new(big.Int).Mul(a, b))
		ctx.useGas(params.ComputeGas)
	}
	return nil
}

func opDiv(ctx *execContext) error {
	if ctx.depth() >= 2 {
		b, a := ctx.pop(), ctx.pop()
		if b.Sign() == 0 {
			return errDivisionByZero
		}
		// Quo truncates toward zero.
		ctx.push(new(big.Int).Quo(a, b))
		ctx.useGas(params.ComputeGas)
	}
	return nil
}

// opStore pops the key first and then the value. The unusual order is
// load-bearing for bytecode compatibility.
func opStore(ctx *execContext) error {
	if ctx.depth() >= 2 {
		key, value := ctx.pop(), ctx.pop()
		ctx.store[key.String()] = value
		ctx.useGas(params.StoreDataGas)
	}
	return nil
}

func opLoad(ctx *execContext) error {
	if ctx.depth() >= 1 {
		key := ctx.pop()
		if v, ok := ctx.store[key.String()]; ok {
			ctx.push(new(big.Int).Set(v))
			ctx.useGas(params.LoadDataGas)
		}
	}
	return nil
}

func opJump(ctx *execContext) error {
	if ctx.depth() >= 1 {
		ctx.pc = targetPC(ctx, ctx.pop())
		ctx.useGas(params.ComputeGas)
	}
	return nil
}

func opJumpi(ctx *execContext) error {
	if ctx.depth() >= 2 {
		cond, target := ctx.pop(), ctx.pop()
		if cond.Sign() != 0 {
			ctx.pc = targetPC(ctx, target)
			ctx.useGas(params.ComputeGas)
		}
	}
	return nil
}

// targetPC clamps a jump destination; anything beyond the code simply
// ends the loop on the next iteration.
func targetPC(ctx *execContext, target *big.Int) int {
	if !target.IsUint64() || target.Uint64() > uint64(len(ctx.code)) {
		return len(ctx.code)
	}
	return int(target.Uint64())
}
