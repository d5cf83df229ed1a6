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
	"testing"

	"github.com/xugenping/go-xgp/params"
)

func TestContractAddressStability(t *testing.T) {
	code := []byte{byte(PUSH), 0x01, byte(STOP)}
	a := NewContract("first", code, "alice")
	b := NewContract("second", code, "bob")

	if a.Address != b.Address {
		t.Fatalf("identical bytecode must share an address: %s != %s", a.Address, b.Address)
	}
	if len(a.Address) != addressHexLen {
		t.Fatalf("address length = %d, want %d", len(a.Address), addressHexLen)
	}
	sum := sha256.Sum256(code)
	if want := hex.EncodeToString(sum[:])[:addressHexLen]; a.Address != want {
		t.Fatalf("address = %s, want %s", a.Address, want)
	}
}

func TestRegistryDeployAndExecute(t *testing.T) {
	r := NewRegistry()
	code := asm(push32(7), push32(5), []byte{byte(ADD), byte(STOP)})
	contract := NewContract("adder", code, "alice")

	address, cost := r.Deploy(contract, params.DefaultGasPrice)
	if address != contract.Address {
		t.Fatalf("deploy returned %s, want %s", address, contract.Address)
	}
	if want := params.GasCost(params.DeployContractGas, params.DefaultGasPrice); cost != want {
		t.Fatalf("deploy cost = %v, want %v", cost, want)
	}

	result, cost, err := r.Execute(address, nil, params.DefaultGasPrice)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || result.Int64() != 12 {
		t.Fatalf("result = %v, want 12", result)
	}
	if cost <= 0 {
		t.Fatal("execution must cost gas")
	}
	if got := r.GetContract(address); got != contract {
		t.Fatal("GetContract returned the wrong record")
	}
}

func TestRegistryExecuteUnknownAddress(t *testing.T) {
	r := NewRegistry()
	if _, _, err := r.Execute("0000000000000000000000000000000000000000", nil, params.DefaultGasPrice); err != ErrContractNotFound {
		t.Fatalf("err = %v, want ErrContractNotFound", err)
	}
	if r.GetContract("0000000000000000000000000000000000000000") != nil {
		t.Fatal("unknown address must have no record")
	}
}

func TestRegistryRedeployOverwrites(t *testing.T) {
	r := NewRegistry()
	code := []byte{byte(STOP)}
	first := NewContract("one", code, "alice")
	second := NewContract("two", code, "bob")

	r.Deploy(first, params.DefaultGasPrice)
	r.Deploy(second, params.DefaultGasPrice)

	if got := r.GetContract(first.Address); got != second {
		t.Fatal("redeploy must overwrite the record at the shared address")
	}
}

func TestContractJSONRoundTrip(t *testing.T) {
	contract := NewContract("counter", []byte{byte(PUSH), 0x2a, byte(STOP)}, "alice")
	enc, err := json.Marshal(contract)
	if err != nil {
		t.Fatal(err)
	}
	var restored Contract
	if err := json.Unmarshal(enc, &restored); err != nil {
		t.Fatal(err)
	}
	if restored.Address != contract.Address || restored.Name != contract.Name {
		t.Fatalf("round trip mismatch: %+v", restored)
	}
	if string(restored.Code) != string(contract.Code) {
		t.Fatal("code did not survive the round trip")
	}
}
