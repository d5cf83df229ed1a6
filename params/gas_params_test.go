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

package params

import (
	"math"
	"testing"
)

func TestValidateGasPriceClamps(t *testing.T) {
	tests := []struct {
		in, out float64
	}{
		{0, MinGasPrice},
		{0.000001, MinGasPrice},
		{MinGasPrice, MinGasPrice},
		{DefaultGasPrice, DefaultGasPrice},
		{MaxGasPrice, MaxGasPrice},
		{0.5, MaxGasPrice},
	}
	for _, tt := range tests {
		if got := ValidateGasPrice(tt.in); got != tt.out {
			t.Errorf("ValidateGasPrice(%v) = %v, want %v", tt.in, got, tt.out)
		}
	}
}

func TestValidateGasPriceIdempotent(t *testing.T) {
	for _, price := range []float64{0, MinGasPrice, 0.0002, MaxGasPrice, 1} {
		once := ValidateGasPrice(price)
		if twice := ValidateGasPrice(once); twice != once {
			t.Errorf("clamp not idempotent at %v: %v != %v", price, twice, once)
		}
	}
}

func TestValidateGasPriceMonotone(t *testing.T) {
	prices := []float64{MinGasPrice, 0.00005, DefaultGasPrice, 0.0005, MaxGasPrice}
	for i := 1; i < len(prices); i++ {
		if ValidateGasPrice(prices[i-1]) > ValidateGasPrice(prices[i]) {
			t.Errorf("clamp not monotone between %v and %v", prices[i-1], prices[i])
		}
	}
}

func TestGasCost(t *testing.T) {
	if got := GasCost(TransferGas, DefaultGasPrice); math.Abs(got-2.1) > 1e-9 {
		t.Errorf("GasCost(transfer, default) = %v, want 2.1", got)
	}
}

func TestDeploymentCost(t *testing.T) {
	want := float64(DeployContractGas)*DefaultGasPrice + ContractDeploymentFee
	if got := DeploymentCost(DefaultGasPrice); got != want {
		t.Errorf("DeploymentCost = %v, want %v", got, want)
	}
	// An out-of-range price is clamped before pricing.
	if got := DeploymentCost(10); got != float64(DeployContractGas)*MaxGasPrice+ContractDeploymentFee {
		t.Errorf("DeploymentCost(10) = %v, want clamped", got)
	}
}
