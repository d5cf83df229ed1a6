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

// Gas price bounds, denominated in XGP.
const (
	MinGasPrice     float64 = 0.00001
	MaxGasPrice     float64 = 0.001
	DefaultGasPrice float64 = 0.0001
)

// Gas limits per operation.
const (
	DeployContractGas  uint64 = 1000000 // Full charge for contract deployment.
	ExecuteContractGas uint64 = 100000  // Ceiling per contract execution.
	TransferGas        uint64 = 21000   // Simple value transfer.
	StoreDataGas       uint64 = 20000   // Writing a storage slot or stack slot.
	LoadDataGas        uint64 = 5000    // Reading a storage slot.
	ComputeGas         uint64 = 1000    // Base cost per executed opcode.
)

// ContractDeploymentFee is the flat fee, in XGP, added on top of the
// deployment gas cost.
const ContractDeploymentFee float64 = 1.0

// ValidateGasPrice clamps a gas price into [MinGasPrice, MaxGasPrice].
func ValidateGasPrice(gasPrice float64) float64 {
	if gasPrice < MinGasPrice {
		return MinGasPrice
	}
	if gasPrice > MaxGasPrice {
		return MaxGasPrice
	}
	return gasPrice
}

// GasCost converts used gas into an XGP amount at the given price.
func GasCost(gasUsed uint64, gasPrice float64) float64 {
	return float64(gasUsed) * gasPrice
}

// DeploymentCost returns the all-in cost of a contract deployment at the
// given gas price, including the flat deployment fee.
func DeploymentCost(gasPrice float64) float64 {
	return GasCost(DeployContractGas, ValidateGasPrice(gasPrice)) + ContractDeploymentFee
}
