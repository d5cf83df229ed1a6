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

const (
	TokenName   = "Xugenping"
	TokenSymbol = "XGP"

	// TotalSupply is the hard cap on cumulative block rewards.
	TotalSupply uint64 = 19840228

	InitialBlockReward int64 = 50

	// HalvingPeriod is the number of blocks between reward halvings,
	// assuming one block every ten minutes for six months.
	HalvingPeriod uint64 = 6 * 30 * 24 * 6

	// BlockTime is the advisory block interval in seconds.
	BlockTime uint64 = 600
)

// BlockReward returns the mining reward at the given block height. The
// reward starts at InitialBlockReward and is halved, with integer
// truncation, once per HalvingPeriod.
func BlockReward(height uint64) int64 {
	reward := InitialBlockReward
	for i := height / HalvingPeriod; i > 0; i-- {
		reward /= 2
	}
	return reward
}

// TotalSupplyAt returns the cumulative reward issued up to and including
// the given height, saturating at TotalSupply.
func TotalSupplyAt(height uint64) uint64 {
	var total uint64
	for h := uint64(0); h <= height; h++ {
		total += uint64(BlockReward(h))
		if total >= TotalSupply {
			return TotalSupply
		}
	}
	return total
}
