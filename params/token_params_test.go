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

import "testing"

func TestBlockRewardSchedule(t *testing.T) {
	tests := []struct {
		height uint64
		reward int64
	}{
		{0, 50},
		{HalvingPeriod - 1, 50},
		{HalvingPeriod, 25},
		{2 * HalvingPeriod, 12},
		{3 * HalvingPeriod, 6},
		{4 * HalvingPeriod, 3},
		{5 * HalvingPeriod, 1},
		{6 * HalvingPeriod, 0},
		{100 * HalvingPeriod, 0},
	}
	for _, tt := range tests {
		if got := BlockReward(tt.height); got != tt.reward {
			t.Errorf("BlockReward(%d) = %d, want %d", tt.height, got, tt.reward)
		}
	}
}

func TestRewardEventuallyZero(t *testing.T) {
	// Six halvings truncate 50 down to zero; everything after stays zero.
	if BlockReward(6*HalvingPeriod) != 0 {
		t.Fatal("reward should reach zero after six halvings")
	}
}

func TestTotalSupplySaturates(t *testing.T) {
	if got := TotalSupplyAt(0); got != 50 {
		t.Errorf("TotalSupplyAt(0) = %d, want 50", got)
	}
	if got := TotalSupplyAt(1); got != 100 {
		t.Errorf("TotalSupplyAt(1) = %d, want 100", got)
	}
	// The schedule runs dry after six halvings: 25920 blocks at each of
	// 50, 25, 12, 6, 3 and 1 XGP, well under the supply cap.
	exhausted := HalvingPeriod * (50 + 25 + 12 + 6 + 3 + 1)
	if got := TotalSupplyAt(20 * HalvingPeriod); got != exhausted {
		t.Errorf("TotalSupplyAt(huge) = %d, want %d", got, exhausted)
	}
	if exhausted > TotalSupply {
		t.Fatal("cumulative rewards must stay under the supply cap")
	}
}
