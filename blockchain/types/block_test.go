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

package types

import (
	"strings"
	"testing"
)

func TestBlockHashDeterministic(t *testing.T) {
	txs := []*Transaction{NewTransaction("alice", "bob", 1.5)}
	b := NewBlock(1, txs, 1546300800.0, GenesisParentHash, 7, "miner")

	if b.Hash != b.ComputeHash() {
		t.Fatal("stored hash differs from recomputed hash")
	}
	again := NewBlock(1, txs, 1546300800.0, GenesisParentHash, 7, "miner")
	if b.Hash != again.Hash {
		t.Fatal("identical blocks must hash identically")
	}
	if len(b.Hash) != 64 {
		t.Fatalf("hash length = %d, want 64 hex characters", len(b.Hash))
	}
}

func TestBlockHashCoversFields(t *testing.T) {
	base := NewBlock(1, nil, 1546300800.0, GenesisParentHash, 0, "miner")

	mutations := []*Block{
		NewBlock(2, nil, 1546300800.0, GenesisParentHash, 0, "miner"),
		NewBlock(1, nil, 1546300801.0, GenesisParentHash, 0, "miner"),
		NewBlock(1, []*Transaction{NewTransaction("a", "b", 1)}, 1546300800.0, GenesisParentHash, 0, "miner"),
		NewBlock(1, nil, 1546300800.0, strings.Repeat("1", 64), 0, "miner"),
		NewBlock(1, nil, 1546300800.0, GenesisParentHash, 1, "miner"),
		NewBlock(1, nil, 1546300800.0, GenesisParentHash, 0, "other"),
	}
	for i, m := range mutations {
		if m.Hash == base.Hash {
			t.Errorf("mutation %d did not change the hash", i)
		}
	}
}

func TestBlockRewardDerivedFromIndex(t *testing.T) {
	if b := NewBlock(0, nil, 0, GenesisParentHash, 0, ""); b.Reward != 50 {
		t.Errorf("genesis reward = %d, want 50", b.Reward)
	}
	if b := NewBlock(25920, nil, 0, GenesisParentHash, 0, ""); b.Reward != 25 {
		t.Errorf("post-halving reward = %d, want 25", b.Reward)
	}
}

func TestBlockMine(t *testing.T) {
	b := NewBlock(1, []*Transaction{NewTransaction("alice", "bob", 10)}, 1546300800.0, GenesisParentHash, 0, "miner")
	b.Mine(2)

	if !strings.HasPrefix(b.Hash, "00") {
		t.Fatalf("mined hash %q lacks difficulty prefix", b.Hash)
	}
	if !b.MeetsDifficulty(2) {
		t.Fatal("MeetsDifficulty disagrees with the mined hash")
	}
	if b.Hash != b.ComputeHash() {
		t.Fatal("mined hash must equal the recomputed hash byte for byte")
	}
}

func TestTransactionSigningContentExcludesSignature(t *testing.T) {
	tx := NewTransaction("alice", "bob", 3)
	unsigned, err := tx.Digest()
	if err != nil {
		t.Fatal(err)
	}
	tx.Signature = "sig"
	signed, err := tx.Digest()
	if err != nil {
		t.Fatal(err)
	}
	if unsigned == signed {
		t.Fatal("digest must cover the signature field when present")
	}
	if _, ok := tx.SigningContent()["signature"]; ok {
		t.Fatal("signing content must not contain the signature")
	}
}

func TestRewardTransaction(t *testing.T) {
	tx := NewRewardTransaction("miner", 10)
	if !tx.IsReward() || tx.From != NetworkSender || tx.Signature != "" {
		t.Fatalf("malformed reward transaction: %+v", tx)
	}
}
