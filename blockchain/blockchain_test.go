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

package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xugenping/go-xgp/blockchain/types"
	"github.com/xugenping/go-xgp/params"
	"github.com/xugenping/go-xgp/storage/database"
	"github.com/xugenping/go-xgp/wallet"
)

func testConfig() Config {
	return Config{Difficulty: 2, MiningReward: 10, MaxBlockTxs: 512}
}

func TestGenesisBlock(t *testing.T) {
	bc := NewBlockChain(testConfig())

	require.Equal(t, 1, bc.Len())
	genesis := bc.GetBlock(0)
	assert.Equal(t, uint64(0), genesis.Index)
	assert.Equal(t, types.GenesisParentHash, genesis.PreviousHash)
	assert.Empty(t, genesis.Transactions)
	assert.Equal(t, uint64(0), genesis.Nonce)
	assert.Equal(t, "", genesis.Miner)
}

func TestGenesisAndOneBlock(t *testing.T) {
	bc := NewBlockChain(testConfig())

	bc.AddTransaction("alice", "bob", 10.0)
	block := bc.MinePending("miner1")

	require.Equal(t, 2, bc.Len())
	require.Len(t, block.Transactions, 2)
	assert.Equal(t, "alice", block.Transactions[0].From)
	reward := block.Transactions[1]
	assert.Equal(t, types.NetworkSender, reward.From)
	assert.Equal(t, "miner1", reward.To)
	assert.Equal(t, 10.0, reward.Amount)

	assert.Equal(t, 10.0, bc.Balance("miner1"))
	assert.Equal(t, -10.0, bc.Balance("alice"))
	assert.Equal(t, 10.0, bc.Balance("bob"))
	assert.True(t, bc.Valid())
	assert.True(t, block.MeetsDifficulty(2))
	assert.Equal(t, bc.GetBlock(0).Hash, block.PreviousHash)
	assert.Equal(t, 0, bc.PendingCount())
}

func TestChainStaysValidAcrossBlocks(t *testing.T) {
	bc := NewBlockChain(testConfig())
	for i := 0; i < 3; i++ {
		bc.AddTransaction("alice", "bob", float64(i+1))
		bc.MinePending("miner1")
		require.True(t, bc.Valid())
	}

	for i := 1; i < bc.Len(); i++ {
		block := bc.GetBlock(uint64(i))
		assert.Equal(t, bc.GetBlock(uint64(i-1)).Hash, block.PreviousHash)
		assert.True(t, block.MeetsDifficulty(2))
	}
}

func TestValidDetectsTampering(t *testing.T) {
	bc := NewBlockChain(testConfig())
	bc.AddTransaction("alice", "bob", 10)
	bc.MinePending("miner1")
	require.True(t, bc.Valid())

	bc.GetBlock(1).Transactions[0].Amount = 1000000
	assert.False(t, bc.Valid())
}

func TestRewardConservation(t *testing.T) {
	bc := NewBlockChain(testConfig())
	for i := 0; i < 4; i++ {
		bc.AddTransaction("alice", "bob", 1)
		bc.MinePending("miner1")
	}

	// Transfers conserve value, so the network's deficit equals the
	// rewards issued and the miner holds them all.
	assert.Equal(t, -40.0, bc.Balance(types.NetworkSender))
	assert.Equal(t, 40.0, bc.Balance("miner1"))
	assert.Equal(t, 0.0, bc.Balance("alice")+bc.Balance("bob")+bc.Balance("miner1")+bc.Balance(types.NetworkSender))
}

func TestBlockTxCeiling(t *testing.T) {
	config := testConfig()
	config.MaxBlockTxs = 2
	bc := NewBlockChain(config)

	for i := 0; i < 5; i++ {
		bc.AddTransaction("alice", "bob", 1)
	}
	block := bc.MinePending("miner1")

	// Two client transactions plus the reward; the other three wait.
	require.Len(t, block.Transactions, 3)
	assert.Equal(t, 3, bc.PendingCount())

	block = bc.MinePending("miner1")
	require.Len(t, block.Transactions, 3)
	assert.Equal(t, 1, bc.PendingCount())
}

func TestAddSignedTransaction(t *testing.T) {
	bc := NewBlockChain(testConfig())
	w, err := wallet.New()
	require.NoError(t, err)

	// Fund the wallet first.
	bc.AddTransaction(types.NetworkSender, w.Address(), 50)
	bc.MinePending("miner1")

	tx := types.NewTransaction(w.Address(), "bob", 20)
	tx.Signature, err = w.SignTransaction(tx)
	require.NoError(t, err)
	require.NoError(t, bc.AddSignedTransaction(tx))
	assert.Equal(t, 1, bc.PendingCount())
}

func TestAddSignedTransactionRejectsUnsigned(t *testing.T) {
	bc := NewBlockChain(testConfig())
	err := bc.AddSignedTransaction(types.NewTransaction("alice", "bob", 1))
	assert.Equal(t, ErrMissingSignature, err)
}

func TestAddSignedTransactionRejectsTamper(t *testing.T) {
	bc := NewBlockChain(testConfig())
	w, err := wallet.New()
	require.NoError(t, err)
	bc.AddTransaction(types.NetworkSender, w.Address(), 50)
	bc.MinePending("miner1")

	tx := types.NewTransaction(w.Address(), "bob", 20)
	tx.Signature, err = w.SignTransaction(tx)
	require.NoError(t, err)
	tx.Amount = 40
	assert.Equal(t, ErrInvalidSignature, bc.AddSignedTransaction(tx))
}

func TestAddSignedTransactionRejectsOverdraft(t *testing.T) {
	bc := NewBlockChain(testConfig())
	w, err := wallet.New()
	require.NoError(t, err)
	bc.AddTransaction(types.NetworkSender, w.Address(), 30)
	bc.MinePending("miner1")

	spend := func(amount float64) error {
		tx := types.NewTransaction(w.Address(), "bob", amount)
		tx.Signature, err = w.SignTransaction(tx)
		require.NoError(t, err)
		return bc.AddSignedTransaction(tx)
	}
	require.NoError(t, spend(20))
	// The settled balance is 30, but 20 are already committed in the
	// pending buffer.
	assert.Equal(t, ErrInsufficientFunds, spend(20))
}

func TestAddSignedTransactionRejectsReservedSender(t *testing.T) {
	bc := NewBlockChain(testConfig())
	tx := types.NewTransaction(types.NetworkSender, "bob", 1)
	tx.Signature = "irrelevant"
	assert.Equal(t, ErrReservedSender, bc.AddSignedTransaction(tx))
}

func TestGetBlockByHash(t *testing.T) {
	bc := NewBlockChain(testConfig())
	bc.AddTransaction("alice", "bob", 1)
	block := bc.MinePending("miner1")

	assert.Equal(t, block, bc.GetBlockByHash(block.Hash))
	assert.Nil(t, bc.GetBlockByHash("ffff"))
}

func TestSnapshotRoundTrip(t *testing.T) {
	bc := NewBlockChain(testConfig())
	bc.AddTransaction("alice", "bob", 5)
	bc.MinePending("miner1")
	bc.AddTransaction("bob", "carol", 1)

	db := database.NewMemDatabase()
	require.NoError(t, bc.SaveSnapshot(db))

	snap, err := LoadSnapshot(db)
	require.NoError(t, err)
	restored, err := FromSnapshot(snap, testConfig())
	require.NoError(t, err)

	assert.Equal(t, bc.Len(), restored.Len())
	assert.Equal(t, bc.LatestBlock().Hash, restored.LatestBlock().Hash)
	assert.Equal(t, 1, restored.PendingCount())
	assert.True(t, restored.Valid())
	assert.Equal(t, -5.0, restored.Balance("alice"))
}

func TestFromSnapshotRejectsTampering(t *testing.T) {
	bc := NewBlockChain(testConfig())
	bc.AddTransaction("alice", "bob", 5)
	bc.MinePending("miner1")

	snap := bc.Snapshot()
	snap.Chain[1].Transactions[0].Amount = 999

	_, err := FromSnapshot(snap, testConfig())
	assert.Equal(t, ErrCorruptSnapshot, err)
}

func TestBlockRewardFieldFollowsSchedule(t *testing.T) {
	bc := NewBlockChain(testConfig())
	bc.AddTransaction("alice", "bob", 1)
	block := bc.MinePending("miner1")
	assert.Equal(t, params.BlockReward(1), block.Reward)
}
