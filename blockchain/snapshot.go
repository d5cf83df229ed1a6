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
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/xugenping/go-xgp/blockchain/types"
	"github.com/xugenping/go-xgp/common"
	"github.com/xugenping/go-xgp/storage/database"
)

// snapshotKey is where the chain snapshot lives in the store.
var snapshotKey = []byte("chain-snapshot")

// ErrCorruptSnapshot is returned when a persisted chain fails the
// linkage or hash checks on load.
var ErrCorruptSnapshot = errors.New("chain snapshot violates chain invariants")

// Snapshot is the persisted form of a chain: the block list, the
// difficulty it was mined at, and the not-yet-mined transactions.
type Snapshot struct {
	Chain               []*types.Block       `json:"chain"`
	Difficulty          int                  `json:"difficulty"`
	PendingTransactions []*types.Transaction `json:"pending_transactions"`
}

// Snapshot captures the chain's current state.
func (bc *BlockChain) Snapshot() *Snapshot {
	return &Snapshot{
		Chain:               bc.Blocks(),
		Difficulty:          bc.config.Difficulty,
		PendingTransactions: bc.PendingTransactions(),
	}
}

// SaveSnapshot persists the chain snapshot.
func (bc *BlockChain) SaveSnapshot(db database.Database) error {
	enc, err := json.Marshal(bc.Snapshot())
	if err != nil {
		return errors.Wrap(err, "failed to encode chain snapshot")
	}
	return errors.Wrap(db.Put(snapshotKey, enc), "failed to store chain snapshot")
}

// LoadSnapshot reads a persisted snapshot, if any.
func LoadSnapshot(db database.Database) (*Snapshot, error) {
	enc, err := db.Get(snapshotKey)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(enc, &snap); err != nil {
		return nil, errors.Wrap(err, "failed to decode chain snapshot")
	}
	return &snap, nil
}

// FromSnapshot rebuilds a chain from a snapshot, re-verifying every hash
// and linkage before accepting it. A violated invariant on load is not
// recoverable by this layer.
func FromSnapshot(snap *Snapshot, config Config) (*BlockChain, error) {
	if len(snap.Chain) == 0 {
		return nil, ErrCorruptSnapshot
	}
	conf := config.sanitize()
	if snap.Difficulty >= 1 {
		conf.Difficulty = snap.Difficulty
	}

	for i, block := range snap.Chain {
		if block.Hash != block.ComputeHash() {
			return nil, ErrCorruptSnapshot
		}
		if i == 0 {
			if block.Index != 0 || block.PreviousHash != types.GenesisParentHash {
				return nil, ErrCorruptSnapshot
			}
			continue
		}
		if block.PreviousHash != snap.Chain[i-1].Hash {
			return nil, ErrCorruptSnapshot
		}
	}

	bc := &BlockChain{
		config:     conf,
		blocks:     append([]*types.Block{}, snap.Chain...),
		pending:    newTxPool(),
		blockCache: common.NewLRUCache(blockCacheSize),
	}
	for _, tx := range snap.PendingTransactions {
		bc.pending.add(tx)
	}
	logger.Info("Restored chain from snapshot", "blocks", len(bc.blocks), "pending", bc.pending.len())
	return bc, nil
}
