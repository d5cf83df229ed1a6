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
	"fmt"
	"strings"

	"github.com/xugenping/go-xgp/common"
	"github.com/xugenping/go-xgp/params"
)

// GenesisParentHash is the previous-hash carried by the genesis block.
const GenesisParentHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Block links to its predecessor by hash and carries an ordered
// transaction list. A block is never mutated after it has been linked into
// a chain; Mine is only called on blocks under construction.
type Block struct {
	Index        uint64         `json:"index"`
	Timestamp    float64        `json:"timestamp"`
	Transactions []*Transaction `json:"transactions"`
	PreviousHash string         `json:"previous_hash"`
	Nonce        uint64         `json:"nonce"`
	Miner        string         `json:"miner_address,omitempty"`
	Reward       int64          `json:"reward"`
	Hash         string         `json:"hash"`
}

// NewBlock builds a block at the given height. The reward is derived from
// the height through the halving schedule and the hash is computed over
// the canonical form.
func NewBlock(index uint64, txs []*Transaction, timestamp float64, previousHash string, nonce uint64, miner string) *Block {
	b := &Block{
		Index:        index,
		Timestamp:    timestamp,
		Transactions: txs,
		PreviousHash: previousHash,
		Nonce:        nonce,
		Miner:        miner,
		Reward:       params.BlockReward(index),
	}
	b.Hash = b.ComputeHash()
	return b
}

// canonical returns the hashed field set as a sorted-key object. The
// miner address serializes as null when absent, as it is on the genesis
// block; the block's own JSON form omits the field instead.
func (b *Block) canonical() map[string]interface{} {
	txs := make([]map[string]interface{}, len(b.Transactions))
	for i, tx := range b.Transactions {
		txs[i] = tx.canonical()
	}
	var miner interface{}
	if b.Miner != "" {
		miner = b.Miner
	}
	return map[string]interface{}{
		"index":         b.Index,
		"timestamp":     b.Timestamp,
		"transactions":  txs,
		"previous_hash": b.PreviousHash,
		"nonce":         b.Nonce,
		"miner_address": miner,
		"reward":        b.Reward,
	}
}

// ComputeHash returns the lowercase hex SHA-256 over the block's canonical
// serialization. The stored Hash field is not part of the input.
func (b *Block) ComputeHash() string {
	digest, err := common.CanonicalDigest(b.canonical())
	if err != nil {
		// The canonical form only contains JSON-encodable values.
		panic(err)
	}
	return digest
}

// Mine increments the nonce until the block hash carries the requested
// number of leading zero hex characters.
func (b *Block) Mine(difficulty int) {
	target := strings.Repeat("0", difficulty)
	for !strings.HasPrefix(b.Hash, target) {
		b.Nonce++
		b.Hash = b.ComputeHash()
	}
}

// MeetsDifficulty reports whether the stored hash satisfies the given
// difficulty.
func (b *Block) MeetsDifficulty(difficulty int) bool {
	return strings.HasPrefix(b.Hash, strings.Repeat("0", difficulty))
}

func (b *Block) String() string {
	return fmt.Sprintf("Block #%d - Reward: %d %s", b.Index, b.Reward, params.TokenSymbol)
}
