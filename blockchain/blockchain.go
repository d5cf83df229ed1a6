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
	"errors"
	"sync"
	"time"

	"github.com/xugenping/go-xgp/blockchain/types"
	"github.com/xugenping/go-xgp/common"
	"github.com/xugenping/go-xgp/log"
	"github.com/xugenping/go-xgp/metrics"
	"github.com/xugenping/go-xgp/wallet"
)

var logger = log.NewModuleLogger(log.Blockchain)

var (
	ErrMissingSignature  = errors.New("transaction is not signed")
	ErrInvalidSignature  = errors.New("transaction signature verification failed")
	ErrInsufficientFunds = errors.New("sender balance does not cover the transfer")
	ErrReservedSender    = errors.New("sender address is reserved for reward transactions")
)

var (
	// Metrics for the chain
	blockMinedCounter = metrics.NewRegisteredCounter("chain/mined", nil)
	blockTxsMeter     = metrics.NewRegisteredMeter("chain/mined/txs", nil)
	headGauge         = metrics.NewRegisteredGauge("chain/head", nil)
)

const blockCacheSize = 256

// Config are the configuration parameters of the chain.
type Config struct {
	Difficulty   int     // Leading zero hex characters required of block hashes
	MiningReward float64 // Amount credited to the miner per block
	MaxBlockTxs  int     // Ceiling on client transactions packed per block
}

// DefaultConfig contains the default chain parameters.
var DefaultConfig = Config{
	Difficulty:   4,
	MiningReward: 10,
	MaxBlockTxs:  512,
}

// sanitize checks the provided user configuration and changes anything
// that's unreasonable or unworkable.
func (config *Config) sanitize() Config {
	conf := *config
	if conf.Difficulty < 1 {
		logger.Error("Sanitizing invalid chain difficulty", "provided", conf.Difficulty, "updated", DefaultConfig.Difficulty)
		conf.Difficulty = DefaultConfig.Difficulty
	}
	if conf.MiningReward <= 0 {
		logger.Error("Sanitizing invalid mining reward", "provided", conf.MiningReward, "updated", DefaultConfig.MiningReward)
		conf.MiningReward = DefaultConfig.MiningReward
	}
	if conf.MaxBlockTxs < 1 {
		logger.Error("Sanitizing invalid block transaction ceiling", "provided", conf.MaxBlockTxs, "updated", DefaultConfig.MaxBlockTxs)
		conf.MaxBlockTxs = DefaultConfig.MaxBlockTxs
	}
	return conf
}

// BlockChain is the ordered sequence of blocks rooted at the genesis
// block, together with the buffer of transactions waiting to be mined.
// The block list is append-only; MinePending is atomic with respect to
// transaction admission and balance queries.
type BlockChain struct {
	config Config

	mu     sync.RWMutex
	blocks []*types.Block

	pending *txPool

	blockCache common.Cache // block hash -> *types.Block
}

// NewBlockChain constructs a chain holding only the genesis block.
func NewBlockChain(config Config) *BlockChain {
	conf := config.sanitize()
	bc := &BlockChain{
		config:     conf,
		pending:    newTxPool(),
		blockCache: common.NewLRUCache(blockCacheSize),
	}
	genesis := types.NewBlock(0, []*types.Transaction{}, now(), types.GenesisParentHash, 0, "")
	bc.blocks = []*types.Block{genesis}
	bc.blockCache.Add(genesis.Hash, genesis)
	logger.Info("Initialized new chain", "difficulty", conf.Difficulty, "genesis", genesis.Hash)
	return bc
}

func now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// Config returns the chain parameters.
func (bc *BlockChain) Config() Config {
	return bc.config
}

// AddTransaction appends an unchecked transaction to the pending buffer.
// This is the legacy admission path; callers holding a signed transaction
// should use AddSignedTransaction instead.
func (bc *BlockChain) AddTransaction(from, to string, amount float64) {
	bc.pending.add(types.NewTransaction(from, to, amount))
}

// AddSignedTransaction verifies a client transaction before admitting it
// to the pending buffer. The sender address doubles as its encoded public
// key; the transfer is rejected when the signature does not verify or when
// the sender's settled balance minus in-flight debits cannot cover it.
func (bc *BlockChain) AddSignedTransaction(tx *types.Transaction) error {
	if tx.From == types.NetworkSender {
		refusedTxCounter.Inc(1)
		return ErrReservedSender
	}
	if tx.Signature == "" {
		refusedTxCounter.Inc(1)
		return ErrMissingSignature
	}
	if err := wallet.VerifyTransaction(tx, tx.From); err != nil {
		refusedTxCounter.Inc(1)
		return ErrInvalidSignature
	}
	if bc.Balance(tx.From)-bc.pending.debits(tx.From) < tx.Amount {
		refusedTxCounter.Inc(1)
		return ErrInsufficientFunds
	}
	bc.pending.add(tx.Copy())
	return nil
}

// MinePending packs the buffered transactions plus a reward transaction
// into a new block, mines it to the configured difficulty and links it to
// the tip. The buffer is drained atomically; transactions beyond the
// per-block ceiling stay queued for the next block.
func (bc *BlockChain) MinePending(miner string) *types.Block {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	txs := bc.pending.drain(bc.config.MaxBlockTxs)
	txs = append(txs, types.NewRewardTransaction(miner, bc.config.MiningReward))

	parent := bc.blocks[len(bc.blocks)-1]
	block := types.NewBlock(uint64(len(bc.blocks)), txs, now(), parent.Hash, 0, miner)
	block.Mine(bc.config.Difficulty)

	bc.blocks = append(bc.blocks, block)
	bc.blockCache.Add(block.Hash, block)

	blockMinedCounter.Inc(1)
	blockTxsMeter.Mark(int64(len(txs)))
	headGauge.Update(int64(block.Index))
	logger.Info("Mined block", "number", block.Index, "txs", len(txs), "hash", block.Hash, "nonce", block.Nonce)
	return block
}

// Balance scans the whole chain and returns the signed net amount held by
// an address. There is no overdraft check at this layer.
func (bc *BlockChain) Balance(address string) float64 {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	var balance float64
	for _, block := range bc.blocks {
		for _, tx := range block.Transactions {
			if tx.From == address {
				balance -= tx.Amount
			}
			if tx.To == address {
				balance += tx.Amount
			}
		}
	}
	return balance
}

// Valid re-derives every non-genesis block hash and checks the linkage to
// its parent.
func (bc *BlockChain) Valid() bool {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	for i := 1; i < len(bc.blocks); i++ {
		current, previous := bc.blocks[i], bc.blocks[i-1]
		if current.Hash != current.ComputeHash() {
			logger.Error("Block hash mismatch", "number", current.Index, "stored", current.Hash)
			return false
		}
		if current.PreviousHash != previous.Hash {
			logger.Error("Broken chain linkage", "number", current.Index)
			return false
		}
	}
	return true
}

// Len returns the number of blocks including genesis.
func (bc *BlockChain) Len() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.blocks)
}

// LatestBlock returns the chain tip.
func (bc *BlockChain) LatestBlock() *types.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.blocks[len(bc.blocks)-1]
}

// GetBlock returns the block at the given height, or nil when the height
// is beyond the tip.
func (bc *BlockChain) GetBlock(index uint64) *types.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	if index >= uint64(len(bc.blocks)) {
		return nil
	}
	return bc.blocks[index]
}

// GetBlockByHash returns the block with the given hash, or nil when the
// hash is unknown.
func (bc *BlockChain) GetBlockByHash(hash string) *types.Block {
	if cached, ok := bc.blockCache.Get(hash); ok {
		return cached.(*types.Block)
	}
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	for _, block := range bc.blocks {
		if block.Hash == hash {
			bc.blockCache.Add(hash, block)
			return block
		}
	}
	return nil
}

// Blocks returns a snapshot of the block list.
func (bc *BlockChain) Blocks() []*types.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	blocks := make([]*types.Block, len(bc.blocks))
	copy(blocks, bc.blocks)
	return blocks
}

// PendingTransactions returns a snapshot of the buffered transactions.
func (bc *BlockChain) PendingTransactions() []*types.Transaction {
	return bc.pending.content()
}

// PendingCount returns the number of buffered transactions.
func (bc *BlockChain) PendingCount() int {
	return bc.pending.len()
}
