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
	"sync"

	"github.com/xugenping/go-xgp/blockchain/types"
	"github.com/xugenping/go-xgp/metrics"
)

var (
	// Metrics for the pending pool
	pendingTxGauge   = metrics.NewRegisteredGauge("txpool/pending", nil)
	refusedTxCounter = metrics.NewRegisteredCounter("txpool/refuse", nil)
	queuedTxCounter  = metrics.NewRegisteredCounter("txpool/queue", nil)
)

// txPool is the FIFO buffer of transactions waiting to be mined.
type txPool struct {
	mu  sync.RWMutex
	txs []*types.Transaction
}

func newTxPool() *txPool {
	return &txPool{}
}

func (pool *txPool) add(tx *types.Transaction) {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	pool.txs = append(pool.txs, tx)
	queuedTxCounter.Inc(1)
	pendingTxGauge.Update(int64(len(pool.txs)))
}

// drain removes and returns up to max transactions in arrival order. A
// non-positive max drains the whole buffer.
func (pool *txPool) drain(max int) []*types.Transaction {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	n := len(pool.txs)
	if max > 0 && max < n {
		n = max
	}
	batch := pool.txs[:n]
	pool.txs = append([]*types.Transaction{}, pool.txs[n:]...)
	pendingTxGauge.Update(int64(len(pool.txs)))
	return batch
}

func (pool *txPool) len() int {
	pool.mu.RLock()
	defer pool.mu.RUnlock()
	return len(pool.txs)
}

// content returns a snapshot of the buffered transactions.
func (pool *txPool) content() []*types.Transaction {
	pool.mu.RLock()
	defer pool.mu.RUnlock()

	txs := make([]*types.Transaction, len(pool.txs))
	copy(txs, pool.txs)
	return txs
}

// debits sums the buffered outgoing amounts of an address, used to guard
// admission against overdrafting the in-flight balance.
func (pool *txPool) debits(address string) float64 {
	pool.mu.RLock()
	defer pool.mu.RUnlock()

	var sum float64
	for _, tx := range pool.txs {
		if tx.From == address {
			sum += tx.Amount
		}
	}
	return sum
}
