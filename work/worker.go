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

// Package work drives block production: a worker polls the pending
// buffer and mines a block whenever transactions are waiting.
package work

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/xugenping/go-xgp/blockchain"
	"github.com/xugenping/go-xgp/log"
	"github.com/xugenping/go-xgp/metrics"
)

var logger = log.NewModuleLogger(log.Work)

var roundsCounter = metrics.NewRegisteredCounter("worker/rounds", nil)

// pollInterval is how often the worker checks the pending buffer. It is
// a politeness delay, not a correctness requirement.
const pollInterval = time.Second

// Worker mines pending transactions into blocks on behalf of a coinbase
// address. Start and Stop may be called from any goroutine; stopping
// never interrupts a block mid-mine, only between rounds.
type Worker struct {
	chain    *blockchain.BlockChain
	coinbase string

	mu     sync.Mutex
	quit   chan struct{}
	wg     sync.WaitGroup
	mining int32
}

// NewWorker returns a stopped worker.
func NewWorker(chain *blockchain.BlockChain, coinbase string) *Worker {
	return &Worker{chain: chain, coinbase: coinbase}
}

// Start launches the mining loop. Starting a running worker is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if atomic.LoadInt32(&w.mining) == 1 {
		return
	}
	atomic.StoreInt32(&w.mining, 1)
	w.quit = make(chan struct{})
	w.wg.Add(1)
	go w.update(w.quit)
	logger.Info("Started mining", "coinbase", w.coinbase)
}

// Stop signals the loop and waits for the in-flight round to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if atomic.LoadInt32(&w.mining) == 0 {
		return
	}
	close(w.quit)
	w.wg.Wait()
	atomic.StoreInt32(&w.mining, 0)
	logger.Info("Stopped mining")
}

// Mining reports whether the loop is running.
func (w *Worker) Mining() bool {
	return atomic.LoadInt32(&w.mining) == 1
}

func (w *Worker) update(quit chan struct{}) {
	defer w.wg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			roundsCounter.Inc(1)
			if w.chain.PendingCount() == 0 {
				continue
			}
			block := w.chain.MinePending(w.coinbase)
			logger.Info("Sealed block", "number", block.Index, "txs", len(block.Transactions))
		}
	}
}

// Status is a point-in-time snapshot of the worker.
type Status struct {
	IsMining     bool    `json:"is_mining"`
	MinerAddress string  `json:"miner_address"`
	PendingTxs   int     `json:"pending_transactions"`
	CurrentBlock int     `json:"current_block"`
	MiningReward float64 `json:"mining_reward"`
}

// Status returns the worker and chain state the status APIs expose.
func (w *Worker) Status() Status {
	return Status{
		IsMining:     w.Mining(),
		MinerAddress: w.coinbase,
		PendingTxs:   w.chain.PendingCount(),
		CurrentBlock: w.chain.Len(),
		MiningReward: w.chain.Config().MiningReward,
	}
}
