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

// Package node assembles a full node: chain, contract registry, wallet,
// mining worker, consensus replica and the backing store.
package node

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/xugenping/go-xgp/blockchain"
	"github.com/xugenping/go-xgp/blockchain/types"
	"github.com/xugenping/go-xgp/blockchain/vm"
	"github.com/xugenping/go-xgp/consensus/pbft"
	"github.com/xugenping/go-xgp/log"
	"github.com/xugenping/go-xgp/security"
	"github.com/xugenping/go-xgp/storage/database"
	"github.com/xugenping/go-xgp/wallet"
	"github.com/xugenping/go-xgp/work"
)

var logger = log.NewModuleLogger(log.Node)

// Config assembles the per-subsystem configurations.
type Config struct {
	Chain   blockchain.Config
	DataDir string
	DBType  database.DBType

	// NodeID and Replicas configure the consensus replica; with no
	// replica set the node runs standalone.
	NodeID   string
	Replicas []string
}

// DefaultConfig runs a standalone in-memory node.
var DefaultConfig = Config{
	Chain:   blockchain.DefaultConfig,
	DataDir: "xgp-data",
	DBType:  database.MemoryDB,
}

// Node owns one instance of every core subsystem.
type Node struct {
	config Config

	chain    *blockchain.BlockChain
	registry *vm.Registry
	wallet   *wallet.Wallet
	worker   *work.Worker
	replica  *pbft.Replica
	db       database.Database

	guard  *security.PeerGuard
	replay *security.ReplayGuard
}

// New builds a node, restoring the chain from the store when a snapshot
// exists.
func New(config Config) (*Node, error) {
	db, err := database.New(config.DBType, filepath.Join(config.DataDir, "chaindata"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open node database")
	}

	chain, err := restoreOrCreateChain(db, config.Chain)
	if err != nil {
		db.Close()
		return nil, err
	}

	w, err := wallet.New()
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create node wallet")
	}

	n := &Node{
		config:   config,
		chain:    chain,
		registry: vm.NewRegistry(),
		wallet:   w,
		db:       db,
		guard:    security.NewPeerGuard(),
		replay:   security.NewReplayGuard(),
	}
	n.worker = work.NewWorker(chain, w.Address())

	if len(config.Replicas) > 0 {
		n.replica = pbft.NewReplica(config.NodeID, config.Replicas)
		n.replica.SetPeerGuard(n.guard)
		n.replica.SetExecutor(n.executeCommitted)
	}
	logger.Info("Assembled node", "address", w.Address()[:16]+"...", "replicated", n.replica != nil)
	return n, nil
}

func restoreOrCreateChain(db database.Database, config blockchain.Config) (*blockchain.BlockChain, error) {
	snap, err := blockchain.LoadSnapshot(db)
	if err == database.ErrKeyNotFound {
		return blockchain.NewBlockChain(config), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load chain snapshot")
	}
	chain, err := blockchain.FromSnapshot(snap, config)
	if err != nil {
		return nil, err
	}
	return chain, nil
}

// executeCommitted applies a committed consensus request to the chain: a
// request carrying a transaction set and a miner address gets its
// transactions admitted and mined in one step. Replay of an
// already-executed request body is refused.
func (n *Node) executeCommitted(req pbft.Request) error {
	digest, err := req.Digest()
	if err != nil {
		return err
	}
	if n.replay.Seen(digest) {
		return errors.New("request already executed")
	}
	n.replay.Record(digest)

	miner, _ := req["miner"].(string)
	if miner == "" {
		// Nothing to apply; agreement alone was the point.
		return nil
	}
	if rawTxs, ok := req["transactions"].([]interface{}); ok {
		for _, raw := range rawTxs {
			fields, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			from, _ := fields["from"].(string)
			to, _ := fields["to"].(string)
			amount, _ := fields["amount"].(float64)
			n.chain.AddTransaction(from, to, amount)
		}
	}
	n.chain.MinePending(miner)
	return nil
}

// Stop shuts the worker down and persists the chain.
func (n *Node) Stop() {
	n.worker.Stop()
	if err := n.chain.SaveSnapshot(n.db); err != nil {
		logger.Error("Failed to persist chain on shutdown", "err", err)
	}
	n.db.Close()
}

// SendTransaction signs a transfer from the node wallet and admits it to
// the pending buffer through the validated path.
func (n *Node) SendTransaction(to string, amount float64) (*types.Transaction, error) {
	tx := types.NewTransaction(n.wallet.Address(), to, amount)
	sig, err := n.wallet.SignTransaction(tx)
	if err != nil {
		return nil, err
	}
	tx.Signature = sig
	if err := n.chain.AddSignedTransaction(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Chain returns the node's blockchain.
func (n *Node) Chain() *blockchain.BlockChain { return n.chain }

// Registry returns the contract registry.
func (n *Node) Registry() *vm.Registry { return n.registry }

// Wallet returns the node wallet.
func (n *Node) Wallet() *wallet.Wallet { return n.wallet }

// Worker returns the mining worker.
func (n *Node) Worker() *work.Worker { return n.worker }

// Replica returns the consensus replica, or nil for standalone nodes.
func (n *Node) Replica() *pbft.Replica { return n.replica }

// PeerGuard returns the node's peer blacklist and rate limiter.
func (n *Node) PeerGuard() *security.PeerGuard { return n.guard }
