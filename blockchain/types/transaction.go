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
	"github.com/xugenping/go-xgp/common"
)

// NetworkSender is the reserved sender address of mining reward
// transactions. Reward transactions carry no signature.
const NetworkSender = "network"

// Transaction is a single value transfer. Transactions are immutable once
// included in a block; the Signature field is present on client-submitted
// transactions and empty on reward transactions.
type Transaction struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Signature string  `json:"signature,omitempty"`
}

// NewTransaction returns an unsigned transaction.
func NewTransaction(from, to string, amount float64) *Transaction {
	return &Transaction{From: from, To: to, Amount: amount}
}

// NewRewardTransaction returns the coinbase transaction crediting a mined
// block's reward to the miner.
func NewRewardTransaction(miner string, amount float64) *Transaction {
	return &Transaction{From: NetworkSender, To: miner, Amount: amount}
}

// IsReward reports whether the transaction is a mining reward.
func (tx *Transaction) IsReward() bool {
	return tx.From == NetworkSender
}

// canonical returns the sorted-key object form the transaction hashes and
// signs over. The signature field is omitted when empty so that signing
// input and block serialization agree.
func (tx *Transaction) canonical() map[string]interface{} {
	m := map[string]interface{}{
		"from":   tx.From,
		"to":     tx.To,
		"amount": tx.Amount,
	}
	if tx.Signature != "" {
		m["signature"] = tx.Signature
	}
	return m
}

// SigningContent returns the canonical form signed by wallets: the
// transaction object without its signature field.
func (tx *Transaction) SigningContent() map[string]interface{} {
	return map[string]interface{}{
		"from":   tx.From,
		"to":     tx.To,
		"amount": tx.Amount,
	}
}

// Digest returns the canonical SHA-256 digest of the transaction.
func (tx *Transaction) Digest() (string, error) {
	return common.CanonicalDigest(tx.canonical())
}

// Copy returns a deep copy of the transaction.
func (tx *Transaction) Copy() *Transaction {
	cpy := *tx
	return &cpy
}
