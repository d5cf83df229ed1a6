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

// Package security bundles the node's defensive plumbing: keyfile
// encryption, transaction replay protection, block timing checks and the
// peer blacklist with request rate limiting.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
	set "gopkg.in/fatih/set.v0"

	"github.com/xugenping/go-xgp/log"
)

var logger = log.NewModuleLogger(log.Security)

var (
	ErrDecrypt          = errors.New("invalid password or corrupted data")
	ErrCiphertextFormat = errors.New("ciphertext too short")
)

const (
	saltLen      = 16
	gcmNonceLen  = 12
	kdfIter      = 100000
	kdfKeyLen    = 32
)

// Keystore encrypts JSON payloads under a password-derived key.
type Keystore struct {
	salt []byte
}

// NewKeystore generates a fresh random salt.
func NewKeystore() (*Keystore, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return &Keystore{salt: salt}, nil
}

// NewKeystoreWithSalt restores a keystore around a persisted salt.
func NewKeystoreWithSalt(salt []byte) *Keystore {
	return &Keystore{salt: salt}
}

// Salt returns the keystore salt for persistence alongside ciphertexts.
func (ks *Keystore) Salt() []byte {
	return ks.salt
}

func (ks *Keystore) deriveKey(password string) []byte {
	return pbkdf2.Key([]byte(password), ks.salt, kdfIter, kdfKeyLen, sha256.New)
}

// Encrypt seals the JSON form of v with AES-256-GCM. The output is
// nonce || ciphertext.
func (ks *Keystore) Encrypt(v interface{}, password string) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(ks.deriveKey(password))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcmNonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return append(nonce, gcm.Seal(nil, nonce, plaintext, nil)...), nil
}

// Decrypt opens a ciphertext produced by Encrypt into out.
func (ks *Keystore) Decrypt(data []byte, password string, out interface{}) error {
	if len(data) < gcmNonceLen {
		return ErrCiphertextFormat
	}
	block, err := aes.NewCipher(ks.deriveKey(password))
	if err != nil {
		return err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	plaintext, err := gcm.Open(nil, data[:gcmNonceLen], data[gcmNonceLen:], nil)
	if err != nil {
		return ErrDecrypt
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return ErrDecrypt
	}
	return nil
}

// ReplayGuard remembers recently seen transaction hashes inside a sliding
// window.
type ReplayGuard struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
}

// DefaultReplayWindow bounds how long a transaction hash is held.
const DefaultReplayWindow = time.Hour

func NewReplayGuard() *ReplayGuard {
	return &ReplayGuard{
		seen:   make(map[string]time.Time),
		window: DefaultReplayWindow,
	}
}

// Record marks a transaction hash as seen.
func (g *ReplayGuard) Record(txHash string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen[txHash] = time.Now()
}

// Seen reports whether the hash is inside the replay window. Expired
// entries are dropped on lookup.
func (g *ReplayGuard) Seen(txHash string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.seen[txHash]
	if !ok {
		return false
	}
	if time.Since(t) > g.window {
		delete(g.seen, txHash)
		return false
	}
	return true
}

// Clean drops every expired entry.
func (g *ReplayGuard) Clean() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for h, t := range g.seen {
		if time.Since(t) > g.window {
			delete(g.seen, h)
		}
	}
}

// BlockTimer enforces a minimum spacing between accepted blocks.
type BlockTimer struct {
	mu         sync.Mutex
	timestamps map[string]float64
	minSpacing float64
}

// DefaultMinBlockSpacing is the minimum seconds between blocks.
const DefaultMinBlockSpacing float64 = 15

func NewBlockTimer() *BlockTimer {
	return &BlockTimer{
		timestamps: make(map[string]float64),
		minSpacing: DefaultMinBlockSpacing,
	}
}

// Check accepts a block timestamp when it is at least the minimum spacing
// after the newest accepted one, and records it.
func (bt *BlockTimer) Check(blockHash string, timestamp float64) bool {
	bt.mu.Lock()
	defer bt.mu.Unlock()

	if len(bt.timestamps) == 0 {
		bt.timestamps[blockHash] = timestamp
		return true
	}
	var last float64
	for _, t := range bt.timestamps {
		if t > last {
			last = t
		}
	}
	if timestamp-last < bt.minSpacing {
		return false
	}
	bt.timestamps[blockHash] = timestamp
	return true
}

// Clean drops timestamps older than maxAge seconds.
func (bt *BlockTimer) Clean(maxAge float64) {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	nowSec := float64(time.Now().UnixNano()) / float64(time.Second)
	for h, t := range bt.timestamps {
		if nowSec-t > maxAge {
			delete(bt.timestamps, h)
		}
	}
}

// PeerGuard combines the peer blacklist with a sliding-window request
// rate limiter.
type PeerGuard struct {
	mu        sync.Mutex
	blacklist *set.Set
	requests  map[string][]time.Time

	maxRequests int
	window      time.Duration
}

const (
	// DefaultMaxRequests is the per-peer request budget per window.
	DefaultMaxRequests = 100
	// DefaultRateWindow is the rate limiter's sliding window.
	DefaultRateWindow = time.Minute
)

func NewPeerGuard() *PeerGuard {
	return &PeerGuard{
		blacklist:   set.New(),
		requests:    make(map[string][]time.Time),
		maxRequests: DefaultMaxRequests,
		window:      DefaultRateWindow,
	}
}

// Blacklist bans a peer.
func (pg *PeerGuard) Blacklist(peer string) {
	pg.blacklist.Add(peer)
	logger.Warn("Blacklisted peer", "peer", peer)
}

// IsBlacklisted reports whether a peer is banned.
func (pg *PeerGuard) IsBlacklisted(peer string) bool {
	return pg.blacklist.Has(peer)
}

// Allow records a request from the peer and reports whether it is inside
// its rate budget.
func (pg *PeerGuard) Allow(peer string) bool {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	cutoff := time.Now().Add(-pg.window)
	kept := pg.requests[peer][:0]
	for _, t := range pg.requests[peer] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= pg.maxRequests {
		pg.requests[peer] = kept
		return false
	}
	pg.requests[peer] = append(kept, time.Now())
	return true
}

// Clean drops peers with no requests inside the window.
func (pg *PeerGuard) Clean() {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	cutoff := time.Now().Add(-pg.window)
	for peer, times := range pg.requests {
		kept := times[:0]
		for _, t := range times {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(pg.requests, peer)
		} else {
			pg.requests[peer] = kept
		}
	}
}
