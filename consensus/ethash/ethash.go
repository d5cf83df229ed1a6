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

// Package ethash implements the cache-backed proof of work: an epoch
// cache derived from an iterated seed, a hashimoto mixing loop over it,
// and a difficulty-targeted nonce search.
package ethash

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/xugenping/go-xgp/common"
	"github.com/xugenping/go-xgp/log"
	"github.com/xugenping/go-xgp/metrics"
)

var logger = log.NewModuleLogger(log.ConsensusEthash)

var (
	hashrateMeter   = metrics.NewRegisteredMeter("ethash/hashes", nil)
	cacheGenCounter = metrics.NewRegisteredCounter("ethash/cachegen", nil)
)

const (
	// epochLength is the number of header heights sharing one cache.
	epochLength = 30000

	// cachePasses is the number of mixing passes over a fresh cache.
	cachePasses = 3

	// hashimotoRounds is the number of mixing iterations per nonce.
	hashimotoRounds = 64

	// DefaultCacheSize is the cache size in bytes: 16 MiB, viewed as
	// 4 MiB of 32-bit words.
	DefaultCacheSize uint64 = 16 * 1024 * 1024

	// cachedEpochs bounds the in-memory epoch cache LRU.
	cachedEpochs = 2
)

// Config are the tunables of the proof of work engine.
type Config struct {
	CacheSize uint64 // Bytes per epoch cache; divisible by 4
	CacheDir  string // Directory for persisted epoch caches
}

// DefaultConfig is the production cache geometry.
var DefaultConfig = Config{
	CacheSize: DefaultCacheSize,
	CacheDir:  "ethash",
}

func (config *Config) sanitize() Config {
	conf := *config
	if conf.CacheSize < 4 || conf.CacheSize%4 != 0 {
		logger.Error("Sanitizing invalid ethash cache size", "provided", conf.CacheSize, "updated", DefaultCacheSize)
		conf.CacheSize = DefaultCacheSize
	}
	if conf.CacheDir == "" {
		conf.CacheDir = DefaultConfig.CacheDir
	}
	return conf
}

// Ethash owns the memoized epoch caches. It is safe for concurrent use;
// cache generation for a given epoch happens at most once per process.
type Ethash struct {
	config Config

	genMu  sync.Mutex   // serializes cache generation
	caches common.Cache // epoch -> []uint32
}

// New returns an engine with an empty cache LRU.
func New(config Config) *Ethash {
	return &Ethash{
		config: config.sanitize(),
		caches: common.NewLRUCache(cachedEpochs),
	}
}

// Epoch maps a header to its cache epoch: the first four header bytes,
// big-endian, divided by the epoch length.
func Epoch(header []byte) uint64 {
	var h [4]byte
	copy(h[:], header)
	return uint64(binary.BigEndian.Uint32(h[:])) / epochLength
}

// words is the cache length in 32-bit words.
func (e *Ethash) words() uint32 {
	return uint32(e.config.CacheSize / 4)
}

// cache returns the epoch's cache, loading it from disk or generating
// and persisting it on first use.
func (e *Ethash) cache(epoch uint64) []uint32 {
	if c, ok := e.caches.Get(epoch); ok {
		return c.([]uint32)
	}

	e.genMu.Lock()
	defer e.genMu.Unlock()
	if c, ok := e.caches.Get(epoch); ok {
		return c.([]uint32)
	}

	if c, ok := e.loadCache(epoch, e.words()); ok {
		e.caches.Add(epoch, c)
		return c
	}
	logger.Info("Generating ethash cache", "epoch", epoch, "words", e.words())
	c := generateCache(epoch, e.words())
	cacheGenCounter.Inc(1)
	if err := e.storeCache(epoch, c); err != nil {
		logger.Warn("Failed to persist ethash cache", "epoch", epoch, "err", err)
	}
	e.caches.Add(epoch, c)
	return c
}

// hashimoto mixes the header and nonce through the cache. The mix is
// collapsed to 32 bits after the seeding hash and each round folds in
// one cache word. Returns the final digest and the 4-byte little-endian
// mix it was computed from.
func hashimoto(cache []uint32, header []byte, nonce uint64) ([]byte, []byte) {
	n := uint32(len(cache))

	seed := make([]byte, len(header)+8)
	copy(seed, header)
	binary.LittleEndian.PutUint64(seed[len(header):], nonce)
	seedDigest := sha3.Sum256(seed)

	mix := binary.LittleEndian.Uint32(seedDigest[:4]) % n

	var word [4]byte
	for i := 0; i < hashimotoRounds; i++ {
		x := cache[mix%n] ^ mix
		binary.LittleEndian.PutUint32(word[:], x)
		sum := sha3.Sum256(word[:])
		mix = binary.LittleEndian.Uint32(sum[:4])
	}

	result := make([]byte, 4)
	binary.LittleEndian.PutUint32(result, mix)
	digest := sha3.Sum256(result)
	return digest[:], result
}

// difficultyTarget is 2^(256-difficulty); a nonce is accepted when its
// 4-byte result read big-endian is strictly below it.
func difficultyTarget(difficulty int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(256-difficulty))
}

func resultBelowTarget(result []byte, target *big.Int) bool {
	return new(big.Int).SetBytes(result).Cmp(target) < 0
}

// Mine searches nonces from startNonce until one satisfies the
// difficulty target or the abort channel closes. The abort check sits
// between nonce attempts, so no attempt is discarded mid-hash.
func (e *Ethash) Mine(header []byte, difficulty int, startNonce uint64, abort <-chan struct{}) (uint64, []byte, bool) {
	cache := e.cache(Epoch(header))
	target := difficultyTarget(difficulty)

	nonce := startNonce
	for {
		select {
		case <-abort:
			logger.Info("Nonce search aborted", "attempts", nonce-startNonce)
			return 0, nil, false
		default:
		}
		digest, result := hashimoto(cache, header, nonce)
		hashrateMeter.Mark(1)
		if resultBelowTarget(result, target) {
			logger.Info("Found sealing nonce", "nonce", nonce, "attempts", nonce-startNonce+1)
			return nonce, digest, true
		}
		nonce++
	}
}

// Verify recomputes the hashimoto for a sealed header and checks the
// result against the same target, and the digest against the claimed
// one.
func (e *Ethash) Verify(header []byte, nonce uint64, mixDigest []byte, difficulty int) bool {
	cache := e.cache(Epoch(header))
	digest, result := hashimoto(cache, header, nonce)
	if !resultBelowTarget(result, difficultyTarget(difficulty)) {
		return false
	}
	if mixDigest != nil && !bytes.Equal(digest, mixDigest) {
		return false
	}
	return true
}
