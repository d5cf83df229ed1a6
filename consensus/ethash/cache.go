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

package ethash

import (
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/crypto/sha3"
)

// seedHash derives an epoch's seed by iterating SHA3-256 over 32 zero
// bytes, once per epoch. The flavor is FIPS-202 SHA3-256 throughout the
// proof of work; Keccak-256 digests are not interchangeable.
func seedHash(epoch uint64) []byte {
	seed := make([]byte, 32)
	for i := uint64(0); i < epoch; i++ {
		sum := sha3.Sum256(seed)
		seed = sum[:]
	}
	return seed
}

// generateCache builds the epoch cache: a hash chain over the previous
// word followed by three mixing passes folding in a pseudo-random
// partner word.
func generateCache(epoch uint64, words uint32) []uint32 {
	seed := seedHash(epoch)
	n := words
	cache := make([]uint32, n)

	sum := sha3.Sum256(seed)
	cache[0] = binary.LittleEndian.Uint32(sum[:4])
	var word [4]byte
	for i := uint32(1); i < n; i++ {
		binary.LittleEndian.PutUint32(word[:], cache[i-1])
		sum = sha3.Sum256(word[:])
		cache[i] = binary.LittleEndian.Uint32(sum[:4])
	}

	for pass := 0; pass < cachePasses; pass++ {
		for i := uint32(0); i < n; i++ {
			v := cache[i] % n
			binary.LittleEndian.PutUint32(word[:], cache[i]^cache[v])
			sum = sha3.Sum256(word[:])
			cache[i] = binary.LittleEndian.Uint32(sum[:4])
		}
	}
	return cache
}

// cachePath returns the on-disk location of an epoch's cache. Caches are
// content-addressed by epoch number, so concurrent readers of a written
// file always agree.
func (e *Ethash) cachePath(epoch uint64) string {
	return filepath.Join(e.config.CacheDir, fmt.Sprintf("cache-%d.dat", epoch))
}

// loadCache maps an epoch cache file and copies its little-endian words
// out. Returns false when the file is missing or truncated.
func (e *Ethash) loadCache(epoch uint64, words uint32) ([]uint32, bool) {
	f, err := os.Open(e.cachePath(epoch))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, false
	}
	defer m.Unmap()

	if uint32(len(m)) != words*4 {
		logger.Warn("Cache file has wrong size, regenerating", "epoch", epoch, "size", len(m))
		return nil, false
	}
	cache := make([]uint32, words)
	for i := range cache {
		cache[i] = binary.LittleEndian.Uint32(m[i*4:])
	}
	return cache, true
}

// storeCache persists a cache as raw little-endian words. The write goes
// through a temp file and a rename so readers never observe a partial
// cache; the first node to reach an epoch is the single writer.
func (e *Ethash) storeCache(epoch uint64, cache []uint32) error {
	if err := os.MkdirAll(e.config.CacheDir, 0755); err != nil {
		return err
	}
	buf := make([]byte, len(cache)*4)
	for i, w := range cache {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	tmp := e.cachePath(epoch) + ".tmp"
	if err := ioutil.WriteFile(tmp, buf, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, e.cachePath(epoch))
}
