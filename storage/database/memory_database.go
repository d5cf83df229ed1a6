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

package database

import "sync"

// memDatabase is the ephemeral backend used in tests and by nodes
// running without persistence.
type memDatabase struct {
	mu sync.RWMutex
	kv map[string][]byte
}

// NewMemDatabase returns an empty in-memory store.
func NewMemDatabase() Database {
	return &memDatabase{kv: make(map[string][]byte)}
}

func (db *memDatabase) Type() DBType {
	return MemoryDB
}

func (db *memDatabase) Put(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.kv[string(key)] = append([]byte{}, value...)
	return nil
}

func (db *memDatabase) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if value, ok := db.kv[string(key)]; ok {
		return append([]byte{}, value...), nil
	}
	return nil, ErrKeyNotFound
}

func (db *memDatabase) Has(key []byte) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.kv[string(key)]
	return ok, nil
}

func (db *memDatabase) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.kv, string(key))
	return nil
}

func (db *memDatabase) Close() {}
