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

// Package database abstracts the node's key-value persistence behind a
// backend-neutral interface with LevelDB, Badger and in-memory
// implementations.
package database

import (
	"github.com/pkg/errors"

	"github.com/xugenping/go-xgp/log"
)

var logger = log.NewModuleLogger(log.StorageDatabase)

// ErrKeyNotFound is returned by Get for missing keys, regardless of
// backend.
var ErrKeyNotFound = errors.New("key not found")

// DBType selects a backend.
type DBType string

const (
	LevelDB  DBType = "leveldb"
	BadgerDB DBType = "badger"
	MemoryDB DBType = "memory"
)

// Database is the key-value store consumed by the chain snapshot
// persistence layer. Contract storage is not persisted through it.
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Delete(key []byte) error
	Close()
	Type() DBType
}

// New opens a database of the requested type rooted at dir. The
// in-memory backend ignores dir.
func New(dbType DBType, dir string) (Database, error) {
	switch dbType {
	case LevelDB:
		return NewLDBDatabase(dir)
	case BadgerDB:
		return NewBadgerDatabase(dir)
	case MemoryDB:
		return NewMemDatabase(), nil
	default:
		return nil, errors.Errorf("unknown database type: %s", dbType)
	}
}
