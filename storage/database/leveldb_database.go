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

import (
	"github.com/syndtr/goleveldb/leveldb"
	leveldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/xugenping/go-xgp/log"
	"github.com/xugenping/go-xgp/metrics"
)

const (
	ldbCacheSizeMiB = 16
	ldbOpenFiles    = 64
)

var (
	diskReadMeter  = metrics.NewRegisteredMeter("db/read", nil)
	diskWriteMeter = metrics.NewRegisteredMeter("db/write", nil)
)

type levelDB struct {
	fn string      // filename for reporting
	db *leveldb.DB // LevelDB instance

	log log.Logger // Contextual logger tracking the database path
}

func getLDBOptions() *opt.Options {
	return &opt.Options{
		OpenFilesCacheCapacity: ldbOpenFiles,
		BlockCacheCapacity:     ldbCacheSizeMiB / 2 * opt.MiB,
		WriteBuffer:            ldbCacheSizeMiB / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	}
}

// NewLDBDatabase opens a LevelDB-backed store at file, recovering a
// corrupted database when possible.
func NewLDBDatabase(file string) (Database, error) {
	localLogger := logger.NewWith("database", file)

	db, err := leveldb.OpenFile(file, getLDBOptions())
	if _, corrupted := err.(*leveldberrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	localLogger.Info("Opened leveldb database")
	return &levelDB{fn: file, db: db, log: localLogger}, nil
}

func (db *levelDB) Type() DBType {
	return LevelDB
}

// Put puts the given key / value to the database.
func (db *levelDB) Put(key []byte, value []byte) error {
	diskWriteMeter.Mark(int64(len(value)))
	return db.db.Put(key, value, nil)
}

// Get returns the given key if it's present.
func (db *levelDB) Get(key []byte) ([]byte, error) {
	dat, err := db.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	diskReadMeter.Mark(int64(len(dat)))
	return dat, nil
}

func (db *levelDB) Has(key []byte) (bool, error) {
	return db.db.Has(key, nil)
}

// Delete deletes the key from the database.
func (db *levelDB) Delete(key []byte) error {
	return db.db.Delete(key, nil)
}

func (db *levelDB) Close() {
	if err := db.db.Close(); err != nil {
		db.log.Error("Failed to close database", "err", err)
		return
	}
	db.log.Info("Database closed")
}
