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
	"os"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"

	"github.com/xugenping/go-xgp/log"
)

type badgerDB struct {
	fn string // directory for reporting
	db *badger.DB

	logger log.Logger // Contextual logger tracking the database path
}

func getBadgerOptions(dbDir string) badger.Options {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil
	return opts
}

// NewBadgerDatabase opens a Badger-backed store rooted at dbDir,
// creating the directory when missing.
func NewBadgerDatabase(dbDir string) (Database, error) {
	localLogger := logger.NewWith("dbDir", dbDir)

	if fi, err := os.Stat(dbDir); err == nil {
		if !fi.IsDir() {
			return nil, errors.Errorf("badger database path is not a directory: %v", dbDir)
		}
	} else if os.IsNotExist(err) {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create badger database directory")
		}
	} else {
		return nil, errors.Wrap(err, "failed to stat badger database directory")
	}

	db, err := badger.Open(getBadgerOptions(dbDir))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open badger database")
	}
	localLogger.Info("Opened badger database")
	return &badgerDB{fn: dbDir, db: db, logger: localLogger}, nil
}

func (bg *badgerDB) Type() DBType {
	return BadgerDB
}

// Put inserts the given key and value pair to the database.
func (bg *badgerDB) Put(key []byte, value []byte) error {
	return bg.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Get returns the corresponding value to the given key if it exists.
func (bg *badgerDB) Get(key []byte) ([]byte, error) {
	var value []byte
	err := bg.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrKeyNotFound
	}
	return value, err
}

// Has returns true if the corresponding value to the given key exists.
func (bg *badgerDB) Has(key []byte) (bool, error) {
	_, err := bg.Get(key)
	if err == ErrKeyNotFound {
		return false, nil
	}
	return err == nil, err
}

// Delete removes the key from the database.
func (bg *badgerDB) Delete(key []byte) error {
	return bg.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (bg *badgerDB) Close() {
	if err := bg.db.Close(); err != nil {
		bg.logger.Error("Failed to close database", "err", err)
		return
	}
	bg.logger.Info("Database closed")
}
