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
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBackends(t *testing.T) map[string]Database {
	t.Helper()
	backends := map[string]Database{
		"memory": NewMemDatabase(),
	}

	ldbDir, err := ioutil.TempDir("", "xgp-ldb-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(ldbDir) })
	ldb, err := NewLDBDatabase(ldbDir)
	require.NoError(t, err)
	backends["leveldb"] = ldb

	badgerDir, err := ioutil.TempDir("", "xgp-badger-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(badgerDir) })
	bdb, err := NewBadgerDatabase(badgerDir)
	require.NoError(t, err)
	backends["badger"] = bdb

	t.Cleanup(func() {
		for _, db := range backends {
			db.Close()
		}
	})
	return backends
}

func TestPutGetDelete(t *testing.T) {
	for name, db := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			key, value := []byte("answer"), []byte("42")

			has, err := db.Has(key)
			require.NoError(t, err)
			assert.False(t, has)

			_, err = db.Get(key)
			assert.Equal(t, ErrKeyNotFound, err)

			require.NoError(t, db.Put(key, value))
			got, err := db.Get(key)
			require.NoError(t, err)
			assert.Equal(t, value, got)

			has, err = db.Has(key)
			require.NoError(t, err)
			assert.True(t, has)

			require.NoError(t, db.Delete(key))
			has, err = db.Has(key)
			require.NoError(t, err)
			assert.False(t, has)
		})
	}
}

func TestOverwrite(t *testing.T) {
	for name, db := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			key := []byte("k")
			require.NoError(t, db.Put(key, []byte("one")))
			require.NoError(t, db.Put(key, []byte("two")))
			got, err := db.Get(key)
			require.NoError(t, err)
			assert.Equal(t, []byte("two"), got)
		})
	}
}

func TestNewSelectsBackend(t *testing.T) {
	db, err := New(MemoryDB, "")
	require.NoError(t, err)
	assert.Equal(t, MemoryDB, db.Type())
	db.Close()

	_, err = New(DBType("bogus"), "")
	assert.Error(t, err)
}
