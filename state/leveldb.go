// Copyright 2024 The go-probe Authors
// This file is part of the go-probe library.
//
// The go-probe library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probe library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probe library. If not, see <http://www.gnu.org/licenses/>.

package state

import (
	"github.com/probechain/corevm/log"
	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBStore is a RootStore backed by goleveldb
// (github.com/syndtr/goleveldb).
type LevelDBStore struct {
	db  *leveldb.DB
	log *log.Logger
}

// OpenLevelDBStore opens (creating if absent) a LevelDB database at path.
func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db, log: log.NewWith("component", "rootstore")}, nil
}

func (s *LevelDBStore) Get(key []byte) ([]byte, bool) {
	v, err := s.db.Get(key, nil)
	if err != nil {
		return nil, false
	}
	return v, true
}

func (s *LevelDBStore) Put(key, value []byte) {
	if err := s.db.Put(key, value, nil); err != nil {
		s.log.Error("rootstore put failed", "err", err)
	}
}

func (s *LevelDBStore) Delete(key []byte) {
	if err := s.db.Delete(key, nil); err != nil {
		s.log.Error("rootstore delete failed", "err", err)
	}
}

// Close releases the underlying database handle.
func (s *LevelDBStore) Close() error { return s.db.Close() }
