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

// RootStore is the persistent key-value view a ChangeSet overlays. The
// Nexus registry (nexus package) and Chain Store (chainstore package) both
// read and write through a RootStore, either directly (for data that does
// not need transactional atomicity) or via a ChangeSet.
type RootStore interface {
	Get(key []byte) ([]byte, bool)
	Put(key, value []byte)
	Delete(key []byte)
}

// MemoryStore is a simple in-memory RootStore, used in tests and as the
// default when no persistent store is configured.
type MemoryStore struct {
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory RootStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key []byte) ([]byte, bool) {
	v, ok := m.data[string(key)]
	return v, ok
}

func (m *MemoryStore) Put(key, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[string(key)] = cp
}

func (m *MemoryStore) Delete(key []byte) {
	delete(m.data, string(key))
}
