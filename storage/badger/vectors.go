// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/storage"
)

// VectorCache implements storage.VectorCache on BadgerDB.
type VectorCache struct {
	backend *Backend
}

var _ storage.VectorCache = (*VectorCache)(nil)

// NewVectorCache opens a persistent vector cache rooted at path.
func NewVectorCache(path string) (storage.VectorCache, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newVectorCache(backend), nil
}

func newVectorCache(backend *Backend) *VectorCache {
	return &VectorCache{backend: backend}
}

// GetVectors returns the cached vectors for ids. Missing IDs are skipped.
func (c *VectorCache) GetVectors(ctx context.Context, ids []core.ID) (map[core.ID][]float32, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	found := make(map[core.ID][]float32, len(ids))
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := tx.Get(makeVectorKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				vector, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				found[id] = vector
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// PutVectors stores vectors in a single transaction.
func (c *VectorCache) PutVectors(ctx context.Context, vectors map[core.ID][]float32) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if len(vectors) == 0 {
		return nil
	}
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for id, vector := range vectors {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := tx.Set(makeVectorKey(id), storage.MarshalVector(vector)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err == nil {
		c.backend.logger.Debug("cached vectors", "count", len(vectors))
	}
	return err
}

// Close closes the underlying database.
func (c *VectorCache) Close() error {
	if c.backend.IsClosed() {
		return nil
	}
	return c.backend.Close()
}
