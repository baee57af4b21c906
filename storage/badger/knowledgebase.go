package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/corpit/core"
	"github.com/poiesic/corpit/storage"
)

// KnowledgeBaseRepository implements storage.KnowledgeBaseRepository for BadgerDB.
type KnowledgeBaseRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.KnowledgeBaseRepository = (*KnowledgeBaseRepository)(nil)

// NewKnowledgeBaseRepository creates a new KnowledgeBaseRepository.
func NewKnowledgeBaseRepository(backend *Backend) (*KnowledgeBaseRepository, error) {
	idSeq, err := backend.GetSequence(kbIDSeq)
	if err != nil {
		return nil, err
	}

	return &KnowledgeBaseRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *KnowledgeBaseRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *KnowledgeBaseRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddKnowledgeBases adds one or more knowledge bases to storage.
func (r *KnowledgeBaseRepository) AddKnowledgeBases(ctx context.Context, bases ...*core.KnowledgeBase) ([]*core.KnowledgeBase, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, kb := range bases {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			kb.Id = core.ID(nextID)

			kb.InsertedAt = time.Now().UTC()
			kb.UpdatedAt = kb.InsertedAt

			key := makeKBKey(kb.Id)
			value := storage.MarshalKnowledgeBase(kb)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return bases, err
}

// UpdateKnowledgeBases updates existing knowledge bases.
func (r *KnowledgeBaseRepository) UpdateKnowledgeBases(ctx context.Context, bases ...*core.KnowledgeBase) ([]*core.KnowledgeBase, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, kb := range bases {
			key := makeKBKey(kb.Id)

			old, err := r.readKnowledgeBase(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			kb.UpdatedAt = time.Now().UTC()
			if kb.InsertedAt.IsZero() {
				kb.InsertedAt = old.InsertedAt
			}

			value := storage.MarshalKnowledgeBase(kb)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return bases, err
}

// DeleteKnowledgeBases removes knowledge bases by their IDs.
func (r *KnowledgeBaseRepository) DeleteKnowledgeBases(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeKBKey(id)

			kb, err := r.readKnowledgeBase(tx, key)
			if err != nil {
				return err
			}
			if kb == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetKnowledgeBase retrieves a single knowledge base by ID.
func (r *KnowledgeBaseRepository) GetKnowledgeBase(ctx context.Context, id core.ID) (*core.KnowledgeBase, error) {
	var kb *core.KnowledgeBase

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		kb, err = r.readKnowledgeBase(tx, makeKBKey(id))
		return err
	}, false)

	if err != nil {
		return nil, err
	}
	if kb == nil {
		return nil, storage.ErrNotFound
	}
	return kb, nil
}

// ListKnowledgeBases retrieves all knowledge bases, ordered by ID.
func (r *KnowledgeBaseRepository) ListKnowledgeBases(ctx context.Context) ([]*core.KnowledgeBase, error) {
	var bases []*core.KnowledgeBase

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(kbRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var kb *core.KnowledgeBase
			err := iter.Item().Value(func(val []byte) error {
				var err error
				kb, err = storage.UnmarshalKnowledgeBase(val)
				return err
			})
			if err != nil {
				return err
			}
			if kb != nil {
				bases = append(bases, kb)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return bases, nil
}

// readKnowledgeBase reads and unmarshals a knowledge base inside a transaction.
// Returns nil, nil when the key does not exist.
func (r *KnowledgeBaseRepository) readKnowledgeBase(tx *badger.Txn, key []byte) (*core.KnowledgeBase, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var kb *core.KnowledgeBase
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		kb, unmarshalErr = storage.UnmarshalKnowledgeBase(val)
		return unmarshalErr
	})
	return kb, err
}
