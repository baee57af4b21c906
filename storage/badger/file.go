package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/corpit/core"
	"github.com/poiesic/corpit/storage"
)

// FileRepository implements storage.FileRepository for BadgerDB.
type FileRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.FileRepository = (*FileRepository)(nil)

// NewFileRepository creates a new FileRepository.
func NewFileRepository(backend *Backend) (*FileRepository, error) {
	idSeq, err := backend.GetSequence(fileIDSeq)
	if err != nil {
		return nil, err
	}

	return &FileRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *FileRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *FileRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddFiles adds one or more knowledge files to storage.
func (r *FileRepository) AddFiles(ctx context.Context, files ...*core.KnowledgeFile) ([]*core.KnowledgeFile, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, file := range files {
			// Always generate new ID from sequence
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
			file.Id = core.ID(nextID)

			file.InsertedAt = time.Now().UTC()
			file.UpdatedAt = file.InsertedAt

			// Store primary record
			key := makeFileKey(file.Id)
			value := storage.MarshalKnowledgeFile(file)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update knowledge-base index
			kbKey := makeFileKBKey(file.KnowledgeBaseId, file.Id)
			if err := tx.Set(kbKey, storage.MarshalID(file.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return files, err
}

// UpdateFiles updates existing knowledge files.
func (r *FileRepository) UpdateFiles(ctx context.Context, files ...*core.KnowledgeFile) ([]*core.KnowledgeFile, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, file := range files {
			key := makeFileKey(file.Id)

			// Read old record to detect index changes
			old, err := r.readFile(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// Update timestamp
			file.UpdatedAt = time.Now().UTC()
			if file.InsertedAt.IsZero() {
				file.InsertedAt = old.InsertedAt
			}

			// Store updated record
			value := storage.MarshalKnowledgeFile(file)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update knowledge-base index if ownership changed
			if old.KnowledgeBaseId != file.KnowledgeBaseId {
				oldKBKey := makeFileKBKey(old.KnowledgeBaseId, old.Id)
				if err := tx.Delete(oldKBKey); err != nil {
					return err
				}
				newKBKey := makeFileKBKey(file.KnowledgeBaseId, file.Id)
				if err := tx.Set(newKBKey, storage.MarshalID(file.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return files, err
}

// DeleteFiles removes knowledge files by their IDs.
func (r *FileRepository) DeleteFiles(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeFileKey(id)

			file, err := r.readFile(tx, key)
			if err != nil {
				return err
			}
			if file == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}

			kbKey := makeFileKBKey(file.KnowledgeBaseId, file.Id)
			if err := tx.Delete(kbKey); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetFile retrieves a single knowledge file by ID.
func (r *FileRepository) GetFile(ctx context.Context, id core.ID) (*core.KnowledgeFile, error) {
	var file *core.KnowledgeFile

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		file, err = r.readFile(tx, makeFileKey(id))
		return err
	}, false)

	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, storage.ErrNotFound
	}
	return file, nil
}

// GetFiles retrieves multiple knowledge files by their IDs.
// Missing files are skipped without error.
func (r *FileRepository) GetFiles(ctx context.Context, ids ...core.ID) ([]*core.KnowledgeFile, error) {
	files := make([]*core.KnowledgeFile, 0, len(ids))

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			file, err := r.readFile(tx, makeFileKey(id))
			if err != nil {
				return err
			}
			if file != nil {
				files = append(files, file)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return files, nil
}

// ListFilesByKnowledgeBase retrieves all files owned by a knowledge base.
func (r *FileRepository) ListFilesByKnowledgeBase(ctx context.Context, kbID core.ID) ([]*core.KnowledgeFile, error) {
	var files []*core.KnowledgeFile

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialFileKBKey(kbID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var fileID core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				fileID, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			file, err := r.readFile(tx, makeFileKey(fileID))
			if err != nil {
				return err
			}
			if file != nil {
				files = append(files, file)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return files, nil
}

// readFile reads and unmarshals a knowledge file inside a transaction.
// Returns nil, nil when the key does not exist.
func (r *FileRepository) readFile(tx *badger.Txn, key []byte) (*core.KnowledgeFile, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var file *core.KnowledgeFile
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		file, unmarshalErr = storage.UnmarshalKnowledgeFile(val)
		return unmarshalErr
	})
	return file, err
}
