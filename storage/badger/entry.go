package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/wordhoard/core"
	"github.com/poiesic/wordhoard/storage"
)

// EntryRepository implements storage.EntryRepository for BadgerDB.
type EntryRepository struct {
	backend *Backend
	// owned is true when the repository opened the backend itself.
	owned bool
}

var _ storage.EntryRepository = (*EntryRepository)(nil)

// NewEntryRepository creates a repository on top of an existing backend.
// Closing the repository does not close the backend.
func NewEntryRepository(backend *Backend) (*EntryRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &EntryRepository{
		backend: backend,
	}, nil
}

// NewRepository opens a BadgerDB database at path and returns an entry
// repository that owns it.
func NewRepository(path string) (storage.EntryRepository, error) {
	return openOwned(path, false)
}

func openOwned(path string, inMemory bool) (*EntryRepository, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}
	return &EntryRepository{backend: backend, owned: true}, nil
}

// Close closes the backend if this repository opened it.
func (r *EntryRepository) Close() error {
	if r.owned {
		return r.backend.Close()
	}
	return nil
}

// FindSimilar delegates to the backend.
func (r *EntryRepository) FindSimilar(ctx context.Context, partition string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, partition, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *EntryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEntries stores entries, replacing any entry with the same ID.
func (r *EntryRepository) AddEntries(ctx context.Context, entries ...*core.Entry) ([]*core.Entry, error) {
	for _, entry := range entries {
		if err := core.ValidateEntry(entry); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, entry := range entries {
			if entry.Id == 0 {
				entry.Id = core.IDFromContent(entry.ContentKey())
			}

			// Drop indices of a previous version stored under the same id
			old, err := readEntryByID(tx, entry.Id)
			if err != nil {
				return err
			}
			if old != nil {
				if err := deleteEntry(tx, old); err != nil {
					return err
				}
			}

			if entry.InsertedAt.IsZero() {
				entry.InsertedAt = now
			}
			entry.UpdatedAt = now

			if err := writeEntry(tx, entry); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// GetEntry retrieves a single entry by ID.
func (r *EntryRepository) GetEntry(ctx context.Context, id core.ID) (*core.Entry, error) {
	var result *core.Entry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntryByID(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindEntriesByForm returns all homonyms of form in partition.
func (r *EntryRepository) FindEntriesByForm(ctx context.Context, partition, form string) ([]*core.Entry, error) {
	var results []*core.Entry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makePartialEntryFormKey(partition, form)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			id := idFromKeySuffix(iter.Item().Key())
			entry, err := readEntry(tx, makeEntryKey(partition, id))
			if err != nil {
				return err
			}
			if entry != nil {
				results = append(results, entry)
			}
		}
		return nil
	}, false)
	return results, err
}

// CountEntries counts the primary keys of a partition.
func (r *EntryRepository) CountEntries(ctx context.Context, partition string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeEntryPartitionPrefix(partition)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Helper methods

// writeEntry stores the primary record and both indices.
func writeEntry(tx *badger.Txn, entry *core.Entry) error {
	if err := tx.Set(makeEntryKey(entry.Partition, entry.Id), storage.MarshalEntry(entry)); err != nil {
		return err
	}
	if err := tx.Set(makeEntryIDKey(entry.Id), []byte(entry.Partition)); err != nil {
		return err
	}
	return tx.Set(makeEntryFormKey(entry.Partition, entry.Form, entry.Id), nil)
}

// deleteEntry removes the primary record and both indices.
func deleteEntry(tx *badger.Txn, entry *core.Entry) error {
	if err := tx.Delete(makeEntryFormKey(entry.Partition, entry.Form, entry.Id)); err != nil {
		return err
	}
	if err := tx.Delete(makeEntryIDKey(entry.Id)); err != nil {
		return err
	}
	return tx.Delete(makeEntryKey(entry.Partition, entry.Id))
}

// readEntryByID resolves the partition through the id index, then reads the entry.
// Returns nil, nil if the entry doesn't exist.
func readEntryByID(tx *badger.Txn, id core.ID) (*core.Entry, error) {
	item, err := tx.Get(makeEntryIDKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	partition, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return readEntry(tx, makeEntryKey(string(partition), id))
}

// readEntry reads an entry from the transaction.
func readEntry(tx *badger.Txn, key []byte) (*core.Entry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.Entry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalEntry(val)
		return err
	})
	return entry, err
}
