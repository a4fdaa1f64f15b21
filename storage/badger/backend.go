package badger

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/wordhoard/core"
	"github.com/poiesic/wordhoard/storage"
)

// Backend wraps a BadgerDB instance and provides low-level operations.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens the dictionary store at filePath, creating the
// directory if needed. With inMemory set the path is ignored and nothing
// touches disk.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	if !inMemory {
		if err := ensureDir(filePath); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(filePath)
	}

	logger := slog.Default().With("component", "badger")
	opts = opts.
		WithLogger(&badgerLoggerAdapter{logger: logger}).
		WithCompression(options.None).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{
		db:     db,
		logger: logger,
	}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return os.MkdirAll(path, 0755)
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// WithTransaction executes a function within a transaction.
func (b *Backend) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// FindSimilar scans every entry of a partition and returns the limit
// entries closest to vector by cosine similarity, best first. Entries
// without a vector or with a different dimension are skipped.
func (b *Backend) FindSimilar(ctx context.Context, partition string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	if limit <= 0 || len(vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}
	if err := core.ValidatePartition(partition); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}

	top := &resultHeap{}
	var scanned, mismatched int

	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntryPartitionPrefix(partition)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var entry *core.Entry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			scanned++

			if len(entry.Vector) == 0 {
				continue
			}
			if len(entry.Vector) != len(vector) {
				mismatched++
				continue
			}

			similarity := cosineSimilarity(vector, entry.Vector)
			if similarity < minSimilarity {
				continue
			}
			top.offer(&core.SearchResult{Entry: entry, Score: similarity}, limit)
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	if mismatched > 0 {
		b.logger.Warn("skipped entries with a different vector dimension",
			"partition", partition,
			"dimension", len(vector),
			"skipped", mismatched)
	}
	b.logger.Debug("similarity scan finished", "partition", partition, "scanned", scanned, "kept", top.Len())

	return top.sorted(), nil
}

// resultHeap is a min-heap on score holding the best results seen so far.
// Among equal scores the later entry in key order is evicted first.
type resultHeap struct {
	items []*core.SearchResult
	seq   []int
	next  int
}

func (h *resultHeap) Len() int { return len(h.items) }

func (h *resultHeap) Less(i, j int) bool {
	if h.items[i].Score != h.items[j].Score {
		return h.items[i].Score < h.items[j].Score
	}
	return h.seq[i] > h.seq[j]
}

func (h *resultHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.seq[i], h.seq[j] = h.seq[j], h.seq[i]
}

func (h *resultHeap) Push(x any) {
	h.items = append(h.items, x.(*core.SearchResult))
	h.seq = append(h.seq, h.next)
	h.next++
}

func (h *resultHeap) Pop() any {
	n := len(h.items) - 1
	item := h.items[n]
	h.items = h.items[:n]
	h.seq = h.seq[:n]
	return item
}

// offer adds r if the heap holds fewer than limit results or r beats the worst one.
func (h *resultHeap) offer(r *core.SearchResult, limit int) {
	if h.Len() < limit {
		heap.Push(h, r)
		return
	}
	if r.Score > h.items[0].Score {
		h.items[0] = r
		h.seq[0] = h.next
		h.next++
		heap.Fix(h, 0)
	}
}

// sorted drains the heap into a slice ordered by score descending, ties in key order.
func (h *resultHeap) sorted() []*core.SearchResult {
	out := make([]*core.SearchResult, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(*core.SearchResult)
	}
	return out
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either is a zero vector. Only the shared prefix is compared.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
