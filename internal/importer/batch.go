package importer

import (
	"context"
	"sync"
)

// BatchProcessor collects items and hands them to processor in groups of
// batchSize. The slice passed to processor is reused after it returns.
type BatchProcessor[T any] struct {
	batchSize int
	processor func(context.Context, []T) error
	items     []T
	processed int
	mu        sync.Mutex
}

// NewBatchProcessor creates a new batch processor. A batchSize below one
// processes every item on its own.
func NewBatchProcessor[T any](batchSize int, processor func(context.Context, []T) error) *BatchProcessor[T] {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BatchProcessor[T]{
		batchSize: batchSize,
		processor: processor,
		items:     make([]T, 0, batchSize),
	}
}

// Add adds an item to the batch. If the batch is full, it's processed.
func (b *BatchProcessor[T]) Add(ctx context.Context, item T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, item)
	if len(b.items) >= b.batchSize {
		return b.flush(ctx)
	}
	return nil
}

// Flush processes any remaining items in the batch.
func (b *BatchProcessor[T]) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flush(ctx)
}

// Processed returns the number of items handed to processor without error.
func (b *BatchProcessor[T]) Processed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.processed
}

func (b *BatchProcessor[T]) flush(ctx context.Context) error {
	if len(b.items) == 0 {
		return nil
	}

	err := b.processor(ctx, b.items)
	if err == nil {
		b.processed += len(b.items)
	}
	b.items = b.items[:0] // Reset slice but keep capacity
	return err
}
