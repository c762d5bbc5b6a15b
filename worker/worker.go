// Package worker runs batches of independent items off the editing
// goroutine. A batch reports fractional progress after each item, observes
// cancellation between items (never mid-item, and never rolling back what
// already completed) and delivers exactly one done notification at the end.
package worker

import "context"

// Batch processes Items sequentially on its own goroutine.
type Batch[T any] struct {
	Items []T

	// Process handles one item. An error counts the item as failed; it never
	// aborts the batch.
	Process func(item T) error

	// Progress receives the completed fraction after each item. May be nil.
	Progress func(fraction float64)

	// Alive is consulted before the done notification; when it reports
	// false the target of the batch has been torn down in the meantime and
	// Done is skipped. May be nil, which means always alive.
	Alive func() bool

	// Done receives the final counts exactly once, unless Alive vetoes it.
	// May be nil.
	Done func(processed, failed int)
}

// Run executes the batch synchronously. Cancellation via ctx is honored
// between items.
func (b *Batch[T]) Run(ctx context.Context) (processed, failed int) {
	total := len(b.Items)

	for i, item := range b.Items {
		if ctx.Err() != nil {
			break
		}

		if err := b.Process(item); err != nil {
			failed++
		} else {
			processed++
		}

		if b.Progress != nil {
			b.Progress(float64(i+1) / float64(total))
		}
	}

	if b.Alive != nil && !b.Alive() {
		return
	}
	if b.Done != nil {
		b.Done(processed, failed)
	}

	return
}

// Start runs the batch on its own goroutine.
func (b *Batch[T]) Start(ctx context.Context) {
	go b.Run(ctx)
}
