package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunCountsAndProgress(t *testing.T) {
	var fractions []float64
	var processed, failed int
	doneCalls := 0

	b := Batch[int]{
		Items: []int{1, 2, 3, 4},
		Process: func(item int) error {
			if item == 3 {
				return errors.New("boom")
			}
			return nil
		},
		Progress: func(fraction float64) {
			fractions = append(fractions, fraction)
		},
		Done: func(p, f int) {
			processed, failed = p, f
			doneCalls++
		},
	}

	p, f := b.Run(context.Background())

	if p != 3 || f != 1 {
		t.Errorf("Run() = %d, %d, expected 3, 1", p, f)
	}
	if doneCalls != 1 {
		t.Errorf("Done called %d times, expected once", doneCalls)
	}
	if processed != 3 || failed != 1 {
		t.Errorf("Done received %d, %d, expected 3, 1", processed, failed)
	}

	want := []float64{0.25, 0.5, 0.75, 1}
	if len(fractions) != len(want) {
		t.Fatalf("progress reported %d times: %v", len(fractions), fractions)
	}
	for i := range want {
		if fractions[i] != want[i] {
			t.Errorf("fraction %d = %f, expected %f", i, fractions[i], want[i])
		}
	}
}

func TestRunObservesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var handled []int
	b := Batch[int]{
		Items: []int{1, 2, 3, 4},
		Process: func(item int) error {
			handled = append(handled, item)
			if item == 2 {
				cancel()
			}
			return nil
		},
	}

	p, f := b.Run(ctx)

	// Cancellation takes effect between items; completed work stays counted.
	if len(handled) != 2 {
		t.Errorf("handled %v, expected the batch to stop after item 2", handled)
	}
	if p != 2 || f != 0 {
		t.Errorf("Run() = %d, %d, expected 2, 0", p, f)
	}
}

func TestRunAliveVeto(t *testing.T) {
	doneCalled := false
	b := Batch[int]{
		Items:   []int{1},
		Process: func(int) error { return nil },
		Alive:   func() bool { return false },
		Done:    func(int, int) { doneCalled = true },
	}

	b.Run(context.Background())

	if doneCalled {
		t.Error("Done delivered although Alive vetoed")
	}
}

func TestRunNilCallbacks(t *testing.T) {
	b := Batch[string]{
		Items:   []string{"a", "b"},
		Process: func(string) error { return nil },
	}

	if p, f := b.Run(context.Background()); p != 2 || f != 0 {
		t.Errorf("Run() = %d, %d, expected 2, 0", p, f)
	}
}

func TestStartRunsInBackground(t *testing.T) {
	done := make(chan struct{})

	b := Batch[int]{
		Items:   []int{1, 2},
		Process: func(int) error { return nil },
		Done:    func(int, int) { close(done) },
	}

	b.Start(context.Background())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background batch did not finish")
	}
}
