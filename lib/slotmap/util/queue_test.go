package util

import (
	"sync"
	"testing"
	"time"
)

func TestQueueBasicOperations(t *testing.T) {
	q := NewQueue[int]()
	defer q.Close()

	for i := 0; i < 10; i++ {
		v := i
		if !q.Push(&v) {
			t.Fatalf("Failed to push item %d", i)
		}
	}

	for i := 0; i < 10; i++ {
		select {
		case val := <-q.Recv():
			if *val != i {
				t.Errorf("Expected %d, got %d", i, *val)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for item %d", i)
		}
	}

	select {
	case val := <-q.Recv():
		t.Errorf("Queue should be empty, but got %v", *val)
	case <-time.After(10 * time.Millisecond):
	}
}

func TestQueueRejectsNilAndClosed(t *testing.T) {
	q := NewQueue[string]()
	if q.Push(nil) {
		t.Errorf("Expected nil push to be rejected")
	}
	q.Close()
	if !q.IsClosed() {
		t.Errorf("Expected queue to report closed")
	}
	s := "late"
	if q.Push(&s) {
		t.Errorf("Expected push after close to be rejected")
	}

	// the channel is closed once the consumer exits
	select {
	case _, ok := <-q.Recv():
		if ok {
			t.Errorf("Expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("Timeout waiting for channel close")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue[int]()
	defer q.Close()

	const producers = 8
	const perProducer = 500
	total := producers * perProducer

	done := make(chan map[int]bool)
	go func() {
		seen := make(map[int]bool, total)
		for len(seen) < total {
			select {
			case v := <-q.Recv():
				if seen[*v] {
					t.Errorf("Duplicate item received: %d", *v)
				}
				seen[*v] = true
			case <-time.After(5 * time.Second):
				done <- seen
				return
			}
		}
		done <- seen
	}()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				v := p*perProducer + i
				q.Push(&v)
			}
		}(p)
	}
	wg.Wait()

	seen := <-done
	if len(seen) != total {
		t.Errorf("Expected %d items, got %d", total, len(seen))
	}
}
