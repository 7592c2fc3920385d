package detection

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

// collect reads every event of j, failing the test if the job stalls.
func collect(t *testing.T, j *Job) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-j.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("job did not finish")
		}
	}
}

func TestFindAsync_Completes(t *testing.T) {
	img := scatterSheet(40, 40, 5)
	want, err := Find(img)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	j, err := FindAsync(context.Background(), img)
	if err != nil {
		t.Fatalf("FindAsync failed: %v", err)
	}
	events := collect(t, j)

	if len(events) == 0 {
		t.Fatal("no events posted")
	}
	last := events[len(events)-1]
	if last.Kind != EventCompleted {
		t.Fatalf("last event: got %v, want completed", last.Kind)
	}
	if !reflect.DeepEqual(last.Bounds, want) {
		t.Errorf("async bounds differ from Find: got %v, want %v", last.Bounds, want)
	}

	prev := -1.0
	for _, ev := range events[:len(events)-1] {
		if ev.Kind != EventProgress {
			t.Fatalf("terminal event %v posted before the end", ev.Kind)
		}
		if ev.Ratio < prev {
			t.Errorf("progress decreased: %f after %f", ev.Ratio, prev)
		}
		prev = ev.Ratio
	}

	res := j.Wait()
	if res.Status != StatusCompleted {
		t.Errorf("Wait status: got %v, want completed", res.Status)
	}
	select {
	case <-j.Done():
	default:
		t.Error("Done should be closed after the terminal event")
	}
}

func TestFindAsync_CancelAfterFirstProgress(t *testing.T) {
	img := scatterSheet(300, 300, 3)

	j, err := FindAsync(context.Background(), img)
	if err != nil {
		t.Fatalf("FindAsync failed: %v", err)
	}

	var kinds []EventKind
	cancelled := false
	timeout := time.After(10 * time.Second)
loop:
	for {
		select {
		case ev, ok := <-j.Events():
			if !ok {
				break loop
			}
			kinds = append(kinds, ev.Kind)
			if ev.Kind == EventProgress && !cancelled {
				j.Cancel()
				cancelled = true
			}
		case <-timeout:
			t.Fatal("job did not finish")
		}
	}

	if len(kinds) == 0 || kinds[len(kinds)-1] != EventAborted {
		t.Fatalf("last event should be aborted, got %v", kinds)
	}
	for _, k := range kinds {
		if k == EventCompleted {
			t.Fatal("a cancelled job must not post completed")
		}
	}

	res := j.Wait()
	if res.Status != StatusAborted {
		t.Errorf("Wait status: got %v, want aborted", res.Status)
	}
	if res.Bounds != nil {
		t.Errorf("aborted job should carry no bounds, got %d", len(res.Bounds))
	}
}

func TestFindAsync_CancelWithoutReading(t *testing.T) {
	img := scatterSheet(200, 200, 3)

	j, err := FindAsync(context.Background(), img)
	if err != nil {
		t.Fatalf("FindAsync failed: %v", err)
	}

	// Let the worker fill the buffer and block on the next progress event.
	deadline := time.Now().Add(10 * time.Second)
	for len(j.events) < cap(j.events) {
		if time.Now().After(deadline) {
			t.Fatal("event buffer never filled")
		}
		time.Sleep(time.Millisecond)
	}

	j.Cancel()

	select {
	case <-j.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("cancelled job did not finish while its events were unread")
	}

	var kinds []EventKind
	for ev := range j.Events() {
		kinds = append(kinds, ev.Kind)
	}
	if len(kinds) == 0 || kinds[len(kinds)-1] != EventAborted {
		t.Fatalf("last event should be aborted, got %v", kinds)
	}
	if len(kinds) > eventBuffer {
		t.Errorf("got %d buffered events, want at most %d", len(kinds), eventBuffer)
	}
	if res := j.Wait(); res.Status != StatusAborted {
		t.Errorf("Status: got %v, want aborted", res.Status)
	}
}

func TestFindAsync_ParentContextCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	j, err := FindAsync(ctx, scatterSheet(20, 20, 4))
	if err != nil {
		t.Fatalf("FindAsync failed: %v", err)
	}
	if res := j.Wait(); res.Status != StatusAborted {
		t.Errorf("Status: got %v, want aborted", res.Status)
	}
}

func TestFindAsync_WaitWithoutReading(t *testing.T) {
	// More sprites than the event buffer holds; Wait must drain.
	img := scatterSheet(100, 100, 4)

	j, err := FindAsync(context.Background(), img)
	if err != nil {
		t.Fatalf("FindAsync failed: %v", err)
	}

	done := make(chan *Result, 1)
	go func() { done <- j.Wait() }()

	select {
	case res := <-done:
		if res.Status != StatusCompleted {
			t.Errorf("Status: got %v, want completed", res.Status)
		}
		if len(res.Bounds) != 25*25 {
			t.Errorf("got %d sprites, want %d", len(res.Bounds), 25*25)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Wait did not return")
	}
}

func TestFindAsync_InvalidInput(t *testing.T) {
	if _, err := FindAsync(context.Background(), nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestJob_CancelIsIdempotent(t *testing.T) {
	j, err := FindAsync(context.Background(), newSheet(8, 8))
	if err != nil {
		t.Fatalf("FindAsync failed: %v", err)
	}
	res := j.Wait()
	j.Cancel()
	j.Cancel()

	if res.Status != StatusCompleted {
		t.Errorf("Status: got %v, want completed", res.Status)
	}
}
