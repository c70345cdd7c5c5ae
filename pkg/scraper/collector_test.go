package scraper

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeFetcher serves courses from memory and fails for every id in fail.
type fakeFetcher struct {
	fail    map[string]bool
	delay   time.Duration
	running map[string]bool

	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	mu        sync.Mutex
	withExams []bool
}

func (f *fakeFetcher) FetchCourse(ctx context.Context, courseID string, year int, withExams bool) (*RawCourse, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.withExams = append(f.withExams, withExams)
	f.mu.Unlock()

	time.Sleep(f.delay)

	if f.fail[courseID] {
		return nil, fmt.Errorf("connection reset")
	}
	running := true
	if f.running != nil {
		running = f.running[courseID]
	}
	return &RawCourse{CourseID: courseID, IsRunning: running}, nil
}

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%d", 10000+i)
	}
	return out
}

func failing(courseIDs ...string) map[string]bool {
	m := make(map[string]bool)
	for _, id := range courseIDs {
		m[id] = true
	}
	return m
}

func TestCollect_AccountsForEveryID(t *testing.T) {
	all := ids(25)
	f := &fakeFetcher{fail: failing(all[3], all[7], all[20])}

	records, missing, err := Collect(context.Background(), f, all, CollectOptions{Year: 2024, Concurrency: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records)+len(missing) != len(all) {
		t.Errorf("expected %d records+missing, got %d+%d", len(all), len(records), len(missing))
	}
	if !reflect.DeepEqual(missing, []string{all[3], all[7], all[20]}) {
		t.Errorf("unexpected missing ids: %v", missing)
	}

	// Records keep the input order
	for i := 1; i < len(records); i++ {
		if records[i-1].CourseID >= records[i].CourseID {
			t.Fatalf("records out of order: %s before %s", records[i-1].CourseID, records[i].CourseID)
		}
	}
}

func TestCollect_RespectsConcurrencyLimit(t *testing.T) {
	f := &fakeFetcher{delay: 5 * time.Millisecond}

	if _, _, err := Collect(context.Background(), f, ids(30), CollectOptions{Concurrency: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := f.maxInFlight.Load(); got > 3 || got < 1 {
		t.Errorf("expected at most 3 concurrent retrievals, saw %d", got)
	}
}

func TestCollect_Threshold(t *testing.T) {
	all := ids(10)
	f := &fakeFetcher{fail: failing(all[0], all[1], all[2])}

	tests := []struct {
		name      string
		threshold int
		wantErr   bool
	}{
		{"disabled", 0, false},
		{"exactly at threshold", 3, false},
		{"above threshold", 2, true},
		{"well above threshold", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, missing, err := Collect(context.Background(), f, all, CollectOptions{Concurrency: 5, FailThreshold: tt.threshold})

			var tooMany *TooManyMissingError
			if tt.wantErr {
				if !errors.As(err, &tooMany) {
					t.Fatalf("expected TooManyMissingError, got %v", err)
				}
				if len(tooMany.Missing) != 3 || tooMany.Threshold != tt.threshold {
					t.Errorf("unexpected error contents: %+v", tooMany)
				}
				if records != nil {
					t.Errorf("records must be discarded when the threshold is exceeded")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(missing) != 3 || len(records) != 7 {
				t.Errorf("expected 7 records and 3 missing, got %d and %d", len(records), len(missing))
			}
		})
	}
}

func TestCollect_DeduplicatesIDs(t *testing.T) {
	f := &fakeFetcher{}

	records, missing, err := Collect(context.Background(), f, []string{"67101", " 67101", "", "80131", "67101"}, CollectOptions{Concurrency: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || len(missing) != 0 {
		t.Errorf("expected 2 unique records, got %d (missing %v)", len(records), missing)
	}
}

func TestCollect_ProgressAndExams(t *testing.T) {
	f := &fakeFetcher{}
	var calls []int

	_, _, err := Collect(context.Background(), f, ids(5), CollectOptions{
		Concurrency: 2,
		WithExams:   true,
		Progress: func(done, total int) {
			if total != 5 {
				t.Errorf("expected total 5, got %d", total)
			}
			calls = append(calls, done)
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(calls, []int{1, 2, 3, 4, 5}) {
		t.Errorf("unexpected progress sequence %v", calls)
	}
	for _, withExams := range f.withExams {
		if !withExams {
			t.Errorf("expected exams to be requested")
		}
	}
}

func TestCollect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records, missing, err := Collect(ctx, &fakeFetcher{}, ids(4), CollectOptions{Concurrency: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 || len(missing) != 4 {
		t.Errorf("expected every course to be missing, got %d records and %d missing", len(records), len(missing))
	}
}

func TestCollect_InvalidOptions(t *testing.T) {
	if _, _, err := Collect(context.Background(), &fakeFetcher{}, ids(1), CollectOptions{Concurrency: 0}); err == nil {
		t.Errorf("expected error for zero concurrency")
	}
	if _, _, err := Collect(context.Background(), &fakeFetcher{}, ids(1), CollectOptions{Concurrency: 1, FailThreshold: -1}); err == nil {
		t.Errorf("expected error for negative threshold")
	}
}

func TestDiscover(t *testing.T) {
	f := &fakeFetcher{
		fail:    failing("100", "104"),
		running: map[string]bool{"101": true, "103": true, "109": true, "110": true},
	}

	found, err := Discover(context.Background(), f, 100, 110, CollectOptions{Concurrency: 4, WithExams: true, FailThreshold: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"101", "103", "109", "110"}
	if !reflect.DeepEqual(found, expected) {
		t.Errorf("expected %v, got %v", expected, found)
	}
	for _, withExams := range f.withExams {
		if withExams {
			t.Errorf("discovery must not request exams")
		}
	}

	if _, err := Discover(context.Background(), f, 5, 1, CollectOptions{Concurrency: 1}); err == nil {
		t.Errorf("expected error for an inverted range")
	}
}

func TestDiscover_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	found, err := Discover(ctx, &fakeFetcher{}, 100, 110, CollectOptions{Concurrency: 2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if found != nil {
		t.Errorf("expected no ids from an interrupted scan, got %v", found)
	}
}
