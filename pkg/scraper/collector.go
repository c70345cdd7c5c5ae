package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yotamroshuji/cheese-fork/pkg/logger"
)

// Fetcher retrieves a single course. Implementations must be safe for concurrent use.
type Fetcher interface {
	FetchCourse(ctx context.Context, courseID string, year int, withExams bool) (*RawCourse, error)
}

// CollectOptions controls a collection run
type CollectOptions struct {
	Year        int
	Concurrency int
	// FailThreshold is the maximum number of missing courses tolerated. Zero disables the check.
	FailThreshold int
	WithExams     bool
	// ExpectMissing logs not-found courses at debug level instead of as warnings.
	ExpectMissing bool
	// Progress is called after every finished retrieval. It only observes the run.
	Progress func(done, total int)
}

// RetrievalError is the failure of a single course retrieval
type RetrievalError struct {
	CourseID string
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("course %s: %v", e.CourseID, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// TooManyMissingError aborts a collection whose missing count exceeds the threshold.
type TooManyMissingError struct {
	Missing   []string
	Threshold int
}

func (e *TooManyMissingError) Error() string {
	return fmt.Sprintf("%d courses could not be retrieved (threshold %d): %s",
		len(e.Missing), e.Threshold, strings.Join(e.Missing, ", "))
}

type slot struct {
	course *RawCourse
	err    error
}

// Collect retrieves every course in ids with at most opts.Concurrency requests in flight.
// Failed retrievals never stop their siblings; their ids are returned in missing.
// Records and missing ids keep the order of ids, duplicates in ids are fetched once.
func Collect(ctx context.Context, f Fetcher, ids []string, opts CollectOptions) ([]RawCourse, []string, error) {
	if opts.Concurrency <= 0 {
		return nil, nil, fmt.Errorf("concurrency must be positive, got %d", opts.Concurrency)
	}
	if opts.FailThreshold < 0 {
		return nil, nil, fmt.Errorf("fail threshold must not be negative, got %d", opts.FailThreshold)
	}

	ids = uniqueIDs(ids)
	slots := make([]slot, len(ids))

	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		if opts.Progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		opts.Progress(done, len(ids))
	}

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			slots[i].err = &RetrievalError{CourseID: id, Err: err}
			continue
		}

		g.Go(func() error {
			defer report()

			course, err := f.FetchCourse(ctx, id, opts.Year, opts.WithExams)
			if err == nil && course == nil {
				err = ErrCourseNotFound
			}
			if err != nil {
				slots[i].err = &RetrievalError{CourseID: id, Err: err}
				return nil
			}
			slots[i].course = course
			return nil
		})
	}
	_ = g.Wait()

	records := make([]RawCourse, 0, len(ids))
	var missing []string
	for i, s := range slots {
		if s.err != nil {
			switch {
			case errors.Is(s.err, ErrCourseNotFound) && opts.ExpectMissing:
				logger.L().Debug("course not found", "course_id", ids[i])
			case errors.Is(s.err, ErrCourseNotFound):
				logger.L().Warn("course not found", "course_id", ids[i])
			default:
				logger.L().Warn("failed to retrieve course", "course_id", ids[i], "error", s.err)
			}
			missing = append(missing, ids[i])
			continue
		}
		records = append(records, *s.course)
	}

	logger.L().Info("collection finished", "requested", len(ids), "collected", len(records), "missing", len(missing))

	if opts.FailThreshold > 0 && len(missing) > opts.FailThreshold {
		return nil, missing, &TooManyMissingError{Missing: missing, Threshold: opts.FailThreshold}
	}

	return records, missing, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	return unique
}
