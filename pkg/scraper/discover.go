package scraper

import (
	"context"
	"fmt"
	"slices"
	"strconv"
)

// Discover scans the numeric id range [from, to] and returns the ids of courses
// running in the given year, sorted numerically. Exams are not fetched.
func Discover(ctx context.Context, f Fetcher, from, to int, opts CollectOptions) ([]string, error) {
	if from > to {
		return nil, fmt.Errorf("invalid id range %d-%d", from, to)
	}

	ids := make([]string, 0, to-from+1)
	for id := from; id <= to; id++ {
		ids = append(ids, strconv.Itoa(id))
	}

	// Most ids in a range don't exist, so missing courses are expected here
	opts.WithExams = false
	opts.FailThreshold = 0
	opts.ExpectMissing = true

	records, _, err := Collect(ctx, f, ids, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discovery interrupted: %w", err)
	}

	var running []int
	for _, c := range records {
		if !c.IsRunning {
			continue
		}
		n, err := strconv.Atoi(c.CourseID)
		if err != nil {
			return nil, fmt.Errorf("catalog returned non numeric course id %q", c.CourseID)
		}
		running = append(running, n)
	}
	slices.Sort(running)
	running = slices.Compact(running)

	found := make([]string, len(running))
	for i, n := range running {
		found[i] = strconv.Itoa(n)
	}
	return found, nil
}
