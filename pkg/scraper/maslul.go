package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// Maslul identifies a study track: faculty, department (hug), track and degree.
type Maslul struct {
	Faculty  string
	Hug      string
	Maslul   string
	Toar     string // degree, e.g. "first"
	ToarYear string // year within the degree, e.g. "first"
}

func (m Maslul) String() string {
	return fmt.Sprintf("%s/%s/%s", m.Faculty, m.Hug, m.Maslul)
}

// MaslulLister lists the course ids taught in a study track
type MaslulLister interface {
	FetchMaslul(ctx context.Context, year int, m Maslul) ([]string, error)
}

// FetchMaslul downloads the track page and returns the ids of its courses
func (c *Client) FetchMaslul(ctx context.Context, year int, m Maslul) ([]string, error) {
	q := url.Values{}
	q.Set("peula", "Maslul")
	q.Set("year", fmt.Sprint(year))
	q.Set("faculty", m.Faculty)
	q.Set("hug", m.Hug)
	q.Set("maslul", m.Maslul)
	if m.Toar != "" {
		q.Set("toar", m.Toar)
	}
	if m.ToarYear != "" {
		q.Set("toar_year", m.ToarYear)
	}

	resp, err := c.get(ctx, q)
	if errors.Is(err, ErrCourseNotFound) {
		return nil, fmt.Errorf("maslul %s not found in catalog", m)
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return ParseMaslul(resp.Body)
}

// ParseMaslul parses a track page into the course ids it lists, in page order
func ParseMaslul(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var ids []string
	doc.Find("table.maslul tr.course td.course-id").Each(func(i int, sel *goquery.Selection) {
		id := strings.TrimSpace(sel.Text())
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	})

	return ids, nil
}

// CollectMaslulIDs lists every track with at most concurrency requests in flight and
// returns the course ids in track order. Any failing track aborts the listing.
func CollectMaslulIDs(ctx context.Context, l MaslulLister, year int, maslulim []Maslul, concurrency int) ([]string, error) {
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}

	results := make([][]string, len(maslulim))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, m := range maslulim {
		g.Go(func() error {
			ids, err := l.FetchMaslul(ctx, year, m)
			if err != nil {
				return fmt.Errorf("maslul %s: %w", m, err)
			}
			results[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ids []string
	for _, r := range results {
		ids = append(ids, r...)
	}
	return ids, nil
}
