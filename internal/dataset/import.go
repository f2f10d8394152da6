package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/reelstack-io/reelstack/internal/logging"
)

// Expected column headers of the dataset.
const (
	colRank        = "Rank"
	colTitle       = "Title"
	colGenre       = "Genre"
	colDescription = "Description"
	colDirector    = "Director"
	colActors      = "Actors"
	colYear        = "Year"
	colRuntime     = "Runtime (Minutes)"
	colRating      = "Rating"
	colVotes       = "Votes"
	colRevenue     = "Revenue (Millions)"
	colMetascore   = "Metascore"
)

// MovieStore is the data-plane sink for imported records.
type MovieStore interface {
	PutMovie(ctx context.Context, m Movie) error
}

// Result summarizes one import pass. Imported is always Total minus Skipped.
type Result struct {
	Total    int
	Imported int
	Skipped  int
}

// Importer performs a single write-or-skip-on-error pass over a CSV dataset.
// Malformed records and failed writes are logged and skipped; they never
// abort the batch.
type Importer struct {
	store MovieStore
}

func NewImporter(store MovieStore) *Importer {
	return &Importer{store: store}
}

// Run imports every record from r.
func (i *Importer) Run(ctx context.Context, r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read dataset header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for idx, name := range header {
		cols[strings.TrimSpace(name)] = idx
	}
	for _, required := range []string{colTitle, colYear} {
		if _, ok := cols[required]; !ok {
			return Result{}, fmt.Errorf("dataset missing required column %q", required)
		}
	}

	var res Result
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("import cancelled: %w", err)
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		res.Total++
		if err != nil {
			res.Skipped++
			logging.Warn("skipping malformed record", "line", line, "error", err)
			continue
		}

		m, err := parseMovie(cols, rec)
		if err != nil {
			res.Skipped++
			logging.Warn("skipping malformed record", "line", line, "error", err)
			continue
		}

		if err := i.store.PutMovie(ctx, m); err != nil {
			res.Skipped++
			logging.Warn("skipping record after write failure", "line", line, "title", m.Title, "error", err)
			continue
		}
		res.Imported++
	}

	logging.Info("import pass complete", "total", res.Total, "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}

func parseMovie(cols map[string]int, rec []string) (Movie, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	title := field(colTitle)
	if title == "" {
		return Movie{}, fmt.Errorf("missing required field %q", colTitle)
	}
	yearRaw := field(colYear)
	if yearRaw == "" {
		return Movie{}, fmt.Errorf("missing required field %q", colYear)
	}
	year, err := strconv.Atoi(yearRaw)
	if err != nil {
		return Movie{}, fmt.Errorf("invalid %q value %q", colYear, yearRaw)
	}

	return Movie{
		Rank:            atoiOr(field(colRank), 0),
		Title:           title,
		Genre:           field(colGenre),
		Description:     field(colDescription),
		Director:        field(colDirector),
		Actors:          field(colActors),
		Year:            year,
		RuntimeMinutes:  atoiOr(field(colRuntime), 0),
		Rating:          atofOr(field(colRating), 0),
		Votes:           atoiOr(field(colVotes), 0),
		RevenueMillions: atofOr(field(colRevenue), 0),
		Metascore:       atoiOr(field(colMetascore), 0),
	}, nil
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func atofOr(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}
