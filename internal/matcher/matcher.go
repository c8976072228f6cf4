// Package matcher finds catalog images whose average color is closest to
// a target color.
package matcher

import (
	"errors"
	"image/color"
	"sort"
	"strings"

	"github.com/arbovm/levenshtein"
	"gonum.org/v1/gonum/floats"

	"github.com/anime-shed/pokemon-palette-go/internal/palette"
	"github.com/anime-shed/pokemon-palette-go/pkg/models"
)

// ErrNoCandidates is returned when no record carries a usable average.
var ErrNoCandidates = errors.New("no images with an average color")

// Match is one candidate and its Euclidean distance to the target.
type Match struct {
	Record   models.ImageRecord
	Average  palette.AverageColor
	Distance float64
}

type candidate struct {
	record  models.ImageRecord
	average palette.AverageColor
	vec     []float64
}

// Matcher ranks report records by color distance.
type Matcher struct {
	candidates []candidate
}

// New indexes the records of a report. Records without a parseable
// rgbAverage are skipped.
func New(records []models.ImageRecord) *Matcher {
	m := &Matcher{}
	for _, rec := range records {
		avg, err := palette.ParseAverageColor(rec.RGBAverage)
		if err != nil {
			continue
		}
		m.candidates = append(m.candidates, candidate{record: rec, average: avg, vec: vector(avg.R, avg.G, avg.B)})
	}
	return m
}

// Len returns the number of usable candidates.
func (m *Matcher) Len() int {
	return len(m.candidates)
}

// Closest returns the nearest record. Ties keep the earlier record.
func (m *Matcher) Closest(target color.Color) (Match, error) {
	matches, err := m.Rank(target, 1)
	if err != nil {
		return Match{}, err
	}
	return matches[0], nil
}

// Rank returns up to n records ordered by ascending distance; n <= 0
// returns all of them.
func (m *Matcher) Rank(target color.Color, n int) ([]Match, error) {
	if len(m.candidates) == 0 {
		return nil, ErrNoCandidates
	}

	t := color.NRGBAModel.Convert(target).(color.NRGBA)
	tv := vector(t.R, t.G, t.B)

	matches := make([]Match, len(m.candidates))
	for i, c := range m.candidates {
		matches[i] = Match{Record: c.record, Average: c.average, Distance: floats.Distance(tv, c.vec, 2)}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })

	if n > 0 && n < len(matches) {
		matches = matches[:n]
	}
	return matches, nil
}

func vector(r, g, b uint8) []float64 {
	return []float64{float64(r), float64(g), float64(b)}
}

// SuggestName returns the name closest to query by edit distance, ignoring
// case, or "" when names is empty.
func SuggestName(query string, names []string) string {
	q := strings.ToLower(query)
	best, bestDist := "", -1
	for _, name := range names {
		d := levenshtein.Distance(q, strings.ToLower(name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}
