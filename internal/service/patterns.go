package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/jask/patterndeck/internal/catalog"
	"github.com/jask/patterndeck/internal/database/repository"
	"github.com/jask/patterndeck/internal/deck"
)

// ErrPatternNotFound is returned when a requested pattern does not exist.
var ErrPatternNotFound = errors.New("pattern not found")

// maxNameDistance is the largest normalized edit distance Find accepts.
const maxNameDistance = 0.4

// PatternService is the pattern source for the card screens.
type PatternService struct {
	Patterns *repository.PatternRepo
	Log      *zap.Logger
}

// Next returns the next pattern the startup has not answered, or nil when
// the catalog is exhausted.
func (s *PatternService) Next(ctx context.Context, startupID string) (*deck.Pattern, error) {
	row, err := s.Patterns.Next(ctx, startupID)
	if err != nil {
		return nil, fmt.Errorf("fetch next pattern: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	return s.toDeck(ctx, *row)
}

// Get returns one pattern by id.
func (s *PatternService) Get(ctx context.Context, id string) (*deck.Pattern, error) {
	row, err := s.Patterns.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch pattern %s: %w", id, err)
	}
	if row == nil {
		return nil, fmt.Errorf("%w: %s", ErrPatternNotFound, id)
	}
	return s.toDeck(ctx, *row)
}

// Find returns the pattern whose name is closest to query. Substring
// matches win over edit distance.
func (s *PatternService) Find(ctx context.Context, query string) (*deck.Pattern, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, fmt.Errorf("%w: empty query", ErrPatternNotFound)
	}
	rows, err := s.Patterns.List(ctx)
	if err != nil {
		return nil, err
	}
	type candidate struct {
		row   repository.Pattern
		score float64
	}
	var cands []candidate
	for _, row := range rows {
		name := strings.ToLower(row.Name)
		if name == q || row.ID == query {
			return s.Get(ctx, row.ID)
		}
		if strings.Contains(name, q) {
			cands = append(cands, candidate{row, 0})
			continue
		}
		if score := nameDistance(name, q); score <= maxNameDistance {
			cands = append(cands, candidate{row, score})
		}
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrPatternNotFound, query)
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score < cands[j].score })
	return s.Get(ctx, cands[0].row.ID)
}

// Import upserts every catalog entry and returns how many were written.
// Related entries that name a pattern already stored are resolved to its id.
func (s *PatternService) Import(ctx context.Context, c catalog.Catalog) (int, error) {
	rows := c.Rows()
	existing, err := s.Patterns.List(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing)+len(rows))
	for _, p := range existing {
		known[p.ID] = true
	}
	for _, row := range rows {
		known[row.ID] = true
	}
	for i := range rows {
		for j, rel := range rows[i].RelatedIDs {
			if known[rel] {
				continue
			}
			if id, ok := closestName(existing, rel); ok {
				rows[i].RelatedIDs[j] = id
				continue
			}
			s.logger().Warn("unresolved related pattern",
				zap.String("pattern", rows[i].ID), zap.String("related", rel))
		}
	}
	for _, row := range rows {
		if err := s.Patterns.Upsert(ctx, row); err != nil {
			return 0, fmt.Errorf("import %s: %w", row.ID, err)
		}
	}
	s.logger().Info("catalog imported", zap.Int("patterns", len(rows)))
	return len(rows), nil
}

func (s *PatternService) toDeck(ctx context.Context, row repository.Pattern) (*deck.Pattern, error) {
	p := &deck.Pattern{
		DocumentID:  row.ID,
		Name:        row.Name,
		Description: row.Description,
		Category:    deck.Category(row.Category),
	}
	for _, ph := range row.Phases {
		p.Phases = append(p.Phases, deck.Phase(ph))
	}
	if row.ImageURL != nil && *row.ImageURL != "" {
		p.Image = &deck.Image{URL: *row.ImageURL}
	}
	refs, err := s.Patterns.Refs(ctx, row.RelatedIDs)
	if err != nil {
		return nil, fmt.Errorf("related patterns of %s: %w", row.ID, err)
	}
	for _, ref := range refs {
		p.RelatedPatterns = append(p.RelatedPatterns, deck.PatternRef{DocumentID: ref.ID, Name: ref.Name})
	}
	return p, nil
}

func (s *PatternService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// closestName returns the id of the pattern whose name best matches name.
func closestName(rows []repository.Pattern, name string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	best, bestScore := "", maxNameDistance
	for _, row := range rows {
		score := nameDistance(strings.ToLower(row.Name), q)
		if score <= bestScore {
			best, bestScore = row.ID, score
		}
		if score == 0 {
			break
		}
	}
	return best, best != ""
}

func nameDistance(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}
