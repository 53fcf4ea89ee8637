package service

import (
	"context"
	"fmt"

	"github.com/jask/patterndeck/internal/database/repository"
	"github.com/jask/patterndeck/internal/deck"
)

// SubmissionStore persists submission records. It implements deck.Store.
type SubmissionStore struct {
	Responses *repository.StartupPatternRepo
}

// CreateSubmission inserts rec and returns it once the row is written.
func (s *SubmissionStore) CreateSubmission(ctx context.Context, rec deck.SubmissionRecord) (deck.SubmissionRecord, error) {
	if !rec.ResponseType.Allows(rec.Response) {
		return deck.SubmissionRecord{}, fmt.Errorf("%w: %s/%s", deck.ErrCrossBranch, rec.ResponseType, rec.Response)
	}
	err := s.Responses.Insert(ctx, repository.StartupPattern{
		ID:           rec.ID,
		StartupID:    rec.StartupID,
		PatternID:    rec.PatternID,
		ResponseType: string(rec.ResponseType),
		Response:     string(rec.Response),
		CreatedAt:    rec.CreatedAt,
	})
	if err != nil {
		return deck.SubmissionRecord{}, fmt.Errorf("insert response: %w", err)
	}
	return rec, nil
}

// List returns recorded responses, newest first. An empty startupID lists all.
func (s *SubmissionStore) List(ctx context.Context, startupID string) ([]deck.SubmissionRecord, error) {
	rows, err := s.Responses.ListByStartup(ctx, startupID)
	if err != nil {
		return nil, err
	}
	out := make([]deck.SubmissionRecord, 0, len(rows))
	for _, r := range rows {
		t, v, err := deck.ParseResponse(r.ResponseType, r.Response)
		if err != nil {
			return nil, fmt.Errorf("response %s: %w", r.ID, err)
		}
		out = append(out, deck.SubmissionRecord{
			ID:           r.ID,
			StartupID:    r.StartupID,
			PatternID:    r.PatternID,
			ResponseType: t,
			Response:     v,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out, nil
}
