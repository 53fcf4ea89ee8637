package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jask/patterndeck/internal/config"
	"github.com/jask/patterndeck/internal/database/repository"
	"github.com/jask/patterndeck/internal/deck"
	"github.com/jask/patterndeck/internal/prefs"
)

// IdentityService resolves the startup responses are recorded for. The
// config override wins over the saved preference.
type IdentityService struct {
	Startups *repository.StartupRepo
	Override config.IdentityConfig
	Load     func() (*prefs.Identity, error)
	Save     func(prefs.Identity) error
}

// CurrentStartup implements deck.Identity. The startup row is created on
// first use so responses can reference it.
func (s *IdentityService) CurrentStartup(ctx context.Context) (deck.Startup, error) {
	id, name := strings.TrimSpace(s.Override.StartupID), strings.TrimSpace(s.Override.StartupName)
	if id == "" && s.Load != nil {
		saved, err := s.Load()
		if err != nil {
			return deck.Startup{}, fmt.Errorf("load identity: %w", err)
		}
		if saved != nil {
			id, name = saved.StartupID, saved.StartupName
		}
	}
	if id == "" {
		return deck.Startup{}, deck.ErrNoIdentity
	}
	existing, err := s.Startups.Get(ctx, id)
	if err != nil {
		return deck.Startup{}, err
	}
	if existing != nil && name == "" {
		name = existing.Name
	}
	if name == "" {
		name = id
	}
	if existing == nil || existing.Name != name {
		if err := s.Startups.Upsert(ctx, repository.Startup{ID: id, Name: name}); err != nil {
			return deck.Startup{}, fmt.Errorf("register startup: %w", err)
		}
	}
	return deck.Startup{DocumentID: id, Name: name}, nil
}

// Use remembers the startup for later sessions.
func (s *IdentityService) Use(ctx context.Context, id, name string) (deck.Startup, error) {
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)
	if id == "" {
		return deck.Startup{}, deck.ErrNoIdentity
	}
	if name == "" {
		if existing, err := s.Startups.Get(ctx, id); err == nil && existing != nil {
			name = existing.Name
		} else {
			name = id
		}
	}
	if err := s.Startups.Upsert(ctx, repository.Startup{ID: id, Name: name}); err != nil {
		return deck.Startup{}, err
	}
	if s.Save != nil {
		if err := s.Save(prefs.Identity{StartupID: id, StartupName: name}); err != nil {
			return deck.Startup{}, fmt.Errorf("save identity: %w", err)
		}
	}
	return deck.Startup{DocumentID: id, Name: name}, nil
}

// Known lists every registered startup, by name.
func (s *IdentityService) Known(ctx context.Context) ([]deck.Startup, error) {
	rows, err := s.Startups.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]deck.Startup, 0, len(rows))
	for _, r := range rows {
		out = append(out, deck.Startup{DocumentID: r.ID, Name: r.Name})
	}
	return out, nil
}
