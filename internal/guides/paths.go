package guides

import (
	"context"
	"errors"
	"fmt"

	"github.com/nfrund/notebook/internal/datapath"
	"github.com/nfrund/notebook/internal/domain"
)

// resolvePath parses raw and checks that it lies under the signed in user.
func resolvePath(uid, raw string) (datapath.Path, error) {
	if err := requireUser(uid); err != nil {
		return datapath.Path{}, err
	}
	p, err := datapath.Parse(raw)
	if err != nil {
		return datapath.Path{}, err
	}
	if p.Owner() != uid {
		return datapath.Path{}, fmt.Errorf("%w: %s", domain.ErrPermissionDenied, p)
	}
	return p, nil
}

// GetPath reads the value a data path points at. users/{uid} and
// users/{uid}/guides list guides keyed by id.
func (s *Service) GetPath(ctx context.Context, uid, raw string) (any, error) {
	p, err := resolvePath(uid, raw)
	if err != nil {
		return nil, err
	}
	switch p.Kind() {
	case datapath.KindUser, datapath.KindGuides:
		list, err := s.List(ctx, uid)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]any, len(list))
		for _, g := range list {
			v, err := datapath.Get(g, nil)
			if err != nil {
				return nil, err
			}
			byID[g.ID] = v
		}
		if p.Kind() == datapath.KindUser {
			return map[string]any{"guides": byID}, nil
		}
		return byID, nil
	default:
		g, err := s.load(ctx, uid, p.GuideID)
		if err != nil {
			return nil, err
		}
		return datapath.Get(g, p.Field)
	}
}

// SetPath writes value at a data path. Writing a whole guide creates it when
// it does not exist yet.
func (s *Service) SetPath(ctx context.Context, uid, raw string, value any) (*domain.Guide, error) {
	p, err := resolvePath(uid, raw)
	if err != nil {
		return nil, err
	}
	switch p.Kind() {
	case datapath.KindGuide:
		g, err := s.load(ctx, uid, p.GuideID)
		if errors.Is(err, domain.ErrNotFound) {
			g, err = &domain.Guide{ID: p.GuideID, Owner: uid}, nil
		}
		if err != nil {
			return nil, err
		}
		if err := datapath.Set(g, nil, value); err != nil {
			return nil, err
		}
		return s.save(ctx, g)
	case datapath.KindField:
		return s.mutate(ctx, uid, p.GuideID, func(g *domain.Guide) error {
			return datapath.Set(g, p.Field, value)
		})
	default:
		return nil, fmt.Errorf("%w: %s cannot be written", domain.ErrInvalidInput, p)
	}
}

// DeletePath removes the value at a data path. Deleting a guide path deletes
// the guide.
func (s *Service) DeletePath(ctx context.Context, uid, raw string) error {
	p, err := resolvePath(uid, raw)
	if err != nil {
		return err
	}
	switch p.Kind() {
	case datapath.KindGuide:
		return s.Delete(ctx, uid, p.GuideID)
	case datapath.KindField:
		_, err := s.mutate(ctx, uid, p.GuideID, func(g *domain.Guide) error {
			return datapath.Delete(g, p.Field)
		})
		return err
	default:
		return fmt.Errorf("%w: %s cannot be deleted", domain.ErrInvalidInput, p)
	}
}
