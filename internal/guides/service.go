// Package guides implements the notebook operations on a user's guides.
// Every mutation loads the guide, changes it, validates it and saves the
// whole document back.
package guides

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/gesture"
	"github.com/nfrund/notebook/internal/retry"
	"github.com/nfrund/notebook/internal/richtext"
)

// Service provides the guide operations used by the web handlers, the JSON
// API and the data path API.
type Service struct {
	repo    domain.GuideRepository
	ids     *domain.IDGenerator
	policy  retry.Policy
	gesture gesture.Config
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces the wall clock id generator.
func WithIDGenerator(ids *domain.IDGenerator) Option {
	return func(s *Service) { s.ids = ids }
}

// WithGestureConfig sets the swipe thresholds used by ApplyItemGesture.
func WithGestureConfig(cfg gesture.Config) Option {
	return func(s *Service) { s.gesture = cfg }
}

// NewService creates a Service on top of repo. Store calls are retried
// according to policy, but only for errors that mean the store was
// unreachable.
func NewService(repo domain.GuideRepository, policy retry.Policy, opts ...Option) *Service {
	policy.ShouldRetry = isTransient
	s := &Service{
		repo:    repo,
		ids:     domain.NewIDGenerator(),
		policy:  policy,
		gesture: gesture.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func isTransient(err error) bool {
	return errors.Is(err, domain.ErrUnavailable)
}

func requireUser(uid string) error {
	if strings.TrimSpace(uid) == "" {
		return fmt.Errorf("%w: no signed in user", domain.ErrPermissionDenied)
	}
	return nil
}

// cleanText turns text typed into an editable element into a single plain line.
// Unparseable markup is kept as typed.
func cleanText(s string) string {
	text, err := richtext.SingleLine(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return text
}

// itemText cleans an item's text and rejects text that cleans down to
// nothing, such as a lone <br> left by contenteditable.
func itemText(raw string) (string, error) {
	text := cleanText(raw)
	if text == "" {
		return "", fmt.Errorf("%w: item text is empty", domain.ErrInvalidInput)
	}
	return text, nil
}

func (s *Service) load(ctx context.Context, uid, gid string) (*domain.Guide, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	g, err := retry.DoValue(ctx, s.policy, func(ctx context.Context) (*domain.Guide, error) {
		return s.repo.Get(ctx, uid, gid)
	})
	if err != nil {
		return nil, err
	}
	if g.Owner != uid {
		return nil, fmt.Errorf("%w: guide %s", domain.ErrPermissionDenied, gid)
	}
	return g, nil
}

func (s *Service) save(ctx context.Context, g *domain.Guide) (*domain.Guide, error) {
	g.Normalize()
	g.PruneChecks()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	saved, err := retry.DoValue(ctx, s.policy, func(ctx context.Context) (*domain.Guide, error) {
		return s.repo.Save(ctx, g)
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to save guide",
			"event", "guide_save_failed",
			"guide_id", g.ID,
			"error", err,
		)
		return nil, err
	}
	return saved, nil
}

// mutate runs fn against the stored guide and saves the result. Nothing is
// written when fn fails.
func (s *Service) mutate(ctx context.Context, uid, gid string, fn func(g *domain.Guide) error) (*domain.Guide, error) {
	g, err := s.load(ctx, uid, gid)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	return s.save(ctx, g)
}

// List returns the user's guides, most recently updated first.
func (s *Service) List(ctx context.Context, uid string) ([]*domain.Guide, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	return retry.DoValue(ctx, s.policy, func(ctx context.Context) ([]*domain.Guide, error) {
		return s.repo.List(ctx, uid)
	})
}

// Get returns a single guide.
func (s *Service) Get(ctx context.Context, uid, gid string) (*domain.Guide, error) {
	return s.load(ctx, uid, gid)
}

// CreateInput describes a new guide.
type CreateInput struct {
	Title      string           `json:"title" form:"title" validate:"required,max=120"`
	Kind       domain.GuideKind `json:"kind" form:"kind" validate:"omitempty,oneof=checklist journal"`
	ThemeColor string           `json:"theme_color" form:"theme_color" validate:"omitempty,hexcolor"`
}

// Create starts a guide from the template for its kind.
func (s *Service) Create(ctx context.Context, uid string, in CreateInput) (*domain.Guide, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	in.Title = cleanText(in.Title)
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	g := domain.NewGuide(s.ids.GuideID(), uid, in.Title, in.Kind)
	if in.ThemeColor != "" {
		g.ThemeColor = in.ThemeColor
	}
	return s.save(ctx, g)
}

// MetaPatch carries the guide level fields to change. Nil fields are kept.
type MetaPatch struct {
	Title      *string        `json:"title,omitempty" form:"title"`
	Subtitle   *string        `json:"subtitle,omitempty" form:"subtitle"`
	Icon       *string        `json:"icon,omitempty" form:"icon"`
	ThemeColor *string        `json:"theme_color,omitempty" form:"theme_color"`
	Layout     *domain.Layout `json:"layout,omitempty" form:"layout"`
}

// UpdateMeta changes the title, subtitle, icon, theme color or layout.
func (s *Service) UpdateMeta(ctx context.Context, uid, gid string, p MetaPatch) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		if p.Title != nil {
			g.Title = cleanText(*p.Title)
		}
		if p.Subtitle != nil {
			g.Subtitle = cleanText(*p.Subtitle)
		}
		if p.Icon != nil {
			g.Icon = strings.TrimSpace(*p.Icon)
		}
		if p.ThemeColor != nil {
			g.ThemeColor = strings.TrimSpace(*p.ThemeColor)
		}
		if p.Layout != nil {
			g.Layout = *p.Layout
		}
		return nil
	})
}

// Delete removes a guide.
func (s *Service) Delete(ctx context.Context, uid, gid string) error {
	if err := requireUser(uid); err != nil {
		return err
	}
	return retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.repo.Delete(ctx, uid, gid)
	})
}

// Duplicate copies a guide under a new id. Checked items are not copied.
func (s *Service) Duplicate(ctx context.Context, uid, gid string) (*domain.Guide, error) {
	src, err := s.load(ctx, uid, gid)
	if err != nil {
		return nil, err
	}
	cp, err := src.Clone()
	if err != nil {
		return nil, err
	}
	cp.ID = s.ids.GuideID()
	cp.CreatedAt = nil
	cp.UpdatedAt = nil
	cp.Title = copyTitle(cp.Title)
	cp.ResetChecks()
	return s.save(ctx, cp)
}

func copyTitle(title string) string {
	const suffix = " (copy)"
	if r := []rune(title); len(r)+len([]rune(suffix)) > 120 {
		title = string(r[:120-len([]rune(suffix))])
	}
	return title + suffix
}

// Progress reports checked and total item counts for a guide.
type Progress struct {
	Guide      domain.Progress    `json:"guide"`
	Categories []CategoryProgress `json:"categories"`
}

// CategoryProgress holds the totals of one category and its skills.
type CategoryProgress struct {
	domain.Progress
	Skills []domain.Progress `json:"skills"`
}

// ProgressOf totals checked/total per skill, category and guide.
func ProgressOf(g *domain.Guide) Progress {
	out := Progress{Guide: g.Progress(), Categories: make([]CategoryProgress, len(g.Categories))}
	for ci, cat := range g.Categories {
		cp := CategoryProgress{Progress: g.CategoryProgress(ci), Skills: make([]domain.Progress, len(cat.Skills))}
		for si := range cat.Skills {
			cp.Skills[si] = g.SkillProgress(ci, si)
		}
		out.Categories[ci] = cp
	}
	return out
}

// Progress loads a guide and reports its progress.
func (s *Service) Progress(ctx context.Context, uid, gid string) (Progress, error) {
	g, err := s.load(ctx, uid, gid)
	if err != nil {
		return Progress{}, err
	}
	return ProgressOf(g), nil
}
