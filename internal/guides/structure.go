package guides

import (
	"context"
	"strings"

	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/gesture"
)

// CategoryInput describes a category to add or the fields to change on one.
type CategoryInput struct {
	Name *string `json:"name,omitempty" form:"name"`
	Icon *string `json:"icon,omitempty" form:"icon"`
}

// AddCategory appends a category. A missing name becomes "New category".
func (s *Service) AddCategory(ctx context.Context, uid, gid string, in CategoryInput) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		c := domain.Category{Name: "New category"}
		applyCategory(&c, in)
		g.AddCategory(c)
		return nil
	})
}

// UpdateCategory changes the name or icon of category ci.
func (s *Service) UpdateCategory(ctx context.Context, uid, gid string, ci int, in CategoryInput) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		c, err := g.Category(ci)
		if err != nil {
			return err
		}
		applyCategory(c, in)
		return nil
	})
}

func applyCategory(c *domain.Category, in CategoryInput) {
	if in.Name != nil {
		c.Name = cleanText(*in.Name)
	}
	if in.Icon != nil {
		c.Icon = strings.TrimSpace(*in.Icon)
	}
}

// DeleteCategory removes category ci and every card in it.
func (s *Service) DeleteCategory(ctx context.Context, uid, gid string, ci int) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		return g.RemoveCategory(ci)
	})
}

// MoveCategory reorders the category tabs.
func (s *Service) MoveCategory(ctx context.Context, uid, gid string, from, to int) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		return g.MoveCategory(from, to)
	})
}

// SkillInput describes a card to add or the fields to change on one.
type SkillInput struct {
	Title        *string             `json:"title,omitempty" form:"title"`
	Icon         *string             `json:"icon,omitempty" form:"icon"`
	Bullet       *domain.BulletStyle `json:"bullet,omitempty" form:"bullet"`
	Collapsed    *bool               `json:"collapsed,omitempty" form:"collapsed"`
	ShowProgress *bool               `json:"show_progress,omitempty" form:"show_progress"`
	Items        []string            `json:"items,omitempty" form:"items"`
}

// AddSkill appends a card to category ci.
func (s *Service) AddSkill(ctx context.Context, uid, gid string, ci int, in SkillInput) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		sk := domain.Skill{Title: "New card", Bullet: domain.BulletCheckbox, ShowProgress: true}
		applySkill(&sk, in)
		_, err := g.AddSkill(ci, sk)
		return err
	})
}

// UpdateSkill changes the fields of card (ci, si). Items are only replaced
// through the item operations so that checks stay attached.
func (s *Service) UpdateSkill(ctx context.Context, uid, gid string, ci, si int, in SkillInput) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		sk, err := g.Skill(ci, si)
		if err != nil {
			return err
		}
		in.Items = nil
		applySkill(sk, in)
		return nil
	})
}

func applySkill(sk *domain.Skill, in SkillInput) {
	if in.Title != nil {
		sk.Title = cleanText(*in.Title)
	}
	if in.Icon != nil {
		sk.Icon = strings.TrimSpace(*in.Icon)
	}
	if in.Bullet != nil {
		sk.Bullet = *in.Bullet
	}
	if in.Collapsed != nil {
		sk.Collapsed = *in.Collapsed
	}
	if in.ShowProgress != nil {
		sk.ShowProgress = *in.ShowProgress
	}
	for _, it := range in.Items {
		if t := cleanText(it); t != "" {
			sk.Items = append(sk.Items, t)
		}
	}
}

// DeleteSkill removes card (ci, si).
func (s *Service) DeleteSkill(ctx context.Context, uid, gid string, ci, si int) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		return g.RemoveSkill(ci, si)
	})
}

// MoveSkill moves a card within its category or into another one.
func (s *Service) MoveSkill(ctx context.Context, uid, gid string, fromCat, fromIdx, toCat, toIdx int) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		return g.MoveSkill(fromCat, fromIdx, toCat, toIdx)
	})
}

// AddItem appends an item to card (ci, si).
func (s *Service) AddItem(ctx context.Context, uid, gid string, ci, si int, text string) (*domain.Guide, error) {
	clean, err := itemText(text)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		_, err := g.AddItem(ci, si, clean)
		return err
	})
}

// UpdateItem replaces the text of item ii. The check mark is kept.
func (s *Service) UpdateItem(ctx context.Context, uid, gid string, ci, si, ii int, text string) (*domain.Guide, error) {
	clean, err := itemText(text)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		return g.SetItem(ci, si, ii, clean)
	})
}

// DeleteItem removes item ii and shifts the checks of the items after it.
func (s *Service) DeleteItem(ctx context.Context, uid, gid string, ci, si, ii int) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		return g.RemoveItem(ci, si, ii)
	})
}

// MoveItem reorders the items of one card.
func (s *Service) MoveItem(ctx context.Context, uid, gid string, ci, si, from, to int) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		return g.MoveItem(ci, si, from, to)
	})
}

// ToggleItem flips the check mark of item ii.
func (s *Service) ToggleItem(ctx context.Context, uid, gid string, ci, si, ii int) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		_, err := g.ToggleItem(ci, si, ii)
		return err
	})
}

// ResetChecks clears every check mark in the guide.
func (s *Service) ResetChecks(ctx context.Context, uid, gid string) (*domain.Guide, error) {
	return s.mutate(ctx, uid, gid, func(g *domain.Guide) error {
		g.ResetChecks()
		return nil
	})
}

// ApplyItemGesture classifies a swipe over item ii and applies it: right
// toggles the check, left deletes the item, anything else does nothing. The
// guide is only saved when the gesture changed it.
func (s *Service) ApplyItemGesture(ctx context.Context, uid, gid string, ci, si, ii int, sw gesture.Swipe) (*domain.Guide, gesture.ItemAction, error) {
	action := gesture.ItemActionFor(s.gesture.Classify(sw))
	if action == gesture.ItemNoop {
		g, err := s.load(ctx, uid, gid)
		if err != nil {
			return nil, action, err
		}
		if _, err := g.Item(ci, si, ii); err != nil {
			return nil, action, err
		}
		return g, action, nil
	}
	var (
		g   *domain.Guide
		err error
	)
	switch action {
	case gesture.ItemToggle:
		g, err = s.ToggleItem(ctx, uid, gid, ci, si, ii)
	case gesture.ItemDelete:
		g, err = s.DeleteItem(ctx, uid, gid, ci, si, ii)
	}
	return g, action, err
}

// TabAfterSwipe returns the category tab to show after a swipe over the tab
// strip of g while tab current is selected.
func (s *Service) TabAfterSwipe(g *domain.Guide, current int, sw gesture.Swipe) int {
	return gesture.NextTab(s.gesture.Classify(sw), current, len(g.Categories))
}
