package domain

import "fmt"

// Structural edits on a guide. Each edit that shifts indices also remaps the
// checked map so that a check mark stays with its item.

// AddCategory appends a category and returns its index.
func (g *Guide) AddCategory(c Category) int {
	if c.Skills == nil {
		c.Skills = []Skill{}
	}
	g.Categories = append(g.Categories, c)
	return len(g.Categories) - 1
}

// RemoveCategory deletes the category at ci with all of its skills.
func (g *Guide) RemoveCategory(ci int) error {
	if _, err := g.Category(ci); err != nil {
		return err
	}
	g.Categories = removeElement(g.Categories, ci)
	g.remapChecks(func(p position) (position, bool) {
		switch {
		case p.ci == ci:
			return p, false
		case p.ci > ci:
			p.ci--
		}
		return p, true
	})
	return nil
}

// MoveCategory moves the category at from to position to.
func (g *Guide) MoveCategory(from, to int) error {
	if err := checkMove(len(g.Categories), from, to, "category"); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	g.Categories = moveElement(g.Categories, from, to)
	g.remapChecks(func(p position) (position, bool) {
		p.ci = movedIndex(p.ci, from, to)
		return p, true
	})
	return nil
}

// AddSkill appends a skill to category ci and returns its index.
func (g *Guide) AddSkill(ci int, s Skill) (int, error) {
	cat, err := g.Category(ci)
	if err != nil {
		return 0, err
	}
	if s.Bullet == "" {
		s.Bullet = BulletCheckbox
	}
	if s.Items == nil {
		s.Items = []string{}
	}
	cat.Skills = append(cat.Skills, s)
	return len(cat.Skills) - 1, nil
}

// RemoveSkill deletes the skill at (ci, si).
func (g *Guide) RemoveSkill(ci, si int) error {
	cat, err := g.Category(ci)
	if err != nil {
		return err
	}
	if si < 0 || si >= len(cat.Skills) {
		return fmt.Errorf("%w: skill %d", ErrNotFound, si)
	}
	cat.Skills = removeElement(cat.Skills, si)
	g.remapChecks(func(p position) (position, bool) {
		if p.ci != ci {
			return p, true
		}
		switch {
		case p.si == si:
			return p, false
		case p.si > si:
			p.si--
		}
		return p, true
	})
	return nil
}

// MoveSkill moves a card within a category or across categories. toIdx is
// the card's final index in the destination category.
func (g *Guide) MoveSkill(fromCat, fromIdx, toCat, toIdx int) error {
	src, err := g.Category(fromCat)
	if err != nil {
		return err
	}
	if fromCat == toCat {
		if err := checkMove(len(src.Skills), fromIdx, toIdx, "skill"); err != nil {
			return err
		}
		if fromIdx == toIdx {
			return nil
		}
		src.Skills = moveElement(src.Skills, fromIdx, toIdx)
		g.remapChecks(func(p position) (position, bool) {
			if p.ci == fromCat {
				p.si = movedIndex(p.si, fromIdx, toIdx)
			}
			return p, true
		})
		return nil
	}

	dst, err := g.Category(toCat)
	if err != nil {
		return err
	}
	if fromIdx < 0 || fromIdx >= len(src.Skills) {
		return fmt.Errorf("%w: skill %d", ErrNotFound, fromIdx)
	}
	if toIdx < 0 || toIdx > len(dst.Skills) {
		return fmt.Errorf("%w: destination index %d", ErrInvalidInput, toIdx)
	}

	moved := src.Skills[fromIdx]
	src.Skills = removeElement(src.Skills, fromIdx)
	dst.Skills = insertElement(dst.Skills, toIdx, moved)

	g.remapChecks(func(p position) (position, bool) {
		switch {
		case p.ci == fromCat && p.si == fromIdx:
			p.ci, p.si = toCat, toIdx
		case p.ci == fromCat && p.si > fromIdx:
			p.si--
		case p.ci == toCat && p.si >= toIdx:
			p.si++
		}
		return p, true
	})
	return nil
}

// AddItem appends an item to the skill at (ci, si) and returns its index.
func (g *Guide) AddItem(ci, si int, text string) (int, error) {
	s, err := g.Skill(ci, si)
	if err != nil {
		return 0, err
	}
	s.Items = append(s.Items, text)
	return len(s.Items) - 1, nil
}

// SetItem replaces the text of an item.
func (g *Guide) SetItem(ci, si, ii int, text string) error {
	s, err := g.Skill(ci, si)
	if err != nil {
		return err
	}
	if ii < 0 || ii >= len(s.Items) {
		return fmt.Errorf("%w: item %d", ErrNotFound, ii)
	}
	s.Items[ii] = text
	return nil
}

// RemoveItem deletes an item and its check mark.
func (g *Guide) RemoveItem(ci, si, ii int) error {
	s, err := g.Skill(ci, si)
	if err != nil {
		return err
	}
	if ii < 0 || ii >= len(s.Items) {
		return fmt.Errorf("%w: item %d", ErrNotFound, ii)
	}
	s.Items = removeElement(s.Items, ii)
	g.remapChecks(func(p position) (position, bool) {
		if p.ci != ci || p.si != si {
			return p, true
		}
		switch {
		case p.ii == ii:
			return p, false
		case p.ii > ii:
			p.ii--
		}
		return p, true
	})
	return nil
}

// MoveItem reorders an item within its skill.
func (g *Guide) MoveItem(ci, si, from, to int) error {
	s, err := g.Skill(ci, si)
	if err != nil {
		return err
	}
	if err := checkMove(len(s.Items), from, to, "item"); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	s.Items = moveElement(s.Items, from, to)
	g.remapChecks(func(p position) (position, bool) {
		if p.ci == ci && p.si == si {
			p.ii = movedIndex(p.ii, from, to)
		}
		return p, true
	})
	return nil
}

func checkMove(n, from, to int, what string) error {
	if from < 0 || from >= n {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, from)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("%w: %s destination %d", ErrInvalidInput, what, to)
	}
	return nil
}
