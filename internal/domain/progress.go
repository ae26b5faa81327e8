package domain

// Progress counts checkable items and how many of them are checked.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Percent returns the completed share rounded down to a whole percent.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Done * 100 / p.Total
}

// Complete reports whether every checkable item is checked.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Done == p.Total
}

func (p Progress) add(o Progress) Progress {
	return Progress{Done: p.Done + o.Done, Total: p.Total + o.Total}
}

// SkillProgress reports progress for one card. Cards whose bullet is not a
// checkbox have nothing to tick and report zero.
func (g *Guide) SkillProgress(ci, si int) Progress {
	s, err := g.Skill(ci, si)
	if err != nil || !s.Bullet.Checkable() {
		return Progress{}
	}
	p := Progress{Total: len(s.Items)}
	for ii := range s.Items {
		if g.IsChecked(ci, si, ii) {
			p.Done++
		}
	}
	return p
}

// CategoryProgress sums progress across a category's cards.
func (g *Guide) CategoryProgress(ci int) Progress {
	cat, err := g.Category(ci)
	if err != nil {
		return Progress{}
	}
	var p Progress
	for si := range cat.Skills {
		p = p.add(g.SkillProgress(ci, si))
	}
	return p
}

// Progress sums progress across the whole guide.
func (g *Guide) Progress() Progress {
	var p Progress
	for ci := range g.Categories {
		p = p.add(g.CategoryProgress(ci))
	}
	return p
}
