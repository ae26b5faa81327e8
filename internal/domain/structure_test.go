package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveItem_ChecksFollowItems(t *testing.T) {
	g := twoCategoryGuide()
	_, _ = g.ToggleItem(0, 0, 0) // tent

	require.NoError(t, g.MoveItem(0, 0, 0, 2))

	assert.Equal(t, []string{"stove", "map", "tent"}, g.Categories[0].Skills[0].Items)
	assert.True(t, g.IsChecked(0, 0, 2))
	assert.False(t, g.IsChecked(0, 0, 0))

	assert.ErrorIs(t, g.MoveItem(0, 0, 3, 0), ErrNotFound)
	assert.ErrorIs(t, g.MoveItem(0, 0, 0, 3), ErrInvalidInput)
}

func TestRemoveItem_ShiftsLaterChecks(t *testing.T) {
	g := twoCategoryGuide()
	g.Checked = map[string]bool{"0-0-0": true, "0-0-2": true, "0-1-0": true}

	require.NoError(t, g.RemoveItem(0, 0, 0))

	assert.Equal(t, []string{"stove", "map"}, g.Categories[0].Skills[0].Items)
	assert.Equal(t, map[string]bool{"0-0-1": true, "0-1-0": true}, g.Checked)
}

func TestSetItem(t *testing.T) {
	g := twoCategoryGuide()
	require.NoError(t, g.SetItem(1, 0, 0, "granola"))
	assert.Equal(t, "granola", g.Categories[1].Skills[0].Items[0])
	assert.ErrorIs(t, g.SetItem(1, 0, 1, "x"), ErrNotFound)
}

func TestRemoveCategory(t *testing.T) {
	g := twoCategoryGuide()
	g.Checked = map[string]bool{"0-0-0": true, "1-0-0": true}

	require.NoError(t, g.RemoveCategory(0))

	require.Len(t, g.Categories, 1)
	assert.Equal(t, "Food", g.Categories[0].Name)
	assert.Equal(t, map[string]bool{"0-0-0": true}, g.Checked)
	assert.ErrorIs(t, g.RemoveCategory(3), ErrNotFound)
}

func TestMoveCategory(t *testing.T) {
	g := twoCategoryGuide()
	g.Checked = map[string]bool{"0-1-1": true, "1-0-0": true}

	require.NoError(t, g.MoveCategory(1, 0))

	assert.Equal(t, "Food", g.Categories[0].Name)
	assert.Equal(t, map[string]bool{"1-1-1": true, "0-0-0": true}, g.Checked)
}

func TestRemoveSkill(t *testing.T) {
	g := twoCategoryGuide()
	g.Checked = map[string]bool{"0-0-1": true, "0-1-0": true, "1-0-0": true}

	require.NoError(t, g.RemoveSkill(0, 0))

	assert.Equal(t, "Clothes", g.Categories[0].Skills[0].Title)
	assert.Equal(t, map[string]bool{"0-0-0": true, "1-0-0": true}, g.Checked)
}

func TestMoveSkill_WithinCategory(t *testing.T) {
	g := twoCategoryGuide()
	g.Checked = map[string]bool{"0-0-2": true, "0-1-1": true}

	require.NoError(t, g.MoveSkill(0, 1, 0, 0))

	assert.Equal(t, "Clothes", g.Categories[0].Skills[0].Title)
	assert.Equal(t, map[string]bool{"0-1-2": true, "0-0-1": true}, g.Checked)
}

func TestMoveSkill_AcrossCategories(t *testing.T) {
	g := twoCategoryGuide()
	g.Checked = map[string]bool{"0-0-1": true, "0-1-0": true, "1-0-0": true}

	// Move "Pack" to the front of "Food".
	require.NoError(t, g.MoveSkill(0, 0, 1, 0))

	require.Len(t, g.Categories[0].Skills, 1)
	require.Len(t, g.Categories[1].Skills, 2)
	assert.Equal(t, "Clothes", g.Categories[0].Skills[0].Title)
	assert.Equal(t, "Pack", g.Categories[1].Skills[0].Title)
	assert.Equal(t, "Breakfast", g.Categories[1].Skills[1].Title)
	assert.Equal(t, map[string]bool{"1-0-1": true, "0-0-0": true, "1-1-0": true}, g.Checked)

	assert.ErrorIs(t, g.MoveSkill(0, 0, 1, 5), ErrInvalidInput)
	assert.ErrorIs(t, g.MoveSkill(0, 4, 1, 0), ErrNotFound)
}

func TestAddSkillAndItem(t *testing.T) {
	g := twoCategoryGuide()

	si, err := g.AddSkill(1, Skill{Title: "Dinner"})
	require.NoError(t, err)
	assert.Equal(t, 1, si)
	assert.Equal(t, BulletCheckbox, g.Categories[1].Skills[si].Bullet)
	assert.NotNil(t, g.Categories[1].Skills[si].Items)

	ii, err := g.AddItem(1, si, "pasta")
	require.NoError(t, err)
	assert.Equal(t, 0, ii)

	ci := g.AddCategory(Category{Name: "Safety"})
	assert.Equal(t, 2, ci)
	assert.NotNil(t, g.Categories[ci].Skills)
}

func TestProgress(t *testing.T) {
	g := twoCategoryGuide()
	g.Categories[0].Skills[1].Bullet = BulletNumber
	g.Checked = map[string]bool{"0-0-0": true, "0-0-1": true, "0-1-0": true, "1-0-0": true}

	assert.Equal(t, Progress{Done: 2, Total: 3}, g.SkillProgress(0, 0))
	assert.Equal(t, Progress{}, g.SkillProgress(0, 1), "numbered lists are not checkable")
	assert.Equal(t, Progress{Done: 2, Total: 3}, g.CategoryProgress(0))
	assert.True(t, g.CategoryProgress(1).Complete())
	assert.Equal(t, Progress{Done: 3, Total: 4}, g.Progress())
	assert.Equal(t, 75, g.Progress().Percent())
	assert.Equal(t, 0, Progress{}.Percent())
}

func TestNewGuide_Templates(t *testing.T) {
	c := NewGuide("g1", "user:1", "Trip", KindChecklist)
	require.NoError(t, c.Validate())
	require.Len(t, c.Categories, 1)
	assert.NotEmpty(t, c.Categories[0].Skills[0].Items)

	j := NewGuide("g2", "user:1", "Diary", KindJournal)
	require.NoError(t, j.Validate())
	assert.Empty(t, j.Categories)
	assert.Equal(t, KindJournal, j.Kind)
}

func TestGuideValidate(t *testing.T) {
	g := NewGuide("g1", "user:1", "Trip", KindChecklist)
	g.ThemeColor = "blue"
	assert.ErrorIs(t, g.Validate(), ErrInvalidInput)

	g = NewGuide("g1", "user:1", "", KindChecklist)
	assert.ErrorIs(t, g.Validate(), ErrInvalidInput)
}

func TestClone_IsDeep(t *testing.T) {
	g := twoCategoryGuide()
	c, err := g.Clone()
	require.NoError(t, err)

	c.Categories[0].Skills[0].Items[0] = "changed"
	c.Checked["0-0-0"] = true

	assert.Equal(t, "tent", g.Categories[0].Skills[0].Items[0])
	assert.Empty(t, g.Checked)
}
