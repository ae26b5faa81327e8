package guides

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/gesture"
	"github.com/nfrund/notebook/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alice = "user:alice"

func newTestService(t *testing.T, repo domain.GuideRepository) *Service {
	t.Helper()
	clock := time.UnixMilli(1_700_000_000_000)
	ids := domain.NewIDGeneratorWithClock(func() time.Time { return clock })
	return NewService(repo, retry.Policy{MaxRetries: 2, BaseDelay: time.Millisecond}, WithIDGenerator(ids))
}

func createChecklist(t *testing.T, s *Service) *domain.Guide {
	t.Helper()
	g, err := s.Create(context.Background(), alice, CreateInput{Title: "Trip"})
	require.NoError(t, err)
	return g
}

func TestService_RequiresUser(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	ctx := context.Background()

	_, err := s.List(ctx, "")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	_, err = s.Create(ctx, " ", CreateInput{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	_, err = s.ToggleItem(ctx, "", "g1", 0, 0, 0)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestService_CreateAndGet(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	ctx := context.Background()

	g := createChecklist(t, s)
	assert.Equal(t, "g1700000000000", g.ID)
	assert.Equal(t, alice, g.Owner)
	require.Len(t, g.Categories, 1)
	assert.Equal(t, "General", g.Categories[0].Name)
	assert.Equal(t, "Getting started", g.Categories[0].Skills[0].Title)

	j, err := s.Create(ctx, alice, CreateInput{Title: "Diary", Kind: domain.KindJournal})
	require.NoError(t, err)
	assert.Empty(t, j.Categories)

	got, err := s.Get(ctx, alice, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", got.Title)

	_, err = s.Get(ctx, "user:bob", g.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := s.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestService_CreateRejectsEmptyTitle(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	_, err := s.Create(context.Background(), alice, CreateInput{Title: "<br>"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_UpdateMeta(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	ctx := context.Background()
	g := createChecklist(t, s)

	title := "<b>Summer</b> trip"
	layout := domain.LayoutList
	updated, err := s.UpdateMeta(ctx, alice, g.ID, MetaPatch{Title: &title, Layout: &layout})
	require.NoError(t, err)
	assert.Equal(t, "Summer trip", updated.Title)
	assert.Equal(t, domain.LayoutList, updated.Layout)

	bad := "blue"
	_, err = s.UpdateMeta(ctx, alice, g.ID, MetaPatch{ThemeColor: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stored, err := s.Get(ctx, alice, g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultThemeColor, stored.ThemeColor)
}

func TestService_ChecksFollowItems(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	ctx := context.Background()
	g := createChecklist(t, s)

	g, err := s.ToggleItem(ctx, alice, g.ID, 0, 0, 2)
	require.NoError(t, err)
	assert.True(t, g.IsChecked(0, 0, 2))

	g, err = s.DeleteItem(ctx, alice, g.ID, 0, 0, 0)
	require.NoError(t, err)
	assert.True(t, g.IsChecked(0, 0, 1))
	assert.Len(t, g.Checked, 1)

	g, err = s.MoveItem(ctx, alice, g.ID, 0, 0, 1, 0)
	require.NoError(t, err)
	assert.True(t, g.IsChecked(0, 0, 0))

	g, err = s.ResetChecks(ctx, alice, g.ID)
	require.NoError(t, err)
	assert.Empty(t, g.Checked)

	_, err = s.ToggleItem(ctx, alice, g.ID, 0, 0, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Structure(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	ctx := context.Background()
	g := createChecklist(t, s)

	name := "Food"
	g, err := s.AddCategory(ctx, alice, g.ID, CategoryInput{Name: &name})
	require.NoError(t, err)
	require.Len(t, g.Categories, 2)

	title := "Snacks"
	g, err = s.AddSkill(ctx, alice, g.ID, 1, SkillInput{Title: &title, Items: []string{"nuts", " ", "<i>fruit</i>"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"nuts", "fruit"}, g.Categories[1].Skills[0].Items)
	assert.Equal(t, domain.BulletCheckbox, g.Categories[1].Skills[0].Bullet)

	g, err = s.AddItem(ctx, alice, g.ID, 1, 0, "water")
	require.NoError(t, err)
	g, err = s.UpdateItem(ctx, alice, g.ID, 1, 0, 0, "almonds")
	require.NoError(t, err)
	assert.Equal(t, []string{"almonds", "fruit", "water"}, g.Categories[1].Skills[0].Items)

	g, err = s.ToggleItem(ctx, alice, g.ID, 1, 0, 2)
	require.NoError(t, err)
	g, err = s.MoveSkill(ctx, alice, g.ID, 1, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Snacks", g.Categories[0].Skills[0].Title)
	assert.Empty(t, g.Categories[1].Skills)
	assert.True(t, g.IsChecked(0, 0, 2))

	g, err = s.MoveCategory(ctx, alice, g.ID, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Food", g.Categories[0].Name)
	assert.True(t, g.IsChecked(1, 0, 2))

	bullet := domain.BulletNumber
	collapsed := true
	g, err = s.UpdateSkill(ctx, alice, g.ID, 1, 0, SkillInput{Bullet: &bullet, Collapsed: &collapsed, Items: []string{"ignored"}})
	require.NoError(t, err)
	assert.Equal(t, domain.BulletNumber, g.Categories[1].Skills[0].Bullet)
	assert.True(t, g.Categories[1].Skills[0].Collapsed)
	assert.Len(t, g.Categories[1].Skills[0].Items, 3)

	g, err = s.DeleteSkill(ctx, alice, g.ID, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, g.Checked)

	g, err = s.DeleteCategory(ctx, alice, g.ID, 0)
	require.NoError(t, err)
	assert.Len(t, g.Categories, 1)

	_, err = s.MoveCategory(ctx, alice, g.ID, 0, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_Duplicate(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	ctx := context.Background()
	g := createChecklist(t, s)
	_, err := s.ToggleItem(ctx, alice, g.ID, 0, 0, 0)
	require.NoError(t, err)

	cp, err := s.Duplicate(ctx, alice, g.ID)
	require.NoError(t, err)
	assert.NotEqual(t, g.ID, cp.ID)
	assert.Equal(t, "Trip (copy)", cp.Title)
	assert.Empty(t, cp.Checked)
	assert.Equal(t, g.Categories, cp.Categories)

	require.NoError(t, s.Delete(ctx, alice, g.ID))
	_, err = s.Get(ctx, alice, g.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_ApplyItemGesture(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	ctx := context.Background()
	g := createChecklist(t, s)

	g, action, err := s.ApplyItemGesture(ctx, alice, g.ID, 0, 0, 1, gesture.Swipe{DX: 120, DY: 4, Duration: 200 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, gesture.ItemToggle, action)
	assert.True(t, g.IsChecked(0, 0, 1))

	g, action, err = s.ApplyItemGesture(ctx, alice, g.ID, 0, 0, 0, gesture.Swipe{DX: -120, DY: -4, Duration: 200 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, gesture.ItemDelete, action)
	assert.Len(t, g.Categories[0].Skills[0].Items, 2)
	assert.True(t, g.IsChecked(0, 0, 0))

	g, action, err = s.ApplyItemGesture(ctx, alice, g.ID, 0, 0, 0, gesture.Swipe{DX: 10, Duration: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, gesture.ItemNoop, action)
	assert.Len(t, g.Categories[0].Skills[0].Items, 2)

	for _, sw := range []gesture.Swipe{{DX: 1}, {DX: 100}} {
		_, _, err = s.ApplyItemGesture(ctx, alice, g.ID, 0, 0, 99, sw)
		assert.ErrorIs(t, err, domain.ErrNotFound, "a missing item is not found whatever the swipe")
	}
}

func TestService_ItemTextMustSurviveCleaning(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	ctx := context.Background()
	g := createChecklist(t, s)
	before := append([]string(nil), g.Categories[0].Skills[0].Items...)

	for _, text := range []string{"   ", "<br>", "<div><br></div>"} {
		_, err := s.AddItem(ctx, alice, g.ID, 0, 0, text)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, text)
		_, err = s.UpdateItem(ctx, alice, g.ID, 0, 0, 0, text)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, text)
	}

	stored, err := s.Get(ctx, alice, g.ID)
	require.NoError(t, err)
	assert.Equal(t, before, stored.Categories[0].Skills[0].Items)

	g, err = s.UpdateItem(ctx, alice, g.ID, 0, 0, 0, "  Pack   tent ")
	require.NoError(t, err)
	assert.Equal(t, "Pack tent", g.Categories[0].Skills[0].Items[0])
}

func TestService_Progress(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	ctx := context.Background()
	g := createChecklist(t, s)
	_, err := s.ToggleItem(ctx, alice, g.ID, 0, 0, 0)
	require.NoError(t, err)

	p, err := s.Progress(ctx, alice, g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Progress{Done: 1, Total: 3}, p.Guide)
	require.Len(t, p.Categories, 1)
	assert.Equal(t, domain.Progress{Done: 1, Total: 3}, p.Categories[0].Skills[0])
	assert.Equal(t, 33, p.Guide.Percent())
}

func TestService_Journal(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	ctx := context.Background()

	checklist := createChecklist(t, s)
	_, _, err := s.AddEntry(ctx, alice, checklist.ID, EntryInput{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	j, err := s.Create(ctx, alice, CreateInput{Title: "Diary", Kind: domain.KindJournal})
	require.NoError(t, err)

	_, first, err := s.AddEntry(ctx, alice, j.ID, EntryInput{Title: "Beach", Date: "2024-05-01", TagsText: "Trip, trip, #food"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Trip", "food"}, first.Tags)

	_, second, err := s.AddEntry(ctx, alice, j.ID, EntryInput{Title: "Hike", Date: "2024-06-01", Mood: domain.MoodGood})
	require.NoError(t, err)

	all, err := s.Entries(ctx, alice, j.ID, domain.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	tagged, err := s.Entries(ctx, alice, j.ID, domain.EntryFilter{Tag: "TRIP"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, first.ID, tagged[0].ID)

	j, err = s.UpdateEntry(ctx, alice, j.ID, first.ID, EntryInput{Title: "Beach day", Mood: domain.MoodGreat})
	require.NoError(t, err)
	i, err := j.Entry(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", j.Entries[i].Date)
	assert.Equal(t, "Beach day", j.Entries[i].Title)

	_, err = s.UpdateEntry(ctx, alice, j.ID, first.ID, EntryInput{Date: "05/01/2024"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	j, err = s.DeleteEntry(ctx, alice, j.ID, second.ID)
	require.NoError(t, err)
	assert.Len(t, j.Entries, 1)
}

func TestService_Paths(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	ctx := context.Background()
	g := createChecklist(t, s)
	base := "users/alice/guides/" + g.ID

	v, err := s.GetPath(ctx, alice, base+"/title")
	require.NoError(t, err)
	assert.Equal(t, "Trip", v)

	v, err = s.GetPath(ctx, alice, base+"/checked/0-0-0")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = s.SetPath(ctx, alice, base+"/checked/0-0-0", true)
	require.NoError(t, err)
	_, err = s.SetPath(ctx, alice, base+"/categories/0/skills/0/items/3", "compass")
	require.NoError(t, err)

	stored, err := s.Get(ctx, alice, g.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsChecked(0, 0, 0))
	assert.Len(t, stored.Categories[0].Skills[0].Items, 4)

	require.NoError(t, s.DeletePath(ctx, alice, base+"/categories/0/skills/0/items/0"))
	stored, err = s.Get(ctx, alice, g.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Checked)

	all, err := s.GetPath(ctx, alice, "users/alice/guides")
	require.NoError(t, err)
	assert.Contains(t, all, g.ID)

	_, err = s.GetPath(ctx, alice, "users/bob/guides")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	_, err = s.SetPath(ctx, alice, "users/alice/guides", map[string]any{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_SetPathCreatesGuide(t *testing.T) {
	s := newTestService(t, NewMemoryRepository())
	ctx := context.Background()

	g, err := s.SetPath(ctx, alice, "users/alice/guides/gimported", map[string]any{
		"title":      "Imported",
		"categories": []any{map[string]any{"name": "A"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "gimported", g.ID)
	assert.Equal(t, alice, g.Owner)
	assert.Equal(t, domain.LayoutGrid, g.Layout)

	require.NoError(t, s.DeletePath(ctx, alice, "users/alice/guides/gimported"))
	_, err = s.Get(ctx, alice, "gimported")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type flakyRepo struct {
	*MemoryRepository
	failures int
	err      error
	saves    int
}

func (r *flakyRepo) Save(ctx context.Context, g *domain.Guide) (*domain.Guide, error) {
	r.saves++
	if r.failures > 0 {
		r.failures--
		return nil, r.err
	}
	return r.MemoryRepository.Save(ctx, g)
}

func TestService_RetriesUnavailableStore(t *testing.T) {
	repo := &flakyRepo{MemoryRepository: NewMemoryRepository(), failures: 2, err: domain.ErrUnavailable}
	s := newTestService(t, repo)

	_, err := s.Create(context.Background(), alice, CreateInput{Title: "Trip"})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.saves)
}

func TestService_DoesNotRetryOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	repo := &flakyRepo{MemoryRepository: NewMemoryRepository(), failures: 5, err: boom}
	s := newTestService(t, repo)

	_, err := s.Create(context.Background(), alice, CreateInput{Title: "Trip"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, repo.saves)
}

func TestService_GivesUpAfterMaxRetries(t *testing.T) {
	repo := &flakyRepo{MemoryRepository: NewMemoryRepository(), failures: 10, err: domain.ErrUnavailable}
	s := newTestService(t, repo)

	_, err := s.Create(context.Background(), alice, CreateInput{Title: "Trip"})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Equal(t, 3, repo.saves)
}

func TestService_TabAfterSwipe(t *testing.T) {
	svc := newTestService(t, NewMemoryRepository())
	g := &domain.Guide{Categories: make([]domain.Category, 3)}

	assert.Equal(t, 1, svc.TabAfterSwipe(g, 0, gesture.Swipe{DX: -120}))
	assert.Equal(t, 0, svc.TabAfterSwipe(g, 1, gesture.Swipe{DX: 120}))
	assert.Equal(t, 2, svc.TabAfterSwipe(g, 2, gesture.Swipe{DX: -120}), "last tab does not wrap")
	assert.Equal(t, 1, svc.TabAfterSwipe(g, 1, gesture.Swipe{DY: 120}))
}
