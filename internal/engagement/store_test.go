package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/storage"
	"github.com/hammamikhairi/recipebook/internal/timer"
)

var start = time.Date(2024, time.March, 10, 18, 30, 0, 0, time.Local)

type fixture struct {
	kv    *storage.MemoryKV
	clock *timer.ManualClock
	store *Store
}

func setup(t *testing.T) *fixture {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	kv := storage.NewMemoryKV(log)
	clock := timer.NewManualClock(start)
	return &fixture{
		kv:    kv,
		clock: clock,
		store: New(context.Background(), kv, timer.NewTable(clock), log),
	}
}

func (f *fixture) persisted(t *testing.T) map[string]domain.EngagementRecord {
	t.Helper()
	data, err := f.kv.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	var out map[string]domain.EngagementRecord
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestRatingBounds(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, bad := range []int{0, 6, -1} {
		assert.ErrorIs(t, f.store.SetRating(ctx, "tacos", bad), domain.ErrInvalidRating)
	}
	assert.Equal(t, 0, f.store.Get("tacos").Rating())

	require.NoError(t, f.store.SetRating(ctx, "tacos", 4))
	assert.Equal(t, 4, f.store.Get("tacos").Rating())
	assert.Equal(t, 4, *f.persisted(t)["tacos"].UserRating)

	f.store.ClearRating(ctx, "tacos")
	assert.Nil(t, f.store.Get("tacos").UserRating)
	assert.Nil(t, f.persisted(t)["tacos"].UserRating)
}

func TestClearRatingCreatesRecord(t *testing.T) {
	f := setup(t)
	f.store.ClearRating(context.Background(), "eplekake")

	assert.Contains(t, f.store.Snapshot(), "eplekake")
	rec, ok := f.persisted(t)["eplekake"]
	require.True(t, ok)
	assert.Nil(t, rec.UserRating)
	assert.Equal(t, []string{}, rec.MadeDates)
}

func TestMadeTodayToggles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res := f.store.ToggleMadeToday(ctx, "eplekake", start)
	assert.Equal(t, domain.MadeResult{MadeToday: true, MadeCount: 1}, res)

	// Same calendar day, later: toggles back off.
	res = f.store.ToggleMadeToday(ctx, "eplekake", start.Add(2*time.Hour))
	assert.Equal(t, domain.MadeResult{MadeToday: false, MadeCount: 0}, res)

	f.store.ToggleMadeToday(ctx, "eplekake", start)
	res = f.store.ToggleMadeToday(ctx, "eplekake", start.AddDate(0, 0, 1))
	assert.Equal(t, domain.MadeResult{MadeToday: true, MadeCount: 2}, res)
	assert.Equal(t, []string{"2024-03-10", "2024-03-11"}, f.persisted(t)["eplekake"].MadeDates)
}

func TestToggleTagStampsTime(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assert.True(t, f.store.ToggleTag(ctx, "tacos", start))
	rec := f.store.Get("tacos")
	require.NotNil(t, rec.TaggedAt)
	assert.True(t, rec.TaggedAt.Equal(start))

	assert.False(t, f.store.ToggleTag(ctx, "tacos", start))
	rec = f.store.Get("tacos")
	assert.False(t, rec.Tagged)
	assert.Nil(t, rec.TaggedAt)
}

func TestTrackViewIsDebounced(t *testing.T) {
	f := setup(t)

	var flushed []string
	f.store.OnViewFlushed(func(id string) { flushed = append(flushed, id) })

	f.store.TrackView("fiskesuppe")
	f.clock.Advance(5 * time.Second)
	f.store.TrackView("fiskesuppe")
	f.clock.Advance(9 * time.Second)

	assert.Empty(t, flushed)
	assert.False(t, f.store.Get("fiskesuppe").Viewed())

	f.clock.Advance(time.Second)
	assert.Equal(t, []string{"fiskesuppe"}, flushed)

	rec := f.store.Get("fiskesuppe")
	assert.Equal(t, 1, rec.ViewCount)
	require.NotNil(t, rec.LastViewed)
	assert.True(t, rec.LastViewed.Equal(start.Add(15*time.Second)))
}

func TestCancelViewDropsPending(t *testing.T) {
	f := setup(t)

	f.store.TrackView("tacos")
	assert.True(t, f.store.CancelView("tacos"))
	f.clock.Advance(time.Minute)

	assert.Equal(t, 0, f.store.Get("tacos").ViewCount)
}

func TestViewsOfDifferentRecipesDoNotInterfere(t *testing.T) {
	f := setup(t)

	f.store.TrackView("a")
	f.clock.Advance(3 * time.Second)
	f.store.TrackView("b")
	f.clock.Advance(7 * time.Second)

	assert.Equal(t, 1, f.store.Get("a").ViewCount)
	assert.Equal(t, 0, f.store.Get("b").ViewCount)

	f.clock.Advance(3 * time.Second)
	assert.Equal(t, 1, f.store.Get("b").ViewCount)
}

func TestReloadFromStorage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.store.SetRating(ctx, "tacos", 5))
	f.store.ToggleTag(ctx, "tacos", start)

	reopened := New(ctx, f.kv, timer.NewTable(f.clock), logger.Nop())
	rec := reopened.Get("tacos")
	assert.Equal(t, 5, rec.Rating())
	assert.True(t, rec.Tagged)
	assert.NotNil(t, rec.MadeDates)
}

func TestCorruptDataStartsEmpty(t *testing.T) {
	log := logger.Nop()
	kv := storage.NewMemoryKV(log)
	require.NoError(t, kv.Set(context.Background(), StorageKey, []byte("{oops")))

	s := New(context.Background(), kv, timer.NewTable(timer.NewManualClock(start)), log)
	assert.Empty(t, s.Snapshot())
}

func TestGetReturnsCopy(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.store.ToggleMadeToday(ctx, "tacos", start)

	rec := f.store.Get("tacos")
	rec.MadeDates[0] = "1999-01-01"

	assert.Equal(t, "2024-03-10", f.store.Get("tacos").MadeDates[0])
}
