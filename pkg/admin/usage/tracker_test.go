package usage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"school-chatbot-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTracker(t *testing.T, limits map[string]Limit) (*Tracker, *clock, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usage_tracker.json")
	c := &clock{t: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	tr := NewTracker(path, limits, logger.NewNopLogger())
	tr.now = c.now
	return tr, c, path
}

func TestDailyLimit(t *testing.T) {
	tr, _, _ := newTracker(t, map[string]Limit{"braveSearch": {Daily: 2, Monthly: 100}})

	for i := 0; i < 2; i++ {
		ok, err := tr.Allow("braveSearch")
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, tr.Increment("braveSearch"))
	}

	ok, err := tr.Allow("braveSearch")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDailyResetKeepsMonthlyCount(t *testing.T) {
	tr, c, _ := newTracker(t, map[string]Limit{"braveSearch": {Daily: 1, Monthly: 3}})

	require.NoError(t, tr.Increment("braveSearch"))
	ok, _ := tr.Allow("braveSearch")
	assert.False(t, ok)

	c.t = c.t.Add(24 * time.Hour)
	ok, err := tr.Allow("braveSearch")
	require.NoError(t, err)
	assert.True(t, ok)

	snap, err := tr.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, Counter{DailyCount: 0, MonthlyCount: 1, LastReset: "2026-03-15"}, snap["braveSearch"])
}

func TestMonthlyLimitAndReset(t *testing.T) {
	tr, c, _ := newTracker(t, map[string]Limit{"bingSearch": {Monthly: 2}})

	for i := 0; i < 2; i++ {
		require.NoError(t, tr.Increment("bingSearch"))
		c.t = c.t.Add(24 * time.Hour)
	}
	ok, _ := tr.Allow("bingSearch")
	assert.False(t, ok)

	c.t = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	ok, _ = tr.Allow("bingSearch")
	assert.True(t, ok)
}

func TestResetIsIdempotentWithinDay(t *testing.T) {
	tr, _, path := newTracker(t, map[string]Limit{"braveSearch": {Daily: 5}})

	require.NoError(t, tr.Increment("braveSearch"))
	require.NoError(t, tr.Increment("braveSearch"))
	for i := 0; i < 3; i++ {
		_, err := tr.Allow("braveSearch")
		require.NoError(t, err)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var stored map[string]Counter
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, 2, stored["braveSearch"].DailyCount)
	assert.Equal(t, 2, stored["braveSearch"].MonthlyCount)
	assert.Equal(t, "2026-03-14", stored["braveSearch"].LastReset)
}

func TestCorruptFileStartsFromZero(t *testing.T) {
	tr, _, path := newTracker(t, map[string]Limit{"braveSearch": {Daily: 1}})
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	ok, err := tr.Allow("braveSearch")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSnapshotListsConfiguredProviders(t *testing.T) {
	tr, _, _ := newTracker(t, map[string]Limit{"braveSearch": {}, "bingSearch": {}})

	snap, err := tr.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap, 2)
	assert.Equal(t, 0, snap["bingSearch"].DailyCount)
	assert.Equal(t, map[string]Limit{"braveSearch": {}, "bingSearch": {}}, tr.Limits())
}
