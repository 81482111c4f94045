package theme

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ MemoryStore }

func (s *failingStore) Save(context.Context, Theme) error { return errors.New("disk full") }

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Theme
		ok   bool
	}{
		{"light", Light, true},
		{"DARK", Dark, true},
		{" dark ", Dark, true},
		{"sepia", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}

func TestNewFlagDefaultsToLight(t *testing.T) {
	f, err := NewFlag(context.Background(), NewMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, Light, f.Current())
}

func TestToggleTwiceRestores(t *testing.T) {
	ctx := context.Background()
	f, err := NewFlag(ctx, nil)
	require.NoError(t, err)

	first, err := f.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, Dark, first)

	second, err := f.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, Light, second)
	assert.Equal(t, Light, f.Current())
}

func TestSetNormalizesInput(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	f, err := NewFlag(ctx, store)
	require.NoError(t, err)

	require.NoError(t, f.Set(ctx, Theme(" DARK ")))
	assert.Equal(t, Dark, f.Current())
	assert.True(t, f.Current().IsDark())

	stored, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Dark, stored)

	next, err := f.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, Light, next)

	assert.Error(t, f.Set(ctx, Theme("Sepia")))
	assert.Equal(t, Light, f.Current())
}

func TestPreferenceSurvivesNewFlag(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	f, err := NewFlag(ctx, store)
	require.NoError(t, err)
	_, err = f.Toggle(ctx)
	require.NoError(t, err)

	restarted, err := NewFlag(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, Dark, restarted.Current())
}

func TestCorruptStoredValueFallsBack(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Theme("neon")))

	f, err := NewFlag(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, Light, f.Current())
}

func TestFailedSaveKeepsCurrent(t *testing.T) {
	ctx := context.Background()
	f, err := NewFlag(ctx, &failingStore{})
	require.NoError(t, err)

	_, err = f.Toggle(ctx)
	assert.Error(t, err)
	assert.Equal(t, Light, f.Current())

	assert.Error(t, f.Set(ctx, Dark))
	assert.Equal(t, Light, f.Current())
	assert.Error(t, f.Set(ctx, Theme("sepia")))
}
