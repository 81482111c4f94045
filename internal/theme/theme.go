// Package theme owns the light/dark display preference.
package theme

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Theme is the display mode of the dashboard.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default is used when nothing has been persisted yet.
const Default = Light

// Parse accepts "light" or "dark" in any case.
func Parse(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// IsDark reports whether t is the dark theme.
func (t Theme) IsDark() bool { return t == Dark }

func (t Theme) String() string { return string(t) }

// Store persists the preference. Load reports ok=false when nothing was saved.
type Store interface {
	Load(ctx context.Context) (Theme, bool, error)
	Save(ctx context.Context, t Theme) error
}

// MemoryStore keeps the preference for the lifetime of the process.
type MemoryStore struct {
	mu    sync.Mutex
	value Theme
	set   bool
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load(_ context.Context) (Theme, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.set, nil
}

func (s *MemoryStore) Save(_ context.Context, t Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value, s.set = t, true
	return nil
}

// Flag is the single owner of the current theme. Every change is written
// through to the store before it becomes visible.
type Flag struct {
	mu      sync.RWMutex
	current Theme
	store   Store
}

// NewFlag loads the persisted theme, defaulting to light. A stored value
// that no longer parses is treated as absent.
func NewFlag(ctx context.Context, store Store) (*Flag, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	t, ok, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}
	if !ok {
		t = Default
	}
	if parsed, perr := Parse(string(t)); perr == nil {
		t = parsed
	} else {
		t = Default
	}
	return &Flag{current: t, store: store}, nil
}

// Current returns the active theme.
func (f *Flag) Current() Theme {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// Set persists the normalized form of t and makes it current. On a store
// error the current value is left unchanged.
func (f *Flag) Set(ctx context.Context, t Theme) error {
	parsed, err := Parse(string(t))
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.store.Save(ctx, parsed); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	f.current = parsed
	return nil
}

// Toggle flips the theme and returns the new value.
func (f *Flag) Toggle(ctx context.Context) (Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := f.current.Toggle()
	if err := f.store.Save(ctx, next); err != nil {
		return f.current, fmt.Errorf("save theme: %w", err)
	}
	f.current = next
	return next, nil
}
