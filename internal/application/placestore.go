package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/impossibleiman/couplemap/internal/domain/model"
	"github.com/impossibleiman/couplemap/internal/domain/port/driven"
)

// PlaceStore owns the visited and wishlist sequences. Insertion order is the
// canonical, persisted order. Every mutation holds the lock across index
// resolution, the change itself and the persistence flush, so an index taken
// from a rendered list cannot be applied to a different list shape midway.
type PlaceStore struct {
	mu     sync.Mutex
	kv     driven.KeyValueStore
	lists  map[model.Category][]model.Place
	logger *slog.Logger
}

// NewPlaceStore creates an empty store backed by kv. Call Restore before use.
func NewPlaceStore(kv driven.KeyValueStore, logger *slog.Logger) *PlaceStore {
	return &PlaceStore{
		kv: kv,
		lists: map[model.Category][]model.Place{
			model.CategoryVisited:  {},
			model.CategoryWishlist: {},
		},
		logger: logger,
	}
}

// Restore loads both sequences from the backend. A category with no stored
// value starts from its example records; a value that fails to parse is
// replaced by the examples as well and a warning is logged. Only backend
// errors are returned.
func (s *PlaceStore) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range model.Categories {
		raw, err := s.kv.Get(ctx, storageKey(c))
		if err != nil {
			return fmt.Errorf("restore %s places: %w", c, err)
		}

		if raw == "" {
			s.lists[c] = seedPlaces(c)
			s.logger.Info("seeded example places", "category", c, "count", len(s.lists[c]))
			continue
		}

		places, err := decodePlaces(raw)
		if err != nil {
			s.lists[c] = seedPlaces(c)
			s.logger.Warn("stored places unreadable, using examples", "category", c, "error", err)
			continue
		}
		s.lists[c] = places
	}
	return nil
}

// Persist writes both sequences to the backend.
func (s *PlaceStore) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// List returns a copy of the category's canonical sequence.
func (s *PlaceStore) List(c model.Category) ([]model.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[c]
	if !ok {
		return nil, ErrUnknownCategory
	}
	return slices.Clone(list), nil
}

// Snapshot returns copies of both sequences taken under a single lock.
func (s *PlaceStore) Snapshot() map[model.Category][]model.Place {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[model.Category][]model.Place, len(s.lists))
	for c, list := range s.lists {
		out[c] = slices.Clone(list)
	}
	return out
}

// Get returns the place at index in the category's canonical sequence.
func (s *PlaceStore) Get(c model.Category, index int) (model.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(c, index, "")
}

// Add appends a place to the category and persists.
func (s *PlaceStore) Add(ctx context.Context, c model.Category, p model.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[c]
	if !ok {
		return ErrUnknownCategory
	}

	return s.mutateLocked(ctx, func() {
		s.lists[c] = append(slices.Clone(list), p)
	})
}

// Update replaces the place at index in from. When to differs from from, the
// place is removed from from and appended to the end of to instead, losing its
// prior position. A non-empty guardID must match the ID of the place currently
// at index.
func (s *PlaceStore) Update(ctx context.Context, from model.Category, index int, guardID string, to model.Category, p model.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[to]; !ok {
		return ErrUnknownCategory
	}
	if _, err := s.getLocked(from, index, guardID); err != nil {
		return err
	}

	src := s.lists[from]
	return s.mutateLocked(ctx, func() {
		if from == to {
			next := slices.Clone(src)
			next[index] = p
			s.lists[from] = next
			return
		}
		s.lists[from] = slices.Delete(slices.Clone(src), index, index+1)
		s.lists[to] = append(slices.Clone(s.lists[to]), p)
	})
}

// Remove deletes the place at index from the category and persists. The other
// category is untouched. A non-empty guardID must match the ID of the place
// currently at index.
func (s *PlaceStore) Remove(ctx context.Context, c model.Category, index int, guardID string) (model.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.getLocked(c, index, guardID)
	if err != nil {
		return model.Place{}, err
	}

	src := s.lists[c]
	err = s.mutateLocked(ctx, func() {
		s.lists[c] = slices.Delete(slices.Clone(src), index, index+1)
	})
	if err != nil {
		return model.Place{}, err
	}
	return removed, nil
}

func (s *PlaceStore) getLocked(c model.Category, index int, guardID string) (model.Place, error) {
	list, ok := s.lists[c]
	if !ok {
		return model.Place{}, ErrUnknownCategory
	}
	if index < 0 || index >= len(list) {
		return model.Place{}, fmt.Errorf("%s place %d: %w", c, index, ErrPlaceNotFound)
	}
	if guardID != "" && list[index].ID != guardID {
		return model.Place{}, fmt.Errorf("%s place %d: %w", c, index, ErrStalePlace)
	}
	return list[index], nil
}

// mutateLocked applies change and flushes both lists. When the flush fails the
// previous lists are restored so memory never diverges from the backend.
// change must replace slices rather than write into the existing ones.
func (s *PlaceStore) mutateLocked(ctx context.Context, change func()) error {
	prev := make(map[model.Category][]model.Place, len(s.lists))
	for c, list := range s.lists {
		prev[c] = list
	}

	change()

	if err := s.persistLocked(ctx); err != nil {
		s.lists = prev
		return err
	}
	return nil
}

func (s *PlaceStore) persistLocked(ctx context.Context) error {
	for _, c := range model.Categories {
		raw, err := encodePlaces(s.lists[c])
		if err != nil {
			return fmt.Errorf("persist %s places: %w", c, err)
		}
		if err := s.kv.Set(ctx, storageKey(c), raw); err != nil {
			return fmt.Errorf("persist %s places: %w", c, err)
		}
	}
	return nil
}
