package annotations

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/felixgeelhaar/keepup/pkg/observability"
)

// CategoryStore maps task ids to categories.
type CategoryStore struct {
	mu   sync.Mutex
	blob blob
}

// NewCategoryStore creates a new CategoryStore.
func NewCategoryStore(backend Backend, logger *slog.Logger, metrics observability.Metrics) *CategoryStore {
	return &CategoryStore{blob: newBlob(backend, NamespaceCategories, logger, metrics)}
}

// All returns every valid tag keyed by task id.
func (s *CategoryStore) All(ctx context.Context) map[string]domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns the tag of a task.
func (s *CategoryStore) Get(ctx context.Context, id domain.TaskID) (domain.Category, bool) {
	c, ok := s.All(ctx)[id.String()]
	return c, ok
}

// Set tags a task.
func (s *CategoryStore) Set(ctx context.Context, id domain.TaskID, category domain.Category) error {
	if !category.IsValid() {
		return domain.ErrInvalidCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tags := s.load(ctx)
	tags[id.String()] = category
	return s.save(ctx, tags)
}

// Remove clears the tag of a task. Removing a missing tag is a no-op.
func (s *CategoryStore) Remove(ctx context.Context, id domain.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := s.load(ctx)
	if _, ok := tags[id.String()]; !ok {
		return nil
	}
	delete(tags, id.String())
	return s.save(ctx, tags)
}

func (s *CategoryStore) load(ctx context.Context) map[string]domain.Category {
	tags := make(map[string]domain.Category)
	raw := s.blob.read(ctx)
	if len(raw) == 0 {
		return tags
	}

	var entries map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.blob.corrupt(ctx, "malformed", err)
		return tags
	}
	for key, v := range entries {
		str, ok := v.(string)
		if !ok {
			s.blob.skip(ctx, key, fmt.Errorf("category is %T", v))
			continue
		}
		c := domain.Category(str)
		if !c.IsValid() {
			s.blob.skip(ctx, key, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, str))
			continue
		}
		tags[key] = c
	}
	return tags
}

func (s *CategoryStore) save(ctx context.Context, tags map[string]domain.Category) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	return s.blob.write(ctx, data)
}
