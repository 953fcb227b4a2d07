// Package stores holds the client-side caches of server-owned collections,
// with selection state layered on top. Every store shares the same contract:
// refresh replaces the collection and defaults the selection, deleting the
// selected item re-selects the new first item, and an unreachable endpoint
// degrades to a hardcoded demo dataset instead of a blank result.
package stores

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrNotFound is returned when an id is not in the collection.
var ErrNotFound = errors.New("item not found")

// Identifiable exposes the id selection tracks.
type Identifiable interface {
	StoreID() string
}

// Collection is the shared collection-plus-selection state. All methods are
// safe for concurrent use; each store owns exactly one Collection.
type Collection[T Identifiable] struct {
	mu       sync.Mutex
	items    []T
	selected string
	degraded bool
}

// Replace swaps in a freshly fetched collection. An existing selection is
// kept when the item survived the refresh; otherwise selection defaults to
// the first item (or none when empty).
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.degraded = false

	if c.selected != "" {
		if _, ok := lo.Find(items, func(it T) bool { return it.StoreID() == c.selected }); ok {
			return
		}
	}
	c.selectFirstLocked()
}

// ReplaceDegraded swaps in fallback data and marks the collection degraded.
func (c *Collection[T]) ReplaceDegraded(items []T) {
	c.Replace(items)
	c.mu.Lock()
	c.degraded = true
	c.mu.Unlock()
}

// Items returns a copy of the current collection.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the collection size.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Degraded reports whether the collection currently holds fallback data.
func (c *Collection[T]) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

// Selected returns the selected item, ok=false when nothing is selected.
func (c *Collection[T]) Selected() (item T, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == "" {
		return item, false
	}
	return lo.Find(c.items, func(it T) bool { return it.StoreID() == c.selected })
}

// SelectedID returns the selected id, "" when none.
func (c *Collection[T]) SelectedID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Select points the selection at the given id.
func (c *Collection[T]) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := lo.Find(c.items, func(it T) bool { return it.StoreID() == id }); !ok {
		return errors.Wrapf(ErrNotFound, "select %q", id)
	}
	c.selected = id
	return nil
}

// Remove drops the item with the given id. Removing the selected item moves
// the selection to the new first item, or clears it when the collection is
// now empty. Removing any other item leaves the selection alone.
func (c *Collection[T]) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := lo.IndexOf(lo.Map(c.items, func(it T, _ int) string { return it.StoreID() }), id)
	if idx < 0 {
		return errors.Wrapf(ErrNotFound, "remove %q", id)
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)

	if c.selected == id {
		c.selectFirstLocked()
	}
	return nil
}

// AddIfNotExists appends the item unless its id is already present. Returns
// whether the item was added. A first item becomes the selection when nothing
// was selected.
func (c *Collection[T]) AddIfNotExists(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := lo.Find(c.items, func(it T) bool { return it.StoreID() == item.StoreID() }); ok {
		return false
	}
	c.items = append(c.items, item)
	if c.selected == "" {
		c.selected = item.StoreID()
	}
	return true
}

// callers hold c.mu
func (c *Collection[T]) selectFirstLocked() {
	if len(c.items) == 0 {
		c.selected = ""
		return
	}
	c.selected = c.items[0].StoreID()
}
