// Package state holds the signed-in identity's data on the client: one
// ordered list per entry kind and the partner link. Every holder is reset
// when the identity changes and ignores responses that belong to an
// earlier identity.
package state

import (
	"context"
	"sync"

	"github.com/atinyakov/TwoHearts/internal/common"
	"github.com/atinyakov/TwoHearts/internal/models"
	"go.uber.org/zap"
)

// Entry is a record kept in an EntryList.
type Entry interface {
	EntryID() string
}

// Order is the position new rows take in a list.
type Order int

const (
	// NewestFirst lists are reverse-chronological; new rows go to the front.
	NewestFirst Order = iota
	// OldestFirst lists are chronological; new rows go to the back.
	OldestFirst
)

// EntryList is an ordered, owner-scoped list of entries. Network calls are
// made outside the lock; a result is applied only if no identity change
// happened while it was in flight.
type EntryList[T Entry] struct {
	name  string
	order Order
	log   *zap.Logger

	mu    sync.Mutex
	gen   uint64
	owner string
	items []T
}

// NewEntryList returns an empty list. name is used in log lines.
func NewEntryList[T Entry](name string, order Order, log *zap.Logger) *EntryList[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntryList[T]{name: name, order: order, log: log.With(zap.String("list", name))}
}

// Items returns a copy of the entries in display order.
func (l *EntryList[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of entries.
func (l *EntryList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Get returns the entry with id.
func (l *EntryList[T]) Get(id string) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(id); i >= 0 {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

// Owner returns the id of the identity the list belongs to, or "".
func (l *EntryList[T]) Owner() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}

// Load replaces the list with fetch's rows for identity. A nil identity
// clears the list. A switch to a different identity clears the list before
// fetching, so a failed load never shows another identity's rows. Fetch
// errors are logged and leave the list as it was.
func (l *EntryList[T]) Load(ctx context.Context, identity *models.Identity, fetch func(context.Context) ([]T, error)) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	if identity == nil {
		l.owner = ""
		l.items = nil
		l.mu.Unlock()
		return
	}
	if l.owner != identity.ID {
		l.owner = identity.ID
		l.items = nil
	}
	l.mu.Unlock()

	rows, err := fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		l.log.Debug("discarding stale load", zap.String("user_id", identity.ID))
		return
	}
	if err != nil {
		l.log.Error("load failed", zap.String("user_id", identity.ID), zap.Error(err))
		return
	}
	l.items = append([]T(nil), rows...)
}

// Create runs create and places the returned row according to the list
// order.
func (l *EntryList[T]) Create(ctx context.Context, create func(context.Context) (T, error)) (T, error) {
	gen, err := l.begin()
	if err != nil {
		var zero T
		return zero, err
	}

	row, err := create(ctx)
	if err != nil {
		l.log.Error("create failed", zap.Error(err))
		return row, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen == l.gen {
		if l.order == OldestFirst {
			l.items = append(l.items, row)
		} else {
			l.items = append([]T{row}, l.items...)
		}
	}
	return row, nil
}

// Update runs update and replaces the entry with id by the returned row.
func (l *EntryList[T]) Update(ctx context.Context, id string, update func(context.Context) (T, error)) (T, error) {
	gen, err := l.begin()
	if err != nil {
		var zero T
		return zero, err
	}

	row, err := update(ctx)
	if err != nil {
		l.log.Error("update failed", zap.String("id", id), zap.Error(err))
		return row, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen == l.gen {
		if i := l.index(row.EntryID()); i >= 0 {
			l.items[i] = row
		}
	}
	return row, nil
}

// Delete runs del and removes the entry with id.
func (l *EntryList[T]) Delete(ctx context.Context, id string, del func(context.Context) error) error {
	gen, err := l.begin()
	if err != nil {
		return err
	}

	if err := del(ctx); err != nil {
		l.log.Error("delete failed", zap.String("id", id), zap.Error(err))
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen == l.gen {
		if i := l.index(id); i >= 0 {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
		}
	}
	return nil
}

// begin returns the current generation, or ErrUnauthorized when nobody is
// signed in.
func (l *EntryList[T]) begin() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owner == "" {
		return 0, common.ErrUnauthorized
	}
	return l.gen, nil
}

func (l *EntryList[T]) index(id string) int {
	for i, it := range l.items {
		if it.EntryID() == id {
			return i
		}
	}
	return -1
}
