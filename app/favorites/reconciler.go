// Package favorites reconciles the session-held favorite set against the
// external favorites store under optimistic-update semantics.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/findash/articledesk/app/article"
	"github.com/findash/articledesk/app/session"
)

var (
	// ErrMissingID rejects favorite actions on articles without a resolved
	// persistence identifier. This is a capability restriction, not a
	// recoverable failure.
	ErrMissingID = errors.New("article has no persistence identifier")

	// ErrNotAuthenticated rejects favorite actions without a session token.
	ErrNotAuthenticated = errors.New("favorite operations require authentication")

	// ErrTogglePending rejects a toggle while a previous toggle on the same
	// id is still in flight. Concurrent toggles on one id are never
	// interleaved.
	ErrTogglePending = errors.New("a toggle for this article is already in flight")
)

// state is the per-id favorite lifecycle: Unknown ids are simply absent from
// the map and read as not favorited.
type state int

const (
	stateNotFavorited state = iota
	statePendingAdd
	stateFavorited
	statePendingRemove
)

// Store is the slice of the backend the reconciler needs.
type Store interface {
	Favorites(ctx context.Context) ([]article.RawRecord, error)
	AddFavorite(ctx context.Context, articleID string) error
	RemoveFavorite(ctx context.Context, articleID string) error
}

const batchConcurrency = 4

type Reconciler struct {
	mu      sync.Mutex
	states  map[string]state
	store   Store
	session *session.Session
}

func NewReconciler(store Store, sess *session.Session) *Reconciler {
	return &Reconciler{
		states:  make(map[string]state),
		store:   store,
		session: sess,
	}
}

// Load populates the favorite set from the external store. Ids with a
// toggle in flight keep their pending state; the settled ids are replaced
// wholesale.
func (r *Reconciler) Load(ctx context.Context) error {
	if !r.session.Authenticated() {
		return ErrNotAuthenticated
	}

	records, err := r.store.Favorites(ctx)
	if err != nil {
		return fmt.Errorf("failed to load favorites: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]state, len(records))
	for id, st := range r.states {
		if st == statePendingAdd || st == statePendingRemove {
			next[id] = st
		}
	}
	for _, record := range records {
		id := article.ResolveDBID(record)
		if id == "" {
			continue
		}
		if _, pending := next[id]; !pending {
			next[id] = stateFavorited
		}
	}
	r.states = next

	slog.Debug("Favorites loaded", "count", len(records))
	return nil
}

// IsFavorited reflects the optimistic view: a pending add already reads as
// favorited, a pending remove already reads as not.
func (r *Reconciler) IsFavorited(dbID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.states[dbID]
	return st == stateFavorited || st == statePendingAdd
}

// FavoritedIDs returns the ids currently read as favorited.
func (r *Reconciler) FavoritedIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.states))
	for id, st := range r.states {
		if st == stateFavorited || st == statePendingAdd {
			ids = append(ids, id)
		}
	}
	return ids
}

// Toggle flips the favorite state of one id, optimistically: the local state
// moves to its pending target before the store call, commits on success,
// and rolls back to the pre-toggle value on failure. The store error is
// returned, never swallowed.
func (r *Reconciler) Toggle(ctx context.Context, dbID string) error {
	if dbID == "" {
		return ErrMissingID
	}
	if !r.session.Authenticated() {
		return ErrNotAuthenticated
	}

	adding, err := r.beginToggle(dbID)
	if err != nil {
		return err
	}

	if adding {
		err = r.store.AddFavorite(ctx, dbID)
	} else {
		err = r.store.RemoveFavorite(ctx, dbID)
	}

	r.settleToggle(dbID, adding, err == nil)

	if err != nil {
		op := "remove"
		if adding {
			op = "add"
		}
		return fmt.Errorf("failed to %s favorite %s: %w", op, dbID, err)
	}
	return nil
}

func (r *Reconciler) beginToggle(dbID string) (adding bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.states[dbID] {
	case statePendingAdd, statePendingRemove:
		return false, ErrTogglePending
	case stateFavorited:
		r.states[dbID] = statePendingRemove
		return false, nil
	default:
		r.states[dbID] = statePendingAdd
		return true, nil
	}
}

func (r *Reconciler) settleToggle(dbID string, adding, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case adding && ok:
		r.states[dbID] = stateFavorited
	case adding && !ok:
		delete(r.states, dbID)
	case !adding && ok:
		delete(r.states, dbID)
	default:
		r.states[dbID] = stateFavorited
	}
}

// FavoriteAll favorites every id not already favorited, with the same
// per-id exclusion as single toggles. Ids with a toggle in flight are
// skipped rather than queued. Returns the number of ids newly favorited and
// the first hard failure, if any.
func (r *Reconciler) FavoriteAll(ctx context.Context, dbIDs []string) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	var mu sync.Mutex
	added := 0

	for _, dbID := range dbIDs {
		if dbID == "" || r.IsFavorited(dbID) {
			continue
		}

		g.Go(func() error {
			err := r.Toggle(ctx, dbID)
			if errors.Is(err, ErrTogglePending) {
				slog.Debug("Skipping id with toggle in flight", "id", dbID)
				return nil
			}
			if err != nil {
				return err
			}

			mu.Lock()
			added++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return added, fmt.Errorf("favorite-all batch failed: %w", err)
	}
	return added, nil
}
