package favorites

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findash/articledesk/app/article"
	"github.com/findash/articledesk/app/session"
)

// fakeStore is a controllable favorites backend.
type fakeStore struct {
	mu        sync.Mutex
	favorites []article.RawRecord
	addErr    error
	removeErr error
	adds      []string
	removes   []string

	// blockAdd, when set, makes AddFavorite wait until released.
	blockAdd chan struct{}
}

func (f *fakeStore) Favorites(_ context.Context) ([]article.RawRecord, error) {
	return f.favorites, nil
}

func (f *fakeStore) AddFavorite(_ context.Context, id string) error {
	if f.blockAdd != nil {
		<-f.blockAdd
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.adds = append(f.adds, id)
	return nil
}

func (f *fakeStore) RemoveFavorite(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removes = append(f.removes, id)
	return nil
}

func newTestReconciler(store *fakeStore) *Reconciler {
	return NewReconciler(store, session.New("opaque-test-token"))
}

func TestToggle_AddSuccess(t *testing.T) {
	store := &fakeStore{}
	r := newTestReconciler(store)

	err := r.Toggle(context.Background(), "a1")

	require.NoError(t, err)
	assert.True(t, r.IsFavorited("a1"))
	assert.Equal(t, []string{"a1"}, store.adds)
}

func TestToggle_AddFailureRollsBack(t *testing.T) {
	store := &fakeStore{addErr: errors.New("backend down")}
	r := newTestReconciler(store)

	err := r.Toggle(context.Background(), "a1")

	require.Error(t, err)
	assert.ErrorContains(t, err, "backend down")
	assert.False(t, r.IsFavorited("a1"), "state must revert on failure")
}

func TestToggle_RemoveSuccess(t *testing.T) {
	store := &fakeStore{}
	r := newTestReconciler(store)
	require.NoError(t, r.Toggle(context.Background(), "a1"))

	err := r.Toggle(context.Background(), "a1")

	require.NoError(t, err)
	assert.False(t, r.IsFavorited("a1"))
	assert.Equal(t, []string{"a1"}, store.removes)
}

func TestToggle_RemoveFailureRollsBack(t *testing.T) {
	store := &fakeStore{}
	r := newTestReconciler(store)
	require.NoError(t, r.Toggle(context.Background(), "a1"))

	store.removeErr = errors.New("backend down")
	err := r.Toggle(context.Background(), "a1")

	require.Error(t, err)
	assert.True(t, r.IsFavorited("a1"), "state must revert to favorited on failure")
}

func TestToggle_MissingID(t *testing.T) {
	r := newTestReconciler(&fakeStore{})

	err := r.Toggle(context.Background(), "")

	assert.ErrorIs(t, err, ErrMissingID)
}

func TestToggle_Unauthenticated(t *testing.T) {
	r := NewReconciler(&fakeStore{}, session.New(""))

	err := r.Toggle(context.Background(), "a1")

	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestToggle_ConcurrentToggleRejected(t *testing.T) {
	store := &fakeStore{blockAdd: make(chan struct{})}
	r := newTestReconciler(store)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- r.Toggle(context.Background(), "a1")
	}()

	// Wait until the first toggle is pending, then try a second one
	require.Eventually(t, func() bool {
		return r.IsFavorited("a1") // optimistic pending-add reads as favorited
	}, time.Second, time.Millisecond)

	err := r.Toggle(context.Background(), "a1")
	assert.ErrorIs(t, err, ErrTogglePending)

	close(store.blockAdd)
	require.NoError(t, <-firstDone)
	assert.True(t, r.IsFavorited("a1"))
}

func TestLoad_PopulatesFavoritedIDs(t *testing.T) {
	store := &fakeStore{favorites: []article.RawRecord{
		{ID: article.NewFlexID("a1")},
		{ID: article.NewFlexID("a2")},
		{Title: "no id, skipped"},
	}}
	r := newTestReconciler(store)

	require.NoError(t, r.Load(context.Background()))

	assert.True(t, r.IsFavorited("a1"))
	assert.True(t, r.IsFavorited("a2"))
	assert.ElementsMatch(t, []string{"a1", "a2"}, r.FavoritedIDs())
}

func TestLoad_Unauthenticated(t *testing.T) {
	r := NewReconciler(&fakeStore{}, session.New(""))

	assert.ErrorIs(t, r.Load(context.Background()), ErrNotAuthenticated)
}

func TestFavoriteAll_SkipsAlreadyFavorited(t *testing.T) {
	store := &fakeStore{favorites: []article.RawRecord{{ID: article.NewFlexID("a1")}}}
	r := newTestReconciler(store)
	require.NoError(t, r.Load(context.Background()))

	added, err := r.FavoriteAll(context.Background(), []string{"a1", "a2", "a3", ""})

	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.ElementsMatch(t, []string{"a2", "a3"}, store.adds)
	assert.ElementsMatch(t, []string{"a1", "a2", "a3"}, r.FavoritedIDs())
}

func TestFavoriteAll_ReportsFailures(t *testing.T) {
	store := &fakeStore{addErr: errors.New("backend down")}
	r := newTestReconciler(store)

	added, err := r.FavoriteAll(context.Background(), []string{"a1"})

	require.Error(t, err)
	assert.Equal(t, 0, added)
	assert.False(t, r.IsFavorited("a1"))
}
