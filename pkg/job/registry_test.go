package job

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := GenerateID()
		require.Len(t, id, 36)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestRegistry_Lifecycle(t *testing.T) {
	r := NewRegistry()

	j, err := r.Begin("a", KindCompress)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, j.Status)
	assert.Equal(t, 1, r.Len())

	j, err = r.Transition("a", StatusRunning)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, j.Status)

	j, err = r.Transition("a", StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, j.Status)
	assert.Equal(t, 0, r.Len(), "terminal jobs leave the registry")

	_, ok := r.Get("a")
	assert.False(t, ok)
}

func TestRegistry_DuplicateID(t *testing.T) {
	r := NewRegistry()
	_, err := r.Begin("a", KindUpload)
	require.NoError(t, err)

	_, err = r.Begin("a", KindUpload)
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = r.Transition("a", StatusFailed)
	require.NoError(t, err)

	_, err = r.Begin("a", KindUpload)
	require.NoError(t, err, "id can be reused once the previous job ended")
}

func TestRegistry_InvalidTransition(t *testing.T) {
	r := NewRegistry()
	_, err := r.Begin("a", KindCompress)
	require.NoError(t, err)
	_, err = r.Transition("a", StatusRunning)
	require.NoError(t, err)

	_, err = r.Transition("a", StatusPending)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = r.Transition("missing", StatusRunning)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_RequestCancel(t *testing.T) {
	r := NewRegistry()
	_, ok := r.RequestCancel("nope")
	assert.False(t, ok)

	_, err := r.Begin("a", KindCompress)
	require.NoError(t, err)
	j, ok := r.RequestCancel("a")
	require.True(t, ok)
	assert.True(t, j.CancelRequested)
}

func TestRegistry_ConcurrentBegin(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := GenerateID()
			_, err := r.Begin(id, KindCompress)
			assert.NoError(t, err)
			_, err = r.Transition(id, StatusCompleted)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.List())
}
