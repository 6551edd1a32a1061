package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdboard/internal/repository"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Get(ctx, "farm_animals")
	require.ErrorIs(t, err, repository.ErrNotFound)

	blob := []byte(`[{"id":1}]`)
	require.NoError(t, s.Put(ctx, "farm_animals", blob))
	blob[0] = 'x'

	got, err := s.Get(ctx, "farm_animals")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))
	assert.ElementsMatch(t, []string{"farm_animals"}, s.Keys())

	require.NoError(t, s.Delete(ctx, "farm_animals"))
	require.NoError(t, s.Delete(ctx, "farm_animals"))
	_, err = s.Get(ctx, "farm_animals")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewStore()
	assert.ErrorIs(t, s.Put(ctx, "k", nil), context.Canceled)
}
