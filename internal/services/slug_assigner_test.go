package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeWith(slugs ...string) slugLookup {
	persisted := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		persisted[s] = true
	}
	return func(_ context.Context, slug string, _ *uuid.UUID) (bool, error) {
		return persisted[slug], nil
	}
}

func TestSlugAssigner_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("free base is used as is", func(t *testing.T) {
		slug, err := NewSlugAssigner(storeWith()).Assign(ctx, "smesiteli", nil)
		require.NoError(t, err)
		require.NotNil(t, slug)
		assert.Equal(t, "smesiteli", *slug)
	})

	t.Run("persisted slugs get a numeric suffix", func(t *testing.T) {
		slug, err := NewSlugAssigner(storeWith("smesiteli", "smesiteli-2")).Assign(ctx, "smesiteli", nil)
		require.NoError(t, err)
		assert.Equal(t, "smesiteli-3", *slug)
	})

	t.Run("slugs claimed in the run are not handed out twice", func(t *testing.T) {
		assigner := NewSlugAssigner(storeWith())
		first, err := assigner.Assign(ctx, "truby", nil)
		require.NoError(t, err)
		second, err := assigner.Assign(ctx, "truby", nil)
		require.NoError(t, err)
		assert.Equal(t, "truby", *first)
		assert.Equal(t, "truby-2", *second)
	})

	t.Run("explicit claim blocks the slug", func(t *testing.T) {
		assigner := NewSlugAssigner(storeWith())
		assigner.Claim("truby")
		slug, err := assigner.Assign(ctx, "truby", nil)
		require.NoError(t, err)
		assert.Equal(t, "truby-2", *slug)
	})

	t.Run("empty base yields no slug", func(t *testing.T) {
		slug, err := NewSlugAssigner(storeWith()).Assign(ctx, "", nil)
		require.NoError(t, err)
		assert.Nil(t, slug)
	})

	t.Run("exclude id is passed to the store", func(t *testing.T) {
		self := uuid.New()
		var seen *uuid.UUID
		lookup := func(_ context.Context, _ string, excludeID *uuid.UUID) (bool, error) {
			seen = excludeID
			return false, nil
		}
		_, err := NewSlugAssigner(lookup).Assign(ctx, "truby", &self)
		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.Equal(t, self, *seen)
	})

	t.Run("store errors are returned", func(t *testing.T) {
		boom := errors.New("connection reset")
		lookup := func(context.Context, string, *uuid.UUID) (bool, error) { return false, boom }
		_, err := NewSlugAssigner(lookup).Assign(ctx, "truby", nil)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("gives up after the attempt limit", func(t *testing.T) {
		lookup := func(context.Context, string, *uuid.UUID) (bool, error) { return true, nil }
		_, err := NewSlugAssigner(lookup).Assign(ctx, "truby", nil)
		assert.ErrorIs(t, err, ErrSlugExhausted)
	})
}
