package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTags(t *testing.T) {
	setupTestDB(t)
	svc := NewTagService()
	ctx := context.Background()

	createTestTag(t, "dinner")
	createTestTag(t, "breakfast")

	tags, err := svc.List(ctx)
	require.NoError(t, err)

	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[0].Name)
	assert.Equal(t, "dinner", tags[1].Name)

	_, err = svc.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestListIngredientsByPrefix(t *testing.T) {
	setupTestDB(t)
	svc := NewIngredientService()
	ctx := context.Background()

	createTestIngredient(t, "Salt", "g")
	createTestIngredient(t, "salmon", "g")
	createTestIngredient(t, "flour", "g")

	t.Run("no filter", func(t *testing.T) {
		ingredients, err := svc.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, ingredients, 3)
	})

	t.Run("prefix is case-insensitive", func(t *testing.T) {
		ingredients, err := svc.List(ctx, "sal")
		require.NoError(t, err)
		require.Len(t, ingredients, 2)
	})

	t.Run("no matches", func(t *testing.T) {
		ingredients, err := svc.List(ctx, "zzz")
		require.NoError(t, err)
		assert.Empty(t, ingredients)
	})

	_, err := svc.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrIngredientNotFound)
}
