package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absarsolarch/ab-3/internal/domain"
)

func setupRedisRepo(t *testing.T) (*miniredis.Miniredis, *RedisPropertiesRepository) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewRedisPropertiesRepository(client)
}

func testProperty(title string, createdAt time.Time) *domain.Property {
	bedrooms := int64(3)
	bathrooms := int64(2)
	return &domain.Property{
		Title:        title,
		PropertyType: "Apartment",
		Price:        "450000",
		SizeSqft:     1200,
		Bedrooms:     &bedrooms,
		Bathrooms:    &bathrooms,
		Location:     "Kuala Lumpur",
		Status:       domain.StatusAvailable,
		Description:  "This is a test property for development purposes.",
		CreatedAt:    domain.Timestamp{Time: createdAt},
	}
}

func TestRedisCreate_MonotonicIDs(t *testing.T) {
	_, repo := setupRedisRepo(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		id, err := repo.Create(ctx, testProperty("Property", time.Now().UTC()))
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}

	// Ids keep climbing even after a delete.
	require.NoError(t, repo.Delete(ctx, last))
	id, err := repo.Create(ctx, testProperty("Property", time.Now().UTC()))
	require.NoError(t, err)
	assert.Greater(t, id, last)
}

func TestRedisRoundTrip(t *testing.T) {
	_, repo := setupRedisRepo(t)
	ctx := context.Background()

	created := testProperty("Test Property 1", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	created.Price = "450000.50"
	id, err := repo.Create(ctx, created)
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Test Property 1", got.Title)
	assert.Equal(t, "Apartment", got.PropertyType)
	assert.Equal(t, "450000.50", got.Price)
	assert.Equal(t, int64(1200), got.SizeSqft)
	require.NotNil(t, got.Bedrooms)
	assert.Equal(t, int64(3), *got.Bedrooms)
	require.NotNil(t, got.Bathrooms)
	assert.Equal(t, int64(2), *got.Bathrooms)
	assert.Equal(t, "Kuala Lumpur", got.Location)
	assert.Equal(t, domain.StatusAvailable, got.Status)
	assert.Equal(t, "This is a test property for development purposes.", got.Description)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt.Time))
}

func TestRedisCreate_OptionalFieldsAbsent(t *testing.T) {
	_, repo := setupRedisRepo(t)
	ctx := context.Background()

	p := testProperty("Bare", time.Now().UTC())
	p.Bedrooms = nil
	p.Bathrooms = nil
	p.Description = ""
	id, err := repo.Create(ctx, p)
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.Bedrooms)
	assert.Nil(t, got.Bathrooms)
	assert.Equal(t, "", got.Description)
}

func TestRedisUpdateStatus(t *testing.T) {
	_, repo := setupRedisRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, testProperty("For Sale", time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, id, domain.StatusSold))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, got.Status)
	// Every other field is untouched.
	assert.Equal(t, "For Sale", got.Title)
	assert.Equal(t, "450000", got.Price)
}

func TestRedisUpdateStatus_NotFound(t *testing.T) {
	_, repo := setupRedisRepo(t)
	ctx := context.Background()

	err := repo.UpdateStatus(ctx, 42, domain.StatusSold)
	assert.ErrorIs(t, err, ErrNotFound)

	// A failed update never fabricates a record.
	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRedisDelete_Idempotent(t *testing.T) {
	_, repo := setupRedisRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, testProperty("Gone", time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))
	require.NoError(t, repo.Delete(ctx, id))

	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisList_NewestFirst(t *testing.T) {
	_, repo := setupRedisRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := repo.Create(ctx, testProperty("Property", base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt.Time),
			"expected created_at descending")
	}
}

func TestRedisClear_ResetsCounter(t *testing.T) {
	_, repo := setupRedisRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, testProperty("Property", time.Now().UTC()))
		require.NoError(t, err)
	}

	require.NoError(t, repo.Clear(ctx))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	id, err := repo.Create(ctx, testProperty("Fresh", time.Now().UTC()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

// Full lifecycle: create, fetch, update, delete, list.
func TestRedisScenario(t *testing.T) {
	_, repo := setupRedisRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, testProperty("Test Property 1", time.Now().UTC()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Test Property 1", got.Title)

	require.NoError(t, repo.UpdateStatus(ctx, 1, domain.StatusSold))
	got, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, got.Status)
	assert.Equal(t, "Test Property 1", got.Title)

	require.NoError(t, repo.Delete(ctx, 1))
	_, err = repo.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
