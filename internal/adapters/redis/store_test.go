package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "github.com/Alice-Macchia/hotel-data-pipeline-project/internal/adapters/redis"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
)

func newTestStore(t *testing.T) *redisad.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.New(mr.Addr(), "", 0)
}

func TestRoundTripAndOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "datalake", "bronze/hotels/hotels.csv", []byte("v1")))
	require.NoError(t, store.Upload(ctx, "datalake", "bronze/hotels/hotels.csv", []byte("v2")))

	data, err := store.Download(ctx, "datalake", "bronze/hotels/hotels.csv")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestDownloadMissingIsNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Download(context.Background(), "datalake", "absent.csv")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListScopedToContainerAndPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "landing-zone", "bookings.csv", []byte("x")))
	require.NoError(t, store.Upload(ctx, "landing-zone", "hotels.csv", []byte("x")))
	require.NoError(t, store.Upload(ctx, "datalake", "bronze/hotels/hotels.csv", []byte("x")))

	got, err := store.List(ctx, "landing-zone", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"bookings.csv", "hotels.csv"}, got)

	got, err = store.List(ctx, "datalake", "silver/")
	require.NoError(t, err)
	assert.Empty(t, got)
}
