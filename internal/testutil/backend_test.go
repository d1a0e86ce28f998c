package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sugarwarrior/internal/remote"
)

func TestFakeBackend_RegisterThenLookup(t *testing.T) {
	ctx := context.Background()
	b := NewFakeBackend()

	u, err := b.Register(ctx, remote.UserRecord{AnonymousID: "anon-1", Username: "sam"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)

	got, err := b.FetchUser(ctx, "anon-1")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	got, err = b.Login(ctx, "sam")
	require.NoError(t, err)
	assert.Equal(t, "anon-1", got.AnonymousID)
}

func TestFakeBackend_DuplicateUsernameRejected(t *testing.T) {
	ctx := context.Background()
	b := NewFakeBackend()
	_, err := b.Register(ctx, remote.UserRecord{AnonymousID: "a", Username: "sam"})
	require.NoError(t, err)

	_, err = b.Register(ctx, remote.UserRecord{AnonymousID: "b", Username: "sam"})
	require.Error(t, err)
	assert.True(t, remote.IsRejected(err))
}

func TestFakeBackend_UnknownLookupsAreNotFound(t *testing.T) {
	ctx := context.Background()
	b := NewFakeBackend()

	_, err := b.FetchUser(ctx, "nobody")
	assert.True(t, remote.IsNotFound(err))
	_, err = b.Login(ctx, "nobody")
	assert.True(t, remote.IsNotFound(err))
	assert.True(t, remote.IsNotFound(b.DeleteEvent(ctx, "event-9")))
}

func TestFakeBackend_UpdateUserOverlaysFields(t *testing.T) {
	ctx := context.Background()
	b := NewFakeBackend()
	b.SeedUser(remote.UserRecord{AnonymousID: "anon-1", Name: "Sam", Age: 30})

	u, err := b.UpdateUser(ctx, "anon-1", map[string]any{"name": "Alex", "weight": 80.5})
	require.NoError(t, err)
	assert.Equal(t, "Alex", u.Name)
	assert.Equal(t, 30, u.Age)
	assert.Equal(t, 80.5, u.Weight)
	assert.Len(t, b.Updates(), 1)
}

func TestFakeBackend_SubmitStoresEventAndAssignsID(t *testing.T) {
	ctx := context.Background()
	b := NewFakeBackend()
	u := b.SeedUser(remote.UserRecord{AnonymousID: "anon-1"})

	resp, err := b.SubmitEvent(ctx, remote.EventSubmission{UserID: u.ID, FoodName: "Soda", SugarGrams: 39, Timestamp: 1000})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.PointsEarned)
	assert.NotEmpty(t, resp.EventID)

	evs := b.Events(u.ID)
	require.Len(t, evs, 1)
	assert.Equal(t, resp.EventID, evs[0].ID)
	assert.Equal(t, "Soda", evs[0].ItemName)

	require.NoError(t, b.DeleteEvent(ctx, resp.EventID))
	assert.Empty(t, b.Events(u.ID))
}

func TestFakeBackend_FailOnAndCalls(t *testing.T) {
	ctx := context.Background()
	b := NewFakeBackend()
	boom := errors.New("boom")
	b.FailOn(OpFetchEvents, boom)

	_, err := b.FetchEvents(ctx, "user-1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, b.Calls(OpFetchEvents))

	b.FailOn(OpFetchEvents, nil)
	_, err = b.FetchEvents(ctx, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, b.Calls(OpFetchEvents))
}

func TestFakeBackend_CancelledContextFailsCall(t *testing.T) {
	b := NewFakeBackend()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.FetchEvents(ctx, "user-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, b.Calls(OpFetchEvents))
}
