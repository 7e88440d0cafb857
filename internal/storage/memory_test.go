package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

func TestMemoryStore_ReplaceEntriesIsFullReplace(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Now()

	first := []internal.Entry{
		{ID: "a", Kind: internal.KindFood, Name: "Eggs", Calories: 300, Date: now, Visible: true},
		{ID: "b", Kind: internal.KindFood, Name: "Toast", Calories: 120, Date: now, Visible: true},
	}
	require.NoError(t, m.ReplaceEntries(ctx, "u1", first))
	require.NoError(t, m.ReplaceEntries(ctx, "u1", first[1:]))

	got, err := m.ListEntries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	other, err := m.ListEntries(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemoryStore_DeleteEntryScopedByUser(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	e := internal.Entry{ID: "a", Calories: 10, Visible: true}
	require.NoError(t, m.ReplaceEntries(ctx, "u1", []internal.Entry{e}))
	require.NoError(t, m.ReplaceEntries(ctx, "u2", []internal.Entry{e}))

	require.NoError(t, m.DeleteEntry(ctx, "u1", "a"))
	assert.ErrorIs(t, m.DeleteEntry(ctx, "u1", "a"), ErrNotFound)

	left, _ := m.ListEntries(ctx, "u2")
	assert.Len(t, left, 1)
}

func TestMemoryStore_Profiles(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.UpdateProfile(ctx, &internal.UserProfile{UserID: "u1"}), ErrNotFound)

	p := &internal.UserProfile{UserID: "u1", Email: "a@example.com", FriendCode: "123456789012", Weight: 150}
	require.NoError(t, m.InsertProfile(ctx, p))
	assert.ErrorIs(t, m.InsertProfile(ctx, p), ErrAlreadyExists)
	assert.ErrorIs(t, m.InsertProfile(ctx, &internal.UserProfile{UserID: "u2", FriendCode: "123456789012"}), ErrAlreadyExists)

	require.NoError(t, m.UpdateProfile(ctx, &internal.UserProfile{UserID: "u1", Weight: 160}))
	got, err := m.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 160.0, got.Weight)
	assert.Equal(t, "123456789012", got.FriendCode, "update without code keeps the existing one")
	assert.False(t, got.CreatedAt.IsZero())

	byCode, err := m.ProfileByFriendCode(ctx, "123456789012")
	require.NoError(t, err)
	assert.Equal(t, "u1", byCode.UserID)
}

func TestMemoryStore_Friends(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.InsertProfile(ctx, &internal.UserProfile{UserID: "u2", Email: "b@example.com", FriendCode: "222222222222"}))

	require.NoError(t, m.AddFriend(ctx, "u1", "u2"))
	assert.ErrorIs(t, m.AddFriend(ctx, "u1", "u2"), ErrAlreadyExists)

	ok, err := m.FriendExists(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, ok)
	back, _ := m.FriendExists(ctx, "u2", "u1")
	assert.False(t, back, "edges are directed")

	friends, err := m.ListFriends(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []internal.FriendSummary{{ID: "u2", Email: "b@example.com", FriendCode: "222222222222"}}, friends)

	require.NoError(t, m.RemoveFriend(ctx, "u1", "u2"))
	friends, _ = m.ListFriends(ctx, "u1")
	assert.Empty(t, friends)
}

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.CreateUser(ctx, &internal.User{ID: "u1", Email: "A@Example.com"}))
	assert.ErrorIs(t, m.CreateUser(ctx, &internal.User{ID: "u9", Email: "a@example.com"}), ErrAlreadyExists)

	u, err := m.GetUserByEmail(ctx, "a@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = m.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
