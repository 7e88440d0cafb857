package friends

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/storage"
)

func seed(t *testing.T) *storage.MemoryStore {
	t.Helper()
	ctx := context.Background()
	m := storage.NewMemoryStore()
	for _, p := range []internal.UserProfile{
		{UserID: "alice", Email: "alice@example.com", FriendCode: "111122223333"},
		{UserID: "bob", Email: "bob@example.com", FriendCode: "444455556666"},
		// written before codes were normalized
		{UserID: "carol", Email: "carol@example.com", FriendCode: " ab 12cd "},
	} {
		p := p
		require.NoError(t, m.InsertProfile(ctx, &p))
	}
	return m
}

func TestAddFriend_ExactCode(t *testing.T) {
	ctx := context.Background()
	d := NewDirectory("alice", seed(t), internal.NewNopLogger())

	got, err := d.AddFriend(ctx, "  444455556666 ")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.ID)
	assert.Equal(t, "bob@example.com", got.Email)

	list, err := d.FetchFriends(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].ID)
}

func TestAddFriend_LooseMatchFindsLegacyCode(t *testing.T) {
	d := NewDirectory("alice", seed(t), internal.NewNopLogger())
	got, err := d.AddFriend(context.Background(), "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, "carol", got.ID)
}

func TestAddFriend_Errors(t *testing.T) {
	ctx := context.Background()
	remote := seed(t)
	d := NewDirectory("alice", remote, internal.NewNopLogger())

	_, err := d.AddFriend(ctx, "999999999999")
	assert.ErrorIs(t, err, ErrCodeNotFound)
	assert.Equal(t, 404, internal.StatusOf(err))

	_, err = d.AddFriend(ctx, "111122223333")
	assert.ErrorIs(t, err, ErrSelfAdd, "exact tier")

	require.NoError(t, remote.UpdateProfile(ctx, &internal.UserProfile{UserID: "alice", FriendCode: "x y z"}))
	_, err = d.AddFriend(ctx, "XYZ")
	assert.ErrorIs(t, err, ErrSelfAdd, "loose tier")

	_, err = d.AddFriend(ctx, "444455556666")
	require.NoError(t, err)
	_, err = d.AddFriend(ctx, "444455556666")
	assert.ErrorIs(t, err, ErrAlreadyFriends)

	_, err = d.AddFriend(ctx, "   ")
	assert.True(t, internal.IsKind(err, internal.KindValidation))
}

func TestRemoveFriend(t *testing.T) {
	ctx := context.Background()
	d := NewDirectory("alice", seed(t), internal.NewNopLogger())
	_, err := d.AddFriend(ctx, "444455556666")
	require.NoError(t, err)
	_, err = d.AddFriend(ctx, "ab12cd")
	require.NoError(t, err)

	require.NoError(t, d.RemoveFriend(ctx, "bob"))
	cached := d.Friends()
	require.Len(t, cached, 1)
	assert.Equal(t, "carol", cached[0].ID)

	list, err := d.FetchFriends(ctx)
	require.NoError(t, err)
	assert.Equal(t, cached, list)
}

func TestGetUserFriendCode(t *testing.T) {
	ctx := context.Background()
	code, err := NewDirectory("bob", seed(t), internal.NewNopLogger()).GetUserFriendCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "444455556666", code)

	_, err = NewDirectory("nobody", seed(t), internal.NewNopLogger()).GetUserFriendCode(ctx)
	assert.True(t, internal.IsKind(err, internal.KindNotFound))
}

func TestGenerateFriendCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := GenerateFriendCode()
		require.NoError(t, err)
		assert.True(t, IsShareCode(code), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "AB12", NormalizeCode("  ab12\n"))
	assert.False(t, IsShareCode("12345678901"))
	assert.False(t, IsShareCode("12345678901a"))
	assert.True(t, IsShareCode("123456789012"))
}

// racyRemote reports no edge even when one exists, as when another request
// inserts it between the check and the insert.
type racyRemote struct {
	*storage.MemoryStore
}

func (racyRemote) FriendExists(ctx context.Context, userID, friendID string) (bool, error) {
	return false, nil
}

func TestAddFriend_ConcurrentInsertLeavesNoDuplicate(t *testing.T) {
	ctx := context.Background()
	remote := seed(t)
	require.NoError(t, remote.AddFriend(ctx, "alice", "bob"))
	d := NewDirectory("alice", racyRemote{remote}, internal.NewNopLogger())

	_, err := d.AddFriend(ctx, "444455556666")
	assert.ErrorIs(t, err, ErrAlreadyFriends)
	assert.Empty(t, d.Friends())

	list, err := d.FetchFriends(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].ID)
}
