package storage

import (
	"context"
	"errors"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

var (
	ErrNotFound      = errors.New("storage: not found")
	ErrAlreadyExists = errors.New("storage: already exists")
)

// EntryRepository mirrors a user's ledger. ReplaceEntries is a full replace:
// every remote row for the user is dropped and the given set inserted.
type EntryRepository interface {
	ReplaceEntries(ctx context.Context, userID string, entries []internal.Entry) error
	ListEntries(ctx context.Context, userID string) ([]internal.Entry, error)
	DeleteEntry(ctx context.Context, userID, entryID string) error
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*internal.UserProfile, error)
	InsertProfile(ctx context.Context, p *internal.UserProfile) error
	UpdateProfile(ctx context.Context, p *internal.UserProfile) error
	ProfileByFriendCode(ctx context.Context, code string) (*internal.UserProfile, error)
	ListProfiles(ctx context.Context) ([]internal.UserProfile, error)
}

// FriendRepository stores directed edges user -> friend.
type FriendRepository interface {
	ListFriends(ctx context.Context, userID string) ([]internal.FriendSummary, error)
	FriendExists(ctx context.Context, userID, friendID string) (bool, error)
	AddFriend(ctx context.Context, userID, friendID string) error
	RemoveFriend(ctx context.Context, userID, friendID string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *internal.User) error
	GetUserByEmail(ctx context.Context, email string) (*internal.User, error)
	GetUserByID(ctx context.Context, id string) (*internal.User, error)
}

type RemoteStore interface {
	EntryRepository
	ProfileRepository
	FriendRepository
	UserRepository
	Close() error
}

// SnapshotStore is the local durable key-value slot holding a serialized store.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
