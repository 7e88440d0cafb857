// Package friends manages a user's outgoing friend edges and the
// shareable codes used to create them.
package friends

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"sync"
	"unicode"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/storage"
)

// CodeLength is the number of digits in a generated friend code.
const CodeLength = 12

var (
	ErrCodeNotFound   = internal.NewNotFoundError("friend code not found")
	ErrSelfAdd        = internal.NewValidationError("cannot add yourself as a friend")
	ErrAlreadyFriends = internal.NewConflictError("already friends with this user")
)

// Remote is what the directory needs from the remote store.
type Remote interface {
	storage.FriendRepository
	ProfileByFriendCode(ctx context.Context, code string) (*internal.UserProfile, error)
	ListProfiles(ctx context.Context) ([]internal.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*internal.UserProfile, error)
}

// Directory caches the friend list of one user.
type Directory struct {
	mu      sync.Mutex
	userID  string
	remote  Remote
	logger  internal.Logger
	friends []internal.FriendSummary
}

func NewDirectory(userID string, remote Remote, logger internal.Logger) *Directory {
	return &Directory{userID: userID, remote: remote, logger: logger}
}

// Friends returns the cached list from the last fetch or add.
func (d *Directory) Friends() []internal.FriendSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return clone(d.friends)
}

// FetchFriends reloads the list from the remote store.
func (d *Directory) FetchFriends(ctx context.Context) ([]internal.FriendSummary, error) {
	list, err := d.remote.ListFriends(ctx, d.userID)
	if err != nil {
		d.logger.Errorf("list friends for %s: %v", d.userID, err)
		return nil, internal.NewSyncError(err, "fetch friends")
	}
	d.mu.Lock()
	d.friends = list
	d.mu.Unlock()
	return clone(list), nil
}

func clone(list []internal.FriendSummary) []internal.FriendSummary {
	out := make([]internal.FriendSummary, len(list))
	copy(out, list)
	return out
}

// AddFriend resolves code to a user and records the edge. The in-memory
// list is updated before the remote insert and kept if that insert fails,
// unless the remote already holds the edge.
func (d *Directory) AddFriend(ctx context.Context, code string) (internal.FriendSummary, error) {
	target, err := d.resolve(ctx, code)
	if err != nil {
		return internal.FriendSummary{}, err
	}
	if target.UserID == d.userID {
		return internal.FriendSummary{}, ErrSelfAdd
	}
	exists, err := d.remote.FriendExists(ctx, d.userID, target.UserID)
	if err != nil {
		return internal.FriendSummary{}, internal.NewSyncError(err, "check friendship")
	}
	if exists {
		return internal.FriendSummary{}, ErrAlreadyFriends
	}

	summary := target.FriendSummary()
	d.mu.Lock()
	d.friends = append(d.friends, summary)
	d.mu.Unlock()

	if err := d.remote.AddFriend(ctx, d.userID, target.UserID); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			d.drop(target.UserID)
			return internal.FriendSummary{}, ErrAlreadyFriends
		}
		d.logger.Errorf("add friend %s for %s: %v", target.UserID, d.userID, err)
		return summary, internal.NewSyncError(err, "add friend")
	}
	d.logger.Infof("user %s added friend %s", d.userID, target.UserID)
	return summary, nil
}

// resolve tries an exact match on the normalized code, then a tolerant scan
// over every profile for codes stored before normalization.
func (d *Directory) resolve(ctx context.Context, code string) (*internal.UserProfile, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, internal.NewValidationError("friend code is required")
	}

	p, err := d.remote.ProfileByFriendCode(ctx, normalized)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, internal.NewSyncError(err, "look up friend code")
	}

	profiles, err := d.remote.ListProfiles(ctx)
	if err != nil {
		return nil, internal.NewSyncError(err, "scan friend codes")
	}
	want := looseCode(code)
	for i := range profiles {
		if profiles[i].FriendCode != "" && looseCode(profiles[i].FriendCode) == want {
			return &profiles[i], nil
		}
	}
	return nil, ErrCodeNotFound
}

func (d *Directory) RemoveFriend(ctx context.Context, friendID string) error {
	if err := d.remote.RemoveFriend(ctx, d.userID, friendID); err != nil {
		d.logger.Errorf("remove friend %s for %s: %v", friendID, d.userID, err)
		return internal.NewSyncError(err, "remove friend")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.friends[:0]
	for _, f := range d.friends {
		if f.ID != friendID {
			kept = append(kept, f)
		}
	}
	d.friends = kept
	return nil
}

// drop removes the most recently appended summary for id.
func (d *Directory) drop(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.friends) - 1; i >= 0; i-- {
		if d.friends[i].ID == id {
			d.friends = append(d.friends[:i], d.friends[i+1:]...)
			return
		}
	}
}

// GetUserFriendCode returns the caller's own code.
func (d *Directory) GetUserFriendCode(ctx context.Context) (string, error) {
	p, err := d.remote.GetProfile(ctx, d.userID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", internal.NewNotFoundError("profile not found")
	}
	if err != nil {
		return "", internal.NewSyncError(err, "get friend code")
	}
	return p.FriendCode, nil
}

// NormalizeCode is the stored form of a code: trimmed and upper-cased.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func looseCode(code string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code))
}

// GenerateFriendCode returns CodeLength random decimal digits.
func GenerateFriendCode() (string, error) {
	var b strings.Builder
	b.Grow(CodeLength)
	ten := big.NewInt(10)
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// IsShareCode reports whether s has the shape of a generated code.
func IsShareCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
