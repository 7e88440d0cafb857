package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

// MemoryStore is an in-process RemoteStore for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*internal.User        // id -> user
	profiles map[string]*internal.UserProfile // user id -> profile
	entries  map[string][]internal.Entry      // user id -> entries
	friends  map[string]map[string]time.Time  // user id -> friend id -> added
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*internal.User),
		profiles: make(map[string]*internal.UserProfile),
		entries:  make(map[string][]internal.Entry),
		friends:  make(map[string]map[string]time.Time),
	}
}

// --- EntryRepository ---
func (m *MemoryStore) ReplaceEntries(ctx context.Context, userID string, entries []internal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userID] = append([]internal.Entry(nil), entries...)
	return nil
}

func (m *MemoryStore) ListEntries(ctx context.Context, userID string) ([]internal.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]internal.Entry{}, m.entries[userID]...), nil
}

func (m *MemoryStore) DeleteEntry(ctx context.Context, userID, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.entries[userID]
	for i, e := range list {
		if e.ID == entryID {
			m.entries[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// --- ProfileRepository ---
func (m *MemoryStore) GetProfile(ctx context.Context, userID string) (*internal.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) InsertProfile(ctx context.Context, p *internal.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.UserID]; ok {
		return ErrAlreadyExists
	}
	for _, other := range m.profiles {
		if p.FriendCode != "" && other.FriendCode == p.FriendCode {
			return ErrAlreadyExists
		}
	}
	cp := withTimestamps(*p)
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *MemoryStore) UpdateProfile(ctx context.Context, p *internal.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.profiles[p.UserID]
	if !ok {
		return ErrNotFound
	}
	cp := *p
	cp.CreatedAt = existing.CreatedAt
	if cp.FriendCode == "" {
		cp.FriendCode = existing.FriendCode
	}
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *MemoryStore) ProfileByFriendCode(ctx context.Context, code string) (*internal.UserProfile, error) {
	if code == "" {
		return nil, ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles {
		if p.FriendCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListProfiles(ctx context.Context) ([]internal.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]internal.UserProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// --- FriendRepository ---
func (m *MemoryStore) ListFriends(ctx context.Context, userID string) ([]internal.FriendSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type edge struct {
		id    string
		added time.Time
	}
	var edges []edge
	for id, added := range m.friends[userID] {
		edges = append(edges, edge{id, added})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].added.Equal(edges[j].added) {
			return edges[i].id < edges[j].id
		}
		return edges[i].added.Before(edges[j].added)
	})
	out := make([]internal.FriendSummary, 0, len(edges))
	for _, e := range edges {
		if p, ok := m.profiles[e.id]; ok {
			out = append(out, p.FriendSummary())
		} else {
			out = append(out, internal.FriendSummary{ID: e.id})
		}
	}
	return out, nil
}

func (m *MemoryStore) FriendExists(ctx context.Context, userID, friendID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.friends[userID][friendID]
	return ok, nil
}

func (m *MemoryStore) AddFriend(ctx context.Context, userID, friendID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.friends[userID] == nil {
		m.friends[userID] = make(map[string]time.Time)
	}
	if _, ok := m.friends[userID][friendID]; ok {
		return ErrAlreadyExists
	}
	m.friends[userID][friendID] = time.Now()
	return nil
}

func (m *MemoryStore) RemoveFriend(ctx context.Context, userID, friendID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.friends[userID], friendID)
	return nil
}

// --- UserRepository ---
func (m *MemoryStore) CreateUser(ctx context.Context, u *internal.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrAlreadyExists
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) Close() error { return nil }

// --- Compile-time assertions ---
var _ RemoteStore = (*MemoryStore)(nil)

func withTimestamps(p internal.UserProfile) internal.UserProfile {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.LastUpdated.IsZero() {
		p.LastUpdated = now
	}
	return p
}
