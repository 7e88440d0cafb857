package api

import (
	"context"
	"sync"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/friends"
	"github.com/powdermilkjuno/habit-tracker/internal/store"
)

// UserSession is the per-user state the server keeps between requests.
type UserSession struct {
	Store   *store.Store
	Friends *friends.Directory
}

// Sessions opens one store per signed-in user, keyed by user id. Each store
// gets its own snapshot slot; everything else comes from the template.
type Sessions struct {
	template store.Options
	remote   friends.Remote
	logger   internal.Logger

	mu    sync.Mutex
	users map[string]*UserSession
}

func NewSessions(template store.Options, remote friends.Remote, logger internal.Logger) *Sessions {
	return &Sessions{
		template: template,
		remote:   remote,
		logger:   logger,
		users:    make(map[string]*UserSession),
	}
}

// Open returns the user's session state, creating it on first use, and
// binds sess to the store.
func (s *Sessions) Open(ctx context.Context, sess *internal.Session) (*UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	us, ok := s.users[sess.UserID]
	if !ok {
		logger := s.logger.With("user_id", sess.UserID)
		opts := s.template
		opts.Key = store.KeyFor(sess.UserID)
		opts.Logger = logger
		st, err := store.New(ctx, opts)
		if err != nil {
			return nil, err
		}
		us = &UserSession{
			Store:   st,
			Friends: friends.NewDirectory(sess.UserID, s.remote, logger),
		}
		s.users[sess.UserID] = us
		logger.Debugf("opened store %s", opts.Key)
	}
	us.Store.Attach(*sess)
	return us, nil
}

// Drop detaches and forgets the user's store, e.g. on sign-out.
func (s *Sessions) Drop(userID string) {
	s.mu.Lock()
	us, ok := s.users[userID]
	delete(s.users, userID)
	s.mu.Unlock()
	if ok {
		us.Store.Detach()
		us.Store.Close()
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Sessions) CloseAll() {
	s.mu.Lock()
	users := s.users
	s.users = make(map[string]*UserSession)
	s.mu.Unlock()
	for _, us := range users {
		us.Store.Close()
	}
}
