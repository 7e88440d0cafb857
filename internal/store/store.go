// Package store owns one user's ledger, profile and pet, keeps them in a
// local snapshot slot, and mirrors them to the remote store when a session
// is attached.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/bmr"
	"github.com/powdermilkjuno/habit-tracker/internal/ledger"
	"github.com/powdermilkjuno/habit-tracker/internal/pet"
	"github.com/powdermilkjuno/habit-tracker/internal/storage"
	"github.com/powdermilkjuno/habit-tracker/internal/syncer"
)

// DefaultKey names the snapshot slot of a single-user client.
const DefaultKey = "habit-store"

// KeyFor names the snapshot slot of userID on a multi-user server.
func KeyFor(userID string) string { return DefaultKey + ":" + userID }

// Remote is the part of the remote store a Store mirrors against.
type Remote interface {
	storage.EntryRepository
	storage.ProfileRepository
}

// Pusher schedules and runs full-replace pushes.
type Pusher interface {
	Enqueue(userID string, entries []internal.Entry)
	SyncNow(ctx context.Context, userID string, entries []internal.Entry) error
	Status(userID string) syncer.Status
}

type Options struct {
	Key          string
	Snapshots    storage.SnapshotStore
	Remote       Remote // nil for an offline client
	Pusher       Pusher
	Strategy     bmr.Strategy
	HatchDelay   time.Duration
	SyncOnToggle bool
	Clock        ledger.Clock
	Location     *time.Location
	Logger       internal.Logger
}

type Store struct {
	mu           sync.Mutex
	key          string
	snapshots    storage.SnapshotStore
	remote       Remote
	pusher       Pusher
	strategy     bmr.Strategy
	syncOnToggle bool
	now          ledger.Clock
	logger       internal.Logger

	ledger      *ledger.Ledger
	profile     internal.UserProfile
	pet         *pet.Machine
	session     *internal.Session
	lastUpdated time.Time
}

// snapshot is the JSON layout of the local slot.
type snapshot struct {
	Entries       []internal.Entry     `json:"entries"`
	Profile       internal.UserProfile `json:"profile"`
	TotalCalories int                  `json:"totalCalories"`
	LastUpdated   time.Time            `json:"lastUpdated"`
}

// New builds a store and hydrates it from the snapshot slot once.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Snapshots == nil {
		return nil, errors.New("store: snapshot store is required")
	}
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Strategy == "" {
		opts.Strategy = bmr.ActivityFactorStrategy
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = internal.NewNopLogger()
	}

	s := &Store{
		key:          opts.Key,
		snapshots:    opts.Snapshots,
		remote:       opts.Remote,
		pusher:       opts.Pusher,
		strategy:     opts.Strategy,
		syncOnToggle: opts.SyncOnToggle,
		now:          opts.Clock,
		logger:       opts.Logger.With("store", opts.Key),
		ledger:       ledger.New(opts.Clock, opts.Location),
		profile:      internal.DefaultProfile(),
	}

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		s.ledger.Replace(snap.Entries)
		s.profile = snap.Profile
		s.lastUpdated = snap.LastUpdated
	}
	s.pet = pet.NewMachine(s.profile.PetStatus, opts.HatchDelay, s.onHatch)

	s.mu.Lock()
	s.evaluateLocked()
	s.mu.Unlock()
	return s, nil
}

func (s *Store) load(ctx context.Context) (*snapshot, error) {
	data, err := s.snapshots.Load(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warnf("discarding unreadable snapshot: %v", err)
		return nil, nil
	}
	return &snap, nil
}

// Attach binds a remote session; sync operations become live.
func (s *Store) Attach(sess internal.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &sess
	s.profile.UserID = sess.UserID
	if sess.Email != "" {
		s.profile.Email = sess.Email
	}
}

// Detach drops the session. In-flight pushes are not cancelled.
func (s *Store) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
}

func (s *Store) Session() (internal.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return internal.Session{}, false
	}
	return *s.session, true
}

// AddEntry appends e, assigning an id when it has none, and returns the stored entry.
func (s *Store) AddEntry(ctx context.Context, e internal.Entry) (internal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Date.IsZero() {
		e.Date = s.now()
	}
	s.ledger.Add(e)
	s.evaluateLocked()
	err := s.persistLocked(ctx)
	s.scheduleSyncLocked()
	return e, err
}

// ToggleEntryVisibility flips the entry's visible flag. It reports whether
// the id exists; an unknown id is not an error.
func (s *Store) ToggleEntryVisibility(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.ledger.ToggleVisibility(id)
	if !found {
		return false, nil
	}
	s.evaluateLocked()
	err := s.persistLocked(ctx)
	if s.syncOnToggle {
		s.scheduleSyncLocked()
	}
	return true, err
}

// ClearHistory empties the ledger and erases the snapshot slot. The remote
// copy keeps its rows until the next full push.
func (s *Store) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Clear()
	s.evaluateLocked()
	if err := s.snapshots.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("store: clear snapshot: %w", err)
	}
	// the slot keeps the profile and pet; only the entries are gone
	return s.persistLocked(ctx)
}

// SyncEntries schedules a full-replace push and returns immediately.
func (s *Store) SyncEntries() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleSyncLocked()
}

func (s *Store) scheduleSyncLocked() {
	if s.session == nil || s.pusher == nil {
		return
	}
	s.pusher.Enqueue(s.session.UserID, s.ledger.Entries())
}

// SyncNow pushes synchronously and returns the outcome.
func (s *Store) SyncNow(ctx context.Context) error {
	s.mu.Lock()
	if s.session == nil || s.pusher == nil {
		s.mu.Unlock()
		return internal.ErrNoSession
	}
	userID := s.session.UserID
	entries := s.ledger.Entries()
	s.mu.Unlock()

	return s.pusher.SyncNow(ctx, userID, entries)
}

func (s *Store) SyncStatus() syncer.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.pusher == nil {
		return syncer.StatusIdle
	}
	return s.pusher.Status(s.session.UserID)
}

// FetchEntries replaces the local ledger with the remote rows.
func (s *Store) FetchEntries(ctx context.Context) error {
	userID, err := s.remoteUser()
	if err != nil {
		return err
	}
	entries, err := s.remote.ListEntries(ctx, userID)
	if err != nil {
		s.logger.Errorf("fetch entries: %v", err)
		return internal.NewSyncError(err, "fetch entries")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Replace(entries)
	s.evaluateLocked()
	return s.persistLocked(ctx)
}

// DeleteEntryFromRemote deletes one remote row, then pulls the remote set
// so the local ledger matches it.
func (s *Store) DeleteEntryFromRemote(ctx context.Context, id string) error {
	userID, err := s.remoteUser()
	if err != nil {
		return err
	}
	if err := s.remote.DeleteEntry(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return internal.NewNotFoundError("entry not found")
		}
		s.logger.Errorf("delete entry %s: %v", id, err)
		return internal.NewSyncError(err, "delete entry")
	}
	return s.FetchEntries(ctx)
}

// FetchProfile adopts the remote profile row. The pet never moves backwards.
func (s *Store) FetchProfile(ctx context.Context) error {
	userID, err := s.remoteUser()
	if err != nil {
		return err
	}
	remote, err := s.remote.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return internal.NewNotFoundError("profile not found")
	}
	if err != nil {
		s.logger.Errorf("fetch profile: %v", err)
		return internal.NewSyncError(err, "fetch profile")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pet.Restore(remote.PetStatus)
	p := *remote
	p.PetStatus = s.pet.Status()
	s.profile = p
	return s.persistLocked(ctx)
}

// UpdateUserProfile writes the local profile to the remote row: read, then
// insert or update. Two concurrent callers can still collide.
func (s *Store) UpdateUserProfile(ctx context.Context) error {
	userID, err := s.remoteUser()
	if err != nil {
		return err
	}
	s.mu.Lock()
	p := s.profile
	s.mu.Unlock()
	p.UserID = userID
	p.PetStatus = pet.Normalize(p.PetStatus)
	p.LastUpdated = s.now()

	_, err = s.remote.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		err = s.remote.InsertProfile(ctx, &p)
	case err == nil:
		err = s.remote.UpdateProfile(ctx, &p)
	}
	if err != nil {
		s.logger.Errorf("update profile: %v", err)
		return internal.NewSyncError(err, "update profile")
	}
	return nil
}

func (s *Store) remoteUser() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.remote == nil {
		return "", internal.ErrNoSession
	}
	return s.session.UserID, nil
}

// ProfileUpdate carries the quiz answers; nil fields are left unchanged.
type ProfileUpdate struct {
	Username      *string
	Weight        *float64
	Height        *float64
	Age           *int
	ActivityLevel *internal.ActivityLevel
	Goal          *internal.Goal
}

// SetUserData applies u and recomputes the BMR.
func (s *Store) SetUserData(ctx context.Context, u ProfileUpdate) (internal.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &s.profile
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.Weight != nil {
		p.Weight = *u.Weight
	}
	if u.Height != nil {
		p.Height = *u.Height
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.ActivityLevel != nil {
		p.ActivityLevel = *u.ActivityLevel
	}
	if u.Goal != nil {
		p.Goal = *u.Goal
	}
	p.BMR = s.strategy.Compute(*p)
	err := s.persistLocked(ctx)
	return s.profile, err
}

// ResetProfile clears the quiz answers. Entries and the pet are kept.
func (s *Store) ResetProfile(ctx context.Context) (internal.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &s.profile
	p.Weight = 0
	p.Height = 0
	p.Age = 0
	p.ActivityLevel = internal.Sedentary
	p.Goal = internal.GoalCut
	p.BMR = 0
	err := s.persistLocked(ctx)
	return s.profile, err
}

// SetFriendCode records the server-assigned code on the local profile.
func (s *Store) SetFriendCode(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.FriendCode = code
	return s.persistLocked(ctx)
}

// State is a point-in-time copy of everything a client renders.
type State struct {
	Entries       []internal.Entry     `json:"entries"`
	TotalCalories int                  `json:"total_calories"`
	Summary       ledger.Summary       `json:"summary"`
	Profile       internal.UserProfile `json:"profile"`
	PetStatus     internal.PetStatus   `json:"pet_status"`
	SyncStatus    syncer.Status        `json:"sync_status"`
	LastUpdated   time.Time            `json:"last_updated"`
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := syncer.StatusIdle
	if s.session != nil && s.pusher != nil {
		status = s.pusher.Status(s.session.UserID)
	}
	total := s.ledger.TotalCalories()
	return State{
		Entries:       s.ledger.Entries(),
		TotalCalories: total,
		Summary:       ledger.Summarize(total, s.profile.BMR, s.profile.Goal),
		Profile:       s.profile,
		PetStatus:     s.pet.Status(),
		SyncStatus:    status,
		LastUpdated:   s.lastUpdated,
	}
}

func (s *Store) Profile() internal.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Close cancels a pending hatch.
func (s *Store) Close() {
	s.pet.Stop()
	s.mu.Lock()
	s.profile.PetStatus = s.pet.Status()
	s.mu.Unlock()
}

func (s *Store) evaluateLocked() {
	s.profile.PetStatus = s.pet.Evaluate(s.ledger.Len(), s.ledger.HasEntryToday())
	s.profile.Streak = s.ledger.Streak()
}

func (s *Store) onHatch(status internal.PetStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.PetStatus = status
	s.logger.Infof("pet hatched: %s", status)
	if err := s.persistLocked(context.Background()); err != nil {
		s.logger.Errorf("persist after hatch: %v", err)
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	s.lastUpdated = s.now()
	p := s.profile
	p.PetStatus = pet.Normalize(p.PetStatus)
	data, err := json.Marshal(snapshot{
		Entries:       s.ledger.Entries(),
		Profile:       p,
		TotalCalories: s.ledger.TotalCalories(),
		LastUpdated:   s.lastUpdated,
	})
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}
	if err := s.snapshots.Save(ctx, s.key, data); err != nil {
		s.logger.Errorf("write snapshot: %v", err)
		return fmt.Errorf("store: write snapshot: %w", err)
	}
	return nil
}
